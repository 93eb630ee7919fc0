package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// BaseURLEU and BaseURLUS are the two hosted environments of the platform.
const (
	BaseURLEU = "https://api.cloud.hypatos.ai/v2"
	BaseURLUS = "https://api.cloud.hypatos.com/v2"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, body)
}

// Client talks to one tenant of the platform API. Credentials are exchanged
// for a bearer token via the OAuth2 client-credentials grant; every request
// after that is a single attempt with no retry.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	limiter      *rate.Limiter

	accessToken string
	tokenType   string
	expiry      time.Time
	scopes      []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit caps outgoing requests at n per second. Zero or negative
// disables the limiter.
func WithRateLimit(n float64) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// NewClient creates a client for one tenant. baseURL is the environment root
// without a trailing slash.
func NewClient(baseURL, clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: defaultTimeout},
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the environment root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticate exchanges the client credentials for a bearer token.
// Failure here is fatal for every operation depending on this tenant.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response contained no access_token")
	}

	c.accessToken = tok.AccessToken
	c.tokenType = tok.TokenType
	if c.tokenType == "" {
		c.tokenType = "Bearer"
	}
	c.expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.scopes = strings.Fields(tok.Scope)

	log.Debug().
		Str("base_url", c.baseURL).
		Strs("scopes", c.scopes).
		Time("expiry", c.expiry).
		Msg("Authenticated against tenant API")
	return nil
}

// Authenticated reports whether a token has been obtained and has not expired.
func (c *Client) Authenticated() bool {
	return c.accessToken != "" && time.Now().Before(c.expiry)
}

// do executes one JSON request against the tenant API. A non-nil out is
// filled from the response body. wantStatus is the expected success status;
// zero accepts any 2xx.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any, wantStatus int) error {
	if c.accessToken == "" {
		return fmt.Errorf("authentication is required before calling %s %s", method, path)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.tokenType+" "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	ok := resp.StatusCode == wantStatus
	if wantStatus == 0 {
		ok = resp.StatusCode >= 200 && resp.StatusCode < 300
	}
	if !ok {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, http.StatusOK)
}
