// Package setup talks to the platform's Setup API, a second REST surface
// authenticated with a browser session cookie rather than OAuth2. It covers
// prompting settings, prompting agents and composite enrichment workflows.
package setup

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
)

// DefaultBaseURL is the hosted Setup API.
const DefaultBaseURL = "https://setup.cloud.hypatos.ai"

const defaultTimeout = 30 * time.Second

// Client is a thin Setup-API client. The access token is the value of the
// operator's `access_token` browser cookie. The last request error is kept as
// a string, mirroring how callers surface it next to a nil result.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client

	// LastError holds the failure of the most recent request, or "".
	LastError string
}

// NewClient creates a Setup-API client. An empty baseURL selects the hosted
// environment.
func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.LastError = err.Error()
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		c.LastError = err.Error()
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cookie", "access_token="+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.LastError = err.Error()
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.LastError = err.Error()
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.LastError = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(body))
	}

	c.LastError = ""
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			c.LastError = err.Error()
			return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) put(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, payload, out)
}

// listOrEnvelope decodes a response that is either a bare JSON array or a
// {data: [...]} envelope, both of which the Setup API has been seen to
// return.
func listOrEnvelope[T any](raw json.RawMessage) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected list response shape: %w", err)
	}
	return envelope.Data, nil
}
