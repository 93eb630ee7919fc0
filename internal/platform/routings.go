package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
)

// routingPageSize is the offset/limit page size used when enumerating rules.
const routingPageSize = 100

// ListRoutingIDs walks GET /routings with offset pagination and returns every
// rule id. The loop stops on a short page, an empty page, or a non-success
// status; the non-success case is logged and whatever was collected so far is
// returned rather than failing the whole enumeration.
func (c *Client) ListRoutingIDs(ctx context.Context) []string {
	var ids []string
	offset := 0

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(routingPageSize))
		query.Set("offset", strconv.Itoa(offset))

		var page RoutingPage
		if err := c.get(ctx, "/routings", query, &page); err != nil {
			log.Error().Err(err).Int("offset", offset).
				Msg("Failed to retrieve routing rules page, returning partial result")
			break
		}
		if len(page.Data) == 0 {
			break
		}
		for _, rule := range page.Data {
			if rule.ID != "" {
				ids = append(ids, rule.ID)
			}
		}
		if len(page.Data) < routingPageSize {
			break
		}
		offset += routingPageSize
	}
	return ids
}

// GetRouting retrieves one routing rule with all its attributes.
func (c *Client) GetRouting(ctx context.Context, routingID string) (*RoutingRule, error) {
	var rule RoutingRule
	if err := c.get(ctx, "/routings/"+url.PathEscape(routingID), nil, &rule); err != nil {
		return nil, fmt.Errorf("failed to fetch routing rule %s: %w", routingID, err)
	}
	return &rule, nil
}

// CreateRouting creates a routing rule in this tenant and returns the created
// record.
func (c *Client) CreateRouting(ctx context.Context, rule *RoutingRule) (*RoutingRule, error) {
	if err := c.RequireScopes(ScopeRoutingsWrite); err != nil {
		return nil, err
	}
	var created RoutingRule
	if err := c.do(ctx, http.MethodPost, "/routings", nil, rule, &created, 0); err != nil {
		return nil, fmt.Errorf("failed to create routing rule %q: %w", rule.Name, err)
	}
	return &created, nil
}
