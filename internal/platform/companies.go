package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListCompanies returns the companies accessible with the current token.
// The endpoint has been observed returning either a bare array or a
// {data: [...]} envelope, so both shapes are handled.
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/companies", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	var list []Company
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page CompanyPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("unexpected /companies response shape: %w", err)
	}
	return page.Data, nil
}

// GetCompany retrieves one company by id.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	var company Company
	if err := c.get(ctx, "/companies/"+url.PathEscape(companyID), nil, &company); err != nil {
		return nil, fmt.Errorf("failed to fetch company %s: %w", companyID, err)
	}
	return &company, nil
}

// Company returns the first company accessible with the current token, which
// for tenant-scoped credentials is the tenant itself.
func (c *Client) Company(ctx context.Context) (*Company, error) {
	companies, err := c.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, fmt.Errorf("no company accessible with these credentials")
	}
	return &companies[0], nil
}
