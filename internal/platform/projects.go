package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// projectListLimit is the page size requested from GET /projects. Tenants
// with more projects than this are not paged further.
const projectListLimit = 200

// ListProjects retrieves the tenant's projects, up to projectListLimit.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(projectListLimit))

	var page ProjectPage
	if err := c.get(ctx, "/projects", query, &page); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return page.Data, nil
}

// GetProject retrieves one project's details.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectID), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch project %s: %w", projectID, err)
	}
	return &p, nil
}

// GetProjectSchema retrieves a project's datapoint tree. The returned Schema
// keeps the raw response so a clone can submit it verbatim.
func (c *Client) GetProjectSchema(ctx context.Context, projectID string) (*Schema, error) {
	var s Schema
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectID)+"/schema", nil, &s); err != nil {
		return nil, fmt.Errorf("failed to fetch schema for project %s: %w", projectID, err)
	}
	return &s, nil
}

// CreateProjectPayload is the body of POST /projects.
type CreateProjectPayload struct {
	Name              string         `json:"name"`
	Note              string         `json:"note"`
	OCR               map[string]any `json:"ocr"`
	ExtractionModelID string         `json:"extractionModelId"`
	Completion        string         `json:"completion"`
	Duplicates        string         `json:"duplicates"`
	Members           map[string]any `json:"members"`
	Schema            *Schema        `json:"schema"`
	RetentionDays     int            `json:"retentionDays"`
}

// CreateProject creates a new project in this tenant. The platform signals
// success with 201 and returns the created record.
func (c *Client) CreateProject(ctx context.Context, payload CreateProjectPayload) (*Project, error) {
	if err := c.RequireScopes(ScopeProjectsWrite); err != nil {
		return nil, err
	}
	var p Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, payload, &p, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", payload.Name, err)
	}
	return &p, nil
}

// UpdateProject applies a partial update to a project. fields may contain any
// subset of the PATCHable attributes.
func (c *Client) UpdateProject(ctx context.Context, projectID string, fields map[string]any) (*Project, error) {
	if err := c.RequireScopes(ScopeProjectsWrite); err != nil {
		return nil, err
	}
	var p Project
	err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(projectID), nil, fields, &p, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", projectID, err)
	}
	return &p, nil
}
