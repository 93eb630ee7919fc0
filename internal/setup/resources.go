package setup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
)

// PromptingSetting is one prompting workflow configuration of a company.
// Unmodeled attributes ride along in Extra so an update round-trips them.
type PromptingSetting struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	CompanyID string `json:"companyId,omitempty"`

	Extra map[string]any `json:"-"`
}

func (p *PromptingSetting) UnmarshalJSON(data []byte) error {
	type alias PromptingSetting
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	delete(m, "id")
	delete(m, "name")
	delete(m, "companyId")
	*p = PromptingSetting(a)
	p.Extra = m
	return nil
}

// Workflow is one composite enrichment workflow.
type Workflow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	CompanyID string         `json:"companyId,omitempty"`
	Body      map[string]any `json:"-"`
}

func (w *Workflow) UnmarshalJSON(data []byte) error {
	type alias Workflow
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*w = Workflow(a)
	w.Body = m
	return nil
}

// GetPromptingSettings lists the prompting workflows of a company.
func (c *Client) GetPromptingSettings(ctx context.Context, companyID string) ([]PromptingSetting, error) {
	query := url.Values{}
	query.Set("companyId", companyID)

	var raw json.RawMessage
	if err := c.get(ctx, "/v1/prompting-settings", query, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch prompting settings: %w", err)
	}
	return listOrEnvelope[PromptingSetting](raw)
}

// UpdatePromptingSettings PUTs a prompting-settings payload for a company.
func (c *Client) UpdatePromptingSettings(ctx context.Context, companyID string, payload map[string]any) (map[string]any, error) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["companyId"] = companyID

	var out map[string]any
	if err := c.put(ctx, "/v1/prompting-settings", body, &out); err != nil {
		return nil, fmt.Errorf("failed to update prompting settings: %w", err)
	}
	return out, nil
}

// CopyPromptingSettings copies the prompting settings of one company to
// another on the server side.
func (c *Client) CopyPromptingSettings(ctx context.Context, sourceCompanyID, targetCompanyID string) (map[string]any, error) {
	payload := map[string]any{
		"sourceCompanyId": sourceCompanyID,
		"targetCompanyId": targetCompanyID,
	}
	var out map[string]any
	if err := c.post(ctx, "/v1/prompting-settings/copy", payload, &out); err != nil {
		return nil, fmt.Errorf("failed to copy prompting settings: %w", err)
	}
	return out, nil
}

// GetWorkflows lists the composite enrichment workflows of a company.
func (c *Client) GetWorkflows(ctx context.Context, companyID string) ([]Workflow, error) {
	query := url.Values{}
	query.Set("companyId", companyID)

	var raw json.RawMessage
	if err := c.get(ctx, "/v1/composite-enrichment-workflows", query, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch workflows: %w", err)
	}
	return listOrEnvelope[Workflow](raw)
}

// CreateWorkflow creates a composite enrichment workflow.
func (c *Client) CreateWorkflow(ctx context.Context, payload map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.post(ctx, "/v1/composite-enrichment-workflows", payload, &out); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	return out, nil
}

// UpdateWorkflow updates a composite enrichment workflow by id.
func (c *Client) UpdateWorkflow(ctx context.Context, workflowID string, payload map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.put(ctx, "/v1/composite-enrichment-workflows/"+url.PathEscape(workflowID), payload, &out); err != nil {
		return nil, fmt.Errorf("failed to update workflow %s: %w", workflowID, err)
	}
	return out, nil
}

// WorkflowOutcome is the per-workflow result of a CopyWorkflows run.
type WorkflowOutcome struct {
	Workflow string `json:"workflow"`
	ID       string `json:"id"`
	Status   string `json:"status"`
}

// CopyWorkflows recreates the source company's composite enrichment workflows
// under the target company. Server-assigned fields are dropped from each body
// and the company binding is rewritten; per-workflow failures are recorded and
// do not stop the batch.
func (c *Client) CopyWorkflows(ctx context.Context, sourceCompanyID, targetCompanyID string) ([]WorkflowOutcome, error) {
	workflows, err := c.GetWorkflows(ctx, sourceCompanyID)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, fmt.Errorf("no workflows found for company %s", sourceCompanyID)
	}

	outcomes := make([]WorkflowOutcome, 0, len(workflows))
	for _, workflow := range workflows {
		payload := make(map[string]any, len(workflow.Body))
		for k, v := range workflow.Body {
			payload[k] = v
		}
		delete(payload, "id")
		delete(payload, "createdAt")
		delete(payload, "updatedAt")
		payload["companyId"] = targetCompanyID

		name := workflow.Name
		if name == "" {
			name = workflow.ID
		}
		outcome := WorkflowOutcome{Workflow: name, ID: workflow.ID, Status: "OK"}
		if _, err := c.CreateWorkflow(ctx, payload); err != nil {
			reason := c.LastError
			if reason == "" {
				reason = err.Error()
			}
			outcome.Status = "FAILED: " + reason
		}
		outcomes = append(outcomes, outcome)

		log.Info().
			Str("workflow_id", workflow.ID).
			Str("status", outcome.Status).
			Msg("Copied enrichment workflow")
	}
	return outcomes, nil
}
