package migrate

import (
	"context"
	"fmt"

	"github.com/tenantsync/internal/platform"
)

// Defaults applied to a clone payload when the source record lacks a value.
const (
	defaultCompletion    = "manual"
	defaultDuplicates    = "allow"
	defaultRetentionDays = 180
)

// CloneOptions configures one project-clone batch. ModelID is mandatory: the
// clone never preserves the source extraction model, because a model binding
// cannot be cloned across tenants. One pre-existing target project supplies
// the model for the whole batch.
type CloneOptions struct {
	ModelID    string
	NamePrefix string
}

// CloneProjects creates a copy of each source project in the target tenant.
// It returns the source-ID to new-ID map consumed by ReplicateRoutings and a
// per-project outcome list. One project failing never stops the batch; the
// failed id is simply absent from the map.
func (s *Session) CloneProjects(ctx context.Context, projectIDs []string, opts CloneOptions) (map[string]string, []Outcome, error) {
	if opts.ModelID == "" {
		return nil, nil, fmt.Errorf("an extraction model id is required to clone projects")
	}
	if err := s.Target.RequireScopes(platform.ScopeProjectsWrite); err != nil {
		return nil, nil, err
	}

	idMap := make(map[string]string)
	outcomes := make([]Outcome, 0, len(projectIDs))

	for _, projectID := range projectIDs {
		outcome := s.cloneOne(ctx, projectID, opts, idMap)
		outcomes = append(outcomes, outcome)

		event := s.logger.Info()
		if outcome.Status == StatusFailed {
			event = s.logger.Error()
		}
		event.Str("project_id", projectID).
			Str("name", outcome.Name).
			Str("status", string(outcome.Status)).
			Str("reason", outcome.Reason).
			Msg("Cloned project")
	}
	return idMap, outcomes, nil
}

func (s *Session) cloneOne(ctx context.Context, projectID string, opts CloneOptions, idMap map[string]string) Outcome {
	details, err := s.Source.GetProject(ctx, projectID)
	if err != nil {
		return Outcome{ID: projectID, Status: StatusFailed,
			Reason: fmt.Sprintf("failed to retrieve project details: %v", err)}
	}
	if details.ID == "" || details.Name == "" {
		return Outcome{ID: projectID, Status: StatusSkipped,
			Reason: "source project record is missing id or name"}
	}

	sourceSchema, err := s.Source.GetProjectSchema(ctx, projectID)
	if err != nil {
		return Outcome{ID: projectID, Name: details.Name, Status: StatusFailed,
			Reason: fmt.Sprintf("failed to retrieve project schema: %v", err)}
	}

	payload := BuildClonePayload(details, sourceSchema, opts)
	created, err := s.Target.CreateProject(ctx, payload)
	if err != nil {
		return Outcome{ID: projectID, Name: payload.Name, Status: StatusFailed,
			Reason: err.Error()}
	}

	idMap[projectID] = created.ID
	return Outcome{ID: projectID, Name: payload.Name, NewID: created.ID, Status: StatusOK}
}

// BuildClonePayload assembles the creation body for a cloned project. The
// extraction model is always overridden, members are always reset to allow
// all, and the schema is copied verbatim.
func BuildClonePayload(details *platform.Project, sourceSchema *platform.Schema, opts CloneOptions) platform.CreateProjectPayload {
	payload := platform.CreateProjectPayload{
		Name:              opts.NamePrefix + details.Name,
		Note:              details.Note,
		OCR:               details.OCR,
		ExtractionModelID: opts.ModelID,
		Completion:        details.Completion,
		Duplicates:        details.Duplicates,
		Members:           map[string]any{"allow": "all"},
		Schema:            sourceSchema,
		RetentionDays:     defaultRetentionDays,
	}
	if payload.OCR == nil {
		payload.OCR = map[string]any{}
	}
	if payload.Completion == "" {
		payload.Completion = defaultCompletion
	}
	if payload.Duplicates == "" {
		payload.Duplicates = defaultDuplicates
	}
	if details.RetentionDays != nil {
		payload.RetentionDays = *details.RetentionDays
	}
	return payload
}
