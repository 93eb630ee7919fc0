package migrate

import (
	"context"
	"fmt"

	"github.com/tenantsync/internal/platform"
)

// ProjectConfig is the PATCHable configuration subset synced between existing
// projects.
type ProjectConfig struct {
	Completion    string `json:"completion"`
	Duplicates    string `json:"duplicates"`
	RetentionDays int    `json:"retentionDays"`
	IsLive        bool   `json:"isLive"`
}

// ConfigOf reads the sync-relevant configuration from a project record.
// The duplicates default here is "fail"; the project-clone path defaults to
// "allow". The two paths are intentionally different.
func ConfigOf(p *platform.Project) ProjectConfig {
	cfg := ProjectConfig{
		Completion:    defaultCompletion,
		Duplicates:    "fail",
		RetentionDays: defaultRetentionDays,
	}
	if p.Completion != "" {
		cfg.Completion = p.Completion
	}
	if p.Duplicates != "" {
		cfg.Duplicates = p.Duplicates
	}
	if p.RetentionDays != nil {
		cfg.RetentionDays = *p.RetentionDays
	}
	if p.IsLive != nil {
		cfg.IsLive = *p.IsLive
	}
	return cfg
}

func (c ProjectConfig) patch() map[string]any {
	return map[string]any{
		"completion":    c.Completion,
		"duplicates":    c.Duplicates,
		"retentionDays": c.RetentionDays,
		"isLive":        c.IsLive,
	}
}

// UpdateConfig applies the given configuration to a target project.
func (s *Session) UpdateConfig(ctx context.Context, targetProjectID string, cfg ProjectConfig) (*platform.Project, error) {
	updated, err := s.Target.UpdateProject(ctx, targetProjectID, cfg.patch())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("project_id", targetProjectID).Msg("Updated project configuration")
	return updated, nil
}

// CloneConfig copies the configuration subset from a source project onto a
// target project.
func (s *Session) CloneConfig(ctx context.Context, sourceProjectID, targetProjectID string) (*platform.Project, error) {
	details, err := s.Source.GetProject(ctx, sourceProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve source project: %w", err)
	}
	return s.UpdateConfig(ctx, targetProjectID, ConfigOf(details))
}

// CloneSchema copies the schema verbatim from a source project onto a target
// project via a partial update.
func (s *Session) CloneSchema(ctx context.Context, sourceProjectID, targetProjectID string) (*platform.Project, error) {
	sourceSchema, err := s.Source.GetProjectSchema(ctx, sourceProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve source schema: %w", err)
	}
	updated, err := s.Target.UpdateProject(ctx, targetProjectID, map[string]any{"schema": sourceSchema})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("source_project_id", sourceProjectID).
		Str("target_project_id", targetProjectID).
		Msg("Cloned project schema")
	return updated, nil
}
