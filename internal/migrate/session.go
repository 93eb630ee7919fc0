// Package migrate clones projects and routing rules from a source tenant
// into a target tenant, tracking the old-ID to new-ID mapping dependent
// objects need.
package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tenantsync/internal/platform"
)

// Session holds the two authenticated tenant handles one migration run works
// with. It is created after both authentications succeed and passed
// explicitly to every operation; there is no ambient session state.
type Session struct {
	Source *platform.Client
	Target *platform.Client
	RunID  string

	logger zerolog.Logger
}

// NewSession authenticates both tenants and returns a ready session. An
// authentication failure on either side is fatal for the run.
func NewSession(ctx context.Context, source, target *platform.Client) (*Session, error) {
	if err := source.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("source authentication failed: %w", err)
	}
	if err := target.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("target authentication failed: %w", err)
	}

	runID := uuid.NewString()
	return &Session{
		Source: source,
		Target: target,
		RunID:  runID,
		logger: log.With().Str("run_id", runID).Logger(),
	}, nil
}

// Status of one item in a batch operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the per-item result of a batch operation. Batches never abort
// on an item failure; callers branch on Status instead of sentinel nils.
type Outcome struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	NewID  string `json:"newId,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Failed reports whether any outcome in the batch failed.
func Failed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Counts tallies a batch by status.
func Counts(outcomes []Outcome) (ok, skipped, failed int) {
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return ok, skipped, failed
}
