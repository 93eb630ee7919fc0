package bulk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tenantsync/internal/platform"
	"github.com/tenantsync/internal/schema"
)

// Mode selects what gets compared per pair.
type Mode string

const (
	ModeDatapoints Mode = "datapoints"
	ModeMetadata   Mode = "metadata"
)

// Result is the comparison outcome for one project pair. On error the
// difference fields stay empty and Error carries the message; a failing pair
// never aborts the batch.
type Result struct {
	SourceProjectID   string                      `json:"sourceProjectId"`
	SourceProjectName string                      `json:"sourceProjectName"`
	TargetProjectID   string                      `json:"targetProjectId"`
	TargetProjectName string                      `json:"targetProjectName"`
	HasDifferences    *bool                       `json:"hasDifferences"`
	Datapoints        []schema.Difference         `json:"datapointDifferences,omitempty"`
	Metadata          []schema.MetadataDifference `json:"metadataDifferences,omitempty"`
	Error             string                      `json:"error,omitempty"`
}

// Report aggregates one bulk run.
type Report struct {
	RunID           string   `json:"runId"`
	Mode            Mode     `json:"mode"`
	Total           int      `json:"totalComparisons"`
	Successful      int      `json:"successfulComparisons"`
	WithDifferences int      `json:"withDifferences"`
	Identical       int      `json:"identical"`
	Results         []Result `json:"results"`
}

// Runner compares pairs of projects across the two tenant handles, strictly
// sequentially, one network round trip at a time.
type Runner struct {
	Source *platform.Client
	Target *platform.Client
}

// Run executes the comparison for every pair and aggregates a report.
func (r *Runner) Run(ctx context.Context, pairs []Pair, mode Mode) *Report {
	report := &Report{
		RunID:   uuid.NewString(),
		Mode:    mode,
		Total:   len(pairs),
		Results: make([]Result, 0, len(pairs)),
	}

	for i, pair := range pairs {
		log.Info().
			Int("pair", i+1).
			Int("total", len(pairs)).
			Str("source", pair.SourceID).
			Str("target", pair.TargetID).
			Msg("Comparing project pair")

		result := r.comparePair(ctx, pair, mode)
		report.Results = append(report.Results, result)

		switch {
		case result.Error != "":
			log.Error().Str("source", pair.SourceID).Str("target", pair.TargetID).
				Str("error", result.Error).Msg("Comparison failed")
		case result.HasDifferences != nil && *result.HasDifferences:
			report.WithDifferences++
			report.Successful++
		default:
			report.Identical++
			report.Successful++
		}
	}
	return report
}

func (r *Runner) comparePair(ctx context.Context, pair Pair, mode Mode) Result {
	result := Result{
		SourceProjectID:   pair.SourceID,
		SourceProjectName: pair.SourceID,
		TargetProjectID:   pair.TargetID,
		TargetProjectName: pair.TargetID,
	}

	// Display names are best effort; the id stands in when the read fails.
	sourceDetails, srcErr := r.Source.GetProject(ctx, pair.SourceID)
	if srcErr == nil && sourceDetails.Name != "" {
		result.SourceProjectName = sourceDetails.Name
	}
	targetDetails, tgtErr := r.Target.GetProject(ctx, pair.TargetID)
	if tgtErr == nil && targetDetails.Name != "" {
		result.TargetProjectName = targetDetails.Name
	}

	switch mode {
	case ModeMetadata:
		if srcErr != nil {
			result.Error = fmt.Sprintf("failed to retrieve source project: %v", srcErr)
			return result
		}
		if tgtErr != nil {
			result.Error = fmt.Sprintf("failed to retrieve target project: %v", tgtErr)
			return result
		}
		result.Metadata = schema.DiffMetadata(schema.MetadataOf(sourceDetails), schema.MetadataOf(targetDetails))
		for i := range result.Metadata {
			result.Metadata[i].TargetProject = result.TargetProjectName
		}
		has := len(result.Metadata) > 0
		result.HasDifferences = &has

	default:
		sourceSchema, err := r.Source.GetProjectSchema(ctx, pair.SourceID)
		if err != nil {
			result.Error = fmt.Sprintf("failed to retrieve source schema: %v", err)
			return result
		}
		targetSchema, err := r.Target.GetProjectSchema(ctx, pair.TargetID)
		if err != nil {
			result.Error = fmt.Sprintf("failed to retrieve target schema: %v", err)
			return result
		}
		result.Datapoints = schema.DiffDatapoints(
			schema.Flatten(sourceSchema.DataPoints, ""),
			schema.Flatten(targetSchema.DataPoints, ""),
		)
		for i := range result.Datapoints {
			result.Datapoints[i].TargetProject = result.TargetProjectName
		}
		has := len(result.Datapoints) > 0
		result.HasDifferences = &has
	}
	return result
}
