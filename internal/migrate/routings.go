package migrate

import (
	"context"
	"fmt"

	"github.com/tenantsync/internal/platform"
)

// ReplicateRoutings recreates the source tenant's routing rules in the target
// tenant, rewriting both project endpoints through idMap. A rule whose
// endpoints are not both present in the map references a project outside this
// clone batch and is skipped; that is a filter, not an error. The source
// tenant is never mutated: all rewriting happens on the in-memory copy.
//
// Returned is the old-rule-ID to new-rule-ID mapping plus per-rule outcomes.
func (s *Session) ReplicateRoutings(ctx context.Context, idMap map[string]string) (map[string]string, []Outcome, error) {
	if len(idMap) == 0 {
		return nil, nil, fmt.Errorf("no project id mapping available; clone projects first")
	}
	if err := s.Target.RequireScopes(platform.ScopeRoutingsWrite); err != nil {
		return nil, nil, err
	}

	ruleIDs := s.Source.ListRoutingIDs(ctx)
	s.logger.Info().Int("rules", len(ruleIDs)).Msg("Enumerated source routing rules")

	ruleMap := make(map[string]string)
	outcomes := make([]Outcome, 0, len(ruleIDs))

	for _, ruleID := range ruleIDs {
		outcome := s.replicateOne(ctx, ruleID, idMap, ruleMap)
		outcomes = append(outcomes, outcome)

		event := s.logger.Info()
		switch outcome.Status {
		case StatusFailed:
			event = s.logger.Error()
		case StatusSkipped:
			event = s.logger.Warn()
		}
		event.Str("rule_id", ruleID).
			Str("status", string(outcome.Status)).
			Str("reason", outcome.Reason).
			Msg("Replicated routing rule")
	}
	return ruleMap, outcomes, nil
}

func (s *Session) replicateOne(ctx context.Context, ruleID string, idMap, ruleMap map[string]string) Outcome {
	rule, err := s.Source.GetRouting(ctx, ruleID)
	if err != nil {
		return Outcome{ID: ruleID, Status: StatusSkipped,
			Reason: fmt.Sprintf("could not retrieve rule details: %v", err)}
	}

	newFrom, fromOK := idMap[rule.FromProjectID]
	newTo, toOK := idMap[rule.ToProjectID]
	if !fromOK || !toOK {
		return Outcome{ID: ruleID, Name: rule.Name, Status: StatusSkipped,
			Reason: fmt.Sprintf("project mapping incomplete (from: %s, to: %s)",
				rule.FromProjectID, rule.ToProjectID)}
	}

	rule.FromProjectID = newFrom
	rule.ToProjectID = newTo
	rule.StripServerFields()

	created, err := s.Target.CreateRouting(ctx, rule)
	if err != nil {
		return Outcome{ID: ruleID, Name: rule.Name, Status: StatusFailed, Reason: err.Error()}
	}

	ruleMap[ruleID] = created.ID
	return Outcome{ID: ruleID, Name: rule.Name, NewID: created.ID, Status: StatusOK}
}
