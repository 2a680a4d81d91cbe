package drift

import (
	"context"
	"fmt"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
)

// ContinuityReport summarizes an owner's open continuity events into one
// health score with per-event correction suggestions.
type ContinuityReport struct {
	Score          float64                  `json:"score"`
	Contradictions int                      `json:"contradictions"`
	DriftEvents    int                      `json:"drift_events"`
	Events         []common.ContinuityEvent `json:"events"`
	Suggestions    []string                 `json:"suggestions"`
}

// BuildReport derives the continuity score from the owner's unresolved
// events: 100 minus 5 per contradiction minus 10 per unit of drift, floored
// at 0. Drift severity contributes proportionally.
func BuildReport(events []common.ContinuityEvent) ContinuityReport {
	report := ContinuityReport{Events: events}

	var driftPenalty float64
	for _, e := range events {
		switch e.EventType {
		case common.EventContradiction:
			report.Contradictions++
		default:
			report.DriftEvents++
			driftPenalty += float64(e.Severity) / 10
		}
		report.Suggestions = append(report.Suggestions, suggestionFor(e))
	}

	score := 100 - 5*float64(report.Contradictions) - 10*driftPenalty
	if score < 0 {
		score = 0
	}
	report.Score = score
	return report
}

// Report loads the owner's unresolved events and builds the report.
func (d *Detector) Report(ctx context.Context, ownerID string) (ContinuityReport, error) {
	events, err := d.store.ListUnresolvedEvents(ctx, ownerID, "")
	if err != nil {
		logger.Error("[Drift][Report] Failed to list events, returning empty report", "owner", ownerID, "err", err)
		return BuildReport(nil), nil
	}
	return BuildReport(events), nil
}

func suggestionFor(e common.ContinuityEvent) string {
	switch e.EventType {
	case common.EventContradiction:
		return "Clarify which of the conflicting entries is accurate, or mark the older one superseded."
	case common.EventIdentityDrift:
		return "Review the recent self-descriptions and note whether the change is intentional growth."
	case common.EventEmotionalTransition:
		return "Check what changed around the flagged period; a sharp tone shift often has a concrete trigger."
	case common.EventEmotionalLoop:
		return "Recurring mood swings may deserve a closer look at the repeating circumstances."
	default:
		return fmt.Sprintf("Review the flagged entries (%s).", e.EventType)
	}
}
