package drift

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

// IdentityDriftThreshold is the centroid similarity below which the recent
// self-image counts as drifted from the historical one.
const IdentityDriftThreshold = 0.60

// identityMarkers match first-person self-description statements.
var identityMarkers = []string{
	"i am ", "i'm ", "i feel like", "i've become", "i have become",
	"i consider myself", "i see myself", "i think of myself",
	"as a person", "my personality", "the kind of person i",
}

// traitOpposites are the fixed self-description polarity pairs checked for
// directional shifts.
var traitOpposites = [][2]string{
	{"confident", "insecure"},
	{"optimistic", "pessimistic"},
	{"independent", "dependent"},
	{"creative", "practical"},
}

// traitShiftSeverity is the fixed severity of a detected trait reversal.
const traitShiftSeverity = 6

// DetectIdentityDrift compares the owner's recent identity statements
// against the month prior to the recent window. Both passes require a
// non-empty statement set on each side; otherwise nothing is emitted.
func (d *Detector) DetectIdentityDrift(ownerID string, components []common.MemoryComponent, now time.Time, recentWindow time.Duration) []common.ContinuityEvent {
	recentStart := now.Add(-recentWindow)
	historicalStart := recentStart.AddDate(0, -1, 0)

	var recent, historical []common.MemoryComponent
	for _, c := range components {
		if !isIdentityStatement(c.Text) || c.Timestamp == nil {
			continue
		}
		ts := *c.Timestamp
		switch {
		case !ts.Before(recentStart) && !ts.After(now):
			recent = append(recent, c)
		case !ts.Before(historicalStart) && ts.Before(recentStart):
			historical = append(historical, c)
		}
	}
	if len(recent) == 0 || len(historical) == 0 {
		return nil
	}

	var events []common.ContinuityEvent
	if ev, ok := centroidDrift(ownerID, recent, historical); ok {
		events = append(events, ev)
	}
	events = append(events, traitShifts(ownerID, recent, historical)...)
	return events
}

func centroidDrift(ownerID string, recent, historical []common.MemoryComponent) (common.ContinuityEvent, bool) {
	recentCentroid := common.Centroid(componentEmbeddings(recent))
	historicalCentroid := common.Centroid(componentEmbeddings(historical))
	if recentCentroid == nil || historicalCentroid == nil {
		return common.ContinuityEvent{}, false
	}

	sim := common.CosineSimilarity(recentCentroid, historicalCentroid)
	if sim >= IdentityDriftThreshold {
		return common.ContinuityEvent{}, false
	}

	return common.ContinuityEvent{
		OwnerID:          ownerID,
		EventType:        common.EventIdentityDrift,
		Description:      "Recent self-descriptions have moved away from how you described yourself before",
		SourceComponents: append(componentIDs(historical), componentIDs(recent)...),
		Severity:         common.ClampSeverity(int(math.Round((1 - sim) * 10))),
		Metadata: map[string]any{
			"centroid_similarity":   sim,
			"recent_statements":     len(recent),
			"historical_statements": len(historical),
		},
	}, true
}

// traitShifts flags self-descriptions that flipped to the opposite trait
// between the historical and recent windows, in either direction.
func traitShifts(ownerID string, recent, historical []common.MemoryComponent) []common.ContinuityEvent {
	var events []common.ContinuityEvent
	for _, pair := range traitOpposites {
		for _, dir := range [][2]string{{pair[0], pair[1]}, {pair[1], pair[0]}} {
			before, beforeIDs := mentionsTrait(historical, dir[0])
			after, afterIDs := mentionsTrait(recent, dir[1])
			if !before || !after {
				continue
			}
			events = append(events, common.ContinuityEvent{
				OwnerID:          ownerID,
				EventType:        common.EventIdentityDrift,
				Description:      fmt.Sprintf("Self-description shifted from %q to %q", dir[0], dir[1]),
				SourceComponents: append(beforeIDs, afterIDs...),
				Severity:         traitShiftSeverity,
				Metadata: map[string]any{
					"trait_before": dir[0],
					"trait_after":  dir[1],
				},
			})
		}
	}
	return events
}

// mentionsTrait matches on whole words; "independent" must not count as a
// mention of "dependent".
func mentionsTrait(components []common.MemoryComponent, trait string) (bool, []string) {
	var ids []string
	for _, c := range components {
		for _, word := range wordPattern.FindAllString(strings.ToLower(c.Text), -1) {
			if word == trait {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return len(ids) > 0, ids
}

func isIdentityStatement(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range identityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func componentEmbeddings(components []common.MemoryComponent) [][]float32 {
	out := make([][]float32, 0, len(components))
	for _, c := range components {
		if len(c.Embedding) > 0 {
			out = append(out, c.Embedding)
		}
	}
	return out
}

func componentIDs(components []common.MemoryComponent) []string {
	ids := make([]string, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ID)
	}
	return ids
}
