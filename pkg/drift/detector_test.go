package drift

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

func comp(id, text string, ts time.Time) common.MemoryComponent {
	return common.MemoryComponent{ID: id, OwnerID: "owner-1", Text: text, Timestamp: &ts}
}

func TestDetectContradictions_NegationReversal(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	components := []common.MemoryComponent{
		comp("c1", "I don't want to move to Chicago.", base),
		comp("c2", "Signed my Chicago lease today!", base.AddDate(0, 0, 20)),
	}

	events := (&Detector{}).DetectContradictions("owner-1", components)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(events), events)
	}
	e := events[0]
	if e.EventType != common.EventContradiction {
		t.Fatalf("event type = %v", e.EventType)
	}
	if e.Severity != severityWouldNot {
		t.Fatalf("severity = %d, want %d", e.Severity, severityWouldNot)
	}
	if len(e.SourceComponents) != 2 || e.SourceComponents[0] != "c1" || e.SourceComponents[1] != "c2" {
		t.Fatalf("sources = %v", e.SourceComponents)
	}
}

func TestDetectContradictions_NeverPattern(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	components := []common.MemoryComponent{
		comp("c1", "I will never talk to Marcus again.", base),
		comp("c2", "Had coffee with Marcus this morning.", base.AddDate(0, 0, 10)),
	}

	events := (&Detector{}).DetectContradictions("owner-1", components)
	if len(events) != 1 || events[0].Severity != severityNever {
		t.Fatalf("expected one severity-%d event, got %v", severityNever, events)
	}
}

func TestDetectContradictions_OrderMatters(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	// The action precedes the negation; no reversal.
	components := []common.MemoryComponent{
		comp("c1", "Signed my Chicago lease today!", base),
		comp("c2", "I don't want to move to Chicago.", base.AddDate(0, 0, 20)),
	}

	if events := (&Detector{}).DetectContradictions("owner-1", components); len(events) != 0 {
		t.Fatalf("expected no events when the negative statement comes last, got %v", events)
	}
}

func TestDetectContradictions_ClusterOutlier(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	near := func(id string, v []float32, day int) common.MemoryComponent {
		c := comp(id, "our apartment search in the city", base.AddDate(0, 0, day))
		c.Embedding = v
		c.Tags = []string{"housing"}
		return c
	}

	// A chain of unit vectors fanning from 0 to 160 degrees: adjacent pairs
	// are similar enough to cluster transitively, but the chain's endpoints
	// sit far from the cluster centroid (which points near 80 degrees).
	angle := func(deg float64) []float32 {
		rad := deg * math.Pi / 180
		return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
	}
	components := []common.MemoryComponent{
		near("c1", angle(0), 0),
		near("c2", angle(40), 1),
		near("c3", angle(80), 2),
		near("c4", angle(120), 3),
		near("c5", angle(160), 4),
	}

	events := (&Detector{}).DetectContradictions("owner-1", components)
	outliers := map[any]bool{}
	for _, e := range events {
		outliers[e.Metadata["outlier_id"]] = true
		if e.Severity < 1 || e.Severity > 10 {
			t.Fatalf("severity %d out of range", e.Severity)
		}
		if len(e.SourceComponents) != len(components) {
			t.Fatalf("sources = %v, want the whole cluster", e.SourceComponents)
		}
	}
	if !outliers["c1"] || !outliers["c5"] {
		t.Fatalf("expected the chain endpoints flagged, got %v", events)
	}
}

func TestDetectIdentityDrift_EmptySideEmitsNothing(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	components := []common.MemoryComponent{
		comp("c1", "I am a confident person these days.", now.AddDate(0, 0, -2)),
	}

	events := (&Detector{}).DetectIdentityDrift("owner-1", components, now, DefaultRecentWindow)
	if len(events) != 0 {
		t.Fatalf("expected no events without historical statements, got %v", events)
	}
}

func TestDetectIdentityDrift_CentroidShift(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	historical := comp("h1", "I am someone who loves routine.", now.AddDate(0, 0, -25))
	historical.Embedding = []float32{1, 0}
	recent := comp("r1", "I am restless and want everything to change.", now.AddDate(0, 0, -2))
	recent.Embedding = []float32{0, 1}

	events := (&Detector{}).DetectIdentityDrift("owner-1", []common.MemoryComponent{historical, recent}, now, DefaultRecentWindow)
	if len(events) != 1 {
		t.Fatalf("expected 1 drift event, got %v", events)
	}
	e := events[0]
	if e.EventType != common.EventIdentityDrift {
		t.Fatalf("event type = %v", e.EventType)
	}
	if e.Severity != 10 {
		t.Fatalf("severity = %d, want 10 for orthogonal centroids", e.Severity)
	}
}

func TestDetectIdentityDrift_TraitShift(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	components := []common.MemoryComponent{
		comp("h1", "I am confident about where this is going.", now.AddDate(0, 0, -20)),
		comp("r1", "I am insecure about everything lately.", now.AddDate(0, 0, -3)),
	}

	events := (&Detector{}).DetectIdentityDrift("owner-1", components, now, DefaultRecentWindow)
	if len(events) != 1 {
		t.Fatalf("expected 1 trait-shift event, got %v", events)
	}
	e := events[0]
	if e.Severity != traitShiftSeverity {
		t.Fatalf("severity = %d, want %d", e.Severity, traitShiftSeverity)
	}
	if e.Metadata["trait_before"] != "confident" || e.Metadata["trait_after"] != "insecure" {
		t.Fatalf("unexpected metadata: %v", e.Metadata)
	}
}

func TestDetectEmotionalArc_ConstantSentiment(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var components []common.MemoryComponent
	for i := 0; i < 40; i++ {
		components = append(components, comp(fmt.Sprintf("c%02d", i), "A calm and peaceful day.", base.AddDate(0, 0, i)))
	}

	events := (&Detector{}).DetectEmotionalArc("owner-1", components)
	for _, e := range events {
		if e.EventType == common.EventEmotionalTransition {
			t.Fatalf("constant sentiment must not produce transitions, got %v", e)
		}
	}
}

func TestDetectEmotionalArc_Transition(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var components []common.MemoryComponent
	for i := 0; i < 20; i++ {
		components = append(components, comp(fmt.Sprintf("n%02d", i), "Sad, tired, and anxious again.", base.AddDate(0, 0, i)))
	}
	for i := 0; i < 20; i++ {
		components = append(components, comp(fmt.Sprintf("p%02d", i), "Happy and grateful, what a wonderful day.", base.AddDate(0, 0, 20+i)))
	}

	events := (&Detector{}).DetectEmotionalArc("owner-1", components)
	var transition *common.ContinuityEvent
	for i := range events {
		if events[i].EventType == common.EventEmotionalTransition {
			transition = &events[i]
			break
		}
	}
	if transition == nil {
		t.Fatalf("expected a transition event, got %v", events)
	}
	if transition.Metadata["direction"] != "improving" {
		t.Fatalf("direction = %v, want improving", transition.Metadata["direction"])
	}
	if transition.Severity < 1 || transition.Severity > 10 {
		t.Fatalf("severity %d out of range", transition.Severity)
	}
}

func TestDetectEmotionalArc_Loop(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	texts := []string{
		"Happy and excited today!",
		"Sad and exhausted again.",
		"Wonderful, joyful news!",
		"Miserable and hopeless evening.",
		"Grateful and relieved at last.",
	}
	var components []common.MemoryComponent
	for i, text := range texts {
		components = append(components, comp(fmt.Sprintf("c%d", i), text, base.AddDate(0, 0, i)))
	}

	events := (&Detector{}).DetectEmotionalArc("owner-1", components)
	found := false
	for _, e := range events {
		if e.EventType == common.EventEmotionalLoop {
			found = true
			if e.Metadata["cycles"].(int) < minLoopCycles {
				t.Fatalf("cycles below minimum: %v", e.Metadata)
			}
		}
	}
	if !found {
		t.Fatalf("expected a loop event, got %v", events)
	}
}

func TestBuildReport(t *testing.T) {
	events := []common.ContinuityEvent{
		{EventType: common.EventContradiction, Severity: 7},
		{EventType: common.EventContradiction, Severity: 5},
		{EventType: common.EventIdentityDrift, Severity: 10},
	}

	report := BuildReport(events)
	if report.Contradictions != 2 || report.DriftEvents != 1 {
		t.Fatalf("counts = %d/%d", report.Contradictions, report.DriftEvents)
	}
	// 100 - 2*5 - 10*(10/10) = 80
	if report.Score != 80 {
		t.Fatalf("score = %v, want 80", report.Score)
	}
	if len(report.Suggestions) != 3 {
		t.Fatalf("expected a suggestion per event, got %d", len(report.Suggestions))
	}

	if empty := BuildReport(nil); empty.Score != 100 {
		t.Fatalf("empty report score = %v, want 100", empty.Score)
	}
}
