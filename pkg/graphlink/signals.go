package graphlink

import (
	"strings"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

const (
	// SemanticThreshold is the minimum cosine similarity that produces a
	// semantic edge.
	SemanticThreshold = 0.7

	// TemporalWindow is the widest gap that still produces a temporal edge.
	TemporalWindow = 7 * 24 * time.Hour

	// narrativeDepth is how many timeline ancestors each component
	// contributes to the narrative signal.
	narrativeDepth = 9
)

// semanticSignal links components whose embeddings are close. The edge
// weight is the similarity itself.
func semanticSignal(a, b common.MemoryComponent) (float64, bool) {
	sim := common.CosineSimilarity(a.Embedding, b.Embedding)
	if sim < SemanticThreshold {
		return 0, false
	}
	return sim, true
}

// socialSignal links components sharing involved characters, weighted by
// overlap against the larger cast.
func socialSignal(a, b common.MemoryComponent) (float64, bool) {
	return overlapRatio(a.CharactersInvolved, b.CharactersInvolved)
}

// thematicSignal links components sharing tags, weighted by overlap against
// the larger tag set.
func thematicSignal(a, b common.MemoryComponent) (float64, bool) {
	return overlapRatio(a.Tags, b.Tags)
}

// narrativeSignal links components sharing timeline ancestors. The weight is
// the matched share of the ancestor chain.
func narrativeSignal(ancestorsA, ancestorsB []string) (float64, bool) {
	if len(ancestorsA) == 0 || len(ancestorsB) == 0 {
		return 0, false
	}
	setB := make(map[string]struct{}, len(ancestorsB))
	for _, id := range ancestorsB {
		setB[strings.ToLower(id)] = struct{}{}
	}
	matched := 0
	for _, id := range ancestorsA {
		if _, ok := setB[strings.ToLower(id)]; ok {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}
	return float64(matched) / float64(narrativeDepth), true
}

// temporalSignal links components close in time, decaying linearly to zero
// at the window edge.
func temporalSignal(a, b common.MemoryComponent) (float64, bool) {
	if a.Timestamp == nil || b.Timestamp == nil {
		return 0, false
	}
	gap := a.Timestamp.Sub(*b.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	if gap > TemporalWindow {
		return 0, false
	}
	return 1 - gap.Hours()/TemporalWindow.Hours(), true
}

// overlapRatio returns the shared count over the larger set size, computed
// on case-folded string sets.
func overlapRatio(a, b []string) (float64, bool) {
	setA := foldSet(a)
	setB := foldSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0, false
	}

	shared := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0, false
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger), true
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
