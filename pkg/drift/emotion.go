package drift

import (
	"fmt"
	"math"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

const (
	// sentimentWindow is the trailing moving-average window. It counts
	// data points, not calendar days: with one component per day the two
	// coincide, with sparser journals the window spans more time.
	sentimentWindow = 14

	// slopeGap is the distance between compared moving-average points.
	slopeGap = 14

	// TransitionThreshold is the minimum absolute slope that counts as an
	// emotional transition.
	TransitionThreshold = 0.3

	// excursionThreshold bounds the high/low sentiment excursions counted
	// for loop detection.
	excursionThreshold = 0.3

	// minLoopCycles is how many high/low cycles make a loop event.
	minLoopCycles = 2
)

var positiveWords = map[string]struct{}{
	"happy": {}, "joy": {}, "joyful": {}, "excited": {}, "grateful": {},
	"proud": {}, "calm": {}, "peaceful": {}, "hopeful": {}, "love": {},
	"loved": {}, "great": {}, "wonderful": {}, "amazing": {}, "good": {},
	"fun": {}, "relieved": {}, "confident": {}, "optimistic": {}, "content": {},
	"thrilled": {}, "energized": {},
}

var negativeWords = map[string]struct{}{
	"sad": {}, "angry": {}, "anxious": {}, "worried": {}, "afraid": {},
	"scared": {}, "tired": {}, "exhausted": {}, "depressed": {}, "lonely": {},
	"frustrated": {}, "upset": {}, "miserable": {}, "terrible": {}, "awful": {},
	"bad": {}, "stressed": {}, "hopeless": {}, "guilty": {}, "overwhelmed": {},
	"drained": {}, "empty": {},
}

// SentimentScore scores text by keyword polarity, normalized to [-1, 1] by
// the total match count. Text without any matching word scores 0.
func SentimentScore(text string) float64 {
	positive, negative := 0, 0
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := positiveWords[w]; ok {
			positive++
		}
		if _, ok := negativeWords[w]; ok {
			negative++
		}
	}
	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

// DetectEmotionalArc scores the owner's components chronologically, smooths
// the series with a trailing moving average, and flags steep slope
// transitions plus repeating high/low loops.
func (d *Detector) DetectEmotionalArc(ownerID string, components []common.MemoryComponent) []common.ContinuityEvent {
	if len(components) == 0 {
		return nil
	}

	scores := make([]float64, len(components))
	for i, c := range components {
		scores[i] = SentimentScore(c.Text)
	}

	events := emotionalTransitions(ownerID, components, scores)
	if ev, ok := emotionalLoop(ownerID, components, scores); ok {
		events = append(events, ev)
	}
	return events
}

// emotionalTransitions flags positions where the smoothed sentiment moved by
// at least the threshold across the slope gap. Only the start of each steep
// run is reported.
func emotionalTransitions(ownerID string, components []common.MemoryComponent, scores []float64) []common.ContinuityEvent {
	smoothed := MovingAverage(scores, sentimentWindow)
	slopes := SlopeBetween(smoothed, slopeGap)

	var events []common.ContinuityEvent
	previousSteep := false
	for i, slope := range slopes {
		steep := math.Abs(slope) >= TransitionThreshold
		if steep && !previousSteep {
			at := components[i+slopeGap]
			direction := "improving"
			if slope < 0 {
				direction = "declining"
			}
			events = append(events, common.ContinuityEvent{
				OwnerID:          ownerID,
				EventType:        common.EventEmotionalTransition,
				Description:      fmt.Sprintf("Emotional tone is %s sharply around this period", direction),
				SourceComponents: []string{at.ID},
				Severity:         common.ClampSeverity(int(math.Round(math.Abs(slope) * 20))),
				Metadata: map[string]any{
					"slope":     slope,
					"direction": direction,
				},
			})
		}
		previousSteep = steep
	}
	return events
}

// emotionalLoop counts alternating high/low sentiment excursions. Two or
// more full cycles produce one loop event spanning the excursion components.
func emotionalLoop(ownerID string, components []common.MemoryComponent, scores []float64) (common.ContinuityEvent, bool) {
	state := 0 // 1 high, -1 low
	swings := 0
	var involved []string

	for i, score := range scores {
		next := 0
		if score > excursionThreshold {
			next = 1
		} else if score < -excursionThreshold {
			next = -1
		}
		if next == 0 || next == state {
			continue
		}
		if state != 0 {
			swings++
		}
		involved = append(involved, components[i].ID)
		state = next
	}

	cycles := swings / 2
	if cycles < minLoopCycles {
		return common.ContinuityEvent{}, false
	}

	return common.ContinuityEvent{
		OwnerID:          ownerID,
		EventType:        common.EventEmotionalLoop,
		Description:      fmt.Sprintf("Mood is swinging between highs and lows repeatedly (%d cycles)", cycles),
		SourceComponents: involved,
		Severity:         common.ClampSeverity(3 + 2*cycles),
		Metadata: map[string]any{
			"cycles": cycles,
		},
	}, true
}
