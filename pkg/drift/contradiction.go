package drift

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/util"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

const (
	// ClusterThreshold is the pairwise similarity above which components
	// fall into the same topical cluster.
	ClusterThreshold = 0.6

	// minClusterSize drops singleton clusters.
	minClusterSize = 2

	// OutlierThreshold is the centroid similarity below which a cluster
	// member becomes a contradiction candidate.
	OutlierThreshold = 0.45

	// minSharedKeywords is the keyword overlap that counts as topical
	// relatedness when no tag is shared.
	minSharedKeywords = 2

	// Fixed severities of the negation patterns, by pattern confidence.
	severityWouldNot = 7
	severityNever    = 8
)

// DetectContradictions runs both contradiction passes over the owner's
// components: centroid outliers within topical clusters, and negation
// statements later contradicted by action.
func (d *Detector) DetectContradictions(ownerID string, components []common.MemoryComponent) []common.ContinuityEvent {
	events := clusterOutliers(ownerID, components)
	events = append(events, negationReversals(ownerID, components)...)
	return events
}

// clusterOutliers clusters embedded components and flags members that drifted
// away from their own cluster's centroid while remaining topically tied to
// it.
func clusterOutliers(ownerID string, components []common.MemoryComponent) []common.ContinuityEvent {
	embeddings := make([][]float32, len(components))
	for i, c := range components {
		embeddings[i] = c.Embedding
	}

	var events []common.ContinuityEvent
	for _, cluster := range GreedyCluster(embeddings, ClusterThreshold, minClusterSize) {
		vectors := make([][]float32, 0, len(cluster))
		for _, idx := range cluster {
			vectors = append(vectors, embeddings[idx])
		}
		centroid := common.Centroid(vectors)
		if centroid == nil {
			continue
		}

		for _, idx := range cluster {
			sim := common.CosineSimilarity(embeddings[idx], centroid)
			if sim >= OutlierThreshold {
				continue
			}
			if !topicallyRelated(components[idx], cluster, idx, components) {
				continue
			}

			severity := common.ClampSeverity(int(math.Round((1 - sim) * 10)))
			events = append(events, common.ContinuityEvent{
				OwnerID:          ownerID,
				EventType:        common.EventContradiction,
				Description:      fmt.Sprintf("Entry diverges from related memories: %s", util.Snippet(components[idx].Text, 120)),
				SourceComponents: clusterIDs(cluster, components),
				Severity:         severity,
				Metadata: map[string]any{
					"centroid_similarity": sim,
					"cluster_size":        len(cluster),
					"outlier_id":          components[idx].ID,
				},
			})
		}
	}
	return events
}

// topicallyRelated reports whether the outlier shares a tag or enough
// keywords with at least one other cluster member.
func topicallyRelated(outlier common.MemoryComponent, cluster []int, outlierIdx int, components []common.MemoryComponent) bool {
	outlierTags := foldSet(outlier.Tags)
	outlierKeywords := Keywords(outlier.Text)

	for _, idx := range cluster {
		if idx == outlierIdx {
			continue
		}
		member := components[idx]
		for _, tag := range member.Tags {
			if _, ok := outlierTags[strings.ToLower(strings.TrimSpace(tag))]; ok {
				return true
			}
		}
		if SharedKeywords(outlierKeywords, Keywords(member.Text)) >= minSharedKeywords {
			return true
		}
	}
	return false
}

var (
	reWouldNot = regexp.MustCompile(`(?i)\b(?:would (?:not|never)|wouldn't|won't|(?:don't|do not|didn't|did not) want to|not going to)\s+([a-z][\w '-]{2,60}?)(?:[,.;!?]|$)`)
	reNever    = regexp.MustCompile(`(?i)\bnever\s+(?:going to\s+)?([a-z][\w '-]{2,60}?)(?:[,.;!?]|$)`)
)

type negation struct {
	componentIdx int
	phrase       string
	severity     int
}

// negationReversals flags "said it would not happen, then it happened": a
// negative statement whose phrase keywords later show up in a non-negated
// component. The negative statement must precede the positive one.
func negationReversals(ownerID string, components []common.MemoryComponent) []common.ContinuityEvent {
	var negations []negation
	for i, c := range components {
		if m := reWouldNot.FindStringSubmatch(c.Text); m != nil {
			negations = append(negations, negation{componentIdx: i, phrase: m[1], severity: severityWouldNot})
			continue
		}
		if m := reNever.FindStringSubmatch(c.Text); m != nil {
			negations = append(negations, negation{componentIdx: i, phrase: m[1], severity: severityNever})
		}
	}

	var events []common.ContinuityEvent
	for _, neg := range negations {
		negComponent := components[neg.componentIdx]
		phraseKeywords := Keywords(neg.phrase)
		if len(phraseKeywords) == 0 {
			continue
		}
		needed := max(1, len(phraseKeywords)/2)

		for j := neg.componentIdx + 1; j < len(components); j++ {
			candidate := components[j]
			if !timestampAfter(negComponent, candidate) {
				continue
			}
			if reWouldNot.MatchString(candidate.Text) || reNever.MatchString(candidate.Text) {
				continue
			}
			if SharedKeywords(phraseKeywords, Keywords(candidate.Text)) < needed {
				continue
			}

			events = append(events, common.ContinuityEvent{
				OwnerID:          ownerID,
				EventType:        common.EventContradiction,
				Description:      fmt.Sprintf("Earlier entry ruled out %q, later entry describes it happening", strings.TrimSpace(neg.phrase)),
				SourceComponents: []string{negComponent.ID, candidate.ID},
				Severity:         neg.severity,
				Metadata: map[string]any{
					"pattern": "negation_reversal",
					"phrase":  strings.TrimSpace(neg.phrase),
				},
			})
			break
		}
	}
	return events
}

// timestampAfter reports whether b happened after a. Components without
// timestamps fall back to scan order, which is already chronological.
func timestampAfter(a, b common.MemoryComponent) bool {
	if a.Timestamp == nil || b.Timestamp == nil {
		return true
	}
	return b.Timestamp.After(*a.Timestamp)
}

func clusterIDs(cluster []int, components []common.MemoryComponent) []string {
	ids := make([]string, 0, len(cluster))
	for _, idx := range cluster {
		ids = append(ids, components[idx].ID)
	}
	return ids
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
