package drift

import (
	"regexp"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

// GreedyCluster groups embedding indexes by pairwise cosine similarity: a
// vector joins the first open cluster containing any member closer than
// threshold. Clusters smaller than minSize are dropped. Vectors without data
// are never clustered.
func GreedyCluster(embeddings [][]float32, threshold float64, minSize int) [][]int {
	assigned := make([]bool, len(embeddings))
	var clusters [][]int

	for i := range embeddings {
		if assigned[i] || len(embeddings[i]) == 0 {
			continue
		}
		cluster := []int{i}
		assigned[i] = true

		// Grow transitively: anything similar to a member joins.
		for grew := true; grew; {
			grew = false
			for j := range embeddings {
				if assigned[j] || len(embeddings[j]) == 0 {
					continue
				}
				for _, member := range cluster {
					if common.CosineSimilarity(embeddings[member], embeddings[j]) > threshold {
						cluster = append(cluster, j)
						assigned[j] = true
						grew = true
						break
					}
				}
			}
		}

		if len(cluster) >= minSize {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

// MovingAverage returns the trailing mean of values over the given window.
// Early positions average whatever prefix exists.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			out[i] = sum / float64(window)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// SlopeBetween returns series[i] - series[i-gap] for every position that has
// a counterpart gap points back.
func SlopeBetween(series []float64, gap int) []float64 {
	if gap <= 0 || len(series) <= gap {
		return nil
	}
	out := make([]float64, 0, len(series)-gap)
	for i := gap; i < len(series); i++ {
		out = append(out, series[i]-series[i-gap])
	}
	return out
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]{2,}`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "was": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "her": {}, "his": {}, "has": {}, "had": {}, "have": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "them": {},
	"were": {}, "been": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"about": {}, "into": {}, "just": {}, "like": {}, "some": {}, "then": {},
	"than": {}, "when": {}, "what": {}, "there": {}, "their": {}, "because": {},
	"today": {}, "really": {}, "very": {}, "going": {}, "still": {}, "also": {},
}

// Keywords extracts the distinct lowercased content words of text, in order
// of first appearance.
func Keywords(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, w := range matches {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// SharedKeywords counts words present in both keyword lists.
func SharedKeywords(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range b {
		if _, ok := set[w]; ok {
			shared++
		}
	}
	return shared
}
