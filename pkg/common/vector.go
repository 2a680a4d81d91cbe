package common

import "math"

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1], or 0 when either vector is empty, zero, or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Centroid returns the element-wise mean of the given vectors, skipping
// vectors whose length differs from the first. Returns nil for no input.
func Centroid(vectors [][]float32) []float32 {
	var out []float64
	count := 0
	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if out == nil {
			out = make([]float64, len(v))
		}
		if len(v) != len(out) {
			continue
		}
		for i := range v {
			out[i] += float64(v[i])
		}
		count++
	}
	if count == 0 {
		return nil
	}

	result := make([]float32, len(out))
	for i := range out {
		result[i] = float32(out[i] / float64(count))
	}
	return result
}
