package drift

import (
	"math"
	"reflect"
	"testing"
)

func TestGreedyCluster_SingleCluster(t *testing.T) {
	embeddings := [][]float32{
		{1, 0.01, 0},
		{1, 0.02, 0},
		{0.99, 0, 0.01},
		{0, 1, 0}, // unrelated, ends up a dropped singleton
	}

	clusters := GreedyCluster(embeddings, 0.9, 2)
	if len(clusters) != 1 {
		t.Fatalf("expected exactly one cluster, got %d: %v", len(clusters), clusters)
	}
	if len(clusters[0]) != 3 {
		t.Fatalf("expected cluster of 3, got %v", clusters[0])
	}
}

func TestGreedyCluster_SkipsEmptyEmbeddings(t *testing.T) {
	embeddings := [][]float32{{1, 0}, nil, {1, 0.01}}
	clusters := GreedyCluster(embeddings, 0.9, 2)
	if len(clusters) != 1 || len(clusters[0]) != 2 {
		t.Fatalf("expected one cluster of the two embedded vectors, got %v", clusters)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MovingAverage = %v, want %v", got, want)
	}
	if MovingAverage(nil, 3) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestSlopeBetween(t *testing.T) {
	got := SlopeBetween([]float64{0, 0, 1, 3}, 2)
	want := []float64{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SlopeBetween = %v, want %v", got, want)
	}
	if SlopeBetween([]float64{1, 2}, 2) != nil {
		t.Fatal("expected nil when the series is shorter than the gap")
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("Signed my Chicago lease today! The lease is great.")
	want := []string{"signed", "chicago", "lease", "great"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keywords = %v, want %v", got, want)
	}
}

func TestSharedKeywords(t *testing.T) {
	a := Keywords("move to Chicago")
	b := Keywords("Signed my Chicago lease")
	if got := SharedKeywords(a, b); got != 1 {
		t.Fatalf("SharedKeywords = %d, want 1", got)
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"I felt happy and grateful all day", 1},
		{"Tired, anxious, and sad again", -1},
		{"Happy morning, terrible evening", 0},
		{"Bought groceries and cleaned", 0},
	}
	for _, tt := range tests {
		if got := SentimentScore(tt.text); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("SentimentScore(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
