package graphlink

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
)

type fakeStore struct {
	mu         sync.Mutex
	components map[string]common.MemoryComponent
	ancestors  map[string][]string
	saved      []common.GraphEdge
}

func (f *fakeStore) SaveClaims(_ context.Context, _ string, _ []common.FactClaim) error { return nil }

func (f *fakeStore) GetClaimsByEntry(_ context.Context, _ string) ([]common.FactClaim, error) {
	return nil, nil
}

func (f *fakeStore) FindClaimsByPair(_ context.Context, _, _, _ string) ([]common.FactClaim, error) {
	return nil, nil
}

func (f *fakeStore) SaveVerification(_ context.Context, _ string, _ common.VerificationResult) error {
	return nil
}

func (f *fakeStore) GetVerification(_ context.Context, _ string) (common.VerificationResult, error) {
	return common.VerificationResult{}, store.ErrNotFound
}

func (f *fakeStore) GetEntry(_ context.Context, _ string) (common.Entry, error) {
	return common.Entry{}, store.ErrNotFound
}

func (f *fakeStore) GetEntriesNear(_ context.Context, _ string, _ time.Time, _ time.Duration, _ string) ([]common.Entry, error) {
	return nil, nil
}

func (f *fakeStore) SearchEntriesBySubject(_ context.Context, _, _ string, _ int) ([]common.Entry, error) {
	return nil, nil
}

func (f *fakeStore) GetComponent(_ context.Context, componentID string) (common.MemoryComponent, error) {
	c, ok := f.components[componentID]
	if !ok {
		return common.MemoryComponent{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetComponentsByOwner(_ context.Context, ownerID string) ([]common.MemoryComponent, error) {
	var out []common.MemoryComponent
	for _, c := range f.components {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetComponentsInWindow(_ context.Context, _ string, _, _ time.Time) ([]common.MemoryComponent, error) {
	return nil, nil
}

func (f *fakeStore) SaveEdges(_ context.Context, edges []common.GraphEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, edges...)
	return nil
}

func (f *fakeStore) GetNeighbors(_ context.Context, _ string, _ common.RelationshipType, _ int) ([]common.MemoryComponent, []common.GraphEdge, error) {
	return nil, nil, nil
}

func (f *fakeStore) FindPath(_ context.Context, _, _ string, _ int) ([]string, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetAncestorPaths(_ context.Context, ids []string, _ int) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		if chain, ok := f.ancestors[id]; ok {
			out[id] = chain
		}
	}
	return out, nil
}

func (f *fakeStore) SaveEvents(_ context.Context, _ []common.ContinuityEvent) error { return nil }

func (f *fakeStore) ListUnresolvedEvents(_ context.Context, _ string, _ common.EventType) ([]common.ContinuityEvent, error) {
	return nil, nil
}

func (f *fakeStore) ResolveEvent(_ context.Context, _ string) error { return nil }

func componentAt(id string, ts time.Time) common.MemoryComponent {
	return common.MemoryComponent{ID: id, OwnerID: "owner-1", Timestamp: &ts}
}

func TestLinkPair_SemanticThreshold(t *testing.T) {
	a := common.MemoryComponent{ID: "a", Embedding: []float32{1, 0, 0}}
	b := common.MemoryComponent{ID: "b", Embedding: []float32{1, 0.1, 0}}
	c := common.MemoryComponent{ID: "c", Embedding: []float32{0, 1, 0}}

	edges := linkPair(a, b, nil)
	if len(edges) != 1 || edges[0].RelationshipType != common.RelationshipSemantic {
		t.Fatalf("expected one semantic edge, got %v", edges)
	}
	if edges[0].Weight < SemanticThreshold {
		t.Fatalf("weight %v below threshold", edges[0].Weight)
	}

	if edges := linkPair(a, c, nil); len(edges) != 0 {
		t.Fatalf("orthogonal embeddings must not link, got %v", edges)
	}
}

func TestLinkPair_SocialAndThematic(t *testing.T) {
	a := common.MemoryComponent{
		ID:                 "a",
		CharactersInvolved: []string{"Sarah", "Tom"},
		Tags:               []string{"work", "travel", "family", "health"},
	}
	b := common.MemoryComponent{
		ID:                 "b",
		CharactersInvolved: []string{"sarah"},
		Tags:               []string{"family"},
	}

	edges := linkPair(a, b, nil)
	byType := map[common.RelationshipType]common.GraphEdge{}
	for _, e := range edges {
		byType[e.RelationshipType] = e
	}

	social, ok := byType[common.RelationshipSocial]
	if !ok || social.Weight != 0.5 {
		t.Fatalf("social edge = %+v, want weight 0.5", social)
	}
	// 1 shared tag of 4 is below the minimum weight.
	if _, ok := byType[common.RelationshipThematic]; ok {
		t.Fatalf("thematic overlap 1/4 must be dropped, got %v", edges)
	}
}

func TestLinkPair_TemporalDirectionAndDecay(t *testing.T) {
	base := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	older := componentAt("older", base)
	newer := componentAt("newer", base.AddDate(0, 0, 3))

	// Pass newer first; the older component must still be the source.
	edges := linkPair(newer, older, nil)
	if len(edges) != 1 {
		t.Fatalf("expected one temporal edge, got %v", edges)
	}
	e := edges[0]
	if e.SourceID != "older" || e.TargetID != "newer" {
		t.Fatalf("edge direction %s -> %s, want older -> newer", e.SourceID, e.TargetID)
	}
	want := 1 - 3.0/7.0
	if diff := e.Weight - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weight = %v, want %v", e.Weight, want)
	}

	distant := componentAt("distant", base.AddDate(0, 0, 10))
	if edges := linkPair(older, distant, nil); len(edges) != 0 {
		t.Fatalf("gap beyond the window must not link, got %v", edges)
	}
}

func TestLinkPair_Narrative(t *testing.T) {
	a := common.MemoryComponent{ID: "a"}
	b := common.MemoryComponent{ID: "b"}
	ancestors := map[string][]string{
		"a": {"p1", "p2", "p3"},
		"b": {"p2", "p3", "p4"},
	}

	edges := linkPair(a, b, ancestors)
	if len(edges) != 0 {
		// 2 of 9 shared ancestors is below the minimum weight.
		t.Fatalf("weak ancestry must be dropped, got %v", edges)
	}

	ancestors["b"] = []string{"p1", "p2", "p3"}
	edges = linkPair(a, b, ancestors)
	if len(edges) != 1 || edges[0].RelationshipType != common.RelationshipNarrative {
		t.Fatalf("expected one narrative edge, got %v", edges)
	}
	want := 3.0 / 9.0
	if diff := edges[0].Weight - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("weight = %v, want %v", edges[0].Weight, want)
	}
}

func TestBuildAll_UniqueEdges(t *testing.T) {
	base := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	st := &fakeStore{components: map[string]common.MemoryComponent{}}
	for i := 0; i < 25; i++ {
		c := componentAt(fmt.Sprintf("c%02d", i), base.AddDate(0, 0, i))
		st.components[c.ID] = c
	}

	handle, err := NewBuilder(st, nil).BuildAll(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, err := handle.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if count != len(st.saved) {
		t.Fatalf("handle reported %d edges, store saw %d", count, len(st.saved))
	}
	if len(st.saved) == 0 {
		t.Fatal("expected temporal edges between adjacent components")
	}

	seen := map[string]bool{}
	for _, e := range st.saved {
		key := e.SourceID + "|" + e.TargetID + "|" + string(e.RelationshipType)
		if seen[key] {
			t.Fatalf("duplicate edge %s", key)
		}
		seen[key] = true
		if e.Weight < common.MinEdgeWeight || e.Weight > 1 {
			t.Fatalf("edge weight %v out of range", e.Weight)
		}
	}
}

func TestBuildForComponent(t *testing.T) {
	base := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	st := &fakeStore{components: map[string]common.MemoryComponent{
		"a": componentAt("a", base),
		"b": componentAt("b", base.AddDate(0, 0, 1)),
		"c": componentAt("c", base.AddDate(0, 0, 60)),
	}}

	edges, err := NewBuilder(st, nil).BuildForComponent(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 1 || edges[0].TargetID != "b" {
		t.Fatalf("expected a single temporal edge to b, got %v", edges)
	}
	if len(st.saved) != len(edges) {
		t.Fatal("edges were not persisted")
	}
}
