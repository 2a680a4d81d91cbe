package drift

import (
	"context"
	"testing"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
)

type fakeStore struct {
	ownerComponents  []common.MemoryComponent
	windowComponents []common.MemoryComponent
	windowFrom       time.Time
	windowTo         time.Time
	windowCalls      int
	savedEvents      []common.ContinuityEvent
}

func (f *fakeStore) GetComponentsByOwner(_ context.Context, _ string) ([]common.MemoryComponent, error) {
	return append([]common.MemoryComponent(nil), f.ownerComponents...), nil
}

func (f *fakeStore) GetComponentsInWindow(_ context.Context, _ string, from, to time.Time) ([]common.MemoryComponent, error) {
	f.windowCalls++
	f.windowFrom = from
	f.windowTo = to
	return append([]common.MemoryComponent(nil), f.windowComponents...), nil
}

func (f *fakeStore) SaveEvents(_ context.Context, events []common.ContinuityEvent) error {
	f.savedEvents = append(f.savedEvents, events...)
	return nil
}

func (f *fakeStore) GetComponent(_ context.Context, _ string) (common.MemoryComponent, error) {
	return common.MemoryComponent{}, store.ErrNotFound
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

func (f *fakeStore) SaveEdges(_ context.Context, _ []common.GraphEdge) error { return nil }

func (f *fakeStore) GetNeighbors(_ context.Context, _ string, _ common.RelationshipType, _ int) ([]common.MemoryComponent, []common.GraphEdge, error) {
	return nil, nil, nil
}

func (f *fakeStore) FindPath(_ context.Context, _, _ string, _ int) ([]string, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetAncestorPaths(_ context.Context, _ []string, _ int) (map[string][]string, error) {
	return map[string][]string{}, nil
}

func (f *fakeStore) ListUnresolvedEvents(_ context.Context, _ string, _ common.EventType) ([]common.ContinuityEvent, error) {
	return nil, nil
}

func (f *fakeStore) ResolveEvent(_ context.Context, _ string) error { return nil }

func TestScan_IdentityDriftUsesWindowedComponents(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	st := &fakeStore{
		ownerComponents: []common.MemoryComponent{
			comp("c1", "Routine errands and paperwork.", now.AddDate(0, 0, -40)),
			comp("c2", "More routine errands today.", now.AddDate(0, 0, -5)),
		},
		windowComponents: []common.MemoryComponent{
			comp("h1", "I am confident about where this is going.", now.AddDate(0, 0, -20)),
			comp("r1", "I am insecure about everything lately.", now.AddDate(0, 0, -3)),
		},
	}

	events, err := NewDetector(st, nil).Scan(context.Background(), "owner-1", now, DefaultRecentWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st.windowCalls != 1 {
		t.Fatalf("windowed component query ran %d times, want 1", st.windowCalls)
	}
	wantFrom := now.Add(-DefaultRecentWindow).AddDate(0, -1, 0)
	if !st.windowFrom.Equal(wantFrom) || !st.windowTo.Equal(now) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", st.windowFrom, st.windowTo, wantFrom, now)
	}

	var drift *common.ContinuityEvent
	for i := range events {
		if events[i].EventType == common.EventIdentityDrift {
			drift = &events[i]
			break
		}
	}
	if drift == nil {
		t.Fatalf("expected an identity drift event from the windowed components, got %v", events)
	}
	if len(st.savedEvents) != len(events) {
		t.Fatalf("persisted %d events, want %d", len(st.savedEvents), len(events))
	}
}
