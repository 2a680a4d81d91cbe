package store

import (
	"context"
	"errors"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

// ErrNotFound is returned when a requested row does not exist. Callers that
// can degrade treat it as recoverable; mutation endpoints surface it.
var ErrNotFound = errors.New("store: not found")

// ContinuityStorage defines the persistence surface of the continuity engine:
// fact claims and their verification results, memory components and the
// relationship graph between them, and the append-only continuity event log.
type ContinuityStorage interface {
	SaveClaims(ctx context.Context, ownerID string, claims []common.FactClaim) error
	GetClaimsByEntry(ctx context.Context, entryID string) ([]common.FactClaim, error)
	FindClaimsByPair(ctx context.Context, ownerID, subject, attribute string) ([]common.FactClaim, error)

	SaveVerification(ctx context.Context, entryID string, result common.VerificationResult) error
	GetVerification(ctx context.Context, entryID string) (common.VerificationResult, error)

	GetEntry(ctx context.Context, entryID string) (common.Entry, error)
	GetEntriesNear(ctx context.Context, ownerID string, around time.Time, window time.Duration, excludeID string) ([]common.Entry, error)
	SearchEntriesBySubject(ctx context.Context, ownerID, subject string, limit int) ([]common.Entry, error)

	GetComponent(ctx context.Context, componentID string) (common.MemoryComponent, error)
	GetComponentsByOwner(ctx context.Context, ownerID string) ([]common.MemoryComponent, error)
	GetComponentsInWindow(ctx context.Context, ownerID string, from, to time.Time) ([]common.MemoryComponent, error)

	SaveEdges(ctx context.Context, edges []common.GraphEdge) error
	GetNeighbors(ctx context.Context, componentID string, relType common.RelationshipType, limit int) ([]common.MemoryComponent, []common.GraphEdge, error)
	FindPath(ctx context.Context, sourceID, targetID string, maxDepth int) ([]string, error)
	GetAncestorPaths(ctx context.Context, componentIDs []string, depth int) (map[string][]string, error)

	SaveEvents(ctx context.Context, events []common.ContinuityEvent) error
	ListUnresolvedEvents(ctx context.Context, ownerID string, eventType common.EventType) ([]common.ContinuityEvent, error)
	ResolveEvent(ctx context.Context, eventID string) error
}

// ChunkRange walks [0, total) in chunkSize steps, calling fn with each
// half-open range. A non-positive chunkSize processes everything at once.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// DedupeStrings returns in without empty values or duplicates, preserving
// first-seen order.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
