package graphlink

import (
	"context"
	"fmt"
	"sync"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	"golang.org/x/sync/errgroup"
)

const (
	// componentBatchSize is how many components one build batch compares
	// concurrently.
	componentBatchSize = 10

	// edgeSaveSize is how many edges accumulate before a save flush.
	edgeSaveSize = 100

	parallelMax = 4
)

// Builder derives relationship edges between a scope's memory components
// from five signals: semantic similarity, shared characters, shared tags,
// shared timeline ancestry, and temporal proximity. Edges below the minimum
// weight are discarded before persistence.
type Builder struct {
	store    store.ContinuityStorage
	aiClient ai.ContinuityAIClient
}

// NewBuilder creates a Builder. aiClient may be nil; components without a
// stored embedding then simply produce no semantic edges.
func NewBuilder(st store.ContinuityStorage, aiClient ai.ContinuityAIClient) *Builder {
	return &Builder{store: st, aiClient: aiClient}
}

// BuildForComponent links one component against every other component of the
// same owner and persists the surviving edges.
func (b *Builder) BuildForComponent(ctx context.Context, componentID string) ([]common.GraphEdge, error) {
	component, err := b.store.GetComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}

	others, err := b.store.GetComponentsByOwner(ctx, component.OwnerID)
	if err != nil {
		return nil, err
	}

	all := make([]common.MemoryComponent, 0, len(others)+1)
	for _, o := range others {
		if o.ID != component.ID {
			all = append(all, o)
		}
	}
	all = append(all, component)

	b.fillEmbeddings(ctx, all)

	ancestors, err := b.ancestorPaths(ctx, all)
	if err != nil {
		logger.Warn("[Graph][Build] Ancestor lookup failed, narrative signal disabled", "err", err)
		ancestors = map[string][]string{}
	}

	self := all[len(all)-1]
	var edges []common.GraphEdge
	for _, other := range all[:len(all)-1] {
		edges = append(edges, linkPair(self, other, ancestors)...)
	}

	if err := b.store.SaveEdges(ctx, edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// BuildHandle tracks an asynchronous graph build.
type BuildHandle struct {
	done chan struct{}
	err  error

	mu    sync.Mutex
	edges int
}

// Wait blocks until the build finishes or ctx expires, returning the build
// error and the number of persisted edges.
func (h *BuildHandle) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-h.done:
		return h.edges, h.err
	}
}

// BuildAll rebuilds the owner's whole graph in the background: components
// are paired batch against history, edges are flushed in chunks. The
// returned handle reports completion.
func (b *Builder) BuildAll(ctx context.Context, ownerID string) (*BuildHandle, error) {
	components, err := b.store.GetComponentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	handle := &BuildHandle{done: make(chan struct{})}
	go func() {
		defer close(handle.done)
		handle.err = b.buildAll(ctx, ownerID, components, handle)
	}()
	return handle, nil
}

func (b *Builder) buildAll(ctx context.Context, ownerID string, components []common.MemoryComponent, handle *BuildHandle) error {
	if len(components) < 2 {
		return nil
	}

	logger.Info("[Graph][Build] Building relationship graph", "owner", ownerID, "components", len(components))

	b.fillEmbeddings(ctx, components)

	ancestors, err := b.ancestorPaths(ctx, components)
	if err != nil {
		logger.Warn("[Graph][Build] Ancestor lookup failed, narrative signal disabled", "err", err)
		ancestors = map[string][]string{}
	}

	var pending []common.GraphEdge
	var pendingLock sync.Mutex

	flush := func(force bool) error {
		pendingLock.Lock()
		defer pendingLock.Unlock()
		if len(pending) == 0 || (!force && len(pending) < edgeSaveSize) {
			return nil
		}
		if err := b.store.SaveEdges(ctx, pending); err != nil {
			return err
		}
		handle.mu.Lock()
		handle.edges += len(pending)
		handle.mu.Unlock()
		pending = pending[:0]
		return nil
	}

	err = store.ChunkRange(len(components), componentBatchSize, func(start, end int) error {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(parallelMax)

		for i := start; i < end; i++ {
			source := components[i]
			rest := components[i+1:]
			g.Go(func() error {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				default:
				}

				var found []common.GraphEdge
				for _, target := range rest {
					found = append(found, linkPair(source, target, ancestors)...)
				}

				pendingLock.Lock()
				pending = append(pending, found...)
				pendingLock.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		return flush(false)
	})
	if err != nil {
		return fmt.Errorf("graph build for owner %s: %w", ownerID, err)
	}
	return flush(true)
}

// linkPair evaluates every signal over one ordered component pair. The
// older component is always the edge source.
func linkPair(a, b common.MemoryComponent, ancestors map[string][]string) []common.GraphEdge {
	source, target := a, b
	if source.Timestamp != nil && target.Timestamp != nil && target.Timestamp.Before(*source.Timestamp) {
		source, target = target, source
	}

	var edges []common.GraphEdge
	add := func(relType common.RelationshipType, weight float64, ok bool) {
		if !ok || weight < common.MinEdgeWeight {
			return
		}
		edges = append(edges, common.GraphEdge{
			SourceID:         source.ID,
			TargetID:         target.ID,
			RelationshipType: relType,
			Weight:           common.ClampWeight(weight),
		})
	}

	w, ok := semanticSignal(source, target)
	add(common.RelationshipSemantic, w, ok)

	w, ok = socialSignal(source, target)
	add(common.RelationshipSocial, w, ok)

	w, ok = thematicSignal(source, target)
	add(common.RelationshipThematic, w, ok)

	w, ok = narrativeSignal(ancestors[source.ID], ancestors[target.ID])
	add(common.RelationshipNarrative, w, ok)

	w, ok = temporalSignal(source, target)
	add(common.RelationshipTemporal, w, ok)

	return edges
}

// fillEmbeddings backfills missing embeddings from the AI client in place.
// Failures leave the embedding empty; only the semantic signal is lost.
func (b *Builder) fillEmbeddings(ctx context.Context, components []common.MemoryComponent) {
	if b.aiClient == nil {
		return
	}
	for i := range components {
		if len(components[i].Embedding) > 0 || components[i].Text == "" {
			continue
		}
		embedding, err := b.aiClient.GenerateEmbedding(ctx, []byte(components[i].Text))
		if err != nil {
			logger.Warn("[Graph][Build] Embedding backfill failed", "component", components[i].ID, "err", err)
			continue
		}
		components[i].Embedding = embedding
	}
}

func (b *Builder) ancestorPaths(ctx context.Context, components []common.MemoryComponent) (map[string][]string, error) {
	ids := make([]string, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ID)
	}
	return b.store.GetAncestorPaths(ctx, ids, narrativeDepth)
}
