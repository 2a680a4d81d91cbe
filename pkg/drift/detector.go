package drift

import (
	"context"
	"sort"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
)

// DefaultRecentWindow is the identity-drift "recent" window used when the
// caller does not supply one.
const DefaultRecentWindow = 14 * 24 * time.Hour

// Detector runs the three drift analyses over an owner's memory components:
// contradiction clustering, identity drift, and the emotional arc. All three
// are best-effort; store or provider failures shrink the result to an empty
// set instead of erroring.
type Detector struct {
	store    store.ContinuityStorage
	aiClient ai.ContinuityAIClient
}

// NewDetector creates a Detector. aiClient may be nil; components without
// stored embeddings are then excluded from embedding-based passes.
func NewDetector(st store.ContinuityStorage, aiClient ai.ContinuityAIClient) *Detector {
	return &Detector{store: st, aiClient: aiClient}
}

// Scan runs every detector over the owner's components as of now, persists
// the findings, and returns them. Detection is append-only: events whose
// signature was already recorded are not duplicated by the store.
func (d *Detector) Scan(ctx context.Context, ownerID string, now time.Time, recentWindow time.Duration) ([]common.ContinuityEvent, error) {
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}

	components, err := d.store.GetComponentsByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("[Drift][Scan] Failed to load components, returning empty scan", "owner", ownerID, "err", err)
		return nil, nil
	}
	sortByTimestamp(components)
	d.fillEmbeddings(ctx, components)

	// Identity drift only needs the recent window plus one month of
	// history before it; query that slice instead of reusing the full set.
	historicalStart := now.Add(-recentWindow).AddDate(0, -1, 0)
	identityScope, err := d.store.GetComponentsInWindow(ctx, ownerID, historicalStart, now)
	if err != nil {
		logger.Warn("[Drift][Scan] Windowed component lookup failed, using full set", "owner", ownerID, "err", err)
		identityScope = components
	} else {
		sortByTimestamp(identityScope)
		d.fillEmbeddings(ctx, identityScope)
	}

	var events []common.ContinuityEvent
	events = append(events, d.DetectContradictions(ownerID, components)...)
	events = append(events, d.DetectIdentityDrift(ownerID, identityScope, now, recentWindow)...)
	events = append(events, d.DetectEmotionalArc(ownerID, components)...)

	if err := d.store.SaveEvents(ctx, events); err != nil {
		logger.Error("[Drift][Scan] Failed to persist events", "owner", ownerID, "err", err)
	}

	logger.Info("[Drift][Scan] Scan complete", "owner", ownerID, "components", len(components), "events", len(events))
	return events, nil
}

func (d *Detector) fillEmbeddings(ctx context.Context, components []common.MemoryComponent) {
	if d.aiClient == nil {
		return
	}
	for i := range components {
		if len(components[i].Embedding) > 0 || components[i].Text == "" {
			continue
		}
		embedding, err := d.aiClient.GenerateEmbedding(ctx, []byte(components[i].Text))
		if err != nil {
			logger.Warn("[Drift][Scan] Embedding backfill failed", "component", components[i].ID, "err", err)
			continue
		}
		components[i].Embedding = embedding
	}
}

func sortByTimestamp(components []common.MemoryComponent) {
	sort.SliceStable(components, func(i, j int) bool {
		ti, tj := components[i].Timestamp, components[j].Timestamp
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.Before(*tj)
	})
}
