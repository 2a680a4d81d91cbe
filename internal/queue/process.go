package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/drift"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/graphlink"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"
)

type QueueEdgeBuildMsg struct {
	Message     string `json:"message"`
	OwnerID     string `json:"owner_id"`
	ComponentID string `json:"component_id,omitempty"`
}

type QueueDriftScanMsg struct {
	Message          string `json:"message"`
	OwnerID          string `json:"owner_id"`
	RecentWindowDays int    `json:"recent_window_days,omitempty"`
}

// ProcessEdgeBuildMessage links a single component when the message names
// one, otherwise rebuilds the owner's whole graph.
func ProcessEdgeBuildMessage(
	ctx context.Context,
	aiClient ai.ContinuityAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueEdgeBuildMsg)
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	st := constorage.NewContinuityDBStorageWithConnection(conn)
	builder := graphlink.NewBuilder(st, aiClient)

	if data.ComponentID != "" {
		edges, err := builder.BuildForComponent(ctx, data.ComponentID)
		if err != nil {
			return err
		}
		logger.Info("[Queue][EdgeBuild] Linked component", "component_id", data.ComponentID, "edges", len(edges))
		return nil
	}

	handle, err := builder.BuildAll(ctx, data.OwnerID)
	if err != nil {
		return err
	}
	count, err := handle.Wait(ctx)
	if err != nil {
		return err
	}

	logger.Info("[Queue][EdgeBuild] Rebuilt owner graph", "owner_id", data.OwnerID, "edges", count)
	return nil
}

// ProcessDriftScanMessage runs the drift detectors for an owner and persists
// whatever events they raise.
func ProcessDriftScanMessage(
	ctx context.Context,
	aiClient ai.ContinuityAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueDriftScanMsg)
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	window := drift.DefaultRecentWindow
	if data.RecentWindowDays > 0 {
		window = time.Duration(data.RecentWindowDays) * 24 * time.Hour
	}

	st := constorage.NewContinuityDBStorageWithConnection(conn)
	detector := drift.NewDetector(st, aiClient)

	events, err := detector.Scan(ctx, data.OwnerID, time.Now(), window)
	if err != nil {
		return err
	}

	logger.Info("[Queue][DriftScan] Scan complete", "owner_id", data.OwnerID, "events", len(events))
	return nil
}
