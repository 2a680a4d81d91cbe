package pgx

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SaveEvents appends detected continuity events to the log. Events are never
// updated in place by detection; re-running a scan appends nothing for
// signatures already present.
func (s *ContinuityDBStorage) SaveEvents(ctx context.Context, events []common.ContinuityEvent) error {
	if len(events) == 0 {
		return nil
	}

	logger.Debug("[Store][SaveEvents] Appending continuity events", "events", len(events))

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		id := e.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return err
			}
		}

		var metadata []byte
		if len(e.Metadata) > 0 {
			metadata, err = json.Marshal(e.Metadata)
			if err != nil {
				return err
			}
		}

		s.dbLock.Lock()
		_, err = tx.Exec(ctx, `
			INSERT INTO continuity_events
				(public_id, owner_id, event_type, description, source_components, severity, metadata, signature)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (owner_id, event_type, signature) DO NOTHING`,
			id, e.OwnerID, string(e.EventType), e.Description,
			store.DedupeStrings(e.SourceComponents), common.ClampSeverity(e.Severity), metadata,
			eventSignature(e),
		)
		s.dbLock.Unlock()
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListUnresolvedEvents returns the owner's open events, newest first. An
// empty eventType matches every type.
func (s *ContinuityDBStorage) ListUnresolvedEvents(ctx context.Context, ownerID string, eventType common.EventType) ([]common.ContinuityEvent, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, owner_id, event_type, description, source_components, severity, metadata, resolved, created_at
		FROM continuity_events
		WHERE owner_id = $1
			AND NOT resolved
			AND ($2 = '' OR event_type = $2)
		ORDER BY created_at DESC, public_id`,
		ownerID, string(eventType),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []common.ContinuityEvent
	for rows.Next() {
		var e common.ContinuityEvent
		var eventType string
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.OwnerID, &eventType, &e.Description, &e.SourceComponents, &e.Severity, &metadata, &e.Resolved, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EventType = common.EventType(eventType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ResolveEvent marks one event resolved. Resolving a missing event returns
// ErrNotFound; resolving twice is a no-op.
func (s *ContinuityDBStorage) ResolveEvent(ctx context.Context, eventID string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	tag, err := s.conn.Exec(ctx, `
		UPDATE continuity_events SET resolved = true, resolved_at = now()
		WHERE public_id = $1`,
		eventID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// eventSignature derives the dedup key of an event from its type and the
// sorted source component set.
func eventSignature(e common.ContinuityEvent) string {
	ids := store.DedupeStrings(e.SourceComponents)
	if len(ids) == 0 {
		return e.Description
	}
	slices.Sort(ids)
	return strings.Join(ids, ",")
}
