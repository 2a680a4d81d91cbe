package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// GetEntry loads one journaling entry, or ErrNotFound.
func (s *ContinuityDBStorage) GetEntry(ctx context.Context, entryID string) (common.Entry, error) {
	var e common.Entry
	var ts *time.Time
	err := s.conn.QueryRow(ctx, `
		SELECT public_id, owner_id, content, occurred_at
		FROM entries
		WHERE public_id = $1`,
		entryID,
	).Scan(&e.ID, &e.OwnerID, &e.Content, &ts)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Entry{}, store.ErrNotFound
	}
	if err != nil {
		return common.Entry{}, err
	}
	e.Timestamp = ts
	return e, nil
}

// GetEntriesNear returns the owner's entries whose timestamp falls within
// window of around, excluding excludeID, oldest first.
func (s *ContinuityDBStorage) GetEntriesNear(ctx context.Context, ownerID string, around time.Time, window time.Duration, excludeID string) ([]common.Entry, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, owner_id, content, occurred_at
		FROM entries
		WHERE owner_id = $1
			AND public_id <> $2
			AND occurred_at BETWEEN $3 AND $4
		ORDER BY occurred_at, public_id`,
		ownerID, excludeID, around.Add(-window), around.Add(window),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SearchEntriesBySubject full-text searches the owner's entries for mentions
// of subject, newest first.
func (s *ContinuityDBStorage) SearchEntriesBySubject(ctx context.Context, ownerID, subject string, limit int) ([]common.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, owner_id, content, occurred_at
		FROM entries
		WHERE owner_id = $1
			AND to_tsvector('english', content) @@ plainto_tsquery('english', $2)
		ORDER BY occurred_at DESC, public_id
		LIMIT $3`,
		ownerID, subject, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgxv5.Rows) ([]common.Entry, error) {
	var entries []common.Entry
	for rows.Next() {
		var e common.Entry
		var ts *time.Time
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Content, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
