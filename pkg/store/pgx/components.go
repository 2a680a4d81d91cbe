package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const componentColumns = `
	public_id, owner_id, entry_id, component_type, text,
	characters_involved, location, occurred_at, tags, importance_score, embedding`

// GetComponent loads one memory component, or ErrNotFound.
func (s *ContinuityDBStorage) GetComponent(ctx context.Context, componentID string) (common.MemoryComponent, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT `+componentColumns+`
		FROM memory_components
		WHERE public_id = $1`,
		componentID,
	)

	c, err := scanComponent(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.MemoryComponent{}, store.ErrNotFound
	}
	return c, err
}

// GetComponentsByOwner returns every component belonging to the owner,
// oldest first.
func (s *ContinuityDBStorage) GetComponentsByOwner(ctx context.Context, ownerID string) ([]common.MemoryComponent, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+componentColumns+`
		FROM memory_components
		WHERE owner_id = $1
		ORDER BY occurred_at NULLS LAST, public_id`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComponents(rows)
}

// GetComponentsInWindow returns the owner's components whose timestamp falls
// in [from, to), oldest first. Components without a timestamp are excluded.
func (s *ContinuityDBStorage) GetComponentsInWindow(ctx context.Context, ownerID string, from, to time.Time) ([]common.MemoryComponent, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+componentColumns+`
		FROM memory_components
		WHERE owner_id = $1
			AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at, public_id`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComponents(rows)
}

func scanComponents(rows pgxv5.Rows) ([]common.MemoryComponent, error) {
	var components []common.MemoryComponent
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func scanComponent(row pgxv5.Row) (common.MemoryComponent, error) {
	var c common.MemoryComponent
	var ts *time.Time
	var embedding *pgvector.Vector
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.EntryID, &c.ComponentType, &c.Text,
		&c.CharactersInvolved, &c.Location, &ts, &c.Tags, &c.ImportanceScore, &embedding,
	)
	if err != nil {
		return common.MemoryComponent{}, err
	}
	c.Timestamp = ts
	if embedding != nil {
		c.Embedding = embedding.Slice()
	}
	return c, nil
}
