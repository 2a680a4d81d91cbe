package pgx

import (
	"context"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const claimChunkSize = 250

// SaveClaims persists extracted claims for their entries. A claim already
// stored for the same entry with the same identity triple is left untouched;
// re-verification must not duplicate rows.
func (s *ContinuityDBStorage) SaveClaims(ctx context.Context, ownerID string, claims []common.FactClaim) error {
	kept := make([]common.FactClaim, 0, len(claims))
	for _, c := range claims {
		if !c.Valid() || c.EntryID == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil
	}

	logger.Debug("[Store][SaveClaims] Upserting claims", "owner", ownerID, "claims", len(kept))

	return store.ChunkRange(len(kept), claimChunkSize, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, c := range kept[start:end] {
			id := c.ID
			if id == "" {
				id, err = gonanoid.New()
				if err != nil {
					return err
				}
			}

			s.dbLock.Lock()
			_, err = tx.Exec(ctx, `
				INSERT INTO fact_claims
					(public_id, owner_id, entry_id, claim_type, subject, attribute, value, confidence, context)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (entry_id, lower(subject), lower(attribute), lower(value)) DO NOTHING`,
				id, ownerID, c.EntryID, string(c.ClaimType), c.Subject, c.Attribute, c.Value,
				common.ClampUnit(c.Confidence), c.Context,
			)
			s.dbLock.Unlock()
			if err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
}

// GetClaimsByEntry returns every stored claim extracted from the given entry.
func (s *ContinuityDBStorage) GetClaimsByEntry(ctx context.Context, entryID string) ([]common.FactClaim, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, entry_id, claim_type, subject, attribute, value, confidence, context
		FROM fact_claims
		WHERE entry_id = $1
		ORDER BY created_at, public_id`,
		entryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

// FindClaimsByPair returns the owner's claims about one subject:attribute
// pair, case-insensitively, oldest first.
func (s *ContinuityDBStorage) FindClaimsByPair(ctx context.Context, ownerID, subject, attribute string) ([]common.FactClaim, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, entry_id, claim_type, subject, attribute, value, confidence, context
		FROM fact_claims
		WHERE owner_id = $1 AND lower(subject) = lower($2) AND lower(attribute) = lower($3)
		ORDER BY created_at, public_id`,
		ownerID, subject, attribute,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanClaims(rows)
}

func scanClaims(rows pgxv5.Rows) ([]common.FactClaim, error) {
	var claims []common.FactClaim
	for rows.Next() {
		var c common.FactClaim
		var claimType string
		if err := rows.Scan(&c.ID, &c.EntryID, &claimType, &c.Subject, &c.Attribute, &c.Value, &c.Confidence, &c.Context); err != nil {
			return nil, err
		}
		c.ClaimType = common.ClaimType(claimType)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
