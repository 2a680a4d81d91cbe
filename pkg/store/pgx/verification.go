package pgx

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// SaveVerification stores the verification result for an entry, replacing
// any previous result. Verification is recomputed on demand, so the latest
// run always wins.
func (s *ContinuityDBStorage) SaveVerification(ctx context.Context, entryID string, result common.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	_, err = s.conn.Exec(ctx, `
		INSERT INTO entry_verifications (entry_id, status, confidence_score, result, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (entry_id) DO UPDATE
		SET status = EXCLUDED.status,
			confidence_score = EXCLUDED.confidence_score,
			result = EXCLUDED.result,
			updated_at = now()`,
		entryID, string(result.Status), result.ConfidenceScore, payload,
	)
	return err
}

// GetVerification returns the stored verification result for an entry, or
// ErrNotFound when the entry was never verified.
func (s *ContinuityDBStorage) GetVerification(ctx context.Context, entryID string) (common.VerificationResult, error) {
	var payload []byte
	err := s.conn.QueryRow(ctx, `
		SELECT result FROM entry_verifications WHERE entry_id = $1`,
		entryID,
	).Scan(&payload)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.VerificationResult{}, store.ErrNotFound
	}
	if err != nil {
		return common.VerificationResult{}, err
	}

	var result common.VerificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return common.VerificationResult{}, err
	}
	return result, nil
}
