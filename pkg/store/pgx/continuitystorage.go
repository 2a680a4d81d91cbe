package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// ContinuityDBStorage implements the ContinuityStorage interface on
// PostgreSQL with pgvector for component embeddings. Writes are serialized
// with a mutex; reads run unguarded on the pool.
type ContinuityDBStorage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewContinuityDBStorageWithConnection creates a ContinuityDBStorage using an
// existing database connection or pool.
func NewContinuityDBStorageWithConnection(conn pgxIConn) *ContinuityDBStorage {
	return &ContinuityDBStorage{conn: conn}
}
