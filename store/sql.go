package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQL is an Idempotency store backed by database/sql. The same store is
// shared by reference between the resource server and the facilitator; it
// never owns the underlying connection pool.
type SQL struct {
	db *sql.DB
}

// NewSQL creates the store and its table if missing.
func NewSQL(db *sql.DB) (*SQL, error) {
	const schema = `CREATE TABLE IF NOT EXISTS settled_authorizations (
		signature TEXT PRIMARY KEY,
		tx_hash TEXT NOT NULL,
		settled_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create settled_authorizations table: %w", err)
	}
	return &SQL{db: db}, nil
}

// Seen reports whether the authorization signature was settled before.
func (s *SQL) Seen(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM settled_authorizations WHERE signature = ?", key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query settled authorization: %w", err)
	}
	return true, nil
}

// Record marks the authorization signature as settled. A concurrent
// duplicate insert fails on the primary key, which is the intended outcome.
func (s *SQL) Record(ctx context.Context, key, txHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settled_authorizations (signature, tx_hash, settled_at) VALUES (?, ?, ?)",
		key, txHash, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record settled authorization: %w", err)
	}
	return nil
}
