package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotStore keeps cart snapshots in the cart_snapshots table, one row per
// (origin, key). The payload column is plain text so a malformed value is
// stored and returned as-is.
type SnapshotStore struct {
	pool   *pgxpool.Pool
	origin string
}

func NewSnapshotStore(pool *pgxpool.Pool, origin string) *SnapshotStore {
	return &SnapshotStore{pool: pool, origin: origin}
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT payload
		FROM cart_snapshots
		WHERE origin = $1 AND key = $2
	`

	var payload string
	err := s.pool.QueryRow(ctx, query, s.origin, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select cart snapshot: %w", err)
	}

	return payload, true, nil
}

func (s *SnapshotStore) Put(ctx context.Context, key string, payload string) error {
	query := `
		INSERT INTO cart_snapshots (origin, key, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (origin, key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, s.origin, key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert cart snapshot: %w", err)
	}

	return nil
}
