package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pool-stats-lab/internal/storage"
)

// RowCache implements storage.Cache on the row_cache table.
// Expired rows are filtered on read and removed by Purge.
type RowCache struct {
	pool *Pool
}

// NewRowCache creates a new RowCache.
func NewRowCache(pool *Pool) *RowCache {
	return &RowCache{pool: pool}
}

// Compile-time interface check.
var _ storage.Cache = (*RowCache)(nil)

// Get returns the payload for key. Returns ErrNotFound if absent or expired.
func (c *RowCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT payload
		FROM row_cache
		WHERE cache_key = $1
		  AND (expires_at IS NULL OR expires_at > now())
	`

	var payload []byte
	if err := c.pool.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return payload, nil
}

// Set upserts the payload for key. ttl <= 0 stores without expiry.
func (c *RowCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO row_cache (cache_key, payload, expires_at, updated_at)
		VALUES ($1, $2, CASE WHEN $3::bigint > 0 THEN now() + $3::bigint::double precision * interval '1 millisecond' END, now())
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := c.pool.Exec(ctx, query, key, value, ttl.Milliseconds()); err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Delete removes key.
func (c *RowCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidInput
	}

	if _, err := c.pool.Exec(ctx, `DELETE FROM row_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (c *RowCache) Purge(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM row_cache WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return tag.RowsAffected(), nil
}
