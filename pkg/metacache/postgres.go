// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metacache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msoukhomlinov/autotask-mcp/internal/pgxdriver"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
)

// PostgresCache stores entries in a PostgreSQL table, for deployments that
// already run Postgres and want a shared cache without Redis.
type PostgresCache struct {
	pool  *pgxpool.Pool
	owned bool
	now   func() time.Time
}

// NewPostgresCache uses an existing pool and creates the cache table when
// missing. The caller keeps ownership of the pool.
func NewPostgresCache(ctx context.Context, pool *pgxpool.Pool) (*PostgresCache, error) {
	c := &PostgresCache{pool: pool, now: time.Now}
	if err := c.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return c, nil
}

// DialPostgres opens a pool for cfg and returns a cache that owns it.
func DialPostgres(ctx context.Context, cfg pgxdriver.Config, tracer observability.Tracer) (*PostgresCache, error) {
	pool, err := pgxdriver.NewPool(ctx, cfg, tracer)
	if err != nil {
		return nil, err
	}
	c, err := NewPostgresCache(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

func (c *PostgresCache) initSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS autotask_mcp_metadata_cache (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0,
		updated_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_autotask_mcp_metadata_cache_expires
		ON autotask_mcp_metadata_cache(expires_at);
	`)
	return err
}

// Get implements Cache.
func (c *PostgresCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := c.pool.QueryRow(ctx,
		"SELECT value, expires_at FROM autotask_mcp_metadata_cache WHERE key = $1", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	if expiresAt > 0 && c.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements Cache.
func (c *PostgresCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}
	_, err := c.pool.Exec(ctx, `
		INSERT INTO autotask_mcp_metadata_cache (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`, key, value, expiresAt, now.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Delete implements Cache.
func (c *PostgresCache) Delete(ctx context.Context, key string) error {
	if _, err := c.pool.Exec(ctx, "DELETE FROM autotask_mcp_metadata_cache WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// Clear implements Cache.
func (c *PostgresCache) Clear(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, "DELETE FROM autotask_mcp_metadata_cache"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (c *PostgresCache) Purge(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx,
		"DELETE FROM autotask_mcp_metadata_cache WHERE expires_at > 0 AND expires_at <= $1", c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close implements Cache. A borrowed pool stays open.
func (c *PostgresCache) Close() error {
	if c.owned {
		c.pool.Close()
	}
	return nil
}
