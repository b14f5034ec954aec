// ===========================================
// Package database - PostgreSQL Connection
// ===========================================
// Manages the pgx connection pool. The pool is created once at
// startup, validated with a ping, and passed to the repository
// layer. If the database is unreachable, startup fails fast.
// ===========================================

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/smartlink/internal/config"
)

// PostgresDB wraps the connection pool with helper methods.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// schema is applied at startup. The unique index on slug is the
// real uniqueness guarantee; the service-level existence check only
// provides a friendlier fast path.
const schema = `
CREATE TABLE IF NOT EXISTS smart_links (
	id            UUID PRIMARY KEY,
	artist        TEXT NOT NULL,
	title         TEXT NOT NULL,
	slug          TEXT NOT NULL,
	cover_url     TEXT NOT NULL,
	streaming_links JSONB NOT NULL DEFAULT '{}'::jsonb,
	gtm_id        TEXT,
	ga4_id        TEXT,
	google_ads_id TEXT,
	total_views   BIGINT NOT NULL DEFAULT 0,
	clicks        JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS smart_links_slug_key ON smart_links (slug);
CREATE INDEX IF NOT EXISTS smart_links_created_at_idx ON smart_links (created_at DESC);
`

// NewPostgresDB creates a new PostgreSQL connection pool and applies
// the schema. It validates the connection before returning.
func NewPostgresDB(ctx context.Context, cfg config.DatabaseConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresDB{Pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies the idempotent schema statements.
func (db *PostgresDB) migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close gracefully shuts down the connection pool.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health checks if the database is responsive.
// Used by the /ready endpoint.
func (db *PostgresDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Pool.Ping(ctx)
}
