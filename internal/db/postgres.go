// Package db provides database connection helpers.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS monitor_jobs (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email_to TEXT NOT NULL DEFAULT '',
		telegram_chat_id TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_run_at TIMESTAMPTZ,
		last_listing_id TEXT,
		last_listing_date TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS job_filters (
		id BIGSERIAL PRIMARY KEY,
		monitor_job_id BIGINT NOT NULL REFERENCES monitor_jobs(id) ON DELETE CASCADE,
		filter_type TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listing_logs (
		id BIGSERIAL PRIMARY KEY,
		monitor_job_id BIGINT NOT NULL REFERENCES monitor_jobs(id) ON DELETE CASCADE,
		listing_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2),
		image_url TEXT,
		url TEXT,
		listing_created_at TIMESTAMPTZ NOT NULL,
		notified_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listing_logs_job ON listing_logs (monitor_job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_listing_logs_notified_at ON listing_logs (notified_at)`,
	`CREATE TABLE IF NOT EXISTS error_logs (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		stack_trace TEXT,
		source TEXT,
		monitor_job_id BIGINT,
		status_code INT
	)`,
}

// EnsureSchema creates the monitor tables when they do not exist yet.
// Idempotent, runs once at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
