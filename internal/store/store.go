// Package store implements Postgres-backed persistence for monitor jobs,
// listing logs and error logs. Redis, when configured, is used only as a
// best-effort cache of already-notified listing IDs; Postgres stays
// authoritative.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store bundles all persistence operations on the shared connection pool.
type Store struct {
	pool *pgxpool.Pool
	rdb  *redis.Client // may be nil
	log  zerolog.Logger
}

// New constructs a Store. rdb may be nil to disable the seen-ID cache.
func New(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *Store {
	return &Store{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "store").Logger(),
	}
}
