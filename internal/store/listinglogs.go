package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

func seenKey(jobID int64) string {
	return fmt.Sprintf("monitor:seen:%d", jobID)
}

// NotifiedListingIDs returns every external listing ID ever logged for the
// job. The full history is loaded deliberately — logical dedup depends on
// it. When redis is configured the set is served from cache, but only when
// its cardinality matches the Postgres row count: commits append only the
// new IDs to the cache, so a flushed or evicted set would otherwise be
// mistaken for the complete history and old listings re-notified. Any
// mismatch or redis error falls back to Postgres and repopulates the cache.
func (s *Store) NotifiedListingIDs(ctx context.Context, jobID int64) ([]string, error) {
	if s.rdb != nil {
		ids, err := s.rdb.SMembers(ctx, seenKey(jobID)).Result()
		if err != nil {
			s.log.Warn().Err(err).Int64("job_id", jobID).Msg("seen-ID cache read failed")
		} else if len(ids) > 0 {
			var count int64
			err := s.pool.QueryRow(ctx,
				`SELECT COUNT(*) FROM listing_logs WHERE monitor_job_id = $1`, jobID,
			).Scan(&count)
			if err == nil && cachedHistoryComplete(len(ids), count) {
				return ids, nil
			}
		}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT listing_id FROM listing_logs WHERE monitor_job_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query listing ids for job %d: %w", jobID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing ids: %w", err)
	}

	s.cacheSeenIDs(ctx, jobID, ids)
	return ids, nil
}

// cachedHistoryComplete reports whether the cached seen-ID set can stand in
// for the job's full history. Listing IDs are logged at most once per job,
// so the set is complete exactly when its size equals the stored row count.
func cachedHistoryComplete(cachedLen int, storedCount int64) bool {
	return cachedLen > 0 && int64(cachedLen) == storedCount
}

// cacheSeenIDs adds ids to the job's redis set. Best-effort: failures are
// logged and ignored, Postgres remains the source of truth.
func (s *Store) cacheSeenIDs(ctx context.Context, jobID int64, ids []string) {
	if s.rdb == nil || len(ids) == 0 {
		return
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.rdb.SAdd(ctx, seenKey(jobID), members...).Err(); err != nil {
		s.log.Warn().Err(err).Int64("job_id", jobID).Msg("seen-ID cache write failed")
	}
}

// ListListingLogs returns log entries ordered by recency. jobID filters to
// one job when non-nil; limit caps the result set.
func (s *Store) ListListingLogs(ctx context.Context, jobID *int64, limit int) ([]model.ListingLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, monitor_job_id, listing_id, title, description, price,
		image_url, url, listing_created_at, notified_at FROM listing_logs`
	args := []interface{}{}
	if jobID != nil {
		query += ` WHERE monitor_job_id = $1 ORDER BY notified_at DESC LIMIT $2`
		args = append(args, *jobID, limit)
	} else {
		query += ` ORDER BY notified_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listing_logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ListingLog
	for rows.Next() {
		var l model.ListingLog
		err := rows.Scan(&l.ID, &l.MonitorJobID, &l.ListingID, &l.Title, &l.Description,
			&l.Price, &l.ImageURL, &l.URL, &l.ListingCreatedAt, &l.NotifiedAt)
		if err != nil {
			return nil, fmt.Errorf("scan listing_log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListingLogStats aggregates the notification history: total entries,
// entries in the last 24 hours, and per-job count plus most recent send.
func (s *Store) ListingLogStats(ctx context.Context) (*model.ListingLogStats, error) {
	stats := &model.ListingLogStats{}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listing_logs`).Scan(&stats.TotalListings); err != nil {
		return nil, fmt.Errorf("count listing_logs: %w", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listing_logs WHERE notified_at >= $1`, cutoff,
	).Scan(&stats.Last24Hours)
	if err != nil {
		return nil, fmt.Errorf("count recent listing_logs: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT monitor_job_id, COUNT(*), MAX(notified_at)
		 FROM listing_logs GROUP BY monitor_job_id ORDER BY monitor_job_id`)
	if err != nil {
		return nil, fmt.Errorf("group listing_logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var js model.JobListingStats
		if err := rows.Scan(&js.JobID, &js.Count, &js.LastNotified); err != nil {
			return nil, fmt.Errorf("scan listing_log stats: %w", err)
		}
		stats.ByJob = append(stats.ByJob, js)
	}
	return stats, rows.Err()
}
