package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// MaxJobs is the system-wide cap on monitor jobs, enforced at creation.
const MaxJobs = 5

var (
	// ErrJobNotFound is returned when a job id does not exist.
	ErrJobNotFound = errors.New("monitor job not found")
	// ErrJobLimitReached is returned by CreateJob once MaxJobs jobs exist.
	ErrJobLimitReached = fmt.Errorf("maximum number of jobs (%d) has been reached", MaxJobs)
)

const jobColumns = `id, name, email_to, telegram_chat_id, is_active, created_at,
	last_run_at, last_listing_id, last_listing_date`

func scanJob(row pgx.Row, job *model.MonitorJob) error {
	return row.Scan(&job.ID, &job.Name, &job.EmailTo, &job.TelegramChatID,
		&job.IsActive, &job.CreatedAt, &job.LastRunAt, &job.LastListingID,
		&job.LastListingDate)
}

// ListActiveJobs returns all is_active jobs with their filters attached,
// in filter insertion order.
func (s *Store) ListActiveJobs(ctx context.Context) ([]model.MonitorJob, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM monitor_jobs WHERE is_active = true ORDER BY id`)
}

// ListJobs returns every job, newest first, with filters attached.
func (s *Store) ListJobs(ctx context.Context) ([]model.MonitorJob, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM monitor_jobs ORDER BY created_at DESC`)
}

func (s *Store) listJobs(ctx context.Context, query string) ([]model.MonitorJob, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query monitor_jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.MonitorJob
	for rows.Next() {
		var job model.MonitorJob
		if err := scanJob(rows, &job); err != nil {
			return nil, fmt.Errorf("scan monitor_jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monitor_jobs: %w", err)
	}

	for i := range jobs {
		filters, err := s.jobFilters(ctx, jobs[i].ID)
		if err != nil {
			return nil, err
		}
		jobs[i].Filters = filters
	}
	return jobs, nil
}

// GetJob returns one job with its filters, or ErrJobNotFound.
func (s *Store) GetJob(ctx context.Context, id int64) (*model.MonitorJob, error) {
	var job model.MonitorJob
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM monitor_jobs WHERE id = $1`, id)
	if err := scanJob(row, &job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get monitor_job %d: %w", id, err)
	}

	filters, err := s.jobFilters(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	job.Filters = filters
	return &job, nil
}

func (s *Store) jobFilters(ctx context.Context, jobID int64) ([]model.JobFilter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, monitor_job_id, filter_type, key, value
		 FROM job_filters WHERE monitor_job_id = $1 ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query job_filters: %w", err)
	}
	defer rows.Close()

	var filters []model.JobFilter
	for rows.Next() {
		var f model.JobFilter
		if err := rows.Scan(&f.ID, &f.MonitorJobID, &f.FilterType, &f.Key, &f.Value); err != nil {
			return nil, fmt.Errorf("scan job_filters: %w", err)
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// CreateJob inserts a job plus its filters. Fails with ErrJobLimitReached
// when MaxJobs jobs already exist; the count check and insert share one
// transaction so a racing create cannot slip past the cap.
func (s *Store) CreateJob(ctx context.Context, job *model.MonitorJob) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create job: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM monitor_jobs`).Scan(&count); err != nil {
		return fmt.Errorf("count monitor_jobs: %w", err)
	}
	if count >= MaxJobs {
		return ErrJobLimitReached
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO monitor_jobs (name, email_to, telegram_chat_id, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		job.Name, job.EmailTo, job.TelegramChatID, job.IsActive,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert monitor_job: %w", err)
	}

	if err := insertFilters(ctx, tx, job.ID, job.Filters); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create job: %w", err)
	}

	s.log.Info().Int64("job_id", job.ID).Str("name", job.Name).Msg("created monitor job")
	return nil
}

// UpdateJob rewrites the job's editable fields and wholesale-replaces its
// filter list in one transaction.
func (s *Store) UpdateJob(ctx context.Context, job *model.MonitorJob) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update job: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE monitor_jobs SET name = $2, email_to = $3, telegram_chat_id = $4, is_active = $5
		 WHERE id = $1`,
		job.ID, job.Name, job.EmailTo, job.TelegramChatID, job.IsActive)
	if err != nil {
		return fmt.Errorf("update monitor_job %d: %w", job.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM job_filters WHERE monitor_job_id = $1`, job.ID); err != nil {
		return fmt.Errorf("delete job_filters for %d: %w", job.ID, err)
	}
	if err := insertFilters(ctx, tx, job.ID, job.Filters); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update job: %w", err)
	}

	s.log.Info().Int64("job_id", job.ID).Str("name", job.Name).Msg("updated monitor job")
	return nil
}

func insertFilters(ctx context.Context, tx pgx.Tx, jobID int64, filters []model.JobFilter) error {
	for i := range filters {
		err := tx.QueryRow(ctx,
			`INSERT INTO job_filters (monitor_job_id, filter_type, key, value)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			jobID, filters[i].FilterType, filters[i].Key, filters[i].Value,
		).Scan(&filters[i].ID)
		if err != nil {
			return fmt.Errorf("insert job_filter: %w", err)
		}
		filters[i].MonitorJobID = jobID
	}
	return nil
}

// DeleteJob removes a job; filters and listing logs cascade. The redis
// seen-ID set for the job is dropped best-effort.
func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM monitor_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete monitor_job %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, seenKey(id)).Err(); err != nil {
			s.log.Warn().Err(err).Int64("job_id", id).Msg("failed to drop seen-ID cache")
		}
	}

	s.log.Info().Int64("job_id", id).Msg("deleted monitor job")
	return nil
}

// ToggleJob flips is_active and returns the updated job.
func (s *Store) ToggleJob(ctx context.Context, id int64) (*model.MonitorJob, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE monitor_jobs SET is_active = NOT is_active WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle monitor_job %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrJobNotFound
	}
	return s.GetJob(ctx, id)
}

// CommitCheck persists the outcome of one per-job check as a single unit:
// the new listing-log entries plus the job cursor update.
func (s *Store) CommitCheck(ctx context.Context, jobID int64, entries []model.ListingLog, cursor model.JobCursor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit check: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO listing_logs (monitor_job_id, listing_id, title, description,
			   price, image_url, url, listing_created_at, notified_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.MonitorJobID, e.ListingID, e.Title, e.Description,
			e.Price, e.ImageURL, e.URL, e.ListingCreatedAt, e.NotifiedAt)
		if err != nil {
			return fmt.Errorf("insert listing_log: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE monitor_jobs SET last_run_at = $2, last_listing_id = $3, last_listing_date = $4
		 WHERE id = $1`,
		jobID, cursor.LastRunAt, cursor.LastListingID, cursor.LastListingDate)
	if err != nil {
		return fmt.Errorf("update job cursor %d: %w", jobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit check %d: %w", jobID, err)
	}

	s.cacheSeenIDs(ctx, jobID, listingIDsOf(entries))
	return nil
}

func listingIDsOf(entries []model.ListingLog) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ListingID)
	}
	return ids
}
