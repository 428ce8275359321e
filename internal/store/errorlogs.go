package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// LogError appends an error-log entry. It never returns an error: a
// persistence failure while logging an error is itself only logged, to
// avoid error-logging loops. This is the single "log, never propagate"
// boundary for operational errors.
func (s *Store) LogError(ctx context.Context, entry model.ErrorLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Level == "" {
		entry.Level = "Error"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO error_logs (timestamp, level, message, stack_trace, source, monitor_job_id, status_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.Timestamp, entry.Level, entry.Message, entry.StackTrace,
		entry.Source, entry.MonitorJobID, entry.StatusCode)
	if err != nil {
		s.log.Error().Err(err).Str("message", entry.Message).Msg("failed to persist error log")
	}
}

// ListErrorLogs returns the most recent error-log entries.
func (s *Store) ListErrorLogs(ctx context.Context, limit int) ([]model.ErrorLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, timestamp, level, message, stack_trace, source, monitor_job_id, status_code
		 FROM error_logs ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query error_logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ErrorLog
	for rows.Next() {
		var e model.ErrorLog
		err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Message,
			&e.StackTrace, &e.Source, &e.MonitorJobID, &e.StatusCode)
		if err != nil {
			return nil, fmt.Errorf("scan error_log: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// DeleteErrorLog removes one entry by id.
func (s *Store) DeleteErrorLog(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM error_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete error_log %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("error_log %d not found", id)
	}
	return nil
}

// ClearErrorLogs removes every entry.
func (s *Store) ClearErrorLogs(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM error_logs`); err != nil {
		return fmt.Errorf("clear error_logs: %w", err)
	}
	return nil
}
