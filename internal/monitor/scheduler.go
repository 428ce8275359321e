package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// Checker runs one per-job check. Satisfied by *Detector.
type Checker interface {
	CheckJob(ctx context.Context, job *model.MonitorJob) error
}

// Scheduler sweeps all active jobs on a fixed interval. Jobs within a
// sweep run sequentially, bounding upstream request concurrency to one.
// Sweeps never overlap: when a sweep outlasts the interval, the next one
// is delayed until it finishes and then starts immediately.
type Scheduler struct {
	cron     *cron.Cron
	checker  Checker
	store    Store
	errs     ErrorSink
	interval string
	log      zerolog.Logger

	// mu serializes sweeps. The cron chain only orders cron-fired runs
	// against each other; the startup sweep runs outside it and must take
	// the same lock.
	mu sync.Mutex
}

// NewScheduler creates a Scheduler that fires every interval.
func NewScheduler(checker Checker, store Store, errs ErrorSink, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.DelayIfStillRunning(cron.DiscardLogger),
		)),
		checker:  checker,
		store:    store,
		errs:     errs,
		interval: fmt.Sprintf("@every %s", interval),
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the sweep and starts the scheduler. One sweep runs
// immediately so a restart does not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.interval, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.interval).Msg("scheduler started")

	go s.runSweep(ctx)
	return nil
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// runSweep performs one pass over all active jobs. A failing job is
// recorded in the error log and does not affect the remaining jobs; a
// failure to load the job list skips the whole sweep but never stops the
// scheduler.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	jobs, err := s.store.ListActiveJobs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load active jobs, skipping sweep")
		return
	}
	if len(jobs) == 0 {
		s.log.Debug().Msg("no active jobs")
		return
	}

	s.log.Info().Int("count", len(jobs)).Msg("sweep started")

	for i := range jobs {
		if ctx.Err() != nil {
			return
		}
		job := &jobs[i]
		if err, stack := s.checkOne(ctx, job); err != nil {
			s.log.Error().Err(err).Int64("job_id", job.ID).Str("name", job.Name).Msg("job check failed")
			entry := model.ErrorLog{
				Level:        "Error",
				Message:      fmt.Sprintf("Job check failed: %v", err),
				Source:       strPtr("Scheduler"),
				MonitorJobID: &job.ID,
			}
			if stack != "" {
				entry.StackTrace = &stack
			}
			s.errs.LogError(ctx, entry)
		}
	}

	s.log.Info().Msg("sweep complete")
}

// checkOne isolates a single job check, converting panics into errors so
// one job can never take down the sweep.
func (s *Scheduler) checkOne(ctx context.Context, job *model.MonitorJob) (err error, stack string) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			stack = string(debug.Stack())
		}
	}()
	return s.checker.CheckJob(ctx, job), ""
}

func strPtr(s string) *string { return &s }
