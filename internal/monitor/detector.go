// Package monitor implements the polling core: the per-job new-listing
// check and the scheduler that sweeps all active jobs on a fixed interval.
package monitor

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/dateparse"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/marktplaats"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

const (
	// maxListingAge is the freshness window: listings resolving older than
	// this are never notified, even when previously unseen. The search is
	// already scoped to same-day listings upstream.
	maxListingAge = 24 * time.Hour

	// firstRunNotifyLimit suppresses the notification burst when a brand-new
	// job's first check matches a large backlog. The listings are still
	// logged as seen.
	firstRunNotifyLimit = 10

	// checkNowSampleLimit caps the listings returned by CheckJobNow.
	checkNowSampleLimit = 10
)

// Store is the persistence surface the detector and scheduler need.
type Store interface {
	ListActiveJobs(ctx context.Context) ([]model.MonitorJob, error)
	GetJob(ctx context.Context, id int64) (*model.MonitorJob, error)
	NotifiedListingIDs(ctx context.Context, jobID int64) ([]string, error)
	CommitCheck(ctx context.Context, jobID int64, entries []model.ListingLog, cursor model.JobCursor) error
}

// ErrorSink records operational errors without ever failing the caller.
type ErrorSink interface {
	LogError(ctx context.Context, entry model.ErrorLog)
}

// Searcher runs one upstream search; a nil response means the search
// failed or returned nothing usable.
type Searcher interface {
	Search(ctx context.Context, filters []model.JobFilter) *model.SearchResponse
}

// Dispatcher fans a notification out to the configured channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *model.MonitorJob, listings []model.Listing)
}

// Detector runs the per-job check: dedup against history, freshness
// filtering, first-run suppression, notification dispatch and cursor
// bookkeeping.
type Detector struct {
	store    Store
	errs     ErrorSink
	search   Searcher
	dispatch Dispatcher
	log      zerolog.Logger

	now func() time.Time
}

// NewDetector constructs a Detector.
func NewDetector(store Store, errs ErrorSink, search Searcher, dispatch Dispatcher, log zerolog.Logger) *Detector {
	return &Detector{
		store:    store,
		errs:     errs,
		search:   search,
		dispatch: dispatch,
		log:      log.With().Str("component", "detector").Logger(),
		now:      time.Now,
	}
}

// CheckJob executes one check for job. Regardless of outcome the job's
// lastRunAt is advanced; new listings are logged as seen even when
// notification is suppressed, so each listing is notified at most once.
func (d *Detector) CheckJob(ctx context.Context, job *model.MonitorJob) error {
	d.log.Info().Int64("job_id", job.ID).Str("name", job.Name).Msg("checking job")

	now := d.now()
	cursor := model.JobCursor{
		LastRunAt:       now.UTC(),
		LastListingID:   job.LastListingID,
		LastListingDate: job.LastListingDate,
	}

	resp := d.search.Search(ctx, job.Filters)
	if resp == nil || len(resp.Listings) == 0 {
		d.log.Warn().Int64("job_id", job.ID).Msg("no listings found")
		return d.store.CommitCheck(ctx, job.ID, nil, cursor)
	}

	notifiedIDs, err := d.store.NotifiedListingIDs(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load notified ids for job %d: %w", job.ID, err)
	}
	seen := mapset.NewSet(notifiedIDs...)

	cutoff := now.Add(-maxListingAge)
	var fresh []model.Listing
	for _, l := range resp.Listings {
		if seen.Contains(l.ItemID) {
			continue
		}
		if dateparse.Parse(l.Date, now).Before(cutoff) {
			continue
		}
		fresh = append(fresh, l)
	}

	isFirstRun := job.LastRunAt == nil

	if len(fresh) == 0 {
		d.log.Info().Int64("job_id", job.ID).Msg("no new listings")
		return d.store.CommitCheck(ctx, job.ID, nil, cursor)
	}

	d.log.Info().Int64("job_id", job.ID).Int("count", len(fresh)).Msg("found new listings")

	shouldNotify := !isFirstRun || len(fresh) <= firstRunNotifyLimit
	if shouldNotify {
		d.dispatch.Dispatch(ctx, job, fresh)
	} else {
		d.log.Info().Int64("job_id", job.ID).Int("count", len(fresh)).
			Msg("first run with large backlog, notifications suppressed")
	}

	entries := make([]model.ListingLog, 0, len(fresh))
	for _, l := range fresh {
		entries = append(entries, model.ListingLog{
			MonitorJobID:     job.ID,
			ListingID:        l.ItemID,
			Title:            l.Title,
			Description:      l.Description,
			Price:            l.PriceEuros(),
			ImageURL:         optional(l.FirstImageURL()),
			URL:              optional(marktplaats.ListingBaseURL + l.VipURL),
			ListingCreatedAt: dateparse.Parse(l.Date, now),
			NotifiedAt:       now.UTC(),
		})
	}

	// results arrive newest first; the head is the most recent listing
	latest := fresh[0]
	latestDate := dateparse.Parse(latest.Date, now)
	cursor.LastListingID = &latest.ItemID
	cursor.LastListingDate = &latestDate

	return d.store.CommitCheck(ctx, job.ID, entries, cursor)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CheckResult is the outcome of an on-demand CheckJobNow call.
type CheckResult struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Error      string               `json:"error,omitempty"`
	TotalCount int                  `json:"totalCount"`
	Listings   []CheckResultListing `json:"listings"`
}

// CheckResultListing is one sample listing in a CheckResult.
type CheckResultListing struct {
	ItemID      string   `json:"itemId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
}

// CheckJobNow runs the job's search synchronously for manual verification.
// It mutates nothing: no listing logs are written and the job cursor stays
// untouched. A failed search is reported in the result (and the error log),
// not as an error; only an unknown job id errors.
func (d *Detector) CheckJobNow(ctx context.Context, jobID int64) (*CheckResult, error) {
	job, err := d.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := d.search.Search(ctx, job.Filters)
	if resp == nil {
		msg := "search API returned no response"
		d.errs.LogError(ctx, model.ErrorLog{
			Level:        "Error",
			Message:      msg,
			Source:       optional("CheckJobNow"),
			MonitorJobID: &job.ID,
		})
		return &CheckResult{Success: false, Error: msg, Listings: []CheckResultListing{}}, nil
	}

	if len(resp.Listings) == 0 {
		return &CheckResult{Success: true, Message: "No listings found", Listings: []CheckResultListing{}}, nil
	}

	samples := resp.Listings
	if len(samples) > checkNowSampleLimit {
		samples = samples[:checkNowSampleLimit]
	}

	result := &CheckResult{
		Success:    true,
		Message:    fmt.Sprintf("Found %d listings", len(resp.Listings)),
		TotalCount: resp.TotalResultCount,
		Listings:   make([]CheckResultListing, 0, len(samples)),
	}
	for _, l := range samples {
		result.Listings = append(result.Listings, CheckResultListing{
			ItemID:      l.ItemID,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.PriceEuros(),
			ImageURL:    l.FirstImageURL(),
			URL:         marktplaats.ListingBaseURL + l.VipURL,
			Date:        l.Date,
		})
	}
	return result, nil
}
