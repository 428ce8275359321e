package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

var testNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeCommit struct {
	jobID   int64
	entries []model.ListingLog
	cursor  model.JobCursor
}

type fakeStore struct {
	jobs     map[int64]*model.MonitorJob
	active   []model.MonitorJob
	notified map[int64][]string
	commits  []fakeCommit
}

func (f *fakeStore) ListActiveJobs(ctx context.Context) ([]model.MonitorJob, error) {
	return f.active, nil
}

func (f *fakeStore) GetJob(ctx context.Context, id int64) (*model.MonitorJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("monitor job %d not found", id)
	}
	return job, nil
}

func (f *fakeStore) NotifiedListingIDs(ctx context.Context, jobID int64) ([]string, error) {
	return f.notified[jobID], nil
}

func (f *fakeStore) CommitCheck(ctx context.Context, jobID int64, entries []model.ListingLog, cursor model.JobCursor) error {
	f.commits = append(f.commits, fakeCommit{jobID: jobID, entries: entries, cursor: cursor})
	for _, e := range entries {
		f.notified[jobID] = append(f.notified[jobID], e.ListingID)
	}
	return nil
}

type fakeSearcher struct {
	resp *model.SearchResponse
}

func (f *fakeSearcher) Search(ctx context.Context, filters []model.JobFilter) *model.SearchResponse {
	return f.resp
}

type fakeDispatcher struct {
	calls [][]model.Listing
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, job *model.MonitorJob, listings []model.Listing) {
	f.calls = append(f.calls, listings)
}

type fakeErrorSink struct {
	entries []model.ErrorLog
}

func (f *fakeErrorSink) LogError(ctx context.Context, entry model.ErrorLog) {
	f.entries = append(f.entries, entry)
}

// ── helpers ────────────────────────────────────────────────────────────────

func listingsN(n int) []model.Listing {
	out := make([]model.Listing, 0, n)
	for i := 0; i < n; i++ {
		cents := int64((i + 1) * 10000)
		out = append(out, model.Listing{
			ItemID:      fmt.Sprintf("m%04d", i),
			Title:       fmt.Sprintf("Listing %d", i),
			Description: "some description",
			PriceInfo:   &model.PriceInfo{PriceCents: &cents},
			ImageURLs:   []string{"//img/1.jpg"},
			VipURL:      fmt.Sprintf("/v/item/m%04d", i),
			Date:        "vandaag 10:00",
		})
	}
	return out
}

func newTestDetector(st *fakeStore, resp *model.SearchResponse) (*Detector, *fakeDispatcher, *fakeErrorSink) {
	dispatch := &fakeDispatcher{}
	errs := &fakeErrorSink{}
	det := NewDetector(st, errs, &fakeSearcher{resp: resp}, dispatch, zerolog.Nop())
	det.now = func() time.Time { return testNow }
	return det, dispatch, errs
}

func activeJob(id int64, lastRun *time.Time) *model.MonitorJob {
	return &model.MonitorJob{ID: id, Name: fmt.Sprintf("job-%d", id), IsActive: true, LastRunAt: lastRun}
}

// ── CheckJob ───────────────────────────────────────────────────────────────

func TestCheckJob_FirstRunSmallBatchNotifies(t *testing.T) {
	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: listingsN(3), TotalResultCount: 3})

	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, nil)))

	require.Len(t, dispatch.calls, 1, "first run with <=10 new listings must notify")
	assert.Len(t, dispatch.calls[0], 3)

	require.Len(t, st.commits, 1)
	commit := st.commits[0]
	assert.Len(t, commit.entries, 3)
	assert.Equal(t, testNow, commit.cursor.LastRunAt)
	require.NotNil(t, commit.cursor.LastListingID)
	assert.Equal(t, "m0000", *commit.cursor.LastListingID, "cursor points at the head (most recent) listing")
}

func TestCheckJob_FirstRunLargeBatchSuppressesButLogs(t *testing.T) {
	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: listingsN(11)})

	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, nil)))

	assert.Empty(t, dispatch.calls, "first run with >10 new listings must not notify")

	require.Len(t, st.commits, 1)
	assert.Len(t, st.commits[0].entries, 11, "suppressed listings are still logged as seen")
	assert.Equal(t, testNow, st.commits[0].cursor.LastRunAt)
}

func TestCheckJob_SubsequentRunNotifiesRegardlessOfCount(t *testing.T) {
	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: listingsN(12)})

	lastRun := testNow.Add(-time.Hour)
	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, &lastRun)))

	require.Len(t, dispatch.calls, 1)
	assert.Len(t, dispatch.calls[0], 12)
}

func TestCheckJob_SecondRunIsIdempotent(t *testing.T) {
	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: listingsN(4)})

	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, nil)))

	lastRun := testNow.Add(-time.Minute)
	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, &lastRun)))

	require.Len(t, st.commits, 2)
	assert.Empty(t, st.commits[1].entries, "unchanged upstream result must yield zero new listings")
	assert.Len(t, dispatch.calls, 1, "no second notification")
	assert.Equal(t, testNow, st.commits[1].cursor.LastRunAt)
}

func TestCheckJob_StaleListingsExcluded(t *testing.T) {
	stale := model.Listing{ItemID: "old1", Title: "Old", Date: "5 jan"}
	fresh := model.Listing{ItemID: "new1", Title: "New", Date: "vandaag 09:30"}

	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: []model.Listing{fresh, stale}})

	lastRun := testNow.Add(-time.Hour)
	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, &lastRun)))

	require.Len(t, dispatch.calls, 1)
	require.Len(t, dispatch.calls[0], 1)
	assert.Equal(t, "new1", dispatch.calls[0][0].ItemID,
		"a listing older than the freshness window is excluded even when unseen")
}

func TestCheckJob_EmptyResponseOnlyAdvancesCursor(t *testing.T) {
	prevID := "m9999"
	job := activeJob(1, nil)
	job.LastListingID = &prevID

	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{})

	require.NoError(t, det.CheckJob(context.Background(), job))

	assert.Empty(t, dispatch.calls)
	require.Len(t, st.commits, 1)
	assert.Empty(t, st.commits[0].entries)
	assert.Equal(t, testNow, st.commits[0].cursor.LastRunAt)
	require.NotNil(t, st.commits[0].cursor.LastListingID)
	assert.Equal(t, prevID, *st.commits[0].cursor.LastListingID, "previous cursor values survive an empty check")
}

func TestCheckJob_FailedSearchOnlyAdvancesCursor(t *testing.T) {
	st := &fakeStore{notified: map[int64][]string{}}
	det, dispatch, _ := newTestDetector(st, nil)

	require.NoError(t, det.CheckJob(context.Background(), activeJob(1, nil)))

	assert.Empty(t, dispatch.calls)
	require.Len(t, st.commits, 1)
	assert.Empty(t, st.commits[0].entries)
}

// ── CheckJobNow ────────────────────────────────────────────────────────────

func TestCheckJobNow_ReturnsSamplesWithoutMutating(t *testing.T) {
	st := &fakeStore{
		jobs:     map[int64]*model.MonitorJob{7: activeJob(7, nil)},
		notified: map[int64][]string{},
	}
	det, dispatch, _ := newTestDetector(st, &model.SearchResponse{Listings: listingsN(15), TotalResultCount: 120})

	result, err := det.CheckJobNow(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 120, result.TotalCount)
	assert.Len(t, result.Listings, 10, "samples are capped at 10")
	assert.Equal(t, "Found 15 listings", result.Message)

	assert.Empty(t, st.commits, "an on-demand check must not touch cursors or logs")
	assert.Empty(t, dispatch.calls)
}

func TestCheckJobNow_NoListings(t *testing.T) {
	st := &fakeStore{
		jobs:     map[int64]*model.MonitorJob{7: activeJob(7, nil)},
		notified: map[int64][]string{},
	}
	det, _, _ := newTestDetector(st, &model.SearchResponse{})

	result, err := det.CheckJobNow(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "No listings found", result.Message)
	assert.Empty(t, result.Listings)
}

func TestCheckJobNow_SearchFailureIsReportedAndLogged(t *testing.T) {
	st := &fakeStore{
		jobs:     map[int64]*model.MonitorJob{7: activeJob(7, nil)},
		notified: map[int64][]string{},
	}
	det, _, errs := newTestDetector(st, nil)

	result, err := det.CheckJobNow(context.Background(), 7)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	require.Len(t, errs.entries, 1)
	require.NotNil(t, errs.entries[0].MonitorJobID)
	assert.Equal(t, int64(7), *errs.entries[0].MonitorJobID)
	assert.Empty(t, st.commits)
}

func TestCheckJobNow_UnknownJob(t *testing.T) {
	st := &fakeStore{jobs: map[int64]*model.MonitorJob{}, notified: map[int64][]string{}}
	det, _, _ := newTestDetector(st, nil)

	_, err := det.CheckJobNow(context.Background(), 99)
	assert.Error(t, err)
}
