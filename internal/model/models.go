// Package model defines shared data structures for the listing monitor.
package model

import "time"

// MonitorJob is a saved, named marketplace search with notification
// destinations and a recurring-check cursor.
type MonitorJob struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	EmailTo         string      `json:"emailTo"`
	TelegramChatID  string      `json:"telegramChatId,omitempty"`
	IsActive        bool        `json:"isActive"`
	CreatedAt       time.Time   `json:"createdAt"`
	LastRunAt       *time.Time  `json:"lastRunAt,omitempty"`
	LastListingID   *string     `json:"lastListingId,omitempty"`
	LastListingDate *time.Time  `json:"lastListingDate,omitempty"`
	Filters         []JobFilter `json:"filters"`
}

// JobFilter is one (type, key, value) search constraint attached to a job.
// The value encoding depends on the filter type, e.g. range filters pack
// "key:min|max" into Value.
type JobFilter struct {
	ID           int64  `json:"-"`
	MonitorJobID int64  `json:"-"`
	FilterType   string `json:"filterType"`
	Key          string `json:"key"`
	Value        string `json:"value"`
}

// JobCursor carries the mutable per-check fields written back to a job
// after every check.
type JobCursor struct {
	LastRunAt       time.Time
	LastListingID   *string
	LastListingDate *time.Time
}

// ListingLog is the append-only record of a listing that was surfaced for a
// job. A listing counts as "already notified" for a job iff its ListingID
// appears among that job's log entries.
type ListingLog struct {
	ID               int64     `json:"id"`
	MonitorJobID     int64     `json:"monitorJobId"`
	ListingID        string    `json:"listingId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            *float64  `json:"price,omitempty"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	URL              *string   `json:"url,omitempty"`
	ListingCreatedAt time.Time `json:"listingCreatedAt"`
	NotifiedAt       time.Time `json:"notifiedAt"`
}

// ErrorLog is an append-only operational error record.
type ErrorLog struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Level        string    `json:"level"`
	Message      string    `json:"message"`
	StackTrace   *string   `json:"stackTrace,omitempty"`
	Source       *string   `json:"source,omitempty"`
	MonitorJobID *int64    `json:"monitorJobId,omitempty"`
	StatusCode   *int      `json:"statusCode,omitempty"`
}

// ListingLogStats aggregates the notification history.
type ListingLogStats struct {
	TotalListings int64             `json:"totalListings"`
	Last24Hours   int64             `json:"last24Hours"`
	ByJob         []JobListingStats `json:"byJob"`
}

// JobListingStats is the per-job slice of ListingLogStats.
type JobListingStats struct {
	JobID        int64     `json:"jobId"`
	Count        int64     `json:"count"`
	LastNotified time.Time `json:"lastNotified"`
}
