package models

import (
	"time"

	"github.com/google/uuid"
)

// Fetch outcome states recorded in fetch_log.
const (
	FetchStatusInProgress = "in_progress"
	FetchStatusSuccess    = "success"
	FetchStatusError      = "error"
)

// FetchLog is the audit trail row for one upstream API call. Every fetch
// writes one, success or not, so "when did this series last update" and
// "what broke overnight" are both one query.
type FetchLog struct {
	ID             int64      `json:"id" db:"id"`
	JobID          uuid.UUID  `json:"job_id" db:"job_id"`
	Source         string     `json:"source" db:"source"`
	Endpoint       string     `json:"endpoint" db:"endpoint"`
	SeriesID       string     `json:"series_id" db:"series_id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status         string     `json:"status" db:"status"`
	RecordsFetched int        `json:"records_fetched" db:"records_fetched"`
	ErrorMessage   *string    `json:"error_message,omitempty" db:"error_message"`
}
