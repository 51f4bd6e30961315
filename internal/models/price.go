package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Known upstream price series.
const (
	SeriesBrent        = "DCOILBRENTEU"
	SeriesWTI          = "DCOILWTICO"
	SeriesULSDGulf     = "DDFUELUSGULF"
	SeriesULSDNYHarbor = "DDFUELNYH"
)

// Price is one stored price observation for one series on one day.
// Rows are unique on (source, series_id, date); refetches upsert in place.
type Price struct {
	ID        int64           `json:"id" db:"id"`
	Source    string          `json:"source" db:"source"`
	SeriesID  string          `json:"series_id" db:"series_id"`
	Date      time.Time       `json:"date" db:"date"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Unit      string          `json:"unit" db:"unit"`
	FetchedAt time.Time       `json:"fetched_at" db:"fetched_at"`
}

// Point is the (date, value) shape every series endpoint returns, for
// prices and inventories alike.
type Point struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// LatestPrice is the most recent quote for a series plus day-over-day
// change, for the dashboard's price board.
type LatestPrice struct {
	SeriesID      string           `json:"series_id"`
	Date          time.Time        `json:"date"`
	Value         decimal.Decimal  `json:"value"`
	Previous      *decimal.Decimal `json:"previous,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	Unit          string           `json:"unit"`
	Source        string           `json:"source"`
}

// SeriesInfo summarizes one stored series.
type SeriesInfo struct {
	SeriesID    string    `json:"series_id"`
	Source      string    `json:"source"`
	Unit        string    `json:"unit"`
	RecordCount int64     `json:"record_count"`
	FirstDate   time.Time `json:"first_date"`
	LastDate    time.Time `json:"last_date"`
}
