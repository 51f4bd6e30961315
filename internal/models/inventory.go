package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory regions, in dashboard display order.
var RegionOrder = []string{"US", "PADD1", "PADD2", "PADD3", "PADD4", "PADD5"}

// Inventory is one stored stock reading for one region/product/date.
// Rows are unique on (source, region, product, date).
type Inventory struct {
	ID        int64           `json:"id" db:"id"`
	Source    string          `json:"source" db:"source"`
	Region    string          `json:"region" db:"region"`
	Product   string          `json:"product" db:"product"`
	Date      time.Time       `json:"date" db:"date"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Unit      string          `json:"unit" db:"unit"`
	FetchedAt time.Time       `json:"fetched_at" db:"fetched_at"`
}

// LatestInventory is the most recent reading for a region plus
// week-over-week change.
type LatestInventory struct {
	Region   string           `json:"region"`
	Product  string           `json:"product"`
	Date     time.Time        `json:"date"`
	Value    decimal.Decimal  `json:"value"`
	Previous *decimal.Decimal `json:"previous,omitempty"`
	Change   *decimal.Decimal `json:"change,omitempty"`
	Unit     string           `json:"unit"`
	Source   string           `json:"source"`
}

// RegionInfo summarizes one region's stored history.
type RegionInfo struct {
	Region      string    `json:"region"`
	Product     string    `json:"product"`
	Source      string    `json:"source"`
	RecordCount int64     `json:"record_count"`
	FirstDate   time.Time `json:"first_date"`
	LastDate    time.Time `json:"last_date"`
}
