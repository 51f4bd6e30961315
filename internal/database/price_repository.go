package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/distillate-labs/dieseldesk/internal/models"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

var hundred = decimal.NewFromInt(100)

// DatabasePool is the subset of pgxpool.Pool the repositories use. The
// indirection exists so tests can substitute a pgxmock pool.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PriceRepository handles storage of price observations.
type PriceRepository struct {
	pool DatabasePool
}

// NewPriceRepository creates a price repository over a pool.
func NewPriceRepository(pool DatabasePool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Upsert stores a batch of observations for one series. Refetching a date
// already on file replaces the value and bumps fetched_at, matching the
// unique (source, series_id, date) constraint.
func (r *PriceRepository) Upsert(ctx context.Context, source, seriesID, unit string, points []models.Point) (int, error) {
	query := `
		INSERT INTO prices (source, series_id, date, value, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, series_id, date)
		DO UPDATE SET value = EXCLUDED.value, unit = EXCLUDED.unit, fetched_at = NOW()
	`

	stored := 0
	for _, p := range points {
		if _, err := r.pool.Exec(ctx, query, source, seriesID, p.Date, p.Value, unit); err != nil {
			return stored, fmt.Errorf("failed to upsert price %s %s: %w", seriesID, p.Date.Format("2006-01-02"), err)
		}
		stored++
	}
	return stored, nil
}

// List returns stored prices, most recent first, optionally filtered by
// series and date range.
func (r *PriceRepository) List(ctx context.Context, seriesID string, start, end *time.Time, limit int) ([]models.Price, error) {
	query := `
		SELECT id, source, series_id, date, value, unit, fetched_at
		FROM prices
		WHERE ($1 = '' OR series_id = $1)
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date DESC
		LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, seriesID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	var prices []models.Price
	for rows.Next() {
		var p models.Price
		if err := rows.Scan(&p.ID, &p.Source, &p.SeriesID, &p.Date, &p.Value, &p.Unit, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// GetSeries returns the (date, value) points of one series, most recent
// first. An unknown series is a NotFoundError, not an empty result.
func (r *PriceRepository) GetSeries(ctx context.Context, seriesID string, start, end *time.Time) ([]models.Point, error) {
	query := `
		SELECT date, value
		FROM prices
		WHERE series_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, seriesID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query series %s: %w", seriesID, err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var p models.Point
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, utils.NewNotFoundError("series", seriesID)
	}
	return points, nil
}

// Latest returns the newest quote per series with day-over-day change.
func (r *PriceRepository) Latest(ctx context.Context) ([]models.LatestPrice, error) {
	query := `
		WITH ranked AS (
			SELECT series_id, date, value, unit, source,
			       ROW_NUMBER() OVER (PARTITION BY series_id ORDER BY date DESC) AS rn
			FROM prices
		)
		SELECT series_id,
		       MAX(CASE WHEN rn = 1 THEN date END) AS latest_date,
		       MAX(CASE WHEN rn = 1 THEN value END) AS latest_value,
		       MAX(CASE WHEN rn = 2 THEN value END) AS previous_value,
		       MAX(CASE WHEN rn = 1 THEN unit END) AS unit,
		       MAX(CASE WHEN rn = 1 THEN source END) AS source
		FROM ranked
		WHERE rn <= 2
		GROUP BY series_id
		ORDER BY series_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	defer rows.Close()

	var latest []models.LatestPrice
	for rows.Next() {
		var lp models.LatestPrice
		if err := rows.Scan(&lp.SeriesID, &lp.Date, &lp.Value, &lp.Previous, &lp.Unit, &lp.Source); err != nil {
			return nil, fmt.Errorf("failed to scan latest price row: %w", err)
		}
		if lp.Previous != nil {
			change := lp.Value.Sub(*lp.Previous)
			lp.Change = &change
			if !lp.Previous.IsZero() {
				pct := change.Div(*lp.Previous).Mul(hundred).Round(2)
				lp.ChangePercent = &pct
			}
		}
		latest = append(latest, lp)
	}
	return latest, rows.Err()
}

// ListSeries summarizes every stored series.
func (r *PriceRepository) ListSeries(ctx context.Context) ([]models.SeriesInfo, error) {
	query := `
		SELECT series_id, source, unit,
		       COUNT(*) AS record_count,
		       MIN(date) AS first_date,
		       MAX(date) AS last_date
		FROM prices
		GROUP BY series_id, source, unit
		ORDER BY series_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query series info: %w", err)
	}
	defer rows.Close()

	var infos []models.SeriesInfo
	for rows.Next() {
		var info models.SeriesInfo
		if err := rows.Scan(&info.SeriesID, &info.Source, &info.Unit, &info.RecordCount, &info.FirstDate, &info.LastDate); err != nil {
			return nil, fmt.Errorf("failed to scan series info row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
