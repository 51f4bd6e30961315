package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/distillate-labs/dieseldesk/internal/models"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

// InventoryRepository handles storage of stock observations.
type InventoryRepository struct {
	pool DatabasePool
}

// NewInventoryRepository creates an inventory repository over a pool.
func NewInventoryRepository(pool DatabasePool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// Upsert stores a batch of readings for one region/product.
func (r *InventoryRepository) Upsert(ctx context.Context, source, region, product, unit string, points []models.Point) (int, error) {
	query := `
		INSERT INTO inventories (source, region, product, date, value, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source, region, product, date)
		DO UPDATE SET value = EXCLUDED.value, unit = EXCLUDED.unit, fetched_at = NOW()
	`

	stored := 0
	for _, p := range points {
		if _, err := r.pool.Exec(ctx, query, source, region, product, p.Date, p.Value, unit); err != nil {
			return stored, fmt.Errorf("failed to upsert inventory %s %s: %w", region, p.Date.Format("2006-01-02"), err)
		}
		stored++
	}
	return stored, nil
}

// List returns stored readings, most recent first, optionally filtered
// by region, product and date range.
func (r *InventoryRepository) List(ctx context.Context, region, product string, start, end *time.Time, limit int) ([]models.Inventory, error) {
	query := `
		SELECT id, source, region, product, date, value, unit, fetched_at
		FROM inventories
		WHERE ($1 = '' OR region = $1)
		  AND ($2 = '' OR product = $2)
		  AND ($3::date IS NULL OR date >= $3)
		  AND ($4::date IS NULL OR date <= $4)
		ORDER BY date DESC
		LIMIT $5
	`

	rows, err := r.pool.Query(ctx, query, region, product, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer rows.Close()

	var inventories []models.Inventory
	for rows.Next() {
		var inv models.Inventory
		if err := rows.Scan(&inv.ID, &inv.Source, &inv.Region, &inv.Product, &inv.Date, &inv.Value, &inv.Unit, &inv.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		inventories = append(inventories, inv)
	}
	return inventories, rows.Err()
}

// History returns one region's (date, value) points since a cutoff, most
// recent first. An unknown region is a NotFoundError.
func (r *InventoryRepository) History(ctx context.Context, region, product string, since time.Time) ([]models.Point, error) {
	query := `
		SELECT date, value
		FROM inventories
		WHERE region = $1 AND product = $2 AND date >= $3
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, region, product, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", region, err)
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var p models.Point
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, utils.NewNotFoundError("region", region)
	}
	return points, nil
}

// Latest returns the newest reading per region with week-over-week change.
func (r *InventoryRepository) Latest(ctx context.Context) ([]models.LatestInventory, error) {
	query := `
		WITH ranked AS (
			SELECT region, product, date, value, unit, source,
			       ROW_NUMBER() OVER (PARTITION BY region, product ORDER BY date DESC) AS rn
			FROM inventories
		)
		SELECT region, product,
		       MAX(CASE WHEN rn = 1 THEN date END) AS latest_date,
		       MAX(CASE WHEN rn = 1 THEN value END) AS latest_value,
		       MAX(CASE WHEN rn = 2 THEN value END) AS previous_value,
		       MAX(CASE WHEN rn = 1 THEN unit END) AS unit,
		       MAX(CASE WHEN rn = 1 THEN source END) AS source
		FROM ranked
		WHERE rn <= 2
		GROUP BY region, product
		ORDER BY region, product
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest inventories: %w", err)
	}
	defer rows.Close()

	var latest []models.LatestInventory
	for rows.Next() {
		var li models.LatestInventory
		if err := rows.Scan(&li.Region, &li.Product, &li.Date, &li.Value, &li.Previous, &li.Unit, &li.Source); err != nil {
			return nil, fmt.Errorf("failed to scan latest inventory row: %w", err)
		}
		if li.Previous != nil {
			change := li.Value.Sub(*li.Previous)
			li.Change = &change
		}
		latest = append(latest, li)
	}
	return latest, rows.Err()
}

// ListRegions summarizes every stored region.
func (r *InventoryRepository) ListRegions(ctx context.Context) ([]models.RegionInfo, error) {
	query := `
		SELECT region, product, source,
		       COUNT(*) AS record_count,
		       MIN(date) AS first_date,
		       MAX(date) AS last_date
		FROM inventories
		GROUP BY region, product, source
		ORDER BY region, product
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query region info: %w", err)
	}
	defer rows.Close()

	var infos []models.RegionInfo
	for rows.Next() {
		var info models.RegionInfo
		if err := rows.Scan(&info.Region, &info.Product, &info.Source, &info.RecordCount, &info.FirstDate, &info.LastDate); err != nil {
			return nil, fmt.Errorf("failed to scan region info row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Aggregates returns avg/min/max stock levels for one region since a
// cutoff, feeding the days-of-supply and range-position analytics.
func (r *InventoryRepository) Aggregates(ctx context.Context, region, product string, since time.Time) (avg, low, high decimal.Decimal, err error) {
	query := `
		SELECT COALESCE(AVG(value), 0), COALESCE(MIN(value), 0), COALESCE(MAX(value), 0)
		FROM inventories
		WHERE region = $1 AND product = $2 AND date >= $3
	`

	if err = r.pool.QueryRow(ctx, query, region, product, since).Scan(&avg, &low, &high); err != nil {
		err = fmt.Errorf("failed to query aggregates for %s: %w", region, err)
	}
	return avg, low, high, err
}
