package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/distillate-labs/dieseldesk/internal/models"
)

// FetchLogRepository records the audit trail of upstream API calls.
type FetchLogRepository struct {
	pool DatabasePool
}

// NewFetchLogRepository creates a fetch log repository over a pool.
func NewFetchLogRepository(pool DatabasePool) *FetchLogRepository {
	return &FetchLogRepository{pool: pool}
}

// Start records an in-progress fetch and returns the row id for the
// matching Complete or Fail call.
func (r *FetchLogRepository) Start(ctx context.Context, jobID uuid.UUID, source, endpoint, seriesID string) (int64, error) {
	query := `
		INSERT INTO fetch_log (job_id, source, endpoint, series_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query, jobID, source, endpoint, seriesID, models.FetchStatusInProgress).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to record fetch start: %w", err)
	}
	return id, nil
}

// Complete marks a fetch successful with its record count.
func (r *FetchLogRepository) Complete(ctx context.Context, id int64, recordsFetched int) error {
	query := `
		UPDATE fetch_log
		SET status = $2, records_fetched = $3, completed_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, models.FetchStatusSuccess, recordsFetched); err != nil {
		return fmt.Errorf("failed to record fetch completion: %w", err)
	}
	return nil
}

// Fail marks a fetch failed with the upstream error.
func (r *FetchLogRepository) Fail(ctx context.Context, id int64, message string) error {
	query := `
		UPDATE fetch_log
		SET status = $2, error_message = $3, completed_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, models.FetchStatusError, message); err != nil {
		return fmt.Errorf("failed to record fetch failure: %w", err)
	}
	return nil
}

// Recent returns the newest log rows, most recent first.
func (r *FetchLogRepository) Recent(ctx context.Context, limit int) ([]models.FetchLog, error) {
	query := `
		SELECT id, job_id, source, endpoint, series_id, started_at, completed_at,
		       status, records_fetched, error_message
		FROM fetch_log
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch log: %w", err)
	}
	defer rows.Close()

	var logs []models.FetchLog
	for rows.Next() {
		var fl models.FetchLog
		if err := rows.Scan(&fl.ID, &fl.JobID, &fl.Source, &fl.Endpoint, &fl.SeriesID,
			&fl.StartedAt, &fl.CompletedAt, &fl.Status, &fl.RecordsFetched, &fl.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan fetch log row: %w", err)
		}
		logs = append(logs, fl)
	}
	return logs, rows.Err()
}
