package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/distillate-labs/dieseldesk/internal/config"
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresConnection(cfg config.DatabaseConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		logrus.Info("PostgreSQL connection closed")
	}
}

func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// InitSchema creates the storage tables if they do not exist yet. The
// unique constraints make refetches idempotent: the repositories upsert
// on conflict rather than duplicating observations.
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			id BIGSERIAL PRIMARY KEY,
			source VARCHAR(20) NOT NULL,
			series_id VARCHAR(50) NOT NULL,
			date DATE NOT NULL,
			value NUMERIC NOT NULL,
			unit VARCHAR(20) NOT NULL DEFAULT '',
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uix_price_series_date UNIQUE (source, series_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_series_date ON prices (series_id, date DESC)`,
		`CREATE TABLE IF NOT EXISTS inventories (
			id BIGSERIAL PRIMARY KEY,
			source VARCHAR(20) NOT NULL,
			region VARCHAR(20) NOT NULL,
			product VARCHAR(30) NOT NULL,
			date DATE NOT NULL,
			value NUMERIC NOT NULL,
			unit VARCHAR(30) NOT NULL DEFAULT '',
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uix_inventory UNIQUE (source, region, product, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventories_region_date ON inventories (region, product, date DESC)`,
		`CREATE TABLE IF NOT EXISTS fetch_log (
			id BIGSERIAL PRIMARY KEY,
			job_id UUID NOT NULL,
			source VARCHAR(20) NOT NULL,
			endpoint VARCHAR(100) NOT NULL DEFAULT '',
			series_id VARCHAR(50) NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			status VARCHAR(20) NOT NULL,
			records_fetched INTEGER NOT NULL DEFAULT 0,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_log_source_started ON fetch_log (source, started_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	logrus.Info("Database schema initialized")
	return nil
}
