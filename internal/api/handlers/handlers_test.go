package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/distillate-labs/dieseldesk/internal/analytics"
	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (m *mockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *mockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err == nil {
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", result.RowsAffected())), nil
	}
	return pgconn.CommandTag{}, err
}

func (m *mockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func newMockPool(t *testing.T) (pgxmock.PgxPoolIface, database.DatabasePool) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &mockPoolAdapter{mock: mock}
}

func newLatestCache(t *testing.T) Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func testConfig() *config.Config {
	return &config.Config{
		MarketData: config.MarketDataConfig{
			RefreshInterval: "1h",
			HistoryMonths:   3,
			WeeklyDemandKB:  29050,
		},
		Cache: config.CacheConfig{
			LatestTTL:    "1m",
			AnalyticsTTL: "5m",
		},
		Analytics: analytics.DefaultConfig(),
	}
}

func newAnalyticsService(t *testing.T, pool database.DatabasePool) *services.AnalyticsService {
	t.Helper()
	engine, err := analytics.New(analytics.DefaultConfig())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewAnalyticsService(
		engine,
		database.NewPriceRepository(pool),
		database.NewInventoryRepository(pool),
		nil, testConfig(), logger)
}
