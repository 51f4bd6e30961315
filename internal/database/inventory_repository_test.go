package database

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillate-labs/dieseldesk/internal/models"
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

func TestInventoryRepositoryUpsert(t *testing.T) {
	mock, pool := newMockPool(t)
	repo := NewInventoryRepository(pool)

	points := []models.Point{
		{Date: testDate(0), Value: decimal.NewFromInt(118500)},
		{Date: testDate(7), Value: decimal.NewFromInt(119200)},
	}

	for _, p := range points {
		mock.ExpectExec("INSERT INTO inventories").
			WithArgs("EIA", "US", "distillate", p.Date, p.Value, "thousand_barrels").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	stored, err := repo.Upsert(context.Background(), "EIA", "US", "distillate", "thousand_barrels", points)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryHistory(t *testing.T) {
	mock, pool := newMockPool(t)
	repo := NewInventoryRepository(pool)

	rows := pgxmock.NewRows([]string{"date", "value"}).
		AddRow(testDate(7), decimal.NewFromInt(119200)).
		AddRow(testDate(0), decimal.NewFromInt(118500))
	mock.ExpectQuery("SELECT date, value").
		WithArgs("US", "distillate", testDate(-365)).
		WillReturnRows(rows)

	points, err := repo.History(context.Background(), "US", "distillate", testDate(-365))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(119200)))
}

func TestInventoryRepositoryHistoryNotFound(t *testing.T) {
	mock, pool := newMockPool(t)
	repo := NewInventoryRepository(pool)

	mock.ExpectQuery("SELECT date, value").
		WithArgs("PADD9", "distillate", testDate(-365)).
		WillReturnRows(pgxmock.NewRows([]string{"date", "value"}))

	_, err := repo.History(context.Background(), "PADD9", "distillate", testDate(-365))
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}

func TestInventoryRepositoryLatestComputesChange(t *testing.T) {
	mock, pool := newMockPool(t)
	repo := NewInventoryRepository(pool)

	prev := decimal.NewFromInt(118500)
	rows := pgxmock.NewRows([]string{"region", "product", "latest_date", "latest_value", "previous_value", "unit", "source"}).
		AddRow("US", "distillate", testDate(7), decimal.NewFromInt(119200), &prev, "thousand_barrels", "EIA")
	mock.ExpectQuery("WITH ranked AS").WillReturnRows(rows)

	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.NotNil(t, latest[0].Change)
	assert.True(t, latest[0].Change.Equal(decimal.NewFromInt(700)))
}

func TestInventoryRepositoryAggregates(t *testing.T) {
	mock, pool := newMockPool(t)
	repo := NewInventoryRepository(pool)

	rows := pgxmock.NewRows([]string{"avg", "min", "max"}).
		AddRow(decimal.NewFromInt(121000), decimal.NewFromInt(105000), decimal.NewFromInt(142000))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("US", "distillate", testDate(-365*5)).
		WillReturnRows(rows)

	avg, low, high, err := repo.Aggregates(context.Background(), "US", "distillate", testDate(-365*5))
	require.NoError(t, err)
	assert.True(t, avg.Equal(decimal.NewFromInt(121000)))
	assert.True(t, low.Equal(decimal.NewFromInt(105000)))
	assert.True(t, high.Equal(decimal.NewFromInt(142000)))
}
