package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/fetchers"
	"github.com/distillate-labs/dieseldesk/internal/models"
)

// PriceFetcher fetches one price series over a date range.
type PriceFetcher interface {
	FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]models.Point, error)
}

// StockFetcher fetches weekly stocks for one EIA area over a date range.
type StockFetcher interface {
	FetchDistillateStocks(ctx context.Context, areaCode string, start, end time.Time) ([]models.Point, error)
}

// CacheInvalidator drops cached dashboard payloads after a refresh.
type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

// cacheInvalidatePattern covers both the analytics payload cache and the
// latest-value cache the API handlers keep.
const cacheInvalidatePattern = "dieseldesk:*"

// RefreshResult reports the outcome of one refresh cycle.
type RefreshResult struct {
	JobID       uuid.UUID     `json:"job_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	PriceRows   int           `json:"price_rows"`
	StockRows   int           `json:"stock_rows"`
	SeriesOK    int           `json:"series_ok"`
	SeriesError int           `json:"series_error"`
	Errors      []string      `json:"errors,omitempty"`
}

// CollectorService keeps the prices and inventories tables current by
// fetching every tracked series from FRED and EIA on a fixed interval.
type CollectorService struct {
	prices      *database.PriceRepository
	inventories *database.InventoryRepository
	fetchLog    *database.FetchLogRepository
	fred        PriceFetcher
	eia         StockFetcher
	cache       CacheInvalidator
	cfg         *config.Config
	logger      *slog.Logger

	analytics *AnalyticsService
	notifier  *NotifierService

	mu          sync.Mutex
	lastRefresh *RefreshResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCollectorService creates a collector over the given repositories and
// upstream clients. The cache may be nil when caching is disabled.
func NewCollectorService(prices *database.PriceRepository, inventories *database.InventoryRepository, fetchLog *database.FetchLogRepository, fred PriceFetcher, eia StockFetcher, cache CacheInvalidator, cfg *config.Config, logger *slog.Logger) *CollectorService {
	ctx, cancel := context.WithCancel(context.Background())

	return &CollectorService{
		prices:      prices,
		inventories: inventories,
		fetchLog:    fetchLog,
		fred:        fred,
		eia:         eia,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// WithCrackAlerts enables Telegram alerts on gasoil crack tier changes
// after each refresh cycle.
func (c *CollectorService) WithCrackAlerts(analytics *AnalyticsService, notifier *NotifierService) *CollectorService {
	c.analytics = analytics
	c.notifier = notifier
	return c
}

// Start runs an initial refresh and then refreshes on the configured
// interval until Stop is called.
func (c *CollectorService) Start() {
	interval := c.cfg.RefreshInterval()
	c.logger.Info("starting collector", "interval", interval.String())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if _, err := c.RefreshAll(c.ctx); err != nil {
			c.logger.Error("initial refresh failed", "error", err)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.RefreshAll(c.ctx); err != nil {
					c.logger.Error("scheduled refresh failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for it to exit.
func (c *CollectorService) Stop() {
	c.logger.Info("stopping collector")
	c.cancel()
	c.wg.Wait()
}

// LastRefresh returns the most recent refresh result, nil before the
// first cycle completes.
func (c *CollectorService) LastRefresh() *RefreshResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh
}

// RefreshAll fetches every tracked price series and inventory area
// concurrently. Individual series failures are recorded and do not abort
// the rest of the cycle; the returned error is non-nil only when nothing
// could be refreshed.
func (c *CollectorService) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	result := c.newResult()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	start, end := c.window()

	for seriesID := range fetchers.FREDSeries {
		g.Go(func() error {
			rows, err := c.refreshPriceSeries(gctx, result.JobID, seriesID, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.SeriesError++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", seriesID, err))
				return nil
			}
			result.SeriesOK++
			result.PriceRows += rows
			return nil
		})
	}

	for _, area := range fetchers.EIAAreas {
		g.Go(func() error {
			rows, err := c.refreshStockArea(gctx, result.JobID, area, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.SeriesError++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", area.Code, err))
				return nil
			}
			result.SeriesOK++
			result.StockRows += rows
			return nil
		})
	}

	_ = g.Wait()

	return c.finish(ctx, result)
}

// RefreshPrices fetches only the FRED price series.
func (c *CollectorService) RefreshPrices(ctx context.Context) (*RefreshResult, error) {
	result := c.newResult()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	start, end := c.window()
	for seriesID := range fetchers.FREDSeries {
		g.Go(func() error {
			rows, err := c.refreshPriceSeries(gctx, result.JobID, seriesID, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.SeriesError++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", seriesID, err))
				return nil
			}
			result.SeriesOK++
			result.PriceRows += rows
			return nil
		})
	}
	_ = g.Wait()

	return c.finish(ctx, result)
}

// RefreshInventories fetches only the EIA stock areas.
func (c *CollectorService) RefreshInventories(ctx context.Context) (*RefreshResult, error) {
	result := c.newResult()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	start, end := c.window()
	for _, area := range fetchers.EIAAreas {
		g.Go(func() error {
			rows, err := c.refreshStockArea(gctx, result.JobID, area, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.SeriesError++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", area.Code, err))
				return nil
			}
			result.SeriesOK++
			result.StockRows += rows
			return nil
		})
	}
	_ = g.Wait()

	return c.finish(ctx, result)
}

func (c *CollectorService) newResult() *RefreshResult {
	return &RefreshResult{
		JobID:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}
}

func (c *CollectorService) window() (time.Time, time.Time) {
	months := c.cfg.MarketData.HistoryMonths
	if months <= 0 {
		months = 6
	}
	end := time.Now().UTC()
	return end.AddDate(0, -months, 0), end
}

func (c *CollectorService) finish(ctx context.Context, result *RefreshResult) (*RefreshResult, error) {
	result.Duration = time.Since(result.StartedAt)

	if c.cache != nil && result.PriceRows+result.StockRows > 0 {
		if _, err := c.cache.DeleteByPattern(ctx, cacheInvalidatePattern); err != nil {
			c.logger.Warn("cache invalidation failed", "error", err)
		}
	}

	c.mu.Lock()
	c.lastRefresh = result
	c.mu.Unlock()

	c.logger.Info("refresh cycle complete",
		"job_id", result.JobID.String(),
		"series_ok", result.SeriesOK,
		"series_error", result.SeriesError,
		"price_rows", result.PriceRows,
		"stock_rows", result.StockRows,
		"duration", result.Duration.String())

	if result.SeriesOK == 0 && result.SeriesError > 0 {
		return result, fmt.Errorf("refresh failed for all %d series", result.SeriesError)
	}

	c.alertOnCrackTier(ctx)
	return result, nil
}

// alertOnCrackTier feeds the primary diesel crack into the notifier so a
// tier change between refreshes raises a Telegram alert.
func (c *CollectorService) alertOnCrackTier(ctx context.Context) {
	if c.analytics == nil || c.notifier == nil {
		return
	}

	board, err := c.analytics.CracksBoard(ctx, nil)
	if err != nil || len(board.Cracks) == 0 {
		return
	}
	entry := board.Cracks[0]
	if entry.Result == nil {
		return
	}
	if err := c.notifier.NotifyCrackTier(ctx, entry.Name, entry.Result.Signal.Label, entry.Result.Value); err != nil {
		c.logger.Warn("crack tier alert failed", "error", err)
	}
}

func (c *CollectorService) refreshPriceSeries(ctx context.Context, jobID uuid.UUID, seriesID string, start, end time.Time) (int, error) {
	logID, err := c.fetchLog.Start(ctx, jobID, "FRED", "series/observations", seriesID)
	if err != nil {
		return 0, fmt.Errorf("failed to open fetch log: %w", err)
	}

	points, err := c.fred.FetchSeries(ctx, seriesID, start, end)
	if err != nil {
		c.failLog(ctx, logID, err)
		return 0, err
	}

	info := fetchers.FREDSeries[seriesID]
	rows, err := c.prices.Upsert(ctx, "FRED", seriesID, info.Unit, points)
	if err != nil {
		c.failLog(ctx, logID, err)
		return 0, err
	}

	if err := c.fetchLog.Complete(ctx, logID, rows); err != nil {
		c.logger.Warn("failed to close fetch log", "series", seriesID, "error", err)
	}

	c.logger.Debug("refreshed price series",
		"series", seriesID, "name", info.Name, "rows", rows)
	return rows, nil
}

func (c *CollectorService) refreshStockArea(ctx context.Context, jobID uuid.UUID, area fetchers.EIAArea, start, end time.Time) (int, error) {
	logID, err := c.fetchLog.Start(ctx, jobID, "EIA", "petroleum/sum/sndw", area.Code)
	if err != nil {
		return 0, fmt.Errorf("failed to open fetch log: %w", err)
	}

	points, err := c.eia.FetchDistillateStocks(ctx, area.Code, start, end)
	if err != nil {
		c.failLog(ctx, logID, err)
		return 0, err
	}

	rows, err := c.inventories.Upsert(ctx, "EIA", area.Region, "distillate", "thousand_barrels", points)
	if err != nil {
		c.failLog(ctx, logID, err)
		return 0, err
	}

	if err := c.fetchLog.Complete(ctx, logID, rows); err != nil {
		c.logger.Warn("failed to close fetch log", "area", area.Code, "error", err)
	}

	c.logger.Debug("refreshed inventory area",
		"area", area.Code, "region", area.Region, "name", area.DisplayName(), "rows", rows)
	return rows, nil
}

func (c *CollectorService) failLog(ctx context.Context, logID int64, cause error) {
	if err := c.fetchLog.Fail(ctx, logID, cause.Error()); err != nil {
		c.logger.Warn("failed to record fetch failure", "error", err)
	}
}
