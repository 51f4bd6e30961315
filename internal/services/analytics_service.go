package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/distillate-labs/dieseldesk/internal/analytics"
	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/fetchers"
	"github.com/distillate-labs/dieseldesk/internal/models"
)

// cacheKeyPrefix namespaces every cached dashboard payload so one pattern
// delete can drop them all after a refresh.
const cacheKeyPrefix = "dieseldesk:analytics:"

// Cache is the subset of the Redis wrapper the analytics service needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CrackEntry is one row of the cracks board.
type CrackEntry struct {
	Name    string                 `json:"name"`
	Product string                 `json:"product_series"`
	Crude   string                 `json:"crude_series"`
	Result  *analytics.CrackResult `json:"result"`
}

// CrackBoard is the cracks dashboard payload.
type CrackBoard struct {
	AsOf   time.Time    `json:"as_of"`
	Cracks []CrackEntry `json:"cracks"`
}

// CurveOutlook is the timespread payload for one m1/m2 pair.
type CurveOutlook struct {
	Result    *analytics.CurveResult `json:"result"`
	RollYield *float64               `json:"roll_yield,omitempty"`
	Days      int                    `json:"days_to_expiry,omitempty"`
}

// InventoryEntry is one row of the inventory board.
type InventoryEntry struct {
	Region           string                `json:"region"`
	RegionName       string                `json:"region_name"`
	Date             time.Time             `json:"date"`
	StocksKB         float64               `json:"stocks_kb"`
	ChangeKB         *float64              `json:"change_kb,omitempty"`
	DaysOfSupply     *float64              `json:"days_of_supply,omitempty"`
	VsFiveYearAvgPct *float64              `json:"vs_five_year_avg_pct,omitempty"`
	RangePositionPct *float64              `json:"range_position_pct,omitempty"`
	Signal           *analytics.SignalTier `json:"signal,omitempty"`
}

// InventoryBoard is the inventory dashboard payload, national row first.
type InventoryBoard struct {
	AsOf    time.Time        `json:"as_of"`
	Product string           `json:"product"`
	Regions []InventoryEntry `json:"regions"`
}

// CorrelationPair is one cell of the correlation matrix.
type CorrelationPair struct {
	SeriesA string                      `json:"series_a"`
	SeriesB string                      `json:"series_b"`
	Result  analytics.CorrelationResult `json:"result"`
}

// CorrelationMatrix is the pairwise correlation payload over all tracked
// price series.
type CorrelationMatrix struct {
	WindowMonths int               `json:"window_months"`
	Pairs        []CorrelationPair `json:"pairs"`
}

// VolatilityEntry is one series' realized volatility and regime.
type VolatilityEntry struct {
	SeriesID   string                     `json:"series_id"`
	Volatility analytics.VolatilityResult `json:"volatility"`
	Regime     analytics.RegimeResult     `json:"regime"`
}

// VolatilityReport is the volatility payload over all tracked price series.
type VolatilityReport struct {
	Entries []VolatilityEntry `json:"entries"`
}

// TrendPoint pairs a date with its moving-average value.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	SMA   float64   `json:"sma"`
}

// TrendReport is one series' SMA trend payload.
type TrendReport struct {
	SeriesID  string       `json:"series_id"`
	Period    int          `json:"period"`
	Direction string       `json:"direction"`
	Points    []TrendPoint `json:"points"`
}

// AnalyticsService assembles dashboard payloads from stored series,
// caching each payload in Redis until the next refresh invalidates it.
type AnalyticsService struct {
	engine      *analytics.Engine
	prices      *database.PriceRepository
	inventories *database.InventoryRepository
	cache       Cache
	cfg         *config.Config
	logger      *slog.Logger
}

// NewAnalyticsService creates the service. The cache may be nil, in which
// case every call recomputes.
func NewAnalyticsService(engine *analytics.Engine, prices *database.PriceRepository, inventories *database.InventoryRepository, cache Cache, cfg *config.Config, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		engine:      engine,
		prices:      prices,
		inventories: inventories,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
	}
}

// Engine exposes the configured calculators for request-driven endpoints.
func (s *AnalyticsService) Engine() *analytics.Engine {
	return s.engine
}

// cached runs build through the Redis read-through cache. Cache failures
// degrade to recomputing, never to an error.
func (s *AnalyticsService) cached(ctx context.Context, key string, out interface{}, build func() (interface{}, error)) error {
	fullKey := cacheKeyPrefix + key
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, fullKey); err == nil && raw != "" {
			if err := json.Unmarshal([]byte(raw), out); err == nil {
				return nil
			}
			s.logger.Warn("discarding malformed cache entry", "key", fullKey)
		}
	}

	payload, err := build()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, fullKey, string(raw), s.cfg.AnalyticsTTL()); err != nil {
			s.logger.Warn("cache write failed", "key", fullKey, "error", err)
		}
	}
	return json.Unmarshal(raw, out)
}

// latestFloats returns the latest value per series as *float64, plus the
// most recent quote date across them.
func (s *AnalyticsService) latestFloats(ctx context.Context) (map[string]*float64, time.Time, error) {
	latest, err := s.prices.Latest(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}

	values := make(map[string]*float64, len(latest))
	var asOf time.Time
	for _, p := range latest {
		values[p.SeriesID] = analytics.Float(p.Value.InexactFloat64())
		if p.Date.After(asOf) {
			asOf = p.Date
		}
	}
	return values, asOf, nil
}

// CracksBoard computes the crack spreads observable from stored quotes.
// ULSD NY Harbor is restated to $/mt so it runs through the gasoil/Brent
// formula on the same footing as a European gasoil quote. When an RBOB
// quote is supplied, the 3-2-1 and 2-1-1 composites are included.
func (s *AnalyticsService) CracksBoard(ctx context.Context, rbobPerGal *float64) (*CrackBoard, error) {
	// Request-supplied RBOB legs vary per call; only the base board caches.
	if rbobPerGal == nil {
		var board CrackBoard
		err := s.cached(ctx, "cracks", &board, func() (interface{}, error) {
			return s.buildCracksBoard(ctx, nil)
		})
		return &board, err
	}
	return s.buildCracksBoard(ctx, rbobPerGal)
}

func (s *AnalyticsService) buildCracksBoard(ctx context.Context, rbobPerGal *float64) (*CrackBoard, error) {
	values, asOf, err := s.latestFloats(ctx)
	if err != nil {
		return nil, err
	}

	gulf := values[models.SeriesULSDGulf]
	nyh := values[models.SeriesULSDNYHarbor]
	wti := values[models.SeriesWTI]
	brent := values[models.SeriesBrent]

	nyhPerMT := s.engine.Gasoil.BblToMT(s.engine.Gasoil.GalToBbl(nyh))

	board := &CrackBoard{
		AsOf: asOf,
		Cracks: []CrackEntry{
			{
				Name:    "ULSD Gulf Coast vs WTI",
				Product: models.SeriesULSDGulf,
				Crude:   models.SeriesWTI,
				Result:  s.engine.Crack.ULSDWTI(gulf, wti),
			},
			{
				Name:    "ULSD NY Harbor vs Brent",
				Product: models.SeriesULSDNYHarbor,
				Crude:   models.SeriesBrent,
				Result:  s.engine.Crack.GasoilBrent(nyhPerMT, brent),
			},
		},
	}

	if rbobPerGal != nil {
		board.Cracks = append(board.Cracks,
			CrackEntry{
				Name:    "3-2-1 Gulf Coast",
				Product: models.SeriesULSDGulf,
				Crude:   models.SeriesWTI,
				Result:  s.engine.Crack.Crack321(rbobPerGal, gulf, wti),
			},
			CrackEntry{
				Name:    "2-1-1 Gulf Coast",
				Product: models.SeriesULSDGulf,
				Crude:   models.SeriesWTI,
				Result:  s.engine.Crack.Crack211(rbobPerGal, gulf, wti),
			},
		)
	}
	return board, nil
}

// Curve classifies a caller-supplied near/far contract pair.
func (s *AnalyticsService) Curve(m1, m2 *float64, daysToExpiry int) *CurveOutlook {
	result := s.engine.Curve.Classify(m1, m2)
	outlook := &CurveOutlook{Result: result, Days: daysToExpiry}
	if result != nil && daysToExpiry > 0 {
		outlook.RollYield = s.engine.Curve.RollYield(analytics.Float(result.Spread), daysToExpiry)
	}
	return outlook
}

// Arb evaluates caller-supplied arbitrage legs.
func (s *AnalyticsService) Arb(originFOB, destPrice, freight, insurance, portCosts *float64) *analytics.ArbResult {
	return s.engine.Arb.Evaluate(originFOB, destPrice, freight, insurance, portCosts)
}

// InventoryBoard assembles the distillate stocks board: latest level and
// weekly change per region, plus days of supply, five-year comparisons
// and the tightness signal for the national row.
func (s *AnalyticsService) InventoryBoard(ctx context.Context) (*InventoryBoard, error) {
	var board InventoryBoard
	err := s.cached(ctx, "inventory", &board, func() (interface{}, error) {
		return s.buildInventoryBoard(ctx)
	})
	return &board, err
}

func (s *AnalyticsService) buildInventoryBoard(ctx context.Context) (*InventoryBoard, error) {
	latest, err := s.inventories.Latest(ctx)
	if err != nil {
		return nil, err
	}

	fiveYearsAgo := time.Now().UTC().AddDate(-5, 0, 0)
	board := &InventoryBoard{Product: "distillate"}

	byRegion := make(map[string]models.LatestInventory, len(latest))
	for _, inv := range latest {
		byRegion[inv.Region] = inv
		if inv.Date.After(board.AsOf) {
			board.AsOf = inv.Date
		}
	}

	for _, region := range models.RegionOrder {
		inv, ok := byRegion[region]
		if !ok {
			continue
		}

		stocks := inv.Value.InexactFloat64()
		entry := InventoryEntry{
			Region:     region,
			RegionName: fetchers.DisplayNameForRegion(region),
			Date:       inv.Date,
			StocksKB:   stocks,
		}
		if inv.Change != nil {
			change := inv.Change.InexactFloat64()
			entry.ChangeKB = &change
		}

		avg, low, high, err := s.inventories.Aggregates(ctx, region, "distillate", fiveYearsAgo)
		if err != nil {
			// Degrade to a bare stocks row, but leave a trace.
			s.logger.Warn("failed to load five-year aggregates", "region", region, "error", err)
		}
		if err == nil && !high.IsZero() {
			entry.VsFiveYearAvgPct = s.engine.Inventory.VsFiveYearAvgPct(
				analytics.Float(stocks), analytics.Float(avg.InexactFloat64()))
			entry.RangePositionPct = analytics.RangePositionPct(
				analytics.Float(stocks),
				analytics.Float(low.InexactFloat64()),
				analytics.Float(high.InexactFloat64()))
		}

		// Demand coverage and the tightness tiers are calibrated to the
		// national balance, not individual PADDs.
		if region == "US" {
			entry.DaysOfSupply = s.engine.Inventory.DaysOfSupply(
				analytics.Float(stocks), analytics.Float(s.cfg.MarketData.WeeklyDemandKB))
			tier := s.engine.Inventory.ClassifyStocks(stocks / 1000) // KB to million bbl
			entry.Signal = &tier
		}

		board.Regions = append(board.Regions, entry)
	}
	return board, nil
}

// loadSeries loads one price series as an analytics.Series.
func (s *AnalyticsService) loadSeries(ctx context.Context, seriesID string, since time.Time) (analytics.Series, error) {
	points, err := s.prices.GetSeries(ctx, seriesID, &since, nil)
	if err != nil {
		return nil, err
	}
	series := make(analytics.Series, 0, len(points))
	for _, p := range points {
		series = append(series, analytics.Observation{Date: p.Date, Value: p.Value.InexactFloat64()})
	}
	return series, nil
}

// Correlations computes the pairwise correlation matrix over the tracked
// price series. Series with no stored data contribute invalid cells.
func (s *AnalyticsService) Correlations(ctx context.Context) (*CorrelationMatrix, error) {
	var matrix CorrelationMatrix
	err := s.cached(ctx, "correlations", &matrix, func() (interface{}, error) {
		return s.buildCorrelations(ctx)
	})
	return &matrix, err
}

var trackedSeries = []string{
	models.SeriesBrent,
	models.SeriesWTI,
	models.SeriesULSDGulf,
	models.SeriesULSDNYHarbor,
}

func (s *AnalyticsService) buildCorrelations(ctx context.Context) (*CorrelationMatrix, error) {
	months := s.cfg.MarketData.HistoryMonths
	if months <= 0 {
		months = 6
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	loaded := make(map[string]analytics.Series, len(trackedSeries))
	for _, id := range trackedSeries {
		series, err := s.loadSeries(ctx, id, since)
		if err != nil {
			series = nil
		}
		loaded[id] = series
	}

	matrix := &CorrelationMatrix{WindowMonths: months}
	for i, a := range trackedSeries {
		for _, b := range trackedSeries[i+1:] {
			matrix.Pairs = append(matrix.Pairs, CorrelationPair{
				SeriesA: a,
				SeriesB: b,
				Result:  s.engine.Stats.Correlation(loaded[a], loaded[b]),
			})
		}
	}
	return matrix, nil
}

// Volatility computes short-window realized volatility and the regime for
// every tracked price series.
func (s *AnalyticsService) Volatility(ctx context.Context) (*VolatilityReport, error) {
	var report VolatilityReport
	err := s.cached(ctx, "volatility", &report, func() (interface{}, error) {
		return s.buildVolatility(ctx)
	})
	return &report, err
}

func (s *AnalyticsService) buildVolatility(ctx context.Context) (*VolatilityReport, error) {
	months := s.cfg.MarketData.HistoryMonths
	if months <= 0 {
		months = 6
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	report := &VolatilityReport{}
	for _, id := range trackedSeries {
		series, err := s.loadSeries(ctx, id, since)
		if err != nil {
			series = nil
		}
		report.Entries = append(report.Entries, VolatilityEntry{
			SeriesID:   id,
			Volatility: s.engine.Stats.Volatility(series, s.cfg.Analytics.VolShortWindowDays),
			Regime:     s.engine.Stats.Regime(series),
		})
	}
	return report, nil
}

// Trend computes a simple moving average over one series and labels the
// direction by comparing the latest close to the latest SMA value.
func (s *AnalyticsService) Trend(ctx context.Context, seriesID string, period int) (*TrendReport, error) {
	if period <= 0 {
		period = 20
	}

	months := s.cfg.MarketData.HistoryMonths
	if months <= 0 {
		months = 6
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	series, err := s.loadSeries(ctx, seriesID, since)
	if err != nil {
		return nil, err
	}

	asc := series.SortedAsc()
	report := &TrendReport{SeriesID: seriesID, Period: period, Direction: "unknown"}
	if len(asc) < period {
		return report, nil
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(asc.Values())))

	// The SMA output is shorter than the input by period-1.
	offset := len(asc) - len(values)
	for i, v := range values {
		obs := asc[offset+i]
		report.Points = append(report.Points, TrendPoint{Date: obs.Date, Value: obs.Value, SMA: v})
	}

	last := report.Points[len(report.Points)-1]
	switch {
	case last.Value > last.SMA:
		report.Direction = "up"
	case last.Value < last.SMA:
		report.Direction = "down"
	default:
		report.Direction = "flat"
	}
	return report, nil
}
