package analytics

import (
	"github.com/distillate-labs/dieseldesk/internal/utils"
)

// Config carries every constant and threshold table the calculators use.
// Nothing in this package reads global state; per-product-class instances
// (a heating-oil desk with its own crack tiers, say) are just separate
// Engines built from separate Configs.
type Config struct {
	// Barrel/ton factors differ per product class and must be selected,
	// never assumed.
	GasoilBblPerMT float64 `mapstructure:"gasoil_bbl_per_mt"`
	CrudeBblPerMT  float64 `mapstructure:"crude_bbl_per_mt"`
	GalPerBbl      float64 `mapstructure:"gal_per_bbl"`

	// Crack spread tiers, descending $/bbl boundaries.
	CrackTiers      []Threshold `mapstructure:"crack_tiers"`
	CrackFloorLabel string      `mapstructure:"crack_floor_label"`

	// Curve structure thresholds: the inclusive flat band sits between
	// ContangoMax and BackwardationMin.
	BackwardationMin float64 `mapstructure:"backwardation_min"`
	ContangoMax      float64 `mapstructure:"contango_max"`

	// US distillate stock tiers, ascending million-barrel boundaries.
	InventoryTiers        []Threshold `mapstructure:"inventory_tiers"`
	InventoryCeilingLabel string      `mapstructure:"inventory_ceiling_label"`

	// Arb open/marginal/closed band half-width, $.
	ArbThreshold float64 `mapstructure:"arb_threshold"`

	// Statistical minimums below which results are "insufficient data".
	CorrelationMinSamples int `mapstructure:"correlation_min_samples"`
	VolatilityMinReturns  int `mapstructure:"volatility_min_returns"`

	// Realized volatility windows (days) and regime multipliers. Baseline
	// windows are tried in order until one has enough history.
	VolShortWindowDays int     `mapstructure:"vol_short_window_days"`
	VolBaselineWindows []int   `mapstructure:"vol_baseline_windows"`
	VolLowMultiplier   float64 `mapstructure:"vol_low_multiplier"`
	VolHighMultiplier  float64 `mapstructure:"vol_high_multiplier"`
	TradingDaysPerYear int     `mapstructure:"trading_days_per_year"`
}

// DefaultConfig returns the gasoil-desk defaults.
func DefaultConfig() Config {
	return Config{
		GasoilBblPerMT: 7.45,
		CrudeBblPerMT:  7.33,
		GalPerBbl:      42,
		CrackTiers: []Threshold{
			{Boundary: 25, Label: "Very Strong"},
			{Boundary: 20, Label: "Strong"},
			{Boundary: 15, Label: "Healthy"},
			{Boundary: 10, Label: "Moderate"},
		},
		CrackFloorLabel:  "Weak",
		BackwardationMin: 1,
		ContangoMax:      -1,
		InventoryTiers: []Threshold{
			{Boundary: 105, Label: "Very Tight"},
			{Boundary: 120, Label: "Tight"},
			{Boundary: 150, Label: "Balanced"},
		},
		InventoryCeilingLabel: "Oversupplied",
		ArbThreshold:          2,
		CorrelationMinSamples: 10,
		VolatilityMinReturns:  5,
		VolShortWindowDays:    30,
		VolBaselineWindows:    []int{90, 60, 30},
		VolLowMultiplier:      0.8,
		VolHighMultiplier:     1.2,
		TradingDaysPerYear:    252,
	}
}

// Validate rejects configurations that would make a calculator lie:
// non-positive conversion factors, degenerate windows, inverted regime
// multipliers. Threshold table ordering is checked by NewClassifier.
func (c Config) Validate() error {
	if c.GasoilBblPerMT <= 0 || c.CrudeBblPerMT <= 0 || c.GalPerBbl <= 0 {
		return utils.NewValidationError("unit conversion factors must be positive")
	}
	if c.BackwardationMin < c.ContangoMax {
		return utils.NewValidationErrorf(
			"curve flat band inverted: backwardation_min %v < contango_max %v",
			c.BackwardationMin, c.ContangoMax)
	}
	if c.ArbThreshold < 0 {
		return utils.NewValidationError("arb threshold must not be negative")
	}
	if c.CorrelationMinSamples < 2 {
		return utils.NewValidationError("correlation minimum sample size must be at least 2")
	}
	if c.VolatilityMinReturns < 2 {
		return utils.NewValidationError("volatility minimum return count must be at least 2")
	}
	if c.VolShortWindowDays <= 0 {
		return utils.NewValidationError("volatility short window must be positive")
	}
	if len(c.VolBaselineWindows) == 0 {
		return utils.NewValidationError("at least one volatility baseline window is required")
	}
	for _, w := range c.VolBaselineWindows {
		if w <= 0 {
			return utils.NewValidationErrorf("volatility baseline window %d must be positive", w)
		}
	}
	if c.VolLowMultiplier <= 0 || c.VolHighMultiplier <= c.VolLowMultiplier {
		return utils.NewValidationError("volatility regime multipliers must satisfy 0 < low < high")
	}
	if c.TradingDaysPerYear <= 0 {
		return utils.NewValidationError("trading days per year must be positive")
	}
	return nil
}

// Engine bundles one configured instance of every calculator.
type Engine struct {
	Gasoil    UnitConverter
	Crude     UnitConverter
	Crack     *CrackCalculator
	Curve     *CurveClassifier
	Inventory *InventoryAnalyzer
	Arb       *ArbCalculator
	Stats     *StatsEngine
}

// New builds an Engine, failing fast on any invalid configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gasoil := UnitConverter{BblPerMT: cfg.GasoilBblPerMT, GalPerBbl: cfg.GalPerBbl}
	crude := UnitConverter{BblPerMT: cfg.CrudeBblPerMT, GalPerBbl: cfg.GalPerBbl}

	crack, err := NewCrackCalculator(gasoil, cfg.CrackTiers, cfg.CrackFloorLabel)
	if err != nil {
		return nil, err
	}
	inventory, err := NewInventoryAnalyzer(cfg.InventoryTiers, cfg.InventoryCeilingLabel)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Gasoil:    gasoil,
		Crude:     crude,
		Crack:     crack,
		Curve:     NewCurveClassifier(cfg.BackwardationMin, cfg.ContangoMax),
		Inventory: inventory,
		Arb:       NewArbCalculator(cfg.ArbThreshold),
		Stats:     NewStatsEngine(cfg),
	}, nil
}
