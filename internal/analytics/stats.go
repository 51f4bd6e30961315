package analytics

import (
	"math"
)

// CorrelationResult reports a Pearson coefficient over date-aligned pairs.
// Valid is false when there is not enough aligned history, or when either
// side has zero variance; callers must be able to tell "no correlation"
// apart from "not enough data to know".
type CorrelationResult struct {
	Coefficient float64 `json:"coefficient"`
	SampleSize  int     `json:"sample_size"`
	Valid       bool    `json:"valid"`
}

// VolatilityResult reports annualized realized volatility in percent.
// Valid is false below the configured minimum number of return
// observations. A flat series is valid with zero volatility, not unknown.
type VolatilityResult struct {
	AnnualizedPct float64 `json:"annualized_pct"`
	WindowDays    int     `json:"window_days"`
	SampleSize    int     `json:"sample_size"`
	Valid         bool    `json:"valid"`
}

// VolRegime compares short-window volatility against a longer baseline.
type VolRegime string

const (
	VolLow    VolRegime = "LOW"
	VolNormal VolRegime = "NORMAL"
	VolHigh   VolRegime = "HIGH"
)

// RegimeResult is the regime call plus the readings behind it.
type RegimeResult struct {
	Regime   VolRegime        `json:"regime"`
	Short    VolatilityResult `json:"short"`
	Baseline VolatilityResult `json:"baseline"`
	Valid    bool             `json:"valid"`
}

// StatsEngine computes correlation and realized volatility over raw
// aligned series, independent of the conversion/crack pipeline.
type StatsEngine struct {
	minSamples      int
	minReturns      int
	shortWindow     int
	baselineWindows []int
	lowMult         float64
	highMult        float64
	annualization   float64
}

// NewStatsEngine builds an engine from an already-validated Config.
func NewStatsEngine(cfg Config) *StatsEngine {
	windows := make([]int, len(cfg.VolBaselineWindows))
	copy(windows, cfg.VolBaselineWindows)
	return &StatsEngine{
		minSamples:      cfg.CorrelationMinSamples,
		minReturns:      cfg.VolatilityMinReturns,
		shortWindow:     cfg.VolShortWindowDays,
		baselineWindows: windows,
		lowMult:         cfg.VolLowMultiplier,
		highMult:        cfg.VolHighMultiplier,
		annualization:   math.Sqrt(float64(cfg.TradingDaysPerYear)),
	}
}

// Correlation inner-joins two series on date and computes the Pearson
// coefficient with the standard sum-of-products formula. Only dates
// present in both series contribute.
func (e *StatsEngine) Correlation(x, y Series) CorrelationResult {
	xs, ys := AlignByDate(x, y)
	n := len(xs)
	if n < e.minSamples {
		return CorrelationResult{SampleSize: n}
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var numerator, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		numerator += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		// Zero variance on either side: the coefficient is undefined,
		// which is insufficient data, not a divide-by-zero crash.
		return CorrelationResult{SampleSize: n}
	}

	coeff := numerator / denom
	if coeff > 1 {
		coeff = 1
	}
	if coeff < -1 {
		coeff = -1
	}
	return CorrelationResult{Coefficient: coeff, SampleSize: n, Valid: true}
}

// logReturns computes daily log returns over a most-recent-first window.
// Pairs with non-positive prices carry no usable return and are skipped.
func logReturns(window Series) []float64 {
	if len(window) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(window)-1)
	for i := 0; i+1 < len(window); i++ {
		if window[i].Value <= 0 || window[i+1].Value <= 0 {
			continue
		}
		returns = append(returns, math.Log(window[i].Value/window[i+1].Value))
	}
	return returns
}

func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(n-1))
}

// Volatility computes annualized realized volatility over the most recent
// windowDays returns of a series. The series may arrive in any order; the
// window is taken from a most-recent-first sort.
func (e *StatsEngine) Volatility(s Series, windowDays int) VolatilityResult {
	result := VolatilityResult{WindowDays: windowDays}
	if windowDays <= 0 {
		return result
	}

	desc := s.SortedDesc()
	if len(desc) > windowDays+1 {
		desc = desc[:windowDays+1]
	}

	returns := logReturns(desc)
	result.SampleSize = len(returns)
	if len(returns) < e.minReturns {
		return result
	}

	result.AnnualizedPct = sampleStdDev(returns) * e.annualization * 100
	result.Valid = true
	return result
}

// Regime classifies current volatility against a longer baseline. The
// short window is compared to the first baseline window with enough
// history, falling back through the configured list. Without a valid
// short reading or any valid baseline the call is unknown.
func (e *StatsEngine) Regime(s Series) RegimeResult {
	short := e.Volatility(s, e.shortWindow)
	result := RegimeResult{Regime: VolNormal, Short: short}
	if !short.Valid {
		return result
	}

	for _, window := range e.baselineWindows {
		baseline := e.Volatility(s, window)
		if !baseline.Valid {
			continue
		}
		result.Baseline = baseline
		result.Valid = true
		switch {
		case short.AnnualizedPct < e.lowMult*baseline.AnnualizedPct:
			result.Regime = VolLow
		case short.AnnualizedPct > e.highMult*baseline.AnnualizedPct:
			result.Regime = VolHigh
		}
		return result
	}
	return result
}
