package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatsEngine(t *testing.T) *StatsEngine {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return NewStatsEngine(cfg)
}

func TestCorrelationIdenticalSeries(t *testing.T) {
	engine := newTestStatsEngine(t)

	s := seriesOf(70, 71, 69.5, 72, 73, 71.8, 70.2, 74, 75, 73.3, 72.1, 76)
	result := engine.Correlation(s, s)
	assert.True(t, result.Valid)
	assert.Equal(t, 12, result.SampleSize)
	assert.InDelta(t, 1.0, result.Coefficient, 1e-9)
}

func TestCorrelationInverseSeries(t *testing.T) {
	engine := newTestStatsEngine(t)

	x := seriesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	y := make(Series, len(x))
	for i, obs := range x {
		y[i] = Observation{Date: obs.Date, Value: -obs.Value}
	}

	result := engine.Correlation(x, y)
	assert.True(t, result.Valid)
	assert.InDelta(t, -1.0, result.Coefficient, 1e-9)
}

func TestCorrelationInsufficientData(t *testing.T) {
	engine := newTestStatsEngine(t)

	short := seriesOf(1, 2, 3, 4, 5)
	result := engine.Correlation(short, short)
	assert.False(t, result.Valid)
	assert.Equal(t, 5, result.SampleSize)
	assert.Zero(t, result.Coefficient)
}

func TestCorrelationZeroVariance(t *testing.T) {
	engine := newTestStatsEngine(t)

	constant := seriesOf(5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5)
	moving := seriesOf(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	// Variance of a constant series is zero; the coefficient is undefined
	// and must come back as insufficient data, not a crash or a zero.
	result := engine.Correlation(constant, moving)
	assert.False(t, result.Valid)
	assert.Equal(t, 12, result.SampleSize)
}

func TestCorrelationUsesOnlySharedDates(t *testing.T) {
	engine := newTestStatsEngine(t)

	x := make(Series, 0, 15)
	y := make(Series, 0, 15)
	for i := 0; i < 15; i++ {
		x = append(x, Observation{Date: day(i), Value: float64(i)})
		// y misses a few of x's dates and adds some of its own
		if i%5 != 0 {
			y = append(y, Observation{Date: day(i), Value: float64(2 * i)})
		}
	}
	y = append(y, Observation{Date: day(40), Value: 99})

	result := engine.Correlation(x, y)
	assert.True(t, result.Valid)
	assert.Equal(t, 12, result.SampleSize)
	assert.InDelta(t, 1.0, result.Coefficient, 1e-9)
}

func TestVolatilityFlatSeriesIsZeroNotUnknown(t *testing.T) {
	engine := newTestStatsEngine(t)

	flat := seriesOf(80, 80, 80, 80, 80, 80, 80, 80)
	result := engine.Volatility(flat, 7)
	assert.True(t, result.Valid)
	assert.Zero(t, result.AnnualizedPct)
}

func TestVolatilityKnownValue(t *testing.T) {
	engine := newTestStatsEngine(t)

	// Alternating +1%/-1%-ish moves give a deterministic stddev to check
	// the annualization against.
	prices := seriesOf(100, 101, 100, 101, 100, 101, 100)
	result := engine.Volatility(prices, 6)
	require.True(t, result.Valid)
	assert.Equal(t, 6, result.SampleSize)

	r := math.Log(101.0 / 100.0)
	// returns alternate -r, +r with mean 0 over an even count
	expected := math.Sqrt(6.0/5.0*r*r) * math.Sqrt(252) * 100
	assert.InDelta(t, expected, result.AnnualizedPct, 1e-6)
}

func TestVolatilityInsufficientData(t *testing.T) {
	engine := newTestStatsEngine(t)

	result := engine.Volatility(seriesOf(100, 101, 102, 103), 30)
	assert.False(t, result.Valid)
	assert.Equal(t, 3, result.SampleSize)

	result = engine.Volatility(Series{}, 30)
	assert.False(t, result.Valid)

	result = engine.Volatility(seriesOf(100, 101, 102), 0)
	assert.False(t, result.Valid)
}

func TestVolatilitySkipsNonPositivePrices(t *testing.T) {
	engine := newTestStatsEngine(t)

	prices := seriesOf(100, 0, 101, 100.5, 101, 100, 101, 100)
	result := engine.Volatility(prices, 7)
	// the two pairs touching the zero price contribute no return
	assert.Equal(t, 5, result.SampleSize)
	assert.True(t, result.Valid)
}

func TestVolatilityWindowUsesMostRecent(t *testing.T) {
	engine := newTestStatsEngine(t)

	// Old half is wildly volatile, recent half is flat; a short window
	// must only see the flat part.
	s := seriesOf(10, 200, 15, 180, 20, 150, 80, 80, 80, 80, 80, 80, 80, 80)
	result := engine.Volatility(s, 6)
	require.True(t, result.Valid)
	assert.Zero(t, result.AnnualizedPct)
}

func TestRegimeClassification(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VolShortWindowDays = 5
	cfg.VolBaselineWindows = []int{20}
	engine := NewStatsEngine(cfg)

	// 20 noisy days followed by 6 flat days: short vol well under the
	// baseline.
	var values []float64
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			values = append(values, 100)
		} else {
			values = append(values, 110)
		}
	}
	values = append(values, 105, 105, 105, 105, 105, 105)

	result := engine.Regime(seriesOf(values...))
	require.True(t, result.Valid)
	assert.Equal(t, VolLow, result.Regime)
}

func TestRegimeBaselineFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VolShortWindowDays = 5
	cfg.VolBaselineWindows = []int{90, 60, 10}
	engine := NewStatsEngine(cfg)

	// Only 12 points of history: the 90- and 60-day baselines cannot use
	// more data than exists, so every window sees the same series and the
	// first baseline already validates. Shrink the history below the
	// short window to force full fallback failure instead.
	s := seriesOf(100, 102, 99, 103, 101, 100, 104, 98, 102, 100, 101, 99)
	result := engine.Regime(s)
	require.True(t, result.Valid)

	tiny := seriesOf(100, 101, 100)
	result = engine.Regime(tiny)
	assert.False(t, result.Valid)
	assert.Equal(t, VolNormal, result.Regime)
}
