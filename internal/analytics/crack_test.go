package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCrackCalculator(t *testing.T) *CrackCalculator {
	t.Helper()
	cfg := DefaultConfig()
	calc, err := NewCrackCalculator(
		UnitConverter{BblPerMT: cfg.GasoilBblPerMT, GalPerBbl: cfg.GalPerBbl},
		cfg.CrackTiers, cfg.CrackFloorLabel)
	require.NoError(t, err)
	return calc
}

func TestGasoilBrentCrack(t *testing.T) {
	calc := newTestCrackCalculator(t)

	// 745 $/mt is exactly 100 $/bbl at 7.45 bbl/mt.
	result := calc.GasoilBrent(Float(745), Float(80))
	require.NotNil(t, result)
	assert.InDelta(t, 20, result.Value, 1e-9)
	assert.InDelta(t, 100, result.ProductPrice, 1e-9)
	assert.InDelta(t, 80, result.CrudePrice, 1e-9)
	assert.Equal(t, "Strong", result.Signal.Label)
}

func TestULSDWTICrack(t *testing.T) {
	calc := newTestCrackCalculator(t)

	result := calc.ULSDWTI(Float(2.2845), Float(71.23))
	require.NotNil(t, result)
	assert.InDelta(t, 95.949-71.23, result.Value, 1e-6)
	assert.Equal(t, "Strong", result.Signal.Label)
}

func TestCrack321GoldenValue(t *testing.T) {
	calc := newTestCrackCalculator(t)

	// Reference inputs: RBOB 2.0125 $/gal, ULSD 2.2845 $/gal, WTI 71.23 $/bbl.
	// ((2*84.525) + 95.949 - 3*71.23) / 3
	result := calc.Crack321(Float(2.0125), Float(2.2845), Float(71.23))
	require.NotNil(t, result)
	assert.InDelta(t, 17.103, result.Value, 0.001)
	assert.Equal(t, "Healthy", result.Signal.Label)
}

func TestCrack211(t *testing.T) {
	calc := newTestCrackCalculator(t)

	result := calc.Crack211(Float(2.0125), Float(2.2845), Float(71.23))
	require.NotNil(t, result)
	// (84.525 + 95.949 - 2*71.23) / 2
	assert.InDelta(t, 19.007, result.Value, 0.001)
	assert.Equal(t, "Healthy", result.Signal.Label)
}

func TestCrackMissingInputYieldsNil(t *testing.T) {
	calc := newTestCrackCalculator(t)

	assert.Nil(t, calc.GasoilBrent(nil, Float(80)))
	assert.Nil(t, calc.GasoilBrent(Float(745), nil))
	assert.Nil(t, calc.ULSDWTI(nil, Float(71.23)))
	assert.Nil(t, calc.ULSDWTI(Float(2.28), nil))
	assert.Nil(t, calc.Crack321(nil, Float(2.28), Float(71.23)))
	assert.Nil(t, calc.Crack321(Float(2.01), nil, Float(71.23)))
	assert.Nil(t, calc.Crack321(Float(2.01), Float(2.28), nil))
	assert.Nil(t, calc.Crack211(nil, nil, nil))
}

func TestCrackSignalTiers(t *testing.T) {
	calc := newTestCrackCalculator(t)

	tests := []struct {
		crack float64
		label string
	}{
		{30, "Very Strong"},
		{25, "Very Strong"}, // boundary resolves up
		{24.99, "Strong"},
		{20, "Strong"},
		{15, "Healthy"},
		{10, "Moderate"},
		{9.99, "Weak"},
		{-5, "Weak"},
	}

	for _, tt := range tests {
		// Brent priced to produce the wanted crack off a 100 $/bbl product.
		result := calc.GasoilBrent(Float(745), Float(100-tt.crack))
		require.NotNil(t, result)
		assert.Equal(t, tt.label, result.Signal.Label, "crack %v", tt.crack)
	}
}
