package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArbEvaluate(t *testing.T) {
	calc := NewArbCalculator(2)

	// Zero-cost same-price arb is exactly breakeven, and breakeven sits
	// inside the marginal band.
	result := calc.Evaluate(Float(100), Float(100), Float(0), Float(0), Float(0))
	require.NotNil(t, result)
	assert.InDelta(t, 0, result.Value, 1e-9)
	assert.Equal(t, ArbMarginal, result.Status)

	result = calc.Evaluate(Float(640), Float(655), Float(8), Float(1.5), Float(2))
	require.NotNil(t, result)
	assert.InDelta(t, 3.5, result.Value, 1e-9)
	assert.Equal(t, ArbOpen, result.Status)
}

func TestArbOptionalCostsDefaultToZero(t *testing.T) {
	calc := NewArbCalculator(2)

	result := calc.Evaluate(Float(100), Float(105), Float(2), nil, nil)
	require.NotNil(t, result)
	assert.InDelta(t, 3, result.Value, 1e-9)
	assert.Equal(t, ArbOpen, result.Status)
}

func TestArbRequiredInputs(t *testing.T) {
	calc := NewArbCalculator(2)

	assert.Nil(t, calc.Evaluate(nil, Float(100), Float(5), nil, nil))
	assert.Nil(t, calc.Evaluate(Float(100), nil, Float(5), nil, nil))
	assert.Nil(t, calc.Evaluate(Float(100), Float(105), nil, nil, nil))
}

func TestArbStatusPartitionHasNoGap(t *testing.T) {
	calc := NewArbCalculator(2)

	tests := []struct {
		value float64
		want  ArbStatus
	}{
		{5, ArbOpen},
		{2, ArbOpen}, // exactly on the threshold is open
		{1.99, ArbMarginal},
		{0, ArbMarginal},
		{-1.99, ArbMarginal},
		{-2, ArbMarginal}, // exactly on the negative threshold is marginal
		{-2.01, ArbClosed},
		{-10, ArbClosed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calc.Status(tt.value), "value %v", tt.value)
	}
}
