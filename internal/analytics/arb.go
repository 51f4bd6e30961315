package analytics

// ArbStatus is the tradability call on a landed-cost delta.
type ArbStatus string

const (
	ArbOpen     ArbStatus = "open"
	ArbMarginal ArbStatus = "marginal"
	ArbClosed   ArbStatus = "closed"
)

// ArbResult is the landed-cost delta and its classification.
type ArbResult struct {
	Value  float64   `json:"value"`
	Status ArbStatus `json:"status"`
}

// ArbCalculator computes destination price minus fully landed origin cost
// and classifies the result against a symmetric threshold band.
type ArbCalculator struct {
	threshold float64
}

// NewArbCalculator builds a calculator; the default band half-width is $2.
func NewArbCalculator(threshold float64) *ArbCalculator {
	return &ArbCalculator{threshold: threshold}
}

// Evaluate computes dest - (origin + freight + insurance + portCosts).
// Origin, destination and freight are required; insurance and port costs
// are optional and default to zero when missing. The three-way status
// partition has no gap: a value exactly on the threshold is open, exactly
// on the negative threshold is marginal.
func (c *ArbCalculator) Evaluate(originFOB, destPrice, freight, insurance, portCosts *float64) *ArbResult {
	if originFOB == nil || destPrice == nil || freight == nil {
		return nil
	}

	landed := *originFOB + *freight
	if insurance != nil {
		landed += *insurance
	}
	if portCosts != nil {
		landed += *portCosts
	}

	value := *destPrice - landed
	return &ArbResult{Value: value, Status: c.Status(value)}
}

// Status classifies an already-computed arb value.
func (c *ArbCalculator) Status(value float64) ArbStatus {
	switch {
	case value >= c.threshold:
		return ArbOpen
	case value >= -c.threshold:
		return ArbMarginal
	default:
		return ArbClosed
	}
}
