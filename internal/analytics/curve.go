package analytics

// CurveStructure classifies the shape of a forward curve from a near/far
// timespread.
type CurveStructure string

const (
	Backwardation CurveStructure = "backwardation"
	Contango      CurveStructure = "contango"
	FlatCurve     CurveStructure = "flat"
)

// CurveResult pairs a timespread with its classification.
type CurveResult struct {
	Spread    float64        `json:"spread"`
	Structure CurveStructure `json:"structure"`
}

// CurveClassifier compares near- and far-dated contract prices in the same
// unit. The flat band between contangoMax and backwardationMin is
// inclusive on both edges: a spread sitting exactly on either threshold is
// flat, not a structure call.
type CurveClassifier struct {
	backwardationMin float64
	contangoMax      float64
}

// NewCurveClassifier builds a classifier; defaults put the flat band at
// plus or minus one dollar.
func NewCurveClassifier(backwardationMin, contangoMax float64) *CurveClassifier {
	return &CurveClassifier{
		backwardationMin: backwardationMin,
		contangoMax:      contangoMax,
	}
}

// Timespread returns m1 - m2, or nil when either leg is missing.
func (c *CurveClassifier) Timespread(m1, m2 *float64) *float64 {
	if m1 == nil || m2 == nil {
		return nil
	}
	return Float(*m1 - *m2)
}

// Structure classifies a spread already computed in the contract's unit.
func (c *CurveClassifier) Structure(spread float64) CurveStructure {
	switch {
	case spread > c.backwardationMin:
		return Backwardation
	case spread < c.contangoMax:
		return Contango
	default:
		return FlatCurve
	}
}

// Classify computes and classifies the spread between two contract prices.
func (c *CurveClassifier) Classify(m1, m2 *float64) *CurveResult {
	spread := c.Timespread(m1, m2)
	if spread == nil {
		return nil
	}
	return &CurveResult{Spread: *spread, Structure: c.Structure(*spread)}
}

// RollYield annualizes a spread over the days remaining to expiry.
// Undefined when the spread is unknown or no time remains.
func (c *CurveClassifier) RollYield(spread *float64, daysToExpiry int) *float64 {
	if spread == nil || daysToExpiry <= 0 {
		return nil
	}
	return Float(*spread / float64(daysToExpiry) * 365)
}
