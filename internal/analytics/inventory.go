package analytics

// InventoryAnalyzer turns stock levels into demand-normalized and
// range-normalized readings plus a tier classification.
type InventoryAnalyzer struct {
	tiers *Classifier
}

// NewInventoryAnalyzer builds an analyzer over an ascending tier table.
// Boundaries are in the same unit the caller classifies in (million
// barrels for US distillate).
func NewInventoryAnalyzer(tiers []Threshold, ceilingLabel string) (*InventoryAnalyzer, error) {
	classifier, err := NewClassifier(Ascending, tiers, ceilingLabel)
	if err != nil {
		return nil, err
	}
	return &InventoryAnalyzer{tiers: classifier}, nil
}

// DaysOfSupply is stocks divided by daily demand, where demand arrives as
// a weekly figure. Zero or missing demand yields unknown; the division is
// guarded, never left to produce infinity.
func (a *InventoryAnalyzer) DaysOfSupply(stocks, weeklyDemand *float64) *float64 {
	if stocks == nil || weeklyDemand == nil || *weeklyDemand == 0 {
		return nil
	}
	return Float(*stocks / (*weeklyDemand / 7))
}

// StockChange is the period-over-period level change.
func StockChange(current, previous *float64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	return Float(*current - *previous)
}

// VsFiveYearAvgPct is the percentage deviation from a historical average.
// A zero or missing average yields unknown.
func (a *InventoryAnalyzer) VsFiveYearAvgPct(current, avg *float64) *float64 {
	if current == nil || avg == nil || *avg == 0 {
		return nil
	}
	return Float((*current - *avg) / *avg * 100)
}

// RangePositionPct places the current level inside a historical low/high
// band as a 0-100 percentage. Live data can print outside the historical
// band, so the result clamps; an unclamped reading would break range bars
// downstream. A degenerate band (low == high) yields unknown.
func RangePositionPct(current, low, high *float64) *float64 {
	if current == nil || low == nil || high == nil || *high == *low {
		return nil
	}
	pct := (*current - *low) / (*high - *low) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return Float(pct)
}

// ClassifyStocks maps a stock level to its tier.
func (a *InventoryAnalyzer) ClassifyStocks(level float64) SignalTier {
	return a.tiers.Classify(level)
}
