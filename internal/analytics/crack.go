package analytics

// CrackResult is the ephemeral output of one refining-margin formula,
// recomputed on every request and never persisted.
type CrackResult struct {
	Value        float64    `json:"value"`
	ProductPrice float64    `json:"product_price"`
	CrudePrice   float64    `json:"crude_price"`
	Signal       SignalTier `json:"signal"`
}

// CrackCalculator computes refining margins on a common $/bbl basis and
// labels them with the configured tier table. All formulas require every
// input; any missing leg yields a nil result, never a partial margin.
type CrackCalculator struct {
	gasoil  UnitConverter
	product UnitConverter
	tiers   *Classifier
}

// NewCrackCalculator builds a calculator for one product class. The gasoil
// converter handles $/mt product quotes; $/gal quotes use the shared
// gallon-per-barrel factor.
func NewCrackCalculator(gasoil UnitConverter, tiers []Threshold, floorLabel string) (*CrackCalculator, error) {
	classifier, err := NewClassifier(Descending, tiers, floorLabel)
	if err != nil {
		return nil, err
	}
	return &CrackCalculator{
		gasoil:  gasoil,
		product: UnitConverter{BblPerMT: gasoil.BblPerMT, GalPerBbl: gasoil.GalPerBbl},
		tiers:   classifier,
	}, nil
}

func (c *CrackCalculator) result(value, product, crude float64) *CrackResult {
	return &CrackResult{
		Value:        value,
		ProductPrice: product,
		CrudePrice:   crude,
		Signal:       c.tiers.Classify(value),
	}
}

// GasoilBrent computes the gasoil/Brent crack in $/bbl from a $/mt gasoil
// quote and a $/bbl Brent quote.
func (c *CrackCalculator) GasoilBrent(gasoilPerMT, brentPerBbl *float64) *CrackResult {
	gasoilBbl := c.gasoil.MTToBbl(gasoilPerMT)
	if gasoilBbl == nil || brentPerBbl == nil {
		return nil
	}
	return c.result(*gasoilBbl-*brentPerBbl, *gasoilBbl, *brentPerBbl)
}

// ULSDWTI computes the ULSD/WTI crack in $/bbl from a $/gal ULSD quote and
// a $/bbl WTI quote.
func (c *CrackCalculator) ULSDWTI(ulsdPerGal, wtiPerBbl *float64) *CrackResult {
	ulsdBbl := c.product.GalToBbl(ulsdPerGal)
	if ulsdBbl == nil || wtiPerBbl == nil {
		return nil
	}
	return c.result(*ulsdBbl-*wtiPerBbl, *ulsdBbl, *wtiPerBbl)
}

// Crack321 models 3 barrels of crude yielding 2 barrels of gasoline plus
// 1 barrel of diesel equivalent. RBOB and ULSD quote $/gal, WTI $/bbl.
func (c *CrackCalculator) Crack321(rbobPerGal, ulsdPerGal, wtiPerBbl *float64) *CrackResult {
	rbobBbl := c.product.GalToBbl(rbobPerGal)
	ulsdBbl := c.product.GalToBbl(ulsdPerGal)
	if rbobBbl == nil || ulsdBbl == nil || wtiPerBbl == nil {
		return nil
	}
	value := ((2 * *rbobBbl) + *ulsdBbl - 3**wtiPerBbl) / 3
	return c.result(value, (2**rbobBbl+*ulsdBbl)/3, *wtiPerBbl)
}

// Crack211 is the 2-1-1 variant of Crack321.
func (c *CrackCalculator) Crack211(rbobPerGal, ulsdPerGal, wtiPerBbl *float64) *CrackResult {
	rbobBbl := c.product.GalToBbl(rbobPerGal)
	ulsdBbl := c.product.GalToBbl(ulsdPerGal)
	if rbobBbl == nil || ulsdBbl == nil || wtiPerBbl == nil {
		return nil
	}
	value := (*rbobBbl + *ulsdBbl - 2**wtiPerBbl) / 2
	return c.result(value, (*rbobBbl+*ulsdBbl)/2, *wtiPerBbl)
}
