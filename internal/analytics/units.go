package analytics

// UnitConverter translates between the quoting conventions a product class
// trades in. Conversion is the only place a unit ever changes; the
// calculators downstream assume their inputs already match the formula.
//
// All converters propagate unknowns: a nil input yields a nil output,
// never a conversion of zero.
type UnitConverter struct {
	BblPerMT  float64
	GalPerBbl float64
}

// Gasoil quotes $/mt at 7.45 bbl per metric ton.
var Gasoil = UnitConverter{BblPerMT: 7.45, GalPerBbl: 42}

// Crude quotes at 7.33 bbl per metric ton.
var Crude = UnitConverter{BblPerMT: 7.33, GalPerBbl: 42}

// Float is a convenience for building optional scalars in callers and tests.
func Float(v float64) *float64 {
	return &v
}

// MTToBbl converts a $/mt price to $/bbl.
func (u UnitConverter) MTToBbl(pricePerMT *float64) *float64 {
	if pricePerMT == nil {
		return nil
	}
	return Float(*pricePerMT / u.BblPerMT)
}

// BblToMT converts a $/bbl price to $/mt. Exact inverse of MTToBbl.
func (u UnitConverter) BblToMT(pricePerBbl *float64) *float64 {
	if pricePerBbl == nil {
		return nil
	}
	return Float(*pricePerBbl * u.BblPerMT)
}

// GalToBbl converts a $/gal price to $/bbl.
func (u UnitConverter) GalToBbl(pricePerGal *float64) *float64 {
	if pricePerGal == nil {
		return nil
	}
	return Float(*pricePerGal * u.GalPerBbl)
}

// BblToGal converts a $/bbl price to $/gal. Exact inverse of GalToBbl.
func (u UnitConverter) BblToGal(pricePerBbl *float64) *float64 {
	if pricePerBbl == nil {
		return nil
	}
	return Float(*pricePerBbl / u.GalPerBbl)
}
