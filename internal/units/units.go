// Package units normalizes measured activity quantities to the units the
// emission factors are expressed in: tonnes for mass, MWh for electricity.
package units

import (
	"math"
	"strings"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNegativeQuantity indicates a negative physical quantity.
	ErrNegativeQuantity = constError("negative quantity")

	// ErrNotFinite indicates an Inf or NaN input or result.
	ErrNotFinite = constError("quantity is not a finite number")
)

// Conversion constants.
const (
	// KgToTonnes converts kilograms to metric tonnes.
	KgToTonnes = 0.001

	// LitreToTonnes converts litres of liquid fuel to tonnes using an
	// approximate diesel density. This is a heuristic carried over from
	// established reporting practice, not a measured value.
	LitreToTonnes = 0.00084

	// KWhToMWh converts kilowatt-hours to megawatt-hours.
	KWhToMWh = 0.001
)

// massFactor returns the conversion factor to tonnes for the given unit.
// Units without a known mass conversion (m3, pieces) keep their native scale,
// since their emission factors are expressed per native unit.
func massFactor(unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kg":
		return KgToTonnes
	case "l", "litre", "liter":
		return LitreToTonnes
	default:
		return 1.0
	}
}

// ToTonnes converts a mass quantity to tonnes.
//
// Recognized units: kg, t, l/litre/liter. Unrecognized units (m3 in
// particular) pass through unchanged because their factors are per native
// unit. Returns ErrNegativeQuantity for negative values and ErrNotFinite for
// Inf/NaN inputs or results.
func ToTonnes(quantity float64, unit string) (float64, error) {
	if math.IsInf(quantity, 0) || math.IsNaN(quantity) {
		return 0, ErrNotFinite
	}
	if quantity < 0 {
		return 0, ErrNegativeQuantity
	}
	result := quantity * massFactor(unit)
	if math.IsInf(result, 0) {
		return 0, ErrNotFinite
	}
	return result, nil
}

// ToMWh converts an electricity quantity to megawatt-hours. kWh is divided by
// 1000, MWh passes through, unknown units are treated as kWh since that is
// how meters report.
func ToMWh(quantity float64, unit string) (float64, error) {
	if math.IsInf(quantity, 0) || math.IsNaN(quantity) {
		return 0, ErrNotFinite
	}
	if quantity < 0 {
		return 0, ErrNegativeQuantity
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mwh":
		return quantity, nil
	default:
		return quantity * KWhToMWh, nil
	}
}
