package extract

import (
	"math"
	"strconv"
	"strings"
)

// UnitKind classifies a raw unit token
type UnitKind string

const (
	UnitTonne        UnitKind = "tonne"        // t, ton, tons, tonne, tonnes
	UnitKilogram     UnitKind = "kilogram"     // kg
	UnitUnrecognized UnitKind = "unrecognized" // Converted as tonnes
)

// tonnesToKg is the canonical conversion factor for tonne-like units
const tonnesToKg = 1000

// ClassifyUnit reports how a raw unit token is interpreted
func ClassifyUnit(unit string) UnitKind {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "t", "ton", "tons", "tonne", "tonnes":
		return UnitTonne
	case "kg":
		return UnitKilogram
	default:
		return UnitUnrecognized
	}
}

// ToCanonicalMass converts a quantity in the given unit to kilograms.
// Unrecognized units are treated as tonnes; use ClassifyUnit to detect them.
func ToCanonicalMass(quantity float64, unit string) float64 {
	if ClassifyUnit(unit) == UnitKilogram {
		return quantity
	}
	return quantity * tonnesToKg
}

// ParseQuantity parses a decimal number accepting either '.' or ',' as separator
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Count(s, ",")+strings.Count(s, ".") > 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
