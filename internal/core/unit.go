package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnitCategory classifies a free-text unit string into one of three measurement
// families. Anything the resolver cannot place in mass or volume degrades to count.
type UnitCategory string

const (
	UnitMass   UnitCategory = "mass"
	UnitVolume UnitCategory = "volume"
	UnitCount  UnitCategory = "count"
)

// UnitInfo is the resolved form of a unit string: its category and the
// multiplier that converts one unit into the base sub-unit of the category
// (grams for mass, milliliters for volume, 1 for count).
type UnitInfo struct {
	Category   UnitCategory
	Multiplier decimal.Decimal
}

var (
	multiplierOne      = decimal.NewFromInt(1)
	multiplierThousand = decimal.NewFromInt(1000)
)

// massUnits maps known mass tokens to their gram multiplier.
var massUnits = map[string]decimal.Decimal{
	"kg":        multiplierThousand,
	"kilogram":  multiplierThousand,
	"kilograms": multiplierThousand,
	"kilo":      multiplierThousand,
	"g":         multiplierOne,
	"gram":      multiplierOne,
	"grams":     multiplierOne,
}

// volumeUnits maps known volume tokens to their milliliter multiplier.
var volumeUnits = map[string]decimal.Decimal{
	"l":           multiplierThousand,
	"liter":       multiplierThousand,
	"litre":       multiplierThousand,
	"liters":      multiplierThousand,
	"litres":      multiplierThousand,
	"ml":          multiplierOne,
	"milliliter":  multiplierOne,
	"millilitre":  multiplierOne,
	"milliliters": multiplierOne,
	"millilitres": multiplierOne,
}

// cleanUnit lower-cases the raw string and strips digits, separators, and
// whitespace so that sloppy entries like "1 Kg" or "kg." still resolve.
func cleanUnit(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == ',':
		case r == ' ' || r == '\t':
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return lowered
	}
	return b.String()
}

// ResolveUnit maps a free-text unit string to its category and base-unit
// multiplier. Exact dictionary matches win; otherwise suffix/substring
// heuristics are tried; anything still unrecognized (including an empty
// string) is treated as a count unit with multiplier 1.
//
// This is a heuristic, not a validated unit system. Ambiguous or
// foreign-language units silently degrade to count.
func ResolveUnit(raw string) UnitInfo {
	unit := cleanUnit(raw)
	if unit == "" {
		return UnitInfo{Category: UnitCount, Multiplier: multiplierOne}
	}

	if m, ok := massUnits[unit]; ok {
		return UnitInfo{Category: UnitMass, Multiplier: m}
	}
	if m, ok := volumeUnits[unit]; ok {
		return UnitInfo{Category: UnitVolume, Multiplier: m}
	}

	switch {
	case strings.HasSuffix(unit, "kg"):
		return UnitInfo{Category: UnitMass, Multiplier: multiplierThousand}
	case strings.HasSuffix(unit, "g") || strings.Contains(unit, "gram"):
		return UnitInfo{Category: UnitMass, Multiplier: multiplierOne}
	case strings.Contains(unit, "liter") || strings.Contains(unit, "litre") || unit == "l":
		return UnitInfo{Category: UnitVolume, Multiplier: multiplierThousand}
	case unit == "ml" || strings.Contains(unit, "millil"):
		return UnitInfo{Category: UnitVolume, Multiplier: multiplierOne}
	}

	return UnitInfo{Category: UnitCount, Multiplier: multiplierOne}
}

// NormalizePurchaseQuantity converts a purchase quantity expressed in
// purchaseUnit into the ingredient's stock-tracking baseUnit. It returns nil
// when no usable quantity was given (absent, zero, or negative).
//
// When the two units belong to different categories (bought by count, tracked
// by mass) no conversion is possible; the raw quantity is returned unchanged
// as a best-effort fallback rather than an error.
func NormalizePurchaseQuantity(quantity *decimal.Decimal, purchaseUnit, baseUnit string) *decimal.Decimal {
	if quantity == nil || !quantity.IsPositive() {
		return nil
	}

	base := ResolveUnit(baseUnit)
	purchase := ResolveUnit(purchaseUnit)

	if base.Category != purchase.Category {
		q := *quantity
		return &q
	}
	if base.Multiplier.Equal(purchase.Multiplier) {
		q := *quantity
		return &q
	}

	normalized := quantity.Mul(purchase.Multiplier).Div(base.Multiplier)
	return &normalized
}
