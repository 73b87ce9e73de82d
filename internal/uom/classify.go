package uom

import (
	"strings"

	"itemize/internal/domain"
)

// Canonical keys for fixed-multiplier units.
const (
	keyPair  = "PR"
	keyDozen = "DZ"
	keyGross = "GROSS"
)

// aliases collapses raw unit tokens to canonical keys before classification.
var aliases = map[string]string{
	"EA": "EA", "EACH": "EA", "UNIT": "EA", "UN": "EA", "PC": "EA", "PCS": "EA", "PIECE": "EA", "ITEM": "EA",
	"PR": keyPair, "PAIR": keyPair,
	"DZ": keyDozen, "DOZ": keyDozen, "DOZEN": keyDozen,
	"GR": keyGross, "GROSS": keyGross,
	"CS": "CS", "CASE": "CS",
	"BX": "BX", "BOX": "BX",
	"PK": "PK", "PACK": "PK", "PAC": "PK",
	"CTN": "CT", "CT": "CT", "CARTON": "CT",
	"BG": "BG", "BAG": "BG",
	"RL": "RL", "ROL": "RL", "ROLL": "RL",
	"DP": "DP", "DISP": "DP", "DISPLAY": "DP",
}

var baseEquivalent = map[string]bool{
	"EA": true, "EACH": true, "UNIT": true, "UN": true, "PC": true, "PCS": true, "PIECE": true, "ITEM": true,
}

// fixedMultipliers maps canonical keys to their base-unit multiplier.
var fixedMultipliers = map[string]float64{
	keyPair:  2,
	keyDozen: 12,
	keyGross: 144,
}

var packContainers = map[string]bool{
	"PK": true, "PACK": true, "PAC": true,
	"BX": true, "BOX": true,
	"CS": true, "CASE": true,
	"CTN": true, "CT": true, "CARTON": true, // CT is ambiguous: carton vs count
	"BG": true, "BAG": true,
	"RL": true, "ROL": true, "ROLL": true,
	"DP": true, "DISP": true, "DISPLAY": true,
	"SET": true, "KIT": true,
}

var countUnits = map[string]bool{"COUNT": true, "CNT": true}

// measurable units have no fixed conversion to a countable base unit.
var measurable = map[string]bool{
	"FT": true, "IN": true, "M": true, "CM": true, "MM": true, "YD": true, "METER": true, "METRE": true,
	"SF": true, "SQFT": true, "M2": true, "SQ": true, "SQM": true,
	"LB": true, "LBS": true, "OZ": true, "KG": true, "G": true, "GRAM": true, "GM": true,
	"GAL": true, "GALLON": true, "QT": true, "PT": true, "L": true, "LITER": true, "LITRE": true, "ML": true,
	"HR": true, "HRS": true, "HOUR": true, "MIN": true, "MINUTE": true,
}

// NormalizeKey trims, upper-cases and alias-collapses a raw unit token.
// Returns "" for an empty token.
func NormalizeKey(raw string) string {
	r := strings.ToUpper(strings.TrimSpace(raw))
	if r == "" {
		return ""
	}
	if key, ok := aliases[r]; ok {
		return key
	}
	return r
}

// Classify maps a raw unit token to its UnitClass. Classes are mutually
// exclusive and checked in precedence order: measurable wins over everything
// so compound tokens like "CT" cannot be misread as carton when they alias to
// a measurable unit.
func Classify(raw string) domain.UnitClass {
	key := NormalizeKey(raw)
	switch {
	case key == "":
		return domain.UnitClassUnknown
	case measurable[key]:
		return domain.UnitClassMeasurable
	case key == domain.BaseUOM || baseEquivalent[key]:
		return domain.UnitClassBase
	case fixedMultipliers[key] != 0:
		return domain.UnitClassFixedMultiplier
	case packContainers[key]:
		return domain.UnitClassPack
	case countUnits[key]:
		return domain.UnitClassCount
	default:
		return domain.UnitClassUnknown
	}
}

// IsMeasurable reports whether the unit is dimension/weight/volume/time and
// therefore never convertible to the base unit.
func IsMeasurable(raw string) bool {
	return Classify(raw) == domain.UnitClassMeasurable
}

// FixedMultiplier returns the base-unit multiplier for fixed-multiplier units
// (PR=2, DZ=12, GROSS=144) and whether the key has one.
func FixedMultiplier(raw string) (float64, bool) {
	mult, ok := fixedMultipliers[NormalizeKey(raw)]
	return mult, ok
}

// Normalized is the outcome of classifying a unit against the base unit.
type Normalized struct {
	CanonicalUOM string
	Pack         *int
	Confidence   float64
	Convertible  bool
}

// Normalize classifies the original unit token and derives a pack quantity
// from the description or the raw token itself. Confidence reflects how much
// the declared unit plus text evidence pins down the conversion.
func Normalize(originalUOM, description string) Normalized {
	packFromText := ParsePack(description)
	if packFromText == nil {
		packFromText = ParsePack(originalUOM)
	}

	switch Classify(originalUOM) {
	case domain.UnitClassMeasurable:
		// Never convertible, price per base unit stays null.
		return Normalized{CanonicalUOM: domain.BaseUOM, Confidence: 0.0, Convertible: false}

	case domain.UnitClassBase:
		pack := packFromText
		if pack == nil {
			one := 1
			pack = &one
		}
		return Normalized{CanonicalUOM: domain.BaseUOM, Pack: pack, Confidence: 1.0, Convertible: true}

	case domain.UnitClassFixedMultiplier:
		pack := packFromText
		if pack == nil {
			mult, _ := FixedMultiplier(originalUOM)
			m := int(mult)
			pack = &m
		}
		return Normalized{CanonicalUOM: domain.BaseUOM, Pack: pack, Confidence: 0.95, Convertible: true}

	case domain.UnitClassPack:
		if packFromText != nil {
			return Normalized{CanonicalUOM: domain.BaseUOM, Pack: packFromText, Confidence: 0.85, Convertible: true}
		}
		return Normalized{CanonicalUOM: domain.BaseUOM, Confidence: 0.5, Convertible: true}

	case domain.UnitClassCount:
		if packFromText != nil {
			return Normalized{CanonicalUOM: domain.BaseUOM, Pack: packFromText, Confidence: 0.7, Convertible: true}
		}
		return Normalized{CanonicalUOM: domain.BaseUOM, Confidence: 0.4, Convertible: true}

	default:
		if packFromText != nil {
			return Normalized{CanonicalUOM: domain.BaseUOM, Pack: packFromText, Confidence: 0.6, Convertible: true}
		}
		return Normalized{CanonicalUOM: domain.BaseUOM, Confidence: 0.4, Convertible: true}
	}
}
