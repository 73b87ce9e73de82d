package uom

import "itemize/internal/domain"

// Conversion is the result of computing a price per base unit.
// Price is nil when the unit is not convertible or inputs are invalid.
// Unsafe marks conversions that had to assume an unknown pack quantity.
type Conversion struct {
	Price  *float64
	Unsafe bool
}

// PricePerBaseUnit converts an extended (line total) price into a price per
// base unit. Total base units are quantity x pack when a pack is known,
// quantity x fixed multiplier for fixed-multiplier units, else quantity
// unchanged. Pack/container and count units without a known pack cannot be
// converted safely and are flagged unsafe.
func PricePerBaseUnit(extendedPrice *float64, quantity float64, originalUOM string, pack *int, convertible bool) Conversion {
	if !convertible || IsMeasurable(originalUOM) || extendedPrice == nil || *extendedPrice <= 0 || quantity <= 0 {
		return Conversion{Unsafe: true}
	}

	baseUnits := quantity

	switch {
	case pack != nil && *pack > 0:
		baseUnits = quantity * float64(*pack)
	default:
		switch Classify(originalUOM) {
		case domain.UnitClassFixedMultiplier:
			mult, _ := FixedMultiplier(originalUOM)
			baseUnits = quantity * mult
		case domain.UnitClassPack, domain.UnitClassCount:
			// A container price without a known pack cannot be attributed to
			// base units. Dividing by quantity would price the container, not
			// the unit, so no price is produced.
			return Conversion{Unsafe: true}
		default:
			// Base-equivalent or unknown units: quantity already counts base units.
		}
	}

	if baseUnits <= 0 {
		return Conversion{Unsafe: true}
	}

	price := *extendedPrice / baseUnits
	return Conversion{Price: &price}
}
