package lookup

import (
	"regexp"
	"strings"

	"itemize/internal/domain"
	"itemize/internal/uom"
)

var (
	slashPack = regexp.MustCompile(`\d+\s*/\s*`)
	packHint  = regexp.MustCompile(`(?i)PK\s*\d+|\d+\s*PR`)
)

// ShouldResolve decides whether a line item needs auxiliary unit resolution.
// Measurable units never resolve: they have no countable conversion and are
// escalated directly. A known positive pack quantity, an unambiguous base
// unit, a pair or dozen unit with a clean description, all settle the line
// without resolution. Resolution triggers on a missing unit token, on a
// container or count unit without a pack, and on descriptions carrying pack
// patterns the declared unit class did not account for.
func ShouldResolve(originalUOM string, pack *int, description string) bool {
	if uom.IsMeasurable(originalUOM) {
		return false
	}

	key := uom.NormalizeKey(originalUOM)
	desc := strings.TrimSpace(description)
	upper := strings.ToUpper(desc)

	if pack != nil && *pack > 0 {
		return false
	}
	class := uom.Classify(originalUOM)
	if class == domain.UnitClassBase &&
		!strings.Contains(upper, "/") && !strings.Contains(upper, "PK") && !strings.Contains(upper, "PER") {
		return false
	}
	if key == "PR" && pack == nil && !strings.Contains(desc, "/") {
		return false
	}
	if key == "DZ" {
		return false
	}

	if key == "" {
		return true
	}
	if class == domain.UnitClassPack || class == domain.UnitClassCount {
		return pack == nil
	}
	if slashPack.MatchString(desc) || packHint.MatchString(desc) {
		return pack == nil
	}

	return false
}
