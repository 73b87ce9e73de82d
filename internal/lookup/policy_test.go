package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestShouldResolve(t *testing.T) {
	tests := []struct {
		name        string
		originalUOM string
		pack        *int
		description string
		want        bool
	}{
		{"measurable escalates directly", "LB", nil, "COTTON RAGS", false},
		{"measurable with pack pattern", "GAL", nil, "SOLVENT 4/CS", false},
		{"pack already known", "CS", intPtr(25), "GLOVES 25/CS", false},
		{"clean base unit", "EA", nil, "WIDGET A", false},
		{"base unit with slash in description", "EA", nil, "GLOVES 24/CS", true},
		{"base unit with PK in description", "EA", nil, "TAPE PK12", true},
		{"base unit with PER in description", "EA", nil, "PRICE PER CARTON", true},
		{"pair without slash", "PR", nil, "SAFETY GLOVES", false},
		{"dozen never resolves", "DZ", nil, "EGGS", false},
		{"dozen spelled out", "DOZEN", nil, "EGGS", false},
		{"empty unit", "", nil, "MYSTERY ITEM", true},
		{"container without pack", "CS", nil, "GLOVES", true},
		{"box without pack", "BX", nil, "NITRILE GLOVES", true},
		{"count without pack", "CNT", nil, "ZIP TIES", true},
		{"unknown unit with slash pattern", "ZZZ", nil, "WASHERS 50/", true},
		{"unknown unit with PR pattern", "ZZZ", nil, "LACES 12 PR", true},
		{"unknown unit clean description", "ZZZ", nil, "WASHERS", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldResolve(tt.originalUOM, tt.pack, tt.description))
		})
	}
}
