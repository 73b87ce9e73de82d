package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemize/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.UnitClass
	}{
		{"EA", domain.UnitClassBase},
		{"each", domain.UnitClassBase},
		{"PC", domain.UnitClassBase},
		{"UNIT", domain.UnitClassBase},
		{"PR", domain.UnitClassFixedMultiplier},
		{"PAIR", domain.UnitClassFixedMultiplier},
		{"DZ", domain.UnitClassFixedMultiplier},
		{"DOZEN", domain.UnitClassFixedMultiplier},
		{"GROSS", domain.UnitClassFixedMultiplier},
		{"CS", domain.UnitClassPack},
		{"BOX", domain.UnitClassPack},
		{"CTN", domain.UnitClassPack},
		{"SET", domain.UnitClassPack},
		{"COUNT", domain.UnitClassCount},
		{"CNT", domain.UnitClassCount},
		{"LB", domain.UnitClassMeasurable},
		{"GAL", domain.UnitClassMeasurable},
		{"SQFT", domain.UnitClassMeasurable},
		{"HR", domain.UnitClassMeasurable},
		{"", domain.UnitClassUnknown},
		{"WIDGETS", domain.UnitClassUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.raw), "raw %q", tt.raw)
	}
}

func TestNormalizeKey_CollapsesAliases(t *testing.T) {
	assert.Equal(t, "EA", NormalizeKey(" each "))
	assert.Equal(t, "PR", NormalizeKey("pair"))
	assert.Equal(t, "CS", NormalizeKey("CASE"))
	assert.Equal(t, "CT", NormalizeKey("CARTON"))
	assert.Equal(t, "GROSS", NormalizeKey("GR"))
	assert.Equal(t, "", NormalizeKey("  "))
}

func TestFixedMultiplier(t *testing.T) {
	mult, ok := FixedMultiplier("DOZEN")
	require.True(t, ok)
	assert.Equal(t, 12.0, mult)

	mult, ok = FixedMultiplier("PR")
	require.True(t, ok)
	assert.Equal(t, 2.0, mult)

	_, ok = FixedMultiplier("CS")
	assert.False(t, ok)
}

func TestNormalize_Measurable(t *testing.T) {
	n := Normalize("LB", "BULK STEEL 25/CS")
	assert.False(t, n.Convertible)
	assert.Equal(t, 0.0, n.Confidence)
	assert.Nil(t, n.Pack)
	assert.Equal(t, domain.BaseUOM, n.CanonicalUOM)
}

func TestNormalize_BaseUnit(t *testing.T) {
	n := Normalize("EA", "SAFETY GLASS WIPES")
	assert.True(t, n.Convertible)
	assert.Equal(t, 1.0, n.Confidence)
	require.NotNil(t, n.Pack)
	assert.Equal(t, 1, *n.Pack)

	// Pack evidence in the description overrides the default of 1.
	n = Normalize("EA", "WIPES 100/BX")
	require.NotNil(t, n.Pack)
	assert.Equal(t, 100, *n.Pack)
}

func TestNormalize_FixedMultiplier(t *testing.T) {
	n := Normalize("DZ", "PENCILS")
	assert.True(t, n.Convertible)
	assert.Equal(t, 0.95, n.Confidence)
	require.NotNil(t, n.Pack)
	assert.Equal(t, 12, *n.Pack)
}

func TestNormalize_PackContainer(t *testing.T) {
	n := Normalize("CS", "GLOVES 25/CS")
	assert.Equal(t, 0.85, n.Confidence)
	require.NotNil(t, n.Pack)
	assert.Equal(t, 25, *n.Pack)

	n = Normalize("CS", "GLOVES")
	assert.Equal(t, 0.5, n.Confidence)
	assert.Nil(t, n.Pack)
}

func TestNormalize_Count(t *testing.T) {
	n := Normalize("CNT", "SWABS 50/BX")
	assert.Equal(t, 0.7, n.Confidence)
	require.NotNil(t, n.Pack)
	assert.Equal(t, 50, *n.Pack)

	n = Normalize("COUNT", "SWABS")
	assert.Equal(t, 0.4, n.Confidence)
	assert.Nil(t, n.Pack)
}

func TestNormalize_UnknownToken(t *testing.T) {
	n := Normalize("", "GLOVES 25/CS")
	assert.Equal(t, 0.6, n.Confidence)
	require.NotNil(t, n.Pack)
	assert.Equal(t, 25, *n.Pack)

	n = Normalize("", "GLOVES")
	assert.Equal(t, 0.4, n.Confidence)
	assert.Nil(t, n.Pack)
}
