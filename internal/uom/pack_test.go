package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePack_SlashContainer(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"25/CS", 25},
		{"GLOVES 12/BX LARGE", 12},
		{"144/CASE", 144},
		{"50 / PK", 50},
		{"10/DP", 10},
		{"6/RL", 6},
		{"100/DISP", 100},
		{"100/BG", 100},
	}
	for _, tt := range tests {
		got := ParsePack(tt.text)
		require.NotNil(t, got, "text %q", tt.text)
		assert.Equal(t, tt.want, *got, "text %q", tt.text)
	}
}

func TestParsePack_PairForms(t *testing.T) {
	// One pair is two base units.
	got := ParsePack("LARGE 1/PR MEN'S GLOVE")
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)

	// Pairs per display: pairs x 2.
	got = ParsePack("100PR/DP")
	require.NotNil(t, got)
	assert.Equal(t, 200, *got)

	got = ParsePack("50 PR/BG")
	require.NotNil(t, got)
	assert.Equal(t, 100, *got)

	// Trailing pair count.
	got = ParsePack("WORK GLOVES 100 PR")
	require.NotNil(t, got)
	assert.Equal(t, 200, *got)
}

func TestParsePack_PKPrefixAndSuffix(t *testing.T) {
	got := ParsePack("PK10")
	require.NotNil(t, got)
	assert.Equal(t, 10, *got)

	got = ParsePack("PAC 24")
	require.NotNil(t, got)
	assert.Equal(t, 24, *got)

	got = ParsePack("CS/1000")
	require.NotNil(t, got)
	assert.Equal(t, 1000, *got)

	got = ParsePack("BX50")
	require.NotNil(t, got)
	assert.Equal(t, 50, *got)
}

func TestParsePack_NumEA(t *testing.T) {
	got := ParsePack("WIPES 1000 EA PER CASE")
	require.NotNil(t, got)
	assert.Equal(t, 1000, *got)
}

func TestParsePack_NoMatch(t *testing.T) {
	assert.Nil(t, ParsePack("no numbers here"))
	assert.Nil(t, ParsePack(""))
	assert.Nil(t, ParsePack("TOILET BOWL CLEANER 32 OZ BOTTLE"))
}

func TestParsePack_PriorityOrder(t *testing.T) {
	// "25/CS" must win over the trailing "10 PR" pattern.
	got := ParsePack("25/CS 10 PR")
	require.NotNil(t, got)
	assert.Equal(t, 25, *got)
}

func TestParsePack_Deterministic(t *testing.T) {
	first := ParsePack("25/CS GLOVES")
	second := ParsePack("25/CS GLOVES")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}
