package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleItemLine(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("WIDGET A  10  EA  2.50  25.00")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 10.0, item.Quantity)
	assert.Equal(t, "EA", item.OriginalUOM)
	require.NotNil(t, item.UnitPrice)
	assert.InDelta(t, 2.50, *item.UnitPrice, 0.0001)
	require.NotNil(t, item.ExtendedPrice)
	assert.InDelta(t, 25.00, *item.ExtendedPrice, 0.0001)
	assert.Equal(t, "WIDGET A", item.Description)
	assert.Equal(t, 0.7, item.LineConfidence)
}

func TestParse_Idempotent(t *testing.T) {
	p := NewParser(DefaultConfig())
	text := `ABC-123  SAFETY GLOVES LARGE  24  PR  3.10  74.40
XYZ-900  EAR PLUGS 25/CS  2  CS  18.00  36.00`

	first := p.Parse(text)
	second := p.Parse(text)
	assert.Equal(t, first, second)
}

func TestParse_DeduplicatesRepeatedLines(t *testing.T) {
	p := NewParser(DefaultConfig())
	text := `WIDGET A  10  EA  2.50  25.00
WIDGET A  10  EA  2.50  25.00`

	items := p.Parse(text)
	assert.Len(t, items, 1)
}

func TestParse_SkipsHeadersAndTotals(t *testing.T) {
	p := NewParser(DefaultConfig())
	text := `INVOICE NUMBER 45821
SOLD TO: ACME CORP
QTY  UOM  PRICE
WIDGET A  10  EA  2.50  25.00
THANK YOU FOR YOUR BUSINESS
Page 1 of 1`

	items := p.Parse(text)
	require.Len(t, items, 1)
	assert.Equal(t, "WIDGET A", items[0].Description)
}

func TestParse_SkipsShortLines(t *testing.T) {
	p := NewParser(DefaultConfig())

	assert.Empty(t, p.Parse("EA 2.5"))
	assert.Empty(t, p.Parse("----------"))
}

func TestParse_PipeDelimitedColumns(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("| AB-7701 | NITRILE GLOVES | 5 | BX | 9.95 | 49.75 |")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 5.0, item.Quantity)
	assert.Equal(t, "BX", item.OriginalUOM)
	assert.Equal(t, "AB-7701", item.ManufacturerPart)
	require.NotNil(t, item.UnitPrice)
	assert.InDelta(t, 9.95, *item.UnitPrice, 0.0001)
}

func TestParse_PerHundredPricing(t *testing.T) {
	p := NewParser(DefaultConfig())
	text := `PRICE PER HUNDRED
FASTENER ZINC  200  EA  12.50  25.00`

	items := p.Parse(text)
	require.Len(t, items, 1)

	item := items[0]
	require.NotNil(t, item.UnitPrice)
	assert.InDelta(t, 0.125, *item.UnitPrice, 0.0001)
	require.NotNil(t, item.ExtendedPrice)
	assert.InDelta(t, 25.00, *item.ExtendedPrice, 0.0001)
	assert.Equal(t, 200.0, item.Quantity)
}

func TestParse_ReconcilesExtendedPrice(t *testing.T) {
	p := NewParser(DefaultConfig())

	// 10 x 2.50 is 25.00; a 90.00 total deviates by far more than 5% and is
	// replaced by the product.
	items := p.Parse("WIDGET A  10  EA  2.50  90.00")
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ExtendedPrice)
	assert.InDelta(t, 25.00, *items[0].ExtendedPrice, 0.0001)
}

func TestParse_ToleratesSmallPriceDeviation(t *testing.T) {
	p := NewParser(DefaultConfig())

	// 10 x 2.50 = 25.00; 25.90 is within 5% and kept as printed.
	items := p.Parse("WIDGET A  10  EA  2.50  25.90")
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ExtendedPrice)
	assert.InDelta(t, 25.90, *items[0].ExtendedPrice, 0.0001)
}

func TestParse_SKUDetection(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("CRX-4410  COTTON RAGS 25 LB BOX  3  BX  14.20  42.60")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "CRX-4410", item.ManufacturerPart)
	assert.NotContains(t, item.Description, "CRX-4410")
}

func TestParse_DescriptionExcludesUnitsAndNumbers(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("SHOP TOWELS BLUE  12  EA  1.10  13.20")
	require.Len(t, items, 1)

	desc := items[0].Description
	assert.NotContains(t, desc, "EA")
	assert.NotContains(t, desc, "12")
	assert.NotContains(t, desc, "13.20")
}

func TestParse_QuantityDefaultsToOne(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("SERVICE CHARGE FLAT FEE  15.00  15.00")
	require.Len(t, items, 1)
	assert.Equal(t, 1.0, items[0].Quantity)
}

func TestParse_CurrencyAndThousandsSeparators(t *testing.T) {
	p := NewParser(DefaultConfig())

	items := p.Parse("HDW-100  ANCHOR BOLTS  500  EA  $2.10  $1,050.00")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 500.0, item.Quantity)
	require.NotNil(t, item.ExtendedPrice)
	assert.InDelta(t, 1050.00, *item.ExtendedPrice, 0.0001)
}

func TestParse_FallbackPass(t *testing.T) {
	p := NewParser(DefaultConfig())

	// No decimal columns survive the structured pass on this smashed-together
	// OCR line, but the regex pass still finds two numbers.
	items := p.Parse("misc restock fee qty2 @7.50 ea total:15.00")
	require.Len(t, items, 1)
	assert.Equal(t, 0.65, items[0].LineConfidence)
}

func TestParse_EmptyInput(t *testing.T) {
	p := NewParser(DefaultConfig())

	assert.Empty(t, p.Parse(""))
	assert.Empty(t, p.Parse("\n\n\n"))
}

func TestFindUnit_PrefersLongTokens(t *testing.T) {
	assert.Equal(t, "CARTON", findUnit([]string{"CARTON"}, "", ""))
	assert.Equal(t, "DOZEN", findUnit([]string{"x"}, "TWO DOZEN EGGS", ""))
}

func TestIsSKU(t *testing.T) {
	assert.True(t, isSKU("AB-1234"))
	assert.True(t, isSKU("9X200.5"))
	assert.False(t, isSKU("1234"))
	assert.False(t, isSKU("WIDGET"))
	assert.False(t, isSKU("EA"))
	assert.False(t, isSKU("ab"))
}
