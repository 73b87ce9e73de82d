package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemize/internal/domain"
	"itemize/internal/lookup"
	"itemize/internal/port"
	"itemize/internal/table"
)

type stubExtractor struct {
	out   *port.ExtractOutput
	err   error
	calls int
	last  port.ExtractInput
}

func (s *stubExtractor) Extract(_ context.Context, in port.ExtractInput) (*port.ExtractOutput, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type stubCapability struct {
	results map[int]domain.LookupResult
	calls   int
}

func (s *stubCapability) ResolveBatch(_ context.Context, reqs []port.LookupRequest, _ string) (map[int]domain.LookupResult, error) {
	s.calls++
	out := make(map[int]domain.LookupResult)
	for _, req := range reqs {
		if res, ok := s.results[req.Index]; ok {
			out[req.Index] = res
		}
	}
	return out, nil
}

func newTablePipeline(opts Options) *Pipeline {
	return New(nil, nil, nil, table.NewParser(table.DefaultConfig()), nil, opts)
}

func fptr(v float64) *float64 { return &v }

func TestProcessText_GenericStage(t *testing.T) {
	p := newTablePipeline(Options{})

	res := p.ProcessText(context.Background(), "inv.txt", "WIDGET A  10  EA  2.50  25.00")

	require.Len(t, res.LineItems, 1)
	assert.Equal(t, "generic", res.RawMetadata["parser"])
	assert.Equal(t, domain.UnknownSupplier, res.SupplierName)

	line := res.LineItems[0]
	assert.Equal(t, domain.UnknownSupplier, line.SupplierName)
	assert.Equal(t, domain.BaseUOM, line.CanonicalBaseUOM)
	require.NotNil(t, line.PricePerBaseUnit)
	assert.InDelta(t, 2.50, *line.PricePerBaseUnit, 1e-9)
	assert.InDelta(t, 0.7, line.ConfidenceScore, 1e-9)
	assert.False(t, line.EscalationFlag)
}

func TestProcessText_PrimaryStageWins(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Uline",
		Items: []domain.RawLineItem{{
			Description:    "SAFETY GLASS WIPES",
			Quantity:       4,
			OriginalUOM:    "EA",
			ExtendedPrice:  fptr(10.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "not a table line at all")

	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "llm_primary", res.RawMetadata["parser"])
	assert.Equal(t, "Uline", res.SupplierName)
	require.Len(t, res.LineItems, 1)
	assert.InDelta(t, 0.85, res.LineItems[0].ConfidenceScore, 1e-9)
}

func TestProcessText_PrimaryEmptyResetsSupplierToHint(t *testing.T) {
	// The primary stage names a supplier but extracts nothing; the generic
	// stage result must carry the detection hint, not the primary's name.
	primary := &stubExtractor{out: &port.ExtractOutput{SupplierName: "Acme Industrial", Items: nil}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "WIDGET A  10  EA  2.50  25.00")

	assert.Equal(t, "generic", res.RawMetadata["parser"])
	assert.Equal(t, domain.UnknownSupplier, res.SupplierName)
}

func TestProcessText_PrimaryErrorFallsThrough(t *testing.T) {
	primary := &stubExtractor{err: errors.New("api down")}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "WIDGET A  10  EA  2.50  25.00")

	assert.Equal(t, "generic", res.RawMetadata["parser"])
	require.Len(t, res.LineItems, 1)
}

func TestProcessText_FallbackStage(t *testing.T) {
	fallback := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Fastenal Company",
		Items: []domain.RawLineItem{{
			Description:    "HEX NUT",
			Quantity:       1,
			OriginalUOM:    "EA",
			ExtendedPrice:  fptr(3.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, nil, fallback, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMFallback: true})

	res := p.ProcessText(context.Background(), "inv.txt", "nothing tabular here")

	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "llm_fallback", res.RawMetadata["parser"])
	assert.Equal(t, "Fastenal Company", res.SupplierName)
	require.Len(t, res.LineItems, 1)
}

func TestProcessText_FallbackEmptyKeepsGenericStrategy(t *testing.T) {
	fallback := &stubExtractor{out: &port.ExtractOutput{SupplierName: "Someone", Items: nil}}
	p := New(nil, nil, fallback, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMFallback: true})

	res := p.ProcessText(context.Background(), "inv.txt", "nothing tabular here")

	assert.Empty(t, res.LineItems)
	assert.Equal(t, "generic", res.RawMetadata["parser"])
}

func TestProcessText_MeasurableLineEscalates(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Grainger",
		Items: []domain.RawLineItem{{
			Description:    "STEEL ROD 3FT",
			Quantity:       6,
			OriginalUOM:    "FT",
			ExtendedPrice:  fptr(18.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 1)
	line := res.LineItems[0]
	assert.True(t, line.EscalationFlag)
	assert.Nil(t, line.PricePerBaseUnit)
	assert.Equal(t, domain.BaseUOM, line.CanonicalBaseUOM)
	assert.InDelta(t, 0.3, line.ConfidenceScore, 1e-9)
}

func TestProcessText_ContainerWithoutPackEscalates(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Grainger",
		Items: []domain.RawLineItem{{
			Description:    "NITRILE GLOVES LARGE",
			Quantity:       2,
			OriginalUOM:    "CS",
			ExtendedPrice:  fptr(50.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 1)
	line := res.LineItems[0]
	assert.True(t, line.EscalationFlag)
	assert.Nil(t, line.PricePerBaseUnit)
	assert.Nil(t, line.DetectedPackQuantity)
}

func TestProcessText_PackFromDescriptionConverts(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Grainger",
		Items: []domain.RawLineItem{{
			Description:    "NITRILE GLOVES 100/BX",
			Quantity:       2,
			OriginalUOM:    "BX",
			ExtendedPrice:  fptr(40.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 1)
	line := res.LineItems[0]
	require.NotNil(t, line.DetectedPackQuantity)
	assert.Equal(t, 100, *line.DetectedPackQuantity)
	require.NotNil(t, line.PricePerBaseUnit)
	assert.InDelta(t, 0.20, *line.PricePerBaseUnit, 1e-9)
	// 0.85 pack confidence x 0.85 line confidence = 0.7225, rounded to 0.72.
	assert.InDelta(t, 0.72, line.ConfidenceScore, 1e-9)
	assert.False(t, line.EscalationFlag)
}

func TestProcessText_LookupResolvesAmbiguousUnit(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Magid Glove & Safety",
		Items: []domain.RawLineItem{{
			Description:    "COTTON GLOVES",
			Quantity:       2,
			OriginalUOM:    "CS",
			ExtendedPrice:  fptr(48.00),
			LineConfidence: 0.85,
		}},
	}}
	capability := &stubCapability{results: map[int]domain.LookupResult{
		0: {CanonicalUOM: domain.BaseUOM, DetectedPackQuantity: iptr(12), Confidence: 0.8},
	}}
	resolver := lookup.NewResolver(capability, nil)
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), resolver, Options{UseLLMPrimary: true, UseLookup: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	assert.Equal(t, 1, capability.calls)
	require.Len(t, res.LineItems, 1)
	line := res.LineItems[0]
	require.NotNil(t, line.DetectedPackQuantity)
	assert.Equal(t, 12, *line.DetectedPackQuantity)
	require.NotNil(t, line.PricePerBaseUnit)
	assert.InDelta(t, 2.00, *line.PricePerBaseUnit, 1e-9)
	// 0.8 lookup confidence x 0.85 line confidence = 0.68.
	assert.InDelta(t, 0.68, line.ConfidenceScore, 1e-9)
	assert.False(t, line.EscalationFlag)
}

func TestProcessText_LookupDisabledSkipsResolver(t *testing.T) {
	capability := &stubCapability{}
	resolver := lookup.NewResolver(capability, nil)
	p := New(nil, nil, nil, table.NewParser(table.DefaultConfig()), resolver, Options{})

	p.ProcessText(context.Background(), "inv.txt", "WIDGET A  10  CS  2.50  25.00")

	assert.Equal(t, 0, capability.calls)
}

func TestProcessText_ConfidenceFloorForcesEscalation(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Uline",
		Items: []domain.RawLineItem{{
			Description:    "MYSTERY ITEM",
			Quantity:       1,
			OriginalUOM:    "ZZ",
			ExtendedPrice:  fptr(5.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 1)
	line := res.LineItems[0]
	// Unknown unit without pack evidence: 0.4 x 0.85 = 0.34, under the floor.
	assert.InDelta(t, 0.34, line.ConfidenceScore, 1e-9)
	assert.True(t, line.EscalationFlag)
}

func TestProcessText_PriceRounding(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Uline",
		Items: []domain.RawLineItem{{
			Description:    "TAPE ROLL",
			Quantity:       3,
			OriginalUOM:    "EA",
			ExtendedPrice:  fptr(10.00),
			LineConfidence: 0.85,
		}},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 1)
	require.NotNil(t, res.LineItems[0].PricePerBaseUnit)
	assert.InDelta(t, 3.3333, *res.LineItems[0].PricePerBaseUnit, 1e-9)
}

func TestProcessText_ManufacturerPartNumber(t *testing.T) {
	primary := &stubExtractor{out: &port.ExtractOutput{
		SupplierName: "Uline",
		Items: []domain.RawLineItem{
			{Description: "GLOVES", ManufacturerPart: "35-C410/L", Quantity: 1, OriginalUOM: "EA", ExtendedPrice: fptr(2.00), LineConfidence: 0.85},
			{Description: "WIPES", Quantity: 1, OriginalUOM: "EA", ExtendedPrice: fptr(2.00), LineConfidence: 0.85},
		},
	}}
	p := New(nil, primary, nil, table.NewParser(table.DefaultConfig()), nil, Options{UseLLMPrimary: true})

	res := p.ProcessText(context.Background(), "inv.txt", "irrelevant")

	require.Len(t, res.LineItems, 2)
	require.NotNil(t, res.LineItems[0].ManufacturerPartNumber)
	assert.Equal(t, "35-C410/L", *res.LineItems[0].ManufacturerPartNumber)
	assert.Nil(t, res.LineItems[1].ManufacturerPartNumber)
}

func iptr(n int) *int { return &n }
