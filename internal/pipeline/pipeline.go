package pipeline

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"

	"itemize/internal/domain"
	"itemize/internal/lookup"
	"itemize/internal/port"
	"itemize/internal/supplier"
	"itemize/internal/table"
	"itemize/internal/uom"
)

const defaultMinConfidence = 0.6

// Options toggles the optional stages of invoice processing. MinConfidence is
// the floor below which a line is always escalated regardless of stage.
type Options struct {
	UseLLMPrimary  bool
	UseLLMFallback bool
	UseLookup      bool
	MinConfidence  float64
}

// Pipeline turns one raw invoice document into a structured result: text
// extraction, supplier detection, line extraction in strict stage order
// (primary LLM, generic table parser, fallback LLM), batched unit resolution,
// then per-line normalization and pricing.
type Pipeline struct {
	source   port.TextSource
	primary  port.InvoiceExtractor
	fallback port.InvoiceExtractor
	tables   *table.Parser
	resolver *lookup.Resolver
	opts     Options
}

// New creates a Pipeline. primary, fallback and resolver may be nil; the
// corresponding stages are skipped.
func New(source port.TextSource, primary, fallback port.InvoiceExtractor, tables *table.Parser, resolver *lookup.Resolver, opts Options) *Pipeline {
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = defaultMinConfidence
	}
	return &Pipeline{
		source:   source,
		primary:  primary,
		fallback: fallback,
		tables:   tables,
		resolver: resolver,
		opts:     opts,
	}
}

// Process extracts text from the document at path and runs the full pipeline.
func (p *Pipeline) Process(ctx context.Context, path string) (*domain.InvoiceResult, error) {
	text, err := p.source.ExtractText(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", filepath.Base(path), err)
	}
	return p.ProcessText(ctx, filepath.Base(path), text), nil
}

// ProcessText runs the pipeline on already-extracted text. Extraction stages
// run in strict priority order and a later stage runs only when every earlier
// one produced zero items. Stage errors degrade to the next stage, never fail
// the document.
func (p *Pipeline) ProcessText(ctx context.Context, sourceName, text string) *domain.InvoiceResult {
	hint := supplier.Detect(text)

	supplierName := hint
	strategy := domain.StrategyLLMPrimary
	var items []domain.RawLineItem

	if p.opts.UseLLMPrimary && p.primary != nil {
		out, err := p.primary.Extract(ctx, port.ExtractInput{Text: text, SupplierHint: hint})
		if err != nil {
			log.Printf("pipeline.Pipeline: primary extraction failed for %s: %v", sourceName, err)
		} else {
			supplierName = out.SupplierName
			items = out.Items
		}
	}

	if len(items) == 0 {
		items = p.tables.Parse(text)
		strategy = domain.StrategyGeneric
		// The generic parser has no notion of supplier, so the detection hint
		// stands even when the primary stage suggested a different name.
		supplierName = hint

		if len(items) == 0 && p.opts.UseLLMFallback && p.fallback != nil {
			out, err := p.fallback.Extract(ctx, port.ExtractInput{Text: text, SupplierHint: supplierName})
			if err != nil {
				log.Printf("pipeline.Pipeline: fallback extraction failed for %s: %v", sourceName, err)
			} else {
				supplierName = out.SupplierName
				if len(out.Items) > 0 {
					items = out.Items
					strategy = domain.StrategyLLMFallback
				}
			}
		}
	}

	if len(items) == 0 {
		strategy = domain.StrategyNone
	}

	var lookupResults map[int]domain.LookupResult
	if p.opts.UseLookup && p.resolver != nil {
		lookupResults = p.resolver.Resolve(ctx, items, supplierName)
	}

	outputs := make([]domain.LineItemOutput, 0, len(items))
	for i := range items {
		var res *domain.LookupResult
		if r, ok := lookupResults[i]; ok {
			res = &r
		}
		outputs = append(outputs, p.finalizeLine(&items[i], supplierName, res))
	}

	return &domain.InvoiceResult{
		SourceFile:   sourceName,
		SupplierName: supplierName,
		LineItems:    outputs,
		RawMetadata:  map[string]string{"parser": string(strategy)},
	}
}

// finalizeLine normalizes one extracted line into its output record.
// Measurable units short-circuit everything else; resolved lines trust the
// resolver's pack; the rest go through local classification.
func (p *Pipeline) finalizeLine(raw *domain.RawLineItem, supplierName string, res *domain.LookupResult) domain.LineItemOutput {
	desc := raw.Description
	packFromDesc := uom.ParsePack(desc)

	var (
		canonical string
		pack      *int
		conf      float64
		escalate  bool
		price     *float64
	)

	switch {
	case uom.IsMeasurable(raw.OriginalUOM):
		canonical = domain.BaseUOM
		conf = 0.3
		escalate = true

	case res != nil:
		canonical = res.CanonicalUOM
		pack = res.DetectedPackQuantity
		conf = res.Confidence * raw.LineConfidence
		escalate = res.Escalation
		c := uom.PricePerBaseUnit(raw.ExtendedPrice, raw.Quantity, raw.OriginalUOM, pack, true)
		price = c.Price
		if c.Unsafe {
			escalate = true
		}

	default:
		n := uom.Normalize(raw.OriginalUOM, desc)
		canonical = n.CanonicalUOM
		pack = n.Pack
		if pack == nil && packFromDesc != nil {
			pack = packFromDesc
		}
		conf = n.Confidence * raw.LineConfidence
		if canonical == domain.BaseUOM && pack == nil && uom.Classify(raw.OriginalUOM) == domain.UnitClassPack {
			escalate = true
		}
		c := uom.PricePerBaseUnit(raw.ExtendedPrice, raw.Quantity, raw.OriginalUOM, pack, n.Convertible)
		price = c.Price
		if c.Unsafe {
			escalate = true
		}
	}

	if conf < p.opts.MinConfidence {
		escalate = true
	}

	if canonical == "" {
		canonical = domain.BaseUOM
	}

	out := domain.LineItemOutput{
		SupplierName:         supplierName,
		ItemDescription:      desc,
		OriginalUOM:          optionalString(raw.OriginalUOM),
		DetectedPackQuantity: pack,
		CanonicalBaseUOM:     canonical,
		PricePerBaseUnit:     round4(price),
		ConfidenceScore:      round2(math.Min(1.0, conf)),
		EscalationFlag:       escalate,
	}
	if mpn := raw.PartNumber(); mpn != "" {
		out.ManufacturerPartNumber = &mpn
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func round4(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10000) / 10000
	return &r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
