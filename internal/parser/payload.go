package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"itemize/internal/domain"
	"itemize/internal/port"
)

// llmLineConfidence is the parser confidence assigned to LLM-extracted items.
const llmLineConfidence = 0.85

// flexFloat accepts JSON numbers, numeric strings and null. Models sometimes
// quote numbers or emit junk; junk is treated as unset rather than failing
// the whole document.
type flexFloat struct {
	value float64
	set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	f.value = v
	f.set = true
	return nil
}

type lineItemPayload struct {
	ItemDescription  string    `json:"item_description"`
	Description      string    `json:"description"`
	ManufacturerPart *string   `json:"manufacturer_part_number"`
	Quantity         flexFloat `json:"quantity"`
	OriginalUOM      *string   `json:"original_uom"`
	UnitPrice        flexFloat `json:"unit_price"`
	ExtendedPrice    flexFloat `json:"extended_price"`
}

type extractionPayload struct {
	SupplierName string            `json:"supplier_name"`
	LineItems    []lineItemPayload `json:"line_items"`
}

// DecodeExtraction turns a model's raw text answer into an ExtractOutput.
// Items with no description are dropped, placeholder part numbers are
// normalized to empty, and a missing unit or extended price is back-filled
// from the other when the quantity allows it.
func DecodeExtraction(text, supplierHint, model string) (*port.ExtractOutput, error) {
	raw := []byte(StripCodeFences(text))
	if err := ValidateExtraction(raw); err != nil {
		return nil, fmt.Errorf("extraction payload: %w", err)
	}
	var payload extractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding extraction payload: %w", err)
	}

	supplier := strings.TrimSpace(payload.SupplierName)
	switch strings.ToLower(supplier) {
	case "", "unknown", "null", "n/a":
		supplier = supplierHint
	}
	if supplier == "" {
		supplier = domain.UnknownSupplier
	}

	var items []domain.RawLineItem
	for _, li := range payload.LineItems {
		desc := strings.TrimSpace(li.ItemDescription)
		if desc == "" {
			desc = strings.TrimSpace(li.Description)
		}
		if desc == "" {
			continue
		}

		qty := 1.0
		if li.Quantity.set {
			qty = li.Quantity.value
		}
		var unit, ext *float64
		if li.UnitPrice.set {
			v := li.UnitPrice.value
			unit = &v
		}
		if li.ExtendedPrice.set {
			v := li.ExtendedPrice.value
			ext = &v
		}
		if ext == nil && unit != nil && qty != 0 {
			v := *unit * qty
			ext = &v
		} else if unit == nil && ext != nil && qty != 0 {
			v := *ext / qty
			unit = &v
		}

		mpn := ""
		if li.ManufacturerPart != nil {
			m := strings.TrimSpace(*li.ManufacturerPart)
			if l := strings.ToLower(m); l != "null" && l != "n/a" {
				mpn = m
			}
		}
		uom := ""
		if li.OriginalUOM != nil {
			uom = strings.TrimSpace(*li.OriginalUOM)
		}

		items = append(items, domain.RawLineItem{
			Description:      desc,
			ItemNumber:       mpn,
			ManufacturerPart: mpn,
			Quantity:         qty,
			OriginalUOM:      uom,
			UnitPrice:        unit,
			ExtendedPrice:    ext,
			LineConfidence:   llmLineConfidence,
		})
	}

	return &port.ExtractOutput{
		SupplierName: supplier,
		Items:        items,
		ModelUsed:    model,
	}, nil
}

type lookupItemPayload struct {
	CanonicalUOM         string    `json:"canonical_uom"`
	DetectedPackQuantity flexFloat `json:"detected_pack_quantity"`
	Confidence           flexFloat `json:"confidence"`
	Escalation           *bool     `json:"escalation"`
}

// DecodeLookupBatch turns a model's array answer into per-index results. The
// array is positional: element i answers reqs[i]. Every requested index gets
// an entry; a short or partially unusable array degrades the unanswered
// indexes instead of omitting them.
func DecodeLookupBatch(text string, reqs []port.LookupRequest) (map[int]domain.LookupResult, error) {
	raw := []byte(StripCodeFences(text))
	if err := ValidateLookupBatch(raw); err != nil {
		return nil, fmt.Errorf("lookup payload: %w", err)
	}
	var payload []lookupItemPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding lookup payload: %w", err)
	}

	results := make(map[int]domain.LookupResult, len(reqs))
	for i, req := range reqs {
		if i >= len(payload) {
			results[req.Index] = domain.LookupResult{
				CanonicalUOM: domain.BaseUOM,
				Confidence:   0.3,
				Escalation:   true,
			}
			continue
		}

		o := payload[i]
		res := domain.LookupResult{
			CanonicalUOM: domain.BaseUOM,
			Confidence:   0.5,
			Escalation:   true,
		}
		if uom := strings.TrimSpace(o.CanonicalUOM); uom != "" {
			res.CanonicalUOM = uom
		}
		if o.DetectedPackQuantity.set {
			p := int(o.DetectedPackQuantity.value)
			if p > 0 {
				res.DetectedPackQuantity = &p
			}
		}
		if o.Confidence.set {
			res.Confidence = o.Confidence.value
		}
		if o.Escalation != nil {
			res.Escalation = *o.Escalation
		}
		results[req.Index] = res
	}

	return results, nil
}
