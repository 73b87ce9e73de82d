package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawLineItem is a parsed line item before UOM normalization. It is produced
// by any of the extraction strategies (LLM or generic table parser).
type RawLineItem struct {
	Description      string   `json:"description"`
	ItemNumber       string   `json:"item_number,omitempty"`
	ManufacturerPart string   `json:"manufacturer_part,omitempty"`
	Quantity         float64  `json:"quantity"`
	OriginalUOM      string   `json:"original_uom,omitempty"`
	UnitPrice        *float64 `json:"unit_price,omitempty"`
	ExtendedPrice    *float64 `json:"extended_price,omitempty"`
	LineConfidence   float64  `json:"line_confidence"`
}

// PartNumber returns the manufacturer part if present, else the item number.
func (r *RawLineItem) PartNumber() string {
	if r.ManufacturerPart != "" {
		return r.ManufacturerPart
	}
	return r.ItemNumber
}

// LookupResult is the outcome of an auxiliary UOM resolution, whether produced
// by the deterministic pack-pattern path or by an external capability.
type LookupResult struct {
	CanonicalUOM         string  `json:"canonical_uom"`
	DetectedPackQuantity *int    `json:"detected_pack_quantity"`
	Confidence           float64 `json:"confidence"`
	Escalation           bool    `json:"escalation"`
}

// LineItemOutput is the final structured record per line item.
// A ConfidenceScore below the escalation floor always forces EscalationFlag.
type LineItemOutput struct {
	SupplierName           string   `json:"supplier_name"`
	ItemDescription        string   `json:"item_description"`
	ManufacturerPartNumber *string  `json:"manufacturer_part_number"`
	OriginalUOM            *string  `json:"original_uom"`
	DetectedPackQuantity   *int     `json:"detected_pack_quantity"`
	CanonicalBaseUOM       string   `json:"canonical_base_uom"`
	PricePerBaseUnit       *float64 `json:"price_per_base_unit"`
	ConfidenceScore        float64  `json:"confidence_score"`
	EscalationFlag         bool     `json:"escalation_flag"`
}

// InvoiceResult is the result for a single processed document. It is built
// once by the pipeline and never mutated afterwards.
type InvoiceResult struct {
	SourceFile   string            `json:"source_file"`
	SupplierName string            `json:"supplier_name"`
	LineItems    []LineItemOutput  `json:"line_items"`
	RawMetadata  map[string]string `json:"raw_metadata"`
}

// EscalatedCount returns the number of line items flagged for review.
func (r *InvoiceResult) EscalatedCount() int {
	n := 0
	for i := range r.LineItems {
		if r.LineItems[i].EscalationFlag {
			n++
		}
	}
	return n
}

// InvoiceRecord is a persisted InvoiceResult row.
type InvoiceRecord struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Source         string          `db:"source" json:"source"`
	SupplierName   string          `db:"supplier_name" json:"supplier_name"`
	Strategy       Strategy        `db:"strategy" json:"strategy"`
	LineItems      json.RawMessage `db:"line_items" json:"line_items"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata"`
	LineCount      int             `db:"line_count" json:"line_count"`
	EscalatedLines int             `db:"escalated_lines" json:"escalated_lines"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
