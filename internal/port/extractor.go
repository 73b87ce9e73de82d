package port

import (
	"context"

	"itemize/internal/domain"
)

// ExtractInput carries the data needed for line-item extraction.
type ExtractInput struct {
	Text         string
	SupplierHint string
}

// ExtractOutput contains the candidate items from an extraction capability.
type ExtractOutput struct {
	SupplierName string
	Items        []domain.RawLineItem
	ModelUsed    string
}

// InvoiceExtractor abstracts LLM-based line-item extraction. Implementations
// may return an empty item list and must not fabricate quantities they cannot
// infer from the text.
type InvoiceExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
