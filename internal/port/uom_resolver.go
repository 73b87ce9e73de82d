package port

import (
	"context"

	"itemize/internal/domain"
)

// LookupRequest identifies one line item needing unit-of-measure resolution.
// Index is the item's position in the extraction order and keys the response.
type LookupRequest struct {
	Index       int
	Description string
	PartNumber  string
	OriginalUOM string
}

// UOMResolver abstracts the batched external resolution capability. A single
// call covers every request for one document. Implementations must return a
// result for every requested index, degrading to a low-confidence escalated
// result rather than omitting entries.
type UOMResolver interface {
	ResolveBatch(ctx context.Context, reqs []LookupRequest, supplierName string) (map[int]domain.LookupResult, error)
}
