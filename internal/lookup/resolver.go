package lookup

import (
	"context"
	"log"

	"itemize/internal/domain"
	"itemize/internal/port"
	"itemize/internal/uom"
)

// Resolver runs auxiliary unit resolution for a document's line items. Lines
// whose pack is recoverable from the document text resolve locally; the rest
// are batched into a single external capability call so the number of
// external calls per document stays at one regardless of line count. The
// capability and cache are both optional.
type Resolver struct {
	capability port.UOMResolver
	cache      *Cache
}

// NewResolver creates a Resolver. Pass nil for capability to disable external
// resolution, and nil for cache to disable caching.
func NewResolver(capability port.UOMResolver, cache *Cache) *Resolver {
	return &Resolver{capability: capability, cache: cache}
}

// degraded is the result used when the external capability is unavailable or
// failed to answer for an index. It keeps the line well-formed but escalated.
func degraded() domain.LookupResult {
	return domain.LookupResult{
		CanonicalUOM: domain.BaseUOM,
		Confidence:   0.3,
		Escalation:   true,
	}
}

// Resolve returns a LookupResult for every item the escalation policy flags,
// keyed by the item's position in extraction order. Items the policy deems
// safe get no entry. Every flagged index is guaranteed an entry even when the
// external capability returns a short or malformed answer.
func (r *Resolver) Resolve(ctx context.Context, items []domain.RawLineItem, supplierName string) map[int]domain.LookupResult {
	results := make(map[int]domain.LookupResult)
	var pending []port.LookupRequest

	for i, item := range items {
		packFromDesc := uom.ParsePack(item.Description)
		if !ShouldResolve(item.OriginalUOM, packFromDesc, item.Description) {
			continue
		}

		// The description came up empty, but the unit column itself can
		// encode the pack (e.g. a raw "25/CS" unit cell).
		if pack := uom.ParsePack(item.OriginalUOM); pack != nil {
			results[i] = domain.LookupResult{
				CanonicalUOM:         domain.BaseUOM,
				DetectedPackQuantity: pack,
				Confidence:           0.85,
				Escalation:           false,
			}
			continue
		}

		if cached, ok := r.cache.Get(ctx, supplierName, item.Description, item.OriginalUOM); ok {
			results[i] = cached
			continue
		}

		pending = append(pending, port.LookupRequest{
			Index:       i,
			Description: item.Description,
			PartNumber:  item.PartNumber(),
			OriginalUOM: item.OriginalUOM,
		})
	}

	if len(pending) > 0 && r.capability != nil {
		resolved, err := r.capability.ResolveBatch(ctx, pending, supplierName)
		if err != nil {
			log.Printf("lookup.Resolver: batch resolution failed for supplier %q: %v", supplierName, err)
		}
		for _, req := range pending {
			res, ok := resolved[req.Index]
			if !ok {
				continue
			}
			results[req.Index] = res
			r.cache.Put(ctx, supplierName, req.Description, req.OriginalUOM, res)
		}
	}

	for _, req := range pending {
		if _, ok := results[req.Index]; !ok {
			results[req.Index] = degraded()
		}
	}

	return results
}
