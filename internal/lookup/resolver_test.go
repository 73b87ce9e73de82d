package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemize/internal/domain"
	"itemize/internal/port"
)

// fakeCapability returns canned batch results and records what it was asked.
type fakeCapability struct {
	results map[int]domain.LookupResult
	err     error
	calls   int
	gotReqs []port.LookupRequest
}

func (f *fakeCapability) ResolveBatch(_ context.Context, reqs []port.LookupRequest, _ string) (map[int]domain.LookupResult, error) {
	f.calls++
	f.gotReqs = reqs
	return f.results, f.err
}

func TestResolve_SafeLinesGetNoEntry(t *testing.T) {
	r := NewResolver(nil, nil)

	items := []domain.RawLineItem{
		{Description: "WIDGET A", OriginalUOM: "EA"},
		{Description: "GLOVES 25/CS", OriginalUOM: "CS"},
		{Description: "COTTON RAGS", OriginalUOM: "LB"},
	}
	results := r.Resolve(context.Background(), items, "ACME")
	assert.Empty(t, results)
}

func TestResolve_DegradedWithoutCapability(t *testing.T) {
	r := NewResolver(nil, nil)

	items := []domain.RawLineItem{
		{Description: "NITRILE GLOVES", OriginalUOM: "CS"},
	}
	results := r.Resolve(context.Background(), items, "ACME")
	require.Contains(t, results, 0)

	res := results[0]
	assert.Equal(t, domain.BaseUOM, res.CanonicalUOM)
	assert.Nil(t, res.DetectedPackQuantity)
	assert.Equal(t, 0.3, res.Confidence)
	assert.True(t, res.Escalation)
}

func TestResolve_SingleBatchCall(t *testing.T) {
	pack := 25
	cap := &fakeCapability{results: map[int]domain.LookupResult{
		0: {CanonicalUOM: "EA", DetectedPackQuantity: &pack, Confidence: 0.9},
		2: {CanonicalUOM: "EA", Confidence: 0.5, Escalation: true},
	}}
	r := NewResolver(cap, nil)

	items := []domain.RawLineItem{
		{Description: "NITRILE GLOVES", OriginalUOM: "CS"},
		{Description: "WIDGET A", OriginalUOM: "EA"},
		{Description: "ZIP TIES", OriginalUOM: "CNT"},
	}
	results := r.Resolve(context.Background(), items, "ACME")

	assert.Equal(t, 1, cap.calls)
	require.Len(t, cap.gotReqs, 2)
	assert.Equal(t, 0, cap.gotReqs[0].Index)
	assert.Equal(t, 2, cap.gotReqs[1].Index)

	require.Contains(t, results, 0)
	require.NotNil(t, results[0].DetectedPackQuantity)
	assert.Equal(t, 25, *results[0].DetectedPackQuantity)
	assert.NotContains(t, results, 1)
}

func TestResolve_EveryRequestedIndexAnswered(t *testing.T) {
	// Capability answers only the first of two requests.
	cap := &fakeCapability{results: map[int]domain.LookupResult{
		0: {CanonicalUOM: "EA", Confidence: 0.9},
	}}
	r := NewResolver(cap, nil)

	items := []domain.RawLineItem{
		{Description: "NITRILE GLOVES", OriginalUOM: "CS"},
		{Description: "ZIP TIES", OriginalUOM: "CNT"},
	}
	results := r.Resolve(context.Background(), items, "ACME")

	require.Contains(t, results, 0)
	require.Contains(t, results, 1)
	assert.Equal(t, 0.3, results[1].Confidence)
	assert.True(t, results[1].Escalation)
}

func TestResolve_CapabilityErrorDegradesAll(t *testing.T) {
	cap := &fakeCapability{err: errors.New("rate limited")}
	r := NewResolver(cap, nil)

	items := []domain.RawLineItem{
		{Description: "NITRILE GLOVES", OriginalUOM: "CS"},
	}
	results := r.Resolve(context.Background(), items, "ACME")

	require.Contains(t, results, 0)
	assert.True(t, results[0].Escalation)
	assert.Equal(t, 0.3, results[0].Confidence)
}

func TestResolve_CacheHitSkipsCapability(t *testing.T) {
	cache, err := OpenCache(t.TempDir() + "/lookup.db")
	require.NoError(t, err)
	defer cache.Close()

	pack := 12
	cache.Put(context.Background(), "ACME", "NITRILE GLOVES", "CS", domain.LookupResult{
		CanonicalUOM:         "EA",
		DetectedPackQuantity: &pack,
		Confidence:           0.9,
	})

	cap := &fakeCapability{}
	r := NewResolver(cap, cache)

	items := []domain.RawLineItem{
		{Description: "NITRILE GLOVES", OriginalUOM: "CS"},
	}
	results := r.Resolve(context.Background(), items, "ACME")

	assert.Equal(t, 0, cap.calls)
	require.Contains(t, results, 0)
	require.NotNil(t, results[0].DetectedPackQuantity)
	assert.Equal(t, 12, *results[0].DetectedPackQuantity)
}

func TestCache_RoundTripAndMiss(t *testing.T) {
	cache, err := OpenCache(t.TempDir() + "/lookup.db")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	_, ok := cache.Get(ctx, "ACME", "UNSEEN", "CS")
	assert.False(t, ok)

	cache.Put(ctx, "ACME", "GLOVES", "CS", domain.LookupResult{
		CanonicalUOM: "EA",
		Confidence:   0.5,
		Escalation:   true,
	})
	got, ok := cache.Get(ctx, "ACME", "GLOVES", "CS")
	require.True(t, ok)
	assert.Equal(t, "EA", got.CanonicalUOM)
	assert.Nil(t, got.DetectedPackQuantity)
	assert.Equal(t, 0.5, got.Confidence)
	assert.True(t, got.Escalation)
}

func TestCache_NilReceiverIsDisabled(t *testing.T) {
	var cache *Cache
	_, ok := cache.Get(context.Background(), "A", "B", "C")
	assert.False(t, ok)
	cache.Put(context.Background(), "A", "B", "C", domain.LookupResult{})
	assert.NoError(t, cache.Close())
}
