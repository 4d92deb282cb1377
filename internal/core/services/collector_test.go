package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

func newTestCollector() (*Collector, *mockQueryClient, *recordingCache) {
	client := newMockQueryClient()
	backing := newRecordingCache()
	return NewCollector(client, NewFreshnessCache(backing)), client, backing
}

func TestCollector_CacheHitReturnsCachedBatch(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()
	fc := NewFreshnessCache(backing)

	cached := domain.Batch{doc("products/1", map[string]any{"Name": "cached"})}
	require.NoError(t, fc.SaveEtag(ctx, "Product", "etag1"))
	require.NoError(t, fc.SaveDocuments(ctx, "Product", cached))
	client.results["Product"] = &domain.QueryResult{
		Documents: domain.Batch{doc("products/1", map[string]any{"Name": "fetched"})},
		Etag:      "etag1",
	}

	result, err := collector.Collect(ctx, "Northwind", domain.Collection{Name: "Product"})
	require.NoError(t, err)

	assert.True(t, result.CacheHit)
	assert.Equal(t, "etag1", result.Etag)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "cached", result.Documents[0]["Name"], "fetched documents are discarded")

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "etag1", calls[0].Etag, "cached etag is sent as hint")
	assert.Equal(t, "Northwind", calls[0].Database)

	assert.Equal(t, 1, backing.SetCount("Product-etag"), "hit path writes nothing")
	assert.Equal(t, 1, backing.SetCount("Product-documents"))
}

func TestCollector_CacheMissSavesOnce(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()

	client.results["Product"] = &domain.QueryResult{
		Documents: domain.Batch{doc("d1", nil)},
		Etag:      "etag2",
	}

	result, err := collector.Collect(ctx, "db", domain.Collection{Name: "Product"})
	require.NoError(t, err)

	assert.False(t, result.CacheHit)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "d1", result.Documents[0].ID())

	assert.Equal(t, "", client.Calls()[0].Etag, "no etag sent when none is cached")
	assert.Equal(t, 1, backing.SetCount("Product-etag"))
	assert.Equal(t, 1, backing.SetCount("Product-documents"))

	fc := NewFreshnessCache(backing)
	etag, err := fc.LoadEtag(ctx, "Product")
	require.NoError(t, err)
	assert.Equal(t, "etag2", etag)
	stored, err := fc.LoadDocuments(ctx, "Product")
	require.NoError(t, err)
	assert.Equal(t, "d1", stored[0].ID())
}

func TestCollector_ChangedEtagRefreshes(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()
	fc := NewFreshnessCache(backing)

	require.NoError(t, fc.SaveEtag(ctx, "Product", "old"))
	require.NoError(t, fc.SaveDocuments(ctx, "Product", domain.Batch{doc("stale", nil)}))
	client.results["Product"] = &domain.QueryResult{
		Documents: domain.Batch{doc("new", nil)},
		Etag:      "new-etag",
	}

	result, err := collector.Collect(ctx, "db", domain.Collection{Name: "Product"})
	require.NoError(t, err)

	assert.False(t, result.CacheHit)
	assert.Equal(t, "new", result.Documents[0].ID())
	etag, _ := fc.LoadEtag(ctx, "Product")
	assert.Equal(t, "new-etag", etag)
}

func TestCollector_ResolvesIncludesAndCachesResolvedForm(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()

	client.results["Orders"] = &domain.QueryResult{
		Documents: domain.Batch{doc("orders/1", map[string]any{
			"Lines": []any{map[string]any{"Product": "products/1"}},
		})},
		Includes: domain.Includes{"products/1": doc("products/1", map[string]any{"Name": "Chai"})},
		Etag:     "1",
	}
	collection := domain.Collection{Name: "Orders", Node: "Order", Includes: []string{"Lines[].Product"}}

	result, err := collector.Collect(ctx, "db", collection)
	require.NoError(t, err)

	line := result.Documents[0]["Lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "Chai", line["Product"].(domain.Document)["Name"])

	// The second pass is served from the cache with includes already embedded.
	second, err := collector.Collect(ctx, "db", collection)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	line = second.Documents[0]["Lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "Chai", line["Product"].(map[string]any)["Name"])
	assert.Equal(t, 1, backing.SetCount("Order-documents"))
}

func TestCollector_NotModifiedWithCache(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()
	fc := NewFreshnessCache(backing)

	require.NoError(t, fc.SaveEtag(ctx, "Product", "A"))
	require.NoError(t, fc.SaveDocuments(ctx, "Product", domain.Batch{doc("p1", nil), doc("p2", nil)}))
	client.results["Product"] = &domain.QueryResult{Documents: domain.Batch{}, Etag: "A"}

	result, err := collector.Collect(ctx, "db", domain.Collection{Name: "Product"})
	require.NoError(t, err)

	assert.True(t, result.CacheHit)
	assert.Len(t, result.Documents, 2)
}

func TestCollector_EtagWithoutDocumentsIsInconsistent(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()

	require.NoError(t, NewFreshnessCache(backing).SaveEtag(ctx, "Product", "A"))
	client.results["Product"] = &domain.QueryResult{Etag: "A"}

	_, err := collector.Collect(ctx, "db", domain.Collection{Name: "Product"})

	assert.ErrorIs(t, err, domain.ErrCacheInconsistent)
}

func TestCollector_QueryErrorLeavesCacheUntouched(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()
	fc := NewFreshnessCache(backing)

	require.NoError(t, fc.SaveEtag(ctx, "Product", "A"))
	client.err = errors.New("connection refused")

	_, err := collector.Collect(ctx, "db", domain.Collection{Name: "Product"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query collection Product")
	assert.Equal(t, 1, backing.SetCount("Product-etag"))
	assert.Equal(t, 0, backing.SetCount("Product-documents"))
	etag, _ := fc.LoadEtag(ctx, "Product")
	assert.Equal(t, "A", etag)
}

func TestCollector_LoadEtagError(t *testing.T) {
	collector, client, backing := newTestCollector()
	backing.getErr = errors.New("io error")

	_, err := collector.Collect(context.Background(), "db", domain.Collection{Name: "Product"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load etag")
	assert.Empty(t, client.Calls(), "no fetch after a cache read failure")
}

func TestCollector_SaveErrors(t *testing.T) {
	t.Run("save etag", func(t *testing.T) {
		collector, client, backing := newTestCollector()
		backing.setErr = errors.New("read-only")
		backing.failKey = "Product-etag"
		client.results["Product"] = &domain.QueryResult{Etag: "A"}

		_, err := collector.Collect(context.Background(), "db", domain.Collection{Name: "Product"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save etag")
		assert.Equal(t, 1, backing.SetCount("Product-documents"))
	})

	t.Run("save documents", func(t *testing.T) {
		collector, client, backing := newTestCollector()
		backing.setErr = errors.New("read-only")
		backing.failKey = "Product-documents"
		client.results["Product"] = &domain.QueryResult{Etag: "A"}

		_, err := collector.Collect(context.Background(), "db", domain.Collection{Name: "Product"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save documents")
		assert.Equal(t, 0, backing.SetCount("Product-etag"))
	})
}

func TestCollector_FailedDocumentsWriteForcesRefetch(t *testing.T) {
	collector, client, backing := newTestCollector()
	ctx := context.Background()
	collection := domain.Collection{Name: "Product"}

	// Run 1 caches v1 under E1
	client.results["Product"] = &domain.QueryResult{
		Documents: domain.Batch{doc("products/1", map[string]any{"Name": "v1"})},
		Etag:      "E1",
	}
	_, err := collector.Collect(ctx, "db", collection)
	require.NoError(t, err)

	// Run 2 fetches v2 under E2 but cannot store the documents
	client.results["Product"] = &domain.QueryResult{
		Documents: domain.Batch{doc("products/1", map[string]any{"Name": "v2"})},
		Etag:      "E2",
	}
	backing.setErr = errors.New("disk full")
	backing.failKey = "Product-documents"
	_, err = collector.Collect(ctx, "db", collection)
	require.Error(t, err)

	etag, err := NewFreshnessCache(backing).LoadEtag(ctx, "Product")
	require.NoError(t, err)
	assert.Equal(t, "E1", etag, "etag must not advance past the stored batch")

	// Run 3 sees E2 again and must refresh rather than serve v1
	backing.setErr = nil
	result, err := collector.Collect(ctx, "db", collection)
	require.NoError(t, err)

	assert.False(t, result.CacheHit)
	assert.Equal(t, "E2", result.Etag)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "v2", result.Documents[0]["Name"])
}

func TestCollector_InvalidIncludePath(t *testing.T) {
	collector, client, _ := newTestCollector()

	_, err := collector.Collect(context.Background(), "db", domain.Collection{Name: "Product", Includes: []string{"."}})

	assert.ErrorIs(t, err, domain.ErrInvalidIncludePath)
	assert.Empty(t, client.Calls())
}

func TestCollector_EmptyResultIsNonNil(t *testing.T) {
	collector, client, _ := newTestCollector()
	client.results["Product"] = &domain.QueryResult{Etag: "A"}

	result, err := collector.Collect(context.Background(), "db", domain.Collection{Name: "Product"})
	require.NoError(t, err)

	assert.NotNil(t, result.Documents)
	assert.Empty(t, result.Documents)
}
