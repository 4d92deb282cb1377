package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/logger"
)

// CollectResult is the outcome of collecting one collection.
type CollectResult struct {
	// Documents are the resolved documents, in remote order.
	Documents domain.Batch

	// Etag is the remote etag the documents correspond to.
	Etag string

	// CacheHit reports whether Documents came from the cache.
	CacheHit bool
}

// Collector fetches a collection's documents, reusing the cached documents
// when the remote etag has not changed.
type Collector struct {
	client driven.QueryClient
	cache  *FreshnessCache
}

// NewCollector creates a collector over a query client and a freshness cache.
func NewCollector(client driven.QueryClient, cache *FreshnessCache) *Collector {
	return &Collector{
		client: client,
		cache:  cache,
	}
}

// Collect runs one pass for the collection: load the cached etag, query the
// remote collection, then either return the cached documents (etag unchanged)
// or resolve includes into the fetched documents and cache them.
//
// Errors abort the pass. A failed query leaves the cache untouched.
func (c *Collector) Collect(ctx context.Context, database string, collection domain.Collection) (*CollectResult, error) {
	node := collection.NodeName()

	paths, err := collection.IncludePaths()
	if err != nil {
		return nil, fmt.Errorf("parse include paths: %w", err)
	}

	// 1. Load the etag of the last cached state
	cachedEtag, err := c.cache.LoadEtag(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("load etag: %w", err)
	}
	logger.Debug("Cached etag for %s: %q", node, cachedEtag)

	// 2. Fetch, passing the cached etag as a hint only
	result, err := c.client.Query(ctx, database, collection, cachedEtag)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection.Name, err)
	}

	// 3. Re-validate freshness ourselves
	fresh, err := c.cache.IsFresh(ctx, node, result.Etag)
	if err != nil {
		return nil, fmt.Errorf("check freshness: %w", err)
	}

	if fresh {
		docs, err := c.cache.LoadDocuments(ctx, node)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: etag %q cached for %s without documents",
				domain.ErrCacheInconsistent, result.Etag, node)
		}
		if err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		logger.Info("Using %d cached documents for %s (etag %s)", len(docs), node, result.Etag)
		return &CollectResult{Documents: docs, Etag: result.Etag, CacheHit: true}, nil
	}

	// 4. Refresh
	docs := MapIncludes(result.Documents, result.Includes, paths)
	// The etag is written last: a failed documents write must not leave
	// the new etag next to the previous batch.
	if err := c.cache.SaveDocuments(ctx, node, docs); err != nil {
		return nil, fmt.Errorf("save documents: %w", err)
	}
	if err := c.cache.SaveEtag(ctx, node, result.Etag); err != nil {
		return nil, fmt.Errorf("save etag: %w", err)
	}
	logger.Info("Fetched %d documents for %s (etag %s)", len(docs), node, result.Etag)

	if docs == nil {
		docs = domain.Batch{}
	}
	return &CollectResult{Documents: docs, Etag: result.Etag}, nil
}
