package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// Cache key suffixes. Other tooling reads these keys, so they must not change.
const (
	etagKeySuffix      = "-etag"
	documentsKeySuffix = "-documents"
)

// EtagKey returns the cache key of a collection node's etag.
func EtagKey(node string) string {
	return node + etagKeySuffix
}

// DocumentsKey returns the cache key of a collection node's documents.
func DocumentsKey(node string) string {
	return node + documentsKeySuffix
}

// FreshnessCache stores the last seen etag and the last resolved documents
// per collection node, and decides whether the cached documents are current.
type FreshnessCache struct {
	cache driven.Cache
}

// NewFreshnessCache wraps a key-value cache.
func NewFreshnessCache(cache driven.Cache) *FreshnessCache {
	return &FreshnessCache{cache: cache}
}

// LoadEtag returns the stored etag for node, or "" if none was ever stored.
func (c *FreshnessCache) LoadEtag(ctx context.Context, node string) (string, error) {
	key := EtagKey(node)
	data, err := c.cache.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// SaveEtag stores the etag for node, overwriting any prior value.
func (c *FreshnessCache) SaveEtag(ctx context.Context, node, etag string) error {
	key := EtagKey(node)
	if err := c.cache.Set(ctx, key, []byte(etag)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadDocuments returns the stored documents for node.
// Returns domain.ErrNotFound if none were ever stored.
func (c *FreshnessCache) LoadDocuments(ctx context.Context, node string) (domain.Batch, error) {
	key := DocumentsKey(node)
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	// Numbers stay json.Number so large integers survive the round trip
	var batch domain.Batch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if batch == nil {
		batch = domain.Batch{}
	}
	return batch, nil
}

// SaveDocuments stores the documents for node, overwriting any prior value.
func (c *FreshnessCache) SaveDocuments(ctx context.Context, node string, batch domain.Batch) error {
	key := DocumentsKey(node)
	if batch == nil {
		batch = domain.Batch{}
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// IsFresh reports whether an etag was stored for node and equals etag.
// An absent or empty stored etag is never fresh.
func (c *FreshnessCache) IsFresh(ctx context.Context, node, etag string) (bool, error) {
	if etag == "" {
		return false, nil
	}
	stored, err := c.LoadEtag(ctx, node)
	if err != nil {
		return false, err
	}
	return stored != "" && stored == etag, nil
}

// Inspect summarises what is cached for node.
// Returns domain.ErrNotFound if neither an etag nor documents are cached.
func (c *FreshnessCache) Inspect(ctx context.Context, node string) (*domain.CacheEntry, error) {
	etag, err := c.LoadEtag(ctx, node)
	if err != nil {
		return nil, err
	}

	count := 0
	batch, err := c.LoadDocuments(ctx, node)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if etag == "" {
			return nil, fmt.Errorf("cache for %s: %w", node, domain.ErrNotFound)
		}
	case err != nil:
		return nil, err
	default:
		count = len(batch)
	}

	return &domain.CacheEntry{Node: node, Etag: etag, DocumentCount: count}, nil
}

// Clear removes the etag and documents stored for node.
func (c *FreshnessCache) Clear(ctx context.Context, node string) error {
	for _, key := range []string{EtagKey(node), DocumentsKey(node)} {
		if err := c.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
