package services

import (
	"context"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
	"github.com/custodia-labs/ravensource/internal/logger"
)

// Ensure CacheService implements the interface.
var _ driving.CacheService = (*CacheService)(nil)

// CacheService exposes the freshness cache to driving adapters.
type CacheService struct {
	cache *FreshnessCache
}

// NewCacheService creates a new cache service.
func NewCacheService(cache *FreshnessCache) *CacheService {
	return &CacheService{cache: cache}
}

// Inspect reports the cached etag and document count for a node.
func (s *CacheService) Inspect(ctx context.Context, node string) (*domain.CacheEntry, error) {
	return s.cache.Inspect(ctx, node)
}

// Clear removes the cached etag and documents for a node.
func (s *CacheService) Clear(ctx context.Context, node string) error {
	if err := s.cache.Clear(ctx, node); err != nil {
		return err
	}
	logger.Info("Cleared cache for %s", node)
	return nil
}
