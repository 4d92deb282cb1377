package driving

import (
	"context"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// SourceOrchestrator sources configured collections into nodes.
type SourceOrchestrator interface {
	// SourceAll sources every configured collection in order,
	// stopping at the first collection that fails.
	SourceAll(ctx context.Context) error

	// Source sources a single collection, matched by name or node.
	Source(ctx context.Context, collection string) error

	// Collect returns the resolved documents of a collection without
	// creating nodes. The cache is updated as during sourcing.
	Collect(ctx context.Context, collection string) (domain.Batch, error)

	// Collections returns the configured collections.
	Collections() []domain.Collection

	// Status returns the progress of a collection's current run.
	Status(ctx context.Context, collection string) (*SourceStatus, error)
}

// SourceStatus represents the current state of a sourcing run.
type SourceStatus struct {
	// Collection identifies the collection node.
	Collection string

	// Running indicates if sourcing is currently in progress.
	Running bool

	// CacheHit reports whether the cached documents were reused.
	CacheHit bool

	// DocumentsCollected is the number of documents collected.
	DocumentsCollected int

	// NodesCreated is the number of nodes handed to the sink.
	NodesCreated int
}

// CacheService inspects and clears the per-collection cache.
type CacheService interface {
	// Inspect reports the cached etag and document count for a node.
	// Returns domain.ErrNotFound if nothing is cached.
	Inspect(ctx context.Context, node string) (*domain.CacheEntry, error)

	// Clear removes the cached etag and documents for a node.
	Clear(ctx context.Context, node string) error
}
