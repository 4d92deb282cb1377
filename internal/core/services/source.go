package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
	"github.com/custodia-labs/ravensource/internal/logger"
)

// Ensure SourceOrchestrator implements the interface.
var _ driving.SourceOrchestrator = (*SourceOrchestrator)(nil)

// SourceOrchestrator sources configured collections: it collects each
// collection's documents and hands one node per document to the sink.
type SourceOrchestrator struct {
	configStore driven.ConfigStore
	collector   *Collector
	builder     *NodeBuilder
	sink        driven.NodeSink

	// Status tracking
	mu   sync.RWMutex
	runs map[string]*driving.SourceStatus
}

// NewSourceOrchestrator creates a new source orchestrator.
// The configuration is read on every run so reloads take effect.
func NewSourceOrchestrator(
	configStore driven.ConfigStore,
	collector *Collector,
	builder *NodeBuilder,
	sink driven.NodeSink,
) *SourceOrchestrator {
	return &SourceOrchestrator{
		configStore: configStore,
		collector:   collector,
		builder:     builder,
		sink:        sink,
		runs:        make(map[string]*driving.SourceStatus),
	}
}

// SourceAll sources every configured collection in order.
// The first failing collection aborts the run.
func (o *SourceOrchestrator) SourceAll(ctx context.Context) error {
	cfg := o.configStore.Config()
	logger.Section("Sourcing " + cfg.DatabaseName)

	for _, collection := range cfg.Collections {
		if err := o.source(ctx, cfg.DatabaseName, collection); err != nil {
			return err
		}
	}

	logger.Info("Sourced %d collections", len(cfg.Collections))
	return nil
}

// Source sources the collection matched by name or node.
func (o *SourceOrchestrator) Source(ctx context.Context, name string) error {
	cfg := o.configStore.Config()
	collection, ok := cfg.FindCollection(name)
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return o.source(ctx, cfg.DatabaseName, collection)
}

// Collect returns the resolved documents of the collection matched by
// name or node, without creating nodes.
func (o *SourceOrchestrator) Collect(ctx context.Context, name string) (domain.Batch, error) {
	cfg := o.configStore.Config()
	collection, ok := cfg.FindCollection(name)
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	node := collection.NodeName()
	status, err := o.begin(node)
	if err != nil {
		return nil, err
	}
	defer o.finish(node)

	result, err := o.collector.Collect(ctx, cfg.DatabaseName, collection)
	if err != nil {
		return nil, fmt.Errorf("collect documents for %s: %w", collection.Name, err)
	}
	o.update(func() {
		status.CacheHit = result.CacheHit
		status.DocumentsCollected = len(result.Documents)
	})
	return result.Documents, nil
}

// Collections returns the configured collections.
func (o *SourceOrchestrator) Collections() []domain.Collection {
	cfg := o.configStore.Config()
	out := make([]domain.Collection, len(cfg.Collections))
	copy(out, cfg.Collections)
	return out
}

// Status returns the status of the collection's current or last run.
func (o *SourceOrchestrator) Status(_ context.Context, name string) (*driving.SourceStatus, error) {
	node := name
	if collection, ok := o.configStore.Config().FindCollection(name); ok {
		node = collection.NodeName()
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.runs[node]; ok {
		// Return a copy to avoid race conditions
		copied := *status
		return &copied, nil
	}

	// Never run - return idle status
	return &driving.SourceStatus{Collection: node}, nil
}

// source runs the collect and create-nodes stages for one collection.
func (o *SourceOrchestrator) source(ctx context.Context, database string, collection domain.Collection) error {
	node := collection.NodeName()
	status, err := o.begin(node)
	if err != nil {
		return err
	}
	defer o.finish(node)

	logger.Info("Sourcing collection %s as %s", collection.Name, node)

	// STEP 1: Collect documents
	result, err := o.collector.Collect(ctx, database, collection)
	if err != nil {
		logger.Error("Something went wrong while collecting documents for the collection, %s: %v", collection.Name, err)
		return fmt.Errorf("collect documents for %s: %w", collection.Name, err)
	}
	o.update(func() {
		status.CacheHit = result.CacheHit
		status.DocumentsCollected = len(result.Documents)
	})

	// STEP 2: Create nodes
	if err := o.createNodes(ctx, collection, result.Documents, status); err != nil {
		logger.Error("Something went wrong while creating nodes for the collection, %s: %v", collection.Name, err)
		return fmt.Errorf("create nodes for %s: %w", collection.Name, err)
	}

	logger.Info("Created %d nodes for %s", len(result.Documents), node)
	return nil
}

func (o *SourceOrchestrator) createNodes(
	ctx context.Context,
	collection domain.Collection,
	docs domain.Batch,
	status *driving.SourceStatus,
) error {
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		node, err := o.builder.Build(collection, doc)
		if err != nil {
			return err
		}
		if err := o.sink.CreateNode(ctx, node); err != nil {
			return fmt.Errorf("create node %s: %w", node.Key, err)
		}
		logger.Debug("Created node %s (%s)", node.Key, node.ID)

		o.update(func() { status.NodesCreated++ })
	}
	return nil
}

// begin registers a run for node, refusing to start a second concurrent run.
func (o *SourceOrchestrator) begin(node string) (*driving.SourceStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if status, ok := o.runs[node]; ok && status.Running {
		return nil, fmt.Errorf("collection %s: %w", node, domain.ErrSourceInProgress)
	}

	status := &driving.SourceStatus{Collection: node, Running: true}
	o.runs[node] = status
	return status, nil
}

// finish marks the run for node as complete, keeping its counters.
func (o *SourceOrchestrator) finish(node string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.runs[node]; ok {
		status.Running = false
	}
}

// update applies fn while holding the status lock.
func (o *SourceOrchestrator) update(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}
