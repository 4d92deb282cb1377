package mcp

import (
	"context"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
)

// mockSourceOrchestrator is a mock implementation of driving.SourceOrchestrator.
type mockSourceOrchestrator struct {
	collections []domain.Collection
	documents   map[string]domain.Batch
	err         error
	collected   []string
}

func (m *mockSourceOrchestrator) SourceAll(_ context.Context) error {
	return m.err
}

func (m *mockSourceOrchestrator) Source(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSourceOrchestrator) Collect(_ context.Context, name string) (domain.Batch, error) {
	m.collected = append(m.collected, name)
	if m.err != nil {
		return nil, m.err
	}
	docs, ok := m.documents[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return docs, nil
}

func (m *mockSourceOrchestrator) Collections() []domain.Collection {
	return m.collections
}

func (m *mockSourceOrchestrator) Status(_ context.Context, name string) (*driving.SourceStatus, error) {
	return &driving.SourceStatus{Collection: name}, m.err
}

// mockCacheService is a mock implementation of driving.CacheService.
type mockCacheService struct {
	entries map[string]domain.CacheEntry
	err     error
}

func (m *mockCacheService) Inspect(_ context.Context, node string) (*domain.CacheEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	entry, ok := m.entries[node]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (m *mockCacheService) Clear(_ context.Context, _ string) error {
	return m.err
}

func testDocs(ids ...string) domain.Batch {
	batch := make(domain.Batch, len(ids))
	for i, id := range ids {
		batch[i] = domain.Document{
			"Name":             "doc " + id,
			domain.MetadataKey: map[string]any{domain.IDKey: id},
		}
	}
	return batch
}
