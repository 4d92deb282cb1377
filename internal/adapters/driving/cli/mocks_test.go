package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
)

// mockSourceOrchestrator implements driving.SourceOrchestrator for testing.
type mockSourceOrchestrator struct {
	mu          sync.Mutex
	collections []domain.Collection
	statuses    map[string]*driving.SourceStatus
	err         error
	sourced     []string
	allRuns     int
}

func (m *mockSourceOrchestrator) SourceAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allRuns++
	return m.err
}

func (m *mockSourceOrchestrator) Source(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourced = append(m.sourced, name)
	return m.err
}

func (m *mockSourceOrchestrator) Collect(_ context.Context, _ string) (domain.Batch, error) {
	return nil, m.err
}

func (m *mockSourceOrchestrator) Collections() []domain.Collection {
	return m.collections
}

func (m *mockSourceOrchestrator) Status(_ context.Context, name string) (*driving.SourceStatus, error) {
	if status, ok := m.statuses[name]; ok {
		return status, nil
	}
	return &driving.SourceStatus{Collection: name}, nil
}

// mockCacheService implements driving.CacheService for testing.
type mockCacheService struct {
	entries  map[string]*domain.CacheEntry
	clearErr error
	cleared  []string
}

func (m *mockCacheService) Inspect(_ context.Context, node string) (*domain.CacheEntry, error) {
	if entry, ok := m.entries[node]; ok {
		return entry, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockCacheService) Clear(_ context.Context, node string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, node)
	return nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	cfg  domain.SourceConfig
	path string
}

func (m *mockConfigStore) Config() domain.SourceConfig { return m.cfg.Clone() }

func (m *mockConfigStore) Update(cfg domain.SourceConfig) error {
	m.cfg = cfg
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string { return m.path }

// watchingConfigStore reports each entry of reloads to the watch callback,
// replacing the config before each successful one.
type watchingConfigStore struct {
	mockConfigStore
	reloads []error
	next    domain.SourceConfig
}

func (w *watchingConfigStore) Watch(_ context.Context, _ time.Duration, onReload func(error)) error {
	for _, err := range w.reloads {
		if err == nil {
			w.cfg = w.next
		}
		onReload(err)
	}
	return nil
}

func testConfig() domain.SourceConfig {
	return domain.SourceConfig{
		ServerURL:    "https://raven.example.com",
		DatabaseName: "Shop",
		Collections: []domain.Collection{
			{Name: "Orders", Includes: []string{"Lines[].Product"}},
			{Name: "Products", Node: "Product"},
		},
	}
}

// setupServices installs the given ports and returns a restore func.
// Pass nil for ports a test leaves unconfigured.
func setupServices(
	source driving.SourceOrchestrator,
	cache driving.CacheService,
	store driven.ConfigStore,
) func() {
	oldSource, oldCache, oldConfig := sourceOrchestrator, cacheService, configStore
	oldWire, oldNodesOnStdout := wire, nodesOnStdout

	sourceOrchestrator, cacheService, configStore = source, cache, store
	wire, nodesOnStdout = nil, false

	return func() {
		sourceOrchestrator, cacheService, configStore = oldSource, oldCache, oldConfig
		wire, nodesOnStdout = oldWire, oldNodesOnStdout
		watchConfig, clearAll = false, false
		outputPath, configDir, dataDir = "", "", ""
		inMemory = false
	}
}
