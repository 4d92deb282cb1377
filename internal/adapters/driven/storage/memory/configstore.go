package memory

import (
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg domain.SourceConfig
}

// NewConfigStore creates a new in-memory config store holding cfg.
// The configuration is not validated.
func NewConfigStore(cfg domain.SourceConfig) *ConfigStore {
	return &ConfigStore{cfg: cfg.Clone()}
}

// Config returns a copy of the configuration.
func (s *ConfigStore) Config() domain.SourceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Update validates and replaces the configuration.
func (s *ConfigStore) Update(cfg domain.SourceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	return nil
}

// Save is a no-op for in-memory store.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op for in-memory store.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns empty string for in-memory store.
func (s *ConfigStore) Path() string {
	return ""
}
