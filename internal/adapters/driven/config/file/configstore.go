package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "ravensource.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      domain.SourceConfig
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.ravensource/ravensource.toml.
// A missing file is not an error; the store starts with an empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".ravensource")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, FileName),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the loaded configuration.
func (s *ConfigStore) Config() domain.SourceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Update validates cfg, replaces the current configuration and persists it.
func (s *ConfigStore) Update(cfg domain.SourceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg.Clone()
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load reads configuration from the TOML file. Unknown keys are rejected
// so a misspelt option does not silently fall back to its default.
// The loaded configuration is not validated.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.cfg = domain.SourceConfig{}
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	var loaded domain.SourceConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&loaded); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, de := range strict.Errors {
				keys = append(keys, strings.Join(de.Key(), "."))
			}
			return fmt.Errorf("%w: %s: unknown keys: %s",
				domain.ErrInvalidConfig, s.filePath, strings.Join(keys, ", "))
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
	}

	s.cfg = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
