package driven

import "github.com/custodia-labs/ravensource/internal/core/domain"

// ConfigStore provides access to the source configuration.
// Implementations handle persistence (e.g., TOML files).
type ConfigStore interface {
	// Config returns a copy of the current configuration.
	Config() domain.SourceConfig

	// Update validates and replaces the configuration, then persists it.
	Update(cfg domain.SourceConfig) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
