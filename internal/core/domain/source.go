package domain

import (
	"fmt"
	"strings"
)

// SourceConfig is the configuration of one remote database to source from.
type SourceConfig struct {
	// ServerURL is the base URL of the database server.
	ServerURL string `toml:"server_url"`

	// DatabaseName is the database queried on the server.
	DatabaseName string `toml:"database_name"`

	// CertificateFile is a PEM client certificate for mutual TLS.
	// Must be set together with KeyFile.
	CertificateFile string `toml:"certificate_file,omitempty"`

	// KeyFile is the PEM private key matching CertificateFile.
	KeyFile string `toml:"key_file,omitempty"`

	// RequestsPerSecond throttles queries. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`

	// Collections are sourced in order.
	Collections []Collection `toml:"collections"`
}

// Validate checks the configuration for errors that would make every
// sourcing run fail.
func (c *SourceConfig) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("%w: server_url is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("%w: database_name is required", ErrInvalidConfig)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Collections))
	for i, col := range c.Collections {
		if strings.TrimSpace(col.Name) == "" {
			return fmt.Errorf("%w: collection %d has no name", ErrInvalidConfig, i)
		}
		node := col.NodeName()
		if seen[node] {
			return fmt.Errorf("%w: duplicate collection node %q", ErrInvalidConfig, node)
		}
		seen[node] = true

		if _, err := col.IncludePaths(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// FindCollection returns the collection whose name or node matches.
func (c SourceConfig) FindCollection(name string) (Collection, bool) {
	for _, col := range c.Collections {
		if col.Name == name || col.NodeName() == name {
			return col, true
		}
	}
	return Collection{}, false
}

// Clone returns a deep copy of the configuration.
func (c SourceConfig) Clone() SourceConfig {
	out := c
	if c.Collections != nil {
		out.Collections = make([]Collection, len(c.Collections))
		for i, col := range c.Collections {
			out.Collections[i] = col
			if col.Includes != nil {
				out.Collections[i].Includes = append([]string(nil), col.Includes...)
			}
		}
	}
	return out
}
