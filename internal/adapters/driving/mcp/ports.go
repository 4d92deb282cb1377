package mcp

import (
	"github.com/custodia-labs/ravensource/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Source collects documents from configured collections.
	Source driving.SourceOrchestrator

	// Cache reports what is cached per collection. Optional.
	Cache driving.CacheService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Source == nil {
		return ErrMissingSourceOrchestrator
	}
	return nil
}
