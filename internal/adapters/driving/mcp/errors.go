// Package mcp provides an MCP (Model Context Protocol) server adapter for ravensource.
// It lets AI assistants read the resolved documents of configured collections.
package mcp

import "errors"

// ErrMissingSourceOrchestrator is returned when the source orchestrator is not provided.
var ErrMissingSourceOrchestrator = errors.New("mcp: source orchestrator is required")
