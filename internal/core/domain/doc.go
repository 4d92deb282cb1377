// Package domain defines the core business entities for ravensource.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A schemaless document fetched from the remote database
//   - Batch: The ordered documents returned by one query
//   - Includes: Referenced documents keyed by id
//   - IncludePath: A parsed include-path expression
//   - Collection: A configured collection and its include paths
//   - Node: The record handed to the downstream consumer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
