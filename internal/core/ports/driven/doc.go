// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - QueryClient: Executes collection queries against the remote database
//   - Cache: Persistent key-value storage for etags and document batches
//   - NodeSink: Receives the nodes built from resolved documents
//   - ConfigStore: Source configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
