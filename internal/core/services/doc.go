// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The sourcing pipeline for one collection is:
//
//  1. Collector loads the cached etag and queries the remote collection
//  2. FreshnessCache decides whether the cached documents are still current
//  3. On a miss, MapIncludes resolves include paths and the cache is refreshed
//  4. NodeBuilder turns each document into a node for the NodeSink
package services
