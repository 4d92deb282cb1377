package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates the source configuration is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidIncludePath indicates an include path could not be parsed.
	ErrInvalidIncludePath = errors.New("invalid include path")

	// ErrMissingDocumentID indicates a document carries no @metadata.@id.
	ErrMissingDocumentID = errors.New("document has no id")

	// ErrSourceInProgress indicates the collection is already being sourced.
	ErrSourceInProgress = errors.New("sourcing in progress")

	// ErrCacheInconsistent indicates the cached etag matches the remote
	// etag but the cached documents are gone.
	// Clearing the collection's cache entries recovers from it.
	ErrCacheInconsistent = errors.New("cache inconsistent")
)
