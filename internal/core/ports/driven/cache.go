package driven

import "context"

// Cache is a persistent key-value store with string keys and opaque values.
// Implementations must survive process restarts to be useful for
// incremental sourcing, except for test doubles.
type Cache interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if nothing is stored; any other error
	// means the store could not be read.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any prior value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
