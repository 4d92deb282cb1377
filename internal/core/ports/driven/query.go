package driven

import (
	"context"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// QueryClient executes collection queries against the remote database.
type QueryClient interface {
	// Query fetches every document of the collection together with the
	// documents referenced by its include paths.
	// A non-empty etag is sent as a conditional hint; when the remote state
	// is unchanged the result may carry no documents, but its Etag is always set.
	Query(ctx context.Context, database string, collection domain.Collection, etag string) (*domain.QueryResult, error)
}
