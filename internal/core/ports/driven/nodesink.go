package driven

import (
	"context"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// NodeSink consumes the nodes built from a collection's documents.
type NodeSink interface {
	// CreateNode hands one node to the downstream consumer.
	CreateNode(ctx context.Context, node domain.Node) error
}
