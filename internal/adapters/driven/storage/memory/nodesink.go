package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// Ensure NodeSink implements the interface.
var _ driven.NodeSink = (*NodeSink)(nil)

// NodeSink is an in-memory implementation of driven.NodeSink.
// It keeps nodes in creation order.
type NodeSink struct {
	mu    sync.RWMutex
	nodes []domain.Node
}

// NewNodeSink creates a new in-memory node sink.
func NewNodeSink() *NodeSink {
	return &NodeSink{}
}

// CreateNode records the node.
func (s *NodeSink) CreateNode(_ context.Context, node domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, node)
	return nil
}

// Nodes returns the recorded nodes in creation order.
func (s *NodeSink) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Reset forgets all recorded nodes.
func (s *NodeSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
}
