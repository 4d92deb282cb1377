// Package jsonl writes nodes as JSON lines, one record per node.
//
// Each record holds the document's own fields followed by the node
// bookkeeping fields:
//
//	{..., "_id": "<document id>", "id": "<node id>", "parent": null,
//	 "children": [], "internal": {"type": ..., "content": ..., "contentDigest": ...}}
//
// Bookkeeping fields win over document fields of the same name.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// Sink writes one JSON line per node to an io.Writer.
type Sink struct {
	mu    sync.Mutex
	enc   *json.Encoder
	count int
}

var _ driven.NodeSink = (*Sink)(nil)

// NewSink creates a sink writing to w.
func NewSink(w io.Writer) *Sink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Sink{enc: enc}
}

// CreateNode writes the node record.
func (s *Sink) CreateNode(ctx context.Context, node domain.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record := Record(node)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("write node %s: %w", node.Key, err)
	}
	s.count++
	return nil
}

// Count returns the number of nodes written.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Record returns the output record for a node.
func Record(node domain.Node) map[string]any {
	record := make(map[string]any, len(node.Fields)+5)
	for k, v := range node.Fields {
		record[k] = v
	}
	record["_id"] = node.DocumentID
	record["id"] = node.ID
	record["parent"] = nil
	record["children"] = []string{}
	record["internal"] = map[string]any{
		"type":          node.Type,
		"content":       node.Content,
		"contentDigest": node.ContentDigest,
	}
	return record
}
