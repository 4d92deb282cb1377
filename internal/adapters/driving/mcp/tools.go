package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// CollectInput is the input schema for the collect_documents tool.
type CollectInput struct {
	Collection string `json:"collection" jsonschema:"collection name or node to collect"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 50, max 500)"`
	Offset     int    `json:"offset,omitempty" jsonschema:"number of documents to skip"`
}

// CollectOutput is the output schema for the collect_documents tool.
type CollectOutput struct {
	Collection string           `json:"collection"`
	Total      int              `json:"total"`
	Count      int              `json:"count"`
	Documents  []map[string]any `json:"documents"`
}

// CacheInput is the input schema for the inspect_cache tool.
type CacheInput struct {
	Node string `json:"node" jsonschema:"collection node whose cache to inspect"`
}

// CacheOutput is the output schema for the inspect_cache tool.
type CacheOutput struct {
	Node          string `json:"node"`
	Cached        bool   `json:"cached"`
	Etag          string `json:"etag,omitempty"`
	DocumentCount int    `json:"document_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "collect_documents",
		Description: "Collect the documents of a configured collection with their includes resolved",
	}, s.handleCollect)

	if s.ports.Cache != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "inspect_cache",
			Description: "Show the cached etag and document count of a collection node",
		}, s.handleInspectCache)
	}
}

// handleCollect handles the collect_documents tool invocation.
func (s *Server) handleCollect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CollectInput,
) (*mcp.CallToolResult, CollectOutput, error) {
	if input.Collection == "" {
		return nil, CollectOutput{}, errors.New("collection is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	offset := max(input.Offset, 0)

	docs, err := s.ports.Source.Collect(ctx, input.Collection)
	if err != nil {
		return nil, CollectOutput{}, fmt.Errorf("collecting %s: %w", input.Collection, err)
	}

	output := CollectOutput{
		Collection: input.Collection,
		Total:      len(docs),
		Documents:  []map[string]any{},
	}
	for _, doc := range page(docs, offset, limit) {
		output.Documents = append(output.Documents, map[string]any(doc))
	}
	output.Count = len(output.Documents)

	return nil, output, nil
}

// handleInspectCache handles the inspect_cache tool invocation.
func (s *Server) handleInspectCache(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CacheInput,
) (*mcp.CallToolResult, CacheOutput, error) {
	if input.Node == "" {
		return nil, CacheOutput{}, errors.New("node is required")
	}

	entry, err := s.ports.Cache.Inspect(ctx, input.Node)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, CacheOutput{Node: input.Node}, nil
	}
	if err != nil {
		return nil, CacheOutput{}, fmt.Errorf("inspecting cache: %w", err)
	}

	return nil, CacheOutput{
		Node:          entry.Node,
		Cached:        true,
		Etag:          entry.Etag,
		DocumentCount: entry.DocumentCount,
	}, nil
}

func page(docs domain.Batch, offset, limit int) domain.Batch {
	if offset >= len(docs) {
		return nil
	}
	end := min(offset+limit, len(docs))
	return docs[offset:end]
}
