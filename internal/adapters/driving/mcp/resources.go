package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ravensource resources.
	uriScheme = "raven://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "List of all configured collections",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{node}/documents",
		Name:        "collection-documents",
		Description: "Resolved documents of a collection",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// collectionInfo is one entry of the collections resource.
type collectionInfo struct {
	Name     string   `json:"name"`
	Node     string   `json:"node"`
	Includes []string `json:"includes"`
	Cached   bool     `json:"cached"`
	Etag     string   `json:"etag,omitempty"`
	URI      string   `json:"uri"`
}

// handleCollectionsResource returns the configured collections.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collections := s.ports.Source.Collections()

	infos := make([]collectionInfo, len(collections))
	for i, col := range collections {
		includes := col.Includes
		if includes == nil {
			includes = []string{}
		}
		infos[i] = collectionInfo{
			Name:     col.Name,
			Node:     col.NodeName(),
			Includes: includes,
			URI:      uriScheme + "collections/" + col.NodeName() + "/documents",
		}

		if s.ports.Cache == nil {
			continue
		}
		entry, err := s.ports.Cache.Inspect(ctx, col.NodeName())
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("inspecting cache for %s: %w", col.NodeName(), err)
		default:
			infos[i].Cached = true
			infos[i].Etag = entry.Etag
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleDocumentsResource returns the resolved documents of one collection.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// raven://collections/{node}/documents
	node := extractNode(req.Params.URI)
	if node == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Source.Collect(ctx, node)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("collecting documents: %w", err)
	}

	return jsonResult(req.Params.URI, docs)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractNode extracts the node from a URI like raven://collections/{node}/documents.
func extractNode(uri string) string {
	const prefix = uriScheme + "collections/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
