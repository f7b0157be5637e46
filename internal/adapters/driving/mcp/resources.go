package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for brandlens resources.
	uriScheme = "brandlens://"

	referencesURI = uriScheme + "references"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Library == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         referencesURI,
		Name:        "references",
		Description: "All reference images in the brand library",
		MIMEType:    "application/json",
	}, s.handleReferencesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: referencesURI + "/{id}",
		Name:        "reference",
		Description: "A single reference image with its fingerprint",
		MIMEType:    "application/json",
	}, s.handleReferenceResource)
}

// handleReferencesResource returns the whole library.
func (s *Server) handleReferencesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}

	infos := make([]ReferenceOutput, len(entries))
	for i := range entries {
		infos[i] = referenceOutput(&entries[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleReferenceResource returns one reference.
func (s *Server) handleReferenceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractReferenceID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry, err := s.ports.Library.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting reference: %w", err)
	}
	return jsonResource(req.Params.URI, entry)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
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

// extractReferenceID extracts the ID from a URI like brandlens://references/{id}.
func extractReferenceID(uri string) string {
	const prefix = referencesURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
