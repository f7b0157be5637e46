package mcp

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

// SearchInput is the input schema for the search_fingerprint tool.
type SearchInput struct {
	Fingerprint   string   `json:"fingerprint,omitempty" jsonschema:"hex fingerprint to match"`
	ImagePath     string   `json:"image_path,omitempty" jsonschema:"local image to fingerprint and match instead of a fingerprint"`
	Algorithm     string   `json:"algorithm,omitempty" jsonschema:"fingerprint algorithm (default ahash)"`
	Length        int      `json:"length,omitempty" jsonschema:"declared fingerprint length in hex digits"`
	MinSimilarity *float64 `json:"min_similarity,omitempty" jsonschema:"minimum similarity between 0 and 1"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum number of matches (1-50, default 10)"`
}

// SearchOutput is the output schema for the search_fingerprint tool.
type SearchOutput struct {
	Fingerprint string        `json:"fingerprint"`
	Algorithm   string        `json:"algorithm"`
	Matches     []MatchOutput `json:"matches"`
	Count       int           `json:"count"`
	Evaluated   int           `json:"evaluated"`
}

// MatchOutput represents a single match.
type MatchOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
	AssetURL   string   `json:"asset_url,omitempty"`
	Similarity float64  `json:"similarity"`
	Distance   int      `json:"distance"`
}

// FingerprintInput is the input schema for the fingerprint_image tool.
type FingerprintInput struct {
	Path string `json:"path" jsonschema:"path of a local image file"`
}

// FingerprintOutput is the output schema for the fingerprint_image tool.
type FingerprintOutput struct {
	Fingerprint string `json:"fingerprint"`
	Algorithm   string `json:"algorithm"`
	Length      int    `json:"length"`
	GridSize    int    `json:"grid_size"`
}

// ListInput is the input schema for the list_references tool.
type ListInput struct {
	Tag   string `json:"tag,omitempty" jsonschema:"only return references carrying this tag"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of references to return"`
}

// ListOutput is the output schema for the list_references tool.
type ListOutput struct {
	References []ReferenceOutput `json:"references"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
}

// ReferenceOutput summarises a reference image.
type ReferenceOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags,omitempty"`
	Fingerprint string   `json:"fingerprint"`
	Algorithm   string   `json:"algorithm"`
	AssetURL    string   `json:"asset_url,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_fingerprint",
		Description: "Find reference brand images visually similar to a fingerprint or a local image",
	}, s.handleSearch)

	if s.ports.Fingerprint != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "fingerprint_image",
			Description: "Compute the perceptual fingerprint of a local image file",
		}, s.handleFingerprint)
	}

	if s.ports.Library != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_references",
			Description: "List reference images in the brand library, newest first",
		}, s.handleList)
	}
}

// handleSearch handles the search_fingerprint tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := driving.SearchRequest{
		Fingerprint: strings.TrimSpace(input.Fingerprint),
		Algorithm:   input.Algorithm,
	}

	if req.Fingerprint == "" {
		if input.ImagePath == "" {
			return nil, SearchOutput{}, ErrNoQuery
		}
		if s.ports.Fingerprint == nil {
			return nil, SearchOutput{}, ErrNoFingerprintService
		}
		fp, err := s.ports.Fingerprint.FingerprintFile(ctx, input.ImagePath)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		req.Fingerprint = fp.Hex
		req.Algorithm = fp.Algorithm
	}
	if input.Length > 0 {
		req.Length = strconv.Itoa(input.Length)
	}
	if input.MinSimilarity != nil {
		req.MinSimilarity = strconv.FormatFloat(*input.MinSimilarity, 'f', -1, 64)
	}
	if input.Limit != 0 {
		req.Limit = strconv.Itoa(input.Limit)
	}

	resp, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Fingerprint: resp.Query.Fingerprint,
		Algorithm:   resp.Query.Algorithm,
		Matches:     make([]MatchOutput, len(resp.Matches)),
		Count:       len(resp.Matches),
		Evaluated:   resp.Summary.Evaluated,
	}
	for i := range resp.Matches {
		m := &resp.Matches[i]
		output.Matches[i] = MatchOutput{
			ID:         m.ID,
			Title:      m.Title,
			Tags:       m.Tags,
			SourceURL:  m.SourceURL,
			AssetURL:   m.AssetURL,
			Similarity: m.Similarity,
			Distance:   m.Distance,
		}
	}

	return nil, output, nil
}

// handleFingerprint handles the fingerprint_image tool invocation.
func (s *Server) handleFingerprint(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FingerprintInput,
) (*mcp.CallToolResult, FingerprintOutput, error) {
	fp, err := s.ports.Fingerprint.FingerprintFile(ctx, input.Path)
	if err != nil {
		return nil, FingerprintOutput{}, err
	}
	return nil, FingerprintOutput{
		Fingerprint: fp.Hex,
		Algorithm:   fp.Algorithm,
		Length:      fp.Length,
		GridSize:    fp.Size,
	}, nil
}

// handleList handles the list_references tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	entries, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{References: []ReferenceOutput{}, Total: len(entries)}
	for i := range entries {
		if input.Tag != "" && !entries[i].HasTag(input.Tag) {
			continue
		}
		if input.Limit > 0 && len(output.References) >= input.Limit {
			break
		}
		output.References = append(output.References, referenceOutput(&entries[i]))
	}
	output.Count = len(output.References)

	return nil, output, nil
}

func referenceOutput(e *domain.ReferenceEntry) ReferenceOutput {
	return ReferenceOutput{
		ID:          e.ID,
		Title:       e.Title,
		Tags:        e.Tags,
		Fingerprint: e.Fingerprint,
		Algorithm:   e.FingerprintAlgorithm,
		AssetURL:    e.AssetURL,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
