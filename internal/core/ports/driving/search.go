package driving

import (
	"context"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// SearchRequest carries search parameters as they arrive from a transport.
// Numeric fields are strings; parsing and clamping happen once inside the
// service so every adapter gets identical behaviour.
type SearchRequest struct {
	Fingerprint   string
	Algorithm     string
	Length        string
	MinSimilarity string
	Limit         string
}

// SearchService finds reference images similar to a fingerprint.
type SearchService interface {
	// Search ranks the reference library against the request.
	// Returns domain.ErrValidation for a missing or malformed fingerprint.
	Search(ctx context.Context, req SearchRequest) (*domain.SearchResponse, error)
}
