package mcp

import (
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search ranks the reference library against a fingerprint.
	Search driving.SearchService

	// Library lists and reads reference images.
	Library driving.LibraryService

	// Fingerprint computes fingerprints of local image files.
	Fingerprint driving.FingerprintService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Library and Fingerprint are optional; their tools degrade gracefully.
	return nil
}
