package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// FingerprintService computes fingerprints locally, for client side
// extraction in the CLI and MCP tools.
type FingerprintService interface {
	// Fingerprint computes the fingerprint of an encoded image.
	Fingerprint(ctx context.Context, r io.Reader) (*domain.Fingerprint, error)

	// FingerprintFile computes the fingerprint of the image at path.
	FingerprintFile(ctx context.Context, path string) (*domain.Fingerprint, error)
}
