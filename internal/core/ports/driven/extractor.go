package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// FingerprintExtractor derives a perceptual fingerprint from image bytes.
type FingerprintExtractor interface {
	// Extract reads r to completion and fingerprints the decoded image.
	Extract(ctx context.Context, r io.Reader) (*domain.Fingerprint, error)

	// ExtractFile fingerprints the image at path.
	ExtractFile(ctx context.Context, path string) (*domain.Fingerprint, error)

	// Algorithm returns the tag of fingerprints this extractor produces.
	Algorithm() string
}
