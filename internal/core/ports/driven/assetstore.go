package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// AssetStore persists the binary files behind reference images.
// File names are generated, so concurrent saves never collide.
type AssetStore interface {
	// Save writes the asset under a generated name that keeps the
	// original file extension.
	Save(ctx context.Context, originalName string, r io.Reader) (*domain.StoredAsset, error)

	// Remove deletes an asset. Removing a missing asset is not an error.
	Remove(ctx context.Context, fileName string) error

	// URL returns the public path of an asset.
	URL(fileName string) string
}
