package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// UploadedAsset is the binary half of an add request, as yielded by an
// upload handler.
type UploadedAsset struct {
	// Reader supplies the asset bytes.
	Reader io.Reader

	// OriginalName is the client file name; its extension is preserved.
	OriginalName string

	// MimeType is the declared content type.
	MimeType string

	// Size is the declared size in bytes, if known.
	Size int64
}

// AddReferenceRequest carries a new reference image.
// The fingerprint is computed by the caller; FingerprintLength is a string
// for the same reason as SearchRequest's numeric fields.
type AddReferenceRequest struct {
	Asset                *UploadedAsset
	Title                string
	Description          string
	SourceURL            string
	Tags                 []string
	Fingerprint          string
	FingerprintAlgorithm string
	FingerprintLength    string
	UploadedBy           *domain.Principal
}

// LibraryService manages the reference library.
type LibraryService interface {
	// List returns all references, newest first.
	List(ctx context.Context) ([]domain.ReferenceEntry, error)

	// Get returns a single reference. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.ReferenceEntry, error)

	// Add indexes a new reference image. Either both the record and its
	// asset are persisted, or neither is.
	Add(ctx context.Context, req AddReferenceRequest) (*domain.ReferenceEntry, error)

	// Delete removes a reference and its asset.
	// Returns (nil, nil) when the ID does not exist.
	Delete(ctx context.Context, id string) (*domain.ReferenceImage, error)

	// Purge permanently removes deleted references from stores that keep
	// them. Returns 0 for stores that delete immediately.
	Purge(ctx context.Context) (int64, error)
}
