package driven

import (
	"context"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// ReferenceStore persists reference images.
// Writes are serialised by the implementation; a returned record is durable.
type ReferenceStore interface {
	CandidateSource

	// Add validates the fields, assigns an ID and timestamps, and persists
	// the record. Returns domain.ErrValidation for a missing or malformed
	// fingerprint.
	Add(ctx context.Context, fields domain.ReferenceFields) (*domain.ReferenceImage, error)

	// Get retrieves a reference by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.ReferenceImage, error)

	// Delete removes a reference and returns it.
	// Returns (nil, nil) when the ID does not exist.
	Delete(ctx context.Context, id string) (*domain.ReferenceImage, error)

	// Close releases underlying resources.
	Close() error
}

// Purger is implemented by stores that keep deleted rows around until
// they are explicitly purged.
type Purger interface {
	// Purge permanently removes deleted references and returns how many
	// were removed.
	Purge(ctx context.Context) (int64, error)
}

// CandidateSource supplies the references a search scores.
// The store's full listing is the only implementation; a bucketed
// nearest-neighbour index would slot in here for libraries that outgrow a
// linear scan.
type CandidateSource interface {
	// List returns all references ordered by CreatedAt descending.
	List(ctx context.Context) ([]domain.ReferenceImage, error)
}
