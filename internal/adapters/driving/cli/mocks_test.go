package cli

import (
	"context"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

// stubLibrary is an empty driving.LibraryService.
type stubLibrary struct{}

func (stubLibrary) List(context.Context) ([]domain.ReferenceEntry, error) {
	return nil, nil
}

func (stubLibrary) Get(context.Context, string) (*domain.ReferenceEntry, error) {
	return nil, domain.ErrNotFound
}

func (stubLibrary) Add(context.Context, driving.AddReferenceRequest) (*domain.ReferenceEntry, error) {
	return nil, domain.ErrStorage
}

func (stubLibrary) Delete(context.Context, string) (*domain.ReferenceImage, error) {
	return nil, nil
}

func (stubLibrary) Purge(context.Context) (int64, error) {
	return 0, nil
}
