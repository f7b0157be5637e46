package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
)

// Ensure ReferenceStore implements the interface.
var _ driven.ReferenceStore = (*ReferenceStore)(nil)

// ReferenceStore is an in-memory implementation of driven.ReferenceStore.
// Contents are lost when the process exits.
type ReferenceStore struct {
	mu   sync.RWMutex
	refs []domain.ReferenceImage // insertion order
	now  func() time.Time
}

// NewReferenceStore creates a new in-memory reference store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{now: time.Now}
}

// Add validates and stores a new reference.
func (s *ReferenceStore) Add(_ context.Context, fields domain.ReferenceFields) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := fields.Build(uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}
	s.refs = append(s.refs, ref)

	out := clone(ref)
	return &out, nil
}

// Get retrieves a reference by ID.
func (s *ReferenceStore) Get(_ context.Context, id string) (*domain.ReferenceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.refs {
		if s.refs[i].ID == id {
			out := clone(s.refs[i])
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all references, newest first. References created at the
// same instant are returned most recently inserted first.
func (s *ReferenceStore) List(_ context.Context) ([]domain.ReferenceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ReferenceImage, len(s.refs))
	for i := range s.refs {
		out[len(s.refs)-1-i] = clone(s.refs[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a reference and returns it, or (nil, nil) if absent.
func (s *ReferenceStore) Delete(_ context.Context, id string) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.refs {
		if s.refs[i].ID == id {
			removed := s.refs[i]
			s.refs = append(s.refs[:i], s.refs[i+1:]...)
			return &removed, nil
		}
	}
	return nil, nil
}

// Close is a no-op for the memory store.
func (s *ReferenceStore) Close() error {
	return nil
}

// clone copies the slice and pointer fields so callers cannot mutate
// stored records.
func clone(ref domain.ReferenceImage) domain.ReferenceImage {
	ref.Tags = append([]string{}, ref.Tags...)
	if ref.UploadedBy != nil {
		p := *ref.UploadedBy
		ref.UploadedBy = &p
	}
	return ref
}
