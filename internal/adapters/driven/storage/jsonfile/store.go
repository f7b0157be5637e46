// Package jsonfile stores the reference library as a single JSON array
// document.
//
// Every write re-reads the document, applies the change and replaces the
// file atomically (temp file, fsync, rename). A document that cannot be
// parsed is reset to an empty library and the reset is logged.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ReferenceStore = (*Store)(nil)

// FileName is the library document name inside the data directory.
const FileName = "reference-images.json"

// Store is a JSON document backed reference store.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore creates a store in dataDir, creating the directory and an empty
// library document if needed. If dataDir is empty, defaults to
// ~/.brandlens/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".brandlens", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		path: filepath.Join(dataDir, FileName),
		now:  time.Now,
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := s.write([]domain.ReferenceImage{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the library document path.
func (s *Store) Path() string {
	return s.path
}

// Add validates and appends a new reference.
func (s *Store) Add(_ context.Context, fields domain.ReferenceFields) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := fields.Build(uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}

	refs, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := s.write(append(refs, ref)); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Get retrieves a reference by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].ID == id {
			return &refs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all references, newest first.
func (s *Store) List(_ context.Context) ([]domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.read()
	if err != nil {
		return nil, err
	}

	// Document order is insertion order; reverse it so that stable sorting
	// puts the latest insert first among equal timestamps.
	for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
		refs[i], refs[j] = refs[j], refs[i]
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].CreatedAt.After(refs[j].CreatedAt)
	})
	return refs, nil
}

// Delete removes a reference and returns it, or (nil, nil) if absent.
func (s *Store) Delete(_ context.Context, id string) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].ID != id {
			continue
		}
		removed := refs[i]
		if err := s.write(append(refs[:i:i], refs[i+1:]...)); err != nil {
			return nil, err
		}
		return &removed, nil
	}
	return nil, nil
}

// Close is a no-op; every write is already durable.
func (s *Store) Close() error {
	return nil
}

// read loads the document (caller must hold lock). A missing document is
// an empty library; an unparsable one is reset.
func (s *Store) read() ([]domain.ReferenceImage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.ReferenceImage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrStorage, s.path, err)
	}

	var refs []domain.ReferenceImage
	if err := json.Unmarshal(data, &refs); err != nil {
		logger.Warn("Reference library %s is corrupt (%v); resetting to an empty library", s.path, err)
		refs = []domain.ReferenceImage{}
		if werr := s.write(refs); werr != nil {
			return nil, werr
		}
		return refs, nil
	}
	if refs == nil {
		refs = []domain.ReferenceImage{}
	}
	return refs, nil
}

// write atomically replaces the document (caller must hold lock).
func (s *Store) write(refs []domain.ReferenceImage) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding library: %w", domain.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".reference-images-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: writing library: %w", domain.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: syncing library: %w", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: closing library: %w", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: replacing library: %w", domain.ErrStorage, err)
	}
	return nil
}
