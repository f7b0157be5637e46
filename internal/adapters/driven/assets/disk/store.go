// Package disk stores reference image binaries in a local directory.
package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AssetStore = (*Store)(nil)

// URLPrefix is the public path under which assets are served.
const URLPrefix = "/uploads/reference-images/"

// Store writes assets as <uuid><ext> files.
type Store struct {
	dir string
}

// NewStore creates the asset directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: asset directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the asset directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams r into a temp file and renames it to a fresh name that keeps
// the lower-cased extension of originalName.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (*domain.StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %w", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	size, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("%w: writing asset: %w", domain.ErrStorage, err)
	}

	name := uuid.NewString() + extension(originalName)
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("%w: storing asset: %w", domain.ErrStorage, err)
	}

	return &domain.StoredAsset{FileName: name, Size: size}, nil
}

// Remove deletes an asset. Removing an absent asset is not an error.
func (s *Store) Remove(_ context.Context, fileName string) error {
	full, err := s.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: removing asset: %w", domain.ErrStorage, err)
	}
	return nil
}

// URL returns the public URL of an asset.
func (s *Store) URL(fileName string) string {
	return URLPrefix + fileName
}

// resolve maps a bare file name to its path, rejecting anything that could
// escape the asset directory.
func (s *Store) resolve(fileName string) (string, error) {
	if fileName == "" || fileName != path.Base(fileName) || fileName != filepath.Base(fileName) ||
		fileName == "." || fileName == ".." || strings.ContainsAny(fileName, `/\`) {
		return "", fmt.Errorf("%w: invalid asset name %q", domain.ErrInvalidInput, fileName)
	}
	return filepath.Join(s.dir, fileName), nil
}

// extension returns the lower-cased extension of name, limited to simple
// alphanumeric suffixes.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
