package domain

import (
	"fmt"
	"path/filepath"
)

const unknownDescription = "Unknown"

// StorageBackend selects the reference library store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists references in an embedded SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageJSON persists references in a single JSON document.
	StorageJSON StorageBackend = "json"

	// StorageMemory keeps references in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageJSON, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (embedded database)"
	case StorageJSON:
		return "JSON document"
	case StorageMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageJSON, StorageMemory}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend selects the reference store implementation.
	Backend StorageBackend

	// DataDir holds the reference database or JSON document.
	DataDir string

	// AssetDir holds uploaded binary assets. Defaults to a directory
	// beneath DataDir.
	AssetDir string
}

// ResolvedAssetDir returns AssetDir, or the default location beneath DataDir.
func (s StorageSettings) ResolvedAssetDir() string {
	if s.AssetDir != "" {
		return s.AssetDir
	}
	return filepath.Join(s.DataDir, "uploads", "reference-images")
}

// FingerprintSettings holds extractor configuration.
type FingerprintSettings struct {
	// GridSize is the side length of the downsampling grid.
	GridSize int
}

// SearchSettings holds defaults applied when a caller omits a parameter.
type SearchSettings struct {
	// MinSimilarity is the default similarity threshold.
	MinSimilarity float64

	// Limit is the default number of matches.
	Limit int
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RequestsPerSecond is the sustained request rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the maximum request burst.
	Burst int

	// MaxUploadMB bounds the size of an uploaded reference image.
	MaxUploadMB int
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerSettings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// LibrarySettings holds indexing behaviour.
type LibrarySettings struct {
	// VerifyFingerprints recomputes fingerprints from uploaded bytes instead
	// of trusting the value supplied by the client.
	VerifyFingerprints bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage     StorageSettings
	Fingerprint FingerprintSettings
	Search      SearchSettings
	Server      ServerSettings
	Library     LibrarySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// DataDir is left empty; adapters resolve it to ~/.brandlens/data.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Fingerprint: FingerprintSettings{
			GridSize: DefaultGridSize,
		},
		Search: SearchSettings{
			MinSimilarity: 0,
			Limit:         DefaultSearchLimit,
		},
		Server: ServerSettings{
			Addr:              ":8080",
			RequestsPerSecond: 20,
			Burst:             40,
			MaxUploadMB:       10,
		},
	}
}

// Validate checks that the settings are usable.
func (s AppSettings) Validate() error {
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage.Backend)
	}
	if s.Fingerprint.GridSize < MinGridSize || s.Fingerprint.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid size must be between %d and %d", ErrInvalidInput, MinGridSize, MaxGridSize)
	}
	if s.Search.MinSimilarity < 0 || s.Search.MinSimilarity > 1 {
		return fmt.Errorf("%w: min similarity must be between 0 and 1", ErrInvalidInput)
	}
	if s.Search.Limit < 1 || s.Search.Limit > MaxSearchLimit {
		return fmt.Errorf("%w: search limit must be between 1 and %d", ErrInvalidInput, MaxSearchLimit)
	}
	if s.Server.RequestsPerSecond < 0 || s.Server.Burst < 0 {
		return fmt.Errorf("%w: rate limit values must not be negative", ErrInvalidInput)
	}
	if s.Server.MaxUploadMB < 1 {
		return fmt.Errorf("%w: max upload size must be at least 1 MB", ErrInvalidInput)
	}
	return nil
}
