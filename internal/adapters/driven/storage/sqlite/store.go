package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var (
	_ driven.ReferenceStore = (*Store)(nil)
	_ driven.Purger         = (*Store)(nil)
)

// DatabaseFile is the file name of the library database inside the data
// directory.
const DatabaseFile = "library.db"

const referenceColumns = `id, title, description, source_url, tags, fingerprint,
	fingerprint_algorithm, fingerprint_length, file_name, mime_type, file_size,
	uploaded_by, created_at, updated_at`

// Store is a SQLite-based reference store.
type Store struct {
	db   *sql.DB
	path string

	// mu serialises writes.
	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.brandlens/data/library.db.
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

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations and records each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_reference_images.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, stmt string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(stmt); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// Add validates and inserts a new reference.
func (s *Store) Add(ctx context.Context, fields domain.ReferenceFields) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := fields.Build(uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}

	tagsJSON, err := json.Marshal(ref.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshalling tags: %w", err)
	}
	var uploadedBy sql.NullString
	if ref.UploadedBy != nil {
		b, err := json.Marshal(ref.UploadedBy)
		if err != nil {
			return nil, fmt.Errorf("marshalling principal: %w", err)
		}
		uploadedBy = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reference_images (`+referenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ref.ID, ref.Title, ref.Description, ref.SourceURL, string(tagsJSON), ref.Fingerprint,
		ref.FingerprintAlgorithm, ref.FingerprintLength, ref.FileName, ref.MimeType, ref.FileSize,
		uploadedBy, ref.CreatedAt.UnixNano(), ref.UpdatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("%w: inserting reference: %w", domain.ErrStorage, err)
	}

	return &ref, nil
}

// Get retrieves a live reference by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.ReferenceImage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_images WHERE id = ? AND deleted_at IS NULL
	`, id)
	return scanReference(row)
}

// List returns all live references, newest first.
func (s *Store) List(ctx context.Context) ([]domain.ReferenceImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_images WHERE deleted_at IS NULL
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying references: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	refs := []domain.ReferenceImage{}
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating references: %w", domain.ErrStorage, err)
	}
	return refs, nil
}

// Delete soft deletes a reference and returns it, or (nil, nil) if absent.
func (s *Store) Delete(ctx context.Context, id string) (*domain.ReferenceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE reference_images SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		s.now().UTC().UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: deleting reference: %w", domain.ErrStorage, err)
	}
	return ref, nil
}

// Purge permanently removes soft deleted rows and returns how many were
// removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM reference_images WHERE deleted_at IS NOT NULL")
	if err != nil {
		return 0, fmt.Errorf("%w: purging references: %w", domain.ErrStorage, err)
	}
	return res.RowsAffected()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReference(row rowScanner) (*domain.ReferenceImage, error) {
	var (
		ref                  domain.ReferenceImage
		tagsJSON             string
		uploadedBy           sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&ref.ID, &ref.Title, &ref.Description, &ref.SourceURL, &tagsJSON,
		&ref.Fingerprint, &ref.FingerprintAlgorithm, &ref.FingerprintLength,
		&ref.FileName, &ref.MimeType, &ref.FileSize, &uploadedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning reference: %w", domain.ErrStorage, err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &ref.Tags); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling tags of %s: %w", domain.ErrStorage, ref.ID, err)
	}
	if ref.Tags == nil {
		ref.Tags = []string{}
	}
	if uploadedBy.Valid {
		ref.UploadedBy = &domain.Principal{}
		if err := json.Unmarshal([]byte(uploadedBy.String), ref.UploadedBy); err != nil {
			return nil, fmt.Errorf("%w: unmarshalling principal of %s: %w", domain.ErrStorage, ref.ID, err)
		}
	}
	ref.CreatedAt = time.Unix(0, createdAt).UTC()
	ref.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return &ref, nil
}
