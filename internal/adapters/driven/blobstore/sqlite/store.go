// Package sqlite provides a SQLite-backed blob store. Document bytes and
// their typed metadata live in a single table; SQL migrations are
// embedded and applied on open.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragstack/internal/adapters/driven/blobstore/sqlite/migrations"
	"github.com/custodia-labs/ragstack/internal/core/domain"
	"github.com/custodia-labs/ragstack/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store is a SQLite-backed blob store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite blob store at the specified data
// directory. If dataDir is empty, defaults to ~/.ragstack/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragstack", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "blobs.db")

	// WAL mode: uploads and loader metadata updates run concurrently.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
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

// Put stores the blob and its metadata, replacing any existing entry.
func (s *Store) Put(ctx context.Context, key string, data []byte, meta domain.BlobMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, data, filename, size, indexing_status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			filename = excluded.filename,
			size = excluded.size,
			indexing_status = excluded.indexing_status,
			updated_at = CURRENT_TIMESTAMP
	`, key, data, meta.Filename, meta.Size, string(meta.IndexingStatus))
	if err != nil {
		return fmt.Errorf("putting blob %s: %w", key, err)
	}
	return nil
}

// Get returns the blob bytes and metadata for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, domain.BlobMetadata, error) {
	var (
		data   []byte
		meta   domain.BlobMetadata
		status string
	)
	row := s.db.QueryRowContext(ctx,
		"SELECT data, filename, size, indexing_status FROM blobs WHERE key = ?", key)
	if err := row.Scan(&data, &meta.Filename, &meta.Size, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.BlobMetadata{}, fmt.Errorf("getting blob %s: %w", key, domain.ErrBlobNotFound)
		}
		return nil, domain.BlobMetadata{}, fmt.Errorf("getting blob %s: %w", key, err)
	}
	meta.IndexingStatus = domain.IndexingStatus(status)
	return data, meta, nil
}

// HeadMetadata returns only the metadata for key.
func (s *Store) HeadMetadata(ctx context.Context, key string) (domain.BlobMetadata, error) {
	var (
		meta   domain.BlobMetadata
		status string
	)
	row := s.db.QueryRowContext(ctx,
		"SELECT filename, size, indexing_status FROM blobs WHERE key = ?", key)
	if err := row.Scan(&meta.Filename, &meta.Size, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BlobMetadata{}, fmt.Errorf("heading blob %s: %w", key, domain.ErrBlobNotFound)
		}
		return domain.BlobMetadata{}, fmt.Errorf("heading blob %s: %w", key, err)
	}
	meta.IndexingStatus = domain.IndexingStatus(status)
	return meta, nil
}

// UpdateMetadata replaces the metadata for key, leaving the bytes alone.
func (s *Store) UpdateMetadata(ctx context.Context, key string, meta domain.BlobMetadata) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE blobs
		SET filename = ?, size = ?, indexing_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE key = ?
	`, meta.Filename, meta.Size, string(meta.IndexingStatus), key)
	if err != nil {
		return fmt.Errorf("updating blob %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating blob %s: %w", key, err)
	}
	if affected == 0 {
		return fmt.Errorf("updating blob %s: %w", key, domain.ErrBlobNotFound)
	}
	return nil
}

// Delete removes the blob and its metadata.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	if affected == 0 {
		return fmt.Errorf("deleting blob %s: %w", key, domain.ErrBlobNotFound)
	}
	return nil
}

// List returns all stored keys in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM blobs ORDER BY created_at, key")
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("listing blobs: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	return keys, nil
}

// migrate runs all pending migrations.
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
