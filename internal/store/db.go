package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotInitialized is returned by every operation invoked before
	// Initialize has opened the backing database.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrBackupSourceMissing is returned by Backup when there is no
	// database file on disk to copy.
	ErrBackupSourceMissing = errors.New("backup: no database file exists")
)

// Store is the durable home of repositories currently classified stale.
// It owns the persisted copy exclusively; callers hold transient views.
// Single writer only — concurrent writers against the same path are
// undefined behavior.
type Store struct {
	db   *sql.DB
	path string
}

// New returns an uninitialized Store. Initialize must be called before any
// other operation.
func New() *Store {
	return &Store{}
}

// DefaultDBPath returns the default database path: ~/.stalewatch/stalewatch.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".stalewatch", "stalewatch.db"), nil
}

// Initialize opens (or creates) the SQLite database at the given path,
// creating parent directories as needed, then configures pragmas and runs
// migrations. ":memory:" is accepted for tests. Calling Initialize on an
// already-open store is a no-op.
func (s *Store) Initialize(path string) error {
	if s.db != nil {
		return nil
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	s.db = sqlDB
	s.path = path
	if err := s.configurePragmas(); err != nil {
		sqlDB.Close()
		s.db = nil
		return err
	}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		s.db = nil
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Path returns the path the store was initialized with.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle. Safe to call multiple times.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ready guards every operation against use before Initialize.
func (s *Store) ready() error {
	if s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
