package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrPathConflict is returned by Tx.InsertFile when the path is already owned
// by a catalog row (UNIQUE constraint on files.path).
var ErrPathConflict = errors.New("path already owned by the catalog")

// ErrNotFound is returned when a named package has no catalog row.
var ErrNotFound = errors.New("package not found in catalog")

// Store is the persistent catalog of installed packages and the files they
// own. It is the single source of truth for ownership: a path on disk without
// a catalog row is untracked.
type Store struct {
	db *sql.DB
}

// Open opens the catalog at the given path, creating the schema if absent.
// Use ":memory:" for in-memory catalogs (useful for testing).
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the catalog connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// isUniquePathErr reports whether the driver error is the UNIQUE violation on
// files.path. modernc.org/sqlite surfaces constraint failures as text, so the
// message is matched directly.
func isUniquePathErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: files.path")
}
