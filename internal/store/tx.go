package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Tx wraps a catalog transaction. All mutations for one install batch run on
// a single Tx so readers never observe a partial package.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a catalog transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// GetPackage retrieves a package row as seen by this transaction, including
// rows inserted earlier in the same batch. Returns ErrNotFound when absent.
func (t *Tx) GetPackage(name string) (*Package, error) {
	return getPackage(t.tx, name)
}

// FileOwner returns the owning package of a catalog path as seen by this
// transaction, or "" when untracked.
func (t *Tx) FileOwner(path string) (string, error) {
	return fileOwner(t.tx, path)
}

// InsertPackage inserts a package row.
func (t *Tx) InsertPackage(pkg *Package) error {
	_, err := t.tx.Exec(`
		INSERT INTO packages (name, version, maintainer, deps)
		VALUES (?, ?, ?, ?)
	`, pkg.Name, pkg.Version, pkg.Maintainer, pkg.Deps)
	if err != nil {
		return fmt.Errorf("failed to insert package %s: %w", pkg.Name, err)
	}
	return nil
}

// InsertFile inserts a file row. Returns ErrPathConflict when the path is
// already owned by another row.
func (t *Tx) InsertFile(f *File) error {
	_, err := t.tx.Exec(`
		INSERT INTO files (owner, hash, path, kind, mode)
		VALUES (?, ?, ?, ?, ?)
	`, f.Owner, f.Hash, f.Path, f.Kind, f.Mode)
	if isUniquePathErr(err) {
		return fmt.Errorf("insert %s: %w", f.Path, ErrPathConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Calling it after Commit is a no-op, so it
// is safe to defer.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back catalog transaction: %w", err)
	}
	return nil
}
