package store

import (
	"database/sql"
	"fmt"
)

// GetPackage retrieves a package row by name. Returns ErrNotFound when the
// package is not installed.
func (s *Store) GetPackage(name string) (*Package, error) {
	return getPackage(s.db, name)
}

// ListPackages returns catalog packages whose name matches the SQL LIKE
// pattern. An empty pattern lists every package.
func (s *Store) ListPackages(pattern string) ([]*Package, error) {
	query := `
		SELECT name, version, maintainer, deps
		FROM packages
		ORDER BY name
	`
	args := []any{}
	if pattern != "" {
		query = `
			SELECT name, version, maintainer, deps
			FROM packages
			WHERE name LIKE ?
			ORDER BY name
		`
		args = append(args, pattern)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*Package
	for rows.Next() {
		var pkg Package
		if err := rows.Scan(&pkg.Name, &pkg.Version, &pkg.Maintainer, &pkg.Deps); err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		packages = append(packages, &pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}

	return packages, nil
}

// ListPackageFiles returns the file rows owned by a package, in path order.
func (s *Store) ListPackageFiles(name string) ([]*File, error) {
	query := `
		SELECT owner, hash, path, kind, COALESCE(mode, '')
		FROM files
		WHERE owner = ?
		ORDER BY path
	`

	rows, err := s.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for %s: %w", name, err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Owner, &f.Hash, &f.Path, &f.Kind, &f.Mode); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files for %s: %w", name, err)
	}

	return files, nil
}

// FileOwner returns the name of the package owning the given catalog path, or
// the empty string when the path is untracked.
func (s *Store) FileOwner(path string) (string, error) {
	return fileOwner(s.db, path)
}

// DeletePackage removes the package row and all of its file rows in one
// transaction. Returns ErrNotFound when the package is not installed.
func (s *Store) DeletePackage(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete of %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files WHERE owner = ?`, name); err != nil {
		return fmt.Errorf("failed to delete files of %s: %w", name, err)
	}

	result, err := tx.Exec(`DELETE FROM packages WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete package %s: %w", name, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete %s: %w", name, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of %s: %w", name, err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so lookups can run inside
// or outside an open install transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getPackage(q querier, name string) (*Package, error) {
	query := `
		SELECT name, version, maintainer, deps
		FROM packages
		WHERE name = ?
	`

	var pkg Package
	err := q.QueryRow(query, name).Scan(&pkg.Name, &pkg.Version, &pkg.Maintainer, &pkg.Deps)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", name, err)
	}
	return &pkg, nil
}

func fileOwner(q querier, path string) (string, error) {
	var owner string
	err := q.QueryRow(`SELECT owner FROM files WHERE path = ?`, path).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up owner of %s: %w", path, err)
	}
	return owner, nil
}
