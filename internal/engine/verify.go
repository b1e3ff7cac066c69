package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/pkgforge/internal/integrity"
	"github.com/blackwell-systems/pkgforge/internal/store"
)

// DriftState classifies one owned file against its catalog record.
type DriftState string

const (
	DriftOK       DriftState = "ok"
	DriftModified DriftState = "modified"
	DriftMissing  DriftState = "missing"
)

// Drift is the verification result for one catalog file row.
type Drift struct {
	Owner string
	Path  string
	State DriftState
}

// Verify re-hashes every regular file owned by the named packages (all
// packages when names is empty) against the catalog and reports each file's
// state. It is the reconciliation view for installs whose materialization
// fell behind the catalog.
func (e *Engine) Verify(names []string) ([]Drift, error) {
	if len(names) == 0 {
		pkgs, err := e.store.ListPackages("")
		if err != nil {
			return nil, err
		}
		for _, pkg := range pkgs {
			names = append(names, pkg.Name)
		}
	}

	var report []Drift
	for _, name := range names {
		if _, err := e.store.GetPackage(name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrNotInstalled, name)
			}
			return nil, err
		}
		files, err := e.store.ListPackageFiles(name)
		if err != nil {
			return nil, err
		}
		for _, row := range files {
			if row.Kind != store.KindFile {
				continue
			}
			report = append(report, Drift{Owner: name, Path: row.Path, State: e.fileState(row)})
		}
	}
	return report, nil
}

// VerifyPath re-checks a single catalog path, e.g. after a filesystem event.
// Untracked paths return ok=false.
func (e *Engine) VerifyPath(path string) (Drift, bool, error) {
	owner, err := e.store.FileOwner(path)
	if err != nil {
		return Drift{}, false, err
	}
	if owner == "" {
		return Drift{}, false, nil
	}
	files, err := e.store.ListPackageFiles(owner)
	if err != nil {
		return Drift{}, false, err
	}
	for _, row := range files {
		if row.Path == path && row.Kind == store.KindFile {
			return Drift{Owner: owner, Path: path, State: e.fileState(row)}, true, nil
		}
	}
	return Drift{}, false, nil
}

func (e *Engine) fileState(row *store.File) DriftState {
	abs := filepath.Join(e.root, row.Path)
	if _, err := os.Stat(abs); err != nil {
		return DriftMissing
	}
	ok, err := integrity.Matches(abs, row.Hash)
	if err != nil || !ok {
		return DriftModified
	}
	return DriftOK
}
