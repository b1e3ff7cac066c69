package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blackwell-systems/pkgforge/internal/integrity"
	"github.com/blackwell-systems/pkgforge/internal/store"
	"github.com/blackwell-systems/pkgforge/internal/version"
)

// Uninstall removes the named packages. Removal of a file is guarded by its
// recorded content hash: a modified file is kept (or backed up and removed
// under the hard-remove policy). Catalog rows for each package are deleted
// atomically before its files are touched, so the catalog never claims
// ownership of a path the engine is about to delete.
func (e *Engine) Uninstall(names []string) error {
	targets := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := e.store.GetPackage(name); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			// Under no-deps an absent target is a no-op, not an error.
			if e.policy.NoDeps {
				e.log.Warnf("%s is not installed, skipping", name)
				continue
			}
			return fmt.Errorf("%w: %s", ErrNotInstalled, name)
		}
		targets = append(targets, name)
	}
	names = targets

	view, err := e.installedView()
	if err != nil {
		return err
	}
	for _, name := range names {
		delete(view, name)
	}
	if err := e.enforceDeps(version.Check(view)); err != nil {
		return err
	}

	for _, name := range names {
		files, err := e.store.ListPackageFiles(name)
		if err != nil {
			return err
		}
		if err := e.store.DeletePackage(name); err != nil {
			return err
		}
		e.removePayload(name, files)
	}
	return nil
}

// removePayload deletes a removed package's files and then its directories,
// deepest paths first.
func (e *Engine) removePayload(name string, rows []*store.File) {
	var files, dirs []*store.File
	for _, row := range rows {
		if row.Kind == store.KindDir {
			dirs = append(dirs, row)
		} else {
			files = append(files, row)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path > files[j].Path })
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path > dirs[j].Path })

	for _, row := range files {
		abs := filepath.Join(e.root, row.Path)
		ok, err := integrity.Matches(abs, row.Hash)
		if err != nil {
			e.log.Warnf("%s: cannot verify %s, leaving in place: %v", name, row.Path, err)
			continue
		}
		if ok {
			if err := os.Remove(abs); err != nil {
				e.log.Warnf("%s: failed to remove %s: %v", name, row.Path, err)
			}
			continue
		}
		if e.policy.HardRemove {
			backup, err := backupModified(abs)
			if err != nil {
				e.log.Warnf("%s: failed to back up modified %s: %v", name, row.Path, err)
				continue
			}
			e.log.Warnf("%s: %s was modified, backed up to %s", name, row.Path, backup)
			continue
		}
		e.log.Warnf("%s: %s was modified since install, refusing to remove", name, row.Path)
	}

	for _, row := range dirs {
		abs := filepath.Join(e.root, row.Path)
		if err := os.Remove(abs); err != nil {
			// Directories created at install may be shared with untracked
			// content; a failed remove is not an error.
			e.log.Debugf("%s: leaving directory %s: %v", name, row.Path, err)
		}
	}
}

// backupModified renames a hash-mismatched file to a fresh temp name in the
// same directory and returns the backup path.
func backupModified(abs string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(abs), filepath.Base(abs)+".saved-")
	if err != nil {
		return "", err
	}
	backup := f.Name()
	f.Close()
	if err := os.Rename(abs, backup); err != nil {
		os.Remove(backup)
		return "", err
	}
	return backup, nil
}
