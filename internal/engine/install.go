package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blackwell-systems/pkgforge/internal/builder"
	"github.com/blackwell-systems/pkgforge/internal/integrity"
	"github.com/blackwell-systems/pkgforge/internal/payload"
	"github.com/blackwell-systems/pkgforge/internal/store"
	"github.com/blackwell-systems/pkgforge/internal/version"
)

// conflict is a payload file already owned by another catalog package.
type conflict struct {
	pkg   string // package being installed
	path  string
	owner string // current catalog owner
}

// Install installs a batch of builds as one unit. The batch form lets a
// package and its fresh dependencies install together: the dependency check
// runs against the installed set overlaid with every batch manifest. Catalog
// mutations for the whole batch are one transaction; files are copied into
// the installation root only after it commits.
func (e *Engine) Install(batch []*builder.Build) error {
	view, err := e.installedView()
	if err != nil {
		return err
	}
	for _, b := range batch {
		view[b.Manifest.Name] = version.Installed{
			Version: b.Manifest.Version,
			Deps:    b.Manifest.Deps,
		}
	}
	if err := e.enforceDeps(version.Check(view)); err != nil {
		return err
	}

	tx, err := e.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var conflicts []conflict
	installed := make([]*builder.Build, 0, len(batch))
	for _, b := range batch {
		name := b.Manifest.Name
		if _, err := tx.GetPackage(name); err == nil {
			e.log.Warnf("%s is already installed, skipping", name)
			if rmErr := os.RemoveAll(b.ScratchDir); rmErr != nil {
				e.log.Warnf("failed to remove scratch directory %s: %v", b.ScratchDir, rmErr)
			}
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.InsertPackage(&store.Package{
			Name:       name,
			Version:    b.Manifest.Version.String(),
			Maintainer: b.Manifest.Maintainer,
			Deps:       version.FormatDeps(b.Manifest.Deps),
		}); err != nil {
			return err
		}

		for _, entry := range b.Files {
			row, err := fileRow(name, b.ScratchDir, entry)
			if err != nil {
				return err
			}
			err = tx.InsertFile(row)
			if errors.Is(err, store.ErrPathConflict) {
				// Directories are shareable; only regular files conflict.
				if entry.Dir {
					continue
				}
				owner, oerr := tx.FileOwner(entry.Path)
				if oerr != nil {
					return oerr
				}
				conflicts = append(conflicts, conflict{pkg: name, path: entry.Path, owner: owner})
				continue
			}
			if err != nil {
				return err
			}
		}
		installed = append(installed, b)
	}

	if len(conflicts) > 0 {
		for _, c := range conflicts {
			e.log.Errorf("%s: file %s is already owned by %s", c.pkg, c.path, c.owner)
		}
		if err := tx.Rollback(); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d conflicting file(s)", ErrFileConflict, len(conflicts))
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, b := range installed {
		e.materialize(b)
	}
	return nil
}

// fileRow builds the catalog row for a payload entry, hashing regular files
// out of the scratch tree.
func fileRow(owner, scratch string, entry payload.FileEntry) (*store.File, error) {
	row := &store.File{
		Owner: owner,
		Path:  entry.Path,
		Kind:  store.KindFile,
		Mode:  fmt.Sprintf("%03o", entry.Mode),
	}
	if entry.Dir {
		row.Kind = store.KindDir
		return row, nil
	}
	hash, err := integrity.HashFile(filepath.Join(scratch, entry.Path))
	if err != nil {
		return nil, err
	}
	row.Hash = hash
	return row, nil
}

// materialize copies one build's payload into the installation root:
// directories first, then files, each in ascending path order. The catalog
// has already committed, so failures here are logged and do not roll back.
func (e *Engine) materialize(b *builder.Build) {
	var dirs, files []payload.FileEntry
	for _, entry := range b.Files {
		if entry.Dir {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	failed := 0
	for _, d := range dirs {
		if err := payload.EnsureDir(filepath.Join(e.root, d.Path)); err != nil {
			e.log.Warnf("%s: %v", b.Manifest.Name, err)
			failed++
		}
	}
	for _, f := range files {
		src := filepath.Join(b.ScratchDir, f.Path)
		dst := filepath.Join(e.root, f.Path)
		if err := payload.CopyFile(src, dst, f.Mode); err != nil {
			e.log.Warnf("%s: %v", b.Manifest.Name, err)
			failed++
		}
	}
	if failed > 0 {
		e.log.Warnf("%s: %d file(s) failed to materialize; catalog is ahead of disk", b.Manifest.Name, failed)
	}

	if err := os.RemoveAll(b.ScratchDir); err != nil {
		e.log.Warnf("failed to remove scratch directory %s: %v", b.ScratchDir, err)
	}
}
