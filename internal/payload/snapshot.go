// Package payload handles package payload trees: snapshotting a directory
// into a list of entries, and the file-copy and directory helpers used to
// materialize entries into the installation root.
package payload

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FileEntry is one entry of a payload tree, with its path relative to the
// snapshot root.
type FileEntry struct {
	Path string
	Dir  bool
	Mode fs.FileMode // permission bits at snapshot time
}

// Snapshot recursively enumerates everything under root. Paths are relative
// to root, without a leading "./". Traversal order is not part of the
// contract.
func Snapshot(root string) ([]FileEntry, error) {
	var entries []FileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		rel = strings.TrimPrefix(rel, "./")

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		entries = append(entries, FileEntry{
			Path: rel,
			Dir:  d.IsDir(),
			Mode: info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", root, err)
	}
	return entries, nil
}
