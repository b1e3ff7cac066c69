// Package watcher monitors the installation root for drift in catalog-owned
// files. Filesystem events are mapped back to catalog paths and re-verified
// against the recorded hashes.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/blackwell-systems/pkgforge/internal/engine"
	"github.com/blackwell-systems/pkgforge/internal/store"
)

// Watcher reports drift on catalog-owned files as it happens.
type Watcher struct {
	engine *engine.Engine
	store  *store.Store
	root   string
	log    *zap.SugaredLogger

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over the installation root.
func New(eng *engine.Engine, st *store.Store, root string, log *zap.SugaredLogger) (*Watcher, error) {
	if eng == nil || st == nil {
		return nil, fmt.Errorf("engine and store cannot be nil")
	}
	return &Watcher{
		engine: eng,
		store:  st,
		root:   root,
		log:    log,
		stopCh: make(chan struct{}),
	}, nil
}

// Start registers the root and every catalog-owned directory with fsnotify
// and begins processing events. fsnotify does not recurse, so each owned
// directory is added explicitly.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	pkgs, err := w.store.ListPackages("")
	if err != nil {
		fsw.Close()
		return err
	}
	for _, pkg := range pkgs {
		files, err := w.store.ListPackageFiles(pkg.Name)
		if err != nil {
			fsw.Close()
			return err
		}
		for _, row := range files {
			if row.Kind != store.KindDir {
				continue
			}
			abs := filepath.Join(w.root, row.Path)
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			if err := fsw.Add(abs); err != nil {
				w.log.Warnf("cannot watch %s: %v", row.Path, err)
			}
		}
	}

	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.checkEvent(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch error: %v", err)
		case <-w.stopCh:
			return
		}
	}
}

// checkEvent maps an event path back to a catalog path and re-verifies it.
// Untracked paths are ignored; the catalog is the source of truth.
func (w *Watcher) checkEvent(name string) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return
	}
	drift, tracked, err := w.engine.VerifyPath(rel)
	if err != nil {
		w.log.Warnf("failed to verify %s: %v", rel, err)
		return
	}
	if !tracked {
		return
	}
	switch drift.State {
	case engine.DriftOK:
		w.log.Infof("%s: %s restored", drift.Owner, drift.Path)
	case engine.DriftModified:
		w.log.Warnf("%s: %s drifted from its recorded hash", drift.Owner, drift.Path)
	case engine.DriftMissing:
		w.log.Warnf("%s: %s is missing from disk", drift.Owner, drift.Path)
	}
}

// Stop halts event processing and releases the filesystem watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.wg.Wait()
	return nil
}
