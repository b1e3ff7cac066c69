// Package engine coordinates the package lifecycle: dependency resolution
// across the installed set, conflict detection against the catalog, atomic
// catalog updates, materialization into the installation root, and
// hash-guarded removal.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/blackwell-systems/pkgforge/internal/config"
	"github.com/blackwell-systems/pkgforge/internal/store"
	"github.com/blackwell-systems/pkgforge/internal/version"
)

// ErrUnmetDependencies indicates the dependency check failed and the no-deps
// policy is not set.
var ErrUnmetDependencies = errors.New("unmet dependencies")

// ErrFileConflict indicates one or more payload files are already owned by
// another package.
var ErrFileConflict = errors.New("file conflict")

// ErrNotInstalled indicates an uninstall target has no catalog row.
var ErrNotInstalled = errors.New("package not installed")

// Engine ties the catalog, the installation root and the policy together.
type Engine struct {
	store  *store.Store
	root   string // installation root; payload paths resolve against it
	policy *config.Policy
	log    *zap.SugaredLogger
}

// New creates an engine installing into root.
func New(st *store.Store, root string, policy *config.Policy, log *zap.SugaredLogger) *Engine {
	return &Engine{store: st, root: root, policy: policy, log: log}
}

// installedView loads every catalog package into the dependency-check view,
// parsing the serialized version and dependency strings.
func (e *Engine) installedView() (map[string]version.Installed, error) {
	pkgs, err := e.store.ListPackages("")
	if err != nil {
		return nil, err
	}
	view := make(map[string]version.Installed, len(pkgs))
	for _, pkg := range pkgs {
		inst, err := parseInstalled(pkg)
		if err != nil {
			return nil, err
		}
		view[pkg.Name] = inst
	}
	return view, nil
}

func parseInstalled(pkg *store.Package) (version.Installed, error) {
	v, err := version.Parse(pkg.Version)
	if err != nil {
		return version.Installed{}, fmt.Errorf("catalog entry %s: %w", pkg.Name, err)
	}
	deps, err := version.ParseDeps(pkg.Deps)
	if err != nil {
		return version.Installed{}, fmt.Errorf("catalog entry %s: %w", pkg.Name, err)
	}
	return version.Installed{Version: v, Deps: deps}, nil
}

// enforceDeps applies the dependency-check policy: under no-deps every
// violation is logged as a warning; otherwise the check is fatal.
func (e *Engine) enforceDeps(violations []version.Violation) error {
	if len(violations) == 0 {
		return nil
	}
	if e.policy.NoDeps {
		for _, v := range violations {
			e.log.Warnf("ignoring unmet dependency: %s", describeViolation(v))
		}
		return nil
	}
	for _, v := range violations {
		e.log.Errorf("unmet dependency: %s", describeViolation(v))
	}
	return fmt.Errorf("%w: %d failed check(s)", ErrUnmetDependencies, len(violations))
}

func describeViolation(v version.Violation) string {
	if v.Missing {
		return fmt.Sprintf("%s requires %s, which is not installed", v.Offender, v.Dep)
	}
	return fmt.Sprintf("%s requires %s, but %s %s is installed", v.Offender, v.Dep, v.Dep.Name, v.Found)
}
