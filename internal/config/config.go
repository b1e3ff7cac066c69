// Package config holds the process-wide policy flags steering dependency,
// conflict and removal behavior. The policy is set once at startup by the
// frontend and treated as read-only by the engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Policy is the recognized option set. Every field can be seeded from the
// environment (PKGFORGE_NO_DEPS, PKGFORGE_HARD_REMOVE, PKGFORGE_FORCE,
// PKGFORGE_DEBUG, PKGFORGE_DB); command-line flags override.
type Policy struct {
	// NoDeps downgrades failed dependency checks from fatal to a warning.
	NoDeps bool `envconfig:"NO_DEPS"`
	// HardRemove allows uninstall to back up and remove modified files.
	HardRemove bool `envconfig:"HARD_REMOVE"`
	// Force is reserved; intended to bypass file conflicts.
	Force bool `envconfig:"FORCE"`
	// Debug enables verbose error reporting.
	Debug bool `envconfig:"DEBUG"`
	// DB is the filesystem path of the catalog store.
	DB string `envconfig:"DB"`
}

// Load builds a Policy from the environment.
func Load() (*Policy, error) {
	var p Policy
	if err := envconfig.Process("pkgforge", &p); err != nil {
		return nil, fmt.Errorf("failed to read policy from environment: %w", err)
	}
	return &p, nil
}

// DefaultDBPath returns the catalog path used when none is configured,
// ~/.pkgforge/pkgforge.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".pkgforge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pkgforge directory: %w", err)
	}
	return filepath.Join(dir, "pkgforge.db"), nil
}
