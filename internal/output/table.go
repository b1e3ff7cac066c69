// Package output renders catalog query results as terminal tables. Plain-text
// layout with Unicode rule lines, and ANSI colors gated on TTY detection and
// NO_COLOR.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgforge/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderPackageTable renders catalog packages with their manifest fields.
func RenderPackageTable(packages []*store.Package) string {
	if len(packages) == 0 {
		return "No packages found.\n"
	}

	sorted := make([]*store.Package, len(packages))
	copy(sorted, packages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-12s %-20s %s\n",
		"Package", "Version", "Maintainer", "Deps"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, pkg := range sorted {
		deps := pkg.Deps
		if deps == "" {
			deps = "-"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-12s %-20s %s\n",
			truncate(pkg.Name, 24),
			truncate(pkg.Version, 12),
			truncate(pkg.Maintainer, 20),
			deps))
	}

	return sb.String()
}

// RenderFileTable renders the file rows owned by one package.
func RenderFileTable(files []*store.File) string {
	if len(files) == 0 {
		return "No files recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s %-5s %-34s %s\n", "Kind", "Mode", "Hash", "Path"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, f := range files {
		hash := f.Hash
		if hash == "" {
			hash = "-"
		}
		mode := f.Mode
		if mode == "" {
			mode = "-"
		}
		sb.WriteString(fmt.Sprintf("%-6s %-5s %-34s %s\n", f.Kind, mode, hash, f.Path))
	}

	return sb.String()
}

// DriftLabel colors a verification state for terminal display.
func DriftLabel(state string) string {
	if !IsColorEnabled() {
		return state
	}
	switch state {
	case "ok":
		return colorGreen + state + colorReset
	case "modified":
		return colorYellow + state + colorReset
	case "missing":
		return colorRed + state + colorReset
	}
	return state
}

// truncate shortens a string to maxLen, appending "…" when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
