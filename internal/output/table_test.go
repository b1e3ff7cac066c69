package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/pkgforge/internal/store"
)

func TestRenderPackageTable(t *testing.T) {
	out := RenderPackageTable([]*store.Package{
		{Name: "tool", Version: "1.2.0", Maintainer: "Morn", Deps: "libfoo>=1.0"},
		{Name: "libfoo", Version: "1.0", Maintainer: "Morn"},
	})

	assert.Contains(t, out, "tool")
	assert.Contains(t, out, "libfoo>=1.0")
	// Empty deps render as a dash.
	assert.Contains(t, out, "-")
	// Sorted by name: libfoo row comes first.
	assert.Less(t, strings.Index(out, "libfoo"), strings.Index(out, "tool"))
}

func TestRenderPackageTableEmpty(t *testing.T) {
	assert.Equal(t, "No packages found.\n", RenderPackageTable(nil))
}

func TestRenderFileTable(t *testing.T) {
	out := RenderFileTable([]*store.File{
		{Owner: "a", Hash: "5d41402abc4b2a76b9719d911017c592", Path: "bin/a", Kind: store.KindFile, Mode: "755"},
		{Owner: "a", Hash: "", Path: "share", Kind: store.KindDir, Mode: "755"},
	})

	assert.Contains(t, out, "bin/a")
	assert.Contains(t, out, "5d41402abc4b2a76b9719d911017c592")
	assert.Contains(t, out, "dir")
	// Directory rows have no hash.
	assert.Contains(t, out, " - ")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	long := truncate("definitely-longer-than-ten", 10)
	assert.Contains(t, long, "…")
}

func TestDriftLabelPlainWithoutTTY(t *testing.T) {
	// Test stdout is not a terminal, so labels come back uncolored.
	assert.Equal(t, "modified", DriftLabel("modified"))
}
