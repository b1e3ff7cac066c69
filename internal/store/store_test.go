package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory catalog with the schema created.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// installPackage inserts a package with its files in one transaction.
func installPackage(t *testing.T, s *Store, pkg *Package, files ...*File) {
	t.Helper()
	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.InsertPackage(pkg))
	for _, f := range files {
		require.NoError(t, tx.InsertFile(f))
	}
	require.NoError(t, tx.Commit())
}

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"packages", "files"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s not found", table)
	}
}

func TestGetPackage(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "testpkg", Version: "0.1", Maintainer: "Morn", Deps: "testpkgtwo"})

	pkg, err := s.GetPackage("testpkg")
	require.NoError(t, err)
	assert.Equal(t, "0.1", pkg.Version)
	assert.Equal(t, "Morn", pkg.Maintainer)
	assert.Equal(t, "testpkgtwo", pkg.Deps)

	_, err = s.GetPackage("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPackagesPattern(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "libfoo", Version: "1.0"})
	installPackage(t, s, &Package{Name: "libbar", Version: "2.0"})
	installPackage(t, s, &Package{Name: "tool", Version: "0.1"})

	all, err := s.ListPackages("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	libs, err := s.ListPackages("lib%")
	require.NoError(t, err)
	require.Len(t, libs, 2)
	// ListPackages orders by name.
	assert.Equal(t, "libbar", libs[0].Name)
	assert.Equal(t, "libfoo", libs[1].Name)

	one, err := s.ListPackages("to_l")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "tool", one[0].Name)
}

func TestFileOwner(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "a", Version: "1"},
		&File{Owner: "a", Hash: "d41d8cd98f00b204e9800998ecf8427e", Path: "bin/a", Kind: KindFile, Mode: "755"})

	owner, err := s.FileOwner("bin/a")
	require.NoError(t, err)
	assert.Equal(t, "a", owner)

	owner, err = s.FileOwner("untracked")
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestInsertFilePathConflict(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "a", Version: "1"},
		&File{Owner: "a", Hash: "d41d8cd98f00b204e9800998ecf8427e", Path: "shared", Kind: KindFile})

	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.InsertPackage(&Package{Name: "b", Version: "1"}))
	err = tx.InsertFile(&File{Owner: "b", Hash: "aabbccddeeff00112233445566778899", Path: "shared", Kind: KindFile})
	assert.ErrorIs(t, err, ErrPathConflict)
}

func TestTxSeesOwnWrites(t *testing.T) {
	s := newTestStore(t)

	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.InsertPackage(&Package{Name: "a", Version: "1"}))
	pkg, err := tx.GetPackage("a")
	require.NoError(t, err)
	assert.Equal(t, "a", pkg.Name)
}

func TestRollbackLeavesCatalogUntouched(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "existing", Version: "1"},
		&File{Owner: "existing", Hash: "d41d8cd98f00b204e9800998ecf8427e", Path: "keep", Kind: KindFile})

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.InsertPackage(&Package{Name: "doomed", Version: "1"}))
	require.NoError(t, tx.InsertFile(&File{Owner: "doomed", Hash: "aabbccddeeff00112233445566778899", Path: "gone", Kind: KindFile}))
	require.NoError(t, tx.Rollback())

	_, err = s.GetPackage("doomed")
	assert.ErrorIs(t, err, ErrNotFound)

	owner, err := s.FileOwner("gone")
	require.NoError(t, err)
	assert.Empty(t, owner)

	// Pre-existing rows are intact.
	owner, err = s.FileOwner("keep")
	require.NoError(t, err)
	assert.Equal(t, "existing", owner)
}

func TestDeletePackageAtomic(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "a", Version: "1"},
		&File{Owner: "a", Hash: "d41d8cd98f00b204e9800998ecf8427e", Path: "f1", Kind: KindFile},
		&File{Owner: "a", Hash: "", Path: "d", Kind: KindDir})

	require.NoError(t, s.DeletePackage("a"))

	_, err := s.GetPackage("a")
	assert.ErrorIs(t, err, ErrNotFound)

	files, err := s.ListPackageFiles("a")
	require.NoError(t, err)
	assert.Empty(t, files)

	// The freed path can be owned again.
	installPackage(t, s, &Package{Name: "b", Version: "1"},
		&File{Owner: "b", Hash: "aabbccddeeff00112233445566778899", Path: "f1", Kind: KindFile})
}

func TestDeletePackageNotFound(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.DeletePackage("ghost"), ErrNotFound)
}

func TestListPackageFiles(t *testing.T) {
	s := newTestStore(t)
	installPackage(t, s, &Package{Name: "a", Version: "1"},
		&File{Owner: "a", Hash: "d41d8cd98f00b204e9800998ecf8427e", Path: "zfile", Kind: KindFile, Mode: "644"},
		&File{Owner: "a", Hash: "", Path: "adir", Kind: KindDir, Mode: "755"})

	files, err := s.ListPackageFiles("a")
	require.NoError(t, err)
	require.Len(t, files, 2)
	// Path order.
	assert.Equal(t, "adir", files[0].Path)
	assert.Equal(t, KindDir, files[0].Kind)
	assert.Equal(t, "zfile", files[1].Path)
	assert.Equal(t, "644", files[1].Mode)
}
