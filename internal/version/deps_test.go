package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/multierr"
)

func TestParseDep(t *testing.T) {
	tests := []struct {
		in      string
		want    Dependency
		wantErr bool
	}{
		{in: "b>=0.1.0", want: Dependency{Name: "b", Rel: GE, Version: Version{0, 1, 0}}},
		{in: "c@2.1.0", want: Dependency{Name: "c", Rel: EQ, Version: Version{2, 1, 0}}},
		{in: "c=2.1.0", want: Dependency{Name: "c", Rel: EQ, Version: Version{2, 1, 0}}},
		{in: "a<=2", want: Dependency{Name: "a", Rel: LE, Version: Version{2}}},
		{in: "c<1.0.0", want: Dependency{Name: "c", Rel: LT, Version: Version{1, 0, 0}}},
		{in: "d>3.4", want: Dependency{Name: "d", Rel: GT, Version: Version{3, 4}}},
		// Bare name means "newer than 0".
		{in: "testpkgtwo", want: Dependency{Name: "testpkgtwo", Rel: GT, Version: Version{0}}},
		{in: "a@", wantErr: true},
		{in: ">=1.0", wantErr: true},
		{in: "a@1.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDep(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDeps(t *testing.T) {
	deps, err := ParseDeps("b>=0.1.0 c@2.1.0")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "b", deps[0].Name)
	assert.Equal(t, "c", deps[1].Name)
}

func TestParseDepsEmpty(t *testing.T) {
	deps, err := ParseDeps("")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestParseDepsAccumulatesErrors(t *testing.T) {
	_, err := ParseDeps("good>=1.0 bad@1.x also@bad@ fine")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestDepsFormatRoundTrip(t *testing.T) {
	for _, s := range []string{
		"b>=0.1.0 c@2.1.0",
		"testpkgtwo",
		"a<=2 d>3.4 c<1.0.0",
		"c=2.1.0", // "=" canonicalizes to "@" but parses back identically
	} {
		first, err := ParseDeps(s)
		require.NoError(t, err)
		second, err := ParseDeps(FormatDeps(first))
		require.NoError(t, err)
		assert.Equal(t, first, second, "round-trip of %q", s)
	}
}

func TestCheck(t *testing.T) {
	view := map[string]Installed{
		"a": {Version: Version{1, 2, 0}, Deps: mustDeps(t, "b>=0.1.0 c@2.1.0")},
		"b": {Version: Version{2, 5}, Deps: mustDeps(t, "c<1.0.0")},
		"c": {Version: Version{0, 9}, Deps: mustDeps(t, "a@1.2.0")},
	}

	violations := Check(view)
	require.Len(t, violations, 1)
	assert.Equal(t, "a", violations[0].Offender)
	assert.Equal(t, "c@2.1.0", violations[0].Dep.String())
	assert.False(t, violations[0].Missing)
	assert.Equal(t, Version{0, 9}, violations[0].Found)
}

func TestCheckMissingPackage(t *testing.T) {
	view := map[string]Installed{
		"testpkg": {Version: Version{0, 1}, Deps: mustDeps(t, "testpkgtwo")},
	}

	violations := Check(view)
	require.Len(t, violations, 1)
	assert.True(t, violations[0].Missing)
	assert.Equal(t, "testpkgtwo", violations[0].Dep.Name)
}

func TestCheckAcceptsCycles(t *testing.T) {
	view := map[string]Installed{
		"a": {Version: Version{1}, Deps: mustDeps(t, "b@1")},
		"b": {Version: Version{1}, Deps: mustDeps(t, "a@1")},
	}
	assert.Empty(t, Check(view))
}

func TestCheckDeterministicOrder(t *testing.T) {
	view := map[string]Installed{
		"zeta":  {Version: Version{1}, Deps: mustDeps(t, "gone other")},
		"alpha": {Version: Version{1}, Deps: mustDeps(t, "gone")},
	}

	for i := 0; i < 10; i++ {
		violations := Check(view)
		require.Len(t, violations, 3)
		assert.Equal(t, "alpha", violations[0].Offender)
		assert.Equal(t, "zeta", violations[1].Offender)
		assert.Equal(t, "gone", violations[1].Dep.Name)
		assert.Equal(t, "other", violations[2].Dep.Name)
	}
}

func mustDeps(t *testing.T, s string) []Dependency {
	t.Helper()
	deps, err := ParseDeps(s)
	require.NoError(t, err)
	return deps
}
