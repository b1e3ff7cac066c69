// Package builder evaluates package scripts. A script is a Lua chunk that,
// run inside a fresh scratch directory, writes the package payload relative
// to the working directory and returns a manifest table with name, version,
// maintainer and deps string fields.
package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	lua "github.com/yuin/gopher-lua"

	"github.com/blackwell-systems/pkgforge/internal/payload"
	"github.com/blackwell-systems/pkgforge/internal/version"
)

// ErrScriptFailed indicates the package script raised an error while running.
var ErrScriptFailed = errors.New("package script failed")

// ErrInvalidManifest indicates the script returned a manifest with a missing
// or ill-typed field.
var ErrInvalidManifest = errors.New("invalid package manifest")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Manifest describes a built package.
type Manifest struct {
	Name       string
	Version    version.Version
	Maintainer string
	Deps       []version.Dependency
}

// Build is the product of one package script evaluation: the parsed manifest,
// the scratch directory holding the payload, and the payload's entries.
type Build struct {
	Manifest   Manifest
	ScratchDir string
	Files      []payload.FileEntry
}

// Run evaluates the package script at scriptPath in a fresh scratch
// directory and captures the manifest and payload it produces. The caller
// owns the scratch directory on success; on error it is removed.
func Run(scriptPath string) (*Build, error) {
	scratch, err := os.MkdirTemp("", "pkgforge-build-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	b, err := runInScratch(scriptPath, scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, err
	}
	return b, nil
}

func runInScratch(scriptPath, scratch string) (*Build, error) {
	scriptCopy := filepath.Join(scratch, filepath.Base(scriptPath))
	if err := payload.CopyFile(scriptPath, scriptCopy, 0); err != nil {
		return nil, fmt.Errorf("failed to stage script: %w", err)
	}

	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(scratch); err != nil {
		return nil, fmt.Errorf("failed to enter scratch directory: %w", err)
	}
	defer os.Chdir(prev)

	manifest, err := evalScript(filepath.Base(scriptPath))
	if err != nil {
		return nil, err
	}

	if err := os.Remove(scriptCopy); err != nil {
		return nil, fmt.Errorf("failed to remove staged script: %w", err)
	}

	files, err := payload.Snapshot(scratch)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot payload: %w", err)
	}

	return &Build{Manifest: *manifest, ScratchDir: scratch, Files: files}, nil
}

// evalScript runs the Lua chunk and validates its returned manifest table.
// The working directory is already the scratch directory, so the script's
// relative writes land in the payload. Scripts get one extra global,
// mkdir(path), since Lua's standard library cannot create directories.
func evalScript(script string) (*Manifest, error) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("mkdir", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckString(1)
		if err := os.MkdirAll(dir, 0755); err != nil {
			L.RaiseError("mkdir %s: %v", dir, err)
		}
		return 0
	}))

	if err := L.DoFile(script); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptFailed, script, err)
	}

	ret := L.Get(-1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: script did not return a manifest table", ErrInvalidManifest)
	}

	name, err := stringField(tbl, "name")
	if err != nil {
		return nil, err
	}
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: name %q contains characters outside [A-Za-z0-9_-]", ErrInvalidManifest, name)
	}

	verStr, err := stringField(tbl, "version")
	if err != nil {
		return nil, err
	}
	ver, err := version.Parse(verStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	maintainer, err := stringField(tbl, "maintainer")
	if err != nil {
		return nil, err
	}

	depsStr, err := stringField(tbl, "deps")
	if err != nil {
		return nil, err
	}
	deps, err := version.ParseDeps(depsStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	return &Manifest{
		Name:       name,
		Version:    ver,
		Maintainer: maintainer,
		Deps:       deps,
	}, nil
}

// stringField reads a required string field from the manifest table. The
// deps field must be present even when empty.
func stringField(tbl *lua.LTable, field string) (string, error) {
	v := tbl.RawGetString(field)
	s, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: field %q missing or not a string", ErrInvalidManifest, field)
	}
	return string(s), nil
}
