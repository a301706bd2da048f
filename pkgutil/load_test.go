package pkgutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

func TestLoadWithModule(t *testing.T) {
	pkgs, err := LoadPackages(LoadConfig{
		GoPath:     "../examples",
		ModulePath: "../examples/src/pkg-with-module",
	}, "unrelated-name/...")
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestLoadFromGoPath(t *testing.T) {
	pkgs, err := LoadPackages(LoadConfig{GoPath: "../examples"}, "pkg-with-test/...")
	require.NoError(t, err)
	assert.Len(t, pkgs, 2)
}

func TestLoadWithModuleMissingGoMod(t *testing.T) {
	_, err := LoadPackages(LoadConfig{
		GoPath:     "../examples",
		ModulePath: "../examples/src/missing",
	}, "./...")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrLoad))
}

func TestModuleName(t *testing.T) {
	name, err := moduleName("../examples/src/pkg-with-module")
	require.NoError(t, err)
	assert.Equal(t, "unrelated-name", name)
}

func TestDropUntested(t *testing.T) {
	pkgs := []*packages.Package{
		{ID: "a"},
		{ID: "a [a.test]"},
		{ID: "b"},
	}
	var ids []string
	for _, pkg := range dropUntested(pkgs) {
		ids = append(ids, pkg.ID)
	}
	assert.Equal(t, []string{"a [a.test]", "b"}, ids)
}

func TestBuildSSA(t *testing.T) {
	pkgs, err := LoadPackagesFromSource(`package main

import "sync"

type Guarded struct {
	mu sync.Mutex
	n  int
}

func main() {}
`)
	require.NoError(t, err)

	prog, ssaPkgs, err := BuildSSA(pkgs, 0)
	require.NoError(t, err)
	require.Len(t, ssaPkgs, 1)
	assert.NotNil(t, ssaPkgs[0].Type("Guarded"))

	var sync *packages.Package
	for _, pkg := range pkgs[0].Imports {
		sync = pkg
	}
	require.NotNil(t, sync)
	assert.True(t, CheckPkgInGoroot(sync.Types))
	assert.True(t, CheckPkgInGoroot(sync.Types), "cached result")
	assert.False(t, CheckPkgInGoroot(ssaPkgs[0].Pkg))
	assert.NotNil(t, prog.ImportedPackage("sync"))
}
