package pkgutil

import (
	"testing"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

func TestGetLocalPackages(t *testing.T) {
	pkgs, err := LoadPackages(LoadConfig{
		GoPath:     "../examples",
		ModulePath: "../examples/src/pkg-with-module",
	}, "unrelated-name/...")
	if err != nil {
		t.Fatal(err)
	}

	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	if err := GetLocalPackages(ssautil.MainPackages(prog.AllPackages()), prog.AllPackages()); err != nil {
		t.Fatal(err)
	}

	for _, pkg := range prog.AllPackages() {
		expected := pkg.Pkg.Path() == "unrelated-name" || pkg.Pkg.Path() == "unrelated-name/sub"
		if IsLocalPackage(pkg.Pkg) != expected {
			t.Errorf("IsLocalPackage(%s) = %v, expected %v\n", pkg.Pkg.Path(), !expected, expected)
		}
	}

	if err := GetLocalPackages(nil, prog.AllPackages()); err == nil {
		t.Error("Expected an error without main packages")
	}
}
