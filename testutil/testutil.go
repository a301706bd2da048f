package testutil

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	u "github.com/cs-au-dk/immut/analysis/upfront"
	"github.com/cs-au-dk/immut/pkgutil"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

// LoadResult contains relevant information obtained after loading a Go program.
// It includes the SSA representation of the program and the program model
// extracted from it.
type LoadResult struct {
	// MainPkg is the package focused by the analysis.
	MainPkg *packages.Package
	// Prog is the SSA representation of the entire program.
	Prog *ssa.Program
	// Pkgs are the SSA packages of the loaded packages.
	Pkgs []*ssa.Package
	// Model is the program model of the loaded packages.
	Model *u.Result
}

// Class returns the id of a type declared in the main package.
func (res LoadResult) Class(name string) defs.ClassID {
	return defs.ClassID(res.MainPkg.PkgPath + "." + name)
}

// Globals returns the id of the class holding the package-level variables
// of the main package.
func (res LoadResult) Globals() defs.ClassID {
	return defs.ClassID(res.MainPkg.PkgPath)
}

// LoadExampleAsPackages loads an example package to be used for a test.
func LoadExampleAsPackages(t *testing.T, pathToRoot string, pkg string) []*packages.Package {
	// Invoking the package tools is slow because it uses `go list` under the hood.
	// If the package doesn't have imports we can take a fast path by loading the
	// code manually and parsing it ourselves.
	srcDir := pathToRoot + "/examples/src/" + pkg
	if entries, err := os.ReadDir(srcDir); err == nil {
		if len(entries) == 1 {
			entry := entries[0]
			if !entry.IsDir() && entry.Name() == "main.go" {
				if content, err := os.ReadFile(srcDir + "/main.go"); err == nil &&
					// Assert no imports
					!bytes.Contains(content, []byte("import")) {
					return LoadSourceAsPackages(t, pkg, string(content))
				}
			}
		}
	}

	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{GoPath: pathToRoot + "/examples"}, pkg)
	if err != nil {
		t.Fatal(err)
	}

	if len(pkgs) != 1 {
		t.Fatal("Example contains more than just a main package?")
	}
	return pkgs
}

func LoadExamplePackage(t *testing.T, pathToRoot string, pkg string) LoadResult {
	return LoadResultFromPackages(t, LoadExampleAsPackages(t, pathToRoot, pkg))
}

func LoadResultFromPackages(t *testing.T, pkgs []*packages.Package) (res LoadResult) {
	res.MainPkg = pkgs[0]

	var err error
	res.Prog, res.Pkgs, err = pkgutil.BuildSSA(pkgs, ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatal(err)
	}

	res.Model = u.BuildProgram(res.Prog, res.Pkgs)
	return
}

func LoadSourceAsPackages(t *testing.T, importPath string, content string) []*packages.Package {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(
		fset,
		"main.go",
		content,
		parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}

	// If the package does not have imports we can take a fast path.
	if len(file.Imports) == 0 {
		files := []*ast.File{file}

		// First argument is package path, the second is name.
		pkg := types.NewPackage(importPath, file.Name.Name)
		info := &types.Info{
			Types:        make(map[ast.Expr]types.TypeAndValue),
			Defs:         make(map[*ast.Ident]types.Object),
			Uses:         make(map[*ast.Ident]types.Object),
			Implicits:    make(map[ast.Node]types.Object),
			Instances:    make(map[*ast.Ident]types.Instance),
			Scopes:       make(map[ast.Node]*types.Scope),
			Selections:   make(map[*ast.SelectorExpr]*types.Selection),
			FileVersions: make(map[*ast.File]string),
		}
		if err := types.NewChecker(
			&types.Config{Importer: importer.Default()},
			fset, pkg, info).Files(files); err != nil {
			t.Fatal(err)
		}

		return []*packages.Package{{
			ID:        "pkg-loaded-from-src",
			Name:      pkg.Name(),
			PkgPath:   pkg.Path(),
			Types:     pkg,
			Fset:      fset,
			Syntax:    files,
			TypesInfo: info,
		}}
	}

	// Otherwise we need to invoke the packages tool that can import code for
	// dependencies. The reason to not just do this for all packages is that
	// it's a lot slower than the above because it needs to invoke the go tool
	// in a subprocess.
	pkgs, err := pkgutil.LoadPackagesFromSource(content)
	if err != nil {
		t.Fatal(err)
	}
	return pkgs
}

func LoadPackageFromSource(t *testing.T, importPath string, content string) LoadResult {
	return LoadResultFromPackages(t, LoadSourceAsPackages(t, importPath, content))
}
