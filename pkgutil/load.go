package pkgutil

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadConfig configures package loading. With a ModulePath, packages are
// loaded in module-aware mode from that module; otherwise GOPATH mode is
// used with GoPath as the GOPATH. IncludeTests also loads test files.
type LoadConfig struct {
	GoPath, ModulePath string
	IncludeTests       bool
}

// ErrLoad is returned when the go tool reports errors for the loaded packages.
var ErrLoad = errors.New("errors encountered while loading packages")

const loadMode packages.LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedTypes | packages.NeedTypesSizes | packages.NeedSyntax |
	packages.NeedTypesInfo | packages.NeedDeps

var moduleRegex = regexp.MustCompile(`(?m)^module\s+(.*)$`)

// relativizingParseFile parses files under names relative to the working
// directory, so positions printed in write sites are stable across machines.
func relativizingParseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, filename); err == nil {
			filename = rel
		}
	}
	return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments)
}

// moduleName reads the module path declared by the go.mod file in dir.
func moduleName(dir string) (string, error) {
	contents, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("unable to load 'go.mod' file at %s: %w", dir, err)
	}
	m := moduleRegex.FindSubmatch(contents)
	if len(m) <= 1 {
		return "", fmt.Errorf("unable to locate module name in %s", filepath.Join(dir, "go.mod"))
	}
	return string(m[1]), nil
}

func (cfg LoadConfig) packagesConfig() (*packages.Config, error) {
	gopath, err := filepath.Abs(cfg.GoPath)
	if err != nil {
		return nil, err
	}

	config := &packages.Config{
		Mode:      loadMode,
		Tests:     cfg.IncludeTests,
		ParseFile: relativizingParseFile,
	}
	if cfg.ModulePath == "" {
		config.Env = append(os.Environ(), "GOPATH="+gopath, "GO111MODULE=off")
		return config, nil
	}

	dir, err := filepath.Abs(cfg.ModulePath)
	if err != nil {
		return nil, err
	}
	if _, err := moduleName(dir); err != nil {
		return nil, err
	}
	config.Dir = dir
	config.Env = append(os.Environ(), "GOPATH="+gopath, "GO111MODULE=on")
	return config, nil
}

// LoadPackages loads the packages matching query.
func LoadPackages(cfg LoadConfig, query string) ([]*packages.Package, error) {
	config, err := cfg.packagesConfig()
	if err != nil {
		return nil, err
	}
	return load(config, query)
}

// LoadPackagesFromSource loads a single file package from a string. The
// file is served from an overlay, so it may import other packages.
func LoadPackagesFromSource(source string) ([]*packages.Package, error) {
	const file = "/fake/testpackage/main.go"
	config := &packages.Config{
		Mode:    loadMode,
		Env:     append(os.Environ(), "GO111MODULE=off", "GOPATH=/fake"),
		Overlay: map[string][]byte{file: []byte(source)},
	}
	return load(config, file)
}

func load(config *packages.Config, query string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(config, query)
	if err != nil {
		return nil, err
	} else if packages.PrintErrors(pkgs) > 0 {
		return nil, ErrLoad
	}
	if config.Tests {
		pkgs = dropUntested(pkgs)
	}
	return pkgs, nil
}

// dropUntested removes the variant without tests of packages that were
// also loaded with their tests. Keeping both would duplicate every named
// type, and with it every class of the package.
func dropUntested(pkgs []*packages.Package) []*packages.Package {
	ids := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		ids[pkg.ID] = true
	}

	res := make([]*packages.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if !ids[fmt.Sprintf("%s [%s.test]", pkg.ID, pkg.ID)] {
			res = append(res, pkg)
		}
	}
	return res
}

// BuildSSA builds the SSA program of the loaded packages and their
// dependencies. Generic functions are instantiated, so that writes in
// instances are attributed to their origin.
func BuildSSA(pkgs []*packages.Package, mode ssa.BuilderMode) (*ssa.Program, []*ssa.Package, error) {
	prog, loaded := ssautil.AllPackages(pkgs, mode|ssa.InstantiateGenerics)
	prog.Build()

	res := make([]*ssa.Package, 0, len(loaded))
	for i, pkg := range loaded {
		if pkg == nil {
			return nil, nil, fmt.Errorf("%w: %s has no SSA representation", ErrLoad, pkgs[i].PkgPath)
		}
		res = append(res, pkg)
	}
	return prog, res, nil
}
