package pkgutil

import (
	"go/types"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cs-au-dk/immut/utils"

	"golang.org/x/tools/go/ssa"
)

var opts = utils.Opts()

var goroot sync.Map

// CheckPkgInGoroot checks whether a package is declared in GOROOT. Classes
// of such packages are never scanned for writes.
func CheckPkgInGoroot(pkg *types.Package) bool {
	if in, found := goroot.Load(pkg.Path()); found {
		return in.(bool)
	}

	in := false
	if fi, err := os.Stat(filepath.Join(runtime.GOROOT(), "src", pkg.Path())); err == nil {
		in = fi.IsDir()
	}
	goroot.Store(pkg.Path(), in)
	return in
}

func isTestPackage(pkg *ssa.Package) bool {
	return strings.HasSuffix(pkg.String(), ".test")
}

// GetMain picks the main package with the most members, ignoring the
// synthesized .test packages.
func GetMain(mains []*ssa.Package) (main *ssa.Package) {
	for _, mp := range mains {
		if isTestPackage(mp) {
			continue
		}
		if main == nil || len(main.Members) < len(mp.Members) {
			main = mp
		}
	}
	return
}

// AllPackages lists the packages of the program once per path, keeping the
// variant with the most members when tests were loaded.
func AllPackages(prog *ssa.Program) []*ssa.Package {
	byPath := make(map[string]*ssa.Package)
	for _, pkg := range prog.AllPackages() {
		if isTestPackage(pkg) {
			continue
		}
		if other, ok := byPath[pkg.String()]; !ok || len(pkg.Members) > len(other.Members) {
			byPath[pkg.String()] = pkg
		}
	}

	res := make([]*ssa.Package, 0, len(byPath))
	for _, pkg := range byPath {
		res = append(res, pkg)
	}
	return res
}
