package pkgutil

import (
	"errors"
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"
)

var LocalPkgs map[*types.Package]bool

func pkgQualifiedPath(pkg *types.Package) []string {
	path := strings.Split(strings.TrimSuffix(pkg.Path(), ".test"), "/")

	if path[0] == "vendor" {
		path = path[1:]
	}

	return path
}

// GetLocalPackages marks the packages sharing the first three path segments
// with the main package as local.
func GetLocalPackages(mains []*ssa.Package, pkgs []*ssa.Package) (err error) {
	if len(mains) == 0 {
		return errors.New("gather local packages error: no main packages found")
	}

	LocalPkgs = make(map[*types.Package]bool)
	mp := GetMain(mains)
	if mp == nil {
		// If there is no non-test main package, just pick one of the test
		// packages.
		mp = mains[0]
	}

	mainpath := pkgQualifiedPath(mp.Pkg)

	for _, p := range pkgs {
		pkgpath := pkgQualifiedPath(p.Pkg)
		isLocal := true
		for i := 0; isLocal && i < 3 && i < len(mainpath) && i < len(pkgpath); i++ {
			isLocal = isLocal && mainpath[i] == pkgpath[i]
		}
		if isLocal && !CheckPkgInGoroot(p.Pkg) {
			LocalPkgs[p.Pkg] = true
		}
	}

	opts.OnVerbose(func() {
		fmt.Println("Main packages:")
		for _, p := range mains {
			fmt.Println(p.Pkg.Path())
		}

		fmt.Println("Local packages:")
		for p := range LocalPkgs {
			fmt.Println(p.Path())
		}
	})

	return
}

// IsLocalPackage is true for packages marked by GetLocalPackages.
func IsLocalPackage(pkg *types.Package) bool {
	return pkg != nil && LocalPkgs[pkg]
}
