package upfront

import (
	"github.com/cs-au-dk/immut/pkgutil"
	"github.com/cs-au-dk/immut/utils"

	"golang.org/x/tools/go/ssa"
)

var verbosePrint = utils.VerbosePrint

// pkgOf returns the package of a function, looking through generic
// instantiations.
func pkgOf(fn *ssa.Function) *ssa.Package {
	if fn.Pkg != nil {
		return fn.Pkg
	}
	if o := fn.Origin(); o != nil {
		return o.Pkg
	}
	return nil
}

// analyzed is true for the functions whose bodies contribute facts: every
// non-synthetic function outside of GOROOT. Package initializers are
// included.
func analyzed(fn *ssa.Function) bool {
	if fn.Synthetic != "" && fn.Synthetic != "package initializer" {
		return false
	}
	pkg := pkgOf(fn)
	return pkg != nil && !pkgutil.CheckPkgInGoroot(pkg.Pkg) && len(fn.Blocks) > 0
}

func isPackageInit(fn *ssa.Function) bool {
	return fn.Synthetic == "package initializer"
}
