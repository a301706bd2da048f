package utils

import (
	"github.com/fatih/color"

	"golang.org/x/tools/go/ssa"
)

var pkgColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgBlue).SprintFunc())(is...)
}
var funColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgHiYellow).SprintFunc())(is...)
}
var nameColor = func(is ...interface{}) string {
	return CanColorize(color.New(color.FgHiGreen).SprintFunc())(is...)
}

func SSAPkgString(pkg *ssa.Package) (str string) {
	if pkg != nil {
		return pkgColor(pkg.Pkg.Path())
	}
	return pkgColor("<synthetic>")
}

func SSAFunString(fun *ssa.Function) string {
	if fun != nil {
		return funColor(fun.String())
	}
	return funColor("<nil>")
}

// NameString colorizes a declared name, e. g. a struct field.
func NameString(name string) string {
	return nameColor(name)
}
