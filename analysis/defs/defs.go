package defs

import (
	u "github.com/cs-au-dk/immut/utils"

	c "github.com/fatih/color"
)

var colorize = struct {
	Class     func(...interface{}) string
	Field     func(...interface{}) string
	Type      func(...interface{}) string
	Dimension func(...interface{}) string
	Param     func(...interface{}) string
}{
	Class: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiBlue).SprintFunc())(is...)
	},
	Field: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgGreen).SprintFunc())(is...)
	},
	Type: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiMagenta).SprintFunc())(is...)
	},
	Dimension: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgYellow).SprintFunc())(is...)
	},
	Param: func(is ...interface{}) string {
		return u.CanColorize(c.New(c.FgHiCyan).SprintFunc())(is...)
	},
}

// ClassID identifies a class or declared type of the analyzed program.
// For Go programs it is the package qualified type name, e.g. "pkg.T".
type ClassID string

func (id ClassID) String() string {
	return colorize.Class(string(id))
}
