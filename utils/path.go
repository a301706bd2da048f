package utils

import (
	"flag"
)

// MakePath returns the package query to analyze.
// The first non-flag argument is the target package; it defaults to "./...".
func MakePath() (path string) {
	args := flag.Args()
	if len(args) >= 1 {
		return args[0]
	}

	return "./..."
}
