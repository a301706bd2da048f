package main

import (
	"fmt"
)

// gatherMetrics prints the solver metrics when enabled.
func gatherMetrics(pl *pipeline) {
	if !opts.Metrics() || pl.solver == nil {
		return
	}

	m := pl.solver.Metrics()
	msg := "================ Metrics =====================\n\n"
	msg += m.String()
	if pl.extracted != nil {
		msg += fmt.Sprintf("Classes: %d (%d reported)\n",
			len(pl.facts.Roots()), len(pl.localClasses()))
		msg += fmt.Sprintf("Write sites: %d\n", len(pl.extracted.Escapes))
	}
	msg += "================ Metrics ====================="
	fmt.Println(msg)
}
