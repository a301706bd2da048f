package fixpoint

import (
	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/utils"
)

// EventKind distinguishes the value transitions reported to a trace hook.
type EventKind uint8

const (
	// A node value was raised by a recomputation.
	Raised EventKind = iota
	// A node became final.
	Finalized
)

func (k EventKind) String() string {
	if k == Raised {
		return "raised"
	}
	return "finalized"
}

// Event describes a value transition of a node.
type Event struct {
	Kind     EventKind
	Key      defs.Key
	Old, New L.Element
}

type config struct {
	workers     int
	closedWorld bool
	trace       func(Event)
	// Bound on the iterations of a cycle resolution. Zero picks a bound
	// from the size of the cycle.
	maxCycleRounds int
	roots          []defs.Key
}

// Option configures a Solver.
type Option func(*config)

func defaultConfig() config {
	return config{
		workers:     utils.Opts().Workers(),
		closedWorld: utils.Opts().ClosedWorld(),
	}
}

// WithWorkers bounds the number of partitions solved concurrently.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithClosedWorld sets whether every subtype of a type is part of the
// program. Otherwise non-final types are mutable.
func WithClosedWorld(closed bool) Option {
	return func(c *config) {
		c.closedWorld = closed
	}
}

// WithTrace installs a hook observing every value transition. The hook is
// called concurrently from the partition workers.
func WithTrace(trace func(Event)) Option {
	return func(c *config) {
		c.trace = trace
	}
}

func WithMaxCycleRounds(n int) Option {
	return func(c *config) {
		c.maxCycleRounds = n
	}
}

// WithRoots restricts the analysis to the classifications reachable from
// the given keys.
func WithRoots(roots ...defs.Key) Option {
	return func(c *config) {
		c.roots = roots
	}
}
