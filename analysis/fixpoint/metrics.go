package fixpoint

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics counts the work performed by a solve. Counters are updated
// concurrently by the partition workers.
type Metrics struct {
	Nodes      int
	Edges      int
	Partitions int

	rounds         atomic.Int64
	evaluations    atomic.Int64
	raises         atomic.Int64
	cyclesResolved atomic.Int64
	cyclesForced   atomic.Int64
	time           time.Duration
}

// Rounds is the number of parallel rounds over the partitions.
func (m *Metrics) Rounds() int64 {
	return m.rounds.Load()
}

// Evaluations is the number of transfer function evaluations.
func (m *Metrics) Evaluations() int64 {
	return m.evaluations.Load()
}

func (m *Metrics) Raises() int64 {
	return m.raises.Load()
}

// CyclesResolved is the number of cyclic components finalized at their
// greatest fixpoint.
func (m *Metrics) CyclesResolved() int64 {
	return m.cyclesResolved.Load()
}

// CyclesForced is the number of cyclic components that did not stabilize
// within the round limit and were finalized at their provisional values.
func (m *Metrics) CyclesForced() int64 {
	return m.cyclesForced.Load()
}

func (m *Metrics) Time() time.Duration {
	return m.time
}

func (m *Metrics) String() string {
	return fmt.Sprintf(
		"Nodes: %d\nEdges: %d\nPartitions: %d\nRounds: %d\nEvaluations: %d\nRaises: %d\nCycles resolved: %d\nCycles forced: %d\nTime: %s\n",
		m.Nodes, m.Edges, m.Partitions,
		m.Rounds(), m.Evaluations(), m.Raises(),
		m.CyclesResolved(), m.CyclesForced(),
		m.time,
	)
}
