package fixpoint

import (
	"fmt"
	"log"
	"sort"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/utils"
	"github.com/cs-au-dk/immut/utils/graph"
)

// resolveCycles finalizes the sink components of the subgraph of pending
// nodes. A sink component only depends on final nodes outside of itself.
func (s *Solver) resolveCycles(pending []*Node) error {
	inPending := make(map[defs.Key]bool, len(pending))
	keys := make([]defs.Key, len(pending))
	for i, n := range pending {
		inPending[n.key] = true
		keys[i] = n.key
	}

	G := graph.OfHashable(func(key defs.Key) (res []defs.Key) {
		for _, e := range s.graph.nodes[key].deps {
			if inPending[e.To] {
				res = append(res, e.To)
			}
		}
		return
	})

	scc := G.SCC(keys)
	condensed := scc.ToGraph()
	for i, comp := range scc.Components {
		if len(condensed.Edges(i)) > 0 {
			continue
		}

		if !scc.IsCyclic(i) {
			// Every dependency is final, but the node was never revisited.
			s.enqueue(s.graph.nodes[comp[0]])
			continue
		}
		if err := s.resolveCycle(comp); err != nil {
			return err
		}
	}
	return nil
}

// resolveCycle computes the greatest fixpoint of a cyclic sink component by
// descending from the top of every member lattice over a scratch copy of
// the values. In-component dependencies are read optimistically, including
// strict ones, and all other dependencies at their final values. If the
// iteration does not stabilize within the bound, the members are finalized
// at their provisional values.
func (s *Solver) resolveCycle(keys []defs.Key) error {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	members := make([]*Node, len(keys))
	scratch := make(map[defs.Key]L.Element, len(keys))
	for i, key := range keys {
		members[i] = s.graph.nodes[key]
		scratch[key] = L.Lattices().ForDimension(key.Dim).Top()
	}

	e := &env{
		read: func(key defs.Key) (L.Element, bool) {
			if v, in := scratch[key]; in {
				return v, false
			}
			return s.read(key)
		},
		readStrict: func(key defs.Key) (L.Element, bool) {
			if v, in := scratch[key]; in {
				return v, true
			}
			return s.read(key)
		},
	}

	bound := s.cfg.maxCycleRounds
	if bound <= 0 {
		bound = len(members)*8 + 8
	}

	stable := false
	for round := 0; round < bound && !stable; round++ {
		stable = true
		for _, m := range members {
			e.allFinal, e.blocked = true, false
			s.metrics.evaluations.Add(1)
			if v := transfer(s.facts, m, e, s.cfg.closedWorld); !v.Eq(scratch[m.key]) {
				scratch[m.key] = v
				stable = false
			}
		}
	}

	if stable {
		s.metrics.cyclesResolved.Add(1)
	} else {
		s.metrics.cyclesForced.Add(1)
		utils.Opts().OnVerbose(func() {
			log.Printf("Cycle of %d nodes did not stabilize after %d rounds", len(members), bound)
		})
		for _, m := range members {
			m.forced = true
			scratch[m.key], _ = m.Get()
		}
	}

	for _, m := range members {
		if old, _ := m.Get(); !old.Leq(scratch[m.key]) {
			return fmt.Errorf("%w: cycle resolution lowered %s from %s to %s",
				ErrNonMonotonicRefinement, m.key, old, scratch[m.key])
		}
	}

	// All members become final at once.
	for _, m := range members {
		m.mu.Lock()
	}
	olds := make([]L.Element, len(members))
	for i, m := range members {
		olds[i] = m.value
		m.value = scratch[m.key]
		m.state = Final
		for _, d := range m.dependents {
			s.enqueue(d)
		}
	}
	for _, m := range members {
		m.mu.Unlock()
	}

	for i, m := range members {
		v := scratch[m.key]
		if !olds[i].Eq(v) {
			s.metrics.raises.Add(1)
			s.notify(Event{Raised, m.key, olds[i], v})
		}
		s.notify(Event{Finalized, m.key, v, v})
	}
	for _, m := range members {
		if err := s.store.Publish(m.key, scratch[m.key]); err != nil {
			return err
		}
	}
	return nil
}
