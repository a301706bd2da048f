package fixpoint

import (
	"fmt"
	"log"
	"time"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/analysis/results"
	"github.com/cs-au-dk/immut/utils"

	"golang.org/x/sync/errgroup"
)

// Solver drives the classification of a dependency graph to its fixpoint.
//
// Every node starts at the bottom of its lattice. Nodes are recomputed from
// the current values of their dependencies, and a raised value re-enqueues
// the dependents. A node whose consulted dependencies are all final becomes
// final itself. When no partition has pending work, the remaining
// non-final nodes are waiting on each other: their cycles are resolved to
// their greatest fixpoint, one sink component at a time.
type Solver struct {
	facts   *model.Facts
	cfg     config
	graph   *Graph
	parts   []*partition
	store   *results.Store
	metrics *Metrics
	solved  bool
}

// New builds the dependency graph of the program described by facts.
func New(facts *model.Facts, opts ...Option) *Solver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	roots := cfg.roots
	if roots == nil {
		roots = RootKeys(facts)
	}

	g := Build(facts, roots)
	parts := partitionGraph(g)
	return &Solver{
		facts: facts,
		cfg:   cfg,
		graph: g,
		parts: parts,
		store: results.NewStore(),
		metrics: &Metrics{
			Nodes:      len(g.order),
			Edges:      g.edges,
			Partitions: len(parts),
		},
	}
}

func (s *Solver) Graph() *Graph {
	return s.graph
}

func (s *Solver) Metrics() *Metrics {
	return s.metrics
}

// Store returns the result store. Queries fail with
// results.ErrAnalysisNotConverged until Solve returns successfully.
func (s *Solver) Store() *results.Store {
	return s.store
}

// Solve computes the classifications of all nodes. Solving an already
// converged graph recomputes every node and reports ErrUnstableResult if
// any final value would change.
func (s *Solver) Solve() (*results.Store, error) {
	if s.solved {
		return s.store, s.verify()
	}

	start := time.Now()
	defer func() { s.metrics.time += time.Since(start) }()

	s.setup()
	for {
		if err := s.drain(); err != nil {
			return nil, err
		}

		pending := s.pending()
		if len(pending) == 0 {
			break
		}
		if err := s.resolveCycles(pending); err != nil {
			return nil, err
		}
	}

	s.store.Complete()
	s.solved = true
	return s.store, nil
}

// setup subscribes strict dependents to their targets, finalizes malformed
// nodes, and seeds the worklists with the nodes without dependencies.
func (s *Solver) setup() {
	for _, n := range s.graph.order {
		for _, e := range n.deps {
			if e.Strict {
				s.store.Subscribe(e.To, func(defs.Key, L.Element) {
					s.enqueue(n)
				})
			}
		}
	}

	for _, n := range s.graph.order {
		switch {
		case n.err != nil:
			s.finalizeMalformed(n)
		case len(n.deps) == 0:
			s.enqueue(n)
		}
	}
}

func (s *Solver) enqueue(n *Node) {
	s.parts[n.partition].wl.Add(n)
}

func (s *Solver) finalizeMalformed(n *Node) {
	n.mu.Lock()
	n.state = Final
	for _, d := range n.dependents {
		s.enqueue(d)
	}
	v := n.value
	n.mu.Unlock()

	utils.Opts().OnVerbose(func() {
		log.Printf("%s: %v", n.key, n.err)
	})
	s.notify(Event{Finalized, n.key, v, v})
	s.store.Report(n.key, n.err)
	// Never fails: malformed nodes are published once, before completion.
	_ = s.store.Publish(n.key, v)
}

// drain runs rounds over the partitions with pending work until every
// worklist is empty.
func (s *Solver) drain() error {
	for s.queued() {
		s.metrics.rounds.Add(1)

		var g errgroup.Group
		g.SetLimit(s.cfg.workers)
		for _, p := range s.parts {
			if p.wl.IsEmpty() {
				continue
			}
			g.Go(func() error {
				return s.work(p)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) queued() bool {
	for _, p := range s.parts {
		if !p.wl.IsEmpty() {
			return true
		}
	}
	return false
}

func (s *Solver) work(p *partition) error {
	for {
		n, ok := p.wl.TryNext()
		if !ok {
			return nil
		}
		if err := s.process(n); err != nil {
			return err
		}
	}
}

// process recomputes a node. Dependents are enqueued under the node lock,
// so a dependent that read the previous value is always revisited.
func (s *Solver) process(n *Node) error {
	if _, st := n.Get(); st == Final {
		return nil
	}

	s.metrics.evaluations.Add(1)
	e := s.env()
	v := transfer(s.facts, n, e, s.cfg.closedWorld)
	final := e.allFinal && !e.blocked

	n.mu.Lock()
	old := n.value
	if !old.Leq(v) {
		n.mu.Unlock()
		return fmt.Errorf("%w: %s lowered from %s to %s", ErrNonMonotonicRefinement, n.key, old, v)
	}
	raised := !old.Eq(v)
	if raised {
		n.value = v
		n.state = Provisional
	}
	if final {
		n.state = Final
	}
	if raised || final {
		for _, d := range n.dependents {
			s.enqueue(d)
		}
	}
	n.mu.Unlock()

	if raised {
		s.metrics.raises.Add(1)
		s.notify(Event{Raised, n.key, old, v})
	}
	if final {
		s.notify(Event{Finalized, n.key, v, v})
		return s.store.Publish(n.key, v)
	}
	return nil
}

func (s *Solver) notify(ev Event) {
	if s.cfg.trace != nil {
		s.cfg.trace(ev)
	}
}

// read returns the value of a node and whether it is final. Keys outside
// the graph read as final bottom.
func (s *Solver) read(key defs.Key) (L.Element, bool) {
	n, found := s.graph.nodes[key]
	if !found {
		return L.Lattices().ForDimension(key.Dim).Bot(), true
	}
	v, st := n.Get()
	return v, st == Final
}

func (s *Solver) env() *env {
	return &env{
		allFinal: true,
		read:     s.read,
		readStrict: func(key defs.Key) (L.Element, bool) {
			return s.read(key)
		},
	}
}

// pending lists the nodes that are not final.
func (s *Solver) pending() (res []*Node) {
	for _, n := range s.graph.order {
		if _, st := n.Get(); st != Final {
			res = append(res, n)
		}
	}
	return
}

// verify recomputes every final node from the final values of its
// dependencies.
func (s *Solver) verify() error {
	for _, n := range s.graph.order {
		if n.err != nil || n.forced {
			continue
		}
		s.metrics.evaluations.Add(1)
		v := transfer(s.facts, n, s.env(), s.cfg.closedWorld)
		if old, _ := n.Get(); !old.Eq(v) {
			return fmt.Errorf("%w: %s changed from %s to %s", ErrUnstableResult, n.key, old, v)
		}
	}
	return nil
}
