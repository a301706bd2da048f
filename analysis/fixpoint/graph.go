package fixpoint

import (
	"sort"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/detect"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/utils/graph"
)

// Graph is the dependency graph of the classifications reachable from a set
// of roots.
type Graph struct {
	nodes map[defs.Key]*Node
	order []*Node
	edges int
}

// RootKeys lists every classification of every class of the program.
func RootKeys(facts *model.Facts) []defs.Key {
	return ClassKeys(facts, facts.Roots()...)
}

// ClassKeys lists the classifications of the given classes and their
// fields.
func ClassKeys(facts *model.Facts, ids ...defs.ClassID) []defs.Key {
	var keys []defs.Key
	for _, id := range ids {
		keys = append(keys, defs.ClassKey(id), defs.TypeKey(id))
		if c, err := facts.Class(id); err == nil {
			for _, f := range c.Fields {
				keys = append(keys, defs.ReferenceKey(id, f.Name), defs.FieldKey(id, f.Name))
			}
		}
	}
	return keys
}

// Build creates the nodes of the classifications reachable from roots.
// Dependencies that cannot be resolved do not abort the construction: the
// depending node records a model.ErrMalformedDependency error instead.
func Build(facts *model.Facts, roots []defs.Key) *Graph {
	g := &Graph{nodes: make(map[defs.Key]*Node)}

	G := graph.OfHashable(func(key defs.Key) []defs.Key {
		n := g.create(facts, key)
		targets := make([]defs.Key, len(n.deps))
		for i, e := range n.deps {
			targets[i] = e.To
		}
		return targets
	})
	G.Reachable(roots...)

	for _, n := range g.nodes {
		g.order = append(g.order, n)
		g.edges += len(n.deps)
		for _, e := range n.deps {
			if !e.Strict {
				to := g.nodes[e.To]
				to.dependents = append(to.dependents, n)
			}
		}
	}
	sort.Slice(g.order, func(i, j int) bool {
		return g.order[i].key.Less(g.order[j].key)
	})
	for _, n := range g.order {
		sort.Slice(n.dependents, func(i, j int) bool {
			return n.dependents[i].key.Less(n.dependents[j].key)
		})
	}

	return g
}

func (g *Graph) create(facts *model.Facts, key defs.Key) *Node {
	if n, found := g.nodes[key]; found {
		return n
	}

	n := newNode(key)
	g.nodes[key] = n

	n.class, n.err = facts.Class(key.Class)
	if n.err != nil {
		return n
	}

	switch key.Dim {
	case defs.ReferenceImmutability:
		n.field, n.err = facts.Field(key.Class, key.Field)
	case defs.FieldImmutability:
		if n.field, n.err = facts.Field(key.Class, key.Field); n.err != nil {
			break
		}
		if n.dep, n.err = detect.Generic(facts, n.class, n.field.Type); n.err != nil {
			break
		}
		n.deps = append([]defs.Edge{{To: defs.ReferenceKey(key.Class, key.Field)}}, n.dep.Edges...)
	case defs.ClassImmutability:
		n.deps, n.err = classEdges(facts, n.class)
	case defs.TypeImmutability:
		if n.subtypes, n.err = facts.Subtypes(key.Class); n.err != nil {
			break
		}
		n.deps = []defs.Edge{{To: defs.ClassKey(key.Class)}}
		for _, s := range n.subtypes {
			n.deps = append(n.deps, defs.Edge{To: defs.TypeKey(s)})
		}
	}

	if n.err != nil {
		n.deps = nil
	}
	return n
}

func classEdges(facts *model.Facts, c *model.Class) ([]defs.Edge, error) {
	fields, err := facts.InstanceFields(c.ID)
	if err != nil {
		return nil, err
	}

	var edges []defs.Edge
	for _, f := range fields {
		edges = append(edges, defs.Edge{To: defs.FieldKey(c.ID, f.Name)})
	}

	if c.Super == nil || c.Super.Kind != defs.ClassType {
		return edges, nil
	}
	if err := facts.Resolve(*c.Super, c); err != nil {
		return nil, err
	}
	if !c.Super.IsGeneric() {
		return append(edges, defs.Edge{To: defs.ClassKey(c.Super.Class)}), nil
	}

	super, _ := facts.Class(c.Super.Class)
	edges = append(edges, defs.Edge{
		To:     defs.ClassKey(super.ID),
		Subst:  defs.Bind(super.ParamNames(), c.Super.Args),
		Strict: true,
	})
	args, err := detect.Arguments(facts, c, c.Super.Args)
	if err != nil {
		return nil, err
	}
	return append(edges, args.Edges...), nil
}

// Node returns the node of a classification.
func (g *Graph) Node(key defs.Key) (*Node, bool) {
	n, found := g.nodes[key]
	return n, found
}

// Nodes lists all nodes ordered by key.
func (g *Graph) Nodes() []*Node {
	return g.order
}

func (g *Graph) NumEdges() int {
	return g.edges
}

// Keys is the dependency relation as a generic graph.
func (g *Graph) Keys() graph.Graph[defs.Key] {
	return graph.OfHashable(func(key defs.Key) []defs.Key {
		n, found := g.nodes[key]
		if !found {
			return nil
		}
		targets := make([]defs.Key, 0, len(n.deps))
		for _, e := range n.deps {
			targets = append(targets, e.To)
		}
		return targets
	})
}

// Cycles decomposes the graph into strongly connected components and
// returns the cyclic ones, dependencies first.
func (g *Graph) Cycles() [][]defs.Key {
	keys := make([]defs.Key, len(g.order))
	for i, n := range g.order {
		keys[i] = n.key
	}

	scc := g.Keys().SCC(keys)
	var res [][]defs.Key
	for i, comp := range scc.Components {
		if scc.IsCyclic(i) {
			sorted := append([]defs.Key(nil), comp...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
			res = append(res, sorted)
		}
	}
	return res
}
