package fixpoint

import (
	"github.com/cs-au-dk/immut/utils/worklist"

	uf "github.com/spakin/disjoint"
)

// partition is a weakly connected component of the dependency graph over
// non-strict edges. Only strict edges cross partitions.
type partition struct {
	id    int
	nodes []*Node
	wl    *worklist.Unique[*Node]
}

// partitionGraph assigns every node of the graph to a partition. Partitions
// are numbered in the order of their first node.
func partitionGraph(g *Graph) []*partition {
	elements := make(map[*Node]*uf.Element, len(g.order))
	for _, n := range g.order {
		el := uf.NewElement()
		el.Data = n
		elements[n] = el
	}

	for _, n := range g.order {
		for _, e := range n.deps {
			if !e.Strict {
				uf.Union(elements[n], elements[g.nodes[e.To]])
			}
		}
	}

	var parts []*partition
	byRep := make(map[*uf.Element]*partition)
	for _, n := range g.order {
		rep := elements[n].Find()
		p, found := byRep[rep]
		if !found {
			p = &partition{id: len(parts), wl: worklist.NewUnique[*Node]()}
			byRep[rep] = p
			parts = append(parts, p)
		}
		n.partition = p.id
		p.nodes = append(p.nodes, n)
	}
	return parts
}
