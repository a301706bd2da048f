package graph

import (
	"testing"
)

func TestSCCComponents(t *testing.T) {
	scc := _sampleGraph.SCC([]int{0})

	same := [][]int{{0, 1, 4}, {2, 3, 7}, {5, 6}}
	for _, group := range same {
		c, ok := scc.ComponentOf(group[0])
		if !ok {
			t.Fatalf("%d has no component", group[0])
		}
		for _, n := range group[1:] {
			if c2, _ := scc.ComponentOf(n); c2 != c {
				t.Errorf("%d and %d are in different components", group[0], n)
			}
		}
		if !scc.IsCyclic(c) {
			t.Errorf("Component of %d is not cyclic", group[0])
		}
	}

	for _, n := range []int{8, 9, 10, 11, 12, 13} {
		c, ok := scc.ComponentOf(n)
		if !ok {
			t.Fatalf("%d has no component", n)
		}
		if len(scc.Components[c]) != 1 || scc.IsCyclic(c) {
			t.Errorf("%d should be a trivial component, got %v", n, scc.Components[c])
		}
	}

	if _, ok := scc.ComponentOf(42); ok {
		t.Error("Unknown node was assigned a component")
	}
}

func TestSCCTopologicalOrder(t *testing.T) {
	scc := _sampleGraph.SCC([]int{0})

	for i, comp := range scc.Components {
		for _, n := range comp {
			for _, e := range edges[n] {
				j, _ := scc.ComponentOf(e)
				if j > i {
					t.Errorf("Edge %d -> %d goes from component %d to later component %d", n, e, i, j)
				}
			}
		}
	}
}

func TestSCCSelfLoop(t *testing.T) {
	G := FromAdjacency(map[string][]string{
		"a": {"a", "b"},
		"b": {},
	})
	scc := G.SCC([]string{"a"})

	ca, _ := scc.ComponentOf("a")
	cb, _ := scc.ComponentOf("b")
	if !scc.IsCyclic(ca) {
		t.Error("Self-loop not detected as cyclic")
	}
	if scc.IsCyclic(cb) {
		t.Error("Sink detected as cyclic")
	}
	if cb > ca {
		t.Errorf("Sink component %d ordered after its predecessor %d", cb, ca)
	}
}

func TestSCCToGraph(t *testing.T) {
	scc := _sampleGraph.SCC([]int{0})
	cG := scc.ToGraph()

	c0, _ := scc.ComponentOf(0)
	c2, _ := scc.ComponentOf(2)
	c5, _ := scc.ComponentOf(5)
	c8, _ := scc.ComponentOf(8)

	found := map[int]bool{}
	for _, e := range cG.Edges(c0) {
		found[e] = true
	}
	for _, want := range []int{c2, c5, c8} {
		if !found[want] {
			t.Errorf("Condensation misses edge %d -> %d", c0, want)
		}
	}
	if found[c0] {
		t.Error("Condensation contains a self-edge")
	}
}
