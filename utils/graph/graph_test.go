package graph

import (
	"sort"
	"testing"
)

var edges = map[int][]int{
	0:  {1, 8},
	1:  {4, 5, 2},
	2:  {6, 3, 9},
	3:  {2, 7},
	4:  {0, 5},
	5:  {6},
	6:  {5},
	7:  {3, 6},
	8:  {},
	9:  {10, 11},
	10: {12, 13},
	11: {12, 13},
	12: {},
	13: {},
}
var _sampleGraph = FromAdjacency(edges)

func TestEdgesAreCached(t *testing.T) {
	calls := 0
	G := OfHashable(func(i int) []int {
		calls++
		return edges[i]
	})

	G.Edges(0)
	G.Edges(0)
	if calls != 1 {
		t.Errorf("Edge function called %d times, expected 1", calls)
	}
}

func TestReachable(t *testing.T) {
	visited := _sampleGraph.Reachable(9)
	if len(visited) == 0 || visited[0] != 9 {
		t.Fatalf("Traversal %v does not start at 9", visited)
	}

	sort.Ints(visited)
	expected := []int{9, 10, 11, 12, 13}
	if len(visited) != len(expected) {
		t.Fatalf("Visited %v, expected %v", visited, expected)
	}
	for i := range expected {
		if visited[i] != expected[i] {
			t.Fatalf("Visited %v, expected %v", visited, expected)
		}
	}
}

func TestReachableFromSeveralStarts(t *testing.T) {
	visited := _sampleGraph.Reachable(8, 5, 8)
	sort.Ints(visited)
	if len(visited) != 3 || visited[0] != 5 || visited[1] != 6 || visited[2] != 8 {
		t.Errorf("Visited %v, expected [5 6 8]", visited)
	}
}
