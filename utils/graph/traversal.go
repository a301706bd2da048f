package graph

import W "github.com/cs-au-dk/immut/utils/worklist"

// Reachable lists the nodes reachable from starts in breadth-first order,
// starts included. Every listed node has had its edges computed.
func (G Graph[T]) Reachable(starts ...T) []T {
	visited := G.mapFactory()
	var order []T

	W.StartV(starts, func(node T, add func(T)) {
		if _, found := visited.Get(node); found {
			return
		}
		visited.Set(node, true)
		order = append(order, node)

		for _, next := range G.Edges(node) {
			if _, found := visited.Get(next); !found {
				add(next)
			}
		}
	})

	return order
}
