package graph

import (
	"fmt"

	"github.com/cs-au-dk/immut/utils"
	"github.com/cs-au-dk/immut/utils/dot"
)

var opts = utils.Opts()

type VisualizationConfig[T any] struct {
	// Provides the ID and attributes for dot nodes.
	// If not provided, the ID is the stringified node.
	NodeAttrs func(node T) (string, dot.DotAttrs)
	// Provides the attributes of the edge between two nodes.
	EdgeAttrs func(from, to T) dot.DotAttrs
	// If provided, will create clusters for nodes with the same key.
	// The returned key must be safe to use in a Go map.
	ClusterKey func(node T) any
	// Provides the ID and attributes for dot clusters.
	ClusterAttrs func(key any) (string, dot.DotAttrs)
}

// ToDotGraph renders the subgraph induced by nodes. Edges leaving the
// provided node set are omitted.
func (G Graph[T]) ToDotGraph(nodes []T, cfg *VisualizationConfig[T]) *dot.DotGraph {
	if cfg == nil {
		cfg = &VisualizationConfig[T]{}
	}

	dg := &dot.DotGraph{
		Options: map[string]string{
			"minlen":  fmt.Sprint(opts.Minlen()),
			"nodesep": fmt.Sprint(opts.Nodesep()),
			"rankdir": "BT",
		},
	}

	keyToCluster := map[any]*dot.DotCluster{}
	getCluster := func(key any) *dot.DotCluster {
		if cluster, found := keyToCluster[key]; found {
			return cluster
		}

		var id string
		var attrs dot.DotAttrs
		if cfg.ClusterAttrs != nil {
			id, attrs = cfg.ClusterAttrs(key)
		} else {
			id = fmt.Sprint(key)
		}

		cluster := dot.NewDotCluster(id)
		if attrs != nil {
			cluster.Attrs = attrs
		}
		dg.Clusters = append(dg.Clusters, cluster)

		keyToCluster[key] = cluster
		return cluster
	}

	nodeToDotNode := G.mapFactory()
	for _, node := range nodes {
		dNode := &dot.DotNode{}

		if cfg.NodeAttrs != nil {
			dNode.ID, dNode.Attrs = cfg.NodeAttrs(node)
		} else {
			dNode.ID = fmt.Sprint(node)
		}

		nodeToDotNode.Set(node, dNode)

		if cfg.ClusterKey != nil {
			cl := getCluster(cfg.ClusterKey(node))
			cl.Nodes = append(cl.Nodes, dNode)
		} else {
			dg.Nodes = append(dg.Nodes, dNode)
		}
	}

	for _, node := range nodes {
		a, _ := nodeToDotNode.Get(node)

		for _, edge := range G.Edges(node) {
			if b, found := nodeToDotNode.Get(edge); found {
				de := &dot.DotEdge{
					From: a.(*dot.DotNode),
					To:   b.(*dot.DotNode),
				}
				if cfg.EdgeAttrs != nil {
					de.Attrs = cfg.EdgeAttrs(node, edge)
				}
				dg.Edges = append(dg.Edges, de)
			}
		}
	}

	return dg
}
