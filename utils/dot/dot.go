package dot

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DotAttrs are the attributes of a node, edge or cluster. They are printed
// in key order so that output is stable.
type DotAttrs map[string]string

func (p DotAttrs) List() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := make([]string, 0, len(keys))
	for _, k := range keys {
		l = append(l, fmt.Sprintf("%s=%q;", k, p[k]))
	}
	return l
}

func (p DotAttrs) String() string {
	return strings.Join(p.List(), " ")
}

type DotNode struct {
	ID    string
	Attrs DotAttrs
}

func (n *DotNode) String() string {
	return n.ID
}

type DotEdge struct {
	From  *DotNode
	To    *DotNode
	Attrs DotAttrs
}

// DotCluster groups the nodes of one class, e.g. the class node together
// with the nodes of its fields.
type DotCluster struct {
	ID    string
	Nodes []*DotNode
	Attrs DotAttrs
}

func NewDotCluster(id string) *DotCluster {
	return &DotCluster{ID: id, Attrs: make(DotAttrs)}
}

func (c *DotCluster) String() string {
	return "cluster_" + c.ID
}

// DotGraph is a directed graph of classification keys. Options may set
// minlen, nodesep and rankdir.
type DotGraph struct {
	Title    string
	Clusters []*DotCluster
	Nodes    []*DotNode
	Edges    []*DotEdge
	Options  map[string]string
}

func (g *DotGraph) countNodes() int {
	res := len(g.Nodes)
	for _, cluster := range g.Clusters {
		res += len(cluster.Nodes)
	}
	return res
}

func (g *DotGraph) option(key, def string) string {
	if v, ok := g.Options[key]; ok && v != "" {
		return v
	}
	return def
}

const nodeStyle = `shape="box" style="rounded,filled" fillcolor="honeydew" fontname="Verdana" penwidth="1.0" margin="0.05,0.0"`

// WriteDot prints the graph in the dot language.
func (g *DotGraph) WriteDot(w io.Writer) error {
	var buf bytes.Buffer
	line := func(indent int, format string, args ...any) {
		buf.WriteString(strings.Repeat("\t", indent))
		fmt.Fprintf(&buf, format, args...)
		buf.WriteByte('\n')
	}
	node := func(indent int, n *DotNode) {
		line(indent, "%q [ %s ]", n.ID, n.Attrs)
	}

	line(0, "digraph DependencyGraph {")
	line(1, "label=%q;", g.Title)
	line(1, `labeljust="l";`)
	line(1, `fontname="Arial";`)
	line(1, "rankdir=%q;", g.option("rankdir", "BT"))
	line(1, "nodesep=%q;", g.option("nodesep", "0.35"))
	line(1, `bgcolor="white";`)
	line(1, "node [%s];", nodeStyle)
	line(1, "edge [minlen=%q];", g.option("minlen", "1"))

	for _, c := range g.Clusters {
		line(1, "subgraph %q {", c.String())
		for _, attr := range c.Attrs.List() {
			line(2, "%s", attr)
		}
		for _, n := range c.Nodes {
			node(2, n)
		}
		line(1, "}")
	}
	for _, n := range g.Nodes {
		node(1, n)
	}
	for _, e := range g.Edges {
		line(1, "%q -> %q [ %s ]", e.From, e.To, e.Attrs)
	}
	line(0, "}")

	_, err := buf.WriteTo(w)
	return err
}
