package dot

import (
	"bytes"
	"strings"
	"testing"
)

func TestDotAttrsSorted(t *testing.T) {
	attrs := DotAttrs{"style": "dashed", "color": "red", "label": "x"}
	if got, expected := attrs.String(), `color="red"; label="x"; style="dashed";`; got != expected {
		t.Errorf("Got %s, expected %s", got, expected)
	}
}

func TestWriteDot(t *testing.T) {
	a := &DotNode{ID: "A.f", Attrs: DotAttrs{"label": "Deep"}}
	b := &DotNode{ID: "A", Attrs: DotAttrs{}}
	cluster := NewDotCluster("A")
	cluster.Attrs["label"] = "A"
	cluster.Nodes = append(cluster.Nodes, a, b)

	g := &DotGraph{
		Title:    "deps",
		Clusters: []*DotCluster{cluster},
		Edges:    []*DotEdge{{From: b, To: a, Attrs: DotAttrs{"style": "dashed"}}},
		Options:  map[string]string{"minlen": "2"},
	}

	var buf bytes.Buffer
	if err := g.WriteDot(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"digraph DependencyGraph {",
		`rankdir="BT";`,
		`nodesep="0.35";`,
		`edge [minlen="2"];`,
		`subgraph "cluster_A" {`,
		`label="A";`,
		`"A.f" [ label="Deep"; ]`,
		`"A" -> "A.f" [ style="dashed"; ]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output misses %q:\n%s", want, out)
		}
	}
	if g.countNodes() != 2 {
		t.Errorf("Graph has %d nodes, expected 2", g.countNodes())
	}
}
