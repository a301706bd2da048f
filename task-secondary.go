package main

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/detect"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/analysis/results"
	"github.com/cs-au-dk/immut/utils"
	"github.com/cs-au-dk/immut/utils/dot"
	"github.com/cs-au-dk/immut/utils/graph"

	"github.com/fatih/color"
)

// secondaryTask checks whether a task other than classification was
// provided, and executes it.
func (pl *pipeline) secondaryTask() bool {
	switch {
	// facts : prints the facts of every reported field.
	case task.IsFacts():
		pl.printFacts()
	// check-cycles : prints the cyclic components of the dependency graph.
	case task.IsCycleCheck():
		cycles := pl.newSolver().Graph().Cycles()
		fmt.Printf("Found %d cyclic components\n", len(cycles))
		for i, comp := range cycles {
			names := make([]string, len(comp))
			for j, key := range comp {
				names[j] = key.String()
			}
			fmt.Printf("%d: %s\n", i, strings.Join(names, ", "))
		}
	// deps-to-dot : renders the dependency graph labelled with the
	// converged values.
	case task.IsDepsToDot():
		store, err := pl.solve()
		if err != nil {
			log.Fatalln("Classification failed:", err)
		}
		pl.depsToDot(store)
	default:
		return false
	}
	return true
}

func (pl *pipeline) printFacts() {
	for _, id := range pl.localClasses() {
		c, err := pl.facts.Class(id)
		if err != nil {
			log.Println(err)
			continue
		}

		var flags []string
		if c.Final {
			flags = append(flags, "final")
		}
		if c.Interface {
			flags = append(flags, "interface")
		}
		if c.ReflectivelyMutable {
			flags = append(flags, "reflectively mutable")
		}
		fmt.Printf("%s %v", id, flags)
		if c.Pos != "" {
			fmt.Printf(" at %s", c.Pos)
		}
		fmt.Println()

		for _, sup := range c.Supertypes() {
			fmt.Printf("  <: %s\n", sup)
		}
		if subs, err := pl.facts.Subtypes(id); err == nil && len(subs) > 0 {
			fmt.Printf("  subtypes: %v\n", subs)
		}

		for _, f := range c.Fields {
			printField(pl.facts, c, f)
		}
		fmt.Println()
	}
}

func printField(facts *model.Facts, c *model.Class, f *model.Field) {
	var flags []string
	if f.Final {
		flags = append(flags, "final")
	}
	if f.Private {
		flags = append(flags, "private")
	}
	if f.Static {
		flags = append(flags, "static")
	}
	fmt.Printf("  %s %s %v\n", utils.NameString(f.Name), f.Type, flags)

	for _, w := range f.Writes {
		escape := facts.Escape(c.ID, f.Name, w)
		str := escape.String()
		if escape == model.EscapesGlobally {
			str = color.RedString(str)
		}
		fmt.Printf("    write %s [%s]\n", w, str)
	}
	for _, tr := range f.Traces {
		fmt.Printf("    trace %s: %v\n", tr.Method, tr.Events)
	}

	if !f.Final && f.Private && len(facts.WrittenOutsideConstruction(f)) > 0 {
		fmt.Printf("    lazy initialization: %s\n", detect.LazyInit(f))
	}
}

// depsToDot renders the dependency graph, clustering classifications by
// class. Strict edges are dashed.
func (pl *pipeline) depsToDot(store *results.Store) {
	g := pl.solver.Graph()

	var keys []defs.Key
	strict := map[[2]defs.Key]bool{}
	for _, n := range g.Nodes() {
		if !pl.reported(n.Key().Class) {
			continue
		}
		keys = append(keys, n.Key())
		for _, e := range n.Deps() {
			if e.Strict {
				strict[[2]defs.Key{n.Key(), e.To}] = true
			}
		}
	}

	dg := g.Keys().ToDotGraph(keys, &graph.VisualizationConfig[defs.Key]{
		NodeAttrs: func(key defs.Key) (string, dot.DotAttrs) {
			label := key.Name()
			if v, err := store.Get(key.Entity, key.Dim); err == nil {
				label += "\n" + v.Name()
			}
			attrs := dot.DotAttrs{"label": label}
			if n, ok := g.Node(key); ok && n.Err() != nil {
				attrs["fillcolor"] = "lightpink"
			}
			return key.Name(), attrs
		},
		EdgeAttrs: func(from, to defs.Key) dot.DotAttrs {
			if strict[[2]defs.Key{from, to}] {
				return dot.DotAttrs{"style": "dashed"}
			}
			return dot.DotAttrs{}
		},
		ClusterKey: func(key defs.Key) any {
			return key.Class
		},
		ClusterAttrs: func(key any) (string, dot.DotAttrs) {
			id := string(key.(defs.ClassID))
			return id, dot.DotAttrs{"label": id}
		},
	})
	dg.Title = "Classification dependencies"

	if opts.Visualize() {
		dg.ShowDot()
		return
	}

	var buf bytes.Buffer
	if err := dg.WriteDot(&buf); err != nil {
		log.Fatalln(err)
	}
	img, err := dot.DotToImage("", opts.OutputFormat(), buf.Bytes())
	if err != nil {
		log.Fatalln(err)
	}
	log.Println("Rendered dependency graph to", img)
}
