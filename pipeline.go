package main

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/fixpoint"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/analysis/results"
	u "github.com/cs-au-dk/immut/analysis/upfront"
	"github.com/cs-au-dk/immut/pkgutil"
	"github.com/cs-au-dk/immut/utils"

	"github.com/fatih/color"
	"golang.org/x/tools/go/ssa/ssautil"
)

// pipeline is a wrapper around the analysis pipeline.
type pipeline struct {
	facts *model.Facts
	// extracted is the model of the loaded Go packages. It is nil when the
	// program is read from a fixture.
	extracted *u.Result
	// local restricts the reported classes. A nil map reports everything.
	local map[defs.ClassID]bool
	roots []defs.Key

	solver *fixpoint.Solver
}

// load builds the program model, either from a YAML fixture or from the
// Go packages designated by the command line.
func load() (*pipeline, error) {
	if path := opts.Fixture(); path != "" {
		log.Println("Loading fixture", path)
		prog, err := model.LoadYAML(path)
		if err != nil {
			return nil, err
		}
		return &pipeline{facts: model.NewFacts(prog, nil)}, nil
	}

	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{
		GoPath:       opts.GoPath(),
		ModulePath:   opts.ModulePath(),
		IncludeTests: opts.IncludeTests(),
	}, utils.MakePath())
	if err != nil {
		return nil, err
	}

	prog, ssaPkgs, err := pkgutil.BuildSSA(pkgs, 0)
	if err != nil {
		return nil, err
	}

	if mains := ssautil.MainPackages(prog.AllPackages()); len(mains) > 0 {
		if err := pkgutil.GetLocalPackages(mains, pkgutil.AllPackages(prog)); err != nil {
			return nil, err
		}
	}

	log.Println("Extracting program facts...")
	res := u.BuildProgram(prog, ssaPkgs)
	log.Println("Program facts done")

	pl := &pipeline{facts: res.Facts(), extracted: res}
	if opts.LocalOnly() {
		pl.local = make(map[defs.ClassID]bool)
		for _, id := range res.Local {
			pl.local[id] = true
		}
		for id, pkg := range res.Packages {
			if pkgutil.IsLocalPackage(pkg) {
				pl.local[id] = true
			}
		}
		pl.roots = fixpoint.ClassKeys(pl.facts, pl.localClasses()...)
	}
	return pl, nil
}

// localClasses lists the reported classes in order.
func (p *pipeline) localClasses() []defs.ClassID {
	if p.local == nil {
		return p.facts.Roots()
	}
	ids := make([]defs.ClassID, 0, len(p.local))
	for id := range p.local {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (p *pipeline) reported(id defs.ClassID) bool {
	return p.local == nil || p.local[id]
}

// newSolver builds the dependency graph of the reported classes.
func (p *pipeline) newSolver() *fixpoint.Solver {
	if p.solver == nil {
		var options []fixpoint.Option
		if len(p.roots) > 0 {
			options = append(options, fixpoint.WithRoots(p.roots...))
		}
		p.solver = fixpoint.New(p.facts, options...)
	}
	return p.solver
}

func (p *pipeline) solve() (*results.Store, error) {
	s := p.newSolver()
	log.Printf("Solving %d classifications over %d partitions...\n",
		s.Metrics().Nodes, s.Metrics().Partitions)
	defer utils.TimeTrack(time.Now(), "Classification")
	return s.Solve()
}

// printClassifications prints the converged classifications of the
// reported classes, followed by the dependencies that could not be
// resolved. The result is true if there were any.
func (p *pipeline) printClassifications(store *results.Store) bool {
	entries, err := store.Entries()
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("================ Results =====================")
	for _, e := range entries {
		if p.reported(e.Key.Class) {
			fmt.Printf("%s = %s\n", e.Key, e.Value)
		}
	}

	errs := store.Errors()
	for _, err := range errs {
		fmt.Println(color.RedString("Error:"), err)
	}
	return len(errs) > 0
}
