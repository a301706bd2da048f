package testutil

import (
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strings"
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/results"

	"golang.org/x/tools/go/expect"
)

// NotesManager collects classification expectations written as notes in
// the source of the main package. A note names a dimension and the expected
// value, and is about the entity declared on its line:
//
//	type Config struct { //@ Class(DeepImmutableClass)
//		cfg *Config //@ Reference(LazyInitializedThreadSafeReference)
//		v   T       //@ Field("DependentImmutableField(T)")
//	}
//
// Notes on package-level variables are about the fields of the class of
// package variables.
type NotesManager struct {
	notes []*expect.Note
	exps  map[*expect.Note]Expectation

	loadRes LoadResult
}

func MakeNotesManager(t *testing.T, loadRes LoadResult) (n NotesManager) {
	n.loadRes = loadRes
	n.exps = make(map[*expect.Note]Expectation)

	fset := loadRes.Prog.Fset
	for _, file := range loadRes.MainPkg.Syntax {
		notes, err := expect.ExtractGo(fset, file)
		if err != nil {
			t.Fatal(err)
		}

		entities := declaredEntities(fset, loadRes, file)
		for _, note := range notes {
			exp, err := n.expectation(note, entities[fset.Position(note.Pos).Line])
			if err != nil {
				t.Fatalf("%s: %v", fset.Position(note.Pos), err)
			}
			n.notes = append(n.notes, note)
			n.exps[note] = exp
		}
	}

	sort.Slice(n.notes, func(i, j int) bool { return n.notes[i].Pos < n.notes[j].Pos })
	return
}

// declaredEntities maps lines to the class or field declared on them.
func declaredEntities(fset *token.FileSet, loadRes LoadResult, file *ast.File) map[int]defs.Entity {
	res := make(map[int]defs.Entity)
	line := func(n ast.Node) int { return fset.Position(n.Pos()).Line }

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gen.Specs {
			switch spec := spec.(type) {
			case *ast.TypeSpec:
				id := loadRes.Class(spec.Name.Name)
				res[line(spec.Name)] = defs.ClassOf(id)
				if st, ok := spec.Type.(*ast.StructType); ok {
					for _, f := range st.Fields.List {
						if len(f.Names) > 0 {
							res[line(f.Names[0])] = defs.FieldOf(id, f.Names[0].Name)
						}
					}
				}
			case *ast.ValueSpec:
				if gen.Tok == token.VAR && len(spec.Names) > 0 {
					res[line(spec.Names[0])] = defs.FieldOf(loadRes.Globals(), spec.Names[0].Name)
				}
			}
		}
	}
	return res
}

func (n NotesManager) expectation(note *expect.Note, e defs.Entity) (Expectation, error) {
	if e.Class == "" {
		return Expectation{}, fmt.Errorf("note %s is not on the line of a declaration", note.Name)
	}
	dim, err := defs.ParseDimension(note.Name)
	if err != nil {
		return Expectation{}, err
	}
	if dim == defs.TypeImmutability && e.Kind == defs.ClassEntity {
		e = defs.TypeOf(e.Class)
	}
	if !dim.Applies(e.Kind) {
		return Expectation{}, fmt.Errorf("%s does not apply to %s", dim, e.Name())
	}
	if len(note.Args) != 1 {
		return Expectation{}, fmt.Errorf("note %s expects exactly one value", note.Name)
	}

	var value string
	switch arg := note.Args[0].(type) {
	case expect.Identifier:
		value = string(arg)
	case string:
		value = arg
	default:
		return Expectation{}, fmt.Errorf("unexpected value %v", arg)
	}
	v, err := L.Lattices().ForDimension(dim).Parse(value)
	if err != nil {
		return Expectation{}, err
	}
	return Expectation{defs.MkKey(e, dim), v}, nil
}

// ExpectationOf returns the expectation stated by a note.
func (n NotesManager) ExpectationOf(note *expect.Note) Expectation {
	return n.exps[note]
}

func (n NotesManager) LoadResult() LoadResult {
	return n.loadRes
}

func (n NotesManager) Notes() []*expect.Note {
	return n.notes
}

// Check compares the converged classifications with every note.
func (n NotesManager) Check(t *testing.T, store *results.Store) {
	t.Helper()

	fset := n.loadRes.Prog.Fset
	for _, note := range n.notes {
		exp := n.exps[note]
		got, err := store.Get(exp.Key.Entity, exp.Key.Dim)
		if err != nil {
			t.Errorf("%s: %v", fset.Position(note.Pos), err)
			continue
		}
		if got.Name() != exp.Value.Name() {
			t.Errorf("%s: %s = %s, expected %s\n",
				fset.Position(note.Pos), exp.Key.Name(), got.Name(), exp.Value.Name())
		}
	}
}

func (n NotesManager) String() string {
	var sb strings.Builder
	sb.WriteString("Note manager found the following notes:\n\n")
	for _, note := range n.notes {
		pos := n.loadRes.Prog.Fset.Position(note.Pos)
		exp := n.exps[note]
		fmt.Fprintf(&sb, "%s(%v) at position: %s\n- %s = %s\n", note.Name, note.Args, pos, exp.Key, exp.Value)
	}
	return sb.String()
}
