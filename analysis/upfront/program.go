package upfront

import (
	"go/types"
	"sort"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/pkgutil"
	"github.com/cs-au-dk/immut/utils"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
	"golang.org/x/tools/go/types/typeutil"
)

/*
	The Go program model.

	Named struct types become final classes: Go has no inheritance. Named
	interfaces become non-final types whose subtypes are the collected
	classes implementing them, by value or by pointer. The package-level
	variables of a package become the static fields of a class named after
	the package path.

	Unexported fields are private, and no field is final. Whether a field is
	effectively final is decided by its write sites, which are extracted from
	the SSA form of every function outside of GOROOT.
*/

// Result is the program model extracted from Go packages.
type Result struct {
	Program *model.MemProgram
	// Escapes classifies the write sites of Program.
	Escapes model.EscapeTable
	// Local lists the classes declared in the loaded packages.
	Local []defs.ClassID
	// Package of every class.
	Packages map[defs.ClassID]*types.Package
	// Writes and Traces are the raw facts behind the model.
	Writes *WrittenFields
	Traces *AccessTraces
}

// Facts pairs the program with its escape classification.
func (r *Result) Facts() *model.Facts {
	return model.NewFacts(r.Program, r.Escapes)
}

type builder struct {
	prog *ssa.Program
	// Class id of every collected named type, keyed by its origin.
	ids     typeutil.Map
	classes map[defs.ClassID]*model.Class
	named   map[defs.ClassID]*types.Named
	queue   []*types.Named
	// Packages whose functions are analyzed.
	scanned map[*types.Package]bool
	packages map[defs.ClassID]*types.Package
	// Placeholder types numbering the fields of package-level variables.
	globalKeys map[defs.ClassID]types.Type
}

// BuildProgram extracts the program model of the given packages. Types
// referenced from their fields are included transitively.
func BuildProgram(prog *ssa.Program, pkgs []*ssa.Package) *Result {
	b := &builder{
		prog:    prog,
		classes: make(map[defs.ClassID]*model.Class),
		named:   make(map[defs.ClassID]*types.Named),
		scanned: make(map[*types.Package]bool),

		globalKeys: make(map[defs.ClassID]types.Type),
		packages:   make(map[defs.ClassID]*types.Package),
	}
	for _, pkg := range prog.AllPackages() {
		if !pkgutil.CheckPkgInGoroot(pkg.Pkg) {
			b.scanned[pkg.Pkg] = true
		}
	}

	res := &Result{
		Program:  model.NewProgram(),
		Packages: make(map[defs.ClassID]*types.Package),
	}
	local := map[defs.ClassID]bool{}
	for _, pkg := range pkgs {
		verbosePrint("Collecting classes of %s\n", utils.SSAPkgString(pkg))
		for _, id := range b.collectPackage(pkg) {
			local[id] = true
		}
	}
	b.drain()
	b.implementations()

	funs := ssautil.AllFunctions(prog)
	res.Writes = ComputeWrittenFields(b, funs)
	res.Traces = ComputeAccessTraces(b, funs, res.Writes)
	res.Escapes = res.Writes.Escapes()

	for id, c := range b.classes {
		b.attachFacts(c, res)
		res.Packages[id] = b.packages[id]
		res.Program.Add(c)
		if local[id] {
			res.Local = append(res.Local, id)
		}
	}
	sort.Slice(res.Local, func(i, j int) bool { return res.Local[i] < res.Local[j] })

	verbosePrint("Extracted %d classes (%d local), %d write sites\n",
		len(b.classes), len(res.Local), len(res.Escapes))
	return res
}

// classID names a package-level named type. Types declared inside functions
// have no class.
func classID(named *types.Named) (defs.ClassID, bool) {
	obj := named.Origin().Obj()
	if obj.Pkg() == nil || obj.Parent() != obj.Pkg().Scope() {
		return "", false
	}
	return defs.ClassID(obj.Pkg().Path() + "." + obj.Name()), true
}

// globalsID names the class holding the package-level variables of pkg.
func globalsID(pkg *types.Package) defs.ClassID {
	return defs.ClassID(pkg.Path())
}

func (b *builder) collectPackage(pkg *ssa.Package) (ids []defs.ClassID) {
	globals := &model.Class{
		ID:    globalsID(pkg.Pkg),
		Final: true,
	}

	names := make([]string, 0, len(pkg.Members))
	for name := range pkg.Members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch m := pkg.Members[name].(type) {
		case *ssa.Type:
			if named, ok := types.Unalias(m.Type()).(*types.Named); ok {
				if id, ok := b.class(named); ok {
					ids = append(ids, id)
				}
			}
		case *ssa.Global:
			if !isUserGlobal(m) {
				continue
			}
			globals.Fields = append(globals.Fields, &model.Field{
				Name:    m.Name(),
				Type:    b.typeRef(m.Type().(*types.Pointer).Elem()),
				Private: !m.Object().Exported(),
				Static:  true,
			})
		}
	}

	if len(globals.Fields) > 0 {
		b.classes[globals.ID] = globals
		b.packages[globals.ID] = pkg.Pkg
		ids = append(ids, globals.ID)
	}
	return
}

// isUserGlobal excludes the globals synthesized by the SSA builder.
func isUserGlobal(g *ssa.Global) bool {
	obj, ok := g.Object().(*types.Var)
	return ok && obj != nil && obj.Name() != "_"
}

// class returns the id of the class of a named struct or interface type,
// scheduling its construction.
func (b *builder) class(named *types.Named) (defs.ClassID, bool) {
	origin := named.Origin()
	if id := b.ids.At(origin); id != nil {
		return id.(defs.ClassID), true
	}

	switch origin.Underlying().(type) {
	case *types.Struct, *types.Interface:
	default:
		return "", false
	}
	id, ok := classID(origin)
	if !ok {
		return "", false
	}

	b.ids.Set(origin, id)
	b.named[id] = origin
	b.packages[id] = origin.Obj().Pkg()
	b.queue = append(b.queue, origin)
	return id, true
}

func (b *builder) drain() {
	for len(b.queue) > 0 {
		named := b.queue[0]
		b.queue = b.queue[1:]
		c := b.build(named)
		b.classes[c.ID] = c
	}
}

func (b *builder) build(named *types.Named) *model.Class {
	id, _ := classID(named)
	c := &model.Class{
		ID:  id,
		Pos: b.prog.Fset.Position(named.Obj().Pos()).String(),
	}

	tparams := named.TypeParams()
	for i := 0; i < tparams.Len(); i++ {
		tp := tparams.At(i)
		c.TypeParams = append(c.TypeParams, model.TypeParam{
			Name:  tp.Obj().Name(),
			Bound: b.bound(tp),
		})
	}

	switch u := named.Underlying().(type) {
	case *types.Interface:
		c.Interface = true
	case *types.Struct:
		c.Final = true
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			if f.Name() == "_" {
				continue
			}
			c.Fields = append(c.Fields, &model.Field{
				Name:    f.Name(),
				Type:    b.typeRef(f.Type()),
				Private: !f.Exported(),
			})
		}
	}
	return c
}

// bound maps the constraint of a type parameter to a class type if it is a
// named interface.
func (b *builder) bound(tp *types.TypeParam) defs.TypeRef {
	if named, ok := types.Unalias(tp.Constraint()).(*types.Named); ok {
		if id, ok := b.class(named); ok {
			return defs.ClassRef(id)
		}
	}
	return defs.Unknown()
}

// typeRef maps a Go type to a declared type of the model:
//   - basic types and named types over them are primitive,
//   - named structs and interfaces, or pointers to them, are class types,
//   - type parameters are parameters,
//   - slices, arrays, maps, channels and other pointers are containers,
//   - functions and unsafe pointers are containers of unknown contents,
//   - everything else is unknown.
func (b *builder) typeRef(t types.Type) defs.TypeRef {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return defs.ArrayOf(defs.Unknown())
		}
		return defs.Primitive()
	case *types.TypeParam:
		return defs.Param(t.Obj().Name())
	case *types.Named:
		if id, ok := b.class(t); ok {
			var args []defs.TypeRef
			targs := t.TypeArgs()
			for i := 0; i < targs.Len(); i++ {
				args = append(args, b.typeRef(targs.At(i)))
			}
			return defs.ClassRef(id, args...)
		}
		return b.typeRef(t.Underlying())
	case *types.Pointer:
		if named, ok := types.Unalias(t.Elem()).(*types.Named); ok {
			if _, isStruct := named.Underlying().(*types.Struct); isStruct {
				return b.typeRef(named)
			}
		}
		return defs.ArrayOf(b.typeRef(t.Elem()))
	case *types.Slice:
		return defs.ArrayOf(b.typeRef(t.Elem()))
	case *types.Array:
		return defs.ArrayOf(b.typeRef(t.Elem()))
	case *types.Map:
		return defs.ArrayOf(b.typeRef(t.Elem()))
	case *types.Chan:
		return defs.ArrayOf(b.typeRef(t.Elem()))
	case *types.Signature:
		return defs.ArrayOf(defs.Unknown())
	}
	return defs.Unknown()
}

// implementations records, for every non-generic struct class, the
// non-generic interfaces it implements by value or by pointer.
func (b *builder) implementations() {
	var structs, ifaces []defs.ClassID
	for id, named := range b.named {
		if named.TypeParams().Len() > 0 {
			continue
		}
		switch u := named.Underlying().(type) {
		case *types.Struct:
			structs = append(structs, id)
		case *types.Interface:
			if u.IsMethodSet() {
				ifaces = append(ifaces, id)
			}
		}
	}
	sort.Slice(structs, func(i, j int) bool { return structs[i] < structs[j] })
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i] < ifaces[j] })

	for _, s := range structs {
		named := b.named[s]
		for _, i := range ifaces {
			iface := b.named[i].Underlying().(*types.Interface)
			if types.Implements(named, iface) || types.Implements(types.NewPointer(named), iface) {
				c := b.classes[s]
				c.Interfaces = append(c.Interfaces, defs.ClassRef(i))
			}
		}
	}
}

// attachFacts adds the extracted write sites and access traces to the
// fields of a class. Fields of classes whose package is not analyzed may be
// written by unknown code.
func (b *builder) attachFacts(c *model.Class, res *Result) {
	named, isType := b.named[c.ID]
	external := isType && !b.scanned[named.Obj().Pkg()]

	for _, f := range c.Fields {
		ref := fieldRef{c.ID, f.Name}
		if external {
			w := &model.WriteSite{
				ID:      string(c.ID) + "." + f.Name + "@external",
				Method:  "<unknown>",
				NonNull: true,
				Escape:  model.EscapesGlobally,
			}
			f.Writes = append(f.Writes, w)
			res.Escapes[w.ID] = w.Escape
			continue
		}
		f.Writes = res.Writes.Sites(ref)
		f.Traces = res.Traces.Of(ref)
	}
}
