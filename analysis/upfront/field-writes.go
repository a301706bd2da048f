package upfront

import (
	"fmt"
	"go/token"
	T "go/types"
	"sort"
	"strings"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/utils"

	"github.com/fatih/color"
	"golang.org/x/tools/container/intsets"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/types/typeutil"
)

// fieldRef identifies a field of a class.
type fieldRef struct {
	class defs.ClassID
	name  string
}

func (r fieldRef) String() string {
	return string(r.class) + "." + r.name
}

// WrittenFields records the write sites of every field of the collected
// classes. Fields are numbered by giving each class a start index, such
// that sets of fields are sparse integer sets.
type WrittenFields struct {
	typMap typeutil.Map
	refs   []fieldRef
	refIdx map[fieldRef]int
	// Fields written outside of construction.
	lateWritten intsets.Sparse
	sites       map[fieldRef][]*model.WriteSite
	escapes     model.EscapeTable
	// Write sites of every store instruction.
	stores map[*ssa.Store][]fieldWrite
}

type fieldWrite struct {
	ref  fieldRef
	site *model.WriteSite
}

// Sites lists the write sites of a field in program order.
func (w *WrittenFields) Sites(ref fieldRef) []*model.WriteSite {
	return w.sites[ref]
}

// Escapes returns the escape classification of every write site.
func (w *WrittenFields) Escapes() model.EscapeTable {
	res := make(model.EscapeTable, len(w.escapes))
	for id, e := range w.escapes {
		res[id] = e
	}
	return res
}

// WrittenLate is true if the field has a write site outside of
// construction.
func (w *WrittenFields) WrittenLate(ref fieldRef) bool {
	idx, ok := w.index(ref)
	return ok && w.lateWritten.Has(idx)
}

// Store returns the write sites created for a store instruction.
func (w *WrittenFields) Store(st *ssa.Store) []fieldWrite {
	return w.stores[st]
}

func (w *WrittenFields) index(ref fieldRef) (int, bool) {
	idx, ok := w.refIdx[ref]
	return idx, ok
}

// startIndex returns the index of the first field of a class.
func (w *WrittenFields) startIndex(key T.Type, c *model.Class) int {
	if v := w.typMap.At(key); v != nil {
		return v.(int)
	}

	start := len(w.refs)
	w.typMap.Set(key, start)
	for _, f := range c.Fields {
		ref := fieldRef{c.ID, f.Name}
		w.refIdx[ref] = len(w.refs)
		w.refs = append(w.refs, ref)
	}
	return start
}

// ComputeWrittenFields scans the store instructions of the analyzed
// functions. A store is part of construction when it initializes an object
// allocated by the same function, or a package-level variable from a
// package initializer.
func ComputeWrittenFields(b *builder, funs map[*ssa.Function]bool) *WrittenFields {
	w := &WrittenFields{
		refIdx:  make(map[fieldRef]int),
		sites:   make(map[fieldRef][]*model.WriteSite),
		escapes: make(model.EscapeTable),
		stores:  make(map[*ssa.Store][]fieldWrite),
	}

	for _, fun := range sortedFunctions(funs) {
		for _, block := range fun.Blocks {
			for _, insn := range block.Instrs {
				if store, ok := insn.(*ssa.Store); ok {
					w.visitStore(b, fun, store)
				}
			}
		}
	}
	return w
}

// sortedFunctions returns the analyzed functions in a stable order.
// Instantiations of generic functions are represented by their origin when
// its body is built.
func sortedFunctions(funs map[*ssa.Function]bool) []*ssa.Function {
	set := make(map[*ssa.Function]bool, len(funs))
	for fun := range funs {
		if o := fun.Origin(); o != nil && len(o.Blocks) > 0 {
			fun = o
		}
		if analyzed(fun) {
			set[fun] = true
		}
	}

	res := make([]*ssa.Function, 0, len(set))
	for fun := range set {
		res = append(res, fun)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Pos() != res[j].Pos() {
			return res[i].Pos() < res[j].Pos()
		}
		return res[i].String() < res[j].String()
	})
	return res
}

// target resolves the fields written by a store. Whole struct stores write
// every field of the struct.
func (w *WrittenFields) target(b *builder, fun *ssa.Function, store *ssa.Store) (refs []fieldRef, constructor bool) {
	switch addr := store.Addr.(type) {
	case *ssa.FieldAddr:
		named, structT, ok := utils.StructOf(addr.X.Type())
		if !ok {
			return nil, false
		}
		id := b.ids.At(named.Origin())
		if id == nil {
			return nil, false
		}
		return []fieldRef{{id.(defs.ClassID), structT.Field(addr.Field).Name()}}, freshRoot(addr.X)
	case *ssa.Global:
		if !isUserGlobal(addr) {
			return nil, false
		}
		return []fieldRef{{globalsID(addr.Pkg.Pkg), addr.Name()}}, isInitializer(fun)
	default:
		named, _, ok := utils.StructOf(store.Addr.Type())
		if !ok {
			return nil, false
		}
		id := b.ids.At(named.Origin())
		if id == nil {
			return nil, false
		}
		c := b.classes[id.(defs.ClassID)]
		if c == nil {
			return nil, false
		}
		for _, f := range c.Fields {
			refs = append(refs, fieldRef{c.ID, f.Name})
		}
		return refs, freshRoot(store.Addr)
	}
}

func (w *WrittenFields) visitStore(b *builder, fun *ssa.Function, store *ssa.Store) {
	refs, constructor := w.target(b, fun, store)
	if len(refs) == 0 {
		return
	}

	whole := false
	switch store.Addr.(type) {
	case *ssa.FieldAddr, *ssa.Global:
	default:
		whole = true
	}

	pos := ""
	if p := store.Pos(); p != token.NoPos {
		pos = fun.Prog.Fset.Position(p).String()
	}

	for _, ref := range refs {
		c := b.classes[ref.class]
		if c == nil {
			continue
		}
		f, ok := c.Field(ref.name)
		if !ok {
			continue
		}

		site := &model.WriteSite{
			ID:          fmt.Sprintf("w%d", len(w.escapes)),
			Method:      fun.String(),
			Constructor: constructor,
			NonNull:     !whole && nonNull(store.Val),
			Pos:         pos,
		}
		if whole {
			site.Escape = model.EscapesGlobally
			if !fieldHasPointerLikes(store.Val.Type(), ref.name) {
				site.Escape = model.NoEscape
			}
		} else {
			site.Escape = classifyEscape(store)
		}

		w.escapes[site.ID] = site.Escape
		w.sites[ref] = append(w.sites[ref], site)
		w.stores[store] = append(w.stores[store], fieldWrite{ref, site})

		if !constructor {
			verbosePrint("Late write to %s in %s\n", ref, utils.SSAFunString(fun))
			start := w.startIndex(b.typeKey(ref.class), c)
			for i, cf := range c.Fields {
				if cf == f {
					w.lateWritten.Insert(start + i)
				}
			}
		}
	}
}

// freshRoot is true if addr points into an object allocated by the
// enclosing function, e.g. a struct literal nested in another literal.
func freshRoot(addr ssa.Value) bool {
	for {
		switch v := addr.(type) {
		case *ssa.FieldAddr:
			addr = v.X
		case *ssa.IndexAddr:
			addr = v.X
		case *ssa.Alloc:
			return true
		default:
			return false
		}
	}
}

// isInitializer is true for package initializers and init functions.
func isInitializer(fun *ssa.Function) bool {
	return isPackageInit(fun) ||
		(fun.Parent() == nil && fun.Signature.Recv() == nil && strings.HasPrefix(fun.Name(), "init#"))
}

// nonNull is false for stores of the nil constant.
func nonNull(v ssa.Value) bool {
	if c, ok := v.(*ssa.Const); ok {
		return !c.IsNil()
	}
	return true
}

// fieldHasPointerLikes is true if the named field of a struct typed value
// may share state.
func fieldHasPointerLikes(typ T.Type, name string) bool {
	structT, ok := typ.Underlying().(*T.Struct)
	if !ok {
		return true
	}
	for i := 0; i < structT.NumFields(); i++ {
		if structT.Field(i).Name() == name {
			return utils.TypeHasPointerLikes(structT.Field(i).Type())
		}
	}
	return true
}

// typeKey returns the key used to number the fields of a class. The class
// of package-level variables has no type and is keyed by a placeholder
// named type.
func (b *builder) typeKey(id defs.ClassID) T.Type {
	if named, ok := b.named[id]; ok {
		return named
	}
	if k, ok := b.globalKeys[id]; ok {
		return k
	}
	obj := T.NewTypeName(token.NoPos, nil, string(id), nil)
	k := T.NewNamed(obj, T.NewStruct(nil, nil), nil)
	b.globalKeys[id] = k
	return k
}

func (w *WrittenFields) String() string {
	var sb strings.Builder
	sb.WriteString("WrittenFields analysis result:\n")

	refs := make([]fieldRef, 0, len(w.sites))
	for ref := range w.sites {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	for _, ref := range refs {
		header := color.GreenString(ref.String())
		if w.WrittenLate(ref) {
			header += color.RedString(" (written after construction)")
		}
		fmt.Fprintf(&sb, "%s:\n", header)
		for _, site := range w.sites[ref] {
			fmt.Fprintf(&sb, "\t%s [%s]\n", site, site.Escape)
		}
	}
	return sb.String()
}
