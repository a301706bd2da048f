package upfront

import (
	"fmt"
	"go/token"
	"sort"
	"strings"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/utils"
	"github.com/cs-au-dk/immut/utils/slices"

	"golang.org/x/tools/go/ssa"
)

// AccessTraces holds, for every field written after construction, one
// access trace per function touching the field.
type AccessTraces struct {
	traces map[fieldRef][]model.Trace
}

// Of returns the access traces of a field.
func (a *AccessTraces) Of(ref fieldRef) []model.Trace {
	return a.traces[ref]
}

// event is an access or lock operation in a function body. Lock events
// carry a zero ref.
type event struct {
	model.Access
	ref fieldRef
}

// ComputeAccessTraces linearizes the analyzed functions. Blocks are visited
// in dominator tree preorder, and each block starts with the locks held at
// the end of its immediate dominator. Deferred unlocks are not events.
func ComputeAccessTraces(b *builder, funs map[*ssa.Function]bool, writes *WrittenFields) *AccessTraces {
	res := &AccessTraces{traces: make(map[fieldRef][]model.Trace)}

	for _, fun := range sortedFunctions(funs) {
		events := functionEvents(b, fun, writes)

		var touched []fieldRef
		seen := map[fieldRef]bool{}
		for _, ev := range events {
			if ev.ref.name != "" && !seen[ev.ref] && writes.WrittenLate(ev.ref) {
				seen[ev.ref] = true
				touched = append(touched, ev.ref)
			}
		}

		for _, ref := range touched {
			tr := model.Trace{Method: fun.String()}
			for _, ev := range events {
				if ev.ref == ref || ev.Kind == model.Lock || ev.Kind == model.Unlock {
					tr.Events = append(tr.Events, ev.Access)
				}
			}
			res.traces[ref] = append(res.traces[ref], tr)
		}
	}
	return res
}

func functionEvents(b *builder, fun *ssa.Function, writes *WrittenFields) (events []event) {
	exit := make(map[*ssa.BasicBlock][]string, len(fun.Blocks))

	for _, block := range fun.DomPreorder() {
		var held []string
		if idom := block.Idom(); idom != nil {
			held = exit[idom]
		}
		snapshot := func() []string {
			return append([]string(nil), held...)
		}

		for _, insn := range block.Instrs {
			switch insn := insn.(type) {
			case *ssa.Call:
				kind, lock, ok := lockOperation(b, insn)
				if !ok {
					continue
				}
				events = append(events, event{Access: model.Access{Kind: kind, Lock: lock, Held: snapshot()}})
				if kind == model.Lock {
					held = append(snapshot(), lock)
				} else {
					held = release(held, lock)
				}
			case *ssa.UnOp:
				if insn.Op != token.MUL {
					continue
				}
				ref, ok := accessedField(b, insn.X)
				if !ok {
					continue
				}
				kind := model.Read
				if onlyNilChecks(insn) {
					kind = model.NullCheck
				}
				events = append(events, event{
					Access: model.Access{Kind: kind, Held: snapshot()},
					ref:    ref,
				})
			case *ssa.Store:
				for _, fw := range writes.Store(insn) {
					events = append(events, event{
						Access: model.Access{Kind: model.Write, Held: snapshot(), Site: fw.site.ID},
						ref:    fw.ref,
					})
				}
			}
		}
		exit[block] = held
	}
	return
}

// release removes the last acquisition of lock.
func release(held []string, lock string) []string {
	for i := len(held) - 1; i >= 0; i-- {
		if held[i] == lock {
			res := append([]string(nil), held[:i]...)
			return append(res, held[i+1:]...)
		}
	}
	return held
}

// lockOperation recognizes static calls to Lock and Unlock of the sync
// lock types.
func lockOperation(b *builder, call *ssa.Call) (model.AccessKind, string, bool) {
	callee := call.Call.StaticCallee()
	if callee == nil || callee.Signature.Recv() == nil || len(call.Call.Args) == 0 {
		return 0, "", false
	}
	if !utils.IsLockType(callee.Signature.Recv().Type()) {
		return 0, "", false
	}

	var kind model.AccessKind
	switch callee.Name() {
	case "Lock":
		kind = model.Lock
	case "Unlock":
		kind = model.Unlock
	default:
		return 0, "", false
	}
	return kind, lockName(b, call.Call.Args[0]), true
}

// lockName names the lock object by the field or package-level variable
// holding it. Locks reached any other way have no name.
func lockName(b *builder, v ssa.Value) string {
	if load, ok := v.(*ssa.UnOp); ok && load.Op == token.MUL {
		v = load.X
	}
	switch v := v.(type) {
	case *ssa.FieldAddr:
		named, structT, ok := utils.StructOf(v.X.Type())
		if !ok {
			return ""
		}
		field := structT.Field(v.Field).Name()
		if id := b.ids.At(named.Origin()); id != nil {
			return string(id.(defs.ClassID)) + "." + field
		}
		return named.Obj().Name() + "." + field
	case *ssa.Global:
		return v.Pkg.Pkg.Path() + "." + v.Name()
	}
	return ""
}

// accessedField resolves the field read by a load from addr.
func accessedField(b *builder, addr ssa.Value) (fieldRef, bool) {
	switch addr := addr.(type) {
	case *ssa.FieldAddr:
		named, structT, ok := utils.StructOf(addr.X.Type())
		if !ok {
			return fieldRef{}, false
		}
		id := b.ids.At(named.Origin())
		if id == nil {
			return fieldRef{}, false
		}
		return fieldRef{id.(defs.ClassID), structT.Field(addr.Field).Name()}, true
	case *ssa.Global:
		if !isUserGlobal(addr) {
			return fieldRef{}, false
		}
		return fieldRef{globalsID(addr.Pkg.Pkg), addr.Name()}, true
	}
	return fieldRef{}, false
}

// onlyNilChecks is true if the loaded value is only compared against nil.
func onlyNilChecks(v ssa.Value) bool {
	refs := v.Referrers()
	if refs == nil {
		return false
	}

	checks := 0
	for _, ref := range *refs {
		switch ref := ref.(type) {
		case *ssa.DebugRef:
		case *ssa.BinOp:
			if !slices.OneOf(ref.Op, token.EQL, token.NEQ) {
				return false
			}
			other := ref.X
			if other == v {
				other = ref.Y
			}
			if c, ok := other.(*ssa.Const); !ok || !c.IsNil() {
				return false
			}
			checks++
		default:
			return false
		}
	}
	return checks > 0
}

func (a *AccessTraces) String() string {
	refs := make([]fieldRef, 0, len(a.traces))
	for ref := range a.traces {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })

	var sb strings.Builder
	for _, ref := range refs {
		fmt.Fprintf(&sb, "%s:\n", ref)
		for _, tr := range a.traces[ref] {
			fmt.Fprintf(&sb, "\t%s: %v\n", tr.Method, tr.Events)
		}
	}
	return sb.String()
}
