package upfront

import (
	T "go/types"

	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/utils"

	"golang.org/x/tools/go/ssa"
)

// classifyEscape decides how the value stored by a field write escapes.
//
// Values that cannot share state do not escape. Neither does a fresh
// allocation that is only initialized before being stored. A fresh value
// that is also stored into another field escapes through that field. Any
// other use, like passing it to a function or storing a value of unknown
// origin, escapes globally.
func classifyEscape(store *ssa.Store) model.Escape {
	v := store.Val
	if _, ok := T.Unalias(v.Type()).(*T.TypeParam); ok {
		return model.NoEscape
	}
	if c, ok := v.(*ssa.Const); ok && c.IsNil() {
		return model.NoEscape
	}

	// Conversions and slicing of a fresh array are looked through.
	via := utils.MakeSSASet()
	for {
		switch w := v.(type) {
		case *ssa.MakeInterface:
			via = via.Add(w)
			v = w.X
			continue
		case *ssa.ChangeType:
			via = via.Add(w)
			v = w.X
			continue
		case *ssa.Slice:
			if _, ok := w.X.(*ssa.Alloc); ok {
				via = via.Add(w)
				v = w.X
				continue
			}
		}
		break
	}

	if !utils.ValHasPointerLikes(v) {
		return model.NoEscape
	}

	switch v.(type) {
	case *ssa.Alloc, *ssa.MakeMap, *ssa.MakeSlice, *ssa.MakeChan:
	default:
		return model.EscapesGlobally
	}

	res := model.NoEscape
	for _, ref := range *v.Referrers() {
		if ref == ssa.Instruction(store) {
			continue
		}
		if w, ok := ref.(ssa.Value); ok && via.Contains(w) {
			continue
		}

		switch r := ref.(type) {
		case *ssa.FieldAddr, *ssa.IndexAddr, *ssa.DebugRef:
		case *ssa.MapUpdate:
			if r.Map != v {
				return model.EscapesGlobally
			}
		case *ssa.Store:
			switch {
			case r.Addr == v:
				// Initialization of the allocated value.
			case r.Val == v:
				if _, ok := r.Addr.(*ssa.FieldAddr); !ok {
					return model.EscapesGlobally
				}
				res = model.EscapesViaImmutableField
			default:
				return model.EscapesGlobally
			}
		case *ssa.UnOp:
			// Loading the contents copies them.
		default:
			return model.EscapesGlobally
		}
	}
	return res
}
