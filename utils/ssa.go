package utils

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

func IsNamedType(typ types.Type, pkg string, name string) bool {
	checkNamedType := func(typ types.Type) bool {
		switch typ := typ.(type) {
		case *types.Named:
			if typ.Obj() == nil {
				return false
			}
			if typ.Obj().Pkg() == nil {
				return false
			}
			return !typ.Obj().IsAlias() &&
				typ.Obj().Pkg().Path() == pkg &&
				typ.Obj().Name() == name
		}

		return false
	}

	switch typ := typ.(type) {
	case *types.Named:
		return checkNamedType(typ)
	case *types.Pointer:
		return checkNamedType(typ.Elem())
	}
	return false
}

// IsLockType is true for the lock types whose Lock/Unlock calls delimit
// critical sections in access traces.
func IsLockType(typ types.Type) bool {
	return IsNamedType(typ, "sync", "Mutex") ||
		IsNamedType(typ, "sync", "RWMutex")
}

// TypeHasPointerLikes is true if a value of the given type may share
// mutable state with other values it was copied from.
func TypeHasPointerLikes(typ types.Type) bool {
	switch typ := typ.(type) {
	case *types.Named:
		return TypeHasPointerLikes(typ.Underlying())
	case *types.Alias:
		return TypeHasPointerLikes(types.Unalias(typ))
	case *types.Array:
		return TypeHasPointerLikes(typ.Elem())
	case *types.Chan:
		return true
	case *types.Interface:
		return true
	case *types.Map:
		return true
	case *types.Pointer:
		return true
	case *types.Signature:
		return true
	case *types.Slice:
		return true
	case *types.Struct:
		for i := 0; i < typ.NumFields(); i++ {
			styp := typ.Field(i).Type()
			if TypeHasPointerLikes(styp) {
				return true
			}
		}
	case *types.Tuple:
		for i := 0; i < typ.Len(); i++ {
			mtyp := typ.At(i).Type()
			if TypeHasPointerLikes(mtyp) {
				return true
			}
		}
	}

	return false
}

func ValHasPointerLikes(v ssa.Value) bool {
	return TypeHasPointerLikes(v.Type())
}

// StructOf returns the named struct type reachable from typ by dereferencing
// at most one pointer.
func StructOf(typ types.Type) (*types.Named, *types.Struct, bool) {
	if ptr, ok := typ.Underlying().(*types.Pointer); ok {
		typ = ptr.Elem()
	}
	named, ok := types.Unalias(typ).(*types.Named)
	if !ok {
		return nil, nil, false
	}
	structT, ok := named.Underlying().(*types.Struct)
	return named, structT, ok
}
