package defs

import (
	"strings"
)

// TypeKind discriminates declared types.
type TypeKind uint8

const (
	// Primitive values cannot be mutated.
	PrimitiveType TypeKind = iota
	// A class or declared type, possibly instantiated with type arguments.
	ClassType
	// A type parameter of the enclosing class.
	ParamType
	// Arrays and other built-in containers whose contents may change.
	ArrayType
	// A type the program model cannot describe.
	UnknownType
)

// TypeRef describes the declared type of a field, a type argument or a
// type parameter bound.
type TypeRef struct {
	Kind TypeKind
	// Class is set for class types.
	Class ClassID
	// Args are the type arguments of a generic class type.
	Args []TypeRef
	// Param is the name of a type parameter.
	Param string
	// Elem is the element type of an array type.
	Elem *TypeRef
}

func Primitive() TypeRef { return TypeRef{Kind: PrimitiveType} }

func Unknown() TypeRef { return TypeRef{Kind: UnknownType} }

func Param(name string) TypeRef { return TypeRef{Kind: ParamType, Param: name} }

func ClassRef(id ClassID, args ...TypeRef) TypeRef {
	return TypeRef{Kind: ClassType, Class: id, Args: args}
}

func ArrayOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: ArrayType, Elem: &elem}
}

// IsGeneric is true for class types with type arguments.
func (t TypeRef) IsGeneric() bool {
	return t.Kind == ClassType && len(t.Args) > 0
}

// Params lists the type parameters referenced anywhere in t, in order of
// first occurrence.
func (t TypeRef) Params() []string {
	seen := map[string]bool{}
	var res []string
	var visit func(TypeRef)
	visit = func(t TypeRef) {
		switch t.Kind {
		case ParamType:
			if !seen[t.Param] {
				seen[t.Param] = true
				res = append(res, t.Param)
			}
		case ClassType:
			for _, a := range t.Args {
				visit(a)
			}
		case ArrayType:
			if t.Elem != nil {
				visit(*t.Elem)
			}
		}
	}
	visit(t)
	return res
}

func (t TypeRef) String() string {
	switch t.Kind {
	case PrimitiveType:
		return "primitive"
	case ClassType:
		if len(t.Args) == 0 {
			return string(t.Class)
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return string(t.Class) + "[" + strings.Join(args, ", ") + "]"
	case ParamType:
		return colorize.Param(t.Param)
	case ArrayType:
		if t.Elem != nil {
			return "[]" + t.Elem.String()
		}
		return "[]?"
	}
	return "?"
}

// Binding binds a type parameter of a generic class to a type argument.
type Binding struct {
	Param string
	Arg   TypeRef
}

// Substitution is the ordered list of bindings of a generic instantiation.
type Substitution []Binding

// Bind zips type parameters with type arguments. Missing arguments leave
// the remaining parameters unbound.
func Bind(params []string, args []TypeRef) Substitution {
	n := len(params)
	if len(args) < n {
		n = len(args)
	}
	s := make(Substitution, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, Binding{params[i], args[i]})
	}
	return s
}

// Lookup returns the argument bound to param.
func (s Substitution) Lookup(param string) (TypeRef, bool) {
	for _, b := range s {
		if b.Param == param {
			return b.Arg, true
		}
	}
	return TypeRef{}, false
}

func (s Substitution) String() string {
	strs := make([]string, len(s))
	for i, b := range s {
		strs[i] = colorize.Param(b.Param) + " ↦ " + b.Arg.String()
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

// Edge is a dependency of a computation node on another node.
type Edge struct {
	To Key
	// Subst is set when the dependency is read through a generic
	// instantiation.
	Subst Substitution
	// Strict dependencies are only read once their target is final.
	Strict bool
}

func (e Edge) String() string {
	str := "→ " + e.To.String()
	if e.Strict {
		str = "⇒ " + e.To.String()
	}
	if len(e.Subst) > 0 {
		str += " " + e.Subst.String()
	}
	return str
}
