package detect

import (
	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
)

// Dependence describes how the immutability of a declared type depends on
// other classifications.
type Dependence struct {
	// Params are the type parameters of the enclosing class embedded in the
	// declared type.
	Params L.Params
	// Initial is DependentImmutableField(Params) for types embedding type
	// parameters, and DeepImmutableField otherwise. It is an upper bound of
	// what the type can contribute through its parameters.
	Initial L.FieldElement
	// Edges to the type classifications the declared type depends on.
	Edges []defs.Edge
}

// Generic extracts the dependences of a type declared inside class
// (typically the type of one of its fields):
//   - a type parameter depends on the type classification of its bound,
//   - a class type depends on the type classification of the class,
//   - a generic instantiation depends strictly on the type classification
//     of the generic class, tagged with the argument substitution, and on the
//     dependences of its arguments, which are strict as well.
//
// Arrays contribute no dependences: their contents are mutable regardless
// of the element type. Unresolvable types are reported with
// model.ErrMalformedDependency.
func Generic(facts *model.Facts, class *model.Class, typ defs.TypeRef) (Dependence, error) {
	return extract(facts, class, []defs.TypeRef{typ}, false)
}

// Arguments extracts the dependences of the type arguments of a generic
// instantiation declared inside class, e.g. of a generic superclass. All
// class dependences of arguments are strict.
func Arguments(facts *model.Facts, class *model.Class, args []defs.TypeRef) (Dependence, error) {
	return extract(facts, class, args, true)
}

func extract(facts *model.Facts, class *model.Class, types []defs.TypeRef, strict bool) (Dependence, error) {
	dep := Dependence{Initial: L.Elements().DeepField()}
	for _, typ := range types {
		if err := facts.Resolve(typ, class); err != nil {
			return dep, err
		}
		for _, p := range typ.Params() {
			dep.Params = dep.Params.Add(p)
		}
	}
	dep.Initial = L.Lattices().Field().Dependent(dep.Params)

	type target struct {
		key    defs.Key
		strict bool
	}
	seen := map[target]bool{}
	add := func(e defs.Edge) {
		// Substitution-tagged edges are kept even if the target repeats, as
		// each carries its own instantiation.
		if len(e.Subst) == 0 {
			t := target{e.To, e.Strict}
			if seen[t] {
				return
			}
			seen[t] = true
		}
		dep.Edges = append(dep.Edges, e)
	}

	var visit func(t defs.TypeRef, strict bool) error
	visit = func(t defs.TypeRef, strict bool) error {
		switch t.Kind {
		case defs.ParamType:
			tp, _ := class.TypeParam(t.Param)
			if tp.Bound.Kind == defs.ClassType {
				add(defs.Edge{To: defs.TypeKey(tp.Bound.Class)})
			}
		case defs.ClassType:
			if len(t.Args) == 0 {
				add(defs.Edge{To: defs.TypeKey(t.Class), Strict: strict})
				return nil
			}

			generic, err := facts.Class(t.Class)
			if err != nil {
				return err
			}
			add(defs.Edge{
				To:     defs.TypeKey(t.Class),
				Subst:  defs.Bind(generic.ParamNames(), t.Args),
				Strict: true,
			})
			for _, a := range t.Args {
				if err := visit(a, true); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, typ := range types {
		if err := visit(typ, strict); err != nil {
			return dep, err
		}
	}
	return dep, nil
}
