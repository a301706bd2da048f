package fixpoint

import (
	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/detect"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
)

var (
	fieldL = L.Lattices().Field()
	classL = L.Lattices().Class()
	typeL  = L.Lattices().Type()
)

// env gives a transfer function access to the values of its dependencies
// and records whether all consulted dependencies were final.
type env struct {
	// read returns the current value of a node and whether it is final.
	read func(key defs.Key) (L.Element, bool)
	// readStrict returns the value of a node if it may be consulted
	// through a strict edge.
	readStrict func(key defs.Key) (L.Element, bool)

	allFinal bool
	// Set when a strict dependency was not available.
	blocked bool
}

func (e *env) get(key defs.Key) L.Element {
	v, final := e.read(key)
	e.allFinal = e.allFinal && final
	return v
}

func (e *env) strict(key defs.Key) (L.Element, bool) {
	v, ok := e.readStrict(key)
	if !ok {
		e.blocked = true
		e.allFinal = false
	}
	return v, ok
}

// transfer recomputes the value of a node from its facts and the values
// of its dependencies. A node blocked on a strict dependency evaluates to
// bottom.
func transfer(facts *model.Facts, n *Node, e *env, closedWorld bool) L.Element {
	bot := L.Lattices().ForDimension(n.key.Dim).Bot()
	if n.err != nil {
		return bot
	}

	var res L.Element
	switch n.key.Dim {
	case defs.ReferenceImmutability:
		res = referenceTransfer(facts, n)
	case defs.FieldImmutability:
		res = fieldTransfer(facts, n, e)
	case defs.ClassImmutability:
		res = classTransfer(facts, n, e)
	case defs.TypeImmutability:
		res = typeTransfer(n, e, closedWorld)
	}

	if e.blocked {
		return bot
	}
	return res
}

// A reference is immutable if it is final, or effectively final: private
// and only written during construction. A private field written later may
// still be a thread safe lazily initialized reference. Non-private fields
// can be assigned from anywhere.
func referenceTransfer(facts *model.Facts, n *Node) L.Element {
	f := n.field
	switch {
	case f.Final:
		return L.ImmutableReference
	case !f.Private:
		return L.MutableReference
	case len(facts.WrittenOutsideConstruction(f)) == 0:
		return L.ImmutableReference
	}
	if v := detect.LazyInit(f); v.Value == L.LazyInitializedThreadSafeReference {
		return v.Value
	}
	return L.MutableReference
}

func fieldTransfer(facts *model.Facts, n *Node, e *env) L.Element {
	ref := e.get(defs.ReferenceKey(n.key.Class, n.key.Field)).Reference()
	if ref == L.MutableReference {
		return fieldL.Mutable()
	}

	var v L.FieldElement
	if t := n.field.Type; t.Kind == defs.ParamType && !boundIsDeep(n.class, t.Param, e) {
		// Declared as one of the class parameters.
		v = n.dep.Initial
	} else {
		v = contribution(facts, n.class, t, e, false)
	}
	if facts.EscapesGlobally(n.class.ID, n.field) {
		v = v.MeetField(fieldL.Shallow())
	}
	return v
}

// contribution is the field immutability a declared type allows. Class
// types are read through their type immutability, strictly so when the
// type is a type argument.
func contribution(facts *model.Facts, within *model.Class, t defs.TypeRef, e *env, strict bool) L.FieldElement {
	switch t.Kind {
	case defs.PrimitiveType:
		return fieldL.Deep()
	case defs.ParamType:
		if boundIsDeep(within, t.Param, e) {
			return fieldL.Deep()
		}
		return fieldL.Dependent(L.NewParams(t.Param))
	case defs.ClassType:
		if t.IsGeneric() {
			return instantiation(facts, within, t, e)
		}

		var tv L.Element
		if strict {
			var ok bool
			if tv, ok = e.strict(defs.TypeKey(t.Class)); !ok {
				return fieldL.Mutable()
			}
		} else {
			tv = e.get(defs.TypeKey(t.Class))
		}
		if tv.Object().IsDeep() {
			return fieldL.Deep()
		}
		return fieldL.Shallow()
	}
	// Arrays and unknown types
	return fieldL.Shallow()
}

// boundIsDeep is true if every argument for param is deeply immutable
// because its bound is.
func boundIsDeep(within *model.Class, param string, e *env) bool {
	tp, _ := within.TypeParam(param)
	return tp.Bound.Kind == defs.ClassType && e.get(defs.TypeKey(tp.Bound.Class)).Object().IsDeep()
}

// instantiation concretizes the type immutability of a generic class with
// the contributions of its type arguments.
func instantiation(facts *model.Facts, within *model.Class, t defs.TypeRef, e *env) L.FieldElement {
	generic, err := facts.Class(t.Class)
	if err != nil {
		return fieldL.Mutable()
	}
	tv, ok := e.strict(defs.TypeKey(t.Class))
	if !ok {
		return fieldL.Mutable()
	}
	return concretize(facts, within, tv.Object(), defs.Bind(generic.ParamNames(), t.Args), e)
}

func concretize(facts *model.Facts, within *model.Class, v L.ObjectElement, subst defs.Substitution, e *env) L.FieldElement {
	return v.Concretize(func(param string) (L.FieldElement, bool) {
		arg, found := subst.Lookup(param)
		if !found {
			// Missing type arguments are treated as unknown types.
			return fieldL.Shallow(), true
		}
		return contribution(facts, within, arg, e, true), true
	})
}

// A class is as immutable as its least immutable instance field and its
// superclass.
func classTransfer(facts *model.Facts, n *Node, e *env) L.Element {
	c := n.class
	if c.ReflectivelyMutable {
		return classL.Mutable()
	}

	v := classL.Deep()
	for _, edge := range n.deps {
		if edge.To.Dim == defs.FieldImmutability && edge.To.Class == c.ID {
			v = v.MeetObject(classL.FromField(e.get(edge.To).Field()))
		}
	}

	if c.Super == nil || c.Super.Kind != defs.ClassType {
		return v
	}

	super := defs.ClassKey(c.Super.Class)
	if !c.Super.IsGeneric() {
		sv := e.get(super).Object()
		if sv.IsDependent() {
			// The type parameters of the superclass are not ours.
			sv = classL.Shallow()
		}
		return v.MeetObject(sv)
	}

	for _, edge := range n.deps {
		if edge.To != super || !edge.Strict {
			continue
		}
		sv, ok := e.strict(super)
		if !ok {
			return classL.Mutable()
		}
		if sv.Object().IsMutable() {
			return classL.Mutable()
		}
		v = v.MeetObject(classL.FromField(concretize(facts, c, sv.Object(), edge.Subst, e)))
	}
	return v
}

// A type is as immutable as its class and all of its direct subtypes.
// Without a closed world, non-final types may be extended by unknown
// mutable classes.
func typeTransfer(n *Node, e *env, closedWorld bool) L.Element {
	c := n.class
	if !closedWorld && !c.Final {
		return typeL.Mutable()
	}

	v := typeL.Convert(e.get(defs.ClassKey(c.ID)).Object())
	params := L.NewParams(c.ParamNames()...)
	for _, s := range n.subtypes {
		sv := e.get(defs.TypeKey(s)).Object()
		// Dependence on the parameters of a subtype is expressed in terms
		// of all of our parameters.
		v = v.MeetObject(sv.WithParams(params))
	}
	return v
}
