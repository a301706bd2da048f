package lattice

import "strings"

type objectLevel uint8

const (
	objectMutable objectLevel = iota
	objectDependent
	objectShallow
	objectDeep
)

// ObjectLattice represents the class and the type immutability lattices,
// which share their shape:
//
//	DeepImmutable
//	|
//	ShallowImmutable
//	|
//	DependentImmutable(P)
//	|
//	Mutable
//
// DependentImmutable(P) ⊑ DependentImmutable(Q) iff Q ⊆ P. Two dependent
// values without common parameters join to ShallowImmutable.
//
// A dependent value may be capped: some part of the object is at most
// shallowly immutable whatever the parameters are bound to, e.g. a generic
// class with an array field. Capped values print like uncapped ones, sit
// below them, and concretize to at most ShallowImmutableField.
type ObjectLattice struct {
	lattice
	// Class or Type
	name string

	mutable, shallow, deep ObjectElement
}

func newObjectLattice(name string) *ObjectLattice {
	l := &ObjectLattice{name: name}
	l.mutable = ObjectElement{lattice: l, level: objectMutable}
	l.shallow = ObjectElement{lattice: l, level: objectShallow}
	l.deep = ObjectElement{lattice: l, level: objectDeep}
	return l
}

var (
	classLattice = newObjectLattice("Class")
	typeLattice  = newObjectLattice("Type")
)

// Class returns the class immutability lattice.
func (latticeFactory) Class() *ObjectLattice {
	return classLattice
}

// Type returns the type immutability lattice.
func (latticeFactory) Type() *ObjectLattice {
	return typeLattice
}

func (l *ObjectLattice) Top() Element {
	return l.deep
}

func (l *ObjectLattice) Bot() Element {
	return l.mutable
}

func (*ObjectLattice) Height() int {
	return int(objectDeep)
}

func (l *ObjectLattice) Object() *ObjectLattice {
	return l
}

func (l1 *ObjectLattice) Eq(l2 Lattice) bool {
	return l1 == l2
}

func (l *ObjectLattice) String() string {
	return colorize.Lattice(l.name)
}

func (l *ObjectLattice) Parse(name string) (Element, error) {
	name = strings.TrimSpace(name)
	for _, e := range []ObjectElement{l.mutable, l.shallow, l.deep} {
		if e.Name() == name {
			return e, nil
		}
	}
	if ps, ok := parseParams(name, "DependentImmutable"+l.name); ok {
		return l.Dependent(ps), nil
	}
	return nil, unknownElement(l, name)
}

func (l *ObjectLattice) Mutable() ObjectElement {
	return l.mutable
}

func (l *ObjectLattice) Shallow() ObjectElement {
	return l.shallow
}

func (l *ObjectLattice) Deep() ObjectElement {
	return l.deep
}

// Dependent creates a dependent immutable value conditioned on the given
// type parameters. Without parameters the value is shallowly immutable.
func (l *ObjectLattice) Dependent(params Params) ObjectElement {
	if params.Empty() {
		return l.shallow
	}
	return ObjectElement{lattice: l, level: objectDependent, params: params}
}

// DependentCapped is Dependent with the shallow cap set.
func (l *ObjectLattice) DependentCapped(params Params) ObjectElement {
	if params.Empty() {
		return l.shallow
	}
	return ObjectElement{lattice: l, level: objectDependent, params: params, capped: true}
}

// FromField lifts the contribution of a field to the object lattice.
func (l *ObjectLattice) FromField(f FieldElement) ObjectElement {
	switch f.level {
	case fieldMutable:
		return l.mutable
	case fieldShallow:
		return l.shallow
	case fieldDependent:
		return l.Dependent(f.params)
	case fieldDeep:
		return l.deep
	}
	panic(errPatternMatch(f.level))
}

// Convert maps an element of another object lattice to the same position
// in l.
func (l *ObjectLattice) Convert(e ObjectElement) ObjectElement {
	e.lattice = l
	return e
}

type ObjectElement struct {
	element
	lattice *ObjectLattice
	level   objectLevel
	params  Params
	capped  bool
}

func (e ObjectElement) Lattice() Lattice {
	return e.lattice
}

func (e ObjectElement) Object() ObjectElement {
	return e
}

func (e ObjectElement) IsMutable() bool   { return e.level == objectMutable }
func (e ObjectElement) IsDependent() bool { return e.level == objectDependent }
func (e ObjectElement) IsShallow() bool   { return e.level == objectShallow }
func (e ObjectElement) IsDeep() bool      { return e.level == objectDeep }

// Capped is true for dependent values that concretize to at most
// ShallowImmutableField.
func (e ObjectElement) Capped() bool {
	return e.capped
}

// Params returns the type parameters a dependent value is conditioned on.
func (e ObjectElement) Params() Params {
	return e.params
}

// WithParams rebinds the parameters of a dependent value. Rebinding to no
// parameters yields ShallowImmutable. Other values are returned unchanged.
func (e ObjectElement) WithParams(params Params) ObjectElement {
	if e.level != objectDependent {
		return e
	}
	if e.capped {
		return e.lattice.DependentCapped(params)
	}
	return e.lattice.Dependent(params)
}

func (e ObjectElement) Name() string {
	switch e.level {
	case objectMutable:
		return "Mutable" + e.lattice.name
	case objectDependent:
		return "DependentImmutable" + e.lattice.name + "(" + e.params.String() + ")"
	case objectShallow:
		return "ShallowImmutable" + e.lattice.name
	case objectDeep:
		return "DeepImmutable" + e.lattice.name
	}
	panic(errPatternMatch(e.level))
}

func (e ObjectElement) String() string {
	if e.level == objectDependent {
		return colorize.Element("DependentImmutable"+e.lattice.name+"(") +
			colorize.Param(e.params.String()) +
			colorize.Element(")")
	}
	return colorize.Element(e.Name())
}

func (e ObjectElement) Height() int {
	return int(e.level)
}

func (e1 ObjectElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 ObjectElement) eq(e2 Element) bool {
	o2 := e2.Object()
	return e1.level == o2.level && e1.params.Eq(o2.params) && e1.capped == o2.capped
}

func (e1 ObjectElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 ObjectElement) geq(e2 Element) bool {
	return e2.leq(e1)
}

func (e1 ObjectElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 ObjectElement) leq(e2 Element) bool {
	o2 := e2.Object()
	if e1.level == objectDependent && o2.level == objectDependent {
		return o2.params.SubsetOf(e1.params) && (e1.capped || !o2.capped)
	}
	return e1.level <= o2.level
}

func (e1 ObjectElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

func (e1 ObjectElement) join(e2 Element) Element {
	return e1.JoinObject(e2.Object())
}

// JoinObject is the typed variant of Join.
func (e1 ObjectElement) JoinObject(o2 ObjectElement) ObjectElement {
	if e1.level == objectDependent && o2.level == objectDependent {
		common := e1.params.Intersect(o2.params)
		if e1.capped && o2.capped {
			return e1.lattice.DependentCapped(common)
		}
		return e1.lattice.Dependent(common)
	}
	if o2.level > e1.level {
		return o2
	}
	return e1
}

func (e1 ObjectElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

func (e1 ObjectElement) meet(e2 Element) Element {
	return e1.MeetObject(e2.Object())
}

// MeetObject is the typed variant of Meet.
func (e1 ObjectElement) MeetObject(o2 ObjectElement) ObjectElement {
	switch {
	case e1.level == objectDependent && o2.level == objectDependent:
		return ObjectElement{
			lattice: e1.lattice,
			level:   objectDependent,
			params:  e1.params.Union(o2.params),
			capped:  e1.capped || o2.capped,
		}
	case e1.level == objectDependent && o2.level == objectShallow:
		return e1.lattice.DependentCapped(e1.params)
	case e1.level == objectShallow && o2.level == objectDependent:
		return o2.lattice.DependentCapped(o2.params)
	}
	if o2.level < e1.level {
		return o2
	}
	return e1
}
