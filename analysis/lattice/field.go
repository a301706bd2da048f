package lattice

import "strings"

type fieldLevel uint8

const (
	fieldMutable fieldLevel = iota
	fieldShallow
	fieldDependent
	fieldDeep
)

// FieldLattice represents the field immutability lattice:
//
//	DeepImmutableField
//	|
//	DependentImmutableField(P)
//	|
//	ShallowImmutableField
//	|
//	MutableField
//
// DependentImmutableField(P) ⊑ DependentImmutableField(Q) iff Q ⊆ P: a value
// conditioned on fewer type parameters is more immutable.
type FieldLattice struct {
	lattice
}

var fieldLattice = &FieldLattice{}

// Field returns the field immutability lattice.
func (latticeFactory) Field() *FieldLattice {
	return fieldLattice
}

func (*FieldLattice) Top() Element {
	return fieldDeepElement
}

func (*FieldLattice) Bot() Element {
	return fieldMutableElement
}

func (*FieldLattice) Height() int {
	return int(fieldDeep)
}

func (*FieldLattice) Field() *FieldLattice {
	return fieldLattice
}

func (l1 *FieldLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*FieldLattice)
	return ok
}

func (*FieldLattice) String() string {
	return colorize.Lattice("Field")
}

func (*FieldLattice) Parse(name string) (Element, error) {
	name = strings.TrimSpace(name)
	for _, e := range []FieldElement{fieldMutableElement, fieldShallowElement, fieldDeepElement} {
		if e.Name() == name {
			return e, nil
		}
	}
	if ps, ok := parseParams(name, "DependentImmutableField"); ok {
		return FieldElement{level: fieldDependent, params: ps}, nil
	}
	return nil, unknownElement(fieldLattice, name)
}

func (*FieldLattice) Mutable() FieldElement {
	return fieldMutableElement
}

func (*FieldLattice) Shallow() FieldElement {
	return fieldShallowElement
}

func (*FieldLattice) Deep() FieldElement {
	return fieldDeepElement
}

// Dependent creates a dependent immutable value conditioned on the given
// type parameters. Without parameters the value is deeply immutable.
func (*FieldLattice) Dependent(params Params) FieldElement {
	if params.Empty() {
		return fieldDeepElement
	}
	return FieldElement{level: fieldDependent, params: params}
}

type FieldElement struct {
	element
	level  fieldLevel
	params Params
}

var (
	fieldMutableElement = FieldElement{level: fieldMutable}
	fieldShallowElement = FieldElement{level: fieldShallow}
	fieldDeepElement    = FieldElement{level: fieldDeep}
)

func (elementFactory) MutableField() FieldElement {
	return fieldMutableElement
}

func (elementFactory) ShallowField() FieldElement {
	return fieldShallowElement
}

func (elementFactory) DependentField(params ...string) FieldElement {
	return fieldLattice.Dependent(NewParams(params...))
}

func (elementFactory) DeepField() FieldElement {
	return fieldDeepElement
}

func (FieldElement) Lattice() Lattice {
	return fieldLattice
}

func (e FieldElement) Field() FieldElement {
	return e
}

func (e FieldElement) IsMutable() bool   { return e.level == fieldMutable }
func (e FieldElement) IsShallow() bool   { return e.level == fieldShallow }
func (e FieldElement) IsDependent() bool { return e.level == fieldDependent }
func (e FieldElement) IsDeep() bool      { return e.level == fieldDeep }

// Params returns the type parameters a dependent value is conditioned on.
func (e FieldElement) Params() Params {
	return e.params
}

func (e FieldElement) Name() string {
	switch e.level {
	case fieldMutable:
		return "MutableField"
	case fieldShallow:
		return "ShallowImmutableField"
	case fieldDependent:
		return "DependentImmutableField(" + e.params.String() + ")"
	case fieldDeep:
		return "DeepImmutableField"
	}
	panic(errPatternMatch(e.level))
}

func (e FieldElement) String() string {
	if e.level == fieldDependent {
		return colorize.Element("DependentImmutableField(") +
			colorize.Param(e.params.String()) +
			colorize.Element(")")
	}
	return colorize.Element(e.Name())
}

func (e FieldElement) Height() int {
	return int(e.level)
}

func (e1 FieldElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 FieldElement) eq(e2 Element) bool {
	f2 := e2.Field()
	return e1.level == f2.level && e1.params.Eq(f2.params)
}

func (e1 FieldElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 FieldElement) geq(e2 Element) bool {
	return e2.leq(e1)
}

func (e1 FieldElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 FieldElement) leq(e2 Element) bool {
	f2 := e2.Field()
	if e1.level == fieldDependent && f2.level == fieldDependent {
		return f2.params.SubsetOf(e1.params)
	}
	return e1.level <= f2.level
}

func (e1 FieldElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

func (e1 FieldElement) join(e2 Element) Element {
	return e1.JoinField(e2.Field())
}

// JoinField is the typed variant of Join.
func (e1 FieldElement) JoinField(f2 FieldElement) FieldElement {
	if e1.level == fieldDependent && f2.level == fieldDependent {
		return fieldLattice.Dependent(e1.params.Intersect(f2.params))
	}
	if f2.level > e1.level {
		return f2
	}
	return e1
}

func (e1 FieldElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

func (e1 FieldElement) meet(e2 Element) Element {
	return e1.MeetField(e2.Field())
}

// MeetField is the typed variant of Meet.
func (e1 FieldElement) MeetField(f2 FieldElement) FieldElement {
	if e1.level == fieldDependent && f2.level == fieldDependent {
		return FieldElement{level: fieldDependent, params: e1.params.Union(f2.params)}
	}
	if f2.level < e1.level {
		return f2
	}
	return e1
}
