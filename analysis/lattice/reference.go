package lattice

import "strings"

// ReferenceLattice represents the reference immutability lattice:
//
//	ImmutableReference
//	|
//	LazyInitializedThreadSafeReference
//	|
//	MutableReference
type ReferenceLattice struct {
	lattice
}

var referenceLattice = &ReferenceLattice{}

// Reference returns the reference immutability lattice.
func (latticeFactory) Reference() *ReferenceLattice {
	return referenceLattice
}

func (*ReferenceLattice) Top() Element {
	return ImmutableReference
}

func (*ReferenceLattice) Bot() Element {
	return MutableReference
}

func (*ReferenceLattice) Height() int {
	return ImmutableReference.Height()
}

func (*ReferenceLattice) Reference() *ReferenceLattice {
	return referenceLattice
}

func (l1 *ReferenceLattice) Eq(l2 Lattice) bool {
	_, ok := l2.(*ReferenceLattice)
	return ok
}

func (*ReferenceLattice) String() string {
	return colorize.Lattice("Reference")
}

func (*ReferenceLattice) Parse(name string) (Element, error) {
	name = strings.TrimSpace(name)
	for _, e := range []ReferenceElement{MutableReference, LazyInitializedThreadSafeReference, ImmutableReference} {
		if e.Name() == name {
			return e, nil
		}
	}
	return nil, unknownElement(referenceLattice, name)
}

// ReferenceElement is totally ordered, so it is represented by its height.
type ReferenceElement uint8

const (
	MutableReference ReferenceElement = iota
	LazyInitializedThreadSafeReference
	ImmutableReference
)

func (elementFactory) MutableReference() ReferenceElement {
	return MutableReference
}

func (elementFactory) LazyInitializedReference() ReferenceElement {
	return LazyInitializedThreadSafeReference
}

func (elementFactory) ImmutableReference() ReferenceElement {
	return ImmutableReference
}

func (ReferenceElement) Lattice() Lattice {
	return referenceLattice
}

func (e ReferenceElement) Reference() ReferenceElement {
	return e
}

func (ReferenceElement) Field() FieldElement {
	panic(errUnsupportedTypeConversion)
}

func (ReferenceElement) Object() ObjectElement {
	panic(errUnsupportedTypeConversion)
}

func (e ReferenceElement) Name() string {
	switch e {
	case MutableReference:
		return "MutableReference"
	case LazyInitializedThreadSafeReference:
		return "LazyInitializedThreadSafeReference"
	case ImmutableReference:
		return "ImmutableReference"
	}
	panic(errPatternMatch(uint8(e)))
}

func (e ReferenceElement) String() string {
	return colorize.Element(e.Name())
}

func (e ReferenceElement) Height() int {
	return int(e)
}

func (e1 ReferenceElement) Eq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "=")
	return e1.eq(e2)
}

func (e1 ReferenceElement) eq(e2 Element) bool {
	return e1 == e2.Reference()
}

func (e1 ReferenceElement) Geq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊒")
	return e1.geq(e2)
}

func (e1 ReferenceElement) geq(e2 Element) bool {
	return e1 >= e2.Reference()
}

func (e1 ReferenceElement) Leq(e2 Element) bool {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊑")
	return e1.leq(e2)
}

func (e1 ReferenceElement) leq(e2 Element) bool {
	return e1 <= e2.Reference()
}

func (e1 ReferenceElement) Join(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊔")
	return e1.join(e2)
}

func (e1 ReferenceElement) join(e2 Element) Element {
	if e2 := e2.Reference(); e2 > e1 {
		return e2
	}
	return e1
}

func (e1 ReferenceElement) Meet(e2 Element) Element {
	checkLatticeMatch(e1.Lattice(), e2.Lattice(), "⊓")
	return e1.meet(e2)
}

func (e1 ReferenceElement) meet(e2 Element) Element {
	if e2 := e2.Reference(); e2 < e1 {
		return e2
	}
	return e1
}
