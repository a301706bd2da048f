package lattice

import (
	"log"

	"github.com/cs-au-dk/immut/analysis/defs"
)

type Lattice interface {
	Top() Element
	Bot() Element

	String() string
	Eq(Lattice) bool
	// Height of the top element.
	Height() int
	// Parse is the inverse of Element.Name.
	Parse(name string) (Element, error)

	// These methods allow for quick type conversions.
	// Suitable, if you know what lattice type to expect.
	Reference() *ReferenceLattice
	Field() *FieldLattice
	Object() *ObjectLattice
}

type lattice struct{}

func (*lattice) Reference() *ReferenceLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Field() *FieldLattice {
	panic(errUnsupportedTypeConversion)
}

func (*lattice) Object() *ObjectLattice {
	panic(errUnsupportedTypeConversion)
}

// Allows us to delay expensive stringification calls
func checkLatticeMatchThunked(l1, l2 Lattice, thunk func() string) {
	if !l1.Eq(l2) {
		log.Fatal(
			"Lattice error - Invalid", thunk(),
			"\nOperand 1 ∈\n",
			l1.String(),
			"\nOperand 2 ∈\n",
			l2.String(),
		)
	}
}

func checkLatticeMatch(l1, l2 Lattice, binop string) {
	checkLatticeMatchThunked(l1, l2, func() string { return binop })
}

// ForDimension returns the lattice of the given immutability dimension.
func (latticeFactory) ForDimension(dim defs.Dimension) Lattice {
	switch dim {
	case defs.ReferenceImmutability:
		return referenceLattice
	case defs.FieldImmutability:
		return fieldLattice
	case defs.ClassImmutability:
		return classLattice
	case defs.TypeImmutability:
		return typeLattice
	}
	panic(errPatternMatch(dim))
}
