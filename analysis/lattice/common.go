package lattice

import (
	"errors"
	"fmt"

	"github.com/cs-au-dk/immut/utils"

	"github.com/fatih/color"
)

var colorize = struct {
	Lattice func(...interface{}) string
	Element func(...interface{}) string
	Param   func(...interface{}) string
}{
	Lattice: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiBlue).SprintFunc())(is...)
	},
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Param: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiCyan).SprintFunc())(is...)
	},
}

var (
	errUnsupportedTypeConversion = errors.New("UnsupportedTypeConversion")
	errInternal                  = errors.New("internal error")
	// ErrUnknownElement is returned when parsing an element name fails.
	ErrUnknownElement = errors.New("unknown lattice element")
	errPatternMatch   = func(v interface{}) error {
		return fmt.Errorf("invalid pattern match: %v %T", v, v)
	}
)

type Element interface {
	// Type conversion API
	Reference() ReferenceElement
	Field() FieldElement
	Object() ObjectElement

	Lattice() Lattice

	// External API for lattice element operations.
	// They dynamically perform lattice type checking.
	Leq(Element) bool
	Geq(Element) bool
	Eq(Element) bool
	Join(Element) Element
	Meet(Element) Element

	// Internal lattice element operations, that skip
	// lattice type checking. Only use under the
	// assumption of lattice type safety.
	leq(Element) bool
	geq(Element) bool
	eq(Element) bool
	join(Element) Element
	meet(Element) Element

	// Representational components
	String() string
	// Name is the uncolored name of the element, as used in
	// expectation tables, e.g. "DependentImmutableField(T1)".
	Name() string
	// Encodes the distance from the bottom of the lattice
	// to the element that calls this method.
	Height() int
}

type element struct{}

func (element) Reference() ReferenceElement {
	panic(errUnsupportedTypeConversion)
}

func (element) Field() FieldElement {
	panic(errUnsupportedTypeConversion)
}

func (element) Object() ObjectElement {
	panic(errUnsupportedTypeConversion)
}

func unknownElement(l Lattice, name string) error {
	return fmt.Errorf("%w: %q is not an element of %s", ErrUnknownElement, name, l)
}
