package model

import (
	"errors"
	"fmt"

	"github.com/cs-au-dk/immut/analysis/defs"
)

// ErrMalformedDependency is reported when a classification depends on an
// entity the program model cannot resolve.
var ErrMalformedDependency = errors.New("malformed dependency")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedDependency}, args...)...)
}

// Facts adapts a program model and an escape oracle to the queries of the
// dependency graph builder and the transfer functions. It is safe for
// concurrent use as long as the underlying program is not modified.
type Facts struct {
	prog    Program
	escapes EscapeOracle
}

func NewFacts(prog Program, escapes EscapeOracle) *Facts {
	if escapes == nil {
		escapes = SuppliedEscapes{}
	}
	return &Facts{prog, escapes}
}

func (f *Facts) Program() Program {
	return f.prog
}

// Roots lists every class of the program.
func (f *Facts) Roots() []defs.ClassID {
	return f.prog.Classes()
}

func (f *Facts) Class(id defs.ClassID) (*Class, error) {
	if c, found := f.prog.Class(id); found {
		return c, nil
	}
	return nil, malformed("unknown class %s", id)
}

func (f *Facts) Field(id defs.ClassID, name string) (*Field, error) {
	c, err := f.Class(id)
	if err != nil {
		return nil, err
	}
	if fld, found := c.Field(name); found {
		return fld, nil
	}
	return nil, malformed("class %s has no field %s", id, name)
}

// InstanceFields lists the non-static fields of a class.
func (f *Facts) InstanceFields(id defs.ClassID) ([]*Field, error) {
	c, err := f.Class(id)
	if err != nil {
		return nil, err
	}
	var res []*Field
	for _, fld := range c.Fields {
		if !fld.Static {
			res = append(res, fld)
		}
	}
	return res, nil
}

// Subtypes lists the direct subtypes of a class. Every listed subtype must
// be resolvable.
func (f *Facts) Subtypes(id defs.ClassID) ([]defs.ClassID, error) {
	subs := f.prog.Subtypes(id)
	for _, s := range subs {
		if _, err := f.Class(s); err != nil {
			return nil, fmt.Errorf("subtype of %s: %w", id, err)
		}
	}
	return subs, nil
}

// Resolve checks that every class referenced by t exists and that
// generic instantiations supply at most as many arguments as the class has
// type parameters. within is the class whose type parameters are in scope.
func (f *Facts) Resolve(t defs.TypeRef, within *Class) error {
	switch t.Kind {
	case defs.ClassType:
		c, err := f.Class(t.Class)
		if err != nil {
			return err
		}
		if len(t.Args) > len(c.TypeParams) {
			return malformed("%s instantiated with %d type arguments, expected %d", t.Class, len(t.Args), len(c.TypeParams))
		}
		for _, a := range t.Args {
			if err := f.Resolve(a, within); err != nil {
				return err
			}
		}
	case defs.ParamType:
		if within == nil {
			return malformed("type parameter %s used outside a class", t.Param)
		}
		if _, found := within.TypeParam(t.Param); !found {
			return malformed("%s has no type parameter %s", within.ID, t.Param)
		}
	case defs.ArrayType:
		if t.Elem != nil {
			return f.Resolve(*t.Elem, within)
		}
	}
	return nil
}

// Escape classifies a write site of a field.
func (f *Facts) Escape(class defs.ClassID, field string, w *WriteSite) Escape {
	return f.escapes.Escape(class, field, w)
}

// EscapesGlobally is true if any write to the field escapes globally.
func (f *Facts) EscapesGlobally(class defs.ClassID, fld *Field) bool {
	for _, w := range fld.Writes {
		if f.Escape(class, fld.Name, w) == EscapesGlobally {
			return true
		}
	}
	return false
}

// WrittenOutsideConstruction lists the write sites of a field that are not
// part of object construction.
func (f *Facts) WrittenOutsideConstruction(fld *Field) []*WriteSite {
	var res []*WriteSite
	for _, w := range fld.Writes {
		if !w.Constructor {
			res = append(res, w)
		}
	}
	return res
}
