// Package model describes the analyzed program as the classification engine
// sees it: classes with fields, type parameters and supertypes, the write
// sites of every field and the field access traces used to recognize lazy
// initialization. Programs come from YAML fixtures or from Go packages.
package model

import (
	"fmt"

	"github.com/cs-au-dk/immut/analysis/defs"
)

// Escape classifies how a reference written to a field escapes.
type Escape uint8

const (
	NoEscape Escape = iota
	EscapesViaImmutableField
	EscapesGlobally
)

var escapeNames = [...]string{"NoEscape", "EscapesViaImmutableField", "EscapesGlobally"}

func (e Escape) String() string {
	if int(e) < len(escapeNames) {
		return escapeNames[e]
	}
	return fmt.Sprintf("escape(%d)", e)
}

func ParseEscape(s string) (Escape, error) {
	for i, name := range escapeNames {
		if name == s {
			return Escape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown escape classification %q", s)
}

// WriteSite is an instruction storing to a field.
type WriteSite struct {
	ID string
	// Method containing the write.
	Method string
	// Constructor writes initialize the object under construction.
	Constructor bool
	// NonNull is true if the stored value is known to be non-null.
	NonNull bool
	// Escape is the classification supplied with the program, consumed by
	// SuppliedEscapes.
	Escape Escape
	// Position in source, if known.
	Pos string
}

func (w *WriteSite) String() string {
	str := w.Method + ":" + w.ID
	if w.Constructor {
		str += " (constructor)"
	}
	if w.Pos != "" {
		str += " at " + w.Pos
	}
	return str
}

// AccessKind is the kind of an event in a field access trace.
type AccessKind uint8

const (
	Read AccessKind = iota
	// A read whose value is only compared against null.
	NullCheck
	Write
	Lock
	Unlock
)

var accessKindNames = [...]string{"Read", "NullCheck", "Write", "Lock", "Unlock"}

func (k AccessKind) String() string {
	if int(k) < len(accessKindNames) {
		return accessKindNames[k]
	}
	return fmt.Sprintf("access(%d)", k)
}

func ParseAccessKind(s string) (AccessKind, error) {
	for i, name := range accessKindNames {
		if name == s {
			return AccessKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown access kind %q", s)
}

// Access is one event of a trace. Held lists the locks held when the event
// happens; for Lock and Unlock events it is the state before the event.
type Access struct {
	Kind AccessKind
	// Lock names the acquired or released lock.
	Lock string
	Held []string
	// Site is the write site of a Write event.
	Site string
}

// Holds reports whether lock is held during the access.
func (a Access) Holds(lock string) bool {
	for _, l := range a.Held {
		if l == lock {
			return true
		}
	}
	return false
}

func (a Access) String() string {
	switch a.Kind {
	case Lock, Unlock:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Lock)
	case Write:
		return fmt.Sprintf("%s[%s]%v", a.Kind, a.Site, a.Held)
	}
	return fmt.Sprintf("%s%v", a.Kind, a.Held)
}

// Trace is the sequence of accesses to one field along the control flow of
// one method.
type Trace struct {
	Method string
	Events []Access
}

type TypeParam struct {
	Name string
	// Bound is the declared upper bound. Unbounded parameters have an
	// unknown bound.
	Bound defs.TypeRef
}

type Field struct {
	Name    string
	Type    defs.TypeRef
	Final   bool
	Private bool
	// Static fields do not contribute to the immutability of instances.
	Static bool
	Writes []*WriteSite
	Traces []Trace
}

// Site finds the write site with the given id.
func (f *Field) Site(id string) (*WriteSite, bool) {
	for _, w := range f.Writes {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

type Class struct {
	ID         defs.ClassID
	TypeParams []TypeParam
	// Super is the superclass, if any.
	Super *defs.TypeRef
	// Interfaces are the implemented types.
	Interfaces []defs.TypeRef
	Fields     []*Field
	// Final classes cannot be extended.
	Final bool
	// Interface types have no instances of their own.
	Interface bool
	// Classes whose instances can be mutated bypassing their fields, e.g.
	// through reflection or deserialization.
	ReflectivelyMutable bool
	// Pos is the declaration position, if known.
	Pos string
}

func (c *Class) Field(name string) (*Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// ParamNames returns the names of the type parameters in declaration order.
func (c *Class) ParamNames() []string {
	res := make([]string, len(c.TypeParams))
	for i, tp := range c.TypeParams {
		res[i] = tp.Name
	}
	return res
}

func (c *Class) TypeParam(name string) (TypeParam, bool) {
	for _, tp := range c.TypeParams {
		if tp.Name == name {
			return tp, true
		}
	}
	return TypeParam{}, false
}

// Supertypes lists the superclass followed by the implemented types.
func (c *Class) Supertypes() []defs.TypeRef {
	var res []defs.TypeRef
	if c.Super != nil {
		res = append(res, *c.Super)
	}
	return append(res, c.Interfaces...)
}

// Program is the query surface of a program model.
type Program interface {
	// Classes lists every class and declared type, sorted by id.
	Classes() []defs.ClassID
	Class(id defs.ClassID) (*Class, bool)
	// Subtypes lists the direct subclasses and implementers of id.
	Subtypes(id defs.ClassID) []defs.ClassID
}

// EscapeOracle classifies how the reference stored by a write escapes.
type EscapeOracle interface {
	Escape(class defs.ClassID, field string, w *WriteSite) Escape
}
