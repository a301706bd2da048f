package defs

import (
	"fmt"

	"github.com/cs-au-dk/immut/utils"
)

// Kind is the kind of a classified entity.
type Kind uint8

const (
	FieldEntity Kind = iota
	ClassEntity
	TypeEntity
)

func (k Kind) String() string {
	switch k {
	case FieldEntity:
		return "field"
	case ClassEntity:
		return "class"
	case TypeEntity:
		return "type"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Entity is a field, a class or a declared type. Entities are plain values
// and may be used as map keys.
type Entity struct {
	Kind  Kind
	Class ClassID
	// Field is only set for field entities.
	Field string
}

func FieldOf(class ClassID, name string) Entity {
	return Entity{Kind: FieldEntity, Class: class, Field: name}
}

func ClassOf(class ClassID) Entity {
	return Entity{Kind: ClassEntity, Class: class}
}

func TypeOf(class ClassID) Entity {
	return Entity{Kind: TypeEntity, Class: class}
}

// Name is the uncolored name of the entity, e.g. "pkg.T.f" for fields.
func (e Entity) Name() string {
	if e.Kind == FieldEntity {
		return string(e.Class) + "." + e.Field
	}
	return string(e.Class)
}

func (e Entity) String() string {
	switch e.Kind {
	case FieldEntity:
		return e.Class.String() + "." + colorize.Field(e.Field)
	case TypeEntity:
		return colorize.Type(string(e.Class))
	}
	return e.Class.String()
}

func (e Entity) Hash() uint32 {
	return utils.HashCombine(uint32(e.Kind), utils.HashString(string(e.Class)), utils.HashString(e.Field))
}

func (e Entity) Equal(o Entity) bool {
	return e == o
}

// Dimension is an immutability property of an entity.
type Dimension uint8

const (
	// Can the field slot be reassigned after construction.
	ReferenceImmutability Dimension = iota
	// Can the object referenced by the field change after construction.
	FieldImmutability
	// Are all instances of exactly this class immutable.
	ClassImmutability
	// Are all instances of this type and its subtypes immutable.
	TypeImmutability
)

var dimensionNames = [...]string{"Reference", "Field", "Class", "Type"}

func (d Dimension) String() string {
	if int(d) < len(dimensionNames) {
		return dimensionNames[d]
	}
	return fmt.Sprintf("dimension(%d)", d)
}

// ParseDimension is the inverse of Dimension.String.
func ParseDimension(s string) (Dimension, error) {
	for i, name := range dimensionNames {
		if name == s {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// Applies reports whether the dimension is defined for entities of kind k.
// Fields carry the reference and field dimensions, classes and types one each.
func (d Dimension) Applies(k Kind) bool {
	switch k {
	case FieldEntity:
		return d == ReferenceImmutability || d == FieldImmutability
	case ClassEntity:
		return d == ClassImmutability
	case TypeEntity:
		return d == TypeImmutability
	}
	return false
}

// Key identifies one classification: an entity along one dimension.
type Key struct {
	Entity
	Dim Dimension
}

func MkKey(e Entity, dim Dimension) Key {
	return Key{e, dim}
}

func ReferenceKey(class ClassID, field string) Key {
	return Key{FieldOf(class, field), ReferenceImmutability}
}

func FieldKey(class ClassID, field string) Key {
	return Key{FieldOf(class, field), FieldImmutability}
}

func ClassKey(class ClassID) Key {
	return Key{ClassOf(class), ClassImmutability}
}

func TypeKey(class ClassID) Key {
	return Key{TypeOf(class), TypeImmutability}
}

func (k Key) String() string {
	return k.Entity.String() + colorize.Dimension("⟨"+k.Dim.String()+"⟩")
}

// Name is the uncolored name of the key, e.g. "pkg.T.f⟨Field⟩".
func (k Key) Name() string {
	return k.Entity.Name() + "⟨" + k.Dim.String() + "⟩"
}

func (k Key) Hash() uint32 {
	return utils.HashCombine(k.Entity.Hash(), uint32(k.Dim))
}

func (k Key) Equal(o Key) bool {
	return k == o
}

// Less orders keys by entity name and then by dimension.
func (k Key) Less(o Key) bool {
	if a, b := k.Entity.Name(), o.Entity.Name(); a != b {
		return a < b
	}
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.Dim < o.Dim
}
