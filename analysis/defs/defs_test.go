package defs

import "testing"

func TestKeyOrder(t *testing.T) {
	tests := []struct {
		a, b     Key
		expected bool
	}{
		{ClassKey("A"), ClassKey("B"), true},
		{ClassKey("B"), ClassKey("A"), false},
		{ReferenceKey("A", "f"), FieldKey("A", "f"), true},
		{FieldKey("A", "f"), ReferenceKey("A", "f"), false},
		{ClassKey("A"), TypeKey("A"), true},
		{ClassKey("A"), FieldKey("A", "f"), true},
	}

	for _, test := range tests {
		if res := test.a.Less(test.b); res != test.expected {
			t.Errorf("%s < %s = %v, expected %v\n", test.a.Name(), test.b.Name(), res, test.expected)
		}
	}
}

func TestKeyHashEqual(t *testing.T) {
	a, b := FieldKey("A", "f"), FieldKey("A", "f")
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Errorf("Equal keys %s and %s differ", a.Name(), b.Name())
	}
	if a.Equal(ReferenceKey("A", "f")) {
		t.Error("Keys of different dimensions are equal")
	}
}

func TestDimensionApplies(t *testing.T) {
	if !ReferenceImmutability.Applies(FieldEntity) || !FieldImmutability.Applies(FieldEntity) {
		t.Error("Fields should carry reference and field immutability")
	}
	if ClassImmutability.Applies(TypeEntity) || TypeImmutability.Applies(ClassEntity) {
		t.Error("Class and type dimensions should not be shared")
	}

	for _, d := range []Dimension{ReferenceImmutability, FieldImmutability, ClassImmutability, TypeImmutability} {
		parsed, err := ParseDimension(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDimension(%s) = %v, %v", d, parsed, err)
		}
	}
}

func TestTypeRefParams(t *testing.T) {
	typ := ClassRef("G", Param("T1"), ClassRef("H", Param("T2"), Param("T1")), ArrayOf(Param("T3")))

	params := typ.Params()
	expected := []string{"T1", "T2", "T3"}
	if len(params) != len(expected) {
		t.Fatalf("Params of %s = %v, expected %v", typ, params, expected)
	}
	for i := range expected {
		if params[i] != expected[i] {
			t.Errorf("Params of %s = %v, expected %v", typ, params, expected)
		}
	}
}

func TestBind(t *testing.T) {
	s := Bind([]string{"K", "V"}, []TypeRef{Primitive()})
	if len(s) != 1 {
		t.Fatalf("Expected one binding, got %v", s)
	}
	if _, found := s.Lookup("V"); found {
		t.Error("V should be unbound")
	}
	if arg, found := s.Lookup("K"); !found || arg.Kind != PrimitiveType {
		t.Errorf("K bound to %v", arg)
	}
}
