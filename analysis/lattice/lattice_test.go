package lattice

import (
	"testing"
)

var (
	fl = Lattices().Field()
	cl = Lattices().Class()
	tl = Lattices().Type()
)

func sampleElements(l Lattice) []Element {
	switch l := l.(type) {
	case *ReferenceLattice:
		return []Element{MutableReference, LazyInitializedThreadSafeReference, ImmutableReference}
	case *FieldLattice:
		return []Element{
			l.Mutable(),
			l.Shallow(),
			l.Dependent(NewParams("T1")),
			l.Dependent(NewParams("T2")),
			l.Dependent(NewParams("T1", "T2")),
			l.Dependent(NewParams("T2", "T3")),
			l.Deep(),
		}
	case *ObjectLattice:
		return []Element{
			l.Mutable(),
			l.Dependent(NewParams("T1")),
			l.Dependent(NewParams("T2")),
			l.Dependent(NewParams("T1", "T2")),
			l.Dependent(NewParams("T2", "T3")),
			l.DependentCapped(NewParams("T1")),
			l.DependentCapped(NewParams("T1", "T2")),
			l.Shallow(),
			l.Deep(),
		}
	}
	panic(errPatternMatch(l))
}

var allLattices = []Lattice{Lattices().Reference(), fl, cl, tl}

func TestJoinLaws(t *testing.T) {
	for _, l := range allLattices {
		els := sampleElements(l)
		for _, a := range els {
			if res := a.Join(a); !res.Eq(a) {
				t.Errorf("%s: %s ⊔ %s = %s, expected %s\n", l, a, a, res, a)
			}
			if res := a.Join(l.Bot()); !res.Eq(a) {
				t.Errorf("%s: %s ⊔ ⊥ = %s, expected %s\n", l, a, res, a)
			}
			if res := a.Join(l.Top()); !res.Eq(l.Top()) {
				t.Errorf("%s: %s ⊔ ⊤ = %s, expected %s\n", l, a, res, l.Top())
			}

			for _, b := range els {
				ab, ba := a.Join(b), b.Join(a)
				if !ab.Eq(ba) {
					t.Errorf("%s: %s ⊔ %s = %s, but %s ⊔ %s = %s\n", l, a, b, ab, b, a, ba)
				}
				if !a.Leq(ab) || !b.Leq(ab) {
					t.Errorf("%s: %s ⊔ %s = %s is not an upper bound\n", l, a, b, ab)
				}
				if m := a.Meet(b); !m.Leq(a) || !m.Leq(b) {
					t.Errorf("%s: %s ⊓ %s = %s is not a lower bound\n", l, a, b, m)
				}

				for _, c := range els {
					left, right := a.Join(b).Join(c), a.Join(b.Join(c))
					if !left.Eq(right) {
						t.Errorf("%s: (%s ⊔ %s) ⊔ %s = %s, but %s ⊔ (%s ⊔ %s) = %s\n",
							l, a, b, c, left, a, b, c, right)
					}
					// Least upper bound
					if a.Leq(c) && b.Leq(c) && !ab.Leq(c) {
						t.Errorf("%s: %s ⊔ %s = %s is not below upper bound %s\n", l, a, b, ab, c)
					}
				}
			}
		}
	}
}

func TestFieldJoin(t *testing.T) {
	tests := []struct{ a, b, expected Element }{
		{fl.Mutable(), fl.Shallow(), fl.Shallow()},
		{fl.Shallow(), Elements().DependentField("T1"), Elements().DependentField("T1")},
		{Elements().DependentField("T1", "T2"), Elements().DependentField("T2", "T3"), Elements().DependentField("T2")},
		{Elements().DependentField("T1"), Elements().DependentField("T2"), fl.Deep()},
		{Elements().DependentField("T1"), fl.Deep(), fl.Deep()},
	}

	for _, test := range tests {
		res := test.a.Join(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestObjectJoin(t *testing.T) {
	dep := func(ps ...string) Element { return cl.Dependent(NewParams(ps...)) }

	tests := []struct{ a, b, expected Element }{
		{cl.Mutable(), dep("T"), dep("T")},
		{dep("T"), cl.Shallow(), cl.Shallow()},
		{dep("T1", "T2"), dep("T1"), dep("T1")},
		{dep("T1"), dep("T2"), cl.Shallow()},
		{cl.DependentCapped(NewParams("T1")), dep("T1"), dep("T1")},
		{cl.DependentCapped(NewParams("T1", "T2")), cl.DependentCapped(NewParams("T2")), cl.DependentCapped(NewParams("T2"))},
		{cl.Shallow(), cl.Deep(), cl.Deep()},
	}

	for _, test := range tests {
		res := test.a.Join(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestObjectMeet(t *testing.T) {
	dep := func(ps ...string) Element { return tl.Dependent(NewParams(ps...)) }

	tests := []struct{ a, b, expected Element }{
		{dep("T1"), dep("T2"), dep("T1", "T2")},
		{dep("T1"), tl.Shallow(), tl.DependentCapped(NewParams("T1"))},
		{tl.Shallow(), dep("T1"), tl.DependentCapped(NewParams("T1"))},
		{tl.DependentCapped(NewParams("T1")), dep("T2"), tl.DependentCapped(NewParams("T1", "T2"))},
		{tl.DependentCapped(NewParams("T1")), tl.Deep(), tl.DependentCapped(NewParams("T1"))},
		{tl.Mutable(), dep("T1"), tl.Mutable()},
		{tl.Deep(), tl.Shallow(), tl.Shallow()},
	}

	for _, test := range tests {
		res := test.a.Meet(test.b)
		if !res.Eq(test.expected) {
			t.Errorf("%s ⊓ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestLeq(t *testing.T) {
	tests := []struct {
		a, b     Element
		expected bool
	}{
		{MutableReference, LazyInitializedThreadSafeReference, true},
		{ImmutableReference, LazyInitializedThreadSafeReference, false},
		{fl.Shallow(), Elements().DependentField("T"), true},
		{Elements().DependentField("T"), fl.Shallow(), false},
		{Elements().DependentField("T1", "T2"), Elements().DependentField("T1"), true},
		{Elements().DependentField("T1"), Elements().DependentField("T2"), false},
		{cl.Dependent(NewParams("T")), cl.Shallow(), true},
		{cl.Shallow(), cl.Dependent(NewParams("T")), false},
		{cl.DependentCapped(NewParams("T")), cl.Dependent(NewParams("T")), true},
		{cl.Dependent(NewParams("T")), cl.DependentCapped(NewParams("T")), false},
		{cl.DependentCapped(NewParams("T")), cl.Shallow(), true},
	}

	for _, test := range tests {
		res := test.a.Leq(test.b)
		if res != test.expected {
			t.Errorf("%s ⊑ %s = %v, expected %v\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊑ %s = %v\n", test.a, test.b, res)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, l := range allLattices {
		for _, e := range sampleElements(l) {
			if o, ok := e.(ObjectElement); ok && o.Capped() {
				// The cap is not printed.
				continue
			}
			parsed, err := l.Parse(e.Name())
			if err != nil {
				t.Errorf("%s: parsing %s failed: %v", l, e.Name(), err)
				continue
			}
			if !parsed.Eq(e) {
				t.Errorf("%s: parsed %s as %s", l, e.Name(), parsed)
			}
		}
	}

	if _, err := cl.Parse("DependentImmutableType(T)"); err == nil {
		t.Error("Class lattice accepted a type element")
	}
	if _, err := fl.Parse("DependentImmutableField()"); err == nil {
		t.Error("Field lattice accepted a dependent element without parameters")
	}
}

func TestDependentWithoutParams(t *testing.T) {
	if e := fl.Dependent(Params{}); !e.IsDeep() {
		t.Errorf("Field dependent on nothing is %s", e)
	}
	if e := cl.Dependent(Params{}); !e.IsShallow() {
		t.Errorf("Class dependent on nothing is %s", e)
	}
}

func TestConcretize(t *testing.T) {
	args := map[string]FieldElement{
		"Imm":  fl.Deep(),
		"Mut":  fl.Mutable(),
		"Sh":   fl.Shallow(),
		"DepU": Elements().DependentField("U"),
	}

	tests := []struct {
		value    ObjectElement
		bind     map[string]string
		expected FieldElement
	}{
		{tl.Deep(), nil, fl.Deep()},
		{tl.Mutable(), nil, fl.Shallow()},
		{tl.Dependent(NewParams("T")), map[string]string{"T": "Imm"}, fl.Deep()},
		{tl.Dependent(NewParams("T")), map[string]string{"T": "Mut"}, fl.Shallow()},
		{tl.Dependent(NewParams("T")), map[string]string{"T": "DepU"}, Elements().DependentField("U")},
		{tl.Dependent(NewParams("K", "V")), map[string]string{"K": "Imm", "V": "Sh"}, fl.Shallow()},
		{tl.Dependent(NewParams("K", "V")), map[string]string{"K": "Imm"}, Elements().DependentField("V")},
		{tl.DependentCapped(NewParams("T")), map[string]string{"T": "Imm"}, fl.Shallow()},
		{tl.DependentCapped(NewParams("T")), map[string]string{"T": "Mut"}, fl.Shallow()},
		{tl.DependentCapped(NewParams("T")), nil, fl.Shallow()},
	}

	for _, test := range tests {
		res := test.value.Concretize(func(p string) (FieldElement, bool) {
			name, found := test.bind[p]
			if !found {
				return FieldElement{}, false
			}
			return args[name], true
		})
		if !res.Eq(test.expected) {
			t.Errorf("%s%v = %s, expected %s", test.value, test.bind, res, test.expected)
		}
	}
}

func TestParams(t *testing.T) {
	p := NewParams("T2", "T1", "T2")
	if p.Len() != 2 || p.String() != "T1,T2" {
		t.Errorf("Params = %s (%d)", p, p.Len())
	}

	q := NewParams("T2", "T3")
	if s := p.Union(q).String(); s != "T1,T2,T3" {
		t.Errorf("Union = %s", s)
	}
	if s := p.Intersect(q).String(); s != "T2" {
		t.Errorf("Intersection = %s", s)
	}
	if !NewParams("T2").SubsetOf(p) || q.SubsetOf(p) {
		t.Error("Subset relation is wrong")
	}
	if !(Params{}).SubsetOf(p) {
		t.Error("Empty set is not a subset")
	}
}

func TestCappedDependent(t *testing.T) {
	capped := cl.DependentCapped(NewParams("T"))
	if capped.Name() != cl.Dependent(NewParams("T")).Name() {
		t.Errorf("Capped value prints as %s", capped.Name())
	}
	if capped.Eq(cl.Dependent(NewParams("T"))) {
		t.Error("Capped value equals the uncapped one")
	}
	if e := capped.WithParams(NewParams("U")); !e.Capped() || e.Params().String() != "U" {
		t.Errorf("Rebinding gave %s (capped: %v)", e, e.Capped())
	}
	if e := tl.Convert(capped); !e.Capped() {
		t.Error("Conversion to the type lattice lost the cap")
	}
	if e := cl.DependentCapped(Params{}); !e.IsShallow() {
		t.Errorf("Capped value dependent on nothing is %s", e)
	}
}
