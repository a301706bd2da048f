package upfront_test

import (
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	"github.com/cs-au-dk/immut/analysis/fixpoint"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, res testutil.LoadResult, class, name string) *model.Field {
	t.Helper()
	c, found := res.Model.Program.Class(res.Class(class))
	require.True(t, found, "class %s", class)
	f, found := c.Field(name)
	require.True(t, found, "field %s.%s", class, name)
	return f
}

func solveNotes(t *testing.T, res testutil.LoadResult) {
	t.Helper()
	notes := testutil.MakeNotesManager(t, res)
	require.NotEmpty(t, notes.Notes())

	store, err := fixpoint.New(res.Model.Facts(), fixpoint.WithWorkers(2)).Solve()
	require.NoError(t, err)
	notes.Check(t, store)
}

func TestExampleNotes(t *testing.T) {
	for _, pkg := range []string{"lazy-config", "generic-box"} {
		t.Run(pkg, func(t *testing.T) {
			solveNotes(t, testutil.LoadExamplePackage(t, "../..", pkg))
		})
	}
}

func TestWrittenFields(t *testing.T) {
	res := testutil.LoadPackageFromSource(t, "testpackage", `
		package main

		type Inner struct{ v int }

		type Holder struct {
			fresh  *Inner
			shared *Inner
			twice  *Inner
			count  int
			none   *Inner
		}

		func NewHolder(p *Inner) *Holder {
			h := &Holder{}
			h.fresh = &Inner{v: 1}
			h.shared = p
			t := &Inner{}
			h.twice = t
			other := &Holder{}
			other.twice = t
			h.count = 3
			h.none = nil
			return h
		}

		func (h *Holder) Reset() { h.count = 0 }

		func main() {
			NewHolder(&Inner{}).Reset()
		}`)

	tests := []struct {
		field        string
		sites        int
		constructor  bool
		nonNull      bool
		escape       model.Escape
	}{
		{"fresh", 1, true, true, model.NoEscape},
		{"shared", 1, true, true, model.EscapesGlobally},
		{"twice", 2, true, true, model.EscapesViaImmutableField},
		{"none", 1, true, false, model.NoEscape},
	}

	for _, test := range tests {
		f := field(t, res, "Holder", test.field)
		if len(f.Writes) != test.sites {
			t.Errorf("Holder.%s has %d write sites, expected %d\n", test.field, len(f.Writes), test.sites)
			continue
		}
		for _, w := range f.Writes {
			if w.Constructor != test.constructor {
				t.Errorf("Constructor(%s) = %v, expected %v\n", w, w.Constructor, test.constructor)
			}
			if w.NonNull != test.nonNull {
				t.Errorf("NonNull(%s) = %v, expected %v\n", w, w.NonNull, test.nonNull)
			}
			if e := res.Model.Escapes.Escape(res.Class("Holder"), test.field, w); e != test.escape {
				t.Errorf("Escape(%s) = %s, expected %s\n", w, e, test.escape)
			}
		}
	}

	count := field(t, res, "Holder", "count")
	late := res.Model.Facts().WrittenOutsideConstruction(count)
	if assert.Len(t, late, 1) {
		assert.Contains(t, late[0].Method, "Reset")
	}
	assert.Len(t, field(t, res, "Inner", "v").Writes, 1)
}

func TestAccessTraces(t *testing.T) {
	res := testutil.LoadExamplePackage(t, "../..", "lazy-config")

	cfg := field(t, res, "Loader", "cfg")
	require.Len(t, cfg.Traces, 1)

	tr := cfg.Traces[0]
	assert.Contains(t, tr.Method, "Get")

	var kinds []model.AccessKind
	for _, ev := range tr.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []model.AccessKind{
		model.NullCheck, model.Lock, model.NullCheck, model.Write, model.Read,
	}, kinds)

	lock := string(res.Class("Loader")) + ".mu"
	assert.Equal(t, lock, tr.Events[1].Lock)
	assert.True(t, tr.Events[3].Holds(lock))
	assert.False(t, tr.Events[4].Holds(lock))

	// Fields only written during construction have no traces.
	assert.Empty(t, field(t, res, "Config", "name").Traces)
}

func TestProgramModel(t *testing.T) {
	res := testutil.LoadExamplePackage(t, "../..", "generic-box")

	box, found := res.Model.Program.Class(res.Class("Box"))
	require.True(t, found)
	assert.True(t, box.Final)
	assert.Equal(t, []string{"T"}, box.ParamNames())
	if f, ok := box.Field("v"); assert.True(t, ok) {
		assert.Equal(t, defs.Param("T"), f.Type)
		assert.True(t, f.Private)
	}

	shapes, _ := res.Model.Program.Class(res.Class("Shapes"))
	if f, ok := shapes.Field("origin"); assert.True(t, ok) {
		assert.Equal(t, defs.ClassRef(res.Class("Box"), defs.ClassRef(res.Class("Point"))), f.Type)
	}

	sized, found := res.Model.Program.Class(res.Class("Sized"))
	require.True(t, found)
	assert.True(t, sized.Interface)
	assert.ElementsMatch(t,
		[]defs.ClassID{res.Class("Counter"), res.Class("Point")},
		res.Model.Program.Subtypes(res.Class("Sized")))

	assert.Contains(t, res.Model.Local, res.Class("Registry"))
	assert.NotContains(t, res.Model.Local, defs.ClassID("sync.Mutex"))
}
