package detect

import (
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func access(kind model.AccessKind, held ...string) model.Access {
	return model.Access{Kind: kind, Held: held}
}

func lock(name string, held ...string) model.Access {
	return model.Access{Kind: model.Lock, Lock: name, Held: held}
}

func unlock(name string, held ...string) model.Access {
	return model.Access{Kind: model.Unlock, Lock: name, Held: held}
}

func write(site string, held ...string) model.Access {
	return model.Access{Kind: model.Write, Site: site, Held: held}
}

// The double-checked locking singleton:
//
//	if instance == nil {
//		mu.Lock()
//		if instance == nil {
//			instance = new(...)
//		}
//		mu.Unlock()
//	}
//	return instance
func singleton() *model.Field {
	return &model.Field{
		Name:    "instance",
		Private: true,
		Static:  true,
		Writes:  []*model.WriteSite{{ID: "w", Method: "getInstance", NonNull: true}},
		Traces: []model.Trace{{
			Method: "getInstance",
			Events: []model.Access{
				access(model.NullCheck),
				lock("mu"),
				access(model.NullCheck, "mu"),
				write("w", "mu"),
				unlock("mu", "mu"),
				access(model.Read),
			},
		}},
	}
}

func TestLazyInitRecognized(t *testing.T) {
	v := LazyInit(singleton())
	assert.Equal(t, L.LazyInitializedThreadSafeReference, v.Value, v.Reason)
	assert.Equal(t, "mu", v.Lock)
}

func TestLazyInitRejected(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *model.Field)
	}{
		{"additional unguarded write", func(f *model.Field) {
			f.Writes = append(f.Writes, &model.WriteSite{ID: "w2", Method: "reset", NonNull: true})
			f.Traces = append(f.Traces, model.Trace{
				Method: "reset",
				Events: []model.Access{write("w2")},
			})
		}},
		{"write outside lock", func(f *model.Field) {
			f.Traces[0].Events[3] = write("w")
		}},
		{"null store", func(f *model.Field) {
			f.Writes[0].NonNull = false
		}},
		{"no outside check", func(f *model.Field) {
			f.Traces[0].Events[0] = access(model.Read)
		}},
		{"no recheck inside lock", func(f *model.Field) {
			f.Traces[0].Events[2] = access(model.Read, "mu")
		}},
		{"second write under another lock", func(f *model.Field) {
			f.Writes = append(f.Writes, &model.WriteSite{ID: "w2", Method: "other", Constructor: true, NonNull: true})
			f.Traces = append(f.Traces, model.Trace{
				Method: "other",
				Events: []model.Access{write("w2", "other")},
			})
		}},
		{"ambiguous lock", func(f *model.Field) {
			f.Traces[0].Events = []model.Access{
				access(model.NullCheck),
				lock(""),
				access(model.NullCheck, ""),
				write("w", ""),
				unlock("", ""),
			}
		}},
		{"never read outside lock", func(f *model.Field) {
			f.Traces[0].Events = []model.Access{
				lock("mu"),
				access(model.NullCheck, "mu"),
				write("w", "mu"),
				unlock("mu", "mu"),
			}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := singleton()
			test.modify(f)
			v := LazyInit(f)
			assert.Equal(t, L.MutableReference, v.Value)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestLazyInitIgnoresDefaultInitialization(t *testing.T) {
	f := singleton()
	f.Writes = append(f.Writes, &model.WriteSite{ID: "init", Method: "<init>", Constructor: true})
	assert.Equal(t, L.LazyInitializedThreadSafeReference, LazyInit(f).Value)
}

func genericFacts(t *testing.T) *model.Facts {
	prog, err := model.ParseYAML([]byte(`
classes:
  - id: Imm
    final: true
  - id: Bound
  - id: G
    params: [T]
    fields:
      - {name: t, type: T, final: true}
  - id: Deep11
    params: [T1, {name: B, bound: Bound}]
    fields:
      - {name: t1, type: T1, final: true}
      - {name: gc, type: "G[T1]", final: true}
      - {name: b, type: B, final: true}
      - {name: nested, type: "G[G[Imm]]", final: true}
      - {name: arr, type: "[]T1", final: true}
`))
	require.NoError(t, err)
	return model.NewFacts(prog, nil)
}

func TestGenericParam(t *testing.T) {
	facts := genericFacts(t)
	c, _ := facts.Class("Deep11")

	dep, err := Generic(facts, c, defs.Param("T1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, dep.Params.Slice())
	assert.Equal(t, "DependentImmutableField(T1)", dep.Initial.Name())
	assert.Empty(t, dep.Edges, "unbounded parameter has no bound to depend on")

	dep, err = Generic(facts, c, defs.Param("B"))
	require.NoError(t, err)
	require.Len(t, dep.Edges, 1)
	assert.Equal(t, defs.TypeKey("Bound"), dep.Edges[0].To)
	assert.False(t, dep.Edges[0].Strict)
}

func TestGenericInstantiation(t *testing.T) {
	facts := genericFacts(t)
	c, _ := facts.Class("Deep11")
	gc, _ := c.Field("gc")

	dep, err := Generic(facts, c, gc.Type)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, dep.Params.Slice())
	require.Len(t, dep.Edges, 1)

	e := dep.Edges[0]
	assert.Equal(t, defs.TypeKey("G"), e.To)
	assert.True(t, e.Strict)
	arg, found := e.Subst.Lookup("T")
	require.True(t, found)
	assert.Equal(t, defs.Param("T1"), arg)

	nested, _ := c.Field("nested")
	dep, err = Generic(facts, c, nested.Type)
	require.NoError(t, err)
	assert.True(t, dep.Params.Empty())
	assert.True(t, dep.Initial.IsDeep())

	var targets []defs.Key
	for _, e := range dep.Edges {
		assert.True(t, e.Strict, e.String())
		targets = append(targets, e.To)
	}
	assert.Equal(t, []defs.Key{defs.TypeKey("G"), defs.TypeKey("G"), defs.TypeKey("Imm")}, targets)
}

func TestGenericArrayAndMalformed(t *testing.T) {
	facts := genericFacts(t)
	c, _ := facts.Class("Deep11")

	dep, err := Generic(facts, c, defs.ArrayOf(defs.Param("T1")))
	require.NoError(t, err)
	assert.Empty(t, dep.Edges)

	_, err = Generic(facts, c, defs.ClassRef("Missing"))
	assert.ErrorIs(t, err, model.ErrMalformedDependency)
}

func TestArguments(t *testing.T) {
	facts := genericFacts(t)
	c, _ := facts.Class("Deep11")

	dep, err := Arguments(facts, c, []defs.TypeRef{defs.ClassRef("Imm"), defs.Param("B")})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, dep.Params.Slice())
	require.Len(t, dep.Edges, 2)

	assert.Equal(t, defs.TypeKey("Imm"), dep.Edges[0].To)
	assert.True(t, dep.Edges[0].Strict, "class arguments are read strictly")
	assert.Equal(t, defs.TypeKey("Bound"), dep.Edges[1].To)
	assert.False(t, dep.Edges[1].Strict, "parameter bounds are not")
}
