package results

import (
	"errors"
	"sync"
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deepClass = L.Lattices().Class().Deep()
	classA    = defs.ClassKey("A")
)

func TestGetBeforeCompletion(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Publish(classA, deepClass))

	_, err := s.Get(classA.Entity, classA.Dim)
	assert.ErrorIs(t, err, ErrAnalysisNotConverged)

	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrAnalysisNotConverged)

	v, found := s.Lookup(classA)
	assert.True(t, found, "final values are visible internally")
	assert.True(t, v.Eq(deepClass))

	s.Complete()
	v, err = s.Get(classA.Entity, classA.Dim)
	require.NoError(t, err)
	assert.True(t, v.Eq(deepClass))

	_, err = s.Get(defs.ClassOf("B"), defs.ClassImmutability)
	assert.True(t, errors.Is(err, ErrNotClassified))
}

func TestPublishConflicts(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Publish(classA, deepClass))
	assert.NoError(t, s.Publish(classA, deepClass), "republishing the same value is allowed")
	assert.Error(t, s.Publish(classA, L.Lattices().Class().Mutable()))

	s.Complete()
	assert.Error(t, s.Publish(defs.ClassKey("B"), deepClass))
}

func TestSubscribe(t *testing.T) {
	s := NewStore()

	var got []L.Element
	s.Subscribe(classA, func(key defs.Key, v L.Element) {
		assert.Equal(t, classA, key)
		got = append(got, v)
	})
	assert.Empty(t, got)

	require.NoError(t, s.Publish(classA, deepClass))
	require.Len(t, got, 1)

	// Late subscribers are called immediately.
	s.Subscribe(classA, func(_ defs.Key, v L.Element) {
		got = append(got, v)
	})
	assert.Len(t, got, 2)

	// Subscribers are only notified once.
	require.NoError(t, s.Publish(classA, deepClass))
	assert.Len(t, got, 2)
}

func TestEntriesSorted(t *testing.T) {
	s := NewStore()
	keys := []defs.Key{
		defs.TypeKey("B"),
		defs.FieldKey("A", "f"),
		defs.ClassKey("B"),
		defs.ReferenceKey("A", "f"),
		defs.ClassKey("A"),
	}

	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k defs.Key) {
			defer wg.Done()
			assert.NoError(t, s.Publish(k, L.Lattices().ForDimension(k.Dim).Bot()))
		}(k)
	}
	wg.Wait()
	s.Complete()

	entries, err := s.Entries()
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Key.Name())
	}
	assert.Equal(t, []string{
		"A⟨Class⟩",
		"A.f⟨Reference⟩",
		"A.f⟨Field⟩",
		"B⟨Class⟩",
		"B⟨Type⟩",
	}, names)
}

func TestReport(t *testing.T) {
	s := NewStore()
	cause := errors.New("boom")
	s.Report(classA, cause)

	errs := s.Errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], cause)
	assert.Contains(t, errs[0].Error(), "A⟨Class⟩")
}
