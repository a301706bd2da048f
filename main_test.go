package main

import (
	"flag"
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixturePipeline(t *testing.T) {
	require.NoError(t, flag.Set("fixture", "analysis/fixpoint/testdata/fixtures/lazy-init.yaml"))
	defer flag.Set("fixture", "")

	pl, err := load()
	require.NoError(t, err)
	assert.Nil(t, pl.extracted)
	assert.Equal(t, []defs.ClassID{"Broken", "Singleton"}, pl.localClasses())

	store, err := pl.solve()
	require.NoError(t, err)
	assert.False(t, pl.printClassifications(store))

	v, err := store.Get(defs.FieldOf("Singleton", "instance"), defs.ReferenceImmutability)
	if assert.NoError(t, err) {
		assert.Equal(t, "LazyInitializedThreadSafeReference", v.Name())
	}

	// Static fields do not contribute to their class.
	assert.Empty(t, pl.newSolver().Graph().Cycles())
}
