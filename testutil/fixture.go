package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/cs-au-dk/immut/analysis/defs"
	L "github.com/cs-au-dk/immut/analysis/lattice"
	"github.com/cs-au-dk/immut/analysis/model"
	"github.com/cs-au-dk/immut/analysis/results"

	"gopkg.in/yaml.v3"
)

// Fixture is a program description, in the format read by model.ParseYAML,
// together with the classifications expected for it:
//
//	description: ...
//	open_world: false
//	classes: [...]
//	expect:
//	  Reference:
//	    Singleton.instance: LazyInitializedThreadSafeReference
//	  Class:
//	    Box: DependentImmutableClass(T)
type Fixture struct {
	Name        string
	Description string
	OpenWorld   bool
	Program     *model.MemProgram
	Expect      []Expectation
}

// Expectation is the expected value of one classification.
type Expectation struct {
	Key   defs.Key
	Value L.Element
}

type fixtureFile struct {
	Description string                       `yaml:"description"`
	OpenWorld   bool                         `yaml:"open_world"`
	Expect      map[string]map[string]string `yaml:"expect"`
}

// LoadFixture reads a fixture file. The fixture is named after the file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseFixture(name, data)
}

// LoadFixtures reads every *.yaml fixture of a directory, ordered by name.
func LoadFixtures(dir string) ([]*Fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var res []*Fixture
	for _, path := range paths {
		f, err := LoadFixture(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res = append(res, f)
	}
	return res, nil
}

func ParseFixture(name string, data []byte) (*Fixture, error) {
	var ff fixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, err
	}
	prog, err := model.ParseYAML(data)
	if err != nil {
		return nil, err
	}

	f := &Fixture{
		Name:        name,
		Description: ff.Description,
		OpenWorld:   ff.OpenWorld,
		Program:     prog,
	}
	for dimName, table := range ff.Expect {
		dim, err := defs.ParseDimension(dimName)
		if err != nil {
			return nil, err
		}
		lat := L.Lattices().ForDimension(dim)
		for entity, value := range table {
			e, err := ParseEntity(dim, entity)
			if err != nil {
				return nil, err
			}
			v, err := lat.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("expectation of %s: %w", entity, err)
			}
			f.Expect = append(f.Expect, Expectation{defs.MkKey(e, dim), v})
		}
	}
	sort.Slice(f.Expect, func(i, j int) bool {
		return f.Expect[i].Key.Less(f.Expect[j].Key)
	})
	return f, nil
}

// ParseEntity parses the entity an expectation is about. Fields are written
// "Class.field", classes and types by their id.
func ParseEntity(dim defs.Dimension, name string) (defs.Entity, error) {
	switch dim {
	case defs.ReferenceImmutability, defs.FieldImmutability:
		i := strings.LastIndex(name, ".")
		if i <= 0 || i == len(name)-1 {
			return defs.Entity{}, fmt.Errorf("%q is not a field name", name)
		}
		return defs.FieldOf(defs.ClassID(name[:i]), name[i+1:]), nil
	case defs.ClassImmutability:
		return defs.ClassOf(defs.ClassID(name)), nil
	case defs.TypeImmutability:
		return defs.TypeOf(defs.ClassID(name)), nil
	}
	return defs.Entity{}, fmt.Errorf("unknown dimension %s", dim)
}

// Check compares the converged classifications with the expectations of
// the fixture.
func (f *Fixture) Check(t *testing.T, store *results.Store) {
	t.Helper()

	for _, exp := range f.Expect {
		got, err := store.Get(exp.Key.Entity, exp.Key.Dim)
		if err != nil {
			t.Errorf("%s: %v", exp.Key.Name(), err)
			continue
		}
		// Expectations are stated in printed form.
		if got.Name() != exp.Value.Name() {
			t.Errorf("%s = %s, expected %s\n", exp.Key.Name(), got.Name(), exp.Value.Name())
		}
	}
}
