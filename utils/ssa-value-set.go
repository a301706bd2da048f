package utils

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
	"golang.org/x/tools/go/ssa"
)

// SSAValueSet is an immutable set of unique SSA values.
type SSAValueSet struct {
	*immutable.Map[ssa.Value, struct{}]
}

// MakeSSASet creates a set of SSA registers from the given values.
func MakeSSASet(vs ...ssa.Value) SSAValueSet {
	mp := immutable.NewMap[ssa.Value, struct{}](PointerHasher[ssa.Value]{})
	for _, v := range vs {
		mp = mp.Set(v, struct{}{})
	}

	return SSAValueSet{mp}
}

// Size returns the number of elements in the SSA value set.
func (s SSAValueSet) Size() int {
	return s.Map.Len()
}

// Add v to s:
//
//	s ∪ {v}
func (s SSAValueSet) Add(v ssa.Value) SSAValueSet {
	return SSAValueSet{s.Map.Set(v, struct{}{})}
}

// Contains checks for membership of v in s.
func (s SSAValueSet) Contains(v ssa.Value) bool {
	_, found := s.Get(v)
	return found
}

// Entries returns the members of s in no particular order.
func (s SSAValueSet) Entries() []ssa.Value {
	entries := make([]ssa.Value, 0, s.Size())
	for iter := s.Iterator(); !iter.Done(); {
		v, _, _ := iter.Next()
		entries = append(entries, v)
	}
	return entries
}

func (s SSAValueSet) String() string {
	strs := make([]string, 0, s.Size())
	for _, v := range s.Entries() {
		strs = append(strs, v.Name())
	}
	sort.Strings(strs)
	return "{ " + strings.Join(strs, ", ") + " }"
}
