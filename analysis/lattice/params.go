package lattice

import (
	"strings"

	"github.com/benbjohnson/immutable"
)

type paramComparer struct{}

func (paramComparer) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Params is a persistent, sorted set of type parameter names. The zero value
// is the empty set.
type Params struct {
	set *immutable.SortedMap[string, struct{}]
}

func NewParams(names ...string) (p Params) {
	for _, n := range names {
		p = p.Add(n)
	}
	return
}

func (p Params) Len() int {
	if p.set == nil {
		return 0
	}
	return p.set.Len()
}

func (p Params) Empty() bool {
	return p.Len() == 0
}

func (p Params) Contains(name string) bool {
	if p.set == nil {
		return false
	}
	_, found := p.set.Get(name)
	return found
}

func (p Params) Add(name string) Params {
	set := p.set
	if set == nil {
		set = immutable.NewSortedMap[string, struct{}](paramComparer{})
	}
	return Params{set.Set(name, struct{}{})}
}

// ForEach visits the parameters in sorted order.
func (p Params) ForEach(do func(name string)) {
	if p.set == nil {
		return
	}
	iter := p.set.Iterator()
	for !iter.Done() {
		k, _, _ := iter.Next()
		do(k)
	}
}

func (p Params) forall(pred func(name string) bool) bool {
	if p.set == nil {
		return true
	}
	iter := p.set.Iterator()
	for !iter.Done() {
		k, _, _ := iter.Next()
		if !pred(k) {
			return false
		}
	}
	return true
}

func (p Params) Union(q Params) Params {
	if p.Len() < q.Len() {
		p, q = q, p
	}
	q.ForEach(func(n string) {
		p = p.Add(n)
	})
	return p
}

func (p Params) Intersect(q Params) (res Params) {
	p.ForEach(func(n string) {
		if q.Contains(n) {
			res = res.Add(n)
		}
	})
	return
}

func (p Params) SubsetOf(q Params) bool {
	return p.Len() <= q.Len() && p.forall(q.Contains)
}

func (p Params) Eq(q Params) bool {
	return p.Len() == q.Len() && p.SubsetOf(q)
}

// Slice returns the parameters in sorted order.
func (p Params) Slice() []string {
	res := make([]string, 0, p.Len())
	p.ForEach(func(n string) {
		res = append(res, n)
	})
	return res
}

func (p Params) String() string {
	return strings.Join(p.Slice(), ",")
}

// parseParams parses the "(T1,T2)" suffix of dependent element names.
func parseParams(name, prefix string) (Params, bool) {
	if !strings.HasPrefix(name, prefix+"(") || !strings.HasSuffix(name, ")") {
		return Params{}, false
	}
	inner := name[len(prefix)+1 : len(name)-1]
	var p Params
	for _, part := range strings.Split(inner, ",") {
		if part = strings.TrimSpace(part); part != "" {
			p = p.Add(part)
		}
	}
	return p, !p.Empty()
}
