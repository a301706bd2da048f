package model

import (
	"sort"
	"sync"

	"github.com/cs-au-dk/immut/analysis/defs"
)

// MemProgram is an in-memory program model. Subtypes are derived from the
// declared supertypes of the added classes.
type MemProgram struct {
	classes  map[defs.ClassID]*Class
	subtypes map[defs.ClassID][]defs.ClassID
	ids      []defs.ClassID
	mu       sync.Mutex
}

func NewProgram(classes ...*Class) *MemProgram {
	p := &MemProgram{
		classes: make(map[defs.ClassID]*Class),
	}
	for _, c := range classes {
		p.Add(c)
	}
	return p
}

// Add adds or replaces a class. It must not be called while the program is
// being analyzed.
func (p *MemProgram) Add(c *Class) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes[c.ID] = c
	p.subtypes = nil
	p.ids = nil
}

func (p *MemProgram) index() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subtypes != nil {
		return
	}

	p.subtypes = make(map[defs.ClassID][]defs.ClassID)
	p.ids = make([]defs.ClassID, 0, len(p.classes))
	for id := range p.classes {
		p.ids = append(p.ids, id)
	}
	sort.Slice(p.ids, func(i, j int) bool { return p.ids[i] < p.ids[j] })

	for _, id := range p.ids {
		for _, sup := range p.classes[id].Supertypes() {
			if sup.Kind == defs.ClassType {
				p.subtypes[sup.Class] = append(p.subtypes[sup.Class], id)
			}
		}
	}
}

func (p *MemProgram) Classes() []defs.ClassID {
	p.index()
	return p.ids
}

func (p *MemProgram) Class(id defs.ClassID) (*Class, bool) {
	c, found := p.classes[id]
	return c, found
}

func (p *MemProgram) Subtypes(id defs.ClassID) []defs.ClassID {
	p.index()
	return p.subtypes[id]
}

// SuppliedEscapes is the escape oracle for programs whose write sites carry
// their escape classification.
type SuppliedEscapes struct{}

func (SuppliedEscapes) Escape(_ defs.ClassID, _ string, w *WriteSite) Escape {
	return w.Escape
}

// EscapeTable is an escape oracle backed by an explicit table of write site
// ids. Unknown write sites escape globally.
type EscapeTable map[string]Escape

func (t EscapeTable) Escape(_ defs.ClassID, _ string, w *WriteSite) Escape {
	if e, found := t[w.ID]; found {
		return e
	}
	return EscapesGlobally
}
