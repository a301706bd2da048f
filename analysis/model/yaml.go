package model

import (
	"fmt"
	"os"

	"github.com/cs-au-dk/immut/analysis/defs"

	"gopkg.in/yaml.v3"
)

// ProgramFile is the YAML representation of a program.
type ProgramFile struct {
	Classes []ClassYAML `yaml:"classes"`
}

type ClassYAML struct {
	ID         string      `yaml:"id"`
	Params     []ParamYAML `yaml:"params"`
	Super      string      `yaml:"super"`
	Implements []string    `yaml:"implements"`
	Final      bool        `yaml:"final"`
	Interface  bool        `yaml:"interface"`
	Reflective bool        `yaml:"reflective"`
	Fields     []FieldYAML `yaml:"fields"`
}

// ParamYAML is a type parameter, either a bare name or {name, bound}.
type ParamYAML struct {
	Name  string `yaml:"name"`
	Bound string `yaml:"bound"`
}

func (p *ParamYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Name)
	}
	type plain ParamYAML
	return node.Decode((*plain)(p))
}

type FieldYAML struct {
	Name    string      `yaml:"name"`
	Type    string      `yaml:"type"`
	Final   bool        `yaml:"final"`
	Private bool        `yaml:"private"`
	Static  bool        `yaml:"static"`
	Writes  []WriteYAML `yaml:"writes"`
	Traces  []TraceYAML `yaml:"traces"`
}

type WriteYAML struct {
	ID          string `yaml:"id"`
	Method      string `yaml:"method"`
	Constructor bool   `yaml:"constructor"`
	Null        bool   `yaml:"null"`
	Escape      string `yaml:"escape"`
}

type TraceYAML struct {
	Method string       `yaml:"method"`
	Events []AccessYAML `yaml:"events"`
}

// AccessYAML is a trace event, either a bare kind or {kind, lock, site}.
type AccessYAML struct {
	Kind string `yaml:"kind"`
	Lock string `yaml:"lock"`
	Site string `yaml:"site"`
}

func (a *AccessYAML) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&a.Kind)
	}
	type plain AccessYAML
	return node.Decode((*plain)(a))
}

// LoadYAML reads a program from a YAML file.
func LoadYAML(path string) (*MemProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program %s: %w", path, err)
	}
	prog, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// ParseYAML parses a program. Keys other than "classes" are ignored, so
// fixtures may carry additional sections.
func ParseYAML(data []byte) (*MemProgram, error) {
	var pf ProgramFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse program YAML: %w", err)
	}
	return pf.Build()
}

// Build converts the YAML representation to a program model.
func (pf *ProgramFile) Build() (*MemProgram, error) {
	prog := NewProgram()
	seen := map[string]bool{}

	for _, cy := range pf.Classes {
		if cy.ID == "" {
			return nil, fmt.Errorf("class without id")
		}
		if seen[cy.ID] {
			return nil, fmt.Errorf("class %s declared twice", cy.ID)
		}
		seen[cy.ID] = true

		c, err := cy.build()
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cy.ID, err)
		}
		prog.Add(c)
	}

	return prog, nil
}

func (cy *ClassYAML) build() (*Class, error) {
	c := &Class{
		ID:                  defs.ClassID(cy.ID),
		Final:               cy.Final,
		Interface:           cy.Interface,
		ReflectivelyMutable: cy.Reflective,
	}

	inScope := func(name string) bool {
		for _, p := range cy.Params {
			if p.Name == name {
				return true
			}
		}
		return false
	}

	for _, py := range cy.Params {
		tp := TypeParam{Name: py.Name, Bound: defs.Unknown()}
		if py.Bound != "" {
			bound, err := ParseType(py.Bound, inScope)
			if err != nil {
				return nil, fmt.Errorf("bound of %s: %w", py.Name, err)
			}
			tp.Bound = bound
		}
		c.TypeParams = append(c.TypeParams, tp)
	}

	if cy.Super != "" {
		sup, err := ParseType(cy.Super, inScope)
		if err != nil {
			return nil, fmt.Errorf("superclass: %w", err)
		}
		c.Super = &sup
	}

	for _, i := range cy.Implements {
		it, err := ParseType(i, inScope)
		if err != nil {
			return nil, fmt.Errorf("implemented type: %w", err)
		}
		c.Interfaces = append(c.Interfaces, it)
	}

	for _, fy := range cy.Fields {
		f, err := fy.build(inScope)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fy.Name, err)
		}
		c.Fields = append(c.Fields, f)
	}

	return c, nil
}

func (fy *FieldYAML) build(inScope func(string) bool) (*Field, error) {
	typ, err := ParseType(fy.Type, inScope)
	if err != nil {
		return nil, err
	}

	f := &Field{
		Name:    fy.Name,
		Type:    typ,
		Final:   fy.Final,
		Private: fy.Private,
		Static:  fy.Static,
	}

	for i, wy := range fy.Writes {
		w := &WriteSite{
			ID:          wy.ID,
			Method:      wy.Method,
			Constructor: wy.Constructor || wy.Method == "<init>",
			NonNull:     !wy.Null,
		}
		if w.ID == "" {
			w.ID = fmt.Sprintf("w%d", i)
		}
		if wy.Escape != "" {
			if w.Escape, err = ParseEscape(wy.Escape); err != nil {
				return nil, err
			}
		}
		f.Writes = append(f.Writes, w)
	}

	for _, ty := range fy.Traces {
		tr, err := ty.build()
		if err != nil {
			return nil, fmt.Errorf("trace of %s: %w", ty.Method, err)
		}
		f.Traces = append(f.Traces, tr)
	}

	return f, nil
}

// build replays the lock events of the trace to compute the held locks of
// every event.
func (ty *TraceYAML) build() (Trace, error) {
	tr := Trace{Method: ty.Method}
	var held []string

	for _, ay := range ty.Events {
		kind, err := ParseAccessKind(ay.Kind)
		if err != nil {
			return tr, err
		}

		a := Access{
			Kind: kind,
			Lock: ay.Lock,
			Site: ay.Site,
			Held: append([]string(nil), held...),
		}
		tr.Events = append(tr.Events, a)

		switch kind {
		case Lock:
			held = append(held, ay.Lock)
		case Unlock:
			for i := len(held) - 1; i >= 0; i-- {
				if held[i] == ay.Lock {
					held = append(held[:i:i], held[i+1:]...)
					break
				}
			}
		}
	}

	return tr, nil
}
