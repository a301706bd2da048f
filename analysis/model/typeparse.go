package model

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/immut/analysis/defs"
)

var primitiveNames = map[string]bool{
	"primitive": true,
	"bool":      true,
	"boolean":   true,
	"byte":      true,
	"char":      true,
	"short":     true,
	"int":       true,
	"long":      true,
	"float":     true,
	"double":    true,
	"string":    true,
}

// ParseType parses a type expression of a fixture program:
//
//	int, string, ...   primitive
//	unknown            unknown
//	[]E                array of E
//	T                  type parameter T, if T is in scope
//	C, G[A, B]         class types
func ParseType(expr string, inScope func(param string) bool) (defs.TypeRef, error) {
	p := &typeParser{src: expr, inScope: inScope}
	t, err := p.parse()
	if err != nil {
		return t, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return t, fmt.Errorf("unexpected %q at offset %d in type %q", p.src[p.pos:], p.pos, expr)
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	inScope func(string) bool
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("[], ", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parse() (defs.TypeRef, error) {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], "[]") {
		p.pos += 2
		elem, err := p.parse()
		if err != nil {
			return elem, err
		}
		return defs.ArrayOf(elem), nil
	}

	name := p.ident()
	switch {
	case name == "":
		return defs.Unknown(), fmt.Errorf("missing type name at offset %d in %q", p.pos, p.src)
	case primitiveNames[name]:
		return defs.Primitive(), nil
	case name == "unknown":
		return defs.Unknown(), nil
	case p.inScope != nil && p.inScope(name):
		return defs.Param(name), nil
	}

	t := defs.ClassRef(defs.ClassID(name))
	if p.pos < len(p.src) && p.src[p.pos] == '[' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return t, err
			}
			t.Args = append(t.Args, arg)

			p.skipSpace()
			if p.pos >= len(p.src) {
				return t, fmt.Errorf("unterminated type arguments in %q", p.src)
			}
			if p.src[p.pos] == ']' {
				p.pos++
				break
			}
			if p.src[p.pos] != ',' {
				return t, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos], p.pos, p.src)
			}
			p.pos++
		}
	}
	return t, nil
}
