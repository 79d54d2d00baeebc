package schema

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/borsh/errors"
)

var primitives = map[string]wit.Type{
	"bool":   wit.Bool{},
	"u8":     wit.U8{},
	"s8":     wit.S8{},
	"u16":    wit.U16{},
	"s16":    wit.S16{},
	"u32":    wit.U32{},
	"s32":    wit.S32{},
	"u64":    wit.U64{},
	"s64":    wit.S64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// exprParser reads WIT-style type expressions such as
// list<tuple<string, u32>> or result<_, error-code>.
type exprParser struct {
	src  string
	pos  int
	name func(string) (wit.Type, error)
}

func parseExpr(src string, name func(string) (wit.Type, error)) (wit.Type, error) {
	p := &exprParser{src: src, name: name}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

func (p *exprParser) fail(format string, args ...any) error {
	return errors.ParseFailed("type expression", fmt.Errorf("%q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...)))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (p *exprParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		if p.pos == len(p.src) {
			return "", p.fail("type name expected")
		}
		return "", p.fail("unexpected %q", p.src[p.pos])
	}
	return p.src[start:p.pos], nil
}

func (p *exprParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *exprParser) expect(c byte) error {
	if !p.peek(c) {
		return p.fail("expected %q", c)
	}
	p.pos++
	return nil
}

// params parses a bracketed, comma separated parameter list. A lone "_"
// stands for an absent type and yields nil.
func (p *exprParser) params() ([]wit.Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []wit.Type
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '_' && (p.pos+1 == len(p.src) || !isIdentByte(p.src[p.pos+1])) {
			p.pos++
			out = append(out, nil)
		} else {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		if p.peek(',') {
			p.pos++
			continue
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *exprParser) parseType() (wit.Type, error) {
	id, err := p.ident()
	if err != nil {
		return nil, err
	}
	switch id {
	case "list", "option", "tuple":
		args, err := p.params()
		if err != nil {
			return nil, err
		}
		for _, a := range args {
			if a == nil {
				return nil, p.fail("%s parameters cannot be omitted", id)
			}
		}
		switch id {
		case "list":
			if len(args) != 1 {
				return nil, p.fail("list takes one parameter")
			}
			return &wit.TypeDef{Kind: &wit.List{Type: args[0]}}, nil
		case "option":
			if len(args) != 1 {
				return nil, p.fail("option takes one parameter")
			}
			return &wit.TypeDef{Kind: &wit.Option{Type: args[0]}}, nil
		default:
			return &wit.TypeDef{Kind: &wit.Tuple{Types: args}}, nil
		}
	case "result":
		r := &wit.Result{}
		if p.peek('<') {
			args, err := p.params()
			if err != nil {
				return nil, err
			}
			switch len(args) {
			case 1:
				r.OK = args[0]
			case 2:
				r.OK, r.Err = args[0], args[1]
			default:
				return nil, p.fail("result takes at most two parameters")
			}
		}
		return &wit.TypeDef{Kind: r}, nil
	}
	if t, ok := primitives[id]; ok {
		return t, nil
	}
	if p.name == nil {
		return nil, errors.NotFound(errors.PhaseParse, "type", id)
	}
	return p.name(id)
}
