package verilog

import (
	"slices"
	"strings"

	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// looksLikeInstance reports whether the stream starts
// "type #(...)" or "type name (" / "type name [".
func (p *parser) looksLikeInstance() bool {
	t := p.s.Peek(0)
	if t.Kind != lexer.Ident || keywords[t.Text] || strings.HasPrefix(t.Text, "$") || strings.HasPrefix(t.Text, "`") {
		return false
	}
	next := p.s.Peek(1)
	if is(next, "#") {
		return true
	}
	after := p.s.Peek(2)
	return next.Kind == lexer.Ident && !keywords[next.Text] && (is(after, "(") || is(after, "["))
}

// parseInstances parses
//
//	type [#(params)] name [range] (conns) {, name [range] (conns)} ;
//
// A statement that turns out not to be an instantiation, such as a
// declaration with a user-defined type, is skipped.
func (p *parser) parseInstances(arch *hdlobjects.Arch) error {
	mark := p.s.Mark()
	typ := p.s.Next()

	var params []hdlobjects.Association
	if p.accept("#") {
		open := p.s.Peek(0)
		if is(open, "(") {
			inner, ok := p.s.SkipBalanced()
			if !ok {
				return p.errorf(open, "unclosed parameter value list")
			}
			var err error
			if params, err = p.connections(inner); err != nil {
				return err
			}
		} else {
			// #8 single delay/parameter value
			v := p.s.Next()
			params = []hdlobjects.Association{{Actual: hdlobjects.RawExpr(v.Text)}}
		}
	}

	var insts []*hdlobjects.CompInstance
	for {
		name := p.s.Peek(0)
		if name.Kind != lexer.Ident || keywords[name.Text] {
			if len(insts) == 0 {
				p.s.Reset(mark)
				return p.skipPast(";")
			}
			return p.errorf(name, "expected instance name, found %s", name)
		}
		p.s.Next()

		if open := p.s.Peek(0); is(open, "[") {
			if _, ok := p.s.SkipBalanced(); !ok {
				return p.errorf(open, "unclosed instance array range")
			}
		}

		open := p.s.Peek(0)
		if !is(open, "(") {
			if len(insts) == 0 {
				p.s.Reset(mark)
				return p.skipPast(";")
			}
			return p.errorf(open, "expected \"(\" after instance %q, found %s", name.Text, open)
		}
		inner, ok := p.s.SkipBalanced()
		if !ok {
			return p.errorf(open, "unclosed port connection list of %q", name.Text)
		}
		conns, err := p.connections(inner)
		if err != nil {
			return err
		}

		inst := hdlobjects.NewCompInstance(name.Text, typ.Text)
		inst.Kind = hdlobjects.InstanceModule
		inst.GenericMap = slices.Clone(params)
		inst.PortMap = conns
		inst.Pos = pos(typ)
		insts = append(insts, inst)

		if !p.accept(",") {
			break
		}
	}

	if t := p.s.Peek(0); !is(t, ";") {
		return p.errorf(t, "expected \";\" after instantiation of %q, found %s", typ.Text, t)
	}
	p.s.Next()

	for _, inst := range insts {
		if err := arch.AddComponentInstance(inst); err != nil {
			return err
		}
	}
	return nil
}

// connections parses ordered (a, b) or named (.a(x), .b, .*) lists.
func (p *parser) connections(inner []lexer.Token) ([]hdlobjects.Association, error) {
	if len(inner) == 0 {
		return nil, nil
	}
	var out []hdlobjects.Association
	for _, part := range lexer.Split(inner, ",") {
		if len(part) == 0 {
			// unconnected ordered port: (a, , b)
			out = append(out, hdlobjects.Association{})
			continue
		}
		if !is(part[0], ".") {
			out = append(out, hdlobjects.Association{Actual: hdlobjects.RawExpr(lexer.Join(part))})
			continue
		}

		if len(part) == 2 && is(part[1], "*") {
			out = append(out, hdlobjects.Association{Formal: "*", Actual: hdlobjects.RawExpr("*")})
			continue
		}
		if len(part) < 2 || part[1].Kind != lexer.Ident {
			return nil, p.errorf(part[0], "malformed named connection")
		}
		formal := part[1]
		rest := part[2:]
		switch {
		case len(rest) == 0:
			// .a is shorthand for .a(a)
			out = append(out, hdlobjects.Association{Formal: formal.Text, Actual: hdlobjects.RawExpr(formal.Text)})
		case is(rest[0], "(") && is(rest[len(rest)-1], ")"):
			a := hdlobjects.Association{Formal: formal.Text}
			if expr := rest[1 : len(rest)-1]; len(expr) > 0 {
				a.Actual = hdlobjects.RawExpr(lexer.Join(expr))
			}
			out = append(out, a)
		default:
			return nil, p.errorf(formal, "malformed connection of %q", formal.Text)
		}
	}
	return out, nil
}
