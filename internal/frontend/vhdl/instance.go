package vhdl

import (
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// parseInstance parses a component instantiation statement after its label:
//
//	[component] name | entity [lib.]name [(arch)] | configuration name
//	[generic map (...)] [port map (...)] ;
func (p *parser) parseInstance(arch *hdlobjects.Arch, label lexer.Token) error {
	kind := hdlobjects.InstanceComponent
	switch {
	case p.s.Accept("entity"):
		kind = hdlobjects.InstanceEntity
	case p.s.Accept("configuration"):
		kind = hdlobjects.InstanceConfiguration
	default:
		p.s.Accept("component")
	}

	segments, err := p.selectedName()
	if err != nil {
		return err
	}

	inst := hdlobjects.NewCompInstance(label.Text, segments[len(segments)-1])
	inst.Kind = kind
	inst.Pos = pos(label)
	if len(segments) > 1 && kind != hdlobjects.InstanceComponent {
		inst.Library = segments[0]
	}

	if kind == hdlobjects.InstanceEntity && p.s.Peek(0).Is("(") {
		open := p.s.Peek(0)
		inner, ok := p.s.SkipBalanced()
		if !ok || len(inner) != 1 || inner[0].Kind != lexer.Ident {
			return p.errorf(open, "malformed architecture identifier")
		}
		inst.ArchName = inner[0].Text
	}

	if p.s.Accept("generic") {
		if inst.GenericMap, err = p.associationList(); err != nil {
			return err
		}
	}
	if p.s.Accept("port") {
		if inst.PortMap, err = p.associationList(); err != nil {
			return err
		}
	}

	if t := p.s.Peek(0); !t.Is(";") {
		return p.errorf(t, "expected \";\" after instantiation of %q, found %s", label.Text, t)
	}
	p.s.Next()

	return arch.AddComponentInstance(inst)
}

func (p *parser) selectedName() ([]string, error) {
	first, err := p.ident("unit name")
	if err != nil {
		return nil, err
	}
	segments := []string{first.Text}
	for p.s.Peek(0).Is(".") {
		p.s.Next()
		seg, err := p.ident("unit name")
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg.Text)
	}
	return segments, nil
}

// associationList parses "map ( assoc {, assoc} )" after generic or port.
func (p *parser) associationList() ([]hdlobjects.Association, error) {
	if _, err := p.expect("map"); err != nil {
		return nil, err
	}
	open := p.s.Peek(0)
	if !open.Is("(") {
		return nil, p.errorf(open, "expected \"(\", found %s", open)
	}
	inner, ok := p.s.SkipBalanced()
	if !ok {
		return nil, p.errorf(open, "unclosed association list")
	}
	if len(inner) == 0 {
		return nil, nil
	}

	var assocs []hdlobjects.Association
	for _, part := range lexer.Split(inner, ",") {
		if len(part) == 0 {
			return nil, p.errorf(open, "empty association")
		}
		var a hdlobjects.Association
		actual := part
		if arrow := lexer.Index(part, "=>"); arrow >= 0 {
			if arrow == 0 || arrow == len(part)-1 {
				return nil, p.errorf(part[arrow], "incomplete named association")
			}
			a.Formal = lexer.Join(part[:arrow])
			actual = part[arrow+1:]
		}
		if !(len(actual) == 1 && actual[0].Is("open")) {
			a.Actual = hdlobjects.RawExpr(lexer.Join(actual))
		}
		assocs = append(assocs, a)
	}
	return assocs, nil
}
