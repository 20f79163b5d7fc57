package verilog

import (
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

func (p *parser) parseModule() error {
	kw := p.s.Next()
	if !p.accept("automatic") {
		p.accept("static")
	}
	name, err := p.ident("module name")
	if err != nil {
		return err
	}

	ent := hdlobjects.NewEntity(name.Text)
	ent.Pos = pos(kw)
	arch := hdlobjects.NewArch(name.Text, name.Text)
	arch.Pos = pos(kw)

	for is(p.s.Peek(0), "import") {
		if err := p.skipPast(";"); err != nil {
			return err
		}
	}

	if p.accept("#") {
		open := p.s.Peek(0)
		if !is(open, "(") {
			return p.errorf(open, "expected \"(\" after \"#\", found %s", open)
		}
		inner, ok := p.s.SkipBalanced()
		if !ok {
			return p.errorf(open, "unclosed parameter port list")
		}
		ent.Generics = append(ent.Generics, parameterList(inner, true)...)
	}

	if open := p.s.Peek(0); is(open, "(") {
		inner, ok := p.s.SkipBalanced()
		if !ok {
			return p.errorf(open, "unclosed port list")
		}
		ports, err := p.portList(inner)
		if err != nil {
			return err
		}
		ent.Ports = ports
	}
	if _, err := p.expect(";"); err != nil {
		return err
	}

	if err := p.parseBody(ent, arch); err != nil {
		return err
	}

	if err := p.out.AddEntity(ent); err != nil {
		return err
	}
	return p.out.AddArchitecture(arch)
}

// parameterList reads "parameter [type] NAME = value, ..." declarations. In a
// header list every entry is a parameter unless marked localparam.
func parameterList(toks []lexer.Token, header bool) []hdlobjects.Generic {
	var out []hdlobjects.Generic
	local := !header
	typ := ""
	for _, part := range lexer.Split(toks, ",") {
		if len(part) == 0 {
			continue
		}
		hasKeyword := false
		switch {
		case is(part[0], "parameter"):
			local, hasKeyword = false, true
			part = part[1:]
		case is(part[0], "localparam"):
			local, hasKeyword = true, true
			part = part[1:]
		}

		var def []lexer.Token
		if eq := lexer.Index(part, "="); eq >= 0 {
			def = part[eq+1:]
			part = part[:eq]
		}
		ni := lastName(part)
		if ni < 0 {
			continue
		}
		if hasKeyword || ni > 0 {
			typ = lexer.Join(part[:ni])
		}
		if local {
			continue
		}
		out = append(out, hdlobjects.Generic{
			Name:    part[ni].Text,
			Type:    typ,
			Default: lexer.Join(def),
		})
	}
	return out
}

// lastName returns the index of the last top-level identifier in toks, the
// declared name in "type [dims] name [dims]".
func lastName(toks []lexer.Token) int {
	depth := 0
	found := -1
	for i, t := range toks {
		if t.Kind == lexer.Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
			continue
		}
		if depth == 0 && t.Kind == lexer.Ident && !keywords[t.Text] {
			found = i
		}
	}
	return found
}

// portList parses the header port list in ANSI or non-ANSI style.
func (p *parser) portList(inner []lexer.Token) ([]hdlobjects.Port, error) {
	if len(inner) == 0 {
		return nil, nil
	}
	parts := lexer.Split(inner, ",")

	ansi := false
	for _, part := range parts {
		if len(part) > 0 && (directions[part[0].Text] || len(part) > 1 && !is(part[0], ".")) {
			ansi = true
			break
		}
	}

	var ports []hdlobjects.Port
	var dir hdlobjects.Direction
	typ := ""
	for _, part := range parts {
		if len(part) == 0 {
			return nil, p.errorf(inner[0], "empty port declaration")
		}
		if !ansi {
			// .ext(int) port expressions name the external port.
			name := part[0]
			if is(name, ".") && len(part) > 1 {
				name = part[1]
			}
			if name.Kind != lexer.Ident {
				return nil, p.errorf(name, "expected port name, found %s", name)
			}
			ports = append(ports, hdlobjects.Port{Name: name.Text})
			continue
		}

		if directions[part[0].Text] {
			dir = portModes[part[0].Text]
			part = part[1:]
			typ = ""
		}
		if eq := lexer.Index(part, "="); eq >= 0 {
			part = part[:eq]
		}
		ni := lastName(part)
		if ni < 0 {
			return nil, p.errorf(part[0], "expected port name")
		}
		if ni > 0 {
			typ = lexer.Join(part[:ni])
		}
		ports = append(ports, hdlobjects.Port{Name: part[ni].Text, Direction: dir, Type: typ})
	}
	return ports, nil
}

// portDeclaration handles a body-level "input [type] a, b;" and records the
// direction and type of the named ports.
func (p *parser) portDeclaration(ent *hdlobjects.Entity) error {
	dirTok := p.s.Next()
	mark := p.s.Mark()
	if err := p.skipPast(";"); err != nil {
		return err
	}
	chunk := p.s.Slice(mark)
	chunk = chunk[:len(chunk)-1]

	typ := ""
	for i, part := range lexer.Split(chunk, ",") {
		if eq := lexer.Index(part, "="); eq >= 0 {
			part = part[:eq]
		}
		ni := lastName(part)
		if ni < 0 {
			return p.errorf(dirTok, "expected port name in %s declaration", dirTok.Text)
		}
		if i == 0 || ni > 0 {
			typ = lexer.Join(part[:ni])
		}
		port := hdlobjects.Port{Name: part[ni].Text, Direction: portModes[dirTok.Text], Type: typ}

		found := false
		for j := range ent.Ports {
			if ent.Ports[j].Name == port.Name {
				ent.Ports[j] = port
				found = true
				break
			}
		}
		if !found {
			ent.Ports = append(ent.Ports, port)
		}
	}
	return nil
}

func (p *parser) parseBody(ent *hdlobjects.Entity, arch *hdlobjects.Arch) error {
	for {
		t := p.s.Peek(0)
		switch {
		case t.Kind == lexer.EOF:
			return p.errorf(t, "missing \"endmodule\" for module %q", ent.Name())

		case is(t, "endmodule"):
			p.s.Next()
			p.skipEndLabel()
			return nil

		case t.Kind == lexer.Ident && directions[t.Text]:
			if err := p.portDeclaration(ent); err != nil {
				return err
			}

		case is(t, "parameter"):
			p.s.Next()
			mark := p.s.Mark()
			if err := p.skipPast(";"); err != nil {
				return err
			}
			chunk := p.s.Slice(mark)
			ent.Generics = append(ent.Generics, parameterList(chunk[:len(chunk)-1], true)...)

		case t.Kind == lexer.Ident && procedural[t.Text]:
			p.s.Next()
			if err := p.skipStatement(); err != nil {
				return err
			}

		case t.Kind == lexer.Ident && skippedElements[t.Text] != "":
			if err := p.skipThrough(skippedElements[t.Text]); err != nil {
				return err
			}

		case is(t, "specify"):
			if err := p.skipThrough("endspecify"); err != nil {
				return err
			}

		case is(t, "generate"), is(t, "endgenerate"), is(t, "else"), is(t, "endcase"), is(t, ";"):
			p.s.Next()

		case is(t, "begin"), is(t, "end"):
			p.s.Next()
			p.skipEndLabel()

		case is(t, "for"), is(t, "if"), is(t, "case"):
			// generate constructs: only the header is consumed, the body
			// items are walked by this loop.
			p.s.Next()
			if open := p.s.Peek(0); is(open, "(") {
				if _, ok := p.s.SkipBalanced(); !ok {
					return p.errorf(open, "unclosed %s condition", t.Text)
				}
			}

		case is(t, "default") && is(p.s.Peek(1), ":"):
			p.s.Next()
			p.s.Next()

		case (t.Kind == lexer.Number || t.Kind == lexer.Ident && !keywords[t.Text]) && is(p.s.Peek(1), ":"):
			// generate case item or labelled generate block
			p.s.Next()
			p.s.Next()

		case t.Kind == lexer.Ident && gates[t.Text]:
			if err := p.skipPast(";"); err != nil {
				return err
			}

		case p.looksLikeInstance():
			if err := p.parseInstances(arch); err != nil {
				return err
			}

		default:
			if err := p.skipPast(";"); err != nil {
				return err
			}
		}
	}
}

// skipStatement skips one procedural statement, including nested blocks
// and a trailing else branch.
func (p *parser) skipStatement() error {
	start := p.s.Peek(0)
	depth := 0
	for {
		t := p.s.Peek(0)
		if t.Kind == lexer.EOF {
			return p.errorf(start, "unterminated procedural statement")
		}
		if t.Kind == lexer.Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{") {
			if _, ok := p.s.SkipBalanced(); !ok {
				return p.errorf(t, "unbalanced %q", t.Text)
			}
			continue
		}
		p.s.Next()

		closed := false
		switch {
		case is(t, "begin"), is(t, "fork"), is(t, "case"), is(t, "casex"), is(t, "casez"), is(t, "randcase"):
			depth++
		case is(t, "end"), is(t, "join"), is(t, "join_any"), is(t, "join_none"), is(t, "endcase"):
			depth--
			p.skipEndLabel()
			closed = depth <= 0
		case is(t, ";"):
			closed = depth <= 0
		}
		if closed {
			if p.accept("else") {
				depth = 0
				continue
			}
			return nil
		}
	}
}
