package vhdl

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

type parser struct {
	path string
	s    *lexer.Stream
	out  *hdlobjects.Context
}

// closers of sequential compound statements: "end if;", "end case;", "end loop;".
var sequentialClosers = []string{"if", "case", "loop"}

// reserved words that can follow a label and are not a unit name.
var reserved = map[string]bool{
	"process": true, "postponed": true, "block": true, "for": true, "if": true,
	"case": true, "assert": true, "with": true, "entity": true, "component": true,
	"configuration": true, "end": true, "begin": true, "generate": true,
	"when": true, "else": true, "elsif": true, "select": true, "open": true,
}

func (p *parser) errorf(t lexer.Token, format string, args ...any) error {
	return &frontend.SyntaxError{Path: p.path, Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(text string) (lexer.Token, error) {
	t := p.s.Peek(0)
	if !t.Is(text) {
		return t, p.errorf(t, "expected %q, found %s", text, t)
	}
	return p.s.Next(), nil
}

func (p *parser) ident(what string) (lexer.Token, error) {
	t := p.s.Peek(0)
	if t.Kind != lexer.Ident {
		return t, p.errorf(t, "expected %s, found %s", what, t)
	}
	return p.s.Next(), nil
}

func pos(t lexer.Token) hdlobjects.Position {
	return hdlobjects.Position{Line: t.Line, Col: t.Col}
}

func isAny(t lexer.Token, words []string) bool {
	for _, w := range words {
		if t.Is(w) {
			return true
		}
	}
	return false
}

func (p *parser) parseFile(ctx context.Context) error {
	for !p.s.AtEOF() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := p.s.Peek(0)
		var err error
		switch {
		case t.Is("library"), t.Is("use"):
			err = p.skipPast(";")
		case t.Is("context"):
			if p.s.Peek(2).Is("is") {
				err = p.skipUntilEnd()
			} else {
				err = p.skipPast(";")
			}
		case t.Is("entity"):
			err = p.parseEntity()
		case t.Is("architecture"):
			err = p.parseArchitecture()
		case t.Is("package"):
			err = p.skipPackage()
		case t.Is("configuration"):
			err = p.skipUntilEnd("for")
		default:
			err = p.errorf(t, "unexpected %s at design unit level", t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// skipPast consumes tokens through the next top-level text.
func (p *parser) skipPast(text string) error {
	depth := 0
	for {
		t := p.s.Next()
		if t.Kind == lexer.EOF {
			return p.errorf(t, "unexpected end of file, expected %q", text)
		}
		if t.Kind == lexer.Punct {
			switch t.Text {
			case "(", "[":
				depth++
				continue
			case ")", "]":
				depth--
				continue
			}
		}
		if depth <= 0 && t.Is(text) {
			return nil
		}
	}
}

// skipUntilEnd skips ';'-terminated chunks until one starts with "end" not
// followed by one of nested, and consumes that closing chunk.
func (p *parser) skipUntilEnd(nested ...string) error {
	for {
		t := p.s.Peek(0)
		if t.Kind == lexer.EOF {
			return p.errorf(t, "unexpected end of file, expected \"end\"")
		}
		atEnd := t.Is("end") && !isAny(p.s.Peek(1), nested)
		if err := p.skipPast(";"); err != nil {
			return err
		}
		if atEnd {
			return nil
		}
	}
}

func (p *parser) parseEntity() error {
	kw := p.s.Next()
	name, err := p.ident("entity name")
	if err != nil {
		return err
	}
	if _, err := p.expect("is"); err != nil {
		return err
	}

	ent := hdlobjects.NewEntity(name.Text)
	ent.Pos = pos(kw)

	if p.s.Accept("generic") {
		decls, err := p.interfaceList()
		if err != nil {
			return err
		}
		for _, d := range decls {
			for _, n := range d.names {
				ent.Generics = append(ent.Generics, hdlobjects.Generic{Name: n, Type: d.typ, Default: d.def})
			}
		}
	}
	if p.s.Accept("port") {
		decls, err := p.interfaceList()
		if err != nil {
			return err
		}
		for _, d := range decls {
			for _, n := range d.names {
				ent.Ports = append(ent.Ports, hdlobjects.Port{Name: n, Direction: d.mode, Type: d.typ})
			}
		}
	}

	if err := p.skipDeclarations(); err != nil {
		return err
	}
	if p.s.Accept("begin") {
		// Passive statements only.
		if err := p.skipUntilEnd("process", "if", "case", "loop"); err != nil {
			return err
		}
	} else if err := p.skipPast(";"); err != nil {
		return err
	}
	return p.out.AddEntity(ent)
}

type interfaceDecl struct {
	names []string
	mode  hdlobjects.Direction
	typ   string
	def   string
}

var modes = map[string]hdlobjects.Direction{
	"in":      hdlobjects.DirIn,
	"out":     hdlobjects.DirOut,
	"inout":   hdlobjects.DirInout,
	"buffer":  hdlobjects.DirBuffer,
	"linkage": hdlobjects.DirLinkage,
}

// interfaceList parses "( decl ; decl ... ) ;" after generic or port.
func (p *parser) interfaceList() ([]interfaceDecl, error) {
	open := p.s.Peek(0)
	if !open.Is("(") {
		return nil, p.errorf(open, "expected \"(\", found %s", open)
	}
	inner, ok := p.s.SkipBalanced()
	if !ok {
		return nil, p.errorf(open, "unclosed interface list")
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	var decls []interfaceDecl
	for _, part := range lexer.Split(inner, ";") {
		if len(part) == 0 {
			continue
		}
		d, err := p.interfaceDecl(part)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func (p *parser) interfaceDecl(part []lexer.Token) (interfaceDecl, error) {
	d := interfaceDecl{mode: hdlobjects.DirIn}

	// VHDL-2008 generic types and subprograms.
	if first := part[0]; first.Is("type") || first.Is("function") || first.Is("procedure") ||
		first.Is("package") || first.Is("pure") || first.Is("impure") {
		kind := part[0]
		rest := part[1:]
		if kind.Is("pure") || kind.Is("impure") {
			if len(rest) == 0 {
				return d, p.errorf(kind, "incomplete generic subprogram")
			}
			kind, rest = rest[0], rest[1:]
		}
		if len(rest) == 0 || rest[0].Kind != lexer.Ident {
			return d, p.errorf(kind, "expected name after %s", kind)
		}
		d.names = []string{rest[0].Text}
		d.typ = strings.ToLower(kind.Text)
		return d, nil
	}

	switch {
	case part[0].Is("signal"), part[0].Is("constant"), part[0].Is("variable"), part[0].Is("file"):
		part = part[1:]
	}

	colon := lexer.Index(part, ":")
	if colon < 0 {
		return d, p.errorf(part[0], "expected ':' in interface declaration")
	}
	for _, n := range lexer.Split(part[:colon], ",") {
		if len(n) != 1 || n[0].Kind != lexer.Ident {
			return d, p.errorf(part[0], "malformed identifier list")
		}
		d.names = append(d.names, n[0].Text)
	}

	rest := part[colon+1:]
	if len(rest) > 0 {
		if m, ok := modes[strings.ToLower(rest[0].Text)]; ok && rest[0].Kind == lexer.Ident {
			d.mode = m
			rest = rest[1:]
		}
	}
	if assign := lexer.Index(rest, ":="); assign >= 0 {
		d.def = lexer.Join(rest[assign+1:])
		rest = rest[:assign]
	}
	if len(rest) > 0 && rest[len(rest)-1].Is("bus") {
		rest = rest[:len(rest)-1]
	}
	d.typ = lexer.Join(rest)
	return d, nil
}

func (p *parser) parseArchitecture() error {
	kw := p.s.Next()
	name, err := p.ident("architecture name")
	if err != nil {
		return err
	}
	if _, err := p.expect("of"); err != nil {
		return err
	}
	entity, err := p.ident("entity name")
	if err != nil {
		return err
	}
	if _, err := p.expect("is"); err != nil {
		return err
	}

	arch := hdlobjects.NewArch(name.Text, entity.Text)
	arch.Pos = pos(kw)

	if err := p.skipDeclarations(); err != nil {
		return err
	}
	if _, err := p.expect("begin"); err != nil {
		return err
	}
	if err := p.parseConcurrent(arch, false); err != nil {
		return err
	}
	// end [architecture] [name] ;
	if err := p.skipPast(";"); err != nil {
		return err
	}
	return p.out.AddArchitecture(arch)
}

func (p *parser) skipPackage() error {
	p.s.Next()
	p.s.Accept("body")
	if _, err := p.ident("package name"); err != nil {
		return err
	}
	if _, err := p.expect("is"); err != nil {
		return err
	}
	if p.s.Accept("new") {
		return p.skipPast(";")
	}
	if err := p.skipDeclarations(); err != nil {
		return err
	}
	if _, err := p.expect("end"); err != nil {
		return err
	}
	return p.skipPast(";")
}

func lowerText(t lexer.Token) string {
	return strings.ToLower(t.Text)
}
