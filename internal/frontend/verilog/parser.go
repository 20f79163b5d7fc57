package verilog

import (
	"context"
	"fmt"

	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

type parser struct {
	path string
	s    *lexer.Stream
	out  *hdlobjects.Context
}

// Verilog keywords are case-sensitive, so matching is exact.
func is(t lexer.Token, text string) bool {
	return (t.Kind == lexer.Ident || t.Kind == lexer.Punct) && t.Text == text
}

func (p *parser) accept(text string) bool {
	if is(p.s.Peek(0), text) {
		p.s.Next()
		return true
	}
	return false
}

func (p *parser) errorf(t lexer.Token, format string, args ...any) error {
	return &frontend.SyntaxError{Path: p.path, Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(text string) (lexer.Token, error) {
	t := p.s.Peek(0)
	if !is(t, text) {
		return t, p.errorf(t, "expected %q, found %s", text, t)
	}
	return p.s.Next(), nil
}

func (p *parser) ident(what string) (lexer.Token, error) {
	t := p.s.Peek(0)
	if t.Kind != lexer.Ident || keywords[t.Text] {
		return t, p.errorf(t, "expected %s, found %s", what, t)
	}
	return p.s.Next(), nil
}

func pos(t lexer.Token) hdlobjects.Position {
	return hdlobjects.Position{Line: t.Line, Col: t.Col}
}

// design elements skipped whole, keyed by their opening keyword.
var skippedElements = map[string]string{
	"primitive": "endprimitive",
	"package":   "endpackage",
	"interface": "endinterface",
	"program":   "endprogram",
	"class":     "endclass",
	"config":    "endconfig",
	"checker":   "endchecker",
	"function":  "endfunction",
	"task":      "endtask",
}

func (p *parser) parseFile(ctx context.Context) error {
	for !p.s.AtEOF() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := p.s.Peek(0)
		var err error
		switch {
		case is(t, "module"), is(t, "macromodule"):
			err = p.parseModule()
		case is(t, ";"):
			p.s.Next()
		case t.Kind == lexer.Ident && skippedElements[t.Text] != "":
			err = p.skipThrough(skippedElements[t.Text])
		case is(t, "import"), is(t, "typedef"), is(t, "parameter"), is(t, "localparam"), is(t, "timeunit"), is(t, "timeprecision"):
			err = p.skipPast(";")
		default:
			err = p.errorf(t, "unexpected %s outside module", t)
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
			case "(", "[", "{":
				depth++
				continue
			case ")", "]", "}":
				depth--
				continue
			}
		}
		if depth <= 0 && is(t, text) {
			return nil
		}
	}
}

// skipThrough consumes tokens through the keyword closer and an optional
// ": label".
func (p *parser) skipThrough(closer string) error {
	start := p.s.Peek(0)
	for {
		t := p.s.Next()
		if t.Kind == lexer.EOF {
			return p.errorf(start, "missing %q", closer)
		}
		if is(t, closer) {
			p.skipEndLabel()
			return nil
		}
	}
}

func (p *parser) skipEndLabel() {
	if is(p.s.Peek(0), ":") && p.s.Peek(1).Kind == lexer.Ident {
		p.s.Next()
		p.s.Next()
	}
}
