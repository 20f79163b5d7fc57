// Package verilog is a structural Verilog/SystemVerilog frontend. Each
// module becomes an entity holding its header and an architecture of the
// same name holding its instantiations.
package verilog

import (
	"context"
	"errors"

	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// Language is the identifier used in contexts and the registry.
const Language = "verilog"

// Frontend parses .v and .sv files.
type Frontend struct{}

// New returns a Verilog frontend.
func New() *Frontend {
	return &Frontend{}
}

func (*Frontend) Language() string { return Language }

func (*Frontend) Extensions() []string { return []string{".v", ".sv", ".vh", ".svh"} }

// Parse builds the design file context for src.
func (f *Frontend) Parse(ctx context.Context, path string, src []byte) (*hdlobjects.Context, error) {
	toks, err := lexer.Tokenize(src, lexer.Verilog)
	if err != nil {
		var lexErr *lexer.Error
		if errors.As(err, &lexErr) {
			return nil, &frontend.SyntaxError{Path: path, Line: lexErr.Line, Col: lexErr.Col, Msg: lexErr.Msg}
		}
		return nil, err
	}

	p := &parser{
		path: path,
		s:    lexer.NewStream(toks),
		out:  hdlobjects.NewContext(path, Language),
	}
	if err := p.parseFile(ctx); err != nil {
		return nil, err
	}
	return p.out, nil
}
