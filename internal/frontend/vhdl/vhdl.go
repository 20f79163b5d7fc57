// Package vhdl is a structural VHDL frontend. It recognizes design units,
// entity interfaces and component instantiations; everything else in the
// file is skipped by statement.
package vhdl

import (
	"context"
	"errors"

	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// Language is the identifier used in contexts and the registry.
const Language = "vhdl"

// Frontend parses .vhd and .vhdl files.
type Frontend struct{}

// New returns a VHDL frontend.
func New() *Frontend {
	return &Frontend{}
}

func (*Frontend) Language() string { return Language }

func (*Frontend) Extensions() []string { return []string{".vhd", ".vhdl"} }

// Parse builds the design file context for src.
func (f *Frontend) Parse(ctx context.Context, path string, src []byte) (*hdlobjects.Context, error) {
	toks, err := lexer.Tokenize(src, lexer.VHDL)
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
