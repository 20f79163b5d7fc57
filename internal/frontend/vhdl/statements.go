package vhdl

import (
	"github.com/mvp-joe/hdlast/internal/frontend/lexer"
	"github.com/mvp-joe/hdlast/internal/hdlobjects"
)

// skipDeclarations skips a declarative part, stopping before "begin" or
// "end".
func (p *parser) skipDeclarations() error {
	for {
		t := p.s.Peek(0)
		if t.Kind == lexer.EOF {
			return p.errorf(t, "unexpected end of file in declarative part")
		}
		if t.Is("begin") || t.Is("end") {
			return nil
		}
		if err := p.skipDeclaration(); err != nil {
			return err
		}
	}
}

func (p *parser) skipDeclaration() error {
	t := p.s.Peek(0)
	switch {
	case t.Is("component"):
		return p.skipUntilEndOf("component")
	case t.Is("function"), t.Is("procedure"), t.Is("pure"), t.Is("impure"):
		return p.skipSubprogram()
	case t.Is("type"):
		return p.skipType()
	case t.Is("package"):
		return p.skipPackage()
	default:
		return p.skipPast(";")
	}
}

// skipUntilEndOf skips chunks through "end <keyword> [...] ;".
func (p *parser) skipUntilEndOf(keyword string) error {
	for {
		t := p.s.Peek(0)
		if t.Kind == lexer.EOF {
			return p.errorf(t, "unexpected end of file, expected \"end %s\"", keyword)
		}
		closing := t.Is("end") && p.s.Peek(1).Is(keyword)
		if err := p.skipPast(";"); err != nil {
			return err
		}
		if closing {
			return nil
		}
	}
}

func (p *parser) skipType() error {
	switch {
	case p.s.Peek(3).Is("record"):
		return p.skipUntilEndOf("record")
	case p.s.Peek(3).Is("protected"):
		for range 4 {
			p.s.Next()
		}
		p.s.Accept("body")
		if err := p.skipDeclarations(); err != nil {
			return err
		}
		if _, err := p.expect("end"); err != nil {
			return err
		}
		return p.skipPast(";")
	}

	mark := p.s.Mark()
	if err := p.skipPast(";"); err != nil {
		return err
	}
	// Physical types carry a units block.
	if lexer.Index(p.s.Slice(mark), "units") >= 0 {
		return p.skipUntilEndOf("units")
	}
	return nil
}

// skipSubprogram skips a subprogram declaration or body.
func (p *parser) skipSubprogram() error {
	start := p.s.Peek(0)
	for {
		t := p.s.Peek(0)
		switch {
		case t.Kind == lexer.EOF:
			return p.errorf(start, "unterminated subprogram")
		case t.Is("("):
			if _, ok := p.s.SkipBalanced(); !ok {
				return p.errorf(t, "unclosed parameter list")
			}
			continue
		case t.Is(";"):
			p.s.Next()
			return nil
		case t.Is("is"):
			p.s.Next()
			if p.s.Accept("new") {
				return p.skipPast(";")
			}
			if err := p.skipDeclarations(); err != nil {
				return err
			}
			if _, err := p.expect("begin"); err != nil {
				return err
			}
			return p.skipSequential()
		}
		p.s.Next()
	}
}

// skipSequential skips sequential statements and the "end ... ;" that
// closes the enclosing process or subprogram.
func (p *parser) skipSequential() error {
	return p.skipUntilEnd(sequentialClosers...)
}

// parseConcurrent walks concurrent statements until the "end" closing the
// enclosing architecture, block or generate, which is left unconsumed.
// Instances found at any depth are added to arch.
func (p *parser) parseConcurrent(arch *hdlobjects.Arch, inGenerate bool) error {
	for {
		t := p.s.Peek(0)
		switch {
		case t.Kind == lexer.EOF:
			return p.errorf(t, "unexpected end of file in statement part")

		case t.Is("end"):
			if !inGenerate || p.s.Peek(1).Is("generate") {
				return nil
			}
			// end of a VHDL-2008 generate alternative
			if err := p.skipPast(";"); err != nil {
				return err
			}
			continue

		case inGenerate && t.Is("begin"):
			p.s.Next()
			continue

		case inGenerate && (t.Is("elsif") || t.Is("else")):
			if err := p.skipPast("generate"); err != nil {
				return err
			}
			continue

		case inGenerate && t.Is("when"):
			if err := p.skipPast("=>"); err != nil {
				return err
			}
			continue

		case isDeclarationStart(t):
			if err := p.skipDeclaration(); err != nil {
				return err
			}
			continue
		}

		if err := p.concurrentStatement(arch); err != nil {
			return err
		}
	}
}

var declarationStarts = []string{
	"signal", "constant", "variable", "shared", "type", "subtype", "component",
	"function", "procedure", "pure", "impure", "attribute", "alias", "file",
	"use", "disconnect", "group",
}

func isDeclarationStart(t lexer.Token) bool {
	return t.Kind == lexer.Ident && isAny(t, declarationStarts)
}

func (p *parser) concurrentStatement(arch *hdlobjects.Arch) error {
	var label lexer.Token
	hasLabel := p.s.Peek(0).Kind == lexer.Ident && p.s.Peek(1).Is(":")
	if hasLabel {
		label = p.s.Next()
		p.s.Next()
	}

	t := p.s.Peek(0)
	switch {
	case t.Is("process"), t.Is("postponed") && p.s.Peek(1).Is("process"):
		return p.skipProcess()

	case hasLabel && t.Is("block"):
		return p.parseBlock(arch)

	case hasLabel && (t.Is("for") || t.Is("if") || t.Is("case")):
		if err := p.skipPast("generate"); err != nil {
			return err
		}
		if err := p.parseConcurrent(arch, true); err != nil {
			return err
		}
		return p.skipPast(";")

	case hasLabel && (t.Is("entity") || t.Is("component") || t.Is("configuration")):
		return p.parseInstance(arch, label)

	case hasLabel && t.Kind == lexer.Ident && !reserved[lowerText(t)] && p.looksLikeInstance():
		return p.parseInstance(arch, label)
	}

	return p.skipPast(";")
}

// looksLikeInstance reports whether the stream holds "name{.name}" followed
// by a generic map, port map or ';'.
func (p *parser) looksLikeInstance() bool {
	i := 1
	for p.s.Peek(i).Is(".") && p.s.Peek(i+1).Kind == lexer.Ident {
		i += 2
	}
	next := p.s.Peek(i)
	return next.Is(";") ||
		(next.Is("generic") && p.s.Peek(i+1).Is("map")) ||
		(next.Is("port") && p.s.Peek(i+1).Is("map"))
}

func (p *parser) skipProcess() error {
	p.s.Accept("postponed")
	p.s.Next()
	if p.s.Peek(0).Is("(") {
		if _, ok := p.s.SkipBalanced(); !ok {
			return p.errorf(p.s.Peek(0), "unclosed sensitivity list")
		}
	}
	p.s.Accept("is")
	if err := p.skipDeclarations(); err != nil {
		return err
	}
	if _, err := p.expect("begin"); err != nil {
		return err
	}
	return p.skipSequential()
}

func (p *parser) parseBlock(arch *hdlobjects.Arch) error {
	p.s.Next()
	if p.s.Peek(0).Is("(") {
		if _, ok := p.s.SkipBalanced(); !ok {
			return p.errorf(p.s.Peek(0), "unclosed guard expression")
		}
	}
	p.s.Accept("is")
	// generic/port clauses and declarations of the block
	if err := p.skipDeclarations(); err != nil {
		return err
	}
	if _, err := p.expect("begin"); err != nil {
		return err
	}
	if err := p.parseConcurrent(arch, false); err != nil {
		return err
	}
	return p.skipPast(";")
}
