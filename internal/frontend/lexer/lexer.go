// Package lexer tokenizes VHDL and Verilog source for the structural
// frontends. It knows comments, literals, identifiers and punctuation; it
// does not know keywords.
package lexer

import (
	"fmt"
	"strings"
)

// Kind is the token class.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Char
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Char:
		return "character"
	case Punct:
		return "punctuation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexeme. Offset and End are byte offsets into the source.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Col    int
	Offset int
	End    int
}

// Is reports whether t is punctuation or an identifier spelled text,
// ignoring ASCII case.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && strings.EqualFold(t.Text, text)
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Text)
}

// Error is a lexical error.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Dialect selects the lexical rules of one language.
type Dialect struct {
	// LineComment starts a comment that runs to end of line.
	LineComment string
	// BlockComments enables /* ... */.
	BlockComments bool
	// BackslashEscapes enables C-style escapes in strings. Without it a
	// doubled quote is the only escape.
	BackslashEscapes bool
	// CharLiterals enables VHDL 'x' character literals.
	CharLiterals bool
	// BitStrings enables VHDL x"FF" style literals.
	BitStrings bool
	// BasedNumbers enables VHDL 16#FF# literals.
	BasedNumbers bool
	// SizedNumbers enables Verilog 8'hFF literals.
	SizedNumbers bool
	// Directives enables Verilog `directives and `MACRO uses.
	Directives bool
	// Attributes skips Verilog (* ... *) attribute instances.
	Attributes bool
	// DollarIdents allows '$' inside identifiers and as a prefix.
	DollarIdents bool
	// ExtendedIdents selects escaped identifier syntax: '\\' for VHDL
	// \name\ and ' ' for Verilog \name terminated by whitespace.
	ExtendedIdents byte
}

var (
	// VHDL is the VHDL-2008 dialect.
	VHDL = Dialect{
		LineComment:    "--",
		BlockComments:  true,
		CharLiterals:   true,
		BitStrings:     true,
		BasedNumbers:   true,
		ExtendedIdents: '\\',
	}

	// Verilog covers Verilog-2005 and the SystemVerilog subset used by the
	// structural frontend.
	Verilog = Dialect{
		LineComment:      "//",
		BlockComments:    true,
		BackslashEscapes: true,
		SizedNumbers:     true,
		Directives:       true,
		Attributes:       true,
		DollarIdents:     true,
		ExtendedIdents:   ' ',
	}
)

var puncts3 = []string{"===", "!==", "<<<", ">>>", "->>", "<->"}

var puncts2 = []string{
	"=>", "<=", ":=", "/=", ">=", "**", "<>", "==", "!=", "&&", "||",
	"::", "<<", ">>", "->", "+:", "-:", "?=", "++", "--",
}

// directives that are dropped together with the rest of their line.
var lineDirectives = map[string]bool{
	"timescale":       true,
	"define":          true,
	"undef":           true,
	"include":         true,
	"ifdef":           true,
	"ifndef":          true,
	"elsif":           true,
	"else":            true,
	"endif":           true,
	"default_nettype": true,
	"resetall":        true,
	"celldefine":      true,
	"endcelldefine":   true,
	"pragma":          true,
	"line":            true,
}

// Tokenize splits src into tokens. The last token is always EOF.
func Tokenize(src []byte, d Dialect) ([]Token, error) {
	l := &lexer{src: src, d: d, line: 1, col: 1}
	return l.run()
}

type lexer struct {
	src  []byte
	d    Dialect
	pos  int
	line int
	col  int
	out  []Token
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(string(l.src[l.pos:min(len(l.src), l.pos+len(s))]), s)
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &Error{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) emit(kind Kind, start, line, col int) {
	l.out = append(l.out, Token{
		Kind:   kind,
		Text:   string(l.src[start:l.pos]),
		Line:   line,
		Col:    col,
		Offset: start,
		End:    l.pos,
	})
}

func (l *lexer) prev() (Token, bool) {
	if len(l.out) == 0 {
		return Token{}, false
	}
	return l.out[len(l.out)-1], true
}

func (l *lexer) run() ([]Token, error) {
	for {
		if err := l.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if l.pos >= len(l.src) {
			l.out = append(l.out, Token{Kind: EOF, Line: l.line, Col: l.col, Offset: l.pos, End: l.pos})
			return l.out, nil
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			l.advance(1)
		case l.d.LineComment != "" && l.hasPrefix(l.d.LineComment):
			l.skipLine()
		case l.d.BlockComments && l.hasPrefix("/*"):
			line, col := l.line, l.col
			end := strings.Index(string(l.src[l.pos+2:]), "*/")
			if end < 0 {
				return l.errorf(line, col, "unterminated block comment")
			}
			l.advance(end + 4)
		case l.d.Attributes && l.hasPrefix("(*") && l.peek(2) != ')':
			line, col := l.line, l.col
			end := strings.Index(string(l.src[l.pos+2:]), "*)")
			if end < 0 {
				return l.errorf(line, col, "unterminated attribute instance")
			}
			l.advance(end + 4)
		case l.d.Directives && c == '`' && lineDirectives[l.directiveName()]:
			l.skipDirective()
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance(1)
	}
}

// skipDirective drops a directive line, following backslash continuations
// used by multi-line `define bodies.
func (l *lexer) skipDirective() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.peek(1) == '\n' {
			l.advance(2)
			continue
		}
		if c == '\n' {
			return
		}
		l.advance(1)
	}
}

func (l *lexer) directiveName() string {
	i := l.pos + 1
	for i < len(l.src) && isIdentPart(l.src[i], false) {
		i++
	}
	return string(l.src[l.pos+1 : i])
}

func (l *lexer) next() error {
	start, line, col := l.pos, l.line, l.col
	c := l.src[l.pos]

	switch {
	case isIdentStart(c, l.d.DollarIdents):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos], l.d.DollarIdents) {
			l.advance(1)
		}
		if l.d.BitStrings && l.peek(0) == '"' && isBitStringPrefix(string(l.src[start:l.pos])) {
			if err := l.lexString(line, col); err != nil {
				return err
			}
			l.emit(String, start, line, col)
			return nil
		}
		l.emit(Ident, start, line, col)

	case l.d.Directives && c == '`':
		l.advance(1)
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos], false) {
			l.advance(1)
		}
		l.emit(Ident, start, line, col)

	case l.d.ExtendedIdents != 0 && c == '\\':
		l.advance(1)
		for {
			if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
				if l.d.ExtendedIdents == ' ' && l.pos > start+1 {
					break
				}
				return l.errorf(line, col, "unterminated extended identifier")
			}
			ch := l.src[l.pos]
			if l.d.ExtendedIdents == ' ' && (ch == ' ' || ch == '\t' || ch == '\r') {
				break
			}
			l.advance(1)
			if l.d.ExtendedIdents == '\\' && ch == '\\' {
				if l.peek(0) == '\\' {
					l.advance(1)
					continue
				}
				break
			}
		}
		l.emit(Ident, start, line, col)

	case isDigit(c):
		l.lexNumber()
		l.emit(Number, start, line, col)

	case l.d.SizedNumbers && c == '\'' && isBaseChar(l.peek(1), l.peek(2)):
		l.lexSizedSuffix()
		l.emit(Number, start, line, col)

	case c == '"':
		if err := l.lexString(line, col); err != nil {
			return err
		}
		l.emit(String, start, line, col)

	case l.d.CharLiterals && c == '\'' && l.peek(2) == '\'' && !l.tickIsAttribute():
		l.advance(3)
		l.emit(Char, start, line, col)

	default:
		l.advance(l.punctLen())
		l.emit(Punct, start, line, col)
	}
	return nil
}

// tickIsAttribute reports whether a VHDL tick follows a name, as in
// sig'range or t'(others => '0').
func (l *lexer) tickIsAttribute() bool {
	prev, ok := l.prev()
	if !ok {
		return false
	}
	if prev.Kind == Ident {
		return !charLiteralAfter[strings.ToLower(prev.Text)]
	}
	return prev.Text == ")" || prev.Text == "]"
}

// reserved words that may directly precede a character literal.
var charLiteralAfter = map[string]bool{
	"when": true, "else": true, "then": true, "return": true, "report": true,
	"and": true, "or": true, "xor": true, "nand": true, "nor": true, "xnor": true,
	"not": true, "to": true, "downto": true, "in": true, "is": true, "select": true,
	"of": true, "mod": true, "rem": true, "after": true, "until": true, "case": true,
}

func (l *lexer) punctLen() int {
	for _, p := range puncts3 {
		if l.hasPrefix(p) {
			return 3
		}
	}
	for _, p := range puncts2 {
		if p == l.d.LineComment {
			continue
		}
		if l.hasPrefix(p) {
			return 2
		}
	}
	return 1
}

func (l *lexer) lexNumber() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.advance(1)
	}
	if l.d.BasedNumbers && l.peek(0) == '#' {
		l.advance(1)
		for l.pos < len(l.src) && l.src[l.pos] != '#' && l.src[l.pos] != '\n' {
			l.advance(1)
		}
		if l.peek(0) == '#' {
			l.advance(1)
		}
		return
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance(1)
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.advance(1)
		}
	}
	if e := l.peek(0); (e == 'e' || e == 'E') && (isDigit(l.peek(1)) || ((l.peek(1) == '+' || l.peek(1) == '-') && isDigit(l.peek(2)))) {
		l.advance(2)
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance(1)
		}
	}
	if l.d.SizedNumbers {
		// A size may be separated from its base by blanks: 8 'hFF.
		save := l.pos
		for l.peek(0) == ' ' || l.peek(0) == '\t' {
			l.pos++
		}
		if l.peek(0) == '\'' && isBaseChar(l.peek(1), l.peek(2)) {
			l.col += l.pos - save
			l.lexSizedSuffix()
			return
		}
		l.pos = save
		// Time literals such as 10ns.
		for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
			l.advance(1)
		}
	}
}

func (l *lexer) lexSizedSuffix() {
	l.advance(1)
	if c := l.peek(0); c == 's' || c == 'S' {
		l.advance(1)
	}
	if isBaseLetter(l.peek(0)) {
		l.advance(1)
	}
	for l.peek(0) == ' ' || l.peek(0) == '\t' {
		l.advance(1)
	}
	for l.pos < len(l.src) && isBasedDigit(l.src[l.pos]) {
		l.advance(1)
	}
}

func (l *lexer) lexString(line, col int) error {
	l.advance(1)
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return l.errorf(line, col, "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == '\\' && l.d.BackslashEscapes {
			l.advance(2)
			continue
		}
		l.advance(1)
		if c == '"' {
			if !l.d.BackslashEscapes && l.peek(0) == '"' {
				l.advance(1)
				continue
			}
			return nil
		}
	}
}

// Join reconstructs the source text of toks: tokens that touched in the
// source are concatenated, anything else (spaces, newlines, comments) is
// collapsed to one space.
func Join(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if t.Kind == EOF {
			break
		}
		if i > 0 && t.Offset > toks[i-1].End {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte, dollar bool) bool {
	return isLetter(c) || c == '_' || (dollar && c == '$')
}

func isIdentPart(c byte, dollar bool) bool {
	return isLetter(c) || isDigit(c) || c == '_' || (dollar && c == '$')
}

func isBaseLetter(c byte) bool {
	switch c {
	case 'b', 'B', 'o', 'O', 'd', 'D', 'h', 'H':
		return true
	}
	return false
}

// isBaseChar reports whether the bytes after a tick start a Verilog base
// ('h, 'sb) or an unbased unsized literal ('0, '1, 'x, 'z).
func isBaseChar(c, next byte) bool {
	if isBaseLetter(c) {
		return true
	}
	if (c == 's' || c == 'S') && isBaseLetter(next) {
		return true
	}
	switch c {
	case '0', '1', 'x', 'X', 'z', 'Z':
		return !isIdentPart(next, false)
	}
	return false
}

func isBasedDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
		c == 'x' || c == 'X' || c == 'z' || c == 'Z' || c == '?' || c == '_'
}

func isBitStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "b", "o", "x", "d", "ub", "uo", "ux", "sb", "so", "sx":
		return true
	}
	return false
}
