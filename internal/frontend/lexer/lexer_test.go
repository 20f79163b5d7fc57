package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for lexer:
// - VHDL: identifiers, based numbers, bit strings, char literals vs attribute ticks
// - VHDL: "--" and block comments are dropped
// - VHDL: doubled quotes stay inside a string
// - Verilog: sized numbers, directives, attribute instances, system identifiers
// - Line and column are 1-based and track newlines
// - Unterminated strings and comments produce *Error
// - Join collapses whitespace and comments to single spaces

func texts(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == EOF {
			break
		}
		out = append(out, t.Text)
	}
	return out
}

func TestTokenize_VHDL(t *testing.T) {
	t.Parallel()

	src := `u0 : entity work.alu(rtl) -- trailing
  generic map (W => 16#FF#, INIT => x"0F", C => '1')
  port map (a => s'range, q => open);`

	toks, err := Tokenize([]byte(src), VHDL)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"u0", ":", "entity", "work", ".", "alu", "(", "rtl", ")",
		"generic", "map", "(", "W", "=>", "16#FF#", ",", "INIT", "=>", `x"0F"`, ",", "C", "=>", "'1'", ")",
		"port", "map", "(", "a", "=>", "s", "'", "range", ",", "q", "=>", "open", ")", ";",
	}, texts(toks))

	assert.Equal(t, EOF, toks[len(toks)-1].Kind)
	assert.Equal(t, Number, toks[14].Kind)
	assert.Equal(t, String, toks[18].Kind)
	assert.Equal(t, Char, toks[22].Kind)
	assert.Equal(t, Punct, toks[30].Kind)
}

func TestTokenize_VHDLQualifiedExpression(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`t'('0')`), VHDL)
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "'", "(", "'0'", ")"}, texts(toks))
}

func TestTokenize_VHDLStrings(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`"say ""hi""" /* block */ x`), VHDL)
	require.NoError(t, err)
	assert.Equal(t, []string{`"say ""hi"""`, "x"}, texts(toks))
}

func TestTokenize_Verilog(t *testing.T) {
	t.Parallel()

	src := "`timescale 1ns/1ps\n" +
		"`define W 8\n" +
		"(* keep *) adder #(.W(`W)) u_add (.a(8'hFF), .b(4 'b1010), .c('0), .d($clog2(N)));\n"

	toks, err := Tokenize([]byte(src), Verilog)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"adder", "#", "(", ".", "W", "(", "`W", ")", ")", "u_add",
		"(", ".", "a", "(", "8'hFF", ")", ",", ".", "b", "(", "4 'b1010", ")", ",",
		".", "c", "(", "'0", ")", ",", ".", "d", "(", "$clog2", "(", "N", ")", ")", ")", ";",
	}, texts(toks))
	assert.Equal(t, 3, toks[0].Line)
}

func TestTokenize_VerilogEscapedIdentifier(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`\bus[0] x`), Verilog)
	require.NoError(t, err)
	assert.Equal(t, []string{`\bus[0]`, "x"}, texts(toks))
}

func TestTokenize_EventControlIsNotAttribute(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`always @(*) begin end`), Verilog)
	require.NoError(t, err)
	assert.Equal(t, []string{"always", "@", "(", "*", ")", "begin", "end"}, texts(toks))
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte("a\n  bb <= c;"), VHDL)
	require.NoError(t, err)

	require.Len(t, toks, 6)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[1].Col)
	assert.Equal(t, "<=", toks[2].Text)
	assert.Equal(t, 6, toks[2].Col)
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]Dialect{
		`x := "open`:      VHDL,
		"/* never ends":   Verilog,
		"\"line\nbreak\"": Verilog,
	}
	for src, d := range cases {
		_, err := Tokenize([]byte(src), d)
		var lexErr *Error
		require.True(t, errors.As(err, &lexErr), "input %q", src)
		assert.Equal(t, 1, lexErr.Line)
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte("a(3 downto 0)  &\n -- note\n b"), VHDL)
	require.NoError(t, err)
	assert.Equal(t, "a(3 downto 0) & b", Join(toks))
	assert.Equal(t, "", Join(nil))
}

func TestToken_Is(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`ENTITY "entity"`), VHDL)
	require.NoError(t, err)
	assert.True(t, toks[0].Is("entity"))
	assert.False(t, toks[1].Is("entity"))
}

func TestTokenize_VHDLCharAfterKeyword(t *testing.T) {
	t.Parallel()

	toks, err := Tokenize([]byte(`y <= a when en = '1' else 'Z';`), VHDL)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "<=", "a", "when", "en", "=", "'1'", "else", "'Z'", ";"}, texts(toks))
}
