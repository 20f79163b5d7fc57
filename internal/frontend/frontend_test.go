package frontend

import (
	"context"
	"errors"
	"testing"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - ForPath resolves by extension, case-insensitively
// - Unknown extensions fail with ErrUnsupportedFile
// - The first frontend to claim an extension keeps it
// - Registering the same language twice fails
// - Parse dispatches to the matching frontend
// - SyntaxError formats its position and unwraps to ErrSyntax

type stubFrontend struct {
	lang string
	exts []string
}

func (s stubFrontend) Language() string     { return s.lang }
func (s stubFrontend) Extensions() []string { return s.exts }
func (s stubFrontend) Parse(_ context.Context, path string, _ []byte) (*hdlobjects.Context, error) {
	return hdlobjects.NewContext(path, s.lang), nil
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(stubFrontend{lang: "vhdl", exts: []string{".vhd", ".vhdl"}}))

	f, err := r.ForPath("src/TOP.VHD")
	require.NoError(t, err)
	assert.Equal(t, "vhdl", f.Language())
	assert.True(t, r.Supports("a.vhdl"))

	_, err = r.ForPath("main.go")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.False(t, r.Supports("main.go"))
}

func TestRegistry_FirstExtensionWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(stubFrontend{lang: "verilog", exts: []string{".v", ".sv"}}))
	require.NoError(t, r.Register(stubFrontend{lang: "systemverilog", exts: []string{".sv", ".svh"}}))

	f, err := r.ForPath("x.sv")
	require.NoError(t, err)
	assert.Equal(t, "verilog", f.Language())

	f, err = r.ForPath("x.svh")
	require.NoError(t, err)
	assert.Equal(t, "systemverilog", f.Language())

	assert.Equal(t, []string{".sv", ".svh", ".v"}, r.Extensions())
}

func TestRegistry_DuplicateLanguage(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(stubFrontend{lang: "vhdl", exts: []string{".vhd"}}))
	err := r.Register(stubFrontend{lang: "VHDL", exts: []string{".vhdl"}})
	assert.ErrorIs(t, err, ErrDuplicateLanguage)

	_, ok := r.ForLanguage("Vhdl")
	assert.True(t, ok)
}

func TestRegistry_Parse(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(stubFrontend{lang: "vhdl", exts: []string{".vhd"}}))

	c, err := r.Parse(context.Background(), "a.vhd", nil)
	require.NoError(t, err)
	assert.Equal(t, "vhdl", c.Language)
	assert.Equal(t, "a.vhd", c.Path)

	_, err = r.Parse(context.Background(), "a.txt", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestSyntaxError(t *testing.T) {
	t.Parallel()

	var err error = &SyntaxError{Path: "a.vhd", Line: 3, Col: 7, Msg: "expected ';'"}
	assert.Equal(t, "a.vhd:3:7: expected ';'", err.Error())
	assert.ErrorIs(t, err, ErrSyntax)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
}
