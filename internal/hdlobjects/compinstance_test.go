package hdlobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CompInstance, Entity and Context:
// - NewNamed keeps the identifier, including the empty one
// - CompInstance serializes name first, then entityName, maps and optional fields
// - Positional associations have a null formal; open actuals are null
// - Entity serializes generics and ports in declaration order
// - Context serializes path, language, entities and architectures
// - Context.SerializeWith sorts instances when asked
// - Context lookups ignore case
// - Entity.Port prefers an exact match and falls back to case folding
// - Context rejects nil and duplicate architectures

func TestNamed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alu", NewNamed("alu").Name())
	assert.Equal(t, "", NewNamed("").Name())
}

func TestCompInstance_Serialize(t *testing.T) {
	t.Parallel()

	inst := NewCompInstance("u_alu", "alu")
	inst.Kind = InstanceEntity
	inst.Library = "work"
	inst.ArchName = "rtl"
	inst.GenericMap = []Association{{Formal: "WIDTH", Actual: RawExpr("8")}}
	inst.PortMap = []Association{
		{Formal: "a", Actual: RawExpr("op_a")},
		{Actual: RawExpr("op_b")},
		{Formal: "carry", Actual: nil},
	}
	inst.Pos = Position{Line: 4, Col: 3}

	v, err := inst.Serialize()
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"name", "entityName", "kind", "library", "architecture", "genericMap", "portMap", "position"},
		v.Keys())
	assert.Equal(t,
		`{"name":"u_alu","entityName":"alu","kind":"entity","library":"work","architecture":"rtl",`+
			`"genericMap":[{"formal":"WIDTH","actual":"8"}],`+
			`"portMap":[{"formal":"a","actual":"op_a"},{"formal":null,"actual":"op_b"},{"formal":"carry","actual":null}],`+
			`"position":{"line":4,"col":3}}`,
		v.String())
}

func TestCompInstance_SerializeMinimal(t *testing.T) {
	t.Parallel()

	v, err := NewCompInstance("u0", "").Serialize()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"u0","entityName":null,"genericMap":[],"portMap":[]}`, v.String())
}

func TestEntity_Serialize(t *testing.T) {
	t.Parallel()

	e := NewEntity("counter")
	e.Generics = []Generic{{Name: "WIDTH", Type: "natural", Default: "8"}}
	e.Ports = []Port{
		{Name: "clk", Direction: DirIn, Type: "std_logic"},
		{Name: "q", Direction: DirOut, Type: "std_logic_vector(WIDTH-1 downto 0)"},
	}

	v, err := e.Serialize()
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"counter","generics":[{"name":"WIDTH","type":"natural","default":"8"}],`+
			`"ports":[{"name":"clk","direction":"in","type":"std_logic"},`+
			`{"name":"q","direction":"out","type":"std_logic_vector(WIDTH-1 downto 0)"}]}`,
		v.String())

	p, ok := e.Port("q")
	require.True(t, ok)
	assert.Equal(t, DirOut, p.Direction)
	_, ok = e.Port("missing")
	assert.False(t, ok)
}

func TestEntity_PortIgnoresCase(t *testing.T) {
	t.Parallel()

	e := NewEntity("mixed")
	e.Ports = []Port{
		{Name: "CLK", Direction: DirIn},
		{Name: "a", Direction: DirIn},
		{Name: "A", Direction: DirOut},
	}

	p, ok := e.Port("clk")
	require.True(t, ok)
	assert.Equal(t, "CLK", p.Name)

	p, ok = e.Port("A")
	require.True(t, ok)
	assert.Equal(t, DirOut, p.Direction)

	p, ok = e.Port("a")
	require.True(t, ok)
	assert.Equal(t, DirIn, p.Direction)
}

func TestContext_Serialize(t *testing.T) {
	t.Parallel()

	c := NewContext("rtl/top.vhd", "vhdl")
	require.NoError(t, c.AddEntity(NewEntity("top")))
	a := NewArch("rtl", "top")
	require.NoError(t, a.AddComponentInstance(NewCompInstance("u_b", "b")))
	require.NoError(t, a.AddComponentInstance(NewCompInstance("u_a", "a")))
	require.NoError(t, c.AddArchitecture(a))

	v, err := c.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []string{"path", "language", "entities", "architectures"}, v.Keys())
	assert.Equal(t, "rtl/top.vhd", v.Field("path").AsString())
	assert.Equal(t, 1, v.Field("entities").Len())
	assert.Equal(t, []string{"u_b", "u_a"}, instanceNames(t, v.Field("architectures").Index(0)))

	sorted, err := c.SerializeWith(SerializeOptions{SortInstances: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"u_a", "u_b"}, instanceNames(t, sorted.Field("architectures").Index(0)))
	assert.Equal(t, 2, c.InstanceCount())
}

func TestContext_Lookups(t *testing.T) {
	t.Parallel()

	c := NewContext("x.vhd", "vhdl")
	require.NoError(t, c.AddEntity(NewEntity("Counter")))
	a1 := NewArch("rtl", "COUNTER")
	a2 := NewArch("sim", "other")
	require.NoError(t, c.AddArchitecture(a1))
	require.NoError(t, c.AddArchitecture(a2))

	e, ok := c.Entity("counter")
	require.True(t, ok)
	assert.Equal(t, "Counter", e.Name())
	_, ok = c.Entity("nope")
	assert.False(t, ok)

	assert.Equal(t, []*Arch{a1}, c.ArchitecturesOf("counter"))
}

func TestContext_RejectsInvalid(t *testing.T) {
	t.Parallel()

	c := NewContext("x.vhd", "vhdl")
	a := NewArch("rtl", "e")
	require.NoError(t, c.AddArchitecture(a))

	assert.ErrorIs(t, c.AddArchitecture(a), ErrInvalidArgument)
	assert.ErrorIs(t, c.AddArchitecture(nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.AddEntity(nil), ErrInvalidArgument)
	assert.Len(t, c.Architectures, 1)
}

func TestContext_SerializePropagatesFailure(t *testing.T) {
	t.Parallel()

	c := NewContext("x.vhd", "vhdl")
	a := NewArch("rtl", "e")
	inst := NewCompInstance("u0", "c")
	inst.PortMap = []Association{{Formal: "p", Actual: failingExpr{}}}
	require.NoError(t, a.AddComponentInstance(inst))
	require.NoError(t, c.AddArchitecture(a))

	v, err := c.Serialize()
	assert.ErrorIs(t, err, errBroken)
	assert.True(t, v.IsNull())
}
