package storage

import (
	"testing"
	"time"

	"github.com/mvp-joe/hdlast/internal/hdlobjects"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for storage:
// - CreateSchema bootstraps the schema version
// - Open creates the database file and reopens it without recreating
// - WriteContext stores entities, architectures and instances in order
// - Rewriting a file replaces its previous rows
// - DeleteFile cascades to architectures and instances
// - Lookups by entity name are case-insensitive
// - Export documents round-trip with field order and are grouped by run
// - LatestRun returns the most recent run; missing rows yield ErrNotFound

func cpuContext(t *testing.T) *hdlobjects.Context {
	t.Helper()
	c := hdlobjects.NewContext("rtl/cpu.vhd", "vhdl")

	e := hdlobjects.NewEntity("cpu")
	e.Ports = []hdlobjects.Port{{Name: "clk", Direction: hdlobjects.DirIn, Type: "std_logic"}}
	e.Pos = hdlobjects.Position{Line: 1, Col: 1}
	require.NoError(t, c.AddEntity(e))

	a := hdlobjects.NewArch("cpu_arch", "cpu")
	a.Pos = hdlobjects.Position{Line: 5, Col: 1}
	alu := hdlobjects.NewCompInstance("alu0", "alu")
	alu.Kind = hdlobjects.InstanceComponent
	alu.Pos = hdlobjects.Position{Line: 7, Col: 3}
	rf := hdlobjects.NewCompInstance("rf0", "regfile")
	rf.Kind = hdlobjects.InstanceEntity
	rf.Library = "work"
	rf.ArchName = "rtl"
	require.NoError(t, a.AddComponentInstance(alu))
	require.NoError(t, a.AddComponentInstance(rf))
	require.NoError(t, c.AddArchitecture(a))
	return c
}

func TestCreateSchema_Version(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	t.Parallel()

	path := NewTestDBPath(t)

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewWriter(db).WriteContext(cpuContext(t), "abc"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	rec, err := NewReader(db).File("rtl/cpu.vhd")
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.FileHash)
}

func TestWriteContext_StoresUnitsInOrder(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	require.NoError(t, w.WriteContext(cpuContext(t), "hash1"))

	r := NewReader(db)
	files, err := r.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, FileRecord{FilePath: "rtl/cpu.vhd", Language: "vhdl", FileHash: "hash1", IndexedAt: fixed}, *files[0])

	entities, err := r.Entities("rtl/cpu.vhd")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "cpu", entities[0].Name)
	assert.Equal(t, 1, entities[0].PortCount)

	archs, err := r.Architectures("rtl/cpu.vhd")
	require.NoError(t, err)
	require.Len(t, archs, 1)
	assert.Equal(t, "cpu_arch", archs[0].Name)
	assert.Equal(t, "cpu", archs[0].EntityName)
	assert.Equal(t, 5, archs[0].Line)

	insts, err := r.Instances(archs[0].ID)
	require.NoError(t, err)
	require.Len(t, insts, 2)
	assert.Equal(t, "alu0", insts[0].Name)
	assert.Equal(t, "component", insts[0].Kind)
	assert.Equal(t, 7, insts[0].Line)
	assert.Equal(t, "rf0", insts[1].Name)
	assert.Equal(t, "work", insts[1].Library)
	assert.Equal(t, "rtl", insts[1].Architecture)
}

func TestWriteContext_ReplacesPreviousRows(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	require.NoError(t, w.WriteContext(cpuContext(t), "hash1"))

	c := hdlobjects.NewContext("rtl/cpu.vhd", "vhdl")
	require.NoError(t, c.AddArchitecture(hdlobjects.NewArch("empty", "cpu")))
	require.NoError(t, w.WriteContext(c, "hash2"))

	r := NewReader(db)
	archs, err := r.Architectures("rtl/cpu.vhd")
	require.NoError(t, err)
	require.Len(t, archs, 1)
	assert.Equal(t, "empty", archs[0].Name)

	entities, err := r.Entities("rtl/cpu.vhd")
	require.NoError(t, err)
	assert.Empty(t, entities)

	insts, err := r.InstancesOf("alu")
	require.NoError(t, err)
	assert.Empty(t, insts)

	rec, err := r.File("rtl/cpu.vhd")
	require.NoError(t, err)
	assert.Equal(t, "hash2", rec.FileHash)
}

func TestWriteContext_RejectsNil(t *testing.T) {
	t.Parallel()

	err := NewWriter(NewTestDB(t)).WriteContext(nil, "")
	assert.ErrorIs(t, err, hdlobjects.ErrInvalidArgument)
}

func TestDeleteFile_Cascades(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	require.NoError(t, w.WriteContext(cpuContext(t), "hash1"))
	require.NoError(t, w.DeleteFile("rtl/cpu.vhd"))

	r := NewReader(db)
	_, err := r.File("rtl/cpu.vhd")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM component_instances").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestLookups_CaseInsensitive(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	require.NoError(t, NewWriter(db).WriteContext(cpuContext(t), "hash1"))

	r := NewReader(db)
	archs, err := r.ArchitecturesOf("CPU")
	require.NoError(t, err)
	require.Len(t, archs, 1)
	assert.Equal(t, "cpu_arch", archs[0].Name)

	insts, err := r.InstancesOf("RegFile")
	require.NoError(t, err)
	require.Len(t, insts, 1)
	assert.Equal(t, "rf0", insts[0].Name)
}

func TestExports(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	r := NewReader(db)

	_, err := r.LatestRun()
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w.now = func() time.Time { return base }

	first := NewRunID()
	doc, err := cpuContext(t).Serialize()
	require.NoError(t, err)
	require.NoError(t, w.WriteExport(first, "rtl/cpu.vhd", doc))

	w.now = func() time.Time { return base.Add(100 * time.Millisecond) }
	second := NewRunID()
	assert.NotEqual(t, first, second)
	other := jsonvalue.ObjectOf(jsonvalue.F("z", jsonvalue.Int(1)), jsonvalue.F("a", jsonvalue.Null()))
	require.NoError(t, w.WriteExport(second, "b.v", other))
	require.NoError(t, w.WriteExport(second, "a.v", other))

	got, err := r.Export(first, "rtl/cpu.vhd")
	require.NoError(t, err)
	assert.True(t, jsonvalue.Equal(doc, got))

	got, err = r.Export(second, "a.v")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, got.Keys())

	latest, err := r.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, second, latest)

	records, err := r.ExportsOf(second)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.v", records[0].FilePath)
	assert.Equal(t, `{"z":1,"a":null}`, records[0].Document)
	assert.Equal(t, base.Add(100*time.Millisecond), records[0].CreatedAt)

	_, err = r.Export(first, "missing.v")
	assert.ErrorIs(t, err, ErrNotFound)
}
