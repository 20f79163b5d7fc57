package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/hdlast/internal/cache"
	"github.com/mvp-joe/hdlast/internal/config"
	"github.com/mvp-joe/hdlast/internal/discovery"
	"github.com/mvp-joe/hdlast/internal/frontend"
	"github.com/mvp-joe/hdlast/internal/frontend/builtin"
	"github.com/mvp-joe/hdlast/internal/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Exporter:
// - ExportDir discovers the fixture tree and reports results in path order
// - A syntax error fails only its own file and is reported in Stats
// - A second run over unchanged files is served from the parse cache
// - Unsupported extensions fail with ErrUnsupportedFile
// - SortInstances orders instances by name in the document
// - Write streams compact or pretty documents in result order
// - WriteFiles mirrors the source tree under OutputDir
// - Progress callbacks fire once per file
// - A cancelled context aborts the run

var fixtureRoot = filepath.Join("..", "..", "testdata", "hdl")

type recordingReporter struct {
	discovered int
	total      int
	processed  []string
	completed  *Stats
}

func (r *recordingReporter) OnDiscoveryStart() {}

func (r *recordingReporter) OnDiscoveryComplete(files int) {
	r.discovered = files
}

func (r *recordingReporter) OnFileProcessingStart(totalFiles int) {
	r.total = totalFiles
}

func (r *recordingReporter) OnFileProcessed(path string, err error) {
	r.processed = append(r.processed, path)
}

func (r *recordingReporter) OnComplete(stats *Stats) {
	r.completed = stats
}

func newFixtureExporter(t *testing.T, c *cache.ParseCache, opts Options, progress ProgressReporter) (*Exporter, *discovery.FileDiscovery) {
	t.Helper()
	cfg := config.Default()
	fd, err := discovery.New(fixtureRoot, cfg.Paths.Include, cfg.Paths.Ignore)
	require.NoError(t, err)
	opts.Root = fixtureRoot
	if opts.Concurrency == 0 {
		opts.Concurrency = 4
	}
	return New(builtin.NewRegistry(), c, opts, progress), fd
}

func relPaths(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.RelPath)
	}
	return out
}

func TestExportDir_Fixtures(t *testing.T) {
	t.Parallel()

	progress := &recordingReporter{}
	exp, fd := newFixtureExporter(t, nil, Options{}, progress)

	results, stats, err := exp.ExportDir(context.Background(), fd)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"broken.vhd",
		"counter.v",
		"cpu.vhd",
		"rtl/alu.vhd",
		"rtl/dff.v",
		"rtl/regfile.vhd",
	}, relPaths(results))

	broken := results[0]
	require.Error(t, broken.Err)
	assert.ErrorIs(t, broken.Err, frontend.ErrSyntax)
	assert.True(t, broken.Document.IsNull())

	cpu := results[2]
	require.NoError(t, cpu.Err)
	assert.Equal(t, "vhdl", cpu.Language)
	assert.Equal(t, "cpu.vhd", cpu.Document.Field("path").AsString())
	arch := cpu.Document.Field("architectures").Index(0)
	assert.Equal(t, "cpu_arch", arch.Field("name").AsString())
	assert.Equal(t, "cpu", arch.Field("entityName").AsString())
	assert.Equal(t, 2, arch.Field("componentInstances").Len())

	assert.Equal(t, 6, stats.Files)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Cached)
	assert.Equal(t, 6, stats.Entities)
	assert.Equal(t, 6, stats.Architectures)
	assert.Equal(t, 5, stats.Instances)

	assert.Equal(t, 6, progress.discovered)
	assert.Equal(t, 6, progress.total)
	assert.Len(t, progress.processed, 6)
	assert.Same(t, stats, progress.completed)

	assert.Len(t, Failed(results), 1)
}

func TestExportFiles_UsesCache(t *testing.T) {
	t.Parallel()

	c, err := cache.New(64)
	require.NoError(t, err)
	defer c.Close()

	exp, fd := newFixtureExporter(t, c, Options{}, nil)

	first, stats, err := exp.ExportDir(context.Background(), fd)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Cached)

	second, stats, err := exp.ExportDir(context.Background(), fd)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Cached)
	assert.Equal(t, 1, stats.Failed)

	for i := range first {
		if first[i].Err != nil {
			continue
		}
		assert.True(t, second[i].Cached, second[i].RelPath)
		assert.True(t, jsonvalue.Equal(first[i].Document, second[i].Document), second[i].RelPath)
	}
}

func TestExportFile_Unsupported(t *testing.T) {
	t.Parallel()

	exp, _ := newFixtureExporter(t, nil, Options{}, nil)
	r := exp.ExportFile(context.Background(), filepath.Join(fixtureRoot, "notes.txt"))
	assert.ErrorIs(t, r.Err, frontend.ErrUnsupportedFile)
}

func TestExportFile_SortInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(fixtureRoot, "counter.v")

	names := func(doc jsonvalue.Value) []string {
		var out []string
		top := doc.Field("architectures").Index(1)
		for _, inst := range top.Field("componentInstances").Items() {
			out = append(out, inst.Field("name").AsString())
		}
		return out
	}

	exp, _ := newFixtureExporter(t, nil, Options{}, nil)
	r := exp.ExportFile(context.Background(), path)
	require.NoError(t, r.Err)
	assert.Equal(t, []string{"u_lo", "u_hi"}, names(r.Document))

	sorted, _ := newFixtureExporter(t, nil, Options{SortInstances: true}, nil)
	r = sorted.ExportFile(context.Background(), path)
	require.NoError(t, r.Err)
	assert.Equal(t, []string{"u_hi", "u_lo"}, names(r.Document))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	exp, fd := newFixtureExporter(t, nil, Options{}, nil)
	results, _, err := exp.ExportDir(context.Background(), fd)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	first, err := jsonvalue.Parse([]byte(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, "counter.v", first.Field("path").AsString())

	pretty, _ := newFixtureExporter(t, nil, Options{Indent: "  "}, nil)
	buf.Reset()
	require.NoError(t, pretty.Write(&buf, results[1:2]))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"path\": \"counter.v\""))
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	exp, fd := newFixtureExporter(t, nil, Options{OutputDir: out}, nil)
	results, _, err := exp.ExportDir(context.Background(), fd)
	require.NoError(t, err)

	written, err := exp.WriteFiles(results)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	data, err := os.ReadFile(filepath.Join(out, "rtl", "alu.vhd.json"))
	require.NoError(t, err)
	doc, err := jsonvalue.Parse(data)
	require.NoError(t, err)
	assert.True(t, jsonvalue.Equal(results[3].Document, doc))

	_, err = os.Stat(filepath.Join(out, "broken.vhd.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFiles_NoOutputDir(t *testing.T) {
	t.Parallel()

	exp, _ := newFixtureExporter(t, nil, Options{}, nil)
	_, err := exp.WriteFiles(nil)
	assert.Error(t, err)
}

func TestExportFiles_Cancelled(t *testing.T) {
	t.Parallel()

	exp, _ := newFixtureExporter(t, nil, Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := exp.ExportFiles(ctx, []string{filepath.Join(fixtureRoot, "cpu.vhd")})
	assert.ErrorIs(t, err, context.Canceled)
}
