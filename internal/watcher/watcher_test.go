package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails for a missing directory
// - A single write is reported after the debounce period
// - Rapid writes to several files coalesce into one sorted batch
// - Extensions match case-insensitively; other files are ignored
// - The filter option drops rejected paths
// - Files in directories created after Start are reported
// - Pause accumulates and Resume flushes
// - Stop is idempotent and safe without Start

const testDebounce = 100 * time.Millisecond

func startWatcher(t *testing.T, dir string, opts ...Option) (FileWatcher, <-chan []string) {
	t.Helper()
	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	w, err := NewFileWatcher([]string{dir}, []string{".vhd", ".v"}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	batches := make(chan []string, 10)
	require.NoError(t, w.Start(context.Background(), func(files []string) {
		batches <- files
	}))
	// Give fsnotify a moment to settle
	time.Sleep(50 * time.Millisecond)
	return w, batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
		return nil
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing")}, []string{".vhd"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	path := filepath.Join(dir, "top.vhd")
	write(t, path, "entity top is end;")

	assert.Equal(t, []string{path}, waitBatch(t, batches))
}

func TestFileWatcher_CoalescesBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	b := filepath.Join(dir, "b.v")
	a := filepath.Join(dir, "a.vhd")
	write(t, b, "module b; endmodule")
	time.Sleep(20 * time.Millisecond)
	write(t, a, "entity a is end;")
	time.Sleep(20 * time.Millisecond)
	write(t, b, "module b(); endmodule")

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))
}

func TestFileWatcher_ExtensionAndFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir, WithFilter(func(path string) bool {
		return !strings.HasPrefix(filepath.Base(path), "tb_")
	}))

	write(t, filepath.Join(dir, "notes.txt"), "x")
	write(t, filepath.Join(dir, "tb_top.vhd"), "x")
	upper := filepath.Join(dir, "CORE.VHD")
	write(t, upper, "entity core is end;")

	assert.Equal(t, []string{upper}, waitBatch(t, batches))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	sub := filepath.Join(dir, "rtl")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Wait for the directory to be added
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "alu.vhd")
	write(t, path, "entity alu is end;")

	assert.Contains(t, waitBatch(t, batches), path)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, batches := startWatcher(t, dir)

	w.Pause()
	path := filepath.Join(dir, "top.vhd")
	write(t, path, "entity top is end;")

	select {
	case b := <-batches:
		t.Fatalf("callback fired while paused: %v", b)
	case <-time.After(3 * testDebounce):
	}

	w.Resume()
	assert.Equal(t, []string{path}, waitBatch(t, batches))
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, []string{".vhd"})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
