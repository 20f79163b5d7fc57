package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileDiscovery:
// - Discover returns included files sorted, as absolute paths
// - "**/" include patterns also match files in the root
// - Ignore patterns prune directories and single files
// - .hdlast is always ignored
// - Invalid patterns fail at construction
// - Discover honors context cancellation

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("-- hdl\n"), 0644))
	}
	return root
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(abs, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := writeTree(t,
		"top.vhd",
		"rtl/alu.vhd",
		"rtl/core/dff.v",
		"rtl/notes.md",
		"sim_build/gen.vhd",
		"tb/tb_top.vhd",
		".hdlast/cache.vhd",
	)

	fd, err := New(root, []string{"**/*.vhd", "**/*.v"}, []string{"sim_build/**", "tb/tb_*.vhd"})
	require.NoError(t, err)

	files, err := fd.Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"rtl/alu.vhd", "rtl/core/dff.v", "top.vhd"}, relAll(t, root, files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	fd, err := New(".", []string{"**/*.sv"}, []string{"work/**"})
	require.NoError(t, err)

	assert.True(t, fd.Matches("top.sv"))
	assert.True(t, fd.Matches("a/b/top.sv"))
	assert.False(t, fd.Matches("top.v"))
	assert.False(t, fd.Matches("work/top.sv"))
	assert.False(t, fd.Matches(".hdlast/x.sv"))
	assert.True(t, fd.ShouldIgnore("work"))
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(".", []string{"rtl/[a"}, nil)
	assert.Error(t, err)
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "a.vhd")
	fd, err := New(root, []string{"**/*.vhd"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fd.Discover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
