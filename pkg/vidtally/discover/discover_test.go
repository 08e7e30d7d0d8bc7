package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	}
}

func relPaths(t *testing.T, opts Options) []string {
	t.Helper()
	files, err := Discover(context.Background(), opts)
	require.NoError(t, err)
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestDiscover_RecursiveSorted(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"z.mp4",
		"B/b2.mp4",
		"A/a1.mp4",
		"A/deep/er/x.mp4",
		"A/notes.txt",
		"B/b1.mp4",
	)

	got := relPaths(t, Options{Root: root})
	assert.Equal(t, []string{
		"A/a1.mp4",
		"A/deep/er/x.mp4",
		"B/b1.mp4",
		"B/b2.mp4",
		"z.mp4",
	}, got)
}

func TestDiscover_PopulatesFields(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "A/clip.mp4")

	files, err := Discover(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.True(t, filepath.IsAbs(f.Path))
	assert.Equal(t, "A/clip.mp4", f.RelPath)
	assert.Equal(t, int64(4), f.Size)
	assert.Equal(t, "A", f.Dir())
}

func TestDiscover_ExtensionCase(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "lower.mp4", "UPPER.MP4", "mixed.Mp4")

	assert.Equal(t, []string{"lower.mp4"}, relPaths(t, Options{Root: root}))
	assert.Equal(t,
		[]string{"UPPER.MP4", "lower.mp4", "mixed.Mp4"},
		relPaths(t, Options{Root: root, IgnoreCase: true}),
	)
}

func TestDiscover_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.mp4", "b.m4v", "c.mov")

	got := relPaths(t, Options{Root: root, Extensions: []string{".m4v", ".mov"}})
	assert.Equal(t, []string{"b.m4v", "c.mov"}, got)
}

func TestDiscover_Exclude(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"keep/a.mp4",
		"skip/b.mp4",
		"keep/sample-c.mp4",
		"keep/inner/skip/d.mp4",
	)

	got := relPaths(t, Options{Root: root, Exclude: []string{"skip", "sample-*"}})
	assert.Equal(t, []string{"keep/a.mp4"}, got)
}

func TestDiscover_EmptyTree(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "readme.txt")

	files, err := Discover(context.Background(), Options{Root: root})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, outside, "far.mp4")
	writeFiles(t, root, "near.mp4")

	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.Equal(t, []string{"near.mp4"}, relPaths(t, Options{Root: root}))
}

func TestDiscover_InvalidRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "file.mp4")

	_, err := Discover(context.Background(), Options{Root: filepath.Join(root, "missing")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Discover(context.Background(), Options{Root: filepath.Join(root, "file.mp4")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestDiscover_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/x.mp4", "b/y.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, Options{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRoot(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}
