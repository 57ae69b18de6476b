package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	relevant := Relevant("sepia", "checker")
	root := filepath.Join("home", "me", "fx")

	assert.True(t, relevant(filepath.Join(root, "effects", "sepia.glsl.template")))
	assert.True(t, relevant(filepath.Join(root, "effects", "sepia.properties")))
	assert.True(t, relevant(filepath.Join(root, "images", "checker.png")))

	assert.False(t, relevant(filepath.Join(root, "effects", "blur.glsl.template")))
	assert.False(t, relevant(filepath.Join(root, "images", "sepia.glsl.template")))
	assert.False(t, relevant(filepath.Join(root, "effects", "checker.png")))
}

func resourceDir(t *testing.T) string {
	dir := t.TempDir()
	for _, sub := range []string{"effects", "images"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, sub), 0755))
	}
	return dir
}

func TestWatchMarksDirty(t *testing.T) {
	dir := resourceDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, dir, Relevant("sepia", "checker"))
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Dirty())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "effects", "blur.properties"), []byte("radius=1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "effects", "sepia.properties"), []byte("intensity=1"), 0644))

	assert.Eventually(t, w.Dirty, 2*time.Second, 10*time.Millisecond)
}

func TestDirtyResets(t *testing.T) {
	w := &Watcher{}
	w.dirty.Store(true)
	assert.True(t, w.Dirty())
	assert.False(t, w.Dirty())
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), Relevant("a", "b"))
	assert.Error(t, err)
}
