package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWanted(t *testing.T) {
	tests := map[string]bool{
		"/in/photo.jpg":          true,
		"/in/scan.TIF":           true,
		"/in/photo-upscaled.jpg": false,
		"/in/.photo.png":         false,
		"/in/notes.txt":          false,
		"/in/.superres-123":      false,
	}
	for path, want := range tests {
		assert.Equal(t, want, Wanted(path), path)
	}
}

func TestWatcherEmitsSettledImages(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old-upscaled.png"), []byte("x"), 0o644))

	target := filepath.Join(dir, "photo.png")
	f, err := os.Create(target)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.Write([]byte("chunk"))
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	select {
	case path := <-w.Events():
		assert.Equal(t, target, path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for new image")
	}

	select {
	case path := <-w.Events():
		t.Fatalf("unexpected second event for %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherCloseClosesEvents(t *testing.T) {
	w, err := New(t.TempDir(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestNewFailsForMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil)
	assert.Error(t, err)
}
