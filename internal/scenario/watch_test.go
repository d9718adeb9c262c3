package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_DetectsFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "watched.yaml", "id: x\n")

	w, err := NewWatcher(dir, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reload := make(chan struct{}, 1)
	go w.Watch(ctx, reload)

	require.NoError(t, os.WriteFile(path, []byte("id: y\n"), 0o644))

	select {
	case <-reload:
	case <-time.After(time.Second):
		t.Fatal("expected a reload signal after writing a watched YAML file")
	}
}

func TestWatcher_IgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(dir, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	reload := make(chan struct{}, 1)
	go w.Watch(ctx, reload)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	select {
	case <-reload:
		t.Fatal("did not expect a reload signal for a non-YAML file")
	case <-ctx.Done():
	}
}

func TestNewWatcher_SingleFileWatchesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "one.yaml", "id: x\n")

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
}
