package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBatches(t *testing.T, w *Watcher) func() [][]ChangeEvent {
	t.Helper()
	var mu sync.Mutex
	var batches [][]ChangeEvent
	w.AddHandler(func(events []ChangeEvent) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
	})
	return func() [][]ChangeEvent {
		mu.Lock()
		defer mu.Unlock()
		out := make([][]ChangeEvent, len(batches))
		copy(out, batches)
		return out
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDebounceCollapsesBurst(t *testing.T) {
	dir := t.TempDir()

	w, err := New(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(dir))
	batches := collectBatches(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(dir, "chunk.js")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool { return len(batches()) > 0 })

	got := batches()
	require.Len(t, got, 1, "burst of writes must debounce into one batch")
	require.Len(t, got[0], 1, "events dedupe by path")
	assert.Equal(t, path, got[0][0].Path)
}

func TestFiltersRejectUninterestingPaths(t *testing.T) {
	dir := t.TempDir()

	w, err := New(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	w.AddFilter(BuildArtifactFilter)
	require.NoError(t, w.Add(dir))
	batches := collectBatches(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("x"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(batches()) > 0 })

	got := batches()
	for _, batch := range got {
		for _, e := range batch {
			assert.Equal(t, ".css", filepath.Ext(e.Path))
		}
	}
}

func TestAddMissingDirectoryIsNoop(t *testing.T) {
	w, err := New(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.Add(filepath.Join(t.TempDir(), "does-not-exist")))
	assert.NoError(t, w.AddRecursive(filepath.Join(t.TempDir(), "also-missing")))
}

func TestAddRecursiveWatchesSubdirectories(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "chunks")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	w, err := New(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.AddRecursive(root))
	batches := collectBatches(t, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "counter.js"), []byte("x"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(batches()) > 0 })
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventCreated.String())
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "deleted", EventDeleted.String())
	assert.Equal(t, "renamed", EventRenamed.String())
}

func TestNoHiddenFilter(t *testing.T) {
	assert.False(t, NoHiddenFilter(".git/objects/ab"))
	assert.False(t, NoHiddenFilter("src/.cache/x.js"))
	assert.True(t, NoHiddenFilter(".fresco/build/manifest.json"))
	assert.True(t, NoHiddenFilter("assets/app.css"))
}

func TestLocaleFilter(t *testing.T) {
	assert.True(t, LocaleFilter("locales/en.yaml"))
	assert.True(t, LocaleFilter("locales/de.yml"))
	assert.False(t, LocaleFilter("locales/en.json"))
}
