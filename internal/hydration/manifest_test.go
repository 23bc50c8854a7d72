package hydration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string, entries string) string {
	t.Helper()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(entries), 0o644))
	return path
}

func TestManifestResolve(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{"Counter": "counter.abc123.js", "Chart": "chart.def456.js"}`)

	m := NewManifest([]string{path}, nil)

	chunk, ok := m.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, "counter.abc123.js", chunk)
}

func TestManifestMissingEntryIsSilent(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{"Counter": "counter.js"}`)

	m := NewManifest([]string{path}, nil)

	_, ok := m.Resolve("Ghost")
	assert.False(t, ok)

	// Other components stay resolvable in the same render.
	chunk, ok := m.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, "counter.js", chunk)
}

func TestManifestMissingFileDegrades(t *testing.T) {
	m := NewManifest([]string{filepath.Join(t.TempDir(), "nope.json")}, nil)

	_, ok := m.Resolve("Counter")
	assert.False(t, ok)
	assert.Empty(t, m.Entries())
}

func TestManifestFirstExistingCandidateWins(t *testing.T) {
	dir := t.TempDir()
	second := writeManifest(t, dir, `{"Counter": "from-second.js"}`)
	missing := filepath.Join(dir, "missing.json")

	m := NewManifest([]string{missing, second}, nil)

	chunk, ok := m.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, "from-second.js", chunk)
}

func TestManifestInvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{"Counter": "counter.v1.js"}`)

	m := NewManifest([]string{path}, nil)
	chunk, _ := m.Resolve("Counter")
	assert.Equal(t, "counter.v1.js", chunk)

	// Bundler rewrote the chunk; dev mode invalidates explicitly.
	writeManifest(t, dir, `{"Counter": "counter.v2.js"}`)
	m.Invalidate()

	chunk, ok := m.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, "counter.v2.js", chunk)
}

func TestManifestMissTriggersFallbackReload(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{}`)

	m := NewManifest([]string{path}, nil)
	_, ok := m.Resolve("Counter")
	assert.False(t, ok)

	// A fresh bundler output appears; the next miss reloads and finds it
	// without an explicit invalidation.
	writeManifest(t, dir, `{"Counter": "counter.js"}`)

	chunk, ok := m.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, "counter.js", chunk)
}

func TestManifestMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `{not json`)

	m := NewManifest([]string{path}, nil)
	_, ok := m.Resolve("Counter")
	assert.False(t, ok)
}
