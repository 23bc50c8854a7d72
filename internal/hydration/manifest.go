package hydration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fresco-dev/fresco/internal/logging"
)

// Manifest is the process-wide, read-mostly map of component name to built
// chunk file name, produced by the external bundler. It loads lazily from
// the first existing candidate file and caches in memory; a reload replaces
// the whole map in one assignment, never mutating in place while readers
// might be iterating. A missing manifest degrades to "no hydration scripts
// injected" rather than failing requests.
type Manifest struct {
	mu         sync.RWMutex
	entries    map[string]string
	loaded     bool
	candidates []string
	logger     logging.Logger
}

// NewManifest creates a manifest over candidate on-disk locations; the
// first existing file wins.
func NewManifest(candidates []string, logger logging.Logger) *Manifest {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manifest{
		candidates: candidates,
		logger:     logger.WithComponent("manifest"),
	}
}

// Resolve maps a component name to its chunk file. A cache miss triggers
// one fallback reload before giving up on that component silently.
func (m *Manifest) Resolve(name string) (string, bool) {
	m.mu.RLock()
	loaded := m.loaded
	chunk, ok := m.entries[name]
	m.mu.RUnlock()

	if ok {
		return chunk, true
	}
	if loaded {
		// One fallback lookup: the bundler may have emitted a fresh
		// manifest since the last load.
		if err := m.Reload(); err != nil {
			return "", false
		}
		m.mu.RLock()
		chunk, ok = m.entries[name]
		m.mu.RUnlock()
		return chunk, ok
	}

	if err := m.Reload(); err != nil {
		return "", false
	}
	m.mu.RLock()
	chunk, ok = m.entries[name]
	m.mu.RUnlock()
	return chunk, ok
}

// Reload reads the first existing candidate file and swaps the entry map
// wholesale. When no candidate exists the manifest becomes empty but
// loaded, so requests proceed without hydration scripts.
func (m *Manifest) Reload() error {
	fresh := make(map[string]string)

	for _, path := range m.candidates {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading manifest %s: %w", path, err)
		}

		if err := json.Unmarshal(raw, &fresh); err != nil {
			return fmt.Errorf("parsing manifest %s: %w", path, err)
		}

		m.logger.Debug(context.Background(), "manifest loaded", "path", path, "entries", len(fresh))
		break
	}

	m.mu.Lock()
	m.entries = fresh
	m.loaded = true
	m.mu.Unlock()

	return nil
}

// Invalidate discards the cached map so the next resolve reloads from disk.
// Used in development when the bundler rewrites chunks.
func (m *Manifest) Invalidate() {
	m.mu.Lock()
	m.entries = nil
	m.loaded = false
	m.mu.Unlock()
}

// Entries returns a copy of the current map.
func (m *Manifest) Entries() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
