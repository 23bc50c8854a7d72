// Package registry implements the declarative module/controller/route
// registry: structured definitions built by explicit registration calls at
// module-initialization time, stored in typed registries keyed by stable
// identifiers.
package registry

import "sync"

// Metadata is generic key/target-scoped storage. Builders stash structured
// data about a controller or handler under (target, key) pairs; targets are
// stable string identifiers.
type Metadata struct {
	mu   sync.RWMutex
	data map[string]map[string]interface{}
}

// NewMetadata creates an empty metadata store.
func NewMetadata() *Metadata {
	return &Metadata{data: make(map[string]map[string]interface{})}
}

// Set stores a value under (target, key).
func (m *Metadata) Set(target, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[target]
	if !ok {
		bucket = make(map[string]interface{})
		m.data[target] = bucket
	}
	bucket[key] = value
}

// Get retrieves the value stored under (target, key).
func (m *Metadata) Get(target, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.data[target]
	if !ok {
		return nil, false
	}
	value, ok := bucket[key]
	return value, ok
}

// Has reports whether a value exists under (target, key).
func (m *Metadata) Has(target, key string) bool {
	_, ok := m.Get(target, key)
	return ok
}

// Keys returns all keys recorded for a target.
func (m *Metadata) Keys(target string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.data[target]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	return keys
}

// Targets returns all targets with recorded metadata.
func (m *Metadata) Targets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := make([]string, 0, len(m.data))
	for t := range m.data {
		targets = append(targets, t)
	}
	return targets
}
