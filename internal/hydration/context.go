// Package hydration tracks which interactive components a server render
// touches, resolves them to pre-built script chunks through a manifest, and
// injects hydration data and script tags into the rendered markup.
package hydration

import (
	"context"
	"fmt"
	"sync"
)

// Instance is one interactive component registration made during a render:
// a unique instance id, the component's declared name, its JSON-safe props,
// and an optional list key.
type Instance struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Props interface{} `json:"props"`
	Key   string      `json:"key,omitempty"`
}

// Context collects component registrations for exactly one render. It is
// created at the top of a render, bound to that render's call tree through
// context.Context, and consumed once when the markup is augmented. Never
// shared across renders.
type Context struct {
	mu      sync.Mutex
	seq     int
	entries []Instance
}

// NewContext creates an empty hydration context.
func NewContext() *Context {
	return &Context{}
}

// Register records an interactive component instance and returns its
// assigned instance id. Props must already be sanitized by the caller.
func (c *Context) Register(name string, props interface{}, key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := fmt.Sprintf("%s-%d", name, c.seq)
	c.seq++
	c.entries = append(c.entries, Instance{ID: id, Name: name, Props: props, Key: key})
	return id
}

// Instances returns the registrations in render order.
func (c *Context) Instances() []Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Instance, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the distinct component names in first-registration order.
func (c *Context) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.entries))
	var names []string
	for _, e := range c.entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	return names
}

// ctxKey is the context.Context key binding a hydration context to one
// render's call tree. The value is set only at the top of a render and is
// invisible to concurrently interleaved renders.
type ctxKey struct{}

// WithContext binds a hydration context to a render's call tree.
func WithContext(parent context.Context, hc *Context) context.Context {
	return context.WithValue(parent, ctxKey{}, hc)
}

// FromContext returns the hydration context active for this call tree, if
// any. Components rendered outside a bridge render see none and skip
// registration.
func FromContext(ctx context.Context) (*Context, bool) {
	hc, ok := ctx.Value(ctxKey{}).(*Context)
	return hc, ok
}
