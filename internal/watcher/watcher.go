// Package watcher provides the development-mode file watcher: fsnotify
// events debounced into change batches that drive manifest invalidation and
// browser live reload.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// ChangeEvent is one debounced file change.
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType classifies a file change.
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
	EventRenamed
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Filter decides whether a changed path is interesting. All registered
// filters must accept a path for it to reach handlers.
type Filter func(path string) bool

// Handler receives a debounced batch of changes.
type Handler func(events []ChangeEvent)

// Watcher watches directories and delivers debounced change batches. Rapid
// bursts (an editor save, a build writing many chunks) collapse into one
// batch per path.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   logging.Logger
	delay    time.Duration
	filters  []Filter
	handlers []Handler

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]ChangeEvent
}

// New creates a watcher with the given debounce delay.
func New(delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		fsw:     fsw,
		logger:  logger.WithComponent("watcher"),
		delay:   delay,
		pending: make(map[string]ChangeEvent),
	}, nil
}

// AddFilter registers a path filter.
func (w *Watcher) AddFilter(filter Filter) {
	w.filters = append(w.filters, filter)
}

// AddHandler registers a batch handler.
func (w *Watcher) AddHandler(handler Handler) {
	w.handlers = append(w.handlers, handler)
}

// Add watches a single directory. Missing directories are skipped silently
// so a project without build output yet can still start.
func (w *Watcher) Add(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return w.fsw.Add(dir)
}

// AddRecursive watches a directory tree.
func (w *Watcher) AddRecursive(root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Start runs the watch loop until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close stops watching and releases the underlying notifier.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.observe(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (w *Watcher) observe(event fsnotify.Event) {
	for _, filter := range w.filters {
		if !filter(event.Name) {
			return
		}
	}

	var typ EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		typ = EventCreated
	case event.Op.Has(fsnotify.Write):
		typ = EventModified
	case event.Op.Has(fsnotify.Remove):
		typ = EventDeleted
	case event.Op.Has(fsnotify.Rename):
		typ = EventRenamed
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Last event per path wins within a debounce window.
	w.pending[event.Name] = ChangeEvent{Type: typ, Path: event.Name}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	events := make([]ChangeEvent, 0, len(w.pending))
	for _, e := range w.pending {
		events = append(events, e)
	}
	w.pending = make(map[string]ChangeEvent)
	w.mu.Unlock()

	for _, handler := range w.handlers {
		handler(events)
	}
}

// BuildArtifactFilter accepts the files the hydration runtime cares about:
// chunk output, the manifest, and stylesheets.
func BuildArtifactFilter(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".css", ".json":
		return true
	}
	return false
}

// LocaleFilter accepts locale dictionary files.
func LocaleFilter(path string) bool {
	return filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml"
}

// NoHiddenFilter rejects dotfile directories like .git.
func NoHiddenFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".fresco" {
			return false
		}
	}
	return true
}
