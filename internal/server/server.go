// Package server hosts a Fresco application over HTTP: static mounts and
// build artifacts in front of the dynamic pipeline, CORS, the development
// live-reload endpoint, health reporting, and graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/hydration"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/watcher"
)

// HealthPath reports server liveness and build state.
const HealthPath = "/__fresco/health"

// watchDebounce groups build-output bursts into one reload.
const watchDebounce = 300 * time.Millisecond

// Server owns the HTTP listener and the request ordering in front of the
// dynamic pipeline: reserved endpoints first, then build artifacts, then
// static mounts, then the router.
type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	pipeline http.Handler
	manifest *hydration.Manifest

	hub   *Hub
	watch *watcher.Watcher

	mu         sync.Mutex
	httpServer *http.Server
	started    time.Time
}

// New creates a server around the dynamic pipeline. The manifest is used for
// development invalidation and may be nil when hydration is unused.
func New(cfg *config.Config, pipeline http.Handler, manifest *hydration.Manifest, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger.WithComponent("server"),
		pipeline: pipeline,
		manifest: manifest,
	}
	if cfg.IsDevelopment() && cfg.Development.HotReload {
		s.hub = NewHub(logger)
	}
	return s
}

// Hub exposes the live-reload hub, nil outside development hot reload.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ServeHTTP implements the full request ordering.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == HealthPath {
		s.handleHealth(w, r)
		return
	}
	if s.hub != nil && r.URL.Path == s.cfg.Development.ReloadPath {
		s.hub.ServeWS(w, r, s.cfg.Server.AllowedOrigins)
		return
	}

	if s.cfg.Server.CORS {
		if done := s.applyCORS(w, r); done {
			return
		}
	}

	if strings.HasPrefix(r.URL.Path, s.cfg.Hydration.BuildPrefix) {
		if s.serveBuildArtifact(w, r) {
			return
		}
		http.NotFound(w, r)
		return
	}

	if s.serveStaticMount(w, r) {
		return
	}

	s.pipeline.ServeHTTP(w, r)
}

// applyCORS writes CORS headers and terminates preflights. Returns true when
// the request was fully handled.
func (s *Server) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin != "" {
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if s.cfg.IsDevelopment() {
			// Wildcard only outside production.
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
	}

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func (s *Server) isAllowedOrigin(origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	status := map[string]interface{}{
		"status":      "ok",
		"environment": s.cfg.Server.Environment,
	}
	if !started.IsZero() {
		status["uptime"] = time.Since(started).Round(time.Second).String()
	}
	if s.hub != nil {
		status["reload_clients"] = s.hub.ClientCount()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error(r.Context(), err, "failed to write health response")
	}
}

// Start binds the listener and serves until the context is cancelled or the
// listener fails. Development mode also starts the reload hub and the build
// output watcher.
func (s *Server) Start(ctx context.Context) error {
	if s.hub != nil {
		go s.hub.Run(ctx)
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "file watcher unavailable, live reload degraded")
		}
	}

	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.started = time.Now()
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info(ctx, "server listening",
		"address", s.cfg.Address(), "environment", s.cfg.Server.Environment)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// startWatcher wires the development watcher: any build-output change
// invalidates the manifest and pushes a reload to connected browsers.
func (s *Server) startWatcher(ctx context.Context) error {
	w, err := watcher.New(watchDebounce, s.logger)
	if err != nil {
		return err
	}
	s.watch = w

	w.AddFilter(watcher.NoHiddenFilter)
	w.AddFilter(watcher.BuildArtifactFilter)
	w.AddHandler(func(events []watcher.ChangeEvent) {
		changed := make([]string, 0, len(events))
		for _, e := range events {
			changed = append(changed, e.Path)
		}
		if s.manifest != nil {
			s.manifest.Invalidate()
		}
		s.logger.Debug(ctx, "build output changed", "files", len(changed))
		s.hub.BroadcastReload(changed...)
	})

	for _, dir := range []string{s.cfg.Hydration.ChunksDir, s.cfg.Hydration.AssetsDir} {
		if err := w.AddRecursive(dir); err != nil {
			return err
		}
	}

	w.Start(ctx)
	return nil
}

// Shutdown drains in-flight requests and stops the watcher.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watch != nil {
		if err := s.watch.Close(); err != nil {
			s.logger.Warn(ctx, err, "failed to close watcher")
		}
	}

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info(ctx, "server shutting down")
	return srv.Shutdown(ctx)
}
