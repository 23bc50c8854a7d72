// Package app assembles a Fresco application: the dependency container, the
// module runtime, the router, the render bridge, the request pipeline, and
// the HTTP server, wired in dependency order from one configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/di"
	"github.com/fresco-dev/fresco/internal/hydration"
	"github.com/fresco-dev/fresco/internal/i18n"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/pipeline"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/render"
	"github.com/fresco-dev/fresco/internal/router"
	"github.com/fresco-dev/fresco/internal/server"
)

// Well-known container tokens registered by the host so providers and
// controller factories can resolve runtime services.
const (
	TokenConfig   di.Token = "fresco.config"
	TokenLogger   di.Token = "fresco.logger"
	TokenManifest di.Token = "fresco.manifest"
	TokenI18n     di.Token = "fresco.i18n"
)

// App is a fully wired application. Construct with New, register behavior
// through the module definitions, then Start.
type App struct {
	cfg      *config.Config
	logger   logging.Logger
	runtime  *registry.Runtime
	router   *router.Router
	manifest *hydration.Manifest
	bridge   *render.Bridge
	pipeline *pipeline.Pipeline
	server   *server.Server
}

// New builds the application and registers every module depth-first.
// Controllers feed the router as they register, so route precedence follows
// module registration order.
func New(cfg *config.Config, logger logging.Logger, modules ...*registry.ModuleDef) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	container := di.NewContainer()
	manifest := hydration.NewManifest(cfg.Hydration.ManifestPaths, logger)

	container.RegisterAll(
		di.Value(TokenConfig, cfg),
		di.Value(TokenLogger, logger),
		di.Value(TokenManifest, manifest),
	)

	if cfg.I18n.LocalesDir != "" {
		store, err := i18n.NewStore(cfg.I18n, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing i18n: %w", err)
		}
		container.Register(di.Value(TokenI18n, store))
	}

	rt := router.New(logger)
	bridge := render.NewBridge(cfg, manifest, logger)
	pipe := pipeline.New(rt, bridge, logger)
	pipe.Use(pipeline.RequestLogger(logger))

	runtime := registry.NewRuntime(container, logger)
	runtime.OnController = rt.Register

	a := &App{
		cfg:      cfg,
		logger:   logger.WithComponent("app"),
		runtime:  runtime,
		router:   rt,
		manifest: manifest,
		bridge:   bridge,
		pipeline: pipe,
	}

	for _, module := range modules {
		if err := runtime.RegisterModule(module); err != nil {
			return nil, fmt.Errorf("registering module: %w", err)
		}
	}

	a.server = server.New(cfg, http.HandlerFunc(pipe.Handle), manifest, logger)
	return a, nil
}

// Register adds modules after construction, e.g. from plugins.
func (a *App) Register(modules ...*registry.ModuleDef) error {
	for _, module := range modules {
		if err := a.runtime.RegisterModule(module); err != nil {
			return err
		}
	}
	return nil
}

// Use appends request middleware, outermost first.
func (a *App) Use(mw ...pipeline.Middleware) *App {
	a.pipeline.Use(mw...)
	return a
}

// Catch registers globally-scoped exception filters.
func (a *App) Catch(filters ...registry.ExceptionFilter) *App {
	a.pipeline.AddFilter(filters...)
	return a
}

// ErrorPage configures a rendered error page for a status code, used when a
// render-marked route fails.
func (a *App) ErrorPage(status int, page registry.PageComponent) *App {
	a.bridge.SetErrorPage(status, page)
	return a
}

// Runtime exposes the module registry.
func (a *App) Runtime() *registry.Runtime {
	return a.runtime
}

// Container exposes the dependency container.
func (a *App) Container() *di.Container {
	return a.runtime.Container()
}

// Server exposes the HTTP host, mainly for tests driving ServeHTTP directly.
func (a *App) Server() *server.Server {
	return a.server
}

// Start runs the HTTP server until the context is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info(ctx, "application starting",
		"modules", len(a.runtime.Modules()),
		"controllers", len(a.runtime.Controllers()))
	return a.server.Start(ctx)
}

// Shutdown drains the server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
