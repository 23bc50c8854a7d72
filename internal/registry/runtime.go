package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/fresco-dev/fresco/internal/di"
	"github.com/fresco-dev/fresco/internal/logging"
)

// Runtime is the process-wide module and controller registry. One instance
// is constructed at boot and passed by reference to the router, pipeline,
// and bridge; tests construct a fresh instance per test.
type Runtime struct {
	container   *di.Container
	metadata    *Metadata
	logger      logging.Logger
	mu          sync.RWMutex
	modules     []*ModuleDef
	seen        map[string]bool
	controllers []*ControllerDef

	// OnController, when set, is invoked for every controller as it
	// registers. The application host uses it to feed the router.
	OnController func(*ControllerDef) error
}

// NewRuntime creates a runtime around a container.
func NewRuntime(container *di.Container, logger logging.Logger) *Runtime {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runtime{
		container: container,
		metadata:  NewMetadata(),
		logger:    logger.WithComponent("registry"),
		seen:      make(map[string]bool),
	}
}

// Container returns the runtime's DI container.
func (rt *Runtime) Container() *di.Container {
	return rt.container
}

// Metadata returns the runtime's metadata store.
func (rt *Runtime) Metadata() *Metadata {
	return rt.metadata
}

// RegisterModule initializes a module tree depth-first: imported modules
// register before the importing module's own providers and controllers, so
// dependency order is respected. A visited set guards against import
// cycles; re-registering an already-seen module is a no-op.
func (rt *Runtime) RegisterModule(module *ModuleDef) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.registerLocked(module)
}

func (rt *Runtime) registerLocked(module *ModuleDef) error {
	if module == nil {
		return fmt.Errorf("cannot register nil module")
	}
	if rt.seen[module.Name] {
		return nil
	}
	rt.seen[module.Name] = true

	for _, imported := range module.Imports {
		if err := rt.registerLocked(imported); err != nil {
			return fmt.Errorf("module %q: %w", module.Name, err)
		}
	}

	for _, recipe := range module.Providers {
		rt.container.Register(recipe)
	}

	for _, factory := range module.Controllers {
		ctrl, err := factory(rt.container)
		if err != nil {
			return fmt.Errorf("module %q: controller construction failed: %w", module.Name, err)
		}
		if err := rt.registerController(ctrl); err != nil {
			return fmt.Errorf("module %q: %w", module.Name, err)
		}
	}

	rt.modules = append(rt.modules, module)
	rt.metadata.Set(module.Name, "module", module)
	rt.metadata.Set(module.Name, "global", module.Global)
	rt.metadata.Set(module.Name, "exports", module.Exports)

	rt.logger.Debug(context.Background(), "module registered",
		"module", module.Name,
		"providers", len(module.Providers),
		"controllers", len(module.Controllers))

	return nil
}

// registerController records a controller definition, marks it injectable
// under its own name, and stashes its metadata.
func (rt *Runtime) registerController(ctrl *ControllerDef) error {
	if ctrl == nil {
		return fmt.Errorf("controller factory returned nil definition")
	}

	rt.controllers = append(rt.controllers, ctrl)

	if !rt.container.Has(ctrl.Name) {
		rt.container.Register(di.Value(ctrl.Name, ctrl))
	}

	rt.metadata.Set(ctrl.Name, "path", ctrl.BasePath)
	if ctrl.HostPattern != "" {
		rt.metadata.Set(ctrl.Name, "host", ctrl.HostPattern)
	}
	for i, route := range ctrl.Routes {
		rt.metadata.Set(ctrl.Name, fmt.Sprintf("route.%d", i), route)
	}

	if rt.OnController != nil {
		if err := rt.OnController(ctrl); err != nil {
			return fmt.Errorf("controller %q: %w", ctrl.Name, err)
		}
	}

	rt.logger.Debug(context.Background(), "controller registered",
		"controller", ctrl.Name,
		"base", ctrl.BasePath,
		"routes", len(ctrl.Routes))

	return nil
}

// Controllers returns the registered controllers in registration order.
func (rt *Runtime) Controllers() []*ControllerDef {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]*ControllerDef, len(rt.controllers))
	copy(out, rt.controllers)
	return out
}

// Modules returns the registered modules in initialization order.
func (rt *Runtime) Modules() []*ModuleDef {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]*ModuleDef, len(rt.modules))
	copy(out, rt.modules)
	return out
}
