package registry

import "github.com/fresco-dev/fresco/internal/di"

// ControllerFactory constructs a controller definition, resolving the
// controller's dependencies through the container. Called once at module
// registration, after the module's providers are in place.
type ControllerFactory func(r di.Resolver) (*ControllerDef, error)

// ModuleDef declares a module: imported modules, controller factories,
// provider recipes, and exported tokens. Modules register once at boot and
// are never unregistered.
type ModuleDef struct {
	Name        string
	Imports     []*ModuleDef
	Controllers []ControllerFactory
	Providers   []di.Recipe
	Exports     []di.Token
	Global      bool
}

// NewModule creates an empty module definition.
func NewModule(name string) *ModuleDef {
	return &ModuleDef{Name: name}
}

// Import adds imported modules. Imports initialize before the importing
// module's own providers and controllers.
func (m *ModuleDef) Import(modules ...*ModuleDef) *ModuleDef {
	m.Imports = append(m.Imports, modules...)
	return m
}

// Controller adds controller factories to the module.
func (m *ModuleDef) Controller(factories ...ControllerFactory) *ModuleDef {
	m.Controllers = append(m.Controllers, factories...)
	return m
}

// Provide adds provider recipes registered with the container when the
// module initializes.
func (m *ModuleDef) Provide(recipes ...di.Recipe) *ModuleDef {
	m.Providers = append(m.Providers, recipes...)
	return m
}

// Export marks tokens as exported from this module.
func (m *ModuleDef) Export(tokens ...di.Token) *ModuleDef {
	m.Exports = append(m.Exports, tokens...)
	return m
}

// MarkGlobal flags the module as global.
func (m *ModuleDef) MarkGlobal() *ModuleDef {
	m.Global = true
	return m
}
