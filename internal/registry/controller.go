package registry

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/response"
)

// MethodAll is the catch-all verb matching any HTTP method.
const MethodAll = "ALL"

// Handler is a route handler: it receives the request context and the
// positionally-extracted arguments and returns a value the pipeline shapes
// into a response (or a prepared *response.Response passed through as-is).
type Handler func(rc *httpx.RequestContext, args []interface{}) (interface{}, error)

// PageComponent builds the page component tree for a set of props.
type PageComponent func(props interface{}) templ.Component

// Layout wraps a page component with the surrounding document, receiving
// the resolved head metadata.
type Layout func(head Head, child templ.Component) templ.Component

// Head is the page metadata merged into layout props.
type Head struct {
	Title string
	Meta  map[string]string
}

// HeadResolver computes head metadata from the request and handler props.
type HeadResolver func(rc *httpx.RequestContext, props interface{}) Head

// RenderOptions marks a route for component rendering. The handler's return
// value becomes the page props.
type RenderOptions struct {
	Page     PageComponent
	Layout   Layout // overrides the controller default when set
	Head     Head
	HeadFunc HeadResolver // takes precedence over the static Head
}

// RedirectSpec short-circuits response shaping for a route.
type RedirectSpec struct {
	Location string
	Status   int
}

// RouteDef is one verb+path registration on a controller. Immutable once
// created; verb registration order on a controller is preserved.
type RouteDef struct {
	Method   string
	Path     string
	Handler  Handler
	Params   []ParamDescriptor
	Render   *RenderOptions
	Redirect *RedirectSpec
	Filters  []ExceptionFilter
}

// ControllerDef is a controller registration: a normalized base path, an
// optional host constraint, and an ordered route list.
type ControllerDef struct {
	Name          string
	BasePath      string
	HostPattern   string
	Routes        []*RouteDef
	DefaultLayout Layout
	Filters       []ExceptionFilter
}

// RouteOption customizes one route registration.
type RouteOption func(*RouteDef)

// WithParams attaches the parameter descriptor list.
func WithParams(params ...ParamDescriptor) RouteOption {
	return func(rd *RouteDef) { rd.Params = append(rd.Params, params...) }
}

// WithRender marks the route for component rendering with the given page.
func WithRender(page PageComponent) RouteOption {
	return func(rd *RouteDef) {
		if rd.Render == nil {
			rd.Render = &RenderOptions{}
		}
		rd.Render.Page = page
	}
}

// WithLayout overrides the controller-wide layout for this route.
func WithLayout(layout Layout) RouteOption {
	return func(rd *RouteDef) {
		if rd.Render == nil {
			rd.Render = &RenderOptions{}
		}
		rd.Render.Layout = layout
	}
}

// WithHead sets static head metadata for a rendered route.
func WithHead(head Head) RouteOption {
	return func(rd *RouteDef) {
		if rd.Render == nil {
			rd.Render = &RenderOptions{}
		}
		rd.Render.Head = head
	}
}

// WithHeadFunc sets dynamic head metadata for a rendered route.
func WithHeadFunc(fn HeadResolver) RouteOption {
	return func(rd *RouteDef) {
		if rd.Render == nil {
			rd.Render = &RenderOptions{}
		}
		rd.Render.HeadFunc = fn
	}
}

// WithRedirect short-circuits the route to a redirect.
func WithRedirect(location string, status int) RouteOption {
	return func(rd *RouteDef) {
		rd.Redirect = &RedirectSpec{Location: location, Status: status}
	}
}

// WithFilters attaches method-scoped exception filters.
func WithFilters(filters ...ExceptionFilter) RouteOption {
	return func(rd *RouteDef) { rd.Filters = append(rd.Filters, filters...) }
}

// NewController creates a controller definition with a normalized base path
// (empty or leading-slash, no trailing slash except root).
func NewController(name, basePath string) *ControllerDef {
	return &ControllerDef{
		Name:     name,
		BasePath: NormalizePath(basePath),
	}
}

// Host constrains the controller to one host.
func (c *ControllerDef) Host(pattern string) *ControllerDef {
	c.HostPattern = pattern
	return c
}

// Layout sets the controller-wide default layout for rendered routes.
func (c *ControllerDef) Layout(layout Layout) *ControllerDef {
	c.DefaultLayout = layout
	return c
}

// Catch attaches controller-scoped exception filters.
func (c *ControllerDef) Catch(filters ...ExceptionFilter) *ControllerDef {
	c.Filters = append(c.Filters, filters...)
	return c
}

// Route appends a route with an arbitrary verb. Routes match in the order
// they are registered.
func (c *ControllerDef) Route(method, path string, handler Handler, opts ...RouteOption) *ControllerDef {
	rd := &RouteDef{
		Method:  method,
		Path:    NormalizePath(path),
		Handler: handler,
	}
	for _, opt := range opts {
		opt(rd)
	}
	c.Routes = append(c.Routes, rd)
	return c
}

// Get registers a GET route.
func (c *ControllerDef) Get(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodGet, path, handler, opts...)
}

// Post registers a POST route.
func (c *ControllerDef) Post(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodPost, path, handler, opts...)
}

// Put registers a PUT route.
func (c *ControllerDef) Put(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodPut, path, handler, opts...)
}

// Patch registers a PATCH route.
func (c *ControllerDef) Patch(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodPatch, path, handler, opts...)
}

// Delete registers a DELETE route.
func (c *ControllerDef) Delete(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodDelete, path, handler, opts...)
}

// Head registers a HEAD route.
func (c *ControllerDef) Head(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodHead, path, handler, opts...)
}

// Options registers an OPTIONS route.
func (c *ControllerDef) Options(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(http.MethodOptions, path, handler, opts...)
}

// All registers a catch-all route matching any verb.
func (c *ControllerDef) All(path string, handler Handler, opts ...RouteOption) *ControllerDef {
	return c.Route(MethodAll, path, handler, opts...)
}

// FilterHost exposes the request, the response builder, and the execution
// context to an exception filter's Catch.
type FilterHost struct {
	Ctx        *httpx.RequestContext
	Controller *ControllerDef
	Route      *RouteDef
}

// ExceptionFilter handles errors thrown anywhere in the pipeline. A filter
// with an empty Matches set catches everything; otherwise the first
// predicate matching the thrown error selects the filter.
type ExceptionFilter struct {
	Name    string
	Matches []func(error) bool
	Catch   func(err error, host *FilterHost) (*response.Response, error)
}

// CanHandle reports whether the filter's catch-type set accepts the error.
func (f ExceptionFilter) CanHandle(err error) bool {
	if len(f.Matches) == 0 {
		return true
	}
	for _, match := range f.Matches {
		if match(err) {
			return true
		}
	}
	return false
}
