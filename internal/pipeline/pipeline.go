// Package pipeline drives a request from context construction through the
// middleware chain, routing, parameter extraction, handler invocation,
// response shaping, and exception handling.
package pipeline

import (
	"net/http"

	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/render"
	"github.com/fresco-dev/fresco/internal/response"
	"github.com/fresco-dev/fresco/internal/router"
)

// Next continues the middleware chain. A middleware that declines to call
// it short-circuits the request; that is the runtime's only cancellation
// primitive.
type Next func() error

// Middleware receives the request context and a continuation. Onion-style:
// the first registered middleware is outermost; code before next() runs on
// the way in, code after runs on the way out.
type Middleware func(rc *httpx.RequestContext, next Next) error

// Pipeline dispatches matched routes. One instance is constructed at boot
// and shared by every request.
type Pipeline struct {
	router      *router.Router
	bridge      *render.Bridge
	logger      logging.Logger
	middlewares []Middleware
	filters     []registry.ExceptionFilter
}

// New creates a pipeline over a router and render bridge.
func New(rt *router.Router, bridge *render.Bridge, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		router: rt,
		bridge: bridge,
		logger: logger.WithComponent("pipeline"),
	}
}

// Use appends middleware. Registration order is execution order from the
// outside in.
func (p *Pipeline) Use(mw ...Middleware) {
	p.middlewares = append(p.middlewares, mw...)
}

// AddFilter registers globally-scoped exception filters, consulted after
// method- and controller-scoped ones.
func (p *Pipeline) AddFilter(filters ...registry.ExceptionFilter) {
	p.filters = append(p.filters, filters...)
}

// Handle runs one request through the pipeline and writes the response.
// Exception handling can intercept at any stage and always terminates in a
// written response.
func (p *Pipeline) Handle(w http.ResponseWriter, r *http.Request) {
	rc := httpx.NewRequestContext(r)

	var match *router.Match

	core := func() error {
		m, resp, err := p.dispatch(rc)
		match = m
		if err != nil {
			return err
		}
		rc.Result = resp
		return nil
	}

	// Compose the onion: the first registered middleware wraps everything
	// that follows.
	next := Next(core)
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		mw := p.middlewares[i]
		inner := next
		next = func() error { return mw(rc, inner) }
	}

	var resp *response.Response
	if err := next(); err != nil {
		resp = p.handleException(rc, match, err)
	} else {
		resp = rc.Result
		if resp == nil {
			// Middleware short-circuited without recording a response.
			resp = response.Empty(rc.Builder.StatusCode(http.StatusOK))
		}
	}

	resp = rc.Builder.Apply(resp)
	if err := resp.Write(w); err != nil {
		p.logger.Error(r.Context(), err, "failed to write response",
			"method", r.Method, "path", r.URL.Path)
	}
}

// dispatch resolves the route, extracts handler arguments, invokes the
// handler, and shapes its return value.
func (p *Pipeline) dispatch(rc *httpx.RequestContext) (*router.Match, *response.Response, error) {
	r := rc.Request

	match, err := p.router.Match(r.Method, r.URL.Path, r.Host)
	if err != nil {
		return nil, nil, err
	}
	rc.Params = match.Params

	// A route-level redirect short-circuits parameter extraction, handler
	// invocation, and response shaping entirely.
	if match.Route.Redirect != nil {
		return match, response.Redirect(match.Route.Redirect.Location, match.Route.Redirect.Status), nil
	}

	args := extractArgs(rc, match.Route.Params)

	value, err := match.Route.Handler(rc, args)
	if err != nil {
		return match, nil, err
	}

	resp, err := p.shape(rc, match, value)
	return match, resp, err
}

// shape turns the handler's return value into a prepared response.
func (p *Pipeline) shape(rc *httpx.RequestContext, match *router.Match, value interface{}) (*response.Response, error) {
	if match.Route.Render != nil {
		return p.bridge.Render(rc, match.Controller, match.Route, value)
	}

	switch v := value.(type) {
	case nil:
		return response.Empty(rc.Builder.StatusCode(http.StatusNoContent)), nil
	case *response.Response:
		// Already prepared; pass through unchanged.
		return v, nil
	default:
		return response.JSON(v), nil
	}
}
