// Package router compiles registered route definitions into path matchers
// and performs method+path matching for incoming requests.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/fresco-dev/fresco/internal/errors"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/registry"
)

// CompiledRoute is a boot-time compiled matcher for one route definition.
// Read-only after compilation.
type CompiledRoute struct {
	Method     string
	Path       string
	Pattern    *regexp.Regexp
	ParamNames []string
	Route      *registry.RouteDef
	Controller *registry.ControllerDef
}

// Match is a successful routing decision with captured parameter bindings.
type Match struct {
	Route      *registry.RouteDef
	Controller *registry.ControllerDef
	Params     map[string]string
}

// Router matches requests against compiled routes in registration order.
// First match wins: more specific routes must be registered before more
// general ones that could also match the same path. This is a documented
// ordering contract, not a specificity ranking.
type Router struct {
	mu     sync.RWMutex
	routes []*CompiledRoute
	logger logging.Logger
}

// New creates an empty router.
func New(logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{logger: logger.WithComponent("router")}
}

// Register compiles every route of a controller definition and appends the
// compiled routes in declaration order.
func (r *Router) Register(ctrl *registry.ControllerDef) error {
	for _, route := range ctrl.Routes {
		full := registry.JoinPaths(ctrl.BasePath, route.Path)

		pattern, names, err := compilePattern(full)
		if err != nil {
			return fmt.Errorf("controller %q route %s %s: %w", ctrl.Name, route.Method, full, err)
		}

		compiled := &CompiledRoute{
			Method:     strings.ToUpper(route.Method),
			Path:       full,
			Pattern:    pattern,
			ParamNames: names,
			Route:      route,
			Controller: ctrl,
		}

		r.mu.Lock()
		r.routes = append(r.routes, compiled)
		r.mu.Unlock()

		r.logger.Debug(context.Background(), "route compiled",
			"method", compiled.Method, "path", full, "controller", ctrl.Name)
	}
	return nil
}

// Match scans compiled routes in registration order and returns the first
// whose verb and pattern match. The ALL verb matches any method; an empty
// host constraint on the controller matches any host. No match yields
// errors.ErrRouteNotFound.
func (r *Router) Match(method, pathname, host string) (*Match, error) {
	method = strings.ToUpper(method)
	pathname = registry.NormalizePath(pathname)
	if pathname == "" {
		pathname = "/"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		if route.Method != registry.MethodAll && route.Method != method {
			continue
		}
		if route.Controller.HostPattern != "" && !hostMatches(route.Controller.HostPattern, host) {
			continue
		}

		captures := route.Pattern.FindStringSubmatch(pathname)
		if captures == nil {
			continue
		}

		params := make(map[string]string, len(route.ParamNames))
		for i, name := range route.ParamNames {
			if i+1 < len(captures) {
				params[name] = captures[i+1]
			}
		}

		return &Match{Route: route.Route, Controller: route.Controller, Params: params}, nil
	}

	return nil, fmt.Errorf("%s %s: %w", method, pathname, errors.ErrRouteNotFound)
}

// Routes returns the compiled routes in registration order.
func (r *Router) Routes() []*CompiledRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CompiledRoute, len(r.routes))
	copy(out, r.routes)
	return out
}

// hostMatches compares a host constraint against the request host, ignoring
// any port.
func hostMatches(pattern, host string) bool {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return pattern == host
}

// compilePattern turns a normalized path template into an anchored regexp:
// ":name" segments become capturing groups matching one segment, "*"
// becomes a wildcard group. Capture names are recorded in declaration
// order; wildcard captures are named "*".
func compilePattern(path string) (*regexp.Regexp, []string, error) {
	var names []string
	var b strings.Builder
	b.WriteString("^")

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("/")
		}
		switch {
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return nil, nil, fmt.Errorf("empty parameter name in %q", path)
			}
			names = append(names, name)
			b.WriteString("([^/]+)")
		case seg == "*":
			names = append(names, "*")
			b.WriteString("(.*)")
		default:
			b.WriteString(regexp.QuoteMeta(seg))
		}
	}
	b.WriteString("$")

	pattern, err := regexp.Compile(b.String())
	if err != nil {
		return nil, nil, fmt.Errorf("compiling pattern for %q: %w", path, err)
	}
	return pattern, names, nil
}
