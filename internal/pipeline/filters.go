package pipeline

import (
	"net/http"

	"github.com/fresco-dev/fresco/internal/errors"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/response"
	"github.com/fresco-dev/fresco/internal/router"
)

// handleException resolves exception filters in order (method-scoped,
// controller-scoped, global, then the default fallback) and lets the first
// filter whose catch-type set matches produce the response. Filter failures
// fall through to the next candidate so the request always terminates in a
// complete response.
func (p *Pipeline) handleException(rc *httpx.RequestContext, match *router.Match, err error) *response.Response {
	host := &registry.FilterHost{Ctx: rc}

	var candidates []registry.ExceptionFilter
	if match != nil {
		host.Controller = match.Controller
		host.Route = match.Route
		candidates = append(candidates, match.Route.Filters...)
		candidates = append(candidates, match.Controller.Filters...)
	}
	candidates = append(candidates, p.filters...)

	for _, filter := range candidates {
		if !filter.CanHandle(err) {
			continue
		}
		resp, ferr := filter.Catch(err, host)
		if ferr != nil || resp == nil {
			p.logger.Warn(rc.Request.Context(), ferr, "exception filter failed",
				"filter", filter.Name)
			continue
		}
		return resp
	}

	return p.defaultFilter(rc, match, err)
}

// defaultFilter is the terminal fallback: a rendered error page when the
// route is render-marked and one is configured for the status, otherwise a
// JSON error body.
func (p *Pipeline) defaultFilter(rc *httpx.RequestContext, match *router.Match, err error) *response.Response {
	status := errors.StatusOf(err)

	if status >= http.StatusInternalServerError {
		p.logger.Error(rc.Request.Context(), err, "request failed",
			"method", rc.Request.Method, "path", rc.Request.URL.Path, "status", status)
	} else {
		p.logger.Debug(rc.Request.Context(), "request rejected",
			"method", rc.Request.Method, "path", rc.Request.URL.Path, "status", status)
	}

	if match != nil && match.Route.Render != nil {
		if resp, rerr := p.bridge.RenderErrorPage(rc, match.Controller, match.Route, status, err); rerr == nil {
			return resp
		}
		// Error-page render failed; fall back to the JSON body.
	}

	return response.JSON(map[string]interface{}{
		"statusCode": status,
		"message":    errors.MessageOf(err),
		"error":      http.StatusText(status),
	}).WithStatus(status)
}
