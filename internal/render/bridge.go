// Package render bridges server rendering to client hydration: it renders a
// component tree to markup, tracks the interactive sub-components touched
// during the request, resolves each to a pre-built script chunk, and
// injects hydration data and script tags into the markup.
package render

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/hydration"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/response"
)

// Bridge turns handler props into complete HTML responses.
type Bridge struct {
	cfg      *config.Config
	manifest *hydration.Manifest
	logger   logging.Logger

	mu         sync.RWMutex
	errorPages map[int]registry.PageComponent
}

// NewBridge creates a bridge over a chunk manifest.
func NewBridge(cfg *config.Config, manifest *hydration.Manifest, logger logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Bridge{
		cfg:        cfg,
		manifest:   manifest,
		logger:     logger.WithComponent("render"),
		errorPages: make(map[int]registry.PageComponent),
	}
}

// Manifest returns the bridge's chunk manifest.
func (b *Bridge) Manifest() *hydration.Manifest {
	return b.manifest
}

// SetErrorPage configures the error component rendered for a status code on
// render-marked routes.
func (b *Bridge) SetErrorPage(status int, page registry.PageComponent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorPages[status] = page
}

// ErrorPage returns the configured error component for a status, if any.
func (b *Bridge) ErrorPage(status int) (registry.PageComponent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	page, ok := b.errorPages[status]
	return page, ok
}

// Render produces a complete HTML response for a render-marked route. The
// handler's return value is the page props. A fresh hydration context is
// bound to this render's call tree only; concurrent renders never share
// one. Render errors propagate to exception handling rather than being
// swallowed here.
func (b *Bridge) Render(rc *httpx.RequestContext, ctrl *registry.ControllerDef, route *registry.RouteDef, props interface{}) (*response.Response, error) {
	opts := route.Render
	if opts == nil || opts.Page == nil {
		return nil, fmt.Errorf("route %s %s is not marked for rendering", route.Method, route.Path)
	}

	head := opts.Head
	if opts.HeadFunc != nil {
		head = opts.HeadFunc(rc, props)
	}

	layout := opts.Layout
	if layout == nil && ctrl != nil {
		layout = ctrl.DefaultLayout
	}

	markup, err := b.renderTree(rc.Request.Context(), opts.Page(props), layout, head)
	if err != nil {
		return nil, err
	}

	return response.HTML(markup), nil
}

// RenderErrorPage renders the configured error component for a status in
// the same layout convention as normal pages. The caller falls back to a
// JSON error body when no page is configured or this render itself fails.
func (b *Bridge) RenderErrorPage(rc *httpx.RequestContext, ctrl *registry.ControllerDef, route *registry.RouteDef, status int, cause error) (*response.Response, error) {
	page, ok := b.ErrorPage(status)
	if !ok {
		return nil, fmt.Errorf("no error page configured for status %d", status)
	}

	var layout registry.Layout
	if route != nil && route.Render != nil && route.Render.Layout != nil {
		layout = route.Render.Layout
	} else if ctrl != nil {
		layout = ctrl.DefaultLayout
	}

	props := map[string]interface{}{"statusCode": status}
	if cause != nil {
		props["message"] = cause.Error()
	}

	head := registry.Head{Title: fmt.Sprintf("%d %s", status, http.StatusText(status))}

	markup, err := b.renderTree(rc.Request.Context(), page(props), layout, head)
	if err != nil {
		return nil, err
	}

	return response.HTML(markup).WithStatus(status), nil
}

// renderTree runs the underlying component-rendering library over the
// (optionally layout-wrapped) tree with a fresh hydration context, then
// augments the markup with hydration data and chunk script tags.
func (b *Bridge) renderTree(parent context.Context, page templ.Component, layout registry.Layout, head registry.Head) (string, error) {
	root := page
	if layout != nil {
		root = layout(head, page)
	}

	hc := hydration.NewContext()
	ctx := hydration.WithContext(parent, hc)

	var sb strings.Builder
	if err := root.Render(ctx, &sb); err != nil {
		return "", fmt.Errorf("component render failed: %w", err)
	}

	var chunks []string
	for _, name := range hc.Names() {
		chunk, ok := b.manifest.Resolve(name)
		if !ok {
			// Unresolvable components are dropped silently; the markup
			// stays server-rendered without interactivity.
			b.logger.Debug(ctx, "no chunk for component", "component", name)
			continue
		}
		chunks = append(chunks, chunk)
	}

	markup := hydration.Inject(sb.String(), hc.Instances(), chunks, hydration.InjectOptions{
		BuildPrefix: b.cfg.Hydration.BuildPrefix,
		Dev:         b.cfg.IsDevelopment() && b.cfg.Development.HotReload,
		ReloadPath:  b.cfg.Development.ReloadPath,
	})

	return markup, nil
}
