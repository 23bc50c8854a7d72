package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/fresco-dev/fresco/internal/di"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/hydration"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/version"
)

// welcomeModule is the application hosted when no project modules are
// supplied. It exercises a rendered page with an island, a layout, and a
// plain JSON route.
func welcomeModule() *registry.ModuleDef {
	return registry.NewModule("welcome").
		Controller(func(r di.Resolver) (*registry.ControllerDef, error) {
			return registry.NewController("WelcomeController", "").
				Layout(welcomeLayout).
				Get("/", func(rc *httpx.RequestContext, args []interface{}) (interface{}, error) {
					return map[string]interface{}{
						"version": version.Current(),
					}, nil
				}, registry.WithRender(welcomePage),
					registry.WithHead(registry.Head{Title: "Fresco"})).
				Get("/api/info", func(rc *httpx.RequestContext, args []interface{}) (interface{}, error) {
					return version.Get(), nil
				}), nil
		})
}

func welcomeLayout(head registry.Head, child templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>",
			head.Title); err != nil {
			return err
		}
		if err := child.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func welcomePage(props interface{}) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		v := ""
		if m, ok := props.(map[string]interface{}); ok {
			v, _ = m["version"].(string)
		}
		if _, err := fmt.Fprintf(w,
			"<main><h1>Fresco</h1><p>Runtime %s is up. Edit your modules and go.</p>", v); err != nil {
			return err
		}
		banner := hydration.Island("WelcomeBanner", props, templ.ComponentFunc(
			func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<p>This banner hydrates when a client bundle is built.</p>")
				return err
			}))
		if err := banner.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>")
		return err
	})
}
