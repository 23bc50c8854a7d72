package hydration

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Island wraps a component for client-side hydration. On render it
// registers the component's name and sanitized props into the hydration
// context bound to this render's call tree and wraps the server markup in a
// marker element the client script locates.
//
// Opting into hydration is explicit: components that are never wrapped
// render as plain static markup. Rendering an Island outside a bridge
// render (no active context) also degrades to static markup.
func Island(name string, props interface{}, child templ.Component) templ.Component {
	return island(name, props, "", child)
}

// IslandWithKey is Island with an explicit list key, for components
// rendered repeatedly inside loops.
func IslandWithKey(name string, props interface{}, key string, child templ.Component) templ.Component {
	return island(name, props, key, child)
}

func island(name string, props interface{}, key string, child templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hc, active := FromContext(ctx)
		if !active {
			return child.Render(ctx, w)
		}

		id := hc.Register(name, Sanitize(props), key)

		if _, err := fmt.Fprintf(w, `<div data-fresco-id="%s" data-fresco-component="%s">`,
			html.EscapeString(id), html.EscapeString(name)); err != nil {
			return err
		}
		if err := child.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}
