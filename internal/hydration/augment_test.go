package hydration

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html><html><head><title>t</title></head><body><main>content</main></body></html>`

// collectScripts walks a parsed document and returns the src of every
// script element plus the text of inline scripts.
func collectScripts(t *testing.T, markup string) (srcs []string, inline []string) {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			var src string
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					src = attr.Val
				}
			}
			if src != "" {
				srcs = append(srcs, src)
			} else if n.FirstChild != nil {
				inline = append(inline, n.FirstChild.Data)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return srcs, inline
}

func TestInjectChunkScripts(t *testing.T) {
	instances := []Instance{{ID: "Counter-0", Name: "Counter", Props: map[string]interface{}{"n": 1}}}
	out := Inject(page, instances, []string{"counter.abc.js"}, InjectOptions{BuildPrefix: "/_build/"})

	srcs, inline := collectScripts(t, out)
	assert.Equal(t, []string{"/_build/counter.abc.js"}, srcs)

	var hydrationData string
	for _, s := range inline {
		if strings.Contains(s, "__FRESCO__") {
			hydrationData = s
		}
	}
	require.NotEmpty(t, hydrationData, "head must carry the hydration data script")

	// Head script precedes the body chunk scripts.
	assert.Less(t, strings.Index(out, "__FRESCO__"), strings.Index(out, "counter.abc.js"))
	// Chunk tags sit before the body close.
	assert.Less(t, strings.Index(out, "counter.abc.js"), strings.Index(out, "</body>"))
	// Ready marker follows the chunks.
	assert.Contains(t, out, "fresco:ready")
}

func TestInjectHydrationDataRoundTrips(t *testing.T) {
	instances := []Instance{{ID: "Chart-0", Name: "Chart", Props: map[string]interface{}{"title": "Q1"}}}
	out := Inject(page, instances, nil, InjectOptions{})

	start := strings.Index(out, "window.__FRESCO__ = ") + len("window.__FRESCO__ = ")
	end := strings.Index(out[start:], ";</script>")
	require.Positive(t, end)

	var decoded []Instance
	require.NoError(t, json.Unmarshal([]byte(out[start:start+end]), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Chart-0", decoded[0].ID)
}

func TestInjectEscapesScriptBreakout(t *testing.T) {
	instances := []Instance{{
		ID:    "Evil-0",
		Name:  "Evil",
		Props: map[string]interface{}{"html": `</script><script>alert(1)</script>`},
	}}

	out := Inject(page, instances, nil, InjectOptions{})

	// The props payload must not be able to terminate the data script.
	_, inline := collectScripts(t, out)
	for _, s := range inline {
		assert.NotContains(t, s, "alert(1)</script>")
	}
	assert.NotContains(t, out, `"html":"</script>`)
}

func TestInjectNoInstancesNoHeadScript(t *testing.T) {
	out := Inject(page, nil, nil, InjectOptions{})
	assert.NotContains(t, out, "__FRESCO__")
	assert.NotContains(t, out, "fresco:ready")
	assert.Equal(t, page, out)
}

func TestInjectDevAppendsLiveReloadClient(t *testing.T) {
	out := Inject(page, nil, nil, InjectOptions{Dev: true, ReloadPath: "/__fresco/reload"})
	assert.Contains(t, out, "/__fresco/reload")
	assert.Contains(t, out, "full_reload")
	assert.Less(t, strings.Index(out, "full_reload"), strings.Index(out, "</body>"))
}

func TestInjectWithoutHeadOrBodyAppends(t *testing.T) {
	fragment := `<div>partial</div>`
	instances := []Instance{{ID: "X-0", Name: "X"}}
	out := Inject(fragment, instances, []string{"x.js"}, InjectOptions{BuildPrefix: "/_build/"})

	assert.True(t, strings.HasPrefix(out, fragment))
	assert.Contains(t, out, "__FRESCO__")
	assert.Contains(t, out, "/_build/x.js")
}

func TestInjectCaseInsensitiveMarkers(t *testing.T) {
	upper := `<HTML><HEAD></HEAD><BODY></BODY></HTML>`
	instances := []Instance{{ID: "X-0", Name: "X"}}
	out := Inject(upper, instances, []string{"x.js"}, InjectOptions{BuildPrefix: "/_build/"})

	assert.Less(t, strings.Index(out, "__FRESCO__"), strings.Index(out, "</HEAD>"))
	assert.Less(t, strings.Index(out, "x.js"), strings.Index(out, "</BODY>"))
}
