package hydration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// InjectOptions controls markup augmentation.
type InjectOptions struct {
	// BuildPrefix is the reserved URL prefix chunk paths are served under.
	BuildPrefix string
	// Dev appends the live-reload client when true.
	Dev bool
	// ReloadPath is the websocket endpoint the live-reload client dials.
	ReloadPath string
}

// Inject augments rendered markup with (a) a head script carrying the
// serialized per-instance hydration data and (b) before-body-close script
// tags for each resolved chunk, followed by a hydration-ready marker. In
// development a live-reload client is appended as well.
func Inject(markup string, instances []Instance, chunks []string, opts InjectOptions) string {
	var head strings.Builder
	if len(instances) > 0 {
		head.WriteString(`<script>window.__FRESCO__ = `)
		head.WriteString(encodeScriptJSON(instances))
		head.WriteString(`;</script>`)
	}

	var tail strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&tail, `<script type="module" src="%s" defer></script>`,
			joinChunkPath(opts.BuildPrefix, chunk))
	}
	if len(chunks) > 0 {
		tail.WriteString(`<script>window.dispatchEvent(new Event("fresco:ready"));</script>`)
	}
	if opts.Dev {
		tail.WriteString(liveReloadScript(opts.ReloadPath))
	}

	markup = insertBefore(markup, "</head>", head.String())
	markup = insertBefore(markup, "</body>", tail.String())
	return markup
}

// encodeScriptJSON serializes hydration data so it is safe inside an HTML
// script body: encoding/json's HTML escaping turns <, >, and & into \u
// escapes, which prevents a props string containing "</script>" from
// terminating the tag.
func encodeScriptJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// insertBefore inserts content before the last occurrence of the marker
// (case-insensitive). When the marker is absent the content is appended, so
// fragment responses still carry their scripts.
func insertBefore(markup, marker, content string) string {
	if content == "" {
		return markup
	}
	idx := lastIndexASCIIFold(markup, marker)
	if idx < 0 {
		return markup + content
	}
	return markup[:idx] + content + markup[idx:]
}

// lastIndexASCIIFold finds the last occurrence of an ASCII marker ignoring
// case, without the byte-length hazards of strings.ToLower on non-ASCII
// markup.
func lastIndexASCIIFold(s, marker string) int {
	n := len(marker)
	for i := len(s) - n; i >= 0; i-- {
		match := true
		for j := 0; j < n; j++ {
			a, b := s[i+j], marker[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func joinChunkPath(prefix, chunk string) string {
	if prefix == "" {
		prefix = "/"
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(chunk, "/")
}

// liveReloadScript is the development client: it dials the reload endpoint
// and reloads the page on a full_reload message, reconnecting with a small
// backoff when the server restarts.
func liveReloadScript(path string) string {
	if path == "" {
		path = "/__fresco/reload"
	}
	return `<script>(function(){
    var retry;
    function connect() {
        var proto = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(proto + '//' + window.location.host + '` + path + `');
        ws.onopen = function() { if (retry) { clearInterval(retry); retry = null; } };
        ws.onmessage = function(event) {
            var message = JSON.parse(event.data);
            if (message.type === 'full_reload') { window.location.reload(); }
        };
        ws.onclose = function() { if (!retry) { retry = setInterval(connect, 2000); } };
    }
    connect();
})();</script>`
}
