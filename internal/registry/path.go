package registry

import "strings"

// NormalizePath canonicalizes a path template: leading slash ensured,
// repeated slashes collapsed, trailing slash stripped (except for the root
// path itself). An empty segment stays empty so controller base paths can
// be blank.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(p) + 1)
	if p[0] != '/' {
		b.WriteByte('/')
	}

	lastSlash := false
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if lastSlash {
				continue
			}
			lastSlash = true
		} else {
			lastSlash = false
		}
		b.WriteByte(p[i])
	}

	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out
}

// JoinPaths joins a controller base path with a route path template and
// normalizes the result.
func JoinPaths(base, route string) string {
	joined := base + "/" + route
	normalized := NormalizePath(joined)
	if normalized == "" {
		return "/"
	}
	return normalized
}
