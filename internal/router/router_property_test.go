//go:build property

package router

import (
	"strings"
	"testing"

	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPathNormalizationProperties validates invariants of the path
// normalizer over arbitrary slash-and-segment inputs.
func TestPathNormalizationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	segmentGen := gen.RegexMatch(`[a-z0-9:*]{1,8}`)
	pathGen := gen.SliceOfN(4, segmentGen).Map(func(segs []string) string {
		return strings.Join(segs, "/")
	})

	properties.Property("normalization is idempotent", prop.ForAll(
		func(p string) bool {
			once := registry.NormalizePath(p)
			return registry.NormalizePath(once) == once
		},
		pathGen,
	))

	properties.Property("normalized paths never contain double slashes", prop.ForAll(
		func(p string) bool {
			return !strings.Contains(registry.NormalizePath("//"+p+"//"), "//")
		},
		pathGen,
	))

	properties.Property("non-root normalized paths never end with a slash", prop.ForAll(
		func(p string) bool {
			out := registry.NormalizePath(p)
			return out == "/" || out == "" || !strings.HasSuffix(out, "/")
		},
		pathGen,
	))

	properties.Property("joined paths always start at the root", prop.ForAll(
		func(base, route string) bool {
			return strings.HasPrefix(registry.JoinPaths(base, route), "/")
		},
		pathGen, pathGen,
	))

	properties.TestingRun(t)
}
