package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, DefaultBuildPrefix, cfg.Hydration.BuildPrefix)
	assert.NotEmpty(t, cfg.Hydration.ManifestPaths)
	assert.Equal(t, "en", cfg.I18n.DefaultLocale)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 99999
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadBuildPrefix(t *testing.T) {
	cfg := Default()
	cfg.Hydration.BuildPrefix = "_build/"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Hydration.BuildPrefix = "/_build"
	assert.Error(t, cfg.Validate())
}

func TestValidateStaticMounts(t *testing.T) {
	cfg := Default()
	cfg.Static.Mounts = []StaticMount{{Prefix: "assets/", Dir: "public"}}
	assert.Error(t, cfg.Validate())

	cfg.Static.Mounts = []StaticMount{{Prefix: "/assets/", Dir: ""}}
	assert.Error(t, cfg.Validate())

	cfg.Static.Mounts = []StaticMount{{Prefix: "/assets/", Dir: "public"}}
	assert.NoError(t, cfg.Validate())
}

func TestAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 3000
	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
}
