// Package config provides configuration management for Fresco applications
// using Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with a FRESCO_ prefix, and validation. It covers server
// settings, CORS, static mounts, hydration build artifacts, development
// options like hot reload, and the i18n collaborator.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBuildPrefix is the reserved URL prefix for build outputs
// (stylesheets and hydration chunks). Responses under it carry long-lived
// cache headers.
const DefaultBuildPrefix = "/_build/"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Static      StaticConfig      `yaml:"static"`
	Hydration   HydrationConfig   `yaml:"hydration"`
	Development DevelopmentConfig `yaml:"development"`
	I18n        I18nConfig        `yaml:"i18n"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Environment    string   `yaml:"environment"`
	CORS           bool     `yaml:"cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StaticMount maps a URL prefix to an on-disk directory. Mounts are checked
// in order before the dynamic router is consulted.
type StaticMount struct {
	Prefix string `yaml:"prefix"`
	Dir    string `yaml:"dir"`
}

type StaticConfig struct {
	Mounts []StaticMount `yaml:"mounts"`
}

type HydrationConfig struct {
	BuildPrefix   string   `yaml:"build_prefix"`
	AssetsDir     string   `yaml:"assets_dir"`
	ChunksDir     string   `yaml:"chunks_dir"`
	ManifestPaths []string `yaml:"manifest_paths"`
}

type DevelopmentConfig struct {
	HotReload  bool   `yaml:"hot_reload"`
	ReloadPath string `yaml:"reload_path"`
}

type I18nConfig struct {
	LocalesDir    string   `yaml:"locales_dir"`
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

// Load reads configuration from viper (config file plus FRESCO_ environment
// overrides) and applies defaults.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper slice handling: explicit keys win over the
	// unmarshalled struct when the struct came back empty.
	if viper.IsSet("hydration.manifest_paths") && len(config.Hydration.ManifestPaths) == 0 {
		config.Hydration.ManifestPaths = viper.GetStringSlice("hydration.manifest_paths")
	}
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("i18n.locales") && len(config.I18n.Locales) == 0 {
		config.I18n.Locales = viper.GetStringSlice("i18n.locales")
	}
	if viper.IsSet("development.hot_reload") {
		config.Development.HotReload = viper.GetBool("development.hot_reload")
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Hydration.BuildPrefix == "" {
		c.Hydration.BuildPrefix = DefaultBuildPrefix
	}
	if c.Hydration.AssetsDir == "" {
		c.Hydration.AssetsDir = ".fresco/build/assets"
	}
	if c.Hydration.ChunksDir == "" {
		c.Hydration.ChunksDir = ".fresco/build/chunks"
	}
	if len(c.Hydration.ManifestPaths) == 0 {
		c.Hydration.ManifestPaths = []string{
			filepath.Join(c.Hydration.ChunksDir, "manifest.json"),
			".fresco/build/manifest.json",
		}
	}
	if c.Development.ReloadPath == "" {
		c.Development.ReloadPath = "/__fresco/reload"
	}
	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "en"
	}
}

// Validate checks the configuration for values the runtime cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Hydration.BuildPrefix, "/") {
		return fmt.Errorf("build prefix %q must start with /", c.Hydration.BuildPrefix)
	}
	if !strings.HasSuffix(c.Hydration.BuildPrefix, "/") {
		return fmt.Errorf("build prefix %q must end with /", c.Hydration.BuildPrefix)
	}
	for _, mount := range c.Static.Mounts {
		if !strings.HasPrefix(mount.Prefix, "/") {
			return fmt.Errorf("static mount prefix %q must start with /", mount.Prefix)
		}
		if mount.Dir == "" {
			return fmt.Errorf("static mount %q has no directory", mount.Prefix)
		}
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Address returns the host:port the server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default returns a fully-defaulted configuration without touching viper.
// Tests and embedded uses construct configs this way.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}
