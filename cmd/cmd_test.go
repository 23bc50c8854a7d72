package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fresco-dev/fresco/internal/app"
	"github.com/fresco-dev/fresco/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["version"])
}

func TestWelcomeModuleServes(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Environment = "production"

	a, err := app.New(cfg, nil, welcomeModule())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1>Fresco</h1>")
	assert.Contains(t, w.Body.String(), `data-fresco-component="WelcomeBanner"`)

	w = httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"go_version"`)
}
