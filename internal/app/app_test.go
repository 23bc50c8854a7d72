package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/a-h/templ"
	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/di"
	"github.com/fresco-dev/fresco/internal/errors"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/i18n"
	"github.com/fresco-dev/fresco/internal/pipeline"
	"github.com/fresco-dev/fresco/internal/registry"
	"github.com/fresco-dev/fresco/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userStore struct {
	users map[string]string
}

func usersModule() *registry.ModuleDef {
	return registry.NewModule("users").
		Provide(di.Provide("users.store", func(r di.Resolver) (interface{}, error) {
			return &userStore{users: map[string]string{"1": "Ada", "2": "Grace"}}, nil
		})).
		Controller(func(r di.Resolver) (*registry.ControllerDef, error) {
			store, err := r.Resolve("users.store")
			if err != nil {
				return nil, err
			}
			s := store.(*userStore)

			ctrl := registry.NewController("UsersController", "/users").
				Get("/:id", func(rc *httpx.RequestContext, args []interface{}) (interface{}, error) {
					id := args[0].(string)
					name, ok := s.users[id]
					if !ok {
						return nil, errors.NotFound("user not found")
					}
					return map[string]string{"id": id, "name": name}, nil
				}, registry.WithParams(registry.Path(0, "id")))
			return ctrl, nil
		})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Environment = "production"
	return cfg
}

func TestAppServesModuleRoutes(t *testing.T) {
	a, err := New(testConfig(), nil, usersModule())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ada", body["name"])
}

func TestAppHandlerErrorsShapeAsJSON(t *testing.T) {
	a, err := New(testConfig(), nil, usersModule())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestAppImportedModuleProvidersVisible(t *testing.T) {
	shared := registry.NewModule("shared").
		Provide(di.Value("greeting", "hello from shared"))

	web := registry.NewModule("web").
		Import(shared).
		Controller(func(r di.Resolver) (*registry.ControllerDef, error) {
			greeting, err := r.Resolve("greeting")
			if err != nil {
				return nil, err
			}
			msg := greeting.(string)
			return registry.NewController("GreetController", "/greet").
				Get("", func(rc *httpx.RequestContext, args []interface{}) (interface{}, error) {
					return map[string]string{"message": msg}, nil
				}), nil
		})

	a, err := New(testConfig(), nil, web)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/greet", nil))
	assert.Contains(t, w.Body.String(), "hello from shared")
}

func TestAppGlobalMiddlewareAndFilters(t *testing.T) {
	a, err := New(testConfig(), nil, usersModule())
	require.NoError(t, err)

	a.Use(func(rc *httpx.RequestContext, next pipeline.Next) error {
		rc.Builder.Header("X-Request-Id", "req-1")
		return next()
	})
	a.Catch(registry.ExceptionFilter{
		Name: "flag-missing-users",
		Catch: func(err error, host *registry.FilterHost) (*response.Response, error) {
			return response.JSON(map[string]string{"handledBy": "global"}).
				WithStatus(errors.StatusOf(err)), nil
		},
	})

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "global")
}

func TestAppWellKnownTokens(t *testing.T) {
	cfg := testConfig()
	a, err := New(cfg, nil)
	require.NoError(t, err)

	resolved, err := a.Container().Resolve(TokenConfig)
	require.NoError(t, err)
	assert.Same(t, cfg, resolved)

	_, err = a.Container().Resolve(TokenManifest)
	assert.NoError(t, err)
}

func TestAppErrorPage(t *testing.T) {
	page := func(props interface{}) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<h1>lost</h1>")
			return err
		})
	}

	mod := registry.NewModule("pages").
		Controller(func(r di.Resolver) (*registry.ControllerDef, error) {
			return registry.NewController("PagesController", "").
				Get("/missing", func(rc *httpx.RequestContext, args []interface{}) (interface{}, error) {
					return nil, errors.NotFound("gone")
				}, registry.WithRender(page)), nil
		})

	a, err := New(testConfig(), nil, mod)
	require.NoError(t, err)
	a.ErrorPage(http.StatusNotFound, page)

	w := httptest.NewRecorder()
	a.Server().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>lost</h1>")
}

func TestAppI18nTokenRegisteredWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("greeting: Hello\n"), 0o644))

	cfg := testConfig()
	cfg.I18n.LocalesDir = dir
	cfg.I18n.Locales = []string{"en"}

	a, err := New(cfg, nil)
	require.NoError(t, err)

	resolved, err := a.Container().Resolve(TokenI18n)
	require.NoError(t, err)
	store := resolved.(*i18n.Store)
	assert.Equal(t, "Hello", store.Dictionary("en").Get("greeting"))

	// Unconfigured apps do not carry the token.
	b, err := New(testConfig(), nil)
	require.NoError(t, err)
	_, err = b.Container().Resolve(TokenI18n)
	assert.Error(t, err)
}

func TestAppShutdownWithoutStartIsNoop(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	assert.NoError(t, a.Shutdown(context.Background()))
}
