package i18n

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocales(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := writeLocales(t, map[string]string{
		"en.yaml": "greeting: Hello\nnav:\n  home: Home\n  about: About\n",
		"de.yaml": "greeting: Hallo\nnav:\n  home: Start\n",
	})

	store, err := NewStore(config.I18nConfig{
		LocalesDir:    dir,
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	}, nil)
	require.NoError(t, err)
	return store
}

func TestDictionaryFlattensNestedKeys(t *testing.T) {
	store := testStore(t)

	en := store.Dictionary("en")
	assert.Equal(t, "Hello", en.Get("greeting"))
	assert.Equal(t, "Home", en.Get("nav.home"))
	assert.Equal(t, "About", en.Get("nav.about"))
}

func TestDictionaryMissingKeyReturnsKey(t *testing.T) {
	store := testStore(t)
	assert.Equal(t, "nav.missing", store.Dictionary("en").Get("nav.missing"))
}

func TestDictionaryUnknownLocaleFallsBack(t *testing.T) {
	store := testStore(t)
	assert.Equal(t, "Hello", store.Dictionary("fr").Get("greeting"))
}

func TestLocaleFromAcceptLanguage(t *testing.T) {
	store := testStore(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")
	assert.Equal(t, "de", store.Locale(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "ja-JP")
	assert.Equal(t, "en", store.Locale(r), "unsupported language falls back to default")
}

func TestLocaleCookieOverridesAcceptLanguage(t *testing.T) {
	store := testStore(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "en")
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "de"})
	assert.Equal(t, "de", store.Locale(r))
}

func TestLocaleQueryOverridesEverything(t *testing.T) {
	store := testStore(t)

	r := httptest.NewRequest(http.MethodGet, "/?locale=de", nil)
	r.Header.Set("Accept-Language", "en")
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
	assert.Equal(t, "de", store.Locale(r))
}

func TestLocaleInvalidOverrideIgnored(t *testing.T) {
	store := testStore(t)

	r := httptest.NewRequest(http.MethodGet, "/?locale=zz-not-a-tag!", nil)
	r.Header.Set("Accept-Language", "de")
	assert.Equal(t, "de", store.Locale(r))
}

func TestLocaleDefaultWithNoSignals(t *testing.T) {
	store := testStore(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "en", store.Locale(r))
}

func TestMissingDictionaryFileYieldsEmptyDictionary(t *testing.T) {
	dir := writeLocales(t, map[string]string{"en.yaml": "greeting: Hello\n"})

	store, err := NewStore(config.I18nConfig{
		LocalesDir:    dir,
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	}, nil)
	require.NoError(t, err)

	// "de" negotiates but has no messages of its own.
	assert.Equal(t, "greeting", store.Dictionary("de").Get("greeting"))
}

func TestInvalidLocaleTagRejectedAtConstruction(t *testing.T) {
	_, err := NewStore(config.I18nConfig{
		LocalesDir:    t.TempDir(),
		DefaultLocale: "en",
		Locales:       []string{"en", "not a tag"},
	}, nil)
	assert.Error(t, err)
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := writeLocales(t, map[string]string{"en.yaml": "greeting: Hello\n"})

	store, err := NewStore(config.I18nConfig{
		LocalesDir:    dir,
		DefaultLocale: "en",
		Locales:       []string{"en"},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("greeting: Hi\n"), 0o644))
	store.Reload(dir)

	assert.Equal(t, "Hi", store.Dictionary("en").Get("greeting"))
}

func TestParamDescriptors(t *testing.T) {
	store := testStore(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "de")
	rc := httpx.NewRequestContext(r)

	locDesc := LocaleParam(0, store)
	assert.Equal(t, "de", locDesc.Factory(rc))

	dictDesc := DictionaryParam(1, store)
	dict, ok := dictDesc.Factory(rc).(Dictionary)
	require.True(t, ok)
	assert.Equal(t, "Hallo", dict.Get("greeting"))
}
