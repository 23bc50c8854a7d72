// Package i18n provides locale negotiation and dictionary lookup for Fresco
// applications. Dictionaries are flat YAML files, one per locale, loaded from
// a configured directory; locale negotiation uses the Accept-Language header
// with an optional cookie or query override.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/fresco-dev/fresco/internal/config"
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/logging"
	"github.com/fresco-dev/fresco/internal/registry"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// CookieName carries an explicit locale choice across requests. It wins over
// Accept-Language when present and supported.
const CookieName = "fresco_locale"

// QueryKey overrides the locale for a single request, e.g. ?locale=de.
const QueryKey = "locale"

// Source negotiates a request's locale and serves its message table. Store
// is the default implementation; applications may substitute their own.
type Source interface {
	Locale(r *http.Request) string
	Dictionary(locale string) Dictionary
}

// Dictionary is one locale's message table. Nested YAML mappings flatten to
// dot-joined keys ("nav.home").
type Dictionary map[string]string

// Get returns the message for a key, or the key itself when missing so a
// broken translation stays visible instead of rendering blank.
func (d Dictionary) Get(key string) string {
	if msg, ok := d[key]; ok {
		return msg
	}
	return key
}

// Store negotiates locales and serves dictionaries. Safe for concurrent use;
// dictionaries load once at construction.
type Store struct {
	defaultLocale string
	locales       []string
	matcher       language.Matcher
	logger        logging.Logger

	mu           sync.RWMutex
	dictionaries map[string]Dictionary
}

// NewStore builds a store from configuration, loading every configured
// locale's dictionary from cfg.LocalesDir. A locale with no dictionary file
// negotiates normally but falls back to an empty dictionary.
func NewStore(cfg config.I18nConfig, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	locales := cfg.Locales
	if len(locales) == 0 {
		locales = []string{cfg.DefaultLocale}
	}

	tags := make([]language.Tag, 0, len(locales))
	for _, loc := range locales {
		tag, err := language.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", loc, err)
		}
		tags = append(tags, tag)
	}

	s := &Store{
		defaultLocale: cfg.DefaultLocale,
		locales:       locales,
		matcher:       language.NewMatcher(tags),
		logger:        logger.WithComponent("i18n"),
		dictionaries:  make(map[string]Dictionary, len(locales)),
	}

	for _, loc := range locales {
		dict, err := loadDictionary(cfg.LocalesDir, loc)
		if err != nil {
			if os.IsNotExist(err) {
				s.dictionaries[loc] = Dictionary{}
				continue
			}
			return nil, fmt.Errorf("loading dictionary for %q: %w", loc, err)
		}
		s.dictionaries[loc] = dict
	}

	return s, nil
}

// loadDictionary reads and flattens one locale's YAML file.
func loadDictionary(dir, locale string) (Dictionary, error) {
	data, err := os.ReadFile(filepath.Join(dir, locale+".yaml"))
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	dict := Dictionary{}
	flatten("", raw, dict)
	return dict, nil
}

func flatten(prefix string, node map[string]interface{}, out Dictionary) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flatten(full, v, out)
		case string:
			out[full] = v
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

// Locales returns the configured locale list in registration order.
func (s *Store) Locales() []string {
	return s.locales
}

// DefaultLocale returns the fallback locale.
func (s *Store) DefaultLocale() string {
	return s.defaultLocale
}

// Locale negotiates the locale for a request: query override, then cookie,
// then Accept-Language, then the default. The result is always one of the
// configured locales.
func (s *Store) Locale(r *http.Request) string {
	if q := r.URL.Query().Get(QueryKey); q != "" {
		if loc, ok := s.supported(q); ok {
			return loc
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if loc, ok := s.supported(c.Value); ok {
			return loc
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			_, index, conf := s.matcher.Match(tags...)
			if conf > language.No && index < len(s.locales) {
				return s.locales[index]
			}
		}
	}

	return s.defaultLocale
}

// supported resolves a raw locale string against the configured set.
func (s *Store) supported(raw string) (string, bool) {
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, index, conf := s.matcher.Match(tag)
	if conf == language.No || index >= len(s.locales) {
		return "", false
	}
	return s.locales[index], true
}

// Dictionary returns the message table for a locale, falling back to the
// default locale's table for unknown locales.
func (s *Store) Dictionary(locale string) Dictionary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dict, ok := s.dictionaries[locale]; ok {
		return dict
	}
	return s.dictionaries[s.defaultLocale]
}

// Reload re-reads every dictionary from disk. Used by the development
// watcher when a locale file changes.
func (s *Store) Reload(dir string) {
	fresh := make(map[string]Dictionary, len(s.locales))
	for _, loc := range s.locales {
		dict, err := loadDictionary(dir, loc)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn(context.Background(), err, "failed to reload dictionary", "locale", loc)
			}
			dict = Dictionary{}
		}
		fresh[loc] = dict
	}

	s.mu.Lock()
	s.dictionaries = fresh
	s.mu.Unlock()
}

// LocaleParam builds a parameter descriptor injecting the negotiated locale
// string into a handler argument position.
func LocaleParam(index int, src Source) registry.ParamDescriptor {
	return registry.Custom(index, func(rc *httpx.RequestContext) interface{} {
		return src.Locale(rc.Request)
	})
}

// DictionaryParam builds a parameter descriptor injecting the negotiated
// locale's dictionary.
func DictionaryParam(index int, src Source) registry.ParamDescriptor {
	return registry.Custom(index, func(rc *httpx.RequestContext) interface{} {
		return src.Dictionary(src.Locale(rc.Request))
	})
}
