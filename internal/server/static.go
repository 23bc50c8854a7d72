package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// immutableCacheControl is set on build outputs, which carry content hashes
// in their file names and never change in place.
const immutableCacheControl = "public, max-age=31536000, immutable"

// serveBuildArtifact serves a file under the reserved build prefix from the
// assets or chunks directory, whichever has it. Returns false when neither
// does so the caller can 404.
func (s *Server) serveBuildArtifact(w http.ResponseWriter, r *http.Request) bool {
	rel := strings.TrimPrefix(r.URL.Path, s.cfg.Hydration.BuildPrefix)
	if rel == "" {
		return false
	}

	for _, dir := range []string{s.cfg.Hydration.ChunksDir, s.cfg.Hydration.AssetsDir} {
		full, ok := resolveWithin(dir, rel)
		if !ok {
			continue
		}
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		w.Header().Set("Cache-Control", immutableCacheControl)
		http.ServeFile(w, r, full)
		return true
	}
	return false
}

// serveStaticMount tries each configured mount in order. A request for an
// extensionless path inside a mount falls back to that directory's
// index.html, which is how prebuilt static pages are published.
func (s *Server) serveStaticMount(w http.ResponseWriter, r *http.Request) bool {
	for _, mount := range s.cfg.Static.Mounts {
		prefix := mount.Prefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if r.URL.Path != mount.Prefix && !strings.HasPrefix(r.URL.Path, prefix) {
			continue
		}

		rel := strings.TrimPrefix(r.URL.Path, mount.Prefix)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			rel = "index.html"
		}

		full, ok := resolveWithin(mount.Dir, rel)
		if !ok {
			return false
		}

		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			full = filepath.Join(full, "index.html")
			info, err = os.Stat(full)
		}
		if err != nil && path.Ext(rel) == "" {
			// Extensionless miss: try the html document with that name.
			if alt, altOK := resolveWithin(mount.Dir, rel+".html"); altOK {
				if _, aerr := os.Stat(alt); aerr == nil {
					full, info, err = alt, nil, nil
				}
			}
		}
		if err != nil || (info != nil && info.IsDir()) {
			continue
		}

		http.ServeFile(w, r, full)
		return true
	}
	return false
}

// resolveWithin joins a relative request path onto a root directory and
// rejects any result that escapes the root.
func resolveWithin(root, rel string) (string, bool) {
	if strings.Contains(rel, "..") {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(rel))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	if absFull != absRoot && !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
