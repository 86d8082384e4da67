package chatapp

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"
)

// Cache-Control values for static assets.
const (
	CacheImmutable = "public, max-age=31536000, immutable"
	CacheNoStore   = "no-store"
)

const indexFile = "index.html"

// hashedName matches file names carrying a content hash, such as
// index-3f9a2c1b.js or vendor.BxY_12ab.css. The hash is the last segment
// before the extension.
var hashedName = regexp.MustCompile(`[.-]([A-Za-z0-9_]{8,})\.[A-Za-z0-9]+$`)

// StaticHandler serves the chat application's built assets with an SPA
// fallback to index.html for browser navigations.
type StaticHandler struct {
	root        http.FileSystem
	files       http.Handler
	apiPrefixes []string
	fallback    http.Handler
}

// NewStaticHandler serves files from dir. Requests that match no file and
// are not browser navigations go to fallback.
func NewStaticHandler(dir string, apiPrefixes []string, fallback http.Handler) *StaticHandler {
	root := http.Dir(dir)
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	return &StaticHandler{
		root:        root,
		files:       http.FileServer(root),
		apiPrefixes: apiPrefixes,
		fallback:    fallback,
	}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && h.exists(name) {
		setCacheHeaders(w, name)
		h.files.ServeHTTP(w, r)
		return
	}

	if h.isNavigation(r, name) && h.exists("/"+indexFile) {
		h.serveIndex(w, r)
		return
	}

	h.fallback.ServeHTTP(w, r)
}

// exists reports whether name is a regular file, or a directory holding
// an index.html.
func (h *StaticHandler) exists(name string) bool {
	f, err := h.root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	idx, err := h.root.Open(path.Join(name, indexFile))
	if err != nil {
		return false
	}
	idx.Close()
	return true
}

func (h *StaticHandler) isNavigation(r *http.Request, name string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		return false
	}
	return !hasPrefix(name, h.apiPrefixes)
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := h.root.Open("/" + indexFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.fallback.ServeHTTP(w, r)
			return
		}
		http.Error(w, "failed to open index", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "failed to stat index", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", CacheNoStore)
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}

func setCacheHeaders(w http.ResponseWriter, name string) {
	base := path.Base(name)
	switch {
	case name == "/" || base == indexFile || strings.HasSuffix(base, ".html"):
		w.Header().Set("Cache-Control", CacheNoStore)
	case IsHashedAsset(name):
		w.Header().Set("Cache-Control", CacheImmutable)
	}
}

// IsHashedAsset reports whether the asset at name carries a content hash
// and can be cached forever. A hash segment must contain a digit, so words
// like Inter-SemiBold.woff2 or vendor-packages.js do not qualify.
func IsHashedAsset(name string) bool {
	m := hashedName.FindStringSubmatch(path.Base(name))
	if m == nil {
		return false
	}
	return strings.ContainsAny(m[1], "0123456789")
}

// hasPrefix reports whether name equals a prefix or lies under one.
func hasPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if name == prefix || strings.HasPrefix(name, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
