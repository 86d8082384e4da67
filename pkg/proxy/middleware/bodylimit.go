package middleware

import (
	"net/http"
	"strings"
)

// BodyLimitMiddleware caps request bodies at limit bytes with
// http.MaxBytesReader. Requests under skipPrefixes (the proxied chat API,
// which carries file uploads) are not limited. A body announced larger than
// the limit is rejected with 413 before the handler runs.
//
// Example usage:
//
//	handler = BodyLimitMiddleware(cfg.Server.MaxBodyBytes, []string{"/api", "/oauth"})(handler)
func BodyLimitMiddleware(limit int64, skipPrefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody || underPrefix(r.URL.Path, skipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error": "Request body too large",
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func underPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
