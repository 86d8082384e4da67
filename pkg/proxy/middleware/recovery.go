package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"voygen/gateway/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// response {"error": "Internal server error", "message": ...}. The panic value
// is written to the message only when expose is set; it is always logged
// with the stack trace. A panic after the handler has started its response
// aborts the connection instead, so the client sees a truncated reply rather
// than a 500 body appended to partial output.
//
// Example usage:
//
//	handler = RecoveryMiddleware(cfg.Server.IsDevelopment())(handler)
func RecoveryMiddleware(expose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.written {
					panic(http.ErrAbortHandler)
				}

				errResp := types.NewServerError(types.ErrorInternal, fmt.Sprint(err), expose)
				writeJSON(w, http.StatusInternalServerError, errResp)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
