// Package server provides the Voygen gateway HTTP server.
//
// This package ties together the gateway components (handlers, middleware,
// chat proxy, static client) and manages the server lifecycle.
//
// # Basic Usage
//
//	registry, err := mcp.NewRegistry(cfg.Upstreams, mcp.Options{Metrics: collector})
//	if err != nil {
//	    return err
//	}
//	defer registry.Close()
//
//	srv := server.NewServer(cfg, server.Dependencies{
//	    Forwarder: registry,
//	    Extractor: content.NewExtractor(nil, version),
//	    Metrics:   collector,
//	    Version:   version,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled or Stop is called, then shuts down
// gracefully within server.shutdown_timeout. Signal handling belongs to the
// caller.
//
// # Routes
//
//   - GET /health - Liveness, always {"ok": true, ...}
//   - GET /ready - Readiness checks (upstreams, chat backend, journal)
//   - GET /metrics - Prometheus metrics (path configurable)
//   - POST /voygen/extract/hotels, POST /voygen/extract/rooms
//   - POST /voygen/import-from-url/content, POST /voygen/import-from-url/parse
//   - POST /voygen/publish/proposal, POST /voygen/publish/preview
//   - GET /voygen/publish/templates
//   - GET /voygen/{extract,import-from-url,publish}/status
//   - GET /health/chat - Chat backend probe (chat enabled)
//   - /api, /oauth - Reverse proxy to the chat backend (chat enabled)
//   - / - Chat client static files with SPA fallback when chat.static_dir
//     is set, otherwise root info on GET / and 404 JSON elsewhere
//
// Every registered route tags the request context with its pattern, so
// logs and journal entries of upstream calls name the route.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. BodyLimit: Caps request bodies, except under the chat prefixes
//  2. CORS: Adds Cross-Origin Resource Sharing headers
//  3. Metrics: Records request counts and latency
//  4. RequestID: Generates unique request ID for tracing
//  5. Logging: Logs request/response details
//  6. Recovery: Recovers from panics and returns 500 error
package server
