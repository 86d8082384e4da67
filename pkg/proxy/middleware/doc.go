// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common functionality
// across all HTTP requests: request ID generation, logging, metrics, CORS,
// body size limits and panic recovery.
//
// # Middleware Chain
//
// The server wraps its mux as:
//
//	handler = Recovery(Logging(RequestID(Metrics(CORS(BodyLimit(mux))))))
//
// Order (innermost to outermost):
//  1. BodyLimit: Cap JSON bodies; the proxied chat API is exempt
//  2. CORS: Add Cross-Origin Resource Sharing headers, answer preflights
//  3. Metrics: Count requests by method and status
//  4. RequestID: Generate and propagate request ID
//  5. Logging: Log request/response details
//  6. Recovery: Recover from panics
//
// # Request ID
//
// RequestIDMiddleware accepts a client X-Request-ID of up to 128 bytes and
// otherwise generates a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID so handler logs and journal
// entries of upstream calls carry it.
//
// # Logging
//
// LoggingMiddleware uses log/slog. Completed requests are logged at info,
// 4xx at warn and 5xx at error:
//
//	{
//	  "time": "2026-03-02T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/voygen/extract/hotels",
//	  "status": 200,
//	  "latency_ms": 182,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// # CORS
//
// CORS settings come from the server section of the configuration:
//
//	server:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["*"]
//	    allow_credentials: true
//
// With credentials allowed the request origin is echoed with Vary: Origin,
// since browsers reject a wildcard for credentialed requests.
//
// # Recovery
//
// RecoveryMiddleware converts handler panics into the gateway's 500 body:
//
//	{"error": "Internal server error", "message": "Something went wrong"}
//
// The panic value replaces the generic message only in development. The
// stack trace is always logged. http.ErrAbortHandler is re-panicked so the
// server aborts the connection as usual.
//
// # Response Writer
//
// The status-capturing writer implements http.Flusher and Unwrap, so
// streamed chat responses pass through Logging and Metrics unbuffered.
package middleware
