// Package handlers provides HTTP request handlers for the gateway.
//
// The forwarding handlers validate a minimal set of required fields, call a
// method on a remote MCP service through a Forwarder, and relay the JSON
// result unchanged inside an {"ok": true, ...} envelope.
//
// # Handler Types
//
// Forwarding handlers:
//   - ExtractHandler: hotel and room ingestion (data upstream)
//   - ImportHandler: URL content extraction and trip page parsing
//   - PublishHandler: proposal generation, preview, templates, publishing
//     (data and publish upstreams)
//
// Informational handlers:
//   - HealthHandler: liveness, GET /health
//   - RootHandler: GET / when no chat client is served
//   - StatusHandler: per-service endpoint listings
//   - ChatHealthHandler: chat backend probe, GET /health/chat
//
// # Request Flow
//
// Each forwarding handler follows the same pattern:
//
//  1. Parse the JSON body into a proxy.Body (values kept as raw JSON)
//  2. Check required fields with JavaScript truthiness
//  3. Build the fixed upstream params, applying defaults
//  4. Call the upstream through the Forwarder
//  5. Write the upstream JSON inside the response envelope
//
// # Error Handling
//
// Missing fields and malformed JSON yield 400 with {"error": ...}. Upstream
// and extraction failures yield 500 with the route's failure text:
//
//	{"error": "Failed to extract hotels", "message": "Something went wrong"}
//
// The underlying error text replaces the generic message only when the
// server runs in development.
//
// # Thread Safety
//
// Handlers hold no request state and are safe for concurrent use.
package handlers
