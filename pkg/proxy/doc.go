// Package proxy holds the HTTP plumbing shared by the gateway's routes.
//
// # Request Bodies
//
// ParseJSONBody decodes a request into a Body, a JSON object whose values
// keep their original bytes. Handlers check required fields with Body.Has,
// which applies JavaScript truthiness, and forward values with Body.Value
// so hotels, rooms and other payloads reach the upstream unchanged.
//
// # Errors
//
// Input problems are RequestErrors: missing fields and invalid values map to
// 400, an oversized body to 413. Anything else a route returns is treated as
// an integration failure:
//
//	HTTP/1.1 500 Internal Server Error
//	{"error": "Failed to extract hotels", "message": "Something went wrong"}
//
// The message field carries the underlying error only in development.
//
// # Subpackages
//
//   - types: error envelopes and health/status bodies
//   - middleware: request ID, logging, recovery, CORS, body limit, metrics
//   - handlers: health, status and forwarding routes
package proxy
