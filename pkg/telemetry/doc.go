// Package telemetry groups the gateway's observability packages.
//
// # Components
//
//   - logging: slog setup with a runtime-adjustable level and secret redaction
//   - metrics: Prometheus collectors for HTTP traffic, upstream MCP calls,
//     the chat proxy, and the call journal
//   - health: liveness and readiness checks with HTTP endpoints
//
// # Secret Protection
//
// Upstream auth tokens travel in configuration and occasionally in error
// text. When redaction is enabled, bearer tokens and the configured tokens
// themselves are replaced with "[REDACTED]" before a record is written.
package telemetry
