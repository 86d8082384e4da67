// Package metrics exports Prometheus metrics for the gateway.
//
// Metrics (namespace "voygen" by default):
//
//   - http_requests_total, http_request_duration_seconds
//   - forward_calls_total, forward_call_duration_seconds
//   - chat_proxy_errors_total, chat_backend_up, chat_backend_exits_total
//   - journal_dropped_total, journal_pruned_total
//
// Collectors are registered on a private registry exposed by Handler.
package metrics
