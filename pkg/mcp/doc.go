// Package mcp calls the remote MCP services the gateway forwards to.
//
// Two upstreams are known: "data" (the travel database service) and
// "publish" (the GitHub publishing service). Each is reached through a
// Caller chosen by the upstream's transport:
//
//   - rpc: POST {"method": ..., "params": ...} to URL+CallPath and relay the
//     JSON response body unchanged.
//   - streamable-http: an MCP session over streamable HTTP, invoking each
//     method as a tool.
//
// An upstream without a URL is still registered; calls to it fail with
// NotConfiguredError so routes can answer with the message operators know.
//
// Registry owns the callers, swaps them on configuration reload, and records
// every call in metrics and the call journal.
package mcp
