// Package health runs readiness checks for the gateway and serves them over
// HTTP.
//
// Components register a CheckFunc under a name. Critical checks (the data
// MCP upstream, the call journal) decide whether the gateway can take
// traffic; optional checks (the chat backend) only mark it degraded.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("data_mcp", registry.CheckConfigured("data"))
//	checker.RegisterOptionalCheck("chat_backend", prober.Check)
//	mux.Handle("GET /ready", checker.ReadinessHandler())
package health
