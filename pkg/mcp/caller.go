package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"voygen/gateway/pkg/config"
)

// Upstream names.
const (
	UpstreamData    = "data"
	UpstreamPublish = "publish"
)

// Caller invokes methods (MCP tools) on one upstream service.
type Caller interface {
	// Call invokes method with params and returns the upstream's JSON result
	// unchanged.
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Name returns the upstream name.
	Name() string

	// Health returns the call statistics of the upstream.
	Health() Health

	// Close releases connections held by the caller.
	Close() error
}

// Health summarizes recent calls to an upstream.
type Health struct {
	Configured          bool      `json:"configured"`
	Transport           string    `json:"transport"`
	TotalCalls          int64     `json:"total_calls"`
	FailedCalls         int64     `json:"failed_calls"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastSuccess         time.Time `json:"last_success,omitempty"`
}

// UnhealthyThreshold is the number of consecutive failures after which an
// upstream is reported unhealthy. Calls are still attempted.
const UnhealthyThreshold = 3

// Healthy reports whether the upstream is configured and below the
// consecutive failure threshold.
func (h Health) Healthy() bool {
	return h.Configured && h.ConsecutiveFailures < UnhealthyThreshold
}

type healthTracker struct {
	mu     sync.RWMutex
	health Health
}

func (t *healthTracker) record(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.health.TotalCalls++
	if err == nil {
		t.health.ConsecutiveFailures = 0
		t.health.LastError = ""
		t.health.LastSuccess = time.Now().UTC()
		return
	}
	t.health.FailedCalls++
	t.health.ConsecutiveFailures++
	t.health.LastError = err.Error()
}

func (t *healthTracker) snapshot() Health {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.health
}

// envNames maps upstreams to the variables operators set for them.
var envNames = map[string]string{
	UpstreamData:    "MCP_D1_DATABASE_URL",
	UpstreamPublish: "GITHUB_MCP_URL",
}

// NotConfiguredMessage returns the error text used when an upstream has no URL.
func NotConfiguredMessage(name string) string {
	switch name {
	case UpstreamData:
		return envNames[name] + " not configured for remote mode"
	case UpstreamPublish:
		return envNames[name] + " not configured"
	default:
		return fmt.Sprintf("upstream %q not configured", name)
	}
}

// New builds the Caller for an upstream from its configuration. An upstream
// without a URL yields a caller whose calls fail with NotConfiguredError.
func New(name string, cfg config.UpstreamConfig, httpClient *http.Client) (Caller, error) {
	if cfg.URL == "" {
		return &unconfigured{name: name, transport: cfg.Transport}, nil
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	switch cfg.Transport {
	case config.TransportRPC, "":
		return NewRPCClient(name, cfg, httpClient), nil
	case config.TransportStreamableHTTP:
		return NewStreamableClient(name, cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("upstream %q: unknown transport %q", name, cfg.Transport)
	}
}

// NewHTTPClient returns the pooled HTTP client shared by upstream callers.
// It sets no overall timeout; per-upstream timeouts are applied to the call
// context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

type unconfigured struct {
	name      string
	transport string
}

func (u *unconfigured) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return nil, &NotConfiguredError{Upstream: u.name, Message: NotConfiguredMessage(u.name)}
}

func (u *unconfigured) Name() string { return u.name }

func (u *unconfigured) Health() Health {
	return Health{Configured: false, Transport: u.transport, LastError: NotConfiguredMessage(u.name)}
}

func (u *unconfigured) Close() error { return nil }
