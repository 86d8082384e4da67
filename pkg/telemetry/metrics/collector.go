package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"voygen/gateway/pkg/config"
)

// Forward call outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector owns every Prometheus metric the gateway exports.
//
// All Record methods are safe to call on a nil *Collector and are no-ops
// when metrics are disabled, so components can take an optional collector.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	http    *HTTPMetrics
	forward *ForwardMetrics
	chat    *ChatMetrics
	journal *JournalMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one with the Go runtime and process
// collectors attached.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		http:     NewHTTPMetrics(cfg.Namespace, registry),
		forward:  NewForwardMetrics(cfg.Namespace, registry),
		chat:     NewChatMetrics(cfg.Namespace, registry),
		journal:  NewJournalMetrics(cfg.Namespace, registry),
	}
}

// Registry returns the registry metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordHTTPRequest records a completed inbound HTTP request.
func (c *Collector) RecordHTTPRequest(method string, code int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.http.observe(method, code, duration)
}

// RecordForwardCall records a call to an upstream MCP service.
//
// Example:
//
//	collector.RecordForwardCall("data", "ingest_hotels", metrics.StatusSuccess, 120*time.Millisecond)
func (c *Collector) RecordForwardCall(upstream, method, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.forward.observe(upstream, method, status, duration)
}

// RecordChatProxyError counts a request the chat proxy could not deliver.
func (c *Collector) RecordChatProxyError() {
	if !c.enabled() {
		return
	}
	c.chat.proxyErrors.Inc()
}

// SetChatBackendUp records the outcome of the latest chat backend probe.
func (c *Collector) SetChatBackendUp(up bool) {
	if !c.enabled() {
		return
	}
	if up {
		c.chat.backendUp.Set(1)
	} else {
		c.chat.backendUp.Set(0)
	}
}

// RecordChatBackendExit counts exits of the locally spawned chat backend.
func (c *Collector) RecordChatBackendExit(code int) {
	if !c.enabled() {
		return
	}
	c.chat.backendExits.WithLabelValues(exitClass(code)).Inc()
}

// RecordJournalDropped counts journal entries dropped because the write
// queue was full.
func (c *Collector) RecordJournalDropped() {
	if !c.enabled() {
		return
	}
	c.journal.dropped.Inc()
}

// RecordJournalPruned counts journal entries removed by retention.
func (c *Collector) RecordJournalPruned(n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.journal.pruned.Add(float64(n))
}

func exitClass(code int) string {
	if code == 0 {
		return "clean"
	}
	return "failure"
}
