package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ForwardMetrics tracks calls to upstream MCP services.
//
// Metrics:
//   - voygen_forward_calls_total: calls by upstream, method, and status
//   - voygen_forward_call_duration_seconds: call latency by upstream and method
type ForwardMetrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewForwardMetrics creates and registers forwarding metrics.
func NewForwardMetrics(namespace string, registry prometheus.Registerer) *ForwardMetrics {
	m := &ForwardMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forward",
				Name:      "calls_total",
				Help:      "Total number of upstream MCP calls",
			},
			[]string{"upstream", "method", "status"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forward",
				Name:      "call_duration_seconds",
				Help:      "Duration of upstream MCP calls in seconds",
				// Proposal generation can take tens of seconds.
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"upstream", "method"},
		),
	}
	registry.MustRegister(m.callsTotal, m.callDuration)
	return m
}

func (m *ForwardMetrics) observe(upstream, method, status string, duration time.Duration) {
	m.callsTotal.WithLabelValues(upstream, method, status).Inc()
	m.callDuration.WithLabelValues(upstream, method).Observe(duration.Seconds())
}
