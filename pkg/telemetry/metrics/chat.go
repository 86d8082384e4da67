package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics tracks the chat application proxy and its backend.
type ChatMetrics struct {
	proxyErrors  prometheus.Counter
	backendUp    prometheus.Gauge
	backendExits *prometheus.CounterVec
}

// NewChatMetrics creates and registers chat metrics.
func NewChatMetrics(namespace string, registry prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		proxyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "proxy_errors_total",
			Help:      "Requests the chat proxy failed to deliver to the backend",
		}),
		backendUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "backend_up",
			Help:      "Whether the last chat backend probe succeeded (1) or not (0)",
		}),
		backendExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "backend_exits_total",
				Help:      "Exits of the locally spawned chat backend",
			},
			[]string{"result"},
		),
	}
	registry.MustRegister(m.proxyErrors, m.backendUp, m.backendExits)
	return m
}
