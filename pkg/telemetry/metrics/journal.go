package metrics

import "github.com/prometheus/client_golang/prometheus"

// JournalMetrics tracks the forwarding-call journal.
type JournalMetrics struct {
	dropped prometheus.Counter
	pruned  prometheus.Counter
}

// NewJournalMetrics creates and registers journal metrics.
func NewJournalMetrics(namespace string, registry prometheus.Registerer) *JournalMetrics {
	m := &JournalMetrics{
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "dropped_total",
			Help:      "Journal entries dropped because the write queue was full",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "pruned_total",
			Help:      "Journal entries removed by retention",
		}),
	}
	registry.MustRegister(m.dropped, m.pruned)
	return m
}
