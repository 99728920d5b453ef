package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initMemoryMetrics initializes vector-memory adapter metrics.
func (m *Manager) initMemoryMetrics(cfg Config) {
	m.memoryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_operations_total",
			Help: "Total number of memory operations by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	m.memoryOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memory_operation_duration_seconds",
			Help:    "Memory operation duration in seconds",
			Buckets: cfg.MemoryDurationBuckets,
		},
		[]string{"op"},
	)

	m.registry.MustRegister(m.memoryOps)
	m.registry.MustRegister(m.memoryOpDuration)
}

// RecordMemoryOperation records a memory store or search operation.
func (m *Manager) RecordMemoryOperation(op, outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.memoryOps.WithLabelValues(op, outcome).Inc()
	m.memoryOpDuration.WithLabelValues(op).Observe(duration.Seconds())
}
