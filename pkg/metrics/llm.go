package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initLLMMetrics initializes chat-model provider metrics.
func (m *Manager) initLLMMetrics(cfg Config) {
	m.llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM requests by outcome",
		},
		[]string{"outcome"},
	)

	m.llmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM request duration in seconds, first byte to stream end",
			Buckets: cfg.LLMDurationBuckets,
		},
		[]string{},
	)

	m.llmStreamChunks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_stream_chunks_total",
			Help: "Total number of streamed LLM chunks delivered to clients",
		},
	)

	m.registry.MustRegister(m.llmRequests)
	m.registry.MustRegister(m.llmDuration)
	m.registry.MustRegister(m.llmStreamChunks)
}

// RecordLLMRequest records an LLM request outcome (success or failure).
func (m *Manager) RecordLLMRequest(outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.llmRequests.WithLabelValues(outcome).Inc()
	m.llmDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordLLMStreamChunk records one delivered stream chunk.
func (m *Manager) RecordLLMStreamChunk() {
	if !m.enabled {
		return
	}
	m.llmStreamChunks.Inc()
}
