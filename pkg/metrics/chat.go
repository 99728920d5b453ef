package metrics

import "github.com/prometheus/client_golang/prometheus"

// initChatMetrics initializes WebSocket chat metrics.
func (m *Manager) initChatMetrics(_ Config) {
	m.chatConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Current number of active WebSocket chat connections",
		},
	)

	m.chatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of chat messages processed by type",
		},
		[]string{"type"},
	)

	m.registry.MustRegister(m.chatConnections)
	m.registry.MustRegister(m.chatMessages)
}

// IncChatConnections increments the active chat connection gauge.
func (m *Manager) IncChatConnections() {
	if !m.enabled {
		return
	}
	m.chatConnections.Inc()
}

// DecChatConnections decrements the active chat connection gauge.
func (m *Manager) DecChatConnections() {
	if !m.enabled {
		return
	}
	m.chatConnections.Dec()
}

// RecordChatMessage records a processed chat message.
func (m *Manager) RecordChatMessage(messageType string) {
	if !m.enabled {
		return
	}
	m.chatMessages.WithLabelValues(messageType).Inc()
}
