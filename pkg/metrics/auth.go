package metrics

import "github.com/prometheus/client_golang/prometheus"

// initAuthMetrics initializes authentication metrics.
func (m *Manager) initAuthMetrics(_ Config) {
	m.authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.smsCodesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_codes_sent_total",
			Help: "Total number of SMS verification codes sent by scene",
		},
		[]string{"scene"},
	)

	m.registry.MustRegister(m.authAttempts)
	m.registry.MustRegister(m.smsCodesSent)
}

// RecordAuthAttempt records an auth operation outcome. Operation is one of
// register, login, sms_login, refresh, logout, delete; outcome is success
// or failure.
func (m *Manager) RecordAuthAttempt(operation, outcome string) {
	if !m.enabled {
		return
	}
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordSMSCodeSent records a sent verification code.
func (m *Manager) RecordSMSCodeSent(scene string) {
	if !m.enabled {
		return
	}
	m.smsCodesSent.WithLabelValues(scene).Inc()
}
