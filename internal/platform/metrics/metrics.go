// Package metrics holds the Prometheus collectors for authentication.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate rejection reasons.
const (
	ReasonMissingToken     = "missing_token"
	ReasonInvalidToken     = "invalid_token"
	ReasonIdentityMismatch = "identity_mismatch"
)

// Login outcomes.
const (
	LoginSuccess        = "success"
	LoginUnknownUser    = "unknown_user"
	LoginBadCredentials = "bad_credentials"
	LoginLocked         = "locked"
	LoginError          = "error"
)

type Metrics struct {
	registry       *prometheus.Registry
	GateRejections *prometheus.CounterVec
	LoginAttempts  *prometheus.CounterVec
}

// New builds the collectors on a private registry, so tests can create as
// many as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GateRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_auth_gate_rejections_total",
				Help: "Requests to user-scoped routes rejected by the auth gate",
			},
			[]string{"reason"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.GateRejections, m.LoginAttempts)
	return m
}

// RecordGateRejection and RecordLogin are no-ops on a nil *Metrics.
func (m *Metrics) RecordGateRejection(reason string) {
	if m == nil {
		return
	}
	m.GateRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
