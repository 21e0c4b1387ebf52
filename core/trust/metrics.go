package trust

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/trustcore/core/session"
)

const metricsNamespace = "trustcore"

type metrics struct {
	decisions      *prometheus.CounterVec
	stepUpFailures prometheus.Counter
	activeSessions prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, sessions *session.Store) *metrics {
	m := &metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decisions_total",
			Help:      "Authentication decisions by outcome and internal reason.",
		}, []string{"outcome", "reason"}),
		stepUpFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "step_up_failures_total",
			Help:      "Failed TOTP step-up verifications.",
		}),
		activeSessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Live sessions in the store.",
		}, func() float64 { return float64(sessions.Len()) }),
	}

	if reg != nil {
		reg.MustRegister(m.decisions, m.stepUpFailures, m.activeSessions)
	}
	return m
}

func (m *metrics) observe(d *Decision) {
	outcome := "deny"
	if d.OK {
		outcome = "allow"
	}
	m.decisions.WithLabelValues(outcome, string(d.Reason)).Inc()
}
