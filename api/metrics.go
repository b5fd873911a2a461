package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the facilitator's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	verifyTotal *prometheus.CounterVec
	settleTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the facilitator collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		verifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "facilitator_verify_total",
			Help: "Verify operations by outcome.",
		}, []string{"result", "reason"}),
		settleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "facilitator_settle_total",
			Help: "Settle operations by outcome.",
		}, []string{"result", "reason"}),
	}
	m.Registry.MustRegister(m.verifyTotal, m.settleTotal)
	return m
}

func (m *Metrics) observeVerify(valid bool, reason string) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.verifyTotal.WithLabelValues(result, reason).Inc()
}

func (m *Metrics) observeSettle(ok bool, reason string) {
	if m == nil {
		return
	}
	result := "settled"
	if !ok {
		result = "failed"
	}
	m.settleTotal.WithLabelValues(result, reason).Inc()
}
