package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the session gate.
type Metrics struct {
	RedirectsIssued     *prometheus.CounterVec
	RedirectsSuppressed prometheus.Counter
	Evaluations         prometheus.Counter
}

// New creates and registers gate metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RedirectsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_gate_redirects_issued_total",
			Help: "Navigation commands issued by the session gate, by decision",
		}, []string{"decision"}),
		RedirectsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_gate_redirects_suppressed_total",
			Help: "Duplicate redirects suppressed within the cool-down window",
		}),
		Evaluations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_gate_evaluations_total",
			Help: "Gate decision evaluations",
		}),
	}
}

func (m *Metrics) IncRedirectIssued(decision string) {
	m.RedirectsIssued.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncRedirectSuppressed() {
	m.RedirectsSuppressed.Inc()
}

func (m *Metrics) IncEvaluation() {
	m.Evaluations.Inc()
}
