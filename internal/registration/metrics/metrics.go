package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the registration wizard.
type Metrics struct {
	WizardsStarted     prometheus.Counter
	WizardsSubmitted   prometheus.Counter
	SubmitRejected     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
}

// New creates and registers wizard metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		WizardsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_wizard_started_total",
			Help: "Registration wizards started",
		}),
		WizardsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_wizard_submitted_total",
			Help: "Registration wizards submitted successfully",
		}),
		SubmitRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_wizard_submit_rejected_total",
			Help: "Submit attempts rejected, by reason",
		}, []string{"reason"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_wizard_validation_failures_total",
			Help: "Step guard failures, by step",
		}, []string{"step"}),
	}
}

func (m *Metrics) IncStarted() {
	m.WizardsStarted.Inc()
}

func (m *Metrics) IncSubmitted() {
	m.WizardsSubmitted.Inc()
}

func (m *Metrics) IncSubmitRejected(reason string) {
	m.SubmitRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncValidationFailure(step string) {
	m.ValidationFailures.WithLabelValues(step).Inc()
}
