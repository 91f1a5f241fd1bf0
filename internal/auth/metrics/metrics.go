package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the identity service.
type Metrics struct {
	UsersCreated     prometheus.Counter
	Logins           prometheus.Counter
	LoginFailures    *prometheus.CounterVec
	SessionsRevoked  prometheus.Counter
	PasswordUpgrades prometheus.Counter
	UsersTotal       prometheus.Gauge
}

// New creates and registers identity metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_users_created_total",
			Help: "Accounts created",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_logins_total",
			Help: "Successful logins",
		}),
		LoginFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "peakform_login_failures_total",
			Help: "Failed login attempts, by reason",
		}, []string{"reason"}),
		SessionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_sessions_revoked_total",
			Help: "Sessions revoked by logout",
		}),
		PasswordUpgrades: promauto.NewCounter(prometheus.CounterOpts{
			Name: "peakform_password_upgrades_total",
			Help: "Legacy password hashes upgraded to bcrypt",
		}),
		UsersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "peakform_users",
			Help: "Registered accounts",
		}),
	}
}

func (m *Metrics) IncUserCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncLogin() {
	m.Logins.Inc()
}

func (m *Metrics) IncLoginFailure(reason string) {
	m.LoginFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncSessionRevoked() {
	m.SessionsRevoked.Inc()
}

func (m *Metrics) IncPasswordUpgrade() {
	m.PasswordUpgrades.Inc()
}

func (m *Metrics) SetUsersTotal(n int) {
	m.UsersTotal.Set(float64(n))
}
