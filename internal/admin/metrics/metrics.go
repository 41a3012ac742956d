package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the admin session module.
type Metrics struct {
	LoginSuccesses prometheus.Counter
	LoginFailures  prometheus.Counter
	Lockouts       prometheus.Counter
	LoginDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all admin module metrics registered.
func New() *Metrics {
	return &Metrics{
		LoginSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_admin_login_successes_total",
			Help: "Total number of successful admin logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_admin_login_failures_total",
			Help: "Total number of failed admin login attempts",
		}),
		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_admin_login_lockouts_total",
			Help: "Total number of login lockouts triggered",
		}),
		LoginDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "orghub_admin_login_duration_seconds",
			Help:    "Duration of admin login operations (includes bcrypt verification)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementLoginSuccesses records a successful login.
func (m *Metrics) IncrementLoginSuccesses() {
	m.LoginSuccesses.Inc()
}

// IncrementLoginFailures records a failed login attempt.
func (m *Metrics) IncrementLoginFailures() {
	m.LoginFailures.Inc()
}

// IncrementLockouts records a triggered lockout.
func (m *Metrics) IncrementLockouts() {
	m.Lockouts.Inc()
}

// ObserveLogin records the duration of a login operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
}
