package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the org module.
// Tracks lifecycle counts, migration outcomes and critical path durations.
type Metrics struct {
	OrgsCreated       prometheus.Counter
	OrgsDeleted       prometheus.Counter
	Migrations        prometheus.Counter
	PartialFailures   prometheus.Counter
	CreateOrgDuration prometheus.Histogram
	MigrationDuration prometheus.Histogram
}

// New creates a new Metrics instance with all org module metrics registered.
func New() *Metrics {
	return &Metrics{
		OrgsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_orgs_created_total",
			Help: "Total number of organizations created",
		}),
		OrgsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_orgs_deleted_total",
			Help: "Total number of organizations deleted",
		}),
		Migrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_collection_migrations_total",
			Help: "Total number of completed tenant collection migrations",
		}),
		PartialFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "orghub_partial_failures_total",
			Help: "Total number of operations that left registry and collections out of sync",
		}),
		CreateOrgDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "orghub_create_org_duration_seconds",
			Help:    "Duration of CreateOrganization operations (includes bcrypt hashing)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		MigrationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "orghub_collection_migration_duration_seconds",
			Help:    "Duration of tenant collection migrations triggered by renames",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}
}

// IncrementOrgsCreated records a successful organization creation.
func (m *Metrics) IncrementOrgsCreated() {
	m.OrgsCreated.Inc()
}

// IncrementOrgsDeleted records a successful organization deletion.
func (m *Metrics) IncrementOrgsDeleted() {
	m.OrgsDeleted.Inc()
}

// IncrementMigrations records a completed collection migration.
func (m *Metrics) IncrementMigrations() {
	m.Migrations.Inc()
}

// IncrementPartialFailures records an operation that completed partially.
func (m *Metrics) IncrementPartialFailures() {
	m.PartialFailures.Inc()
}

// ObserveCreateOrg records the duration of a CreateOrganization operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreateOrg(start time.Time) {
	m.CreateOrgDuration.Observe(time.Since(start).Seconds())
}

// ObserveMigration records the duration of a collection migration.
// Call with time.Now() at the start of the migration.
func (m *Metrics) ObserveMigration(start time.Time) {
	m.MigrationDuration.Observe(time.Since(start).Seconds())
}
