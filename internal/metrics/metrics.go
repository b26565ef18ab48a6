package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the ingest run counters behind a dedicated
// prometheus registry so the scrape surface stays limited to pipeline
// metrics.
type Registry struct {
	reg                *prometheus.Registry
	Attempted          prometheus.Counter
	Succeeded          prometheus.Counter
	ValidationRejected prometheus.Counter
	ConstraintRejected prometheus.Counter
	ArchiveFailures    prometheus.Counter
	RunDurationSec     prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	attempted := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_records_attempted_total"})
	succeeded := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_records_succeeded_total"})
	validationRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_records_validation_rejected_total"})
	constraintRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_records_constraint_rejected_total"})
	archiveFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_archive_failures_total"})
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{Name: "ingest_last_run_duration_seconds"})

	r.MustRegister(attempted, succeeded, validationRejected, constraintRejected, archiveFailures, runDuration)
	return &Registry{
		reg:                r,
		Attempted:          attempted,
		Succeeded:          succeeded,
		ValidationRejected: validationRejected,
		ConstraintRejected: constraintRejected,
		ArchiveFailures:    archiveFailures,
		RunDurationSec:     runDuration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
