// Package metrics exposes scan and run counters on a private Prometheus registry.
package metrics

import (
	"time"

	"PipSentinel/internal/calculator"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pipsentinel"

// Metrics holds the collectors of one process.
type Metrics struct {
	Registry *prometheus.Registry

	daysScanned *prometheus.CounterVec
	daysSkipped *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		daysScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_scanned_total",
			Help:      "Dates with a finalized extremum, by pair and benchmark.",
		}, []string{"pair", "benchmark"}),
		daysSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_skipped_total",
			Help:      "Dates left out because the benchmark could not be resolved.",
		}, []string{"pair", "benchmark"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Per-pair runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one batch run over all pairs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	m.Registry.MustRegister(m.daysScanned, m.daysSkipped, m.runs, m.runDuration)
	return m
}

// ForPair returns a scan observer that counts under pair.
func (m *Metrics) ForPair(pair string) calculator.Observer {
	return pairObserver{m: m, pair: pair}
}

// RunFinished counts one pair's outcome.
func (m *Metrics) RunFinished(status string) {
	m.runs.WithLabelValues(status).Inc()
}

// ObserveRun records the duration of a batch.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}

type pairObserver struct {
	m    *Metrics
	pair string
}

func (o pairObserver) DayScanned(benchmark string, _ time.Time) {
	o.m.daysScanned.WithLabelValues(o.pair, benchmark).Inc()
}

func (o pairObserver) DaySkipped(benchmark string, _ time.Time, _ error) {
	o.m.daysSkipped.WithLabelValues(o.pair, benchmark).Inc()
}
