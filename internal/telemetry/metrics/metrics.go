// Package metrics exposes Prometheus instrumentation for the orchestrator
// and builder, grounded in the teacher's telemetry/metrics + client_golang
// usage pattern (domain counters, not the teacher's generic provider
// abstraction — this repo has a fixed, small instrument set).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter/histogram the orchestrator and builder touch.
type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	CracBuilds        *prometheus.CounterVec
	Warnings          *prometheus.CounterVec
	SolverLatency     *prometheus.HistogramVec
	ContingenciesSeen prometheus.Counter
}

// New registers every instrument against reg and returns the bound handle.
// Pass a freshly created prometheus.NewRegistry() (never the global default
// registry, so tests can create disposable instances and binaries can
// expose exactly these instruments on /metrics).
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rao_messages_processed_total",
			Help: "SAR messages processed, by terminal outcome (ack, requeue, dead_letter).",
		}, []string{"outcome"}),
		CracBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rao_crac_builds_total",
			Help: "CRAC documents built, by outcome (success, error).",
		}, []string{"result"}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rao_build_warnings_total",
			Help: "Non-fatal data-quality warnings emitted during a build, by kind.",
		}, []string{"kind"}),
		SolverLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rao_solver_invoke_seconds",
			Help:    "Wall-clock time spent inside one solver invocation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"time_horizon"}),
		ContingenciesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rao_contingencies_seen_total",
			Help: "Contingencies whose CRAC was built, uploaded and solved, counted once per message they appear in.",
		}),
	}
	reg.MustRegister(m.MessagesProcessed, m.CracBuilds, m.Warnings, m.SolverLatency, m.ContingenciesSeen)
	return m
}

// Handler exposes the /metrics HTTP surface for a registry built with New.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
