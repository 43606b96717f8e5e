package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes executor-level counters and latency histograms to a
// Prometheus registry. Nothing in the executor's core path requires these
// (they are pure observation). The pattern and write executors do not hold
// or call a Metrics instance; callers record through ObserveRows and
// ObserveExecution themselves.
type Metrics struct {
	rowsProduced    prometheus.Counter
	executions      *prometheus.CounterVec
	executionLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers a Metrics instance on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "typedb_executor_rows_produced_total",
			Help: "Total rows produced by pattern executors.",
		}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typedb_executor_executions_total",
			Help: "Total executable runs, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		executionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "typedb_executor_execution_duration_seconds",
			Help:    "Latency of executable runs, by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(m.rowsProduced, m.executions, m.executionLatency)
	return m
}

// ObserveRows records that n rows were produced by a pattern executor.
func (m *Metrics) ObserveRows(n int) {
	m.rowsProduced.Add(float64(n))
}

// ObserveExecution records one executable run's outcome and latency.
func (m *Metrics) ObserveExecution(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.executions.WithLabelValues(kind, outcome).Inc()
	m.executionLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
