package executor

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserveRowsIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRows(3)
	m.ObserveRows(2)

	assert.Equal(t, float64(5), testutil.ToFloat64(m.rowsProduced))
}

func TestMetricsObserveExecutionLabelsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveExecution("match", time.Now(), nil)
	m.ObserveExecution("match", time.Now(), errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.executions.WithLabelValues("match", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.executions.WithLabelValues("match", "error")))
}
