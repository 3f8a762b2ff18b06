package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordCycle(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.RecordCycle("list", OutcomeOK, 10*time.Millisecond)
	m.RecordCycle("list", OutcomeOK, 20*time.Millisecond)
	m.RecordCycle("list", OutcomeStale, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("list", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cyclesTotal.WithLabelValues("list", OutcomeStale)))
}

func TestMetrics_ExportsYSesiones(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.RecordExport("csv")
	m.SetSessions(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportsTotal.WithLabelValues("csv")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsActive))
}

func TestMetrics_NilEsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCycle("list", OutcomeError, time.Second)
		m.RecordExport("xlsx")
		m.SetSessions(1)
	})
}
