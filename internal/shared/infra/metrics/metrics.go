package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados posibles de un ciclo de consulta.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// Metrics agrupa las métricas Prometheus del navegador de procesos.
// Los métodos aceptan receptor nil para poder omitir métricas en tests.
type Metrics struct {
	cyclesTotal    *prometheus.CounterVec
	cycleDuration  *prometheus.HistogramVec
	exportsTotal   *prometheus.CounterVec
	sessionsActive prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *Metrics
)

// NewMetrics registra las métricas una sola vez en el registro por defecto.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInst = newMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return metricsInst
}

// NewMetricsWithRegistry registra las métricas en un registro propio (tests).
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		cyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secopviewer_cycles_total",
				Help: "Ciclos de consulta por tipo y resultado",
			},
			[]string{"cycle", "outcome"},
		),
		cycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secopviewer_cycle_duration_seconds",
				Help:    "Duración de la llamada remota de cada ciclo",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"cycle"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secopviewer_exports_total",
				Help: "Exportaciones solicitadas por formato",
			},
			[]string{"kind"},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "secopviewer_sessions_active",
				Help: "Sesiones con estado de navegación en memoria",
			},
		),
	}
}

// RecordCycle cuenta un ciclo terminado y observa su duración.
func (m *Metrics) RecordCycle(cycle, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues(cycle, outcome).Inc()
	m.cycleDuration.WithLabelValues(cycle).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordExport(kind string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}
