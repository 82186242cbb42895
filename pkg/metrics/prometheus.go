package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// Scenario metrics
	ScenariosTotal *prometheus.CounterVec
	PhaseDuration  *prometheus.HistogramVec

	// Module cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewPrometheusMetrics creates a new Prometheus metrics instance.
// A nil registerer uses the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		ScenariosTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abicheck_scenarios_total",
				Help: "Total number of scenario runs",
			},
			[]string{"scenario", "status"},
		),

		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "abicheck_phase_duration_seconds",
				Help:    "Duration of each scenario phase in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scenario", "phase"},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "abicheck_module_cache_hits_total",
				Help: "Total number of module cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "abicheck_module_cache_misses_total",
				Help: "Total number of module cache misses",
			},
		),
	}
}

// RecordScenario records a completed scenario run
func (m *PrometheusMetrics) RecordScenario(scenario, status string) {
	m.ScenariosTotal.WithLabelValues(scenario, status).Inc()
}

// RecordPhase records the duration of one scenario phase
func (m *PrometheusMetrics) RecordPhase(scenario, phase string, duration time.Duration) {
	m.PhaseDuration.WithLabelValues(scenario, phase).Observe(duration.Seconds())
}

// RecordCache records a module cache hit or miss
func (m *PrometheusMetrics) RecordCache(hit bool) {
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

// Handler returns the HTTP handler for the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
