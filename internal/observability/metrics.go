package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters exported on /metrics. Each instance owns its
// registry so tests and multiple servers never collide.
type Metrics struct {
	registry      *prometheus.Registry
	analyses      *prometheus.CounterVec
	insightSaved  *prometheus.CounterVec
	insightFailed *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

// NewMetrics registers the capscope collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capscope_analyses_total",
			Help: "Analyses performed, by kind.",
		}, []string{"kind"}),
		insightSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capscope_insights_saved_total",
			Help: "Insights persisted, by kind.",
		}, []string{"kind"}),
		insightFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capscope_insights_failed_total",
			Help: "Insight saves that failed, by kind.",
		}, []string{"kind"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capscope_http_request_duration_seconds",
			Help:    "API request latency, by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	m.registry.MustRegister(m.analyses, m.insightSaved, m.insightFailed, m.requests)
	return m
}

// Analysis counts one analysis of kind.
func (m *Metrics) Analysis(kind string) { m.analyses.WithLabelValues(kind).Inc() }

// InsightSaved counts one persisted insight.
func (m *Metrics) InsightSaved(kind string) { m.insightSaved.WithLabelValues(kind).Inc() }

// InsightFailed counts one failed save.
func (m *Metrics) InsightFailed(kind string) { m.insightFailed.WithLabelValues(kind).Inc() }

// ObserveRequest records the latency of one API request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	m.requests.WithLabelValues(route, status).Observe(seconds)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
