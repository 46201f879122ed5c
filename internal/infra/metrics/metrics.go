// Package metrics holds the Prometheus collectors for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compliance_gateway"

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	HTTPInFlight    prometheus.Gauge
	Submissions     *prometheus.CounterVec
	EngineFailures  *prometheus.CounterVec
	PersistFailures prometheus.Counter
}

// New creates and registers all metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_submissions_total",
			Help:      "Scored submissions by source (engine or fallback)",
		}, []string{"source"}),
		EngineFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_engine_failures_total",
			Help:      "Engine failures by kind",
		}, []string{"kind"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_persist_failures_total",
			Help:      "Scored submissions whose history write failed",
		}),
	}
}

func (m *Metrics) Submission(source string)  { m.Submissions.WithLabelValues(source).Inc() }
func (m *Metrics) EngineFailure(kind string) { m.EngineFailures.WithLabelValues(kind).Inc() }
func (m *Metrics) PersistFailure()           { m.PersistFailures.Inc() }

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) InFlight(delta float64) { m.HTTPInFlight.Add(delta) }
