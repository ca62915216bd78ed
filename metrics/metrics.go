// Package metrics exposes Prometheus metrics for simulation loops, sessions
// and the HTTP API.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Simulation Metrics
	StepsTotal     prometheus.Counter
	StepDuration   prometheus.Histogram
	NodesSimulated prometheus.Gauge

	// Session Metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated *prometheus.CounterVec
	SessionsClosed  *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initSessionMetrics()
	r.initHTTPMetrics()

	return r
}

func (r *Registry) initSimulationMetrics() {
	r.StepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kolgraph_simulation_steps_total",
			Help: "Total number of layout steps simulated",
		},
	)

	r.StepDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kolgraph_simulation_step_duration_seconds",
			Help:    "Time spent in a single layout step",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	r.NodesSimulated = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kolgraph_simulation_last_step_nodes",
			Help: "Node count of the most recently simulated step",
		},
	)
}

func (r *Registry) initSessionMetrics() {
	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kolgraph_sessions_active",
			Help: "Number of live simulation sessions",
		},
	)

	r.SessionsCreated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolgraph_sessions_created_total",
			Help: "Total number of sessions created, by network source",
		},
		[]string{"source"},
	)

	r.SessionsClosed = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolgraph_sessions_closed_total",
			Help: "Total number of sessions torn down, by reason",
		},
		[]string{"reason"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolgraph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kolgraph_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// ObserveStep records one simulated step. It satisfies physics.StepObserver.
func (r *Registry) ObserveStep(d time.Duration, nodes int) {
	r.StepsTotal.Inc()
	r.StepDuration.Observe(d.Seconds())
	r.NodesSimulated.Set(float64(nodes))
}

// SessionOpened records a new session
func (r *Registry) SessionOpened(source string) {
	r.SessionsCreated.WithLabelValues(source).Inc()
	r.SessionsActive.Inc()
}

// SessionClosed records a torn down session
func (r *Registry) SessionClosed(reason string) {
	r.SessionsClosed.WithLabelValues(reason).Inc()
	r.SessionsActive.Dec()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
