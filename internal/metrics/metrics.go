// Package metrics holds the Prometheus collectors of the planning service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	forecastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_forecasts_total",
			Help: "Forecasts served, by method and source (cache or computed).",
		},
		[]string{"method", "source"},
	)
	optimizationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_optimizations_total",
			Help: "Items optimized, by resulting risk level.",
		},
		[]string{"risk_level"},
	)
	optimizationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockcast_optimization_failures_total",
			Help: "Items that could not be optimized.",
		},
	)
	planRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockcast_plan_runs_total",
			Help: "Warehouse plan runs, by outcome.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		forecastsTotal,
		optimizationsTotal,
		optimizationFailuresTotal,
		planRunsTotal,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request. path should be the route template.
func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func ObserveForecast(method, source string) {
	forecastsTotal.WithLabelValues(method, source).Inc()
}

func ObserveOptimization(riskLevel string) {
	optimizationsTotal.WithLabelValues(riskLevel).Inc()
}

func ObserveOptimizationFailure() {
	optimizationFailuresTotal.Inc()
}

func ObservePlanRun(status string) {
	planRunsTotal.WithLabelValues(status).Inc()
}
