// Package metrics exposes Prometheus collectors for the crawler pipelines.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure kinds recorded by ObserveFailure.
const (
	FailureFetch     = "fetch"
	FailureStructure = "structure"
	FailureSink      = "sink"
	FailureInput     = "input"
)

var (
	pagesTotal                 *prometheus.CounterVec
	recordsTotal               *prometheus.CounterVec
	failuresTotal              *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fifacrawler_pages_total",
				Help: "Total number of pages fetched, labeled by pipeline and status.",
			},
			[]string{"pipeline", "status"},
		)

		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fifacrawler_records_total",
				Help: "Total number of records emitted, labeled by pipeline.",
			},
			[]string{"pipeline"},
		)

		failuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fifacrawler_failures_total",
				Help: "Total number of run-aborting failures, labeled by pipeline and kind.",
			},
			[]string{"pipeline", "kind"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fifacrawler_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies through the rendering proxy.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"pipeline"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one fetched page and how long it took.
func ObservePage(pipeline string, statusCode int, duration time.Duration) {
	pagesTotal.WithLabelValues(pipeline, strconv.Itoa(statusCode)).Inc()
	fetchDurationSeconds.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// ObserveRecord increments the emitted record counter.
func ObserveRecord(pipeline string) {
	recordsTotal.WithLabelValues(pipeline).Inc()
}

// ObserveFailure increments the failure counter for kind.
func ObserveFailure(pipeline, kind string) {
	failuresTotal.WithLabelValues(pipeline, kind).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
