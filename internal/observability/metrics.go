package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	runsheetRequestsTotal *prometheus.CounterVec
	runsheetLatency       *prometheus.HistogramVec
	runsheetErrorsTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the runsheet API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		runsheetRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runsheet_requests_total",
			Help: "Total number of runsheet API requests served.",
		}, []string{"method", "route", "status"})

		runsheetLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "runsheet_latency_seconds",
			Help:    "Latency distribution for runsheet API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		runsheetErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runsheet_errors_total",
			Help: "Total number of error responses returned by runsheet endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(runsheetRequestsTotal, runsheetLatency, runsheetErrorsTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return runsheetRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return runsheetLatency
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return runsheetErrorsTotal
}
