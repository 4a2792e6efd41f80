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
			Namespace: "sheetgen",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetgen",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
	resolverAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetgen",
			Name:      "resolver_attempts_total",
			Help:      "Resolver strategy attempts by outcome (hit, miss, error).",
		},
		[]string{"strategy", "outcome"},
	)
	resolverConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetgen",
			Name:      "resolver_confidence",
			Help:      "Confidence of resolved products by winning strategy.",
			Buckets:   []float64{30, 50, 60, 70, 85, 95, 100},
		},
		[]string{"strategy"},
	)
	recordsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sheetgen",
			Name:      "records_stored_total",
			Help:      "Product records appended to the store.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(resolverAttempts)
	prometheus.MustRegister(resolverConfidence)
	prometheus.MustRegister(recordsStored)
}

// RecordRequest records metrics for one HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordAttempt counts one strategy attempt.
func RecordAttempt(strategy, outcome string) {
	resolverAttempts.WithLabelValues(strategy, outcome).Inc()
}

// RecordResolved observes the confidence of a resolved product.
func RecordResolved(strategy string, confidence int) {
	resolverConfidence.WithLabelValues(strategy).Observe(float64(confidence))
}

func RecordStored() {
	recordsStored.Inc()
}

func classifyStatus(statusCode int) string {
	if statusCode < 100 || statusCode >= 600 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
