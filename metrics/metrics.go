// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled, by route and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of HTTP requests until the handler returns",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_provider_requests_total",
			Help: "Total number of upstream provider calls, by outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_provider_request_duration_seconds",
			Help:    "Duration of upstream provider calls until the first response byte",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_live_sessions",
			Help: "Number of open live transcription sessions",
		},
	)
)

// RecordHTTPRequest records one completed request.
func RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveProvider records one upstream call. Use it with defer:
//
//	defer metrics.ObserveProvider("groq", "chat", time.Now(), &err)
func ObserveProvider(provider, operation string, start time.Time, errp *error) {
	outcome := OutcomeSuccess
	if errp != nil && *errp != nil {
		outcome = OutcomeError
	}
	ProviderRequests.WithLabelValues(provider, operation, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

func RecordSessionOpened() {
	LiveSessions.Inc()
}

func RecordSessionClosed() {
	LiveSessions.Dec()
}
