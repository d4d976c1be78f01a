package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rpc_invocations_total", Help: "function invocations by function and outcome"},
		[]string{"function", "outcome"},
	)

	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_invocation_duration_seconds",
			Help:    "function invocation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	authorizationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "rpc_authorization_failures_total", Help: "requests rejected for a wrong key"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		invocationsTotal,
		invocationDuration,
		authorizationFailures,
	)
}

// UnknownFunction is the label used for names missing from the registry,
// so arbitrary caller input never becomes a label value.
const UnknownFunction = "unknown"

// ObserveInvocation records one dispatch. outcome is "ok" or "error".
func ObserveInvocation(function, outcome string, d time.Duration) {
	invocationsTotal.WithLabelValues(function, outcome).Inc()
	invocationDuration.WithLabelValues(function).Observe(d.Seconds())
}

// AuthorizationFailed counts a request rejected by the shared-secret check.
func AuthorizationFailed() { authorizationFailures.Inc() }
