package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// TokenFetchesTotal counts service account token exchanges by outcome.
	TokenFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kreaite",
		Name:      "token_fetches_total",
		Help:      "Service account access token exchanges.",
	}, []string{"outcome"})

	// ExportsTotal counts book exports by format and outcome.
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kreaite",
		Name:      "exports_total",
		Help:      "Book exports by format and outcome.",
	}, []string{"format", "outcome"})

	// WorkspaceCallsTotal counts Google Workspace API calls.
	WorkspaceCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kreaite",
		Name:      "workspace_calls_total",
		Help:      "Google Workspace API calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kreaite",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		TokenFetchesTotal,
		ExportsTotal,
		WorkspaceCallsTotal,
		HTTPRequestDuration,
	)
}

// Outcome maps an error to the "outcome" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// MetricsMiddleware records request latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the registry in the Prometheus text format.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
