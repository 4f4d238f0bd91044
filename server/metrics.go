package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReportsTotal counts computed reports, partitioned by report kind.
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tre_reports_total",
		Help: "Total number of analytics reports computed",
	}, []string{"report"})

	// NettingRunsTotal counts persisted netting runs.
	NettingRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tre_netting_runs_total",
		Help: "Total number of netting runs persisted",
	})

	// OpenIssues tracks the number of unresolved validation issues.
	OpenIssues = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tre_open_validation_issues",
		Help: "Number of currently open validation issues",
	})

	// ExcludedBalances counts balances excluded from reports for missing rates.
	ExcludedBalances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tre_excluded_balances_total",
		Help: "Balances excluded from reports because no rate path existed",
	}, []string{"report"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tre_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tre_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records request counts and latency.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
