package httpmiddleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type metricsMiddleware struct {
	reqsCount   *prometheus.CounterVec
	latencyHist *prometheus.HistogramVec
	next        http.Handler
}

func NewMetricsMiddleware(metricRegistry *prometheus.Registry) func(next http.Handler) http.Handler {
	midd := &metricsMiddleware{}

	midd.reqsCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "requests_total",
			Subsystem: "http",
			Namespace: "sucuri",
			Help:      "How many HTTP requests processed, partitioned by status code, method and HTTP path.",
		},
		[]string{"code", "method", "path"},
	)

	// Compressing a batch is synchronous, so latencies go up to minutes.
	midd.latencyHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_duration_seconds",
			Subsystem: "http",
			Namespace: "sucuri",
			Help:      "Latency of HTTP requests, in seconds.",
			Buckets:   []float64{0.1, 0.2, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0, 30.0, 60.0, 120.0, 180.0, 300.0},
		},
		[]string{"path"},
	)

	metricRegistry.MustRegister(midd.reqsCount, midd.latencyHist)

	return func(next http.Handler) http.Handler {
		midd.next = next
		return midd
	}
}

func (midd *metricsMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeStart := time.Now()
	wrapper := &responseWriterWrapper{wrapped: w}

	midd.next.ServeHTTP(wrapper, r)

	path := routePattern(r)
	latency := time.Since(timeStart).Seconds()
	midd.latencyHist.WithLabelValues(path).Observe(latency)
	midd.reqsCount.WithLabelValues(strconv.Itoa(wrapper.status()), r.Method, path).Inc()
}

// routePattern keeps the label cardinality bounded to the registered routes.
func routePattern(r *http.Request) string {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
