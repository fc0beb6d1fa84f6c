package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "pricing_backend_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
)

func initMetrics() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)

		prometheus.MustRegister(httpRequests, httpLatency)
	})
}

// Metrics records a request counter and latency histogram per chi route
// pattern, so path parameters do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	initMetrics()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
