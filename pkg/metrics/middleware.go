package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsTotal   = "http_requests_total"
	requestDuration = "http_request_duration_seconds"
)

// Middleware counts requests and observes their latency per status code, method and chi route
// pattern. Unrouted requests are labelled with an empty path so ids never become label values.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewMiddleware(name string) *Middleware {
	labels := []string{"code", "method", "path"}
	constLabels := prometheus.Labels{"service": name}

	return &Middleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   surveyProfiler,
			Name:        requestsTotal,
			Help:        "Number of HTTP requests partitioned by status code, method and route.",
			ConstLabels: constLabels,
		}, labels),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   surveyProfiler,
			Name:        requestDuration,
			Help:        "Time spent serving HTTP requests partitioned by status code, method and route.",
			ConstLabels: constLabels,
			Buckets:     []float64{.01, .05, .1, .5, 1, 5},
		}, labels),
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			path = rctx.RoutePattern()
		}
		code := strconv.Itoa(ww.Status())
		m.requests.WithLabelValues(code, r.Method, path).Inc()
		m.latency.WithLabelValues(code, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Middleware) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency}
}

// MustRegisterDefault registers the collectors with the default registry served on /metrics.
func (m *Middleware) MustRegisterDefault() {
	prometheus.MustRegister(m.Collectors()...)
}
