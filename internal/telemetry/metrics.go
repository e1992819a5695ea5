// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Toggles tracks the size of the current collection.
	Toggles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apollo_toggles",
		Help: "Number of toggles in the current snapshot",
	})
	// Evaluations counts evaluate calls by outcome reason.
	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apollo_evaluations_total",
			Help: "Toggle evaluations by result reason",
		},
		[]string{"result"},
	)
	// AssistFallbacks counts generative calls that fell back to a static answer.
	AssistFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apollo_assist_fallbacks_total",
			Help: "Generative assist calls that returned a fallback",
		},
		[]string{"call"},
	)
	// SSEClients is the number of connected stream clients.
	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apollo_sse_clients",
		Help: "Number of currently connected SSE clients",
	})

	initOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpReqs, httpDur, Toggles, Evaluations, AssistFallbacks, SSEClients)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		// the route pattern is only complete after routing ran
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
