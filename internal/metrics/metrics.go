package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service's prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	suggestionRunsTotal *prometheus.CounterVec
	suggestionFields    prometheus.Histogram
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "docproc",
				Subsystem:   "http",
				Name:        "requests_total",
				Help:        "Total HTTP requests processed.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "docproc",
				Subsystem:   "http",
				Name:        "request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "docproc",
				Subsystem:   "http",
				Name:        "in_flight_requests",
				Help:        "Number of in-flight HTTP requests.",
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
		suggestionRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "docproc",
				Subsystem:   "suggest",
				Name:        "runs_total",
				Help:        "Suggestion generation runs by outcome.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"outcome"},
		),
		suggestionFields: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   "docproc",
				Subsystem:   "suggest",
				Name:        "fields_per_run",
				Help:        "Fields processed per successful suggestion run.",
				Buckets:     []float64{1, 2, 4, 8, 16},
				ConstLabels: prometheus.Labels{"service": service},
			},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.suggestionRunsTotal,
		m.suggestionFields,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments every request with count, duration, and in-flight
// gauges. The path label uses the chi route pattern rather than the raw URL
// to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveSuggestionRun(fields int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.suggestionRunsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		m.suggestionFields.Observe(float64(fields))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
