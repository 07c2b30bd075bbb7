// Package metrics exposes Prometheus collectors for catalog fetches and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devfolio/portfolio/transport"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	lookups       *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "catalog",
				Name:      "fetch_attempts_total",
				Help:      "Catalog fetch attempts by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio",
				Subsystem: "catalog",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of catalog fetch attempts.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 11),
			},
			[]string{"strategy"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "catalog",
				Name:      "lookups_total",
				Help:      "Catalog lookups by terminal state and source.",
			},
			[]string{"state", "source"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "portfolio",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
	}
	m.Registry.MustRegister(m.fetchAttempts, m.fetchDuration, m.lookups, m.httpRequests, m.httpDuration)
	return m
}

// ObserveAttempt implements transport.Observer.
func (m *Metrics) ObserveAttempt(a transport.Attempt) {
	m.fetchAttempts.WithLabelValues(string(a.Strategy), string(a.Outcome)).Inc()
	m.fetchDuration.WithLabelValues(string(a.Strategy)).Observe(a.Duration.Seconds())
}

// ObserveLookup counts a finished lookup; source is "cache" or "network".
func (m *Metrics) ObserveLookup(state, source string) {
	m.lookups.WithLabelValues(state, source).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

var _ transport.Observer = (*Metrics)(nil)
