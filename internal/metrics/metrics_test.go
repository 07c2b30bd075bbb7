package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio/transport"
)

func TestObserveAttempt(t *testing.T) {
	m := New()
	m.ObserveAttempt(transport.Attempt{Strategy: transport.KindRelay, Outcome: transport.OutcomeTimeout, Duration: time.Second})
	m.ObserveAttempt(transport.Attempt{Strategy: transport.KindRelay, Outcome: transport.OutcomeTimeout, Duration: time.Second})
	m.ObserveAttempt(transport.Attempt{Strategy: transport.KindDirect, Outcome: transport.OutcomeSuccess})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchAttempts.WithLabelValues("relay", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchAttempts.WithLabelValues("direct", "success")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/privacy/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/metrics", m.Handler().ServeHTTP)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/privacy/kidtales", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/privacy/{slug}", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "portfolio_http_requests_total")
}
