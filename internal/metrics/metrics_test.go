package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	m.Observe("GET /orders", "200", 12*time.Millisecond)
	m.Observe("GET /orders", "200", 3*time.Millisecond)
	m.Observe("GET /orders", "error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /orders", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /orders", "error")))

	var nilMetrics *ClientMetrics
	assert.NotPanics(t, func() { nilMetrics.Observe("GET /orders", "200", time.Second) })
}

func TestServerMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler(reg))

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /orders/{id}", "418")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "order_console_http_requests_total"))
}
