package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics_CountsByRouteTemplateAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	r := mux.NewRouter()
	r.Use(m.Middleware())
	r.HandleFunc("/levels/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/levels/0b9f8a7c", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/levels/{id}", "404"))
	require.Equal(t, float64(1), got)
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestPrometheusController_ServesMetrics(t *testing.T) {
	r := mux.NewRouter()
	NewPrometheusController("").Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/prometheus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}
