package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCommit("deposit", 500)
	m.ObserveCommit("deposit", 0.75)
	m.ObserveRejection("withdrawal", "insufficient_funds")
	m.ObserveRequest("kyc_update")
	m.ObserveTransition("pending", "rejected")
	m.SetSessionActive(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ledgerCommits.WithLabelValues("deposit")))
	assert.Equal(t, 500.75, testutil.ToFloat64(m.ledgerVolume.WithLabelValues("deposit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerRejections.WithLabelValues("withdrawal", "insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsCreated.WithLabelValues("kyc_update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestDecisions.WithLabelValues("pending", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	m.SetSessionActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
}

func TestMiddleware(t *testing.T) {
	m := New(nil)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/v1/items/{id}", "418")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "safi_http_requests_total"))
}
