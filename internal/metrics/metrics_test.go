package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/users/{login}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, login := range []string{"alice", "bob"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/"+login, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/users/{login}", http.MethodGet, "404")))
}

func TestObserveLogin(t *testing.T) {
	m := New()
	m.ObserveLogin("success")
	m.ObserveLogin("failure")
	m.ObserveLogin("failure")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues("failure")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveLogin("success")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `accountsvc_logins_total{result="success"} 1`)
}
