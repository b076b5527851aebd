package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFlow(t *testing.T) {
	m := New()
	m.ObserveFlow("register", "created", 20*time.Millisecond)
	m.ObserveFlow("register", "created", 5*time.Millisecond)
	m.ObserveFlow("register", "rejected", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.provisioning.WithLabelValues("register", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.provisioning.WithLabelValues("register", "rejected")))
}

func TestCrossProviderAndMail(t *testing.T) {
	m := New()
	m.CrossProviderReuse("GOOGLE")
	m.MailSent("welcome", nil)
	m.MailSent("welcome", errors.New("smtp down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.crossProvider.WithLabelValues("GOOGLE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mailSent.WithLabelValues("welcome", "error")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/workspace/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/workspace/6650c0ffee0000000000abcd", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/workspace/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInflight))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.CrossProviderReuse("GITHUB")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `taskhub_provisioning_cross_provider_total{provider="GITHUB"} 1`))
}

func TestMiddlewareUnmatchedRoutesShareOneSeries(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	for _, p := range []string{"/scan-ak/xyz", "/scan-bq/xyz", "/scan-eo/xyz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequests))
}

func TestRegisterIgnoresDuplicates(t *testing.T) {
	m := New()
	c := NewPoolCollector(nil)
	require.NoError(t, m.Register(c))
	require.NoError(t, m.Register(c))
}
