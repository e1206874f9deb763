package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodPost, "/sentry/issue", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/sentry/issue", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/sentry/issue", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/sentry/issue", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/sentry/issue", "400")))
}

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream(OutcomeSuccess, time.Millisecond)
	m.ObserveUpstream(OutcomeUnauthorized, time.Millisecond)
	m.ObserveUpstream(OutcomeUnauthorized, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(OutcomeUnauthorized)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(OutcomeError)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveUpstream(OutcomeError, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `relay_upstream_requests_total{outcome="error"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewIsIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveUpstream(OutcomeSuccess, time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.UpstreamRequests.WithLabelValues(OutcomeSuccess)))
}
