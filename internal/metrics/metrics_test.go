package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheLookup("historical", "hit")
	m.CacheLookup("historical", "hit")
	m.StaleFallback("forecast")
	m.ProviderCall("alphavantage", "ok", 120*time.Millisecond)
	m.SetBreakerState("alphavantage", 1)
	m.Synthesized()
	m.HTTPRequest("GET /api/v1/health", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("historical", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleFallbacks.WithLabelValues("forecast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("alphavantage", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("alphavantage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SynthSeries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET /api/v1/health", "200")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheLookup("historical", "miss")
		m.ProviderCall("x", "error", time.Second)
		m.ObserveForecast(time.Millisecond)
		m.Warmup("ok")
		m.StreamClientDelta(1)
	})
}

func TestHealthStatus(t *testing.T) {
	h := NewHealthStatus("alphavantage")
	h.now = func() time.Time { return h.StartedAt.Add(90 * time.Second) }

	decode := func() map[string]any {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	body := decode()
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1m30s", body["uptime"])
	assert.Equal(t, "alphavantage", body["provider"])
	assert.NotEmpty(t, body["market"])

	h.SetBreakerState("open")
	assert.Equal(t, "degraded", decode()["status"])

	h.SetBreakerState("closed")
	h.RecordWarmup(time.Now(), errors.New("boom"))
	body = decode()
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "boom", body["last_warmup_error"])
}
