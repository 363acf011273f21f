package api

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/cache"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/forecast"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/synth"
)

var testNow = time.Date(2026, time.October, 19, 11, 0, 0, 0, markethours.IST)

type testEnv struct {
	srv     *httptest.Server
	metrics *metrics.Metrics
	hub     *Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	clock := func() time.Time { return testNow }

	svc := stocks.New(
		catalog.Default(),
		cache.New(cache.WithClock(clock), cache.WithMetrics(m)),
		synth.New(synth.WithRand(rand.New(rand.NewPCG(1, 2))), synth.WithClock(clock)),
		forecast.New(forecast.WithRand(rand.New(rand.NewPCG(3, 4)))),
		stocks.WithClock(clock),
		stocks.WithMetrics(m),
	)
	hub := NewHub(svc, 20*time.Millisecond, m)
	srv := httptest.NewServer(NewRouter(Deps{
		Service:  svc,
		Metrics:  m,
		Health:   metrics.NewHealthStatus("none"),
		Gatherer: reg,
		Hub:      hub,
	}))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, metrics: m, hub: hub}
}

func (e *testEnv) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	var body map[string]any
	resp := env.get(t, "/api/v1/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
}

func TestListStocks(t *testing.T) {
	env := newTestEnv(t)

	var page catalog.Page
	resp := env.get(t, "/api/v1/stocks?page=2&page_size=5", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, page.Stocks, 5)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, catalog.Default().Count(), page.TotalCount)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = env.get(t, "/api/v1/stocks?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	page = catalog.Page{}
	resp = env.get(t, "/api/v1/stocks?page=922337203685477580", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, page.Stocks)
	assert.Equal(t, catalog.Default().Count(), page.TotalCount)
}

func TestCountAndSearch(t *testing.T) {
	env := newTestEnv(t)

	var c stocks.Count
	env.get(t, "/api/v1/stocks/count", &c)
	assert.Equal(t, catalog.Default().Count(), c.Count)

	var hits []model.Symbol
	env.get(t, "/api/v1/search?q=infosys", &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, "INFY.NS", hits[0].Symbol)

	hits = nil
	env.get(t, "/api/v1/search?q=", &hits)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)

	var body struct {
		Symbol    string                     `json:"symbol"`
		DateRange string                     `json:"date_range"`
		Data      []model.EnrichedPricePoint `json:"data"`
	}
	resp := env.get(t, "/api/v1/stocks/tcs/history?range=1y", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TCS.NS", body.Symbol)
	assert.Equal(t, "1y", body.DateRange)
	require.Len(t, body.Data, synth.DefaultHorizon)
	assert.Nil(t, body.Data[18].MA20)
	assert.NotNil(t, body.Data[19].MA20)
	assert.Equal(t, "2026-10-16", body.Data[len(body.Data)-1].Date.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HTTPRequests.WithLabelValues("/api/v1/stocks/{symbol}/history", "200")))
}

func TestHistoryBadRange(t *testing.T) {
	env := newTestEnv(t)
	var body map[string]string
	resp := env.get(t, "/api/v1/stocks/TCS/history?range=7d", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown date range")
}

func TestForecast(t *testing.T) {
	env := newTestEnv(t)

	var f model.Forecast
	resp := env.get(t, "/api/v1/stocks/TCS/forecast?range=1y&period=1m", &f)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.Predictions, 30)
	require.Len(t, f.FuturePredictions, 30)
	assert.Equal(t, "2026-10-19", f.FuturePredictions[0].Date.String())

	resp = env.get(t, "/api/v1/stocks/TCS/forecast?period=1w", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var d stocks.Dashboard
	resp := env.get(t, "/api/v1/stocks/INFY/dashboard", &d)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INFY.NS", d.Symbol)
	assert.Equal(t, "Infosys Ltd.", d.Name)
	assert.NotEmpty(t, d.Historical)
	assert.Len(t, d.Forecast.FuturePredictions, 30)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/api/v1/stocks/count", nil)

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTraceIDPropagated(t *testing.T) {
	env := newTestEnv(t)
	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/v1/stocks/count", nil)
	req.Header.Set("X-Trace-Id", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Trace-Id"))
}

func dial(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestStreamSubscribe(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.hub.Run(ctx)

	conn := dial(t, env)
	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "SUBSCRIBE", ReqID: "r1", Symbol: "tcs", Range: "1y"}))

	var first DashboardMsg
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "DASHBOARD", first.Type)
	assert.Equal(t, "r1", first.ReqID)
	assert.True(t, first.Initial)
	assert.Equal(t, "TCS.NS", first.Data.Symbol)
	assert.Len(t, first.Data.Forecast.FuturePredictions, 30)

	// Periodic refresh pushes the same subscription again.
	var next DashboardMsg
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "DASHBOARD", next.Type)
	assert.False(t, next.Initial)
	assert.Equal(t, "TCS.NS", next.Data.Symbol)
}

func TestStreamUnsubscribeRightAfterSubscribe(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.hub.Run(ctx)

	conn := dial(t, env)
	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "SUBSCRIBE", ReqID: "r1", Symbol: "INFY", Range: "6m"}))
	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "UNSUBSCRIBE", Symbol: "INFY", Range: "6m"}))
	require.NoError(t, conn.WriteJSON(map[string]int64{"ping": 7}))

	var first DashboardMsg
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Initial)

	// A refresh may slip in before the unsubscribe is read; the pong marks
	// the point where both messages have been handled.
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == "pong" {
			break
		}
		require.Equal(t, "DASHBOARD", msg["type"])
	}

	clients := env.hub.snapshot()
	require.Len(t, clients, 1)
	assert.Empty(t, clients[0].subscriptions())

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no refresh after unsubscribe")
}

func TestStreamRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env)

	require.NoError(t, conn.WriteJSON(SubscribeMsg{Type: "SUBSCRIBE", ReqID: "r2", Symbol: "TCS", Range: "3y"}))
	var e ErrorResponse
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, "ERROR", e.Type)
	assert.Equal(t, "r2", e.ReqID)

	require.NoError(t, conn.WriteJSON(map[string]int64{"ping": 42}))
	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
	assert.Equal(t, 42.0, pong["ping"])
}

func TestStreamClientCount(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env)

	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.StreamClients))

	conn.Close()
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNormalize(t *testing.T) {
	s := normalize(SubscribeMsg{Symbol: " infy "})
	assert.Equal(t, subscription{symbol: "INFY.NS", rng: "1y", period: "1m"}, s)
}
