package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

const avDaily = `{
  "Meta Data": {"2. Symbol": "TCS.NS"},
  "Time Series (Daily)": {
    "2026-10-16": {"1. open": "3250.0000", "2. high": "3270.5000", "3. low": "3240.1000", "4. close": "3260.456", "5. volume": "1200000"},
    "2026-10-14": {"1. open": "3200.0000", "2. high": "3215.0000", "3. low": "3190.0000", "4. close": "3210.0000", "5. volume": "900000"},
    "2026-10-15": {"1. open": "3210.0000", "2. high": "3255.0000", "3. low": "3205.0000", "4. close": "3250.0000", "5. volume": "1000000"}
  }
}`

func avServer(t *testing.T, body string, status int, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAlphaVantage_ParsesAndSorts(t *testing.T) {
	srv := avServer(t, avDaily, http.StatusOK, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "TIME_SERIES_DAILY", q.Get("function"))
		assert.Equal(t, "TCS.NS", q.Get("symbol"))
		assert.Equal(t, "full", q.Get("outputsize"))
		assert.Equal(t, "demo", q.Get("apikey"))
	})
	av := NewAlphaVantage("demo", srv.URL, 2*time.Second)

	series, err := av.FetchDailySeries(context.Background(), "TCS.NS", model.Range1Y)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "2026-10-14", series[0].Date.String())
	assert.Equal(t, "2026-10-16", series[2].Date.String())
	assert.Equal(t, 3260.46, series[2].Close)
	assert.Equal(t, int64(1200000), series[2].Volume)
	for _, p := range series {
		assert.True(t, p.Valid(), "%+v", p)
	}
}

func TestAlphaVantage_CompactForShortRange(t *testing.T) {
	srv := avServer(t, avDaily, http.StatusOK, func(r *http.Request) {
		assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
	})
	_, err := NewAlphaVantage("demo", srv.URL, time.Second).FetchDailySeries(context.Background(), "TCS.NS", model.Range3M)
	require.NoError(t, err)
}

func TestAlphaVantage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"rate limit note", `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`, http.StatusOK},
		{"information", `{"Information": "premium endpoint"}`, http.StatusOK},
		{"error message", `{"Error Message": "Invalid API call"}`, http.StatusOK},
		{"missing series", `{"Meta Data": {}}`, http.StatusOK},
		{"bad json", `<html>`, http.StatusOK},
		{"server error", `{}`, http.StatusBadGateway},
		{"bad price", `{"Time Series (Daily)": {"2026-10-16": {"1. open": "x", "2. high": "1", "3. low": "1", "4. close": "1", "5. volume": "1"}}}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := avServer(t, tt.body, tt.status, nil)
			series, err := NewAlphaVantage("demo", srv.URL, time.Second).FetchDailySeries(context.Background(), "TCS.NS", model.Range1Y)
			assert.Nil(t, series)
			assert.True(t, errors.Is(err, ErrProviderUnavailable), "got %v", err)
		})
	}
}

func TestAlphaVantage_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAlphaVantage("demo", url, time.Second).FetchDailySeries(context.Background(), "TCS.NS", model.Range1Y)
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
}
