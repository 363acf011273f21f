// Package api serves the stock dashboard over HTTP: JSON endpoints for the
// catalog, history, forecasts and dashboards, plus a WebSocket stream that
// pushes dashboards for subscribed symbols.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
)

// StockService is what the handlers need from stocks.Service.
type StockService interface {
	GetHistorical(ctx context.Context, symbol, dateRange string) ([]model.EnrichedPricePoint, error)
	GetForecast(ctx context.Context, symbol, dateRange, period string) (model.Forecast, error)
	SearchSymbols(query string) []model.Symbol
	ListSymbols(page, pageSize int, query string) catalog.Page
	SymbolCount() stocks.Count
	Dashboard(ctx context.Context, symbol, dateRange, period string) (stocks.Dashboard, error)
}

// Deps are the collaborators NewRouter wires together. Health, Gatherer
// and Hub are optional.
type Deps struct {
	Service  StockService
	Metrics  *metrics.Metrics
	Health   http.Handler
	Gatherer prometheus.Gatherer
	Hub      *Hub
}

// NewRouter sets up the API routes.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	h := &handlers{svc: d.Service}

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, d.Metrics, fn))
	}

	if d.Health != nil {
		handle("GET /api/v1/health", d.Health.ServeHTTP)
	} else {
		handle("GET /api/v1/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	handle("GET /api/v1/stocks", h.listStocks)
	handle("GET /api/v1/stocks/count", h.count)
	handle("GET /api/v1/search", h.search)
	handle("GET /api/v1/stocks/{symbol}/history", h.history)
	handle("GET /api/v1/stocks/{symbol}/forecast", h.forecast)
	handle("GET /api/v1/stocks/{symbol}/dashboard", h.dashboard)

	if d.Hub != nil {
		handle("GET /api/v1/stream", d.Hub.ServeWS)
	}
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

type handlers struct {
	svc StockService
}

func (h *handlers) listStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}
	size, err := intParam(q.Get("page_size"), catalog.DefaultPageSize)
	if err != nil || size > 500 {
		writeError(w, http.StatusBadRequest, "invalid page_size")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListSymbols(page, size, q.Get("q")))
}

func (h *handlers) count(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SymbolCount())
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SearchSymbols(r.URL.Query().Get("q")))
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	rng := r.URL.Query().Get("range")
	series, err := h.svc.GetHistorical(r.Context(), symbol, rng)
	if err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":     catalog.EnsureExchangeSuffix(symbol),
		"date_range": rangeOrDefault(rng),
		"data":       series,
	})
}

func (h *handlers) forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := h.svc.GetForecast(r.Context(), r.PathValue("symbol"), q.Get("range"), q.Get("period"))
	if err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := h.svc.Dashboard(r.Context(), r.PathValue("symbol"), q.Get("range"), q.Get("period"))
	if err != nil {
		writeInputError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func rangeOrDefault(s string) model.DateRange {
	if r, err := model.ParseDateRange(s); err == nil {
		return r
	}
	return model.DefaultDateRange
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("must be a positive integer")
	}
	return n, nil
}

// writeInputError maps facade validation errors to 400. Anything else is unexpected.
func writeInputError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownDateRange),
		errors.Is(err, model.ErrUnknownForecastPeriod),
		errors.Is(err, stocks.ErrEmptySymbol):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// setCORS sets CORS headers for the dashboard frontend.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// instrument stamps a trace id, sets CORS headers, and records the status
// per route pattern.
func instrument(pattern string, m *metrics.Metrics, next http.Handler) http.Handler {
	route := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		route = pattern[i+1:]
	}
	prefix := strings.ReplaceAll(strings.Trim(route, "/"), "/", ".")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = logger.GenerateTraceID(prefix, start)
		}
		ctx := logger.WithTraceID(r.Context(), traceID)

		setCORS(w)
		w.Header().Set("X-Trace-Id", traceID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		m.HTTPRequest(route, rec.status)
		slog.Debug("http request", append(logger.LogWithTrace(ctx),
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("api: response writer cannot hijack")
	}
	r.status = http.StatusSwitchingProtocols
	r.wroteHeader = true
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
