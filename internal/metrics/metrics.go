package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
)

// Metrics holds all Prometheus metrics for the analyzer. Methods on a nil
// *Metrics are no-ops so packages can be used without instrumentation.
type Metrics struct {
	// Cache
	CacheRequests  *prometheus.CounterVec // labels: kind=historical|forecast, outcome=hit|miss|stale
	CacheEntries   prometheus.Gauge
	StaleFallbacks *prometheus.CounterVec // labels: kind

	// Market data provider
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome=ok|error|rate_limited|circuit_open
	ProviderLatency  *prometheus.HistogramVec // labels: provider
	BreakerState     *prometheus.GaugeVec     // labels: provider; 0=closed, 1=open, 2=half-open

	// Generation
	SynthSeries      prometheus.Counter
	ForecastDuration prometheus.Histogram

	// Outer surfaces
	HTTPRequests  *prometheus.CounterVec // labels: route, code
	StreamClients prometheus.Gauge
	WarmupRuns    *prometheus.CounterVec // labels: outcome=ok|error
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockd_cache_requests_total",
			Help: "Series cache lookups by kind and outcome",
		}, []string{"kind", "outcome"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockd_cache_entries",
			Help: "Number of (symbol, date range) cache entries",
		}),
		StaleFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockd_cache_stale_fallbacks_total",
			Help: "Refreshes that failed and served the last known value",
		}, []string{"kind"}),

		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockd_provider_requests_total",
			Help: "Market data provider calls by outcome",
		}, []string{"provider", "outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockd_provider_request_duration_seconds",
			Help:    "Market data provider call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockd_provider_circuit_breaker_state",
			Help: "Provider circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"provider"}),

		SynthSeries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockd_synthetic_series_total",
			Help: "Series generated synthetically instead of fetched",
		}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockd_forecast_duration_seconds",
			Help:    "Forecast computation latency",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockd_http_requests_total",
			Help: "API requests by route pattern and status code",
		}, []string{"route", "code"}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockd_stream_clients",
			Help: "Connected WebSocket stream clients",
		}),
		WarmupRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockd_warmup_runs_total",
			Help: "Scheduled cache warm-up runs by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.CacheRequests,
		m.CacheEntries,
		m.StaleFallbacks,
		m.ProviderRequests,
		m.ProviderLatency,
		m.BreakerState,
		m.SynthSeries,
		m.ForecastDuration,
		m.HTTPRequests,
		m.StreamClients,
		m.WarmupRuns,
	)

	return m
}

func (m *Metrics) CacheLookup(kind, outcome string) {
	if m != nil {
		m.CacheRequests.WithLabelValues(kind, outcome).Inc()
	}
}

func (m *Metrics) StaleFallback(kind string) {
	if m != nil {
		m.StaleFallbacks.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SetCacheEntries(n int) {
	if m != nil {
		m.CacheEntries.Set(float64(n))
	}
}

func (m *Metrics) ProviderCall(provider, outcome string, d time.Duration) {
	if m != nil {
		m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) SetBreakerState(provider string, state int) {
	if m != nil {
		m.BreakerState.WithLabelValues(provider).Set(float64(state))
	}
}

func (m *Metrics) Synthesized() {
	if m != nil {
		m.SynthSeries.Inc()
	}
}

func (m *Metrics) ObserveForecast(d time.Duration) {
	if m != nil {
		m.ForecastDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) HTTPRequest(route string, code int) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
}

func (m *Metrics) StreamClientDelta(d float64) {
	if m != nil {
		m.StreamClients.Add(d)
	}
}

func (m *Metrics) Warmup(outcome string) {
	if m != nil {
		m.WarmupRuns.WithLabelValues(outcome).Inc()
	}
}

// HealthStatus represents the service health reported on /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	Provider       string
	BreakerState   string
	LastWarmup     time.Time
	LastWarmupErr  string
	StreamsEnabled bool
	StartedAt      time.Time

	now func() time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(provider string) *HealthStatus {
	return &HealthStatus{
		Provider:     provider,
		BreakerState: "closed",
		StartedAt:    time.Now(),
		now:          time.Now,
	}
}

func (h *HealthStatus) SetBreakerState(s string) {
	h.mu.Lock()
	h.BreakerState = s
	h.mu.Unlock()
}

func (h *HealthStatus) SetStreamsEnabled(v bool) {
	h.mu.Lock()
	h.StreamsEnabled = v
	h.mu.Unlock()
}

// RecordWarmup stores the outcome of a cache warm-up run.
func (h *HealthStatus) RecordWarmup(at time.Time, err error) {
	h.mu.Lock()
	h.LastWarmup = at
	h.LastWarmupErr = ""
	if err != nil {
		h.LastWarmupErr = err.Error()
	}
	h.mu.Unlock()
}

// ServeHTTP handles the health endpoint. The service always answers 200:
// a broken provider only degrades data to synthetic series.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	overallStatus := "healthy"
	if h.BreakerState != "closed" || h.LastWarmupErr != "" {
		overallStatus = "degraded"
	}

	lastWarmup := ""
	if !h.LastWarmup.IsZero() {
		lastWarmup = h.LastWarmup.Format(time.RFC3339)
	}

	status := struct {
		Status        string `json:"status"`
		Uptime        string `json:"uptime"`
		Provider      string `json:"provider"`
		BreakerState  string `json:"breaker_state"`
		LastWarmup    string `json:"last_warmup,omitempty"`
		LastWarmupErr string `json:"last_warmup_error,omitempty"`
		Streams       bool   `json:"streams_enabled"`
		Market        string `json:"market"`
	}{
		Status:        overallStatus,
		Uptime:        now.Sub(h.StartedAt).Round(time.Second).String(),
		Provider:      h.Provider,
		BreakerState:  h.BreakerState,
		LastWarmup:    lastWarmup,
		LastWarmupErr: h.LastWarmupErr,
		Streams:       h.StreamsEnabled,
		Market:        markethours.StatusString(now),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz on a separate port.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server for the given gatherer.
func NewServer(addr string, gatherer prometheus.Gatherer, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
