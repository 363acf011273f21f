// Package stocks is the dashboard-facing facade over the catalog, the
// series cache, the market data provider, the synthesizer and the
// forecast engine.
//
// Only invalid caller input is reported as an error. Every data failure
// degrades instead: provider errors fall back to synthetic series, failed
// refreshes serve the last known value, and when nothing at all can be
// produced the result is empty.
package stocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/cache"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/forecast"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/indicator"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/provider"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/synth"
)

// ErrEmptySymbol is returned when the symbol is blank.
var ErrEmptySymbol = errors.New("empty symbol")

// Service is safe for concurrent use.
type Service struct {
	catalog  *catalog.Catalog
	cache    *cache.Cache
	synth    *synth.Synthesizer
	engine   *forecast.Engine
	provider provider.Provider // nil: synthesize everything
	metrics  *metrics.Metrics

	synthDays int
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithProvider sets the real market data source tried before synthesis.
func WithProvider(p provider.Provider) Option { return func(s *Service) { s.provider = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithSynthDays sets how many business days a synthetic series covers.
func WithSynthDays(n int) Option { return func(s *Service) { s.synthDays = n } }

// WithClock sets the clock used to trim series to a date range.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New wires a Service.
func New(cat *catalog.Catalog, c *cache.Cache, syn *synth.Synthesizer, eng *forecast.Engine, opts ...Option) *Service {
	s := &Service{
		catalog:   cat,
		cache:     c,
		synth:     syn,
		engine:    eng,
		synthDays: synth.DefaultHorizon,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// request is a validated (symbol, range, period) triple.
type request struct {
	symbol string
	rng    model.DateRange
	period model.ForecastPeriod
}

func parseRequest(symbol, dateRange, period string) (request, error) {
	sym := catalog.EnsureExchangeSuffix(symbol)
	if sym == "" {
		return request{}, ErrEmptySymbol
	}
	rng, err := model.ParseDateRange(dateRange)
	if err != nil {
		return request{}, err
	}
	p, err := model.ParseForecastPeriod(period)
	if err != nil {
		return request{}, err
	}
	return request{symbol: sym, rng: rng, period: p}, nil
}

// GetHistorical returns the enriched daily series for symbol over dateRange
// ("" selects 1y). The returned slice is shared with the cache and must not
// be modified.
func (s *Service) GetHistorical(ctx context.Context, symbol, dateRange string) ([]model.EnrichedPricePoint, error) {
	req, err := parseRequest(symbol, dateRange, "")
	if err != nil {
		return nil, err
	}
	return s.historical(ctx, req), nil
}

func (s *Service) historical(ctx context.Context, req request) []model.EnrichedPricePoint {
	h, _, err := s.cache.Historical(ctx, req.symbol, req.rng, func(ctx context.Context) ([]model.EnrichedPricePoint, error) {
		return s.loadHistorical(ctx, req)
	})
	if err != nil {
		slog.Error("no historical data", append(logger.LogWithTrace(ctx),
			"symbol", req.symbol, "range", string(req.rng), "error", err)...)
		return []model.EnrichedPricePoint{}
	}
	return h
}

// loadHistorical tries the provider first and synthesizes on any failure.
func (s *Service) loadHistorical(ctx context.Context, req request) ([]model.EnrichedPricePoint, error) {
	now := s.now().In(markethours.IST)

	if s.provider != nil {
		series, err := s.provider.FetchDailySeries(ctx, req.symbol, req.rng)
		if err == nil {
			if limited := model.Limit(series, req.rng, now); len(limited) > 0 {
				return indicator.Enrich(limited), nil
			}
			err = errors.New("no points inside range")
		}
		slog.Warn("falling back to synthetic series", append(logger.LogWithTrace(ctx),
			"symbol", req.symbol, "provider", s.provider.Name(), "error", err)...)
	}

	series, err := s.synth.Generate(req.symbol, s.synthDays)
	if err != nil {
		return nil, err
	}
	s.metrics.Synthesized()
	return indicator.Enrich(model.Limit(series, req.rng, now)), nil
}

// GetForecast returns the back-test overlay and projected path for symbol,
// computed from its dateRange history over period ("" selects 1m). An
// empty Forecast means the history was too short.
func (s *Service) GetForecast(ctx context.Context, symbol, dateRange, period string) (model.Forecast, error) {
	req, err := parseRequest(symbol, dateRange, period)
	if err != nil {
		return model.Forecast{}, err
	}
	s.historical(ctx, req)
	return s.forecast(ctx, req), nil
}

// forecast predicts from the series currently cached for req, so the
// stored forecast always matches the stored history.
func (s *Service) forecast(ctx context.Context, req request) model.Forecast {
	f, _, err := s.cache.Forecast(ctx, req.symbol, req.rng, req.period, func(_ context.Context, hist []model.EnrichedPricePoint) (model.Forecast, error) {
		start := time.Now()
		f := s.engine.Predict(req.symbol, model.Bare(hist), req.period)
		s.metrics.ObserveForecast(time.Since(start))
		return f, nil
	})
	if err != nil {
		slog.Error("no forecast", append(logger.LogWithTrace(ctx),
			"symbol", req.symbol, "period", string(req.period), "error", err)...)
		return emptyForecast()
	}
	return f
}

func emptyForecast() model.Forecast {
	return model.Forecast{Predictions: []model.ForecastPoint{}, FuturePredictions: []model.ForecastPoint{}}
}

// SearchSymbols matches query against tickers and company names. A blank
// query matches nothing.
func (s *Service) SearchSymbols(query string) []model.Symbol {
	return s.catalog.Search(query)
}

// ListSymbols pages through the catalog, optionally filtered by query.
func (s *Service) ListSymbols(page, pageSize int, query string) catalog.Page {
	return s.catalog.Page(page, pageSize, query)
}

// Count is the catalog size at a point in time.
type Count struct {
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"last_updated"`
}

func (s *Service) SymbolCount() Count {
	return Count{Count: s.catalog.Count(), LastUpdated: s.now()}
}

// Summary is the headline figures shown above the charts.
type Summary struct {
	LastClose      float64     `json:"last_close"`
	Change         float64     `json:"change"`
	ChangePercent  float64     `json:"change_percent"`
	RangeHigh      float64     `json:"range_high"`
	RangeLow       float64     `json:"range_low"`
	RSI            *float64    `json:"rsi"`
	ForecastClose  float64     `json:"forecast_close,omitempty"`
	ForecastChange float64     `json:"forecast_change_percent,omitempty"`
	AsOf           *model.Date `json:"as_of,omitempty"`
}

// Dashboard is everything one stock page needs.
type Dashboard struct {
	Symbol         string                     `json:"symbol"`
	Name           string                     `json:"name"`
	DateRange      model.DateRange            `json:"date_range"`
	ForecastPeriod model.ForecastPeriod       `json:"forecast_period"`
	Market         string                     `json:"market"`
	Summary        Summary                    `json:"summary"`
	Historical     []model.EnrichedPricePoint `json:"historical"`
	Forecast       model.Forecast             `json:"forecast"`
}

// Dashboard returns history, forecast and summary for symbol in one call.
func (s *Service) Dashboard(ctx context.Context, symbol, dateRange, period string) (Dashboard, error) {
	req, err := parseRequest(symbol, dateRange, period)
	if err != nil {
		return Dashboard{}, err
	}

	hist := s.historical(ctx, req)
	f := s.forecast(ctx, req)

	return Dashboard{
		Symbol:         req.symbol,
		Name:           s.catalog.Name(req.symbol),
		DateRange:      req.rng,
		ForecastPeriod: req.period,
		Market:         markethours.StatusString(s.now()),
		Summary:        summarize(hist, f),
		Historical:     hist,
		Forecast:       f,
	}, nil
}

func summarize(hist []model.EnrichedPricePoint, f model.Forecast) Summary {
	var sum Summary
	if len(hist) == 0 {
		return sum
	}

	last := hist[len(hist)-1]
	sum.LastClose = last.Close
	sum.RSI = last.RSI
	sum.AsOf = &last.Date
	sum.RangeHigh, sum.RangeLow = last.High, last.Low
	for _, p := range hist {
		sum.RangeHigh = max(sum.RangeHigh, p.High)
		sum.RangeLow = min(sum.RangeLow, p.Low)
	}
	if len(hist) > 1 {
		prev := hist[len(hist)-2].Close
		sum.Change = model.Round2(last.Close - prev)
		if prev != 0 {
			sum.ChangePercent = model.Round2((last.Close - prev) / prev * 100)
		}
	}
	if n := len(f.FuturePredictions); n > 0 && last.Close != 0 {
		end := f.FuturePredictions[n-1].Price
		sum.ForecastClose = end
		sum.ForecastChange = model.Round2((end - last.Close) / last.Close * 100)
	}
	return sum
}
