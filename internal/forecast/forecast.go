// Package forecast projects a future price path from a daily series using
// a random walk with sector drift, short-term momentum, mean reversion and
// a weekday effect, wrapped in a widening confidence band. It also produces
// a back-test overlay for the most recent known days.
package forecast

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/sector"
)

const (
	// DefaultMinHistory is the shortest series Predict will forecast from.
	DefaultMinHistory = 30

	// BacktestDays is how many recent points the back-test overlay covers.
	BacktestDays = 30

	// BacktestError bounds the back-test noise: price = close * (1 + e), |e| <= 1.2%.
	BacktestError = 0.012

	momentumWindow  = 10
	sectorWeight    = 0.7
	momentumWeight  = 0.3
	volPerDay       = 0.0002
	anchorDrift     = 0.001
	reversionFactor = 0.01
	weekdayEffect   = 0.001
	bandBase        = 0.015
	bandPerDay      = 0.0008
)

// Rand is the uniform [0,1) source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Engine produces forecasts. It is safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	rnd        Rand
	cal        markethours.Calendar
	minHistory int
}

// Option configures an Engine.
type Option func(*Engine)

func WithRand(r Rand) Option                     { return func(e *Engine) { e.rnd = r } }
func WithCalendar(c markethours.Calendar) Option { return func(e *Engine) { e.cal = c } }
func WithMinHistory(n int) Option                { return func(e *Engine) { e.minHistory = n } }

// New returns an Engine with the weekday calendar and the process-wide random source.
func New(opts ...Option) *Engine {
	e := &Engine{
		rnd:        globalRand{},
		cal:        markethours.Weekdays{},
		minHistory: DefaultMinHistory,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Predict builds the full forecast for symbol: back-test, projection over
// period's horizon and back-test accuracy. A series shorter than the
// minimum history yields an empty Forecast, which callers must read as
// "insufficient data" rather than a failure.
func (e *Engine) Predict(symbol string, series []model.PricePoint, period model.ForecastPeriod) model.Forecast {
	if len(series) == 0 || len(series) < e.minHistory {
		return model.Forecast{
			Predictions:       []model.ForecastPoint{},
			FuturePredictions: []model.ForecastPoint{},
		}
	}

	back := e.Backtest(series)
	f := model.Forecast{
		Predictions:       back,
		FuturePredictions: e.Project(symbol, series, period.HorizonDays()),
	}

	actual := model.Closes(series[len(series)-len(back):])
	predicted := make([]float64, len(back))
	for i, p := range back {
		predicted[i] = p.Price
	}
	if acc, err := Evaluate(actual, predicted); err == nil {
		f.Accuracy = &acc
	}
	return f
}

// Backtest perturbs each of the last BacktestDays closes by a uniform error
// within ±BacktestError. Lower and Upper equal Price.
func (e *Engine) Backtest(series []model.PricePoint) []model.ForecastPoint {
	tail := series[max(0, len(series)-BacktestDays):]

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.ForecastPoint, len(tail))
	for i, p := range tail {
		eps := (e.rnd.Float64() - 0.5) * 2 * BacktestError
		price := model.Round2(p.Close * (1 + eps))
		out[i] = model.ForecastPoint{Date: p.Date, Price: price, Lower: price, Upper: price}
	}
	return out
}

// Project walks horizon business days past the last historical date.
// Dates are laid out first, so weekday effects always see real trading days.
//
// Day i (1-based) moves the price by
//
//	trend + noise(i) + reversion(i) + weekday(i)
//
// where trend blends the sector draw (70%) with the trailing 10-day momentum
// (30%), noise is uniform within ±(vol + i*0.0002), and reversion pulls 1%
// of the relative gap toward an anchor rising 0.1% per day from the last close.
// The band half-width is 0.015 + i*0.0008 of the price. Bounds are rounded
// outward to paise and the relative width never shrinks from one day to the
// next, which matters for low-priced tickers where a paisa is a large step.
//
// Like Predict, Project returns an empty slice for series below the minimum history.
func (e *Engine) Project(symbol string, series []model.PricePoint, horizon int) []model.ForecastPoint {
	if len(series) == 0 || len(series) < e.minHistory || horizon <= 0 {
		return []model.ForecastPoint{}
	}

	last := series[len(series)-1]
	dates := markethours.BusinessDaysAfter(e.cal, last.Date, horizon)
	prof := sector.ForecastFor(symbol)

	e.mu.Lock()
	defer e.mu.Unlock()

	trend := sectorWeight*(prof.TrendBase+e.rnd.Float64()*prof.TrendSpread) +
		momentumWeight*momentum(series)

	price := last.Close
	width := 0.0
	out := make([]model.ForecastPoint, horizon)
	for k, d := range dates {
		i := float64(k + 1)

		dayVol := prof.Volatility + i*volPerDay
		noise := (e.rnd.Float64() - 0.5) * 2 * dayVol
		anchor := last.Close * (1 + i*anchorDrift)
		reversion := (anchor - price) / price * reversionFactor

		price *= 1 + trend + noise + reversion + weekday(d.Weekday())
		if price < 0.01 {
			price = 0.01
		}

		p := model.Round2(price)
		hw := max(bandBase+i*bandPerDay, width)
		lower := model.Floor2(p * (1 - hw))
		upper := model.Ceil2(p * (1 + hw))
		width = (upper - lower) / 2 / p
		out[k] = model.ForecastPoint{Date: d, Price: p, Lower: lower, Upper: upper}
	}
	return out
}

// momentum is the average daily return over the trailing window.
func momentum(series []model.PricePoint) float64 {
	w := series[max(0, len(series)-momentumWindow):]
	if len(w) < 2 || w[0].Close == 0 {
		return 0
	}
	return (w[len(w)-1].Close/w[0].Close - 1) / float64(len(w))
}

func weekday(wd time.Weekday) float64 {
	switch wd {
	case time.Friday:
		return -weekdayEffect
	case time.Monday:
		return weekdayEffect
	}
	return 0
}
