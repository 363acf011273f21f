// Package synth generates plausible daily OHLCV history for NSE symbols
// when no market data provider can serve them. The series are shaped by
// sector heuristics so they trend toward a recent reference price; they
// are illustrative, not statistically modelled.
package synth

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/sector"
)

const (
	DefaultHorizon    = 180
	DefaultVolatility = 0.015
)

var (
	ErrEmptySymbol    = errors.New("synth: empty symbol")
	ErrInvalidHorizon = errors.New("synth: horizon must be positive")
	ErrInvalidBase    = errors.New("synth: base price must be positive")
)

// Rand is the uniform [0,1) source the synthesizer draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// referencePrices are recent closes for the largest names.
var referencePrices = map[string]float64{
	"TCS.NS":        3246.60,
	"RELIANCE.NS":   2952.75,
	"HDFCBANK.NS":   1672.30,
	"INFY.NS":       1456.85,
	"HINDUNILVR.NS": 2304.15,
	"ICICIBANK.NS":  1053.40,
	"SBIN.NS":       775.60,
	"BHARTIARTL.NS": 1248.35,
	"KOTAKBANK.NS":  1765.20,
	"ITC.NS":        428.15,
}

// BasePrice returns the reference price for symbol. Unknown symbols get a
// deterministic price derived from the suffixed ticker length.
func BasePrice(symbol string) float64 {
	sym := catalog.EnsureExchangeSuffix(symbol)
	if p, ok := referencePrices[sym]; ok {
		return p
	}
	return 1500 + 50*float64(len(sym))
}

// Synthesizer generates daily series. It is safe for concurrent use.
type Synthesizer struct {
	mu         sync.Mutex
	rnd        Rand
	volatility float64
	cal        markethours.Calendar
	now        func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand injects the random source, typically a seeded *rand.Rand in tests.
func WithRand(r Rand) Option { return func(s *Synthesizer) { s.rnd = r } }

// WithVolatility sets the daily random amplitude (fraction of base price).
func WithVolatility(v float64) Option { return func(s *Synthesizer) { s.volatility = v } }

// WithCalendar sets the business-day calendar. Default is markethours.Weekdays.
func WithCalendar(c markethours.Calendar) Option { return func(s *Synthesizer) { s.cal = c } }

// WithClock sets the time source that decides "today".
func WithClock(now func() time.Time) Option { return func(s *Synthesizer) { s.now = now } }

// New returns a Synthesizer backed by the process-wide random source.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		rnd:        globalRand{},
		volatility: DefaultVolatility,
		cal:        markethours.Weekdays{},
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type genConfig struct {
	basePrice float64
}

// GenOption tunes a single Generate call.
type GenOption func(*genConfig)

// WithBasePrice overrides the reference price the series converges to.
func WithBasePrice(p float64) GenOption { return func(c *genConfig) { c.basePrice = p } }

// Generate returns exactly horizon business days of OHLCV ending on the last
// business day strictly before today, ascending by date.
//
// For day offset i (horizon for the oldest point, 1 for the newest):
//
//	close = base * (1 - i/horizon*drift + u*vol*volScale + wave(i)) * dip(i)
//
// where u is uniform in [-1, 1) and drift, volScale, wave and dip come from
// the symbol's sector profile.
func (s *Synthesizer) Generate(symbol string, horizon int, opts ...GenOption) ([]model.PricePoint, error) {
	sym := catalog.EnsureExchangeSuffix(symbol)
	if sym == "" {
		return nil, ErrEmptySymbol
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	cfg := genConfig{basePrice: BasePrice(sym)}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.basePrice <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase, cfg.basePrice)
	}

	prof := sector.SynthFor(sym)
	dates := markethours.BusinessDaysBefore(s.cal, markethours.Today(s.now()), horizon)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PricePoint, horizon)
	for k, d := range dates {
		i := horizon - k
		dayFactor := float64(i) / float64(horizon)
		u := (s.rnd.Float64() - 0.5) * 2

		cl := cfg.basePrice * (1 - dayFactor*prof.Drift + u*s.volatility*prof.VolScale + prof.Wave(i)) * prof.Dip(i)
		cl = max(cl, 0.01)
		out[k] = s.bar(d, cl)
	}
	return out, nil
}

// bar derives open, high, low and volume around a close.
// Rounding is monotone, so the OHLC ordering survives it.
func (s *Synthesizer) bar(d model.Date, cl float64) model.PricePoint {
	spread := 0.01 + s.rnd.Float64()*0.01
	op := cl * (1 + (s.rnd.Float64()-0.5)*spread)
	hi := max(op, cl) * (1 + s.rnd.Float64()*0.01)
	lo := min(op, cl) * (1 - s.rnd.Float64()*0.01)
	vol := 500000 + int64(s.rnd.Float64()*2000000)

	return model.PricePoint{
		Date:   d,
		Open:   model.Round2(op),
		High:   model.Round2(hi),
		Low:    model.Round2(lo),
		Close:  model.Round2(cl),
		Volume: vol,
	}
}
