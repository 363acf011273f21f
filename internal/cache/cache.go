// Package cache keeps enriched historical series and their forecasts per
// (symbol, date range) for the lifetime of the process.
//
// An entry is fresh for the staleness window (24h by default). Past that
// the next read reloads it; if the reload fails, the last known-good value
// is served instead of nothing. Concurrent reloads of the same key
// collapse into one load. Entries are never evicted.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// DefaultStaleness is how long an entry is served without reloading.
const DefaultStaleness = 24 * time.Hour

// ErrNoValue is returned when a load fails and nothing was cached before.
var ErrNoValue = errors.New("cache: load failed and no prior value")

// Outcome says where a returned value came from.
type Outcome int

const (
	Hit       Outcome = iota // fresh cached value
	Refreshed                // just loaded
	Stale                    // load failed, last known-good value served
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Refreshed:
		return "miss"
	case Stale:
		return "stale"
	}
	return "unknown"
}

// Entry is the cached state for one (symbol, date range).
type Entry struct {
	Symbol          string
	DateRange       model.DateRange
	ForecastPeriod  model.ForecastPeriod // "" until a forecast is stored
	Historical      []model.EnrichedPricePoint
	Forecast        model.Forecast
	LastUpdated     time.Time
	ForecastUpdated time.Time

	// Version counts Puts. A forecast is only stored against the version
	// of the series it was computed from.
	Version uint64
}

type key struct {
	symbol string
	rng    model.DateRange
}

func (k key) String() string { return k.symbol + "-" + string(k.rng) }

func newKey(symbol string, rng model.DateRange) key {
	return key{symbol: catalog.EnsureExchangeSuffix(symbol), rng: rng}
}

// Cache is safe for concurrent use. Returned slices are shared with the
// cache and must be treated as read-only.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]*Entry
	group   singleflight.Group

	staleness time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

func WithStaleness(d time.Duration) Option  { return func(c *Cache) { c.staleness = d } }
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }
func WithMetrics(m *metrics.Metrics) Option { return func(c *Cache) { c.metrics = m } }

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[key]*Entry),
		staleness: DefaultStaleness,
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns a copy of the entry regardless of age.
func (c *Cache) Get(symbol string, rng model.DateRange) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[newKey(symbol, rng)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Put stores a historical series and stamps it now. Any forecast derived
// from the previous series is dropped.
func (c *Cache) Put(symbol string, rng model.DateRange, historical []model.EnrichedPricePoint) {
	k := newKey(symbol, rng)

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		e = &Entry{Symbol: k.symbol, DateRange: rng}
		c.entries[k] = e
	}
	e.Historical = historical
	e.LastUpdated = c.now()
	e.Version++
	e.Forecast = model.Forecast{}
	e.ForecastPeriod = ""
	e.ForecastUpdated = time.Time{}
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries(n)
}

// GetForecast returns the stored forecast if it was built for period, has
// both back-test and future points, and is not stale.
func (c *Cache) GetForecast(symbol string, rng model.DateRange, period model.ForecastPeriod) (model.Forecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[newKey(symbol, rng)]
	if !ok || e.ForecastPeriod != period || !e.Forecast.Complete() || c.stale(e.ForecastUpdated) {
		return model.Forecast{}, false
	}
	return e.Forecast, true
}

// PutForecast stores a forecast for period, creating the entry if needed.
func (c *Cache) PutForecast(symbol string, rng model.DateRange, period model.ForecastPeriod, f model.Forecast) {
	c.putForecast(newKey(symbol, rng), period, f, nil)
}

// putForecast stores f unless version is set and the series has been
// replaced since. It reports whether f was stored.
func (c *Cache) putForecast(k key, period model.ForecastPeriod, f model.Forecast, version *uint64) bool {
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		if version != nil && *version != 0 {
			c.mu.Unlock()
			return false
		}
		e = &Entry{Symbol: k.symbol, DateRange: k.rng}
		c.entries[k] = e
	}
	if version != nil && e.Version != *version {
		c.mu.Unlock()
		return false
	}
	e.Forecast = f
	e.ForecastPeriod = period
	e.ForecastUpdated = c.now()
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries(n)
	return true
}

func (c *Cache) stale(at time.Time) bool {
	return at.IsZero() || c.now().Sub(at) > c.staleness
}

// freshHistorical returns the series if present, non-empty and within the staleness window.
func (c *Cache) freshHistorical(k key) ([]model.EnrichedPricePoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok || len(e.Historical) == 0 || c.stale(e.LastUpdated) {
		return nil, false
	}
	return e.Historical, true
}

// HistoricalLoader produces a fresh enriched series.
type HistoricalLoader func(ctx context.Context) ([]model.EnrichedPricePoint, error)

// Historical returns the cached series for (symbol, rng) while fresh, and
// otherwise calls load. A successful load replaces the entry. A failed
// load falls back to the previous series whatever its age; with no
// previous series the error is returned wrapped in ErrNoValue.
func (c *Cache) Historical(ctx context.Context, symbol string, rng model.DateRange, load HistoricalLoader) ([]model.EnrichedPricePoint, Outcome, error) {
	k := newKey(symbol, rng)
	if h, ok := c.freshHistorical(k); ok {
		c.metrics.CacheLookup("historical", Hit.String())
		return h, Hit, nil
	}

	v, err, _ := c.group.Do("historical|"+k.String(), func() (any, error) {
		if h, ok := c.freshHistorical(k); ok {
			return h, nil
		}
		h, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(k.symbol, rng, h)
		return h, nil
	})
	if err == nil {
		c.metrics.CacheLookup("historical", Refreshed.String())
		return v.([]model.EnrichedPricePoint), Refreshed, nil
	}

	if prior, ok := c.Get(k.symbol, rng); ok && len(prior.Historical) > 0 {
		slog.Warn("serving stale historical series", append(logger.LogWithTrace(ctx),
			"key", k.String(), "last_updated", prior.LastUpdated, "error", err)...)
		c.metrics.CacheLookup("historical", Stale.String())
		c.metrics.StaleFallback("historical")
		return prior.Historical, Stale, nil
	}
	return nil, Refreshed, fmt.Errorf("%w: %s: %w", ErrNoValue, k, err)
}

// ForecastLoader builds a forecast from the cached series, which is nil
// when the entry has none.
type ForecastLoader func(ctx context.Context, historical []model.EnrichedPricePoint) (model.Forecast, error)

// Forecast returns the stored forecast for period while it qualifies (see
// GetForecast), and otherwise calls load with the current series. Complete
// results are stored unless a Put replaced the series during the load;
// empty ones (insufficient history) are returned but not stored. A failed
// load falls back to the previous forecast for the same period.
func (c *Cache) Forecast(ctx context.Context, symbol string, rng model.DateRange, period model.ForecastPeriod, load ForecastLoader) (model.Forecast, Outcome, error) {
	k := newKey(symbol, rng)
	if f, ok := c.GetForecast(k.symbol, rng, period); ok {
		c.metrics.CacheLookup("forecast", Hit.String())
		return f, Hit, nil
	}

	v, err, _ := c.group.Do("forecast|"+k.String()+"|"+string(period), func() (any, error) {
		if f, ok := c.GetForecast(k.symbol, rng, period); ok {
			return f, nil
		}
		base, _ := c.Get(k.symbol, rng)
		f, err := load(ctx, base.Historical)
		if err != nil {
			return nil, err
		}
		if f.Complete() && !c.putForecast(k, period, f, &base.Version) {
			slog.Debug("series replaced during forecast, not storing", append(logger.LogWithTrace(ctx),
				"key", k.String(), "period", string(period))...)
		}
		return f, nil
	})
	if err == nil {
		c.metrics.CacheLookup("forecast", Refreshed.String())
		return v.(model.Forecast), Refreshed, nil
	}

	if prior, ok := c.Get(k.symbol, rng); ok && prior.ForecastPeriod == period && prior.Forecast.Complete() {
		slog.Warn("serving stale forecast", append(logger.LogWithTrace(ctx),
			"key", k.String(), "period", string(period), "error", err)...)
		c.metrics.CacheLookup("forecast", Stale.String())
		c.metrics.StaleFallback("forecast")
		return prior.Forecast, Stale, nil
	}
	return model.Forecast{}, Refreshed, fmt.Errorf("%w: %s/%s: %w", ErrNoValue, k, period, err)
}
