package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// GuardOptions tune Guarded.
type GuardOptions struct {
	RequestsPerMinute int           // 0 disables rate limiting
	MaxWait           time.Duration // longest a call may queue for a rate slot
	MaxFailures       int
	ResetTimeout      time.Duration
	Metrics           *metrics.Metrics
	OnBreakerChange   func(to State)
}

// Guarded wraps a Provider with a client-side rate limiter and a circuit
// breaker. Free market-data tiers allow a handful of calls per minute;
// calls that would wait longer than MaxWait fail fast so the caller can
// fall back instead of stalling a request.
type Guarded struct {
	inner   Provider
	limiter *rate.Limiter
	maxWait time.Duration
	breaker *Breaker
	metrics *metrics.Metrics
}

// NewGuarded wraps p.
func NewGuarded(p Provider, opts GuardOptions) *Guarded {
	g := &Guarded{
		inner:   p,
		maxWait: opts.MaxWait,
		breaker: NewBreaker(opts.MaxFailures, opts.ResetTimeout),
		metrics: opts.Metrics,
	}
	if opts.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	g.breaker.OnStateChange = func(from, to State) {
		slog.Warn("provider circuit breaker state change", "provider", p.Name(), "from", from.String(), "to", to.String())
		g.metrics.SetBreakerState(p.Name(), int(to))
		if opts.OnBreakerChange != nil {
			opts.OnBreakerChange(to)
		}
	}
	return g
}

func (g *Guarded) Name() string { return g.inner.Name() }

// Breaker exposes the breaker for health reporting.
func (g *Guarded) Breaker() *Breaker { return g.breaker }

func (g *Guarded) FetchDailySeries(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	start := time.Now()

	if err := g.wait(ctx); err != nil {
		g.metrics.ProviderCall(g.Name(), "rate_limited", time.Since(start))
		return nil, err
	}

	var series []model.PricePoint
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		series, err = g.inner.FetchDailySeries(ctx, symbol, rng)
		if err == nil && len(series) == 0 {
			err = unavailable(g.Name(), "empty series for %s", symbol)
		}
		return err
	})

	switch {
	case errors.Is(err, ErrCircuitOpen):
		g.metrics.ProviderCall(g.Name(), "circuit_open", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, g.Name(), err)
	case err != nil:
		g.metrics.ProviderCall(g.Name(), "error", time.Since(start))
		slog.Warn("provider fetch failed", append(logger.LogWithTrace(ctx),
			"provider", g.Name(), "symbol", symbol, "error", err)...)
		if !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, g.Name(), err)
		}
		return nil, err
	}

	g.metrics.ProviderCall(g.Name(), "ok", time.Since(start))
	return series, nil
}

func (g *Guarded) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	r := g.limiter.Reserve()
	if !r.OK() {
		return unavailable(g.Name(), "rate limiter rejected request")
	}
	d := r.Delay()
	if d == 0 {
		return nil
	}
	if d > g.maxWait {
		r.Cancel()
		return unavailable(g.Name(), "rate limited for %s", d.Round(time.Millisecond))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, g.Name(), ctx.Err())
	}
}

var _ Provider = (*Guarded)(nil)
