// Package provider fetches real daily price history from external market
// data APIs. Every failure surfaces as ErrProviderUnavailable so callers
// can fall back to synthetic data with a single errors.Is check.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/model"
)

// ErrProviderUnavailable wraps every fetch failure: transport errors,
// non-2xx responses, rate limiting, malformed payloads and empty series.
var ErrProviderUnavailable = errors.New("market data provider unavailable")

// Provider returns daily OHLCV history for an NSE symbol ("TCS.NS"),
// ascending by date. rng is a hint; implementations may return more.
type Provider interface {
	Name() string
	FetchDailySeries(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error)
}

func unavailable(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrProviderUnavailable, name, fmt.Sprintf(format, args...))
}
