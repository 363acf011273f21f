package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
)

type recordingWarmer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *recordingWarmer) Dashboard(_ context.Context, symbol, dateRange, period string) (stocks.Dashboard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, symbol+"|"+dateRange+"|"+period)
	if r.fail[symbol] {
		return stocks.Dashboard{}, errors.New("bad symbol")
	}
	return stocks.Dashboard{Symbol: symbol}, nil
}

func TestRunNowWarmsEverySymbol(t *testing.T) {
	w := &recordingWarmer{}
	m := metrics.New(prometheus.NewRegistry())
	health := metrics.NewHealthStatus("none")
	s := NewScheduler(context.Background(), w, Config{Symbols: []string{"TCS", "INFY"}, Range: "1y", Period: "1m"}, m, health)

	require.NoError(t, s.RunNow())
	assert.Equal(t, []string{"TCS|1y|1m", "INFY|1y|1m"}, w.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WarmupRuns.WithLabelValues("ok")))
	assert.False(t, health.LastWarmup.IsZero())
	assert.Empty(t, health.LastWarmupErr)
}

func TestRunNowContinuesPastFailures(t *testing.T) {
	w := &recordingWarmer{fail: map[string]bool{"BAD": true}}
	m := metrics.New(prometheus.NewRegistry())
	health := metrics.NewHealthStatus("none")
	s := NewScheduler(context.Background(), w, Config{Symbols: []string{"BAD", "TCS"}}, m, health)

	err := s.RunNow()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
	assert.Len(t, w.calls, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WarmupRuns.WithLabelValues("error")))
	assert.NotEmpty(t, health.LastWarmupErr)
}

func TestRunNowStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &recordingWarmer{}
	s := NewScheduler(ctx, w, Config{Symbols: []string{"TCS", "INFY", "SBIN"}, Pause: time.Hour}, nil, nil)

	err := s.RunNow()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, len(w.calls))
}

func TestDefaults(t *testing.T) {
	s := NewScheduler(context.Background(), &recordingWarmer{}, Config{}, nil, nil)
	assert.Equal(t, DefaultSpec, s.cfg.Spec)
	assert.Equal(t, DefaultSymbols, s.cfg.Symbols)
	require.NoError(t, s.Register())
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &recordingWarmer{}, Config{Spec: "every tuesday"}, nil, nil)
	assert.Error(t, s.Register())
}
