// Package scheduler keeps the series cache warm for the most viewed symbols
// by rebuilding their dashboards on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
)

// DefaultSpec runs a warm-up every 12 hours (six-field, seconds first).
const DefaultSpec = "0 0 */12 * * *"

// DefaultSymbols are the large caps refreshed when none are configured.
var DefaultSymbols = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "SBIN.NS", "BHARTIARTL.NS", "KOTAKBANK.NS", "ITC.NS",
}

// Warmer builds (and thereby caches) a dashboard.
type Warmer interface {
	Dashboard(ctx context.Context, symbol, dateRange, period string) (stocks.Dashboard, error)
}

// Config selects what gets warmed and when.
type Config struct {
	Spec    string
	Symbols []string
	Range   string
	Period  string
	Pause   time.Duration // between symbols, to stay under provider rate limits
}

// Scheduler manages the warm-up cron task.
type Scheduler struct {
	Cron    *cron.Cron
	Ctx     context.Context
	warmer  Warmer
	cfg     Config
	metrics *metrics.Metrics
	health  *metrics.HealthStatus
	now     func() time.Time
}

// NewScheduler creates a Scheduler. health and m may be nil.
func NewScheduler(ctx context.Context, w Warmer, cfg Config, m *metrics.Metrics, health *metrics.HealthStatus) *Scheduler {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = DefaultSymbols
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		Ctx:     ctx,
		warmer:  w,
		cfg:     cfg,
		metrics: m,
		health:  health,
		now:     time.Now,
	}
}

// Register adds the warm-up task.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.cfg.Spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register warm-up task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "spec", s.cfg.Spec, "symbols", len(s.cfg.Symbols))
}

// Stop stops the scheduler and waits for a running warm-up to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow warms every configured symbol and returns the joined per-symbol errors.
func (s *Scheduler) RunNow() error {
	start := s.now()
	ctx := logger.WithTraceID(s.Ctx, logger.GenerateTraceID("warmup", start))
	slog.Info("running warm-up", logger.LogWithTrace(ctx)...)

	var errs []error
	warmed := 0
	for i, sym := range s.cfg.Symbols {
		if i > 0 && s.cfg.Pause > 0 {
			select {
			case <-ctx.Done():
				errs = append(errs, ctx.Err())
				return s.finish(ctx, start, warmed, errs)
			case <-time.After(s.cfg.Pause):
			}
		}
		if _, err := s.warmer.Dashboard(ctx, sym, s.cfg.Range, s.cfg.Period); err != nil {
			slog.Warn("warm-up failed", append(logger.LogWithTrace(ctx), "symbol", sym, "error", err)...)
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		warmed++
	}
	return s.finish(ctx, start, warmed, errs)
}

func (s *Scheduler) finish(ctx context.Context, start time.Time, warmed int, errs []error) error {
	err := errors.Join(errs...)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.Warmup(outcome)
	if s.health != nil {
		s.health.RecordWarmup(start, err)
	}
	slog.Info("warm-up completed", append(logger.LogWithTrace(ctx),
		"warmed", warmed, "failed", len(errs), "duration", s.now().Sub(start))...)
	return err
}
