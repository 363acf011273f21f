// Command stockd serves NSE stock history, indicators and forecasts over
// HTTP and WebSocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/Bhanuprakashgu/stock-analyzer/config"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/api"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/cache"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/catalog"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/forecast"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/logger"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/markethours"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/metrics"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/provider"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/scheduler"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/stocks"
	"github.com/Bhanuprakashgu/stock-analyzer/internal/synth"
)

func main() {
	cmd := &cli.Command{
		Name:  "stockd",
		Usage: "NSE stock history and forecast service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("STOCKD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "API listen address (overrides server.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides log.level)",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "warm",
				Usage:  "Run one cache warm-up over the configured symbols and exit",
				Action: warmAction,
			},
			{
				Name:  "dashboard",
				Usage: "Print one dashboard as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "symbol", Aliases: []string{"s"}, Usage: "NSE ticker, e.g. TCS", Required: true},
					&cli.StringFlag{Name: "range", Aliases: []string{"r"}, Usage: "3m, 6m, 1y, 2y, 5y or max", Value: "1y"},
					&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Usage: "1m, 3m or 6m", Value: "1m"},
				},
				Action: dashboardAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("stockd failed", "error", err)
		os.Exit(1)
	}
}

// app is the wired object graph.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	health   *metrics.HealthStatus
	service  *stocks.Service
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

func build(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger.Init("stockd", level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var cal markethours.Calendar = markethours.Weekdays{}
	if cfg.Synth.Calendar == "nse" {
		cal = markethours.NSE{}
	}

	p, err := newProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	providerName := config.ProviderNone
	if p != nil {
		providerName = p.Name()
	}
	health := metrics.NewHealthStatus(providerName)

	opts := []stocks.Option{stocks.WithMetrics(m), stocks.WithSynthDays(cfg.Synth.Days)}
	if p != nil {
		guarded := provider.NewGuarded(p, provider.GuardOptions{
			RequestsPerMinute: cfg.Provider.RequestsPerMinute,
			MaxWait:           cfg.Provider.MaxWait,
			MaxFailures:       cfg.Provider.BreakerFailures,
			ResetTimeout:      cfg.Provider.BreakerReset,
			Metrics:           m,
			OnBreakerChange:   func(to provider.State) { health.SetBreakerState(to.String()) },
		})
		opts = append(opts, stocks.WithProvider(guarded))
	}

	svc := stocks.New(
		catalog.Default(),
		cache.New(cache.WithStaleness(cfg.Cache.Staleness), cache.WithMetrics(m)),
		synth.New(synth.WithVolatility(cfg.Synth.Volatility), synth.WithCalendar(cal)),
		forecast.New(forecast.WithMinHistory(cfg.Forecast.MinHistory), forecast.WithCalendar(cal)),
		opts...,
	)

	slog.Info("stockd configured",
		"provider", providerName,
		"symbols", catalog.Default().Count(),
		"synth_days", cfg.Synth.Days,
		"calendar", cfg.Synth.Calendar,
		"market", markethours.StatusString(time.Now()),
	)

	return &app{cfg: cfg, registry: reg, metrics: m, health: health, service: svc}, nil
}

// newProvider returns nil for the "none" kind.
func newProvider(c config.ProviderConfig) (provider.Provider, error) {
	switch c.Kind {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderAlphaVantage:
		return provider.NewAlphaVantage(c.AlphaVantageKey, c.BaseURL, c.Timeout), nil
	case config.ProviderSmartAPI:
		return provider.NewSmartAPI(provider.SmartAPICredentials{
			APIKey:     c.AngelAPIKey,
			ClientCode: c.AngelClientCode,
			Password:   c.AngelPassword,
			TOTPSecret: c.AngelTOTPSecret,
		}, c.BaseURL, c.Timeout), nil
	}
	return nil, fmt.Errorf("unknown provider kind %q", c.Kind)
}

func (a *app) scheduler(ctx context.Context) *scheduler.Scheduler {
	w := a.cfg.Warmer
	return scheduler.NewScheduler(ctx, a.service, scheduler.Config{
		Spec:    w.Cron,
		Symbols: w.Symbols,
		Range:   w.Range,
		Period:  w.Period,
		Pause:   w.Pause,
	}, a.metrics, a.health)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := build(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsSrv *metrics.Server
	if a.cfg.Metrics.Addr != "" {
		metricsSrv = metrics.NewServer(a.cfg.Metrics.Addr, a.registry, a.health)
		metricsSrv.Start()
	}

	hub := api.NewHub(a.service, a.cfg.Server.StreamInterval, a.metrics)
	go hub.Run(ctx)
	a.health.SetStreamsEnabled(true)

	var sched *scheduler.Scheduler
	if a.cfg.Warmer.Enabled {
		sched = a.scheduler(ctx)
		if err := sched.Register(); err != nil {
			return err
		}
		sched.Start()
		if a.cfg.Warmer.RunOnStart {
			go sched.RunNow()
		}
	}

	srv := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: api.NewRouter(api.Deps{
			Service:  a.service,
			Metrics:  a.metrics,
			Health:   a.health,
			Gatherer: a.registry,
			Hub:      hub,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server listening", "addr", a.cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("api server shutdown", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Stop(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown", "error", err)
		}
	}
	slog.Info("shutdown complete")
	return nil
}

func warmAction(ctx context.Context, cmd *cli.Command) error {
	a, err := build(cmd)
	if err != nil {
		return err
	}
	return a.scheduler(ctx).RunNow()
}

func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	a, err := build(cmd)
	if err != nil {
		return err
	}
	d, err := a.service.Dashboard(ctx, cmd.String("symbol"), cmd.String("range"), cmd.String("period"))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
