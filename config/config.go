// Package config loads stockd settings from an optional YAML file,
// applies environment overrides and validates the result.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider kinds.
const (
	ProviderNone         = "none"
	ProviderAlphaVantage = "alphavantage"
	ProviderSmartAPI     = "smartapi"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Synth    SynthConfig    `yaml:"synth"`
	Forecast ForecastConfig `yaml:"forecast"`
	Warmer   WarmerConfig   `yaml:"warmer"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	StreamInterval time.Duration `yaml:"stream_interval" validate:"gt=0"`
}

// MetricsConfig.Addr serves /metrics and /healthz separately; empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// ProviderConfig selects the market data source. Credentials are only
// required for the kind that uses them.
type ProviderConfig struct {
	Kind              string        `yaml:"kind" validate:"oneof=none alphavantage smartapi"`
	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
	MaxWait           time.Duration `yaml:"max_wait" validate:"gte=0"`
	BreakerFailures   int           `yaml:"breaker_failures" validate:"gte=1"`
	BreakerReset      time.Duration `yaml:"breaker_reset" validate:"gt=0"`

	AlphaVantageKey string `yaml:"alphavantage_api_key" validate:"required_if=Kind alphavantage"`

	AngelAPIKey     string `yaml:"angel_api_key" validate:"required_if=Kind smartapi"`
	AngelClientCode string `yaml:"angel_client_code" validate:"required_if=Kind smartapi"`
	AngelPassword   string `yaml:"angel_password" validate:"required_if=Kind smartapi"`
	AngelTOTPSecret string `yaml:"angel_totp_secret" validate:"required_if=Kind smartapi"`
}

type CacheConfig struct {
	Staleness time.Duration `yaml:"staleness" validate:"gt=0"`
}

type SynthConfig struct {
	Days       int     `yaml:"days" validate:"gte=1,lte=5000"`
	Volatility float64 `yaml:"volatility" validate:"gt=0,lt=1"`
	Calendar   string  `yaml:"calendar" validate:"oneof=weekdays nse"`
}

type ForecastConfig struct {
	// MinHistory may raise the 30-point insufficient-history floor, never lower it.
	MinHistory int `yaml:"min_history" validate:"gte=30"`
}

type WarmerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	RunOnStart bool          `yaml:"run_on_start"`
	Cron       string        `yaml:"cron" validate:"required_if=Enabled true"`
	Symbols    []string      `yaml:"symbols" validate:"omitempty,dive,required"`
	Range      string        `yaml:"range" validate:"oneof=3m 6m 1y 2y 5y max"`
	Period     string        `yaml:"period" validate:"oneof=1m 3m 6m"`
	Pause      time.Duration `yaml:"pause" validate:"gte=0"`
}

// Default returns the built-in configuration: no provider, synthetic data only.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080", StreamInterval: time.Minute},
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info"},
		Provider: ProviderConfig{
			Kind:              ProviderNone,
			Timeout:           10 * time.Second,
			RequestsPerMinute: 5,
			MaxWait:           2 * time.Second,
			BreakerFailures:   3,
			BreakerReset:      5 * time.Minute,
		},
		Cache:    CacheConfig{Staleness: 24 * time.Hour},
		Synth:    SynthConfig{Days: 180, Volatility: 0.015, Calendar: "weekdays"},
		Forecast: ForecastConfig{MinHistory: 30},
		Warmer: WarmerConfig{
			Enabled: true,
			Cron:    "0 0 */12 * * *",
			Range:   "1y",
			Period:  "1m",
			Pause:   2 * time.Second,
		},
	}
}

// Load reads path (skipped when empty or missing) over the defaults, then
// applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("STOCKD_ADDR", c.Server.Addr)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	c.Provider.Kind = getEnv("PROVIDER", c.Provider.Kind)
	c.Provider.BaseURL = getEnv("PROVIDER_BASE_URL", c.Provider.BaseURL)
	c.Provider.AlphaVantageKey = getEnv("ALPHAVANTAGE_API_KEY", c.Provider.AlphaVantageKey)
	c.Provider.AngelAPIKey = getEnv("ANGEL_API_KEY", c.Provider.AngelAPIKey)
	c.Provider.AngelClientCode = getEnv("ANGEL_CLIENT_CODE", c.Provider.AngelClientCode)
	c.Provider.AngelPassword = getEnv("ANGEL_PASSWORD", c.Provider.AngelPassword)
	c.Provider.AngelTOTPSecret = getEnv("ANGEL_TOTP_SECRET", c.Provider.AngelTOTPSecret)

	c.Cache.Staleness = getEnvDuration("CACHE_STALENESS", c.Cache.Staleness)
	c.Synth.Days = getEnvInt("SYNTH_DAYS", c.Synth.Days)
	c.Synth.Calendar = getEnv("SYNTH_CALENDAR", c.Synth.Calendar)

	c.Warmer.Cron = getEnv("WARMER_CRON", c.Warmer.Cron)
	if v := os.Getenv("WARMER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Warmer.Enabled = b
		} else {
			slog.Warn("config: ignoring invalid WARMER_ENABLED", "value", v)
		}
	}
	if v := os.Getenv("WARMER_SYMBOLS"); v != "" {
		c.Warmer.Symbols = ParseList(v)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParseList splits a comma-separated list, dropping blanks.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: ignoring invalid integer", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config: ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}
