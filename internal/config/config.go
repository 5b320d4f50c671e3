// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TickIntervalMS is the wall-clock period of one clock tick.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// ClockGranularity is "second" (default) or "minute".
	ClockGranularity string `koanf:"clock_granularity"`

	// DedupeSize bounds the event id cache; 0 disables the bound.
	DedupeSize int `koanf:"dedupe_size"`

	// HomeName and AwayName are the initial display names.
	HomeName string `koanf:"home_name"`
	AwayName string `koanf:"away_name"`

	// AllowedOrigins is a comma-separated CORS and WebSocket origin list.
	AllowedOrigins string `koanf:"allowed_origins"`

	// XGBaseValues overrides per-kind base xG, e.g. {corner: 0.04}.
	XGBaseValues map[string]float64 `koanf:"xg_base_values"`

	// Prometheus naming and sampling.
	MetricsNamespace         string            `koanf:"metrics_namespace"`
	MetricsSubsystem         string            `koanf:"metrics_subsystem"`
	MetricsBucketsMS         []float64         `koanf:"metrics_buckets_ms"`
	MetricsRefreshIntervalMS int               `koanf:"metrics_refresh_interval_ms"`
	MetricsLabels            map[string]string `koanf:"metrics_labels"`

	// Alert thresholds.
	OverXG                float64 `koanf:"over_xg"`
	OverBeforeMinute      int     `koanf:"over_before_minute"`
	UnderXG               float64 `koanf:"under_xg"`
	UnderAfterMinute      int     `koanf:"under_after_minute"`
	IntensityShots        int     `koanf:"intensity_shots"`
	IntensityBeforeMinute int     `koanf:"intensity_before_minute"`
	DominanceXG           float64 `koanf:"dominance_xg"`
	LateGameMinute        int     `koanf:"late_game_minute"`
	LateGameXG            float64 `koanf:"late_xg"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9080",
		TickIntervalMS:           1000,
		ClockGranularity:         "second",
		DedupeSize:               4096,
		MetricsNamespace:         "matchxg",
		MetricsSubsystem:         "match",
		MetricsBucketsMS:         []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		MetricsRefreshIntervalMS: 10000,
		HomeName:                 "Home",
		AwayName:                 "Away",
		OverXG:                   2.5,
		OverBeforeMinute:         70,
		UnderXG:                  1.0,
		UnderAfterMinute:         60,
		IntensityShots:           15,
		IntensityBeforeMinute:    80,
		DominanceXG:              1.0,
		LateGameMinute:           80,
		LateGameXG:               1.5,
	}
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// MetricsRefreshInterval returns MetricsRefreshIntervalMS as a duration.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshIntervalMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBucketsMS); i++ {
		if c.MetricsBucketsMS[i] <= c.MetricsBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(c.ClockGranularity) {
	case "", "second", "seconds", "minute", "minutes":
	default:
		return fmt.Errorf("%w: clock_granularity %q", ErrInvalidConfig, c.ClockGranularity)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	for kind, v := range c.XGBaseValues {
		if v < 0 {
			return fmt.Errorf("%w: xg_base_values.%s is negative", ErrInvalidConfig, kind)
		}
	}
	if c.OverXG < 0 || c.UnderXG < 0 || c.DominanceXG < 0 || c.LateGameXG < 0 || c.IntensityShots < 0 {
		return fmt.Errorf("%w: alert thresholds must not be negative", ErrInvalidConfig)
	}
	return nil
}
