package main

import (
	"context"
	"fmt"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/config"
	"github.com/okian/matchxg/internal/domain/alerts"
	"github.com/okian/matchxg/internal/domain/clock"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
	"github.com/okian/matchxg/pkg/metrics"
)

// thresholdsFrom maps flat config keys onto the alert rule set.
func thresholdsFrom(cfg *config.Config) alerts.Thresholds {
	return alerts.Thresholds{
		OverXG:         cfg.OverXG,
		OverBeforeMin:  cfg.OverBeforeMinute,
		UnderXG:        cfg.UnderXG,
		UnderAfterMin:  cfg.UnderAfterMinute,
		IntensityShots: cfg.IntensityShots,
		IntensityMin:   cfg.IntensityBeforeMinute,
		DominanceXG:    cfg.DominanceXG,
		LateGameMin:    cfg.LateGameMinute,
		LateGameXG:     cfg.LateGameXG,
	}
}

// serviceOptions translates config into service options. Callers append
// their own collaborators (ticker, broadcaster).
func serviceOptions(cfg *config.Config, log logger.Logger) ([]service.Option, error) {
	g, err := clock.ParseGranularity(cfg.ClockGranularity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return []service.Option{
		service.WithLogger(log),
		service.WithClockGranularity(g),
		service.WithBaseValues(cfg.XGBaseValues),
		service.WithThresholds(thresholdsFrom(cfg)),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMatchInfo(model.MatchInfo{HomeName: cfg.HomeName, AwayName: cfg.AwayName}),
	}, nil
}

// metricsOptions names and samples the Prometheus collectors from config.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval()),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// applyLogLevel sets the configured level, falling back to info.
func applyLogLevel(ctx context.Context, cfg *config.Config) {
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}
