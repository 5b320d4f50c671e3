package matchsim

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/matchxg/internal/domain/eventlog"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
)

const percentageMultiplier = 100

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting match simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.NumEvents),
		logger.Float64("duplicateRate", cfg.DuplicateRate),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if cfg.Reset {
		if err := resetMatch(ctx, client); err != nil {
			return stats, fmt.Errorf("match reset failed: %w", err)
		}
	}

	events := Generate(cfg.NumEvents, cfg.DuplicateRate)
	stats.EventsGenerated = len(events)
	stats.ExpectedDupes = len(events) - cfg.NumEvents

	submitEvents(ctx, cfg, client, events, stats)
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%d submissions failed", stats.EventsFailed)
	}

	// Only a fresh match can be compared against local counts.
	expected := expectedCounts(events)
	if !cfg.Reset {
		expected = nil
	}
	if err := verify(ctx, client, expected, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func verify(ctx context.Context, client *HTTPClient, expected map[model.Team]model.TeamStats, stats *Stats) error {
	if expected == nil {
		// Without a reset only internal consistency can be checked.
		events, err := client.events(ctx)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		expected = make(map[model.Team]model.TeamStats, len(model.Teams))
		for _, team := range model.Teams {
			expected[team] = eventlog.Fold(events, team)
		}
	}
	return verifyResults(ctx, client, expected, stats)
}

// checkServiceHealth verifies the service is up.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func resetMatch(ctx context.Context, client *HTTPClient) error {
	resp, err := client.do(ctx, http.MethodPost, "/match/reset", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, eventsPerSecond float64
	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsRecorded+stats.EventsDuplicate) / float64(stats.EventsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsRecorded", stats.EventsRecorded),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("expectedDuplicates", stats.ExpectedDupes),
		logger.Int("serverEvents", stats.ServerEventCount),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
