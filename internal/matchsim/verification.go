package matchsim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/matchxg/internal/domain/eventlog"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
)

// ErrMismatch is returned when server state disagrees with the submissions.
var ErrMismatch = errors.New("server state mismatch")

const xgTolerance = 1e-6

// countsEqual compares every bucket and ignores xG.
func countsEqual(a, b model.TeamStats) bool {
	a.TotalXG, b.TotalXG = 0, 0
	return a == b
}

// verifyResults checks two things per team: the server's counts equal the
// unique submissions, and its cached stats equal a fold of its own log.
func verifyResults(ctx context.Context, client *HTTPClient, expected map[model.Team]model.TeamStats, stats *Stats) error {
	log := logger.Get().Named("verify")

	events, err := client.events(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	stats.ServerEventCount = len(events)

	var errs []error
	for _, team := range model.Teams {
		got, err := client.teamStats(ctx, team)
		if err != nil {
			return fmt.Errorf("fetch %s stats: %w", team, err)
		}
		if want := expected[team]; !countsEqual(got, want) {
			errs = append(errs, fmt.Errorf("%w: %s counts %+v, submitted %+v", ErrMismatch, team, got, want))
		}
		folded := eventlog.Fold(events, team)
		if !countsEqual(got, folded) || math.Abs(got.TotalXG-folded.TotalXG) > xgTolerance {
			errs = append(errs, fmt.Errorf("%w: %s stats %+v, event log folds to %+v", ErrMismatch, team, got, folded))
		}
		log.Info(ctx, "team verified",
			logger.String("team", string(team)),
			logger.Int("shots", got.Shots()),
			logger.Float64("xg", got.TotalXG))
		stats.VerifiedTeams++
	}
	return errors.Join(errs...)
}
