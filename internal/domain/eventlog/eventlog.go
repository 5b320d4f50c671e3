// Package eventlog keeps the append-only record of logged match events and
// derives team statistics and the cumulative xG series from it.
//
// The log is the single source of truth. Per-team stats are cached and
// updated on append, and the cache always equals Fold over the log.
package eventlog

import (
	"math"

	"github.com/google/uuid"

	"github.com/okian/matchxg/internal/domain/clock"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/internal/domain/xg"
)

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithScorer sets the xG model used for new events.
func WithScorer(s xg.Scorer) Option {
	return func(l *Log) {
		if s != nil {
			l.scorer = s
		}
	}
}

// WithIDGenerator replaces the uuid based event id generator.
func WithIDGenerator(gen func() string) Option {
	return func(l *Log) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// Log is an append-only, insertion ordered event log. It is not safe for
// concurrent use; the owner serializes Record and Reset.
type Log struct {
	events []model.Event
	stats  map[model.Team]model.TeamStats
	scorer xg.Scorer
	newID  func() string
}

// New creates an empty log scoring events with the default xG table.
func New(opts ...Option) *Log {
	l := &Log{
		stats:  make(map[model.Team]model.TeamStats, len(model.Teams)),
		scorer: xg.NewModel(),
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Record scores and appends a new event for team at minute. The minute is
// clamped to the match range. Unknown kinds are kept with zero xG.
func (l *Log) Record(team model.Team, kind model.EventKind, minute int) (model.Event, error) {
	if !team.Valid() {
		return model.Event{}, ErrUnknownTeam
	}

	minute = clock.Clamp(minute)
	e := model.Event{
		ID:     l.newID(),
		Team:   team,
		Kind:   kind,
		Minute: minute,
		XG:     l.scorer.For(kind, minute),
	}

	l.events = append(l.events, e)
	l.stats[team] = l.stats[team].Add(e)
	return e, nil
}

// StatsFor returns the aggregate stats of team. Unknown teams and teams
// without events yield zero stats.
func (l *Log) StatsFor(team model.Team) model.TeamStats {
	return l.stats[team]
}

// Events returns a copy of the log in insertion order.
func (l *Log) Events() []model.Event {
	out := make([]model.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int { return len(l.events) }

// Series returns the cumulative xG chart for the current log.
func (l *Log) Series() []model.SeriesPoint {
	return CumulativeSeries(l.events)
}

// Reset clears every event and cached aggregate.
func (l *Log) Reset() {
	l.events = nil
	l.stats = make(map[model.Team]model.TeamStats, len(model.Teams))
}

// Fold derives team's stats from events. It is the reference the cached
// stats in Log must match.
func Fold(events []model.Event, team model.Team) model.TeamStats {
	var s model.TeamStats
	for _, e := range events {
		if e.Team == team {
			s = s.Add(e)
		}
	}
	return s
}

// CumulativeSeries builds the chart series: a zero point at minute 0, then
// one point per event in log order with both teams' running xG totals.
func CumulativeSeries(events []model.Event) []model.SeriesPoint {
	points := make([]model.SeriesPoint, 0, len(events)+1)
	points = append(points, model.SeriesPoint{})

	var home, away float64
	for _, e := range events {
		switch e.Team {
		case model.Home:
			home += e.XG
		case model.Away:
			away += e.XG
		}
		points = append(points, model.SeriesPoint{
			Minute: e.Minute,
			Home:   round2(home),
			Away:   round2(away),
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
