// Package alerts evaluates trend rules over the current match statistics.
// Rules are stateless: the same stats and minute always produce the same
// alerts in the same order.
package alerts

import (
	"fmt"
	"math"

	"github.com/okian/matchxg/internal/domain/model"
)

// Default rule thresholds.
const (
	DefaultOverXG         = 2.5
	DefaultOverBeforeMin  = 70
	DefaultUnderXG        = 1.0
	DefaultUnderAfterMin  = 60
	DefaultIntensityShots = 15
	DefaultIntensityMin   = 80
	DefaultDominanceXG    = 1.0
	DefaultLateGameMin    = 80
	DefaultLateGameXG     = 1.5
)

// Thresholds parameterizes the rules.
type Thresholds struct {
	OverXG         float64
	OverBeforeMin  int
	UnderXG        float64
	UnderAfterMin  int
	IntensityShots int
	IntensityMin   int
	DominanceXG    float64
	LateGameMin    int
	LateGameXG     float64
}

// DefaultThresholds returns the standard rule set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OverXG:         DefaultOverXG,
		OverBeforeMin:  DefaultOverBeforeMin,
		UnderXG:        DefaultUnderXG,
		UnderAfterMin:  DefaultUnderAfterMin,
		IntensityShots: DefaultIntensityShots,
		IntensityMin:   DefaultIntensityMin,
		DominanceXG:    DefaultDominanceXG,
		LateGameMin:    DefaultLateGameMin,
		LateGameXG:     DefaultLateGameXG,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithThresholds replaces the rule thresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.t = t
	}
}

// WithTeamNames sets the names used in dominance messages.
func WithTeamNames(home, away string) Option {
	return func(e *Engine) {
		if home != "" {
			e.names[model.Home] = home
		}
		if away != "" {
			e.names[model.Away] = away
		}
	}
}

// Engine evaluates trend rules. It holds only configuration and is safe
// for concurrent use.
type Engine struct {
	t     Thresholds
	names map[model.Team]string
}

// NewEngine creates an Engine with default thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		t: DefaultThresholds(),
		names: map[model.Team]string{
			model.Home: "Home",
			model.Away: "Away",
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

var defaultEngine = NewEngine() //nolint:gochecknoglobals // immutable default rules

// Evaluate runs the default rules.
func Evaluate(home, away model.TeamStats, minute int) []model.Alert {
	return defaultEngine.Evaluate(home, away, minute)
}

// Thresholds returns the configured thresholds.
func (e *Engine) Thresholds() Thresholds { return e.t }

// Evaluate returns the alerts that fire for the given stats, in priority
// order. The result is never nil; an empty slice means no alerts.
func (e *Engine) Evaluate(home, away model.TeamStats, minute int) []model.Alert {
	total := home.TotalXG + away.TotalXG
	shots := home.Shots() + away.Shots()
	out := make([]model.Alert, 0, 4)

	alert := func(kind model.AlertKind, team model.Team, msg string) {
		out = append(out, model.Alert{
			Kind:    kind,
			Message: msg,
			Team:    team,
			TotalXG: total,
			Minute:  minute,
		})
	}

	switch {
	case total > e.t.OverXG && minute < e.t.OverBeforeMin:
		alert(model.AlertOver, "", "High probability of OVER 2.5 goals")
	case total < e.t.UnderXG && minute > e.t.UnderAfterMin:
		alert(model.AlertUnder, "", "Match trending UNDER 2.5 goals")
	}

	if shots > e.t.IntensityShots && minute < e.t.IntensityMin {
		alert(model.AlertIntensity, "", "High attacking intensity")
	}

	if math.Abs(home.TotalXG-away.TotalXG) > e.t.DominanceXG {
		team := model.Away
		if home.TotalXG > away.TotalXG {
			team = model.Home
		}
		alert(model.AlertDominance, team, fmt.Sprintf("%s dominating the chances", e.names[team]))
	}

	if minute > e.t.LateGameMin && total < e.t.LateGameXG {
		alert(model.AlertLateGame, "", "Few chances created, draw possible")
	}

	return out
}

// Summarize returns the totals shown alongside the alerts.
func Summarize(home, away model.TeamStats, minute int) model.Summary {
	return model.Summary{
		TotalXG:    home.TotalXG + away.TotalXG,
		TotalShots: home.Shots() + away.Shots(),
		Minute:     minute,
	}
}
