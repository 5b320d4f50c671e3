// Package xg maps logged events to an expected-goals contribution.
package xg

import "github.com/okian/matchxg/internal/domain/model"

// Late-game multipliers. Chances created near the end are weighted up.
const (
	finalStretchMinute = 80
	lateGameMinute     = 70
	finalStretchBoost  = 1.2
	lateGameBoost      = 1.1
	noBoost            = 1.0
)

// Scorer computes the xG contribution of an event kind at a match minute.
type Scorer interface {
	For(kind model.EventKind, minute int) float64
}

// DefaultBaseValues is the base xG per kind before the time multiplier.
func DefaultBaseValues() map[model.EventKind]float64 {
	return map[model.EventKind]float64{
		model.ShotOnTarget:  0.15,
		model.DangerousShot: 0.25,
		model.ShotOffTarget: 0.05,
		model.Corner:        0.03,
		model.DangerousFoul: 0.08,
		model.Possession:    0.01,
		model.RedCard:       0.0,
	}
}

var defaultModel = NewModel() //nolint:gochecknoglobals // immutable default table

// For scores kind at minute with the default table.
func For(kind model.EventKind, minute int) float64 {
	return defaultModel.For(kind, minute)
}

// Multiplier returns the time weight applied at minute.
func Multiplier(minute int) float64 {
	switch {
	case minute > finalStretchMinute:
		return finalStretchBoost
	case minute > lateGameMinute:
		return lateGameBoost
	default:
		return noBoost
	}
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithBaseValues overrides base values from a configuration map keyed by
// kind name. Unknown kinds and negative values are ignored.
func WithBaseValues(values map[string]float64) Option {
	return func(m *Model) {
		for name, v := range values {
			kind, ok := model.ParseKind(name)
			if !ok || v < 0 {
				continue
			}
			m.base[kind] = v
		}
	}
}

// Model is a deterministic xG table. It is read-only after construction and
// safe for concurrent use.
type Model struct {
	base map[model.EventKind]float64
}

// NewModel creates a Model seeded with DefaultBaseValues.
func NewModel(opts ...Option) *Model {
	m := &Model{base: DefaultBaseValues()}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// For returns base(kind) * Multiplier(minute). Unknown kinds score zero.
func (m *Model) For(kind model.EventKind, minute int) float64 {
	return m.Base(kind) * Multiplier(minute)
}

// Base returns the untimed value for kind.
func (m *Model) Base(kind model.EventKind) float64 {
	return m.base[kind]
}
