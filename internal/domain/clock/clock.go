// Package clock keeps simulated match time for a 90 minute game.
//
// A Clock is owned by a single writer and is not safe for concurrent use.
// Time only moves through Tick (while running) or an explicit Seek.
package clock

import (
	"fmt"
	"strings"
)

// Match time bounds.
const (
	FullTime         = 90
	secondsPerMinute = 60
)

// Granularity selects how far a single tick advances the clock.
type Granularity int

// Supported granularities. Second is canonical; Minute matches older
// dashboards that advanced once per real minute.
const (
	Second Granularity = iota
	Minute
)

// ParseGranularity maps a config value to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "second", "seconds":
		return Second, nil
	case "minute", "minutes":
		return Minute, nil
	default:
		return Second, fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// String implements fmt.Stringer.
func (g Granularity) String() string {
	if g == Minute {
		return "minute"
	}
	return "second"
}

// State is a snapshot of the clock.
type State struct {
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Running bool `json:"running"`
}

// String formats the state as MM:SS.
func (s State) String() string {
	return fmt.Sprintf("%02d:%02d", s.Minutes, s.Seconds)
}

// Option applies a configuration option to the Clock.
type Option func(*Clock)

// WithGranularity sets the tick resolution.
func WithGranularity(g Granularity) Option {
	return func(c *Clock) {
		c.granularity = g
	}
}

// Clock advances match time while running.
type Clock struct {
	state       State
	granularity Granularity
}

// New creates a stopped clock at 00:00.
func New(opts ...Option) *Clock {
	c := &Clock{granularity: Second}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start sets the clock running. It returns false when nothing changed:
// the clock was already running or full time has been reached.
func (c *Clock) Start() bool {
	if c.state.Running || c.state.Minutes >= FullTime {
		return false
	}
	c.state.Running = true
	return true
}

// Pause stops the clock. It returns false if it was not running.
func (c *Clock) Pause() bool {
	was := c.state.Running
	c.state.Running = false
	return was
}

// Reset returns the clock to a stopped 00:00.
func (c *Clock) Reset() {
	c.state = State{}
}

// Seek jumps to minute, clamped to [0, FullTime]. Seconds are zeroed and
// the clock is always paused.
func (c *Clock) Seek(minute int) {
	c.state = State{Minutes: clamp(minute)}
}

// Tick advances the clock by one step. Ticks delivered while the clock is
// stopped are ignored. It returns true when this tick reached full time.
func (c *Clock) Tick() bool {
	if !c.state.Running {
		return false
	}

	switch c.granularity {
	case Minute:
		c.state.Minutes++
		c.state.Seconds = 0
	default:
		c.state.Seconds++
		if c.state.Seconds >= secondsPerMinute {
			c.state.Seconds = 0
			c.state.Minutes++
		}
	}

	if c.state.Minutes >= FullTime {
		c.state = State{Minutes: FullTime}
		return true
	}
	return false
}

// State returns a copy of the current state.
func (c *Clock) State() State { return c.state }

// Minute returns the elapsed match minute.
func (c *Clock) Minute() int { return c.state.Minutes }

// Running reports whether the clock is advancing.
func (c *Clock) Running() bool { return c.state.Running }

// Granularity returns the configured tick resolution.
func (c *Clock) Granularity() Granularity { return c.granularity }

// Clamp bounds minute to [0, FullTime].
func Clamp(minute int) int { return clamp(minute) }

func clamp(minute int) int {
	switch {
	case minute < 0:
		return 0
	case minute > FullTime:
		return FullTime
	default:
		return minute
	}
}
