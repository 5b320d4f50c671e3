// Package model contains domain models passed between layers.
package model

import "strings"

// Team identifies one side of the match.
type Team string

// Teams tracked by the dashboard.
const (
	Home Team = "home"
	Away Team = "away"
)

// Teams lists both sides in display order.
var Teams = []Team{Home, Away} //nolint:gochecknoglobals // fixed enumeration

// Valid reports whether t is one of the two match sides.
func (t Team) Valid() bool { return t == Home || t == Away }

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == Home {
		return Away
	}
	return Home
}

// ParseTeam normalizes user input such as "HOME" or " away ".
func ParseTeam(s string) (Team, bool) {
	t := Team(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// EventKind is the action an operator logged for a team.
type EventKind string

// Event kinds. RedCard carries no xG but is counted.
const (
	Possession    EventKind = "possession"
	ShotOnTarget  EventKind = "shot_on_target"
	ShotOffTarget EventKind = "shot_off_target"
	DangerousShot EventKind = "dangerous_shot"
	Corner        EventKind = "corner"
	DangerousFoul EventKind = "dangerous_foul"
	RedCard       EventKind = "red_card"
)

// Kinds lists every recognized event kind in button order.
var Kinds = []EventKind{ //nolint:gochecknoglobals // fixed enumeration
	Possession,
	DangerousShot,
	ShotOnTarget,
	ShotOffTarget,
	Corner,
	DangerousFoul,
	RedCard,
}

// Known reports whether k belongs to the closed set of kinds.
func (k EventKind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label renders the kind for people, e.g. "shot on target".
func (k EventKind) Label() string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// ParseKind normalizes user input. Unknown kinds are returned as-is with
// ok=false so callers can decide whether to accept them.
func ParseKind(s string) (EventKind, bool) {
	k := EventKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Known()
}

// Event is one logged in-match action. Events are immutable once recorded.
type Event struct {
	ID     string    `json:"id"`
	Team   Team      `json:"team"`
	Kind   EventKind `json:"kind"`
	Minute int       `json:"minute"`
	XG     float64   `json:"xg"`
}

// SeriesPoint is one sample of the cumulative xG chart.
type SeriesPoint struct {
	Minute int     `json:"minute"`
	Home   float64 `json:"home"`
	Away   float64 `json:"away"`
}

// MatchInfo is operator-entered context shown next to the dashboard.
type MatchInfo struct {
	HomeName     string `json:"home_name"`
	AwayName     string `json:"away_name"`
	Label        string `json:"label,omitempty"`
	Date         string `json:"date,omitempty"`
	Championship string `json:"championship,omitempty"`
}

// NameOf returns the display name for a side.
func (m MatchInfo) NameOf(t Team) string {
	if t == Home {
		return m.HomeName
	}
	return m.AwayName
}
