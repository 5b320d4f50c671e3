package model

// AlertKind classifies a trend alert.
type AlertKind string

// Alert kinds in display priority order.
const (
	AlertOver      AlertKind = "over"
	AlertUnder     AlertKind = "under"
	AlertIntensity AlertKind = "attack"
	AlertDominance AlertKind = "dominance"
	AlertLateGame  AlertKind = "late_game"
)

// AlertKinds lists every kind in display order.
var AlertKinds = []AlertKind{AlertOver, AlertUnder, AlertIntensity, AlertDominance, AlertLateGame}

// Alert is an advisory message derived from the current stats. Alerts are
// recomputed on demand and never stored.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
	// Team is set for dominance alerts only.
	Team    Team    `json:"team,omitempty"`
	TotalXG float64 `json:"total_xg"`
	Minute  int     `json:"minute"`
}

// Summary is the footer of the alert panel.
type Summary struct {
	TotalXG    float64 `json:"total_xg"`
	TotalShots int     `json:"total_shots"`
	Minute     int     `json:"minute"`
}
