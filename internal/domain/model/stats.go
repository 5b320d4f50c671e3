package model

// TeamStats aggregates one team's events. It is always derived from the
// event log and never edited on its own.
type TeamStats struct {
	Possession     int     `json:"possession"`
	ShotsOnTarget  int     `json:"shots_on_target"`
	ShotsOffTarget int     `json:"shots_off_target"`
	DangerousShots int     `json:"dangerous_shots"`
	Corners        int     `json:"corners"`
	DangerousFouls int     `json:"dangerous_fouls"`
	RedCards       int     `json:"red_cards"`
	TotalXG        float64 `json:"total_xg"`
}

// Add folds one event into the stats. Unknown kinds only contribute xG.
func (s TeamStats) Add(e Event) TeamStats {
	switch e.Kind {
	case Possession:
		s.Possession++
	case ShotOnTarget:
		s.ShotsOnTarget++
	case ShotOffTarget:
		s.ShotsOffTarget++
	case DangerousShot:
		s.DangerousShots++
	case Corner:
		s.Corners++
	case DangerousFoul:
		s.DangerousFouls++
	case RedCard:
		s.RedCards++
	}
	s.TotalXG += e.XG
	return s
}

// Count returns the bucket for kind.
func (s TeamStats) Count(kind EventKind) int {
	switch kind {
	case Possession:
		return s.Possession
	case ShotOnTarget:
		return s.ShotsOnTarget
	case ShotOffTarget:
		return s.ShotsOffTarget
	case DangerousShot:
		return s.DangerousShots
	case Corner:
		return s.Corners
	case DangerousFoul:
		return s.DangerousFouls
	case RedCard:
		return s.RedCards
	default:
		return 0
	}
}

// Shots is on-target plus off-target shots. Dangerous shots are tracked
// separately and are not part of this total.
func (s TeamStats) Shots() int { return s.ShotsOnTarget + s.ShotsOffTarget }

// IsZero reports whether no event has been folded in.
func (s TeamStats) IsZero() bool { return s == TeamStats{} }
