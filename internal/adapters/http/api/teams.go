package api

import (
	"net/http"
	"strings"

	"github.com/okian/matchxg/internal/domain/model"
)

// TeamsDependencies reads per-team aggregates.
type TeamsDependencies interface {
	StatsFor(team model.Team) model.TeamStats
}

// TeamsHandler handles team stats requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type teamStatsResponse struct {
	Team  model.Team      `json:"team"`
	Shots int             `json:"shots"`
	Stats model.TeamStats `json:"stats"`
}

// HandleTeamStats handles GET /teams/{home|away}/stats requests.
func (h *TeamsHandler) HandleTeamStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/teams/")
	name, tail, found := strings.Cut(rest, "/")
	if !found || tail != "stats" {
		http.NotFound(w, r)
		return
	}
	team, ok := model.ParseTeam(name)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", wrapKind("api.team_stats", ErrUnknownTeam, nil))
		return
	}
	stats := h.deps.StatsFor(team)
	writeJSON(w, http.StatusOK, teamStatsResponse{Team: team, Shots: stats.Shots(), Stats: stats})
}
