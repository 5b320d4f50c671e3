package api

import (
	"net/http"

	"github.com/okian/matchxg/internal/domain/model"
)

// MatchHandler serves match-level state: snapshot, info, alerts, series.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type alertsResponse struct {
	Alerts  []model.Alert `json:"alerts"`
	Summary model.Summary `json:"summary"`
}

// HandleSnapshot handles GET /match.
func (h *MatchHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Snapshot())
}

// HandleInfo handles GET and PUT /match/info.
func (h *MatchHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Info())
	case http.MethodPut:
		var info model.MatchInfo
		if err := decodeJSON(r, &info); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind("api.put_info", ErrBadRequest, err))
			return
		}
		writeJSON(w, http.StatusOK, h.deps.SetInfo(r.Context(), info))
	default:
		http.NotFound(w, r)
	}
}

// HandleReset handles POST /match/reset.
func (h *MatchHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ResetMatch(r.Context()))
}

// HandleAlerts handles GET /alerts.
func (h *MatchHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	active, summary := h.deps.Alerts()
	writeJSON(w, http.StatusOK, alertsResponse{Alerts: active, Summary: summary})
}

// HandleSeries handles GET /series.
func (h *MatchHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Series())
}
