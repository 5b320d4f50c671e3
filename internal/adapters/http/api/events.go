package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/matchxg/internal/domain/eventlog"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/metrics"
)

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	Team    string `json:"team"`
	Kind    string `json:"kind"`
	EventID string `json:"event_id,omitempty"`
}

func (e eventRequest) validate() (model.Team, model.EventKind, error) {
	team, ok := model.ParseTeam(e.Team)
	if !ok {
		return "", "", ErrUnknownTeam
	}
	if strings.TrimSpace(e.Kind) == "" {
		return "", "", errors.New("missing kind")
	}
	// Unrecognized kinds are recorded with zero xG.
	kind, _ := model.ParseKind(e.Kind)
	return team, kind, nil
}

type ackResponse struct {
	Status    string       `json:"status"`
	Duplicate bool         `json:"duplicate"`
	Event     *model.Event `json:"event,omitempty"`
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvents routes GET and POST /events.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Events())
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EventsHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.RecordEventRejected("bad_request")
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	team, kind, err := req.validate()
	if err != nil {
		metrics.RecordEventRejected("bad_request")
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	e, dup, err := h.deps.RecordEvent(r.Context(), team, kind, strings.TrimSpace(req.EventID))
	switch {
	case errors.Is(err, eventlog.ErrUnknownTeam):
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrUnknownTeam, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	case dup:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	default:
		writeJSON(w, http.StatusCreated, ackResponse{Status: "recorded", Event: &e})
	}
}
