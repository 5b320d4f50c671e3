package api

import (
	"errors"
	"net/http"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/domain/clock"
)

// ClockHandler handles clock control requests.
type ClockHandler struct {
	deps ClockDependencies
}

// NewClockHandler creates a new clock handler.
func NewClockHandler(deps ClockDependencies) *ClockHandler {
	return &ClockHandler{deps: deps}
}

type clockResponse struct {
	clock.State
	Display string `json:"display"`
}

func newClockResponse(st clock.State) clockResponse {
	return clockResponse{State: st, Display: st.String()}
}

type seekRequest struct {
	Minute *int `json:"minute"`
}

// HandleGet handles GET /clock.
func (h *ClockHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, newClockResponse(h.deps.ClockState()))
}

// HandleStart handles POST /clock/start.
func (h *ClockHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	st, err := h.deps.StartClock(r.Context())
	switch {
	case errors.Is(err, service.ErrStopped):
		writeError(w, http.StatusConflict, "conflict", wrapKind("api.clock_start", ErrConflict, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		writeJSON(w, http.StatusOK, newClockResponse(st))
	}
}

// HandlePause handles POST /clock/pause.
func (h *ClockHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, newClockResponse(h.deps.PauseClock(r.Context())))
}

// HandleReset handles POST /clock/reset.
func (h *ClockHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, newClockResponse(h.deps.ResetClock(r.Context())))
}

// HandleSeek handles POST /clock/seek. Out-of-range minutes are clamped.
func (h *ClockHandler) HandleSeek(w http.ResponseWriter, r *http.Request) {
	const op = "api.clock_seek"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req seekRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Minute == nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing minute")))
		return
	}
	writeJSON(w, http.StatusOK, newClockResponse(h.deps.SeekClock(r.Context(), *req.Minute)))
}
