package api

import (
	"math"
	"net/http"
	"time"
)

// StatsProvider exposes the match service monitoring map.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats: the service map plus process uptime.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
}

// NewStatsHandler creates a stats handler; uptime counts from now.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := h.provider.GetStats()
	if out == nil {
		out = make(map[string]interface{}, 1)
	}
	out["uptime_seconds"] = math.Round(time.Since(h.started).Seconds())
	writeJSON(w, http.StatusOK, out)
}
