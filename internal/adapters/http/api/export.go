package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/matchxg/internal/adapters/export"
	"github.com/okian/matchxg/pkg/metrics"
)

// ExportHandler serves downloadable renderings of the match.
type ExportHandler struct {
	events EventDependencies
	match  MatchDependencies
	now    func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(events EventDependencies, match MatchDependencies) *ExportHandler {
	return &ExportHandler{events: events, match: match, now: time.Now}
}

// HandleCSV handles GET /export/csv.
func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	info := h.match.Info()
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.events.Events(), info); err != nil {
		metrics.RecordError("export", "csv")
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(info, h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleSummary handles GET /export/summary.
func (h *ExportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteSummary(&buf, h.match.Snapshot()); err != nil {
		metrics.RecordError("export", "summary")
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
