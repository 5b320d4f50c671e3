// Package api exposes the match session over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/cors"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/domain/clock"
	"github.com/okian/matchxg/internal/domain/model"
)

// EventDependencies records and lists events.
type EventDependencies interface {
	RecordEvent(ctx context.Context, team model.Team, kind model.EventKind, requestID string) (model.Event, bool, error)
	Events() []model.Event
}

// MatchDependencies exposes derived match state and match-level operations.
type MatchDependencies interface {
	StatsFor(team model.Team) model.TeamStats
	Alerts() ([]model.Alert, model.Summary)
	Series() []model.SeriesPoint
	Snapshot() service.Snapshot
	Info() model.MatchInfo
	SetInfo(ctx context.Context, info model.MatchInfo) model.MatchInfo
	ResetMatch(ctx context.Context) service.Snapshot
}

// ClockDependencies controls the match clock.
type ClockDependencies interface {
	ClockState() clock.State
	StartClock(ctx context.Context) (clock.State, error)
	PauseClock(ctx context.Context) clock.State
	ResetClock(ctx context.Context) clock.State
	SeekClock(ctx context.Context, minute int) clock.State
}

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	EventDependencies
	MatchDependencies
	ClockDependencies
	StatsProvider
}

// Option configures the Server.
type Option func(*Server)

// WithLiveHandler mounts the WebSocket feed at /ws.
func WithLiveHandler(h http.Handler) Option {
	return func(s *Server) {
		s.live = h
	}
}

// WithDocsHandler mounts the OpenAPI document at /openapi.yaml.
func WithDocsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.docs = h
	}
}

// WithAllowedOrigins sets the CORS allow list. Empty means same-origin only.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// Server wires HTTP routes for the match API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	matchHandler  *MatchHandler
	teamsHandler  *TeamsHandler
	clockHandler  *ClockHandler
	exportHandler *ExportHandler

	live    http.Handler
	docs    http.Handler
	origins []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		eventsHandler: NewEventsHandler(deps),
		matchHandler:  NewMatchHandler(deps),
		teamsHandler:  NewTeamsHandler(deps),
		clockHandler:  NewClockHandler(deps),
		exportHandler: NewExportHandler(deps, deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.teamsHandler.HandleTeamStats, "teams"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.matchHandler.HandleAlerts, "alerts"))
	mux.HandleFunc("/series", MetricsMiddleware(s.matchHandler.HandleSeries, "series"))

	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandleSnapshot, "match"))
	mux.HandleFunc("/match/info", MetricsMiddleware(s.matchHandler.HandleInfo, "match_info"))
	mux.HandleFunc("/match/reset", MetricsMiddleware(s.matchHandler.HandleReset, "match_reset"))

	mux.HandleFunc("/clock", MetricsMiddleware(s.clockHandler.HandleGet, "clock"))
	mux.HandleFunc("/clock/start", MetricsMiddleware(s.clockHandler.HandleStart, "clock_start"))
	mux.HandleFunc("/clock/pause", MetricsMiddleware(s.clockHandler.HandlePause, "clock_pause"))
	mux.HandleFunc("/clock/reset", MetricsMiddleware(s.clockHandler.HandleReset, "clock_reset"))
	mux.HandleFunc("/clock/seek", MetricsMiddleware(s.clockHandler.HandleSeek, "clock_seek"))

	mux.HandleFunc("/export/csv", MetricsMiddleware(s.exportHandler.HandleCSV, "export_csv"))
	mux.HandleFunc("/export/summary", MetricsMiddleware(s.exportHandler.HandleSummary, "export_summary"))

	// The live feed hijacks the connection, so it bypasses the metrics wrapper.
	if s.live != nil {
		mux.Handle("/ws", s.live)
	}
	if s.docs != nil {
		mux.Handle("/openapi.yaml", s.docs)
	}
}

// Handler returns mux wrapped with the CORS policy.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	if len(s.origins) == 0 {
		return mux
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON rejects unknown fields so typos in payloads surface as 400s.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
