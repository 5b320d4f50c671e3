// Package service owns the single live match session and exposes it to the
// HTTP API, the live feed and the CLI.
package service

import (
	"context"
	"sync"

	"github.com/okian/matchxg/internal/domain/alerts"
	"github.com/okian/matchxg/internal/domain/clock"
	"github.com/okian/matchxg/internal/domain/dedupe"
	"github.com/okian/matchxg/internal/domain/eventlog"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/internal/domain/xg"
	"github.com/okian/matchxg/pkg/logger"
	"github.com/okian/matchxg/pkg/metrics"
)

const (
	defaultDedupeSize = 4096
	defaultHomeName   = "Home"
	defaultAwayName   = "Away"
)

// Ticker calls tick periodically between Start and Stop. Stop must not
// block on a tick that is currently running.
type Ticker interface {
	Start(tick func()) error
	Stop()
	Shutdown() error
}

// Broadcaster receives a snapshot after every state change. Broadcast is
// called with the service lock held and must not block.
type Broadcaster interface {
	Broadcast(snap Snapshot)
}

// Snapshot is everything a dashboard needs to redraw.
type Snapshot struct {
	Clock      clock.State         `json:"clock"`
	Display    string              `json:"display"`
	Info       model.MatchInfo     `json:"info"`
	Home       model.TeamStats     `json:"home"`
	Away       model.TeamStats     `json:"away"`
	Alerts     []model.Alert       `json:"alerts"`
	Summary    model.Summary       `json:"summary"`
	Series     []model.SeriesPoint `json:"series"`
	EventCount int                 `json:"event_count"`
}

// Service serializes every trigger (HTTP call or clock tick) behind one mutex.
type Service struct {
	mu sync.Mutex

	clock  *clock.Clock
	log    *eventlog.Log
	engine *alerts.Engine
	dedup  dedupe.Deduper

	ticker      Ticker
	broadcaster Broadcaster
	ticking     bool

	// Configuration
	granularity clock.Granularity
	baseValues  map[string]float64
	thresholds  alerts.Thresholds
	dedupeSize  int
	info        model.MatchInfo
	newID       func() string

	started bool
	stopped bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTicker sets the clock tick source. Without one the clock only moves
// through SeekClock.
func WithTicker(t Ticker) Option {
	return func(s *Service) {
		s.ticker = t
	}
}

// WithBroadcaster sets the snapshot consumer.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithClockGranularity selects seconds (default) or whole-minute ticks.
func WithClockGranularity(g clock.Granularity) Option {
	return func(s *Service) {
		s.granularity = g
	}
}

// WithBaseValues overrides xG base values by kind name.
func WithBaseValues(values map[string]float64) Option {
	return func(s *Service) {
		s.baseValues = values
	}
}

// WithThresholds overrides the alert thresholds.
func WithThresholds(t alerts.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithDedupeSize bounds the event id cache; 0 leaves it unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithMatchInfo sets the initial match info.
func WithMatchInfo(info model.MatchInfo) Option {
	return func(s *Service) {
		s.info = info
	}
}

// WithIDGenerator replaces the event id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// New constructs a Service with an empty match at 00:00.
func New(opts ...Option) *Service {
	s := &Service{
		granularity: clock.Second,
		thresholds:  alerts.DefaultThresholds(),
		dedupeSize:  defaultDedupeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.info = withDefaultNames(s.info)

	s.clock = clock.New(clock.WithGranularity(s.granularity))
	logOpts := []eventlog.Option{eventlog.WithScorer(xg.NewModel(xg.WithBaseValues(s.baseValues)))}
	if s.newID != nil {
		logOpts = append(logOpts, eventlog.WithIDGenerator(s.newID))
	}
	s.log = eventlog.New(logOpts...)
	s.engine = s.newEngine()
	s.dedup = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

func withDefaultNames(info model.MatchInfo) model.MatchInfo {
	if info.HomeName == "" {
		info.HomeName = defaultHomeName
	}
	if info.AwayName == "" {
		info.AwayName = defaultAwayName
	}
	return info
}

func (s *Service) newEngine() *alerts.Engine {
	return alerts.NewEngine(
		alerts.WithThresholds(s.thresholds),
		alerts.WithTeamNames(s.info.HomeName, s.info.AwayName),
	)
}

// Start marks the service ready and publishes the initial state.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	s.started = true
	s.publishLocked()
	s.logger.Info(ctx, "match service started",
		logger.String("granularity", s.granularity.String()),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("home", s.info.HomeName),
		logger.String("away", s.info.AwayName),
	)
	return nil
}

// Stop halts the clock ticker for good. The match state stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.stopTickerLocked()
	s.clock.Pause()
	ticker := s.ticker
	s.mu.Unlock()

	// Shutdown waits for in-flight ticks, which need the lock.
	if ticker != nil {
		if err := ticker.Shutdown(); err != nil {
			s.logger.Error(context.Background(), "ticker shutdown failed", logger.Error(err))
		}
	}
	s.logger.Info(context.Background(), "match service stopped")
}

// RecordEvent appends an event at the current clock minute. A non-empty
// requestID that was already seen returns duplicate=true and records nothing.
func (s *Service) RecordEvent(ctx context.Context, team model.Team, kind model.EventKind, requestID string) (model.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requestID != "" && s.dedup.SeenAndRecord(ctx, requestID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event dropped", logger.String("requestID", requestID))
		return model.Event{}, true, nil
	}

	e, err := s.log.Record(team, kind, s.clock.Minute())
	if err != nil {
		if requestID != "" {
			s.dedup.Unrecord(ctx, requestID)
		}
		metrics.RecordEventRejected("unknown_team")
		return model.Event{}, false, err
	}

	metrics.RecordEvent(string(e.Team), string(e.Kind))
	s.logger.Debug(ctx, "event recorded",
		logger.String("id", e.ID),
		logger.String("team", string(e.Team)),
		logger.String("kind", string(e.Kind)),
		logger.Int("minute", e.Minute),
		logger.Float64("xg", e.XG),
	)
	s.publishLocked()
	return e, false, nil
}

// StatsFor returns the aggregate for one team.
func (s *Service) StatsFor(team model.Team) model.TeamStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.StatsFor(team)
}

// Alerts evaluates the trend rules against the current state.
func (s *Service) Alerts() ([]model.Alert, model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertsLocked()
}

func (s *Service) alertsLocked() ([]model.Alert, model.Summary) {
	home, away := s.log.StatsFor(model.Home), s.log.StatsFor(model.Away)
	minute := s.clock.Minute()
	return s.engine.Evaluate(home, away, minute), alerts.Summarize(home, away, minute)
}

// Series returns the cumulative xG chart series.
func (s *Service) Series() []model.SeriesPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Series()
}

// Events returns the event log in insertion order.
func (s *Service) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Events()
}

// ClockState returns the current clock.
func (s *Service) ClockState() clock.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.State()
}

// StartClock resumes the clock and its ticker. Starting a running clock or
// one at full time changes nothing.
func (s *Service) StartClock(ctx context.Context) (clock.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return s.clock.State(), ErrStopped
	}
	if !s.clock.Start() {
		return s.clock.State(), nil
	}
	if err := s.startTickerLocked(); err != nil {
		s.clock.Pause()
		metrics.RecordError("clock", "ticker_start")
		return s.clock.State(), err
	}
	s.logger.Info(ctx, "clock started", logger.String("at", s.clock.State().String()))
	s.publishLocked()
	return s.clock.State(), nil
}

// PauseClock stops the clock and its ticker.
func (s *Service) PauseClock(ctx context.Context) clock.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	if s.clock.Pause() {
		s.logger.Info(ctx, "clock paused", logger.String("at", s.clock.State().String()))
		s.publishLocked()
	}
	return s.clock.State()
}

// ResetClock returns the clock to 00:00, paused. Events are kept.
func (s *Service) ResetClock(ctx context.Context) clock.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	s.clock.Reset()
	s.logger.Info(ctx, "clock reset")
	s.publishLocked()
	return s.clock.State()
}

// SeekClock jumps to minute (clamped to the match length) and pauses.
func (s *Service) SeekClock(ctx context.Context, minute int) clock.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	s.clock.Seek(minute)
	s.logger.Info(ctx, "clock seek", logger.Int("requested", minute), logger.Int("minute", s.clock.Minute()))
	s.publishLocked()
	return s.clock.State()
}

// ResetMatch clears the clock, the event log and the event id cache
// atomically. Match info is kept.
func (s *Service) ResetMatch(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickerLocked()
	s.clock.Reset()
	s.log.Reset()
	s.dedup.Reset(ctx)
	metrics.RecordMatchReset()
	s.logger.Info(ctx, "match reset")
	return s.publishLocked()
}

// SetInfo replaces the match info. Empty team names fall back to defaults.
func (s *Service) SetInfo(ctx context.Context, info model.MatchInfo) model.MatchInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info = withDefaultNames(info)
	s.engine = s.newEngine()
	s.logger.Info(ctx, "match info updated",
		logger.String("home", s.info.HomeName),
		logger.String("away", s.info.AwayName),
	)
	s.publishLocked()
	return s.info
}

// Info returns the match info.
func (s *Service) Info() model.MatchInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Snapshot returns the full dashboard state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.clock.State()
	return map[string]interface{}{
		"started":     s.started,
		"stopped":     s.stopped,
		"events":      s.log.Len(),
		"minute":      st.Minutes,
		"clock":       st.String(),
		"running":     st.Running,
		"ticking":     s.ticking,
		"granularity": s.granularity.String(),
		"dedupeSize":  s.dedupeSize,
		"dedupeLen":   s.dedup.Size(),
	}
}

// tick is the Ticker callback.
func (s *Service) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ticks that race with pause or seek are dropped here.
	if !s.ticking || !s.clock.Running() {
		return
	}
	fullTime := s.clock.Tick()
	metrics.RecordClockTick()
	if fullTime {
		s.stopTickerLocked()
		s.logger.Info(context.Background(), "full time")
	}
	s.publishLocked()
}

func (s *Service) startTickerLocked() error {
	if s.ticker == nil || s.ticking {
		return nil
	}
	if err := s.ticker.Start(s.tick); err != nil {
		return err
	}
	s.ticking = true
	return nil
}

func (s *Service) stopTickerLocked() {
	if s.ticker == nil || !s.ticking {
		return
	}
	s.ticker.Stop()
	s.ticking = false
}

func (s *Service) snapshotLocked() Snapshot {
	home, away := s.log.StatsFor(model.Home), s.log.StatsFor(model.Away)
	active, summary := s.alertsLocked()
	st := s.clock.State()
	return Snapshot{
		Clock:      st,
		Display:    st.String(),
		Info:       s.info,
		Home:       home,
		Away:       away,
		Alerts:     active,
		Summary:    summary,
		Series:     s.log.Series(),
		EventCount: s.log.Len(),
	}
}

// publishLocked refreshes gauges and hands the snapshot to the broadcaster.
func (s *Service) publishLocked() Snapshot {
	snap := s.snapshotLocked()

	metrics.UpdateClock(snap.Clock.Minutes, snap.Clock.Running)
	metrics.UpdateTeam(string(model.Home), snap.Home.TotalXG, snap.Home.Shots())
	metrics.UpdateTeam(string(model.Away), snap.Away.TotalXG, snap.Away.Shots())
	active := make(map[string]int, len(snap.Alerts))
	for _, a := range snap.Alerts {
		active[string(a.Kind)]++
	}
	kinds := make([]string, len(model.AlertKinds))
	for i, k := range model.AlertKinds {
		kinds[i] = string(k)
	}
	metrics.UpdateAlerts(kinds, active)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(snap)
	}
	return snap
}
