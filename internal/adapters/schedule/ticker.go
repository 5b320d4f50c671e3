// Package schedule drives the match clock from a gocron scheduler.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/okian/matchxg/pkg/logger"
)

const jobName = "match-clock"

// Option applies a configuration option to the Ticker.
type Option func(*Ticker)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Ticker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Ticker runs one duration job while the match clock is running. Each
// Start registers a fresh job; Stop removes it without waiting for a tick
// in progress, so it is safe to call from inside the tick callback.
type Ticker struct {
	mu       sync.Mutex
	sched    gocron.Scheduler
	interval time.Duration
	job      uuid.UUID
	active   bool

	// gen invalidates callbacks of removed jobs that still fire once.
	gen atomic.Uint64

	logger logger.Logger
}

// NewTicker creates and starts the underlying scheduler. No job runs until
// Start is called.
func NewTicker(interval time.Duration, opts ...Option) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	t := &Ticker{sched: sched, interval: interval}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get()
	}
	sched.Start()
	return t, nil
}

// Interval reports the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start schedules tick every interval. It is a no-op while already active.
func (t *Ticker) Start(tick func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return nil
	}
	gen := t.gen.Add(1)
	job, err := t.sched.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(func() {
			if t.gen.Load() != gen {
				return
			}
			tick()
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule clock tick: %w", err)
	}
	t.job = job.ID()
	t.active = true
	t.logger.Debug(context.Background(), "clock ticker started",
		logger.String("job", t.job.String()),
		logger.Duration("interval", t.interval),
	)
	return nil
}

// Stop removes the active job. It never blocks on the scheduler.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	t.gen.Add(1)
	t.active = false
	id := t.job
	go func() {
		if err := t.sched.RemoveJob(id); err != nil {
			t.logger.Debug(context.Background(), "clock job removal", logger.String("job", id.String()), logger.Error(err))
		}
	}()
	t.logger.Debug(context.Background(), "clock ticker stopped", logger.String("job", id.String()))
}

// Active reports whether a job is scheduled.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Shutdown stops the scheduler and waits for running ticks.
func (t *Ticker) Shutdown() error {
	t.mu.Lock()
	t.gen.Add(1)
	t.active = false
	t.mu.Unlock()

	if err := t.sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}
