// Package schedule provides single-shot, cancelable countdowns for
// auto-present and auto-advance.
package schedule

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Purpose identifies a countdown slot. Each purpose holds at most one
// pending countdown; starting a new one supersedes the old.
type Purpose string

const (
	PurposeAutoPresent Purpose = "auto-present"
	PurposeAutoAdvance Purpose = "auto-advance"
)

type pending struct {
	gen      uint64
	jobID    uuid.UUID
	deadline time.Time
}

// Countdown schedules one-shot callbacks with cancellation.
// Reaching zero invokes the callback exactly once; cancel or a
// superseding start before expiry discards the pending action with no
// side effect.
type Countdown struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	jobs      map[Purpose]pending
	gen       uint64
	log       *slog.Logger
}

// New creates and starts a countdown scheduler.
func New(log *slog.Logger) (*Countdown, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s.Start()
	return &Countdown{
		scheduler: s,
		jobs:      make(map[Purpose]pending),
		log:       log,
	}, nil
}

// Start schedules fn to run once after delay, replacing any pending
// countdown for the same purpose.
func (c *Countdown) Start(p Purpose, delay time.Duration, fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, ok := c.jobs[p]; ok {
		_ = c.scheduler.RemoveJob(prior.jobID)
		delete(c.jobs, p)
	}

	c.gen++
	gen := c.gen

	job, err := c.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(func() { c.fire(p, gen, fn) }),
		gocron.WithName(string(p)),
	)
	if err != nil {
		return fmt.Errorf("schedule %s countdown: %w", p, err)
	}

	c.jobs[p] = pending{gen: gen, jobID: job.ID(), deadline: time.Now().Add(delay)}
	c.log.Debug("countdown started", "purpose", string(p), "delay", delay)
	return nil
}

// fire runs the callback only if this countdown is still the current
// one for its purpose; superseded or canceled countdowns are dropped.
func (c *Countdown) fire(p Purpose, gen uint64, fn func()) {
	c.mu.Lock()
	cur, ok := c.jobs[p]
	if !ok || cur.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.jobs, p)
	c.mu.Unlock()

	fn()
}

// Cancel discards the pending countdown for the purpose, if any.
func (c *Countdown) Cancel(p Purpose) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, ok := c.jobs[p]; ok {
		_ = c.scheduler.RemoveJob(prior.jobID)
		delete(c.jobs, p)
		c.log.Debug("countdown canceled", "purpose", string(p))
	}
}

// Remaining reports the time left on a pending countdown.
func (c *Countdown) Remaining(p Purpose) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.jobs[p]
	if !ok {
		return 0, false
	}
	left := time.Until(cur.deadline)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Active reports whether a countdown is pending for the purpose.
func (c *Countdown) Active(p Purpose) bool {
	_, ok := c.Remaining(p)
	return ok
}

// Shutdown stops the scheduler and discards all pending countdowns.
func (c *Countdown) Shutdown() error {
	c.mu.Lock()
	c.jobs = make(map[Purpose]pending)
	c.mu.Unlock()
	return c.scheduler.Shutdown()
}
