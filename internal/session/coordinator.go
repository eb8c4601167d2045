// Package session coordinates the worship session: it layers hymn
// lookup, history, the presentation queue, countdowns and snapshot
// persistence on top of the display state machine.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cantor-app/cantor/internal/display"
	"github.com/cantor-app/cantor/internal/hymn"
	"github.com/cantor-app/cantor/internal/presentation"
	"github.com/cantor-app/cantor/internal/schedule"
	"github.com/cantor-app/cantor/internal/snapshot"
)

// HymnSource provides hymn and service lookup. *library.Store satisfies
// it; tests substitute an in-memory map.
type HymnSource interface {
	GetHymn(id string) (*hymn.Hymn, error)
	GetHymns(ids []string) ([]hymn.Hymn, error)
	ActiveServiceHymnCount() (int, bool, error)
	ListActiveServiceHymns() ([]hymn.Hymn, error)
}

// Session is the worship session view exposed to subscribers.
type Session struct {
	Active           bool
	CurrentHymnID    string
	CurrentHymnTitle string
	VerseIndex       int
	// History lists titles of hymns presented this session, in first
	// presentation order, without duplicates.
	History []string
}

// Coordinator is the single entry point for operator intents. All
// mutating methods are serialized by one mutex; the machine below it
// has its own lock, so watcher events handled here and direct machine
// accessors never deadlock.
type Coordinator struct {
	mu sync.Mutex

	machine   *presentation.Machine
	watcher   display.Watcher
	source    HymnSource
	store     snapshot.Store
	countdown *schedule.Countdown
	log       *slog.Logger

	sess Session
	q    queue

	subsMu sync.RWMutex
	subs   []*Subscription

	done   chan struct{}
	closed bool
}

// New creates a coordinator. Call Start to begin consuming watcher
// events and Close to release it.
func New(m *presentation.Machine, w display.Watcher, src HymnSource, store snapshot.Store, cd *schedule.Countdown, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		machine:   m,
		watcher:   w,
		source:    src,
		store:     store,
		countdown: cd,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start launches the watcher event loop: attach connects the display,
// detach tears everything down.
func (c *Coordinator) Start() {
	go func() {
		for {
			select {
			case ev, ok := <-c.watcher.Events():
				if !ok {
					return
				}
				c.HandleDisplayEvent(ev)
			case <-c.done:
				return
			}
		}
	}()
}

// Close stops the event loop and closes all subscriptions. The machine
// and countdown scheduler are owned by the caller and shut down there.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, s := range c.subs {
		s.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
}

// Subscribe registers a new event subscription.
func (c *Coordinator) Subscribe() *Subscription {
	s := newSubscription()
	c.subsMu.Lock()
	c.subs = append(c.subs, s)
	c.subsMu.Unlock()
	return s
}

func (c *Coordinator) publish(fn func(*Subscription)) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, s := range c.subs {
		fn(s)
	}
}

func (c *Coordinator) emitState(prev, cur presentation.State) {
	if prev == cur {
		return
	}
	c.publish(func(s *Subscription) { s.sendState(StateChange{Previous: prev, Current: cur}) })
}

func (c *Coordinator) emitSlide() {
	var slide *hymn.Slide
	if sl, ok := c.machine.CurrentSlide(); ok {
		slide = &sl
	}
	c.publish(func(s *Subscription) { s.sendSlide(SlideChange{Slide: slide}) })
}

// emitSession sends the current session view. Caller holds c.mu.
func (c *Coordinator) emitSession() {
	history := make([]string, len(c.sess.History))
	copy(history, c.sess.History)
	ev := SessionChange{
		Active:     c.sess.Active,
		HymnID:     c.sess.CurrentHymnID,
		HymnTitle:  c.sess.CurrentHymnTitle,
		VerseIndex: c.sess.VerseIndex,
		History:    history,
	}
	c.publish(func(s *Subscription) { s.sendSession(ev) })
}

// emitQueue sends the queue contents. Caller holds c.mu.
func (c *Coordinator) emitQueue() {
	ev := QueueChange{Items: c.q.snapshot()}
	c.publish(func(s *Subscription) { s.sendQueue(ev) })
}

func (c *Coordinator) emitCountdown(p schedule.Purpose, remaining time.Duration, active bool) {
	c.publish(func(s *Subscription) {
		s.sendCountdown(CountdownChange{Purpose: p, Remaining: remaining, Active: active})
	})
}

func (c *Coordinator) warn(op string, err error) {
	c.log.Warn(op+" failed", "err", err)
	c.publish(func(s *Subscription) { s.sendWarning(Warning{Op: op, Err: err}) })
}

// persistLocked mirrors the current session into the snapshot store.
// Save is a no-op for inactive sessions, so this never resurrects a
// stopped one. Caller holds c.mu.
func (c *Coordinator) persistLocked() {
	rec := snapshot.Record{
		DisplayStateTag:   c.machine.State().Tag(),
		Active:            c.sess.Active,
		CurrentHymnID:     c.sess.CurrentHymnID,
		CurrentHymnTitle:  c.sess.CurrentHymnTitle,
		CurrentVerseIndex: c.machine.Cursor().Index,
		PresentedHymns:    c.sess.History,
	}
	if err := c.store.Save(rec); err != nil {
		c.log.Warn("snapshot save failed", "err", err)
	}
}

// Session returns a copy of the session view.
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.sess
	out.History = make([]string, len(c.sess.History))
	copy(out.History, c.sess.History)
	return out
}

// State returns the display state.
func (c *Coordinator) State() presentation.State {
	return c.machine.State()
}

// CurrentSlide returns the rendered slide, if any.
func (c *Coordinator) CurrentSlide() (hymn.Slide, bool) {
	return c.machine.CurrentSlide()
}

// ConnectDisplay allocates the output surface for the attached display.
func (c *Coordinator) ConnectDisplay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.machine.State()
	if err := c.machine.Connect(); err != nil {
		return err
	}
	c.emitState(prev, c.machine.State())
	return nil
}

// DisconnectDisplay tears the output down and ends any in-memory
// session. The persisted snapshot is deliberately left intact so an
// active session can resume once a display returns.
func (c *Coordinator) DisconnectDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked()
}

func (c *Coordinator) disconnectLocked() {
	prev := c.machine.State()
	c.machine.Disconnect()
	c.countdown.Cancel(schedule.PurposeAutoPresent)
	c.countdown.Cancel(schedule.PurposeAutoAdvance)
	c.sess = Session{}
	c.emitState(prev, c.machine.State())
	c.emitSlide()
	c.emitSession()
}

// HandleDisplayEvent reacts to a watcher connectivity change.
func (c *Coordinator) HandleDisplayEvent(ev display.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ev.Connected {
		c.disconnectLocked()
		return
	}
	if c.machine.State() != presentation.Disconnected {
		return
	}
	prev := c.machine.State()
	if err := c.machine.Connect(); err != nil {
		c.warn("connect display", err)
		return
	}
	c.emitState(prev, c.machine.State())
}

// StartSession begins a worship session over the active service.
func (c *Coordinator) StartSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess.Active {
		return ErrSessionActive
	}
	count, ok, err := c.source.ActiveServiceHymnCount()
	if err != nil {
		return fmt.Errorf("check active service: %w", err)
	}
	if !ok {
		return ErrNoActiveService
	}
	if count == 0 {
		return ErrEmptyService
	}

	prev := c.machine.State()
	if err := c.machine.StartWorship(); err != nil {
		return err
	}
	c.sess = Session{Active: true}
	c.persistLocked()
	c.emitState(prev, c.machine.State())
	c.emitSession()
	return nil
}

// StopSession ends the worship session, clears its history and erases
// the persisted snapshot. This is the only code path that erases it.
func (c *Coordinator) StopSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sess.Active {
		return nil
	}

	prev := c.machine.State()
	if c.machine.State() == presentation.WorshipPresenting {
		if err := c.machine.StopHymnInWorship(); err != nil {
			return err
		}
	}
	if c.machine.State() == presentation.WorshipBackground {
		if err := c.machine.StopWorship(); err != nil {
			return err
		}
	}

	c.countdown.Cancel(schedule.PurposeAutoPresent)
	c.countdown.Cancel(schedule.PurposeAutoAdvance)
	c.sess = Session{}
	c.q.clear()
	if err := c.store.Clear(); err != nil {
		c.log.Warn("snapshot clear failed", "err", err)
	}
	c.emitState(prev, c.machine.State())
	c.emitSlide()
	c.emitSession()
	c.emitQueue()
	return nil
}

// PresentOrSwitch presents the hymn with whatever transition the
// current display state allows: first presentation, seamless switch, or
// presentation on top of the worship background.
func (c *Coordinator) PresentOrSwitch(h *hymn.Hymn, verse int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presentLocked(h, verse)
}

// PresentHymnID looks the hymn up and presents it.
func (c *Coordinator) PresentHymnID(id string, verse int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, err := c.source.GetHymn(id)
	if err != nil {
		return fmt.Errorf("load hymn %s: %w", id, err)
	}
	if h == nil {
		return fmt.Errorf("%w: %s", ErrHymnNotFound, id)
	}
	return c.presentLocked(h, verse)
}

func (c *Coordinator) presentLocked(h *hymn.Hymn, verse int) error {
	if h == nil {
		return ErrHymnNotFound
	}

	prev := c.machine.State()
	var err error
	switch prev {
	case presentation.Connected:
		err = c.machine.StartSingle(h, verse)
	case presentation.PresentingSingle, presentation.WorshipPresenting:
		err = c.machine.SwitchHymn(h, verse)
	case presentation.WorshipBackground:
		err = c.machine.PresentInWorship(h, verse)
	default:
		return &presentation.TransitionError{Op: "present", From: prev, Err: presentation.ErrNoDisplay}
	}
	if err != nil {
		return err
	}

	cursor := c.machine.Cursor()
	if c.sess.Active {
		c.sess.CurrentHymnID = h.ID
		c.sess.CurrentHymnTitle = h.Title
		c.sess.VerseIndex = cursor.Index
		c.appendHistoryLocked(h.Title)
		c.persistLocked()
	}
	c.emitState(prev, c.machine.State())
	c.emitSlide()
	c.emitSession()
	return nil
}

// appendHistoryLocked records a title at its first presentation only.
func (c *Coordinator) appendHistoryLocked(title string) {
	for _, t := range c.sess.History {
		if t == title {
			return
		}
	}
	c.sess.History = append(c.sess.History, title)
}

// StopPresenting releases the current hymn: back to Connected outside
// worship, back to the background inside it.
func (c *Coordinator) StopPresenting() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.machine.State()
	var err error
	switch prev {
	case presentation.PresentingSingle:
		err = c.machine.StopSingle()
	case presentation.WorshipPresenting:
		err = c.machine.StopHymnInWorship()
	default:
		return &presentation.TransitionError{Op: "stop presenting", From: prev, Err: presentation.ErrInvalidTransition}
	}
	if err != nil {
		return err
	}

	if c.sess.Active {
		c.sess.CurrentHymnID = ""
		c.sess.CurrentHymnTitle = ""
		c.sess.VerseIndex = 0
		c.persistLocked()
	}
	c.emitState(prev, c.machine.State())
	c.emitSlide()
	c.emitSession()
	return nil
}

// CanPresent reports whether the hymn could be presented right now as
// part of the session: the session is active, the display state allows
// presenting, and the hymn is not already on screen.
func (c *Coordinator) CanPresent(h *hymn.Hymn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h == nil || !c.sess.Active {
		return false
	}
	st := c.machine.State()
	if !st.IsPresenting() && st != presentation.WorshipBackground {
		return false
	}
	if cur := c.machine.CurrentHymn(); cur != nil && cur.ID == h.ID {
		return false
	}
	return true
}

// NextVerse advances one slide. At the last slide it is a no-op and
// returns false.
func (c *Coordinator) NextVerse() (bool, error) {
	return c.step(func(seq *hymn.Sequence, cur hymn.Cursor) (hymn.Cursor, bool) {
		return seq.Next(cur)
	})
}

// PreviousVerse steps one slide back. At the first slide it is a no-op
// and returns false.
func (c *Coordinator) PreviousVerse() (bool, error) {
	return c.step(func(seq *hymn.Sequence, cur hymn.Cursor) (hymn.Cursor, bool) {
		return seq.Previous(cur)
	})
}

func (c *Coordinator) step(move func(*hymn.Sequence, hymn.Cursor) (hymn.Cursor, bool)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.machine.Sequence()
	if seq == nil {
		return false, &presentation.TransitionError{Op: "step verse", From: c.machine.State(), Err: presentation.ErrInvalidTransition}
	}
	next, ok := move(seq, c.machine.Cursor())
	if !ok {
		return false, nil
	}
	if err := c.machine.GoToVerse(next.Index); err != nil {
		return false, err
	}
	if c.sess.Active {
		c.sess.VerseIndex = next.Index
		c.persistLocked()
	}
	c.emitSlide()
	c.emitSession()
	return true, nil
}

// JumpToVerse renders the slide at index. Out-of-range indexes fail
// without changing the display.
func (c *Coordinator) JumpToVerse(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.GoToVerse(index); err != nil {
		return err
	}
	if c.sess.Active {
		c.sess.VerseIndex = c.machine.Cursor().Index
		c.persistLocked()
	}
	c.emitSlide()
	c.emitSession()
	return nil
}

// Enqueue appends a hymn to the presentation queue.
func (c *Coordinator) Enqueue(h *hymn.Hymn, startVerse int) (QueueItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h == nil {
		return QueueItem{}, ErrHymnNotFound
	}
	item := c.q.add(h.ID, h.Title, startVerse)
	c.emitQueue()
	return item, nil
}

// QueueItems returns a copy of the queue.
func (c *Coordinator) QueueItems() []QueueItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.snapshot()
}

// SkipQueued marks a waiting item skipped.
func (c *Coordinator) SkipQueued(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.q.setStatus(id, StatusSkipped)
	if ok {
		c.emitQueue()
	}
	return ok
}

// AdvanceQueue presents the first waiting queue item. On success the
// previously presenting item completes; on failure the attempted item
// reverts to waiting and the queue is otherwise untouched.
func (c *Coordinator) AdvanceQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceQueueLocked()
}

func (c *Coordinator) advanceQueueLocked() error {
	item := c.q.nextWaiting()
	if item == nil {
		return ErrNothingQueued
	}

	h, err := c.source.GetHymn(item.HymnID)
	if err != nil {
		return fmt.Errorf("load hymn %s: %w", item.HymnID, err)
	}
	if h == nil {
		item.Status = StatusSkipped
		c.emitQueue()
		c.warn("advance queue", fmt.Errorf("%w: %s", ErrHymnNotFound, item.HymnID))
		return fmt.Errorf("%w: %s", ErrHymnNotFound, item.HymnID)
	}

	prior := c.q.presenting()
	item.Status = StatusPresenting
	if err := c.presentLocked(h, item.StartVerse); err != nil {
		item.Status = StatusWaiting
		c.warn("advance queue", err)
		return err
	}
	if prior != nil {
		prior.Status = StatusCompleted
	}
	c.emitQueue()
	return nil
}

// StartAutoPresent schedules the hymn to be presented after delay,
// superseding any pending auto-present.
func (c *Coordinator) StartAutoPresent(hymnID string, verse int, delay time.Duration) error {
	err := c.countdown.Start(schedule.PurposeAutoPresent, delay, func() {
		c.emitCountdown(schedule.PurposeAutoPresent, 0, false)
		if err := c.PresentHymnID(hymnID, verse); err != nil {
			c.warn("auto-present", err)
		}
	})
	if err != nil {
		return err
	}
	c.emitCountdown(schedule.PurposeAutoPresent, delay, true)
	return nil
}

// StartAutoAdvance schedules a queue advance after delay, superseding
// any pending auto-advance.
func (c *Coordinator) StartAutoAdvance(delay time.Duration) error {
	err := c.countdown.Start(schedule.PurposeAutoAdvance, delay, func() {
		c.emitCountdown(schedule.PurposeAutoAdvance, 0, false)
		if err := c.AdvanceQueue(); err != nil {
			c.warn("auto-advance", err)
		}
	})
	if err != nil {
		return err
	}
	c.emitCountdown(schedule.PurposeAutoAdvance, delay, true)
	return nil
}

// CancelCountdown discards the pending countdown for the purpose.
func (c *Coordinator) CancelCountdown(p schedule.Purpose) {
	c.countdown.Cancel(p)
	c.emitCountdown(p, 0, false)
}

// CountdownRemaining reports the time left on a pending countdown.
func (c *Coordinator) CountdownRemaining(p schedule.Purpose) (time.Duration, bool) {
	return c.countdown.Remaining(p)
}

// Resume reconciles state after the application restarts or wakes up.
// Live connectivity wins over everything: with no display attached the
// machine is forced Disconnected and the snapshot is ignored but kept,
// since only an explicit stop may erase it. With a display attached,
// a persisted active session is rebuilt, including the presented hymn
// at its saved verse when it still exists in the library.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.watcher.Connected() {
		c.disconnectLocked()
		return nil
	}

	prev := c.machine.State()
	if c.machine.State() == presentation.Disconnected {
		if err := c.machine.Connect(); err != nil {
			return err
		}
	}

	rec, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if rec == nil || !rec.Active {
		c.emitState(prev, c.machine.State())
		return nil
	}

	// Rebuild the worship layer. A single presentation left over in
	// memory yields to the persisted session.
	if c.machine.State() == presentation.PresentingSingle {
		if err := c.machine.StopSingle(); err != nil {
			return err
		}
	}
	if !c.machine.State().InWorship() {
		if err := c.machine.StartWorship(); err != nil {
			return err
		}
	}
	c.sess = Session{Active: true, History: rec.PresentedHymns}

	if presentation.StateFromTag(rec.DisplayStateTag) == presentation.WorshipPresenting && rec.CurrentHymnID != "" {
		h, err := c.source.GetHymn(rec.CurrentHymnID)
		if err != nil {
			return fmt.Errorf("load hymn %s: %w", rec.CurrentHymnID, err)
		}
		if h == nil {
			// The hymn vanished from the library; stay on the
			// background rather than failing the whole resume.
			c.warn("resume", fmt.Errorf("%w: %s", ErrHymnNotFound, rec.CurrentHymnID))
		} else if c.machine.State() == presentation.WorshipBackground {
			if err := c.machine.PresentInWorship(h, rec.CurrentVerseIndex); err != nil {
				c.warn("resume", err)
			} else {
				c.sess.CurrentHymnID = h.ID
				c.sess.CurrentHymnTitle = h.Title
				c.sess.VerseIndex = c.machine.Cursor().Index
			}
		}
	}

	c.persistLocked()
	c.emitState(prev, c.machine.State())
	c.emitSlide()
	c.emitSession()
	return nil
}
