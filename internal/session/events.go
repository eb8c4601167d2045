package session

import (
	"time"

	"github.com/cantor-app/cantor/internal/hymn"
	"github.com/cantor-app/cantor/internal/presentation"
	"github.com/cantor-app/cantor/internal/schedule"
)

const eventBufferSize = 16

// StateChange is emitted after every successful display state
// transition.
type StateChange struct {
	Previous presentation.State
	Current  presentation.State
}

// SlideChange is emitted when the rendered slide changes.
// A nil Slide means the output shows the background or nothing.
type SlideChange struct {
	Slide *hymn.Slide
}

// SessionChange is emitted when worship session fields change.
type SessionChange struct {
	Active     bool
	HymnID     string
	HymnTitle  string
	VerseIndex int
	History    []string
}

// QueueChange is emitted when the presentation queue changes.
type QueueChange struct {
	Items []QueueItem
}

// CountdownChange is emitted when a countdown starts, fires or is
// canceled.
type CountdownChange struct {
	Purpose   schedule.Purpose
	Remaining time.Duration
	Active    bool
}

// Warning is emitted for recovered errors the operator should see.
type Warning struct {
	Op  string
	Err error
}

// Subscription provides event channels for one subscriber.
type Subscription struct {
	StateChanged     <-chan StateChange
	SlideChanged     <-chan SlideChange
	SessionChanged   <-chan SessionChange
	QueueChanged     <-chan QueueChange
	CountdownChanged <-chan CountdownChange
	Warnings         <-chan Warning
	Done             <-chan struct{}

	// Internal write channels
	stateCh     chan StateChange
	slideCh     chan SlideChange
	sessionCh   chan SessionChange
	queueCh     chan QueueChange
	countdownCh chan CountdownChange
	warningCh   chan Warning
	doneCh      chan struct{}
}

// newSubscription creates a subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:     make(chan StateChange, eventBufferSize),
		slideCh:     make(chan SlideChange, eventBufferSize),
		sessionCh:   make(chan SessionChange, eventBufferSize),
		queueCh:     make(chan QueueChange, eventBufferSize),
		countdownCh: make(chan CountdownChange, eventBufferSize),
		warningCh:   make(chan Warning, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.SlideChanged = s.slideCh
	s.SessionChanged = s.sessionCh
	s.QueueChanged = s.queueCh
	s.CountdownChanged = s.countdownCh
	s.Warnings = s.warningCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// All sends are non-blocking: slow subscribers drop events rather than
// stalling the coordinator.

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendSlide(e SlideChange) {
	select {
	case s.slideCh <- e:
	default:
	}
}

func (s *Subscription) sendSession(e SessionChange) {
	select {
	case s.sessionCh <- e:
	default:
	}
}

func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

func (s *Subscription) sendCountdown(e CountdownChange) {
	select {
	case s.countdownCh <- e:
	default:
	}
}

func (s *Subscription) sendWarning(e Warning) {
	select {
	case s.warningCh <- e:
	default:
	}
}
