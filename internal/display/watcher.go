package display

import "sync"

const eventBufferSize = 8

// Event reports a change in secondary display connectivity.
type Event struct {
	Connected  bool
	Descriptor Descriptor
}

// Watcher observes platform display attach/detach and exposes a
// "secondary display present" signal. Implementations must fail safe:
// if outputs cannot be enumerated, report disconnected.
type Watcher interface {
	Connected() bool
	Descriptor() (Descriptor, bool)
	Events() <-chan Event
	Close() error
}

// Static is a manually driven watcher, used for tests and for setups
// without platform display detection.
type Static struct {
	mu        sync.Mutex
	connected bool
	desc      Descriptor
	events    chan Event
	closed    bool
}

// NewStatic creates a watcher in the disconnected state.
func NewStatic() *Static {
	return &Static{events: make(chan Event, eventBufferSize)}
}

// NewStaticConnected creates a watcher already reporting the given display.
func NewStaticConnected(d Descriptor) *Static {
	s := NewStatic()
	s.connected = true
	s.desc = d
	return s
}

func (s *Static) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Static) Descriptor() (Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc, s.connected
}

func (s *Static) Events() <-chan Event {
	return s.events
}

// Attach reports the display as present and emits a change event.
func (s *Static) Attach(d Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.desc = d
	s.send(Event{Connected: true, Descriptor: d})
}

// Detach reports the display as absent and emits a change event.
func (s *Static) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.send(Event{Connected: false})
}

func (s *Static) send(e Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

// Verify Static implements Watcher at compile time.
var _ Watcher = (*Static)(nil)
