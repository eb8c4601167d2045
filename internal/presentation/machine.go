package presentation

import (
	"log/slog"
	"sync"

	"github.com/cantor-app/cantor/internal/display"
	"github.com/cantor-app/cantor/internal/hymn"
)

// Machine owns the enumerated state of the secondary output and is the
// single source of truth for what is currently on screen.
//
// Operations are serialized by one mutex: a transition and an incoming
// event can never interleave mid-mutation. Every operation either
// completes its visible effect (surface call) and then commits state, or
// fails leaving the prior state and cursor standing.
type Machine struct {
	mu sync.Mutex

	watcher    display.Watcher
	surface    display.Surface
	background string
	log        *slog.Logger

	state   State
	current *hymn.Hymn
	seq     *hymn.Sequence
	cursor  hymn.Cursor
	open    bool
}

// NewMachine creates a machine in the Disconnected state.
// The surface is the single exclusively-owned output resource; the
// machine only ever drives its lifecycle from Connect and Disconnect.
func NewMachine(w display.Watcher, s display.Surface, background string, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		watcher:    w,
		surface:    s,
		background: background,
		log:        log,
		state:      Disconnected,
	}
}

// State returns the current display state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentHymn returns the hymn on screen, or nil if none.
func (m *Machine) CurrentHymn() *hymn.Hymn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Cursor returns the active presentation cursor.
// Only meaningful while a hymn is presented.
func (m *Machine) Cursor() hymn.Cursor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Sequence returns the interleaved sequence of the presented hymn, or
// nil if no hymn is on screen.
func (m *Machine) Sequence() *hymn.Sequence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// CurrentSlide returns the slide currently rendered, if any.
func (m *Machine) CurrentSlide() (hymn.Slide, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq == nil || !m.state.IsPresenting() {
		return hymn.Slide{}, false
	}
	return m.seq.Slide(m.cursor.Index)
}

// Connect allocates the output surface.
// Requires Disconnected and a display reported present by the watcher.
func (m *Machine) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Disconnected {
		return invalid("connect", m.state)
	}
	desc, ok := m.watcher.Descriptor()
	if !ok {
		return &TransitionError{Op: "connect", From: m.state, Err: ErrNoDisplay}
	}
	if err := m.surface.Open(desc); err != nil {
		return renderFailed("connect", m.state, err)
	}
	m.open = true
	m.state = Connected
	m.log.Info("display connected", "output", desc.Name)
	return nil
}

// Disconnect tears down the output surface and clears all presentation
// state. It is legal from every state and idempotent, modeling the
// platform's unsolicited detach event: it must always resolve safely
// regardless of what was on screen.
func (m *Machine) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open {
		if err := m.surface.Close(); err != nil {
			m.log.Warn("surface teardown failed", "err", err)
		}
		m.open = false
	}
	if m.state != Disconnected {
		m.log.Info("display disconnected", "from", m.state.String())
	}
	m.state = Disconnected
	m.current = nil
	m.seq = nil
	m.cursor = hymn.Cursor{}
}

// StartSingle presents a hymn outside a worship session.
func (m *Machine) StartSingle(h *hymn.Hymn, verse int) error {
	return m.present("start single", h, verse, Connected, PresentingSingle)
}

// StopSingle releases the rendered hymn, returning to Connected.
func (m *Machine) StopSingle() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != PresentingSingle {
		return invalid("stop single", m.state)
	}
	if err := m.surface.Clear(); err != nil {
		return renderFailed("stop single", m.state, err)
	}
	m.state = Connected
	m.current = nil
	m.seq = nil
	m.cursor = hymn.Cursor{}
	return nil
}

// SwitchHymn replaces the presented hymn without touching the surface
// lifecycle. The state is unchanged; the output is never hidden or
// recreated, only its content replaced. This is the seamless-switch
// contract.
func (m *Machine) SwitchHymn(h *hymn.Hymn, verse int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsPresenting() {
		return invalid("switch hymn", m.state)
	}
	return m.renderLocked("switch hymn", h, verse)
}

// StartWorship enters the worship session background.
func (m *Machine) StartWorship() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Connected {
		return invalid("start worship", m.state)
	}
	if err := m.surface.SetBackground(m.background); err != nil {
		return renderFailed("start worship", m.state, err)
	}
	m.state = WorshipBackground
	return nil
}

// StopWorship leaves worship mode, releasing any presented content.
func (m *Machine) StopWorship() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.InWorship() {
		return invalid("stop worship", m.state)
	}
	if err := m.surface.Clear(); err != nil {
		return renderFailed("stop worship", m.state, err)
	}
	m.state = Connected
	m.current = nil
	m.seq = nil
	m.cursor = hymn.Cursor{}
	return nil
}

// PresentInWorship shows a hymn on top of a live worship session.
func (m *Machine) PresentInWorship(h *hymn.Hymn, verse int) error {
	return m.present("present in worship", h, verse, WorshipBackground, WorshipPresenting)
}

// StopHymnInWorship returns to the worship background without ending
// the session.
func (m *Machine) StopHymnInWorship() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != WorshipPresenting {
		return invalid("stop hymn in worship", m.state)
	}
	if err := m.surface.SetBackground(m.background); err != nil {
		return renderFailed("stop hymn in worship", m.state, err)
	}
	m.state = WorshipBackground
	m.current = nil
	m.seq = nil
	m.cursor = hymn.Cursor{}
	return nil
}

// GoToVerse re-renders the presented hymn at the given slide index.
func (m *Machine) GoToVerse(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsPresenting() || m.seq == nil {
		return invalid("go to verse", m.state)
	}
	next, err := m.seq.Jump(m.cursor, index)
	if err != nil {
		return &TransitionError{Op: "go to verse", From: m.state, Err: err}
	}
	slide, _ := m.seq.Slide(next.Index)
	if err := m.surface.SetSlide(slide); err != nil {
		return renderFailed("go to verse", m.state, err)
	}
	m.cursor = next
	return nil
}

// present handles the two render-and-advance transitions that share the
// same shape: require `from`, render hymn, commit `to`.
func (m *Machine) present(op string, h *hymn.Hymn, verse int, from, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != from {
		return invalid(op, m.state)
	}
	if err := m.renderLocked(op, h, verse); err != nil {
		return err
	}
	m.state = to
	return nil
}

// renderLocked builds the hymn's sequence and swaps the slide content.
// On failure the attempted hymn is not marked current and the prior
// state and cursor stand.
func (m *Machine) renderLocked(op string, h *hymn.Hymn, verse int) error {
	seq := hymn.BuildSequence(h)
	idx := seq.Clamp(verse)
	slide, ok := seq.Slide(idx)
	if !ok {
		return &TransitionError{Op: op, From: m.state, Err: hymn.ErrVerseOutOfRange}
	}
	if err := m.surface.SetSlide(slide); err != nil {
		return renderFailed(op, m.state, err)
	}
	m.current = h
	m.seq = seq
	m.cursor = hymn.Cursor{HymnID: h.ID, Index: idx}
	return nil
}
