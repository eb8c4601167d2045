package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cantor-app/cantor/internal/config"
	"github.com/cantor-app/cantor/internal/display"
	"github.com/cantor-app/cantor/internal/errmsg"
	"github.com/cantor-app/cantor/internal/hymn"
	"github.com/cantor-app/cantor/internal/library"
	"github.com/cantor-app/cantor/internal/presentation"
	"github.com/cantor-app/cantor/internal/schedule"
	"github.com/cantor-app/cantor/internal/session"
	"github.com/cantor-app/cantor/internal/snapshot"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	presentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	queuedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle = lipgloss.NewStyle().Faint(true)
)

type tickMsg time.Time

type (
	stateMsg     session.StateChange
	slideMsg     session.SlideChange
	sessionMsg   session.SessionChange
	queueMsg     session.QueueChange
	countdownMsg session.CountdownChange
	warningMsg   session.Warning
	doneMsg      struct{}
)

type model struct {
	cfg       *config.Config
	lib       *library.Store
	watcher   display.Watcher
	countdown *schedule.Countdown
	co        *session.Coordinator
	sub       *session.Subscription

	hymns  []hymn.Hymn
	cursor int

	state     presentation.State
	sess      session.Session
	slide     *hymn.Slide
	queue     []session.QueueItem
	statusMsg string

	width  int
	height int
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, nil))
}

func newWatcher(cfg *config.Config, log *slog.Logger) display.Watcher {
	switch cfg.WatcherBackend() {
	case "none":
		return display.NewStatic()
	case "dbus":
		if w, err := display.NewDBusWatcher(log); err == nil {
			return w
		}
		return display.NewStatic()
	case "drm":
		if w, err := display.NewDRMWatcher("/sys/class/drm", log); err == nil {
			return w
		}
		return display.NewStatic()
	default:
		if w, err := display.NewDBusWatcher(log); err == nil {
			return w
		}
		if w, err := display.NewDRMWatcher("/sys/class/drm", log); err == nil {
			return w
		}
		return display.NewStatic()
	}
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}
	log := newLogger(cfg)

	var lib *library.Store
	if cfg.LibraryDB != "" {
		lib, err = library.OpenPath(cfg.LibraryDB)
	} else {
		lib, err = library.Open()
	}
	if err != nil {
		return model{}, err
	}
	if err := lib.SeedIfEmpty(); err != nil {
		lib.Close()
		return model{}, err
	}

	hymns, err := lib.ListHymns()
	if err != nil {
		lib.Close()
		return model{}, err
	}

	watcher := newWatcher(cfg, log)

	target := cfg.SurfaceTarget
	if target == "" {
		target = filepath.Join(os.TempDir(), "cantor-surface")
	}
	surface := display.NewTermSurface(target)

	machine := presentation.NewMachine(watcher, surface, cfg.BackgroundImage, log)
	store := snapshot.Open(cfg.SnapshotDir)

	cd, err := schedule.New(log)
	if err != nil {
		lib.Close()
		return model{}, err
	}

	co := session.New(machine, watcher, lib, store, cd, log)
	sub := co.Subscribe()
	co.Start()

	m := model{
		cfg:       cfg,
		lib:       lib,
		watcher:   watcher,
		countdown: cd,
		co:        co,
		sub:       sub,
		hymns:     hymns,
		state:     co.State(),
	}

	// Reconcile with a session persisted before the last shutdown.
	if err := co.Resume(); err != nil {
		m.statusMsg = errmsg.Format(errmsg.OpSessionResume, err)
	}
	m.state = co.State()
	m.sess = co.Session()
	if s, ok := co.CurrentSlide(); ok {
		m.slide = &s
	}

	return m, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.sub), tickCmd())
}

func waitForEvent(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return stateMsg(e)
		case e := <-sub.SlideChanged:
			return slideMsg(e)
		case e := <-sub.SessionChanged:
			return sessionMsg(e)
		case e := <-sub.QueueChanged:
			return queueMsg(e)
		case e := <-sub.CountdownChanged:
			return countdownMsg(e)
		case e := <-sub.Warnings:
			return warningMsg(e)
		case <-sub.Done:
			return doneMsg{}
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) selected() *hymn.Hymn {
	if len(m.hymns) == 0 {
		return nil
	}
	h := m.hymns[m.cursor]
	return &h
}

func (m *model) quit() tea.Cmd {
	m.co.Close()
	_ = m.countdown.Shutdown()
	_ = m.watcher.Close()
	_ = m.lib.Close()
	return tea.Quit
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case stateMsg:
		m.state = msg.Current
		return m, waitForEvent(m.sub)
	case slideMsg:
		m.slide = msg.Slide
		return m, waitForEvent(m.sub)
	case sessionMsg:
		m.sess = session.Session{
			Active:           msg.Active,
			CurrentHymnID:    msg.HymnID,
			CurrentHymnTitle: msg.HymnTitle,
			VerseIndex:       msg.VerseIndex,
			History:          msg.History,
		}
		return m, waitForEvent(m.sub)
	case queueMsg:
		m.queue = msg.Items
		return m, waitForEvent(m.sub)
	case countdownMsg:
		return m, waitForEvent(m.sub)
	case warningMsg:
		m.statusMsg = errmsg.Format(errmsg.Op(msg.Op), msg.Err)
		return m, waitForEvent(m.sub)
	case doneMsg:
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.hymns)-1 {
			m.cursor++
		}

	case "c":
		if err := m.co.ConnectDisplay(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpDisplayConnect, err)
		}

	case "d":
		// Manual attach/detach, only for the static watcher.
		if st, ok := m.watcher.(*display.Static); ok {
			if st.Connected() {
				st.Detach()
			} else {
				st.Attach(display.Descriptor{Name: "manual", Width: 1920, Height: 1080})
			}
		}

	case "s":
		if err := m.co.StartSession(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpSessionStart, err)
		}
	case "S":
		if err := m.co.StopSession(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpSessionStop, err)
		}

	case "enter":
		if h := m.selected(); h != nil {
			if err := m.co.PresentOrSwitch(h, 0); err != nil {
				m.statusMsg = errmsg.FormatWith(errmsg.OpPresentHymn, h.Title, err)
			}
		}
	case " ":
		if err := m.co.StopPresenting(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpStopPresent, err)
		}

	case "n", "right":
		if _, err := m.co.NextVerse(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpNextVerse, err)
		}
	case "p", "left":
		if _, err := m.co.PreviousVerse(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpPreviousVerse, err)
		}

	case "a":
		if h := m.selected(); h != nil {
			if _, err := m.co.Enqueue(h, 0); err != nil {
				m.statusMsg = errmsg.FormatWith(errmsg.OpQueueAdd, h.Title, err)
			}
		}
	case "A":
		if err := m.co.AdvanceQueue(); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpQueueAdvance, err)
		}

	case "t":
		if err := m.co.StartAutoAdvance(m.cfg.AutoAdvanceDelay()); err != nil {
			m.statusMsg = errmsg.Format(errmsg.OpCountdownStart, err)
		}
	case "T":
		if h := m.selected(); h != nil {
			if err := m.co.StartAutoPresent(h.ID, 0, m.cfg.AutoPresentDelay()); err != nil {
				m.statusMsg = errmsg.Format(errmsg.OpCountdownStart, err)
			}
		}
	case "x":
		m.co.CancelCountdown(schedule.PurposeAutoPresent)
		m.co.CancelCountdown(schedule.PurposeAutoAdvance)
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Cantor"))
	b.WriteString("\n\n")

	queued := map[string]bool{}
	for _, item := range m.queue {
		if item.Status == session.StatusWaiting {
			queued[item.HymnID] = true
		}
	}

	for i, h := range m.hymns {
		marker := "  "
		if m.sess.Active && h.ID == m.sess.CurrentHymnID {
			marker = presentStyle.Render("● ")
		} else if queued[h.ID] {
			marker = queuedStyle.Render("+ ")
		}

		line := h.Title
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(warnStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("c connect · d display · s/S session · enter present · space stop · n/p verse · a/A queue · t/T timers · x cancel · q quit"))
	return b.String()
}

func (m model) statusBar() string {
	parts := []string{m.state.String()}

	if m.sess.Active {
		parts = append(parts, "session active")
		if len(m.sess.History) > 0 {
			parts = append(parts, fmt.Sprintf("%d presented", len(m.sess.History)))
		}
	}

	if m.slide != nil {
		parts = append(parts, fmt.Sprintf("%s — %s (%d/%d)",
			m.slide.HymnTitle, m.slide.Label, m.slide.Index+1, m.slide.Total))
	}

	if left, ok := m.co.CountdownRemaining(schedule.PurposeAutoPresent); ok {
		parts = append(parts, fmt.Sprintf("auto-present in %ds", int(left.Seconds())))
	}
	if left, ok := m.co.CountdownRemaining(schedule.PurposeAutoAdvance); ok {
		parts = append(parts, fmt.Sprintf("auto-advance in %ds", int(left.Seconds())))
	}

	width := m.width - 2
	if width < 0 {
		width = 0
	}
	return statusStyle.Width(width).Render(strings.Join(parts, "  │  "))
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
