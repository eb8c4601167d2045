//go:build linux

package display

import (
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	displayConfigDest      = "org.gnome.Mutter.DisplayConfig"
	displayConfigPath      = "/org/gnome/Mutter/DisplayConfig"
	displayConfigInterface = "org.gnome.Mutter.DisplayConfig"
)

// dbusWatcher tracks monitor topology via the session bus compositor
// interface. A secondary display is considered present when more than
// one monitor is reported.
type dbusWatcher struct {
	mu        sync.Mutex
	conn      *dbus.Conn
	obj       dbus.BusObject
	connected bool
	desc      Descriptor
	events    chan Event
	done      chan struct{}
	log       *slog.Logger
}

// NewDBusWatcher creates a watcher backed by the compositor's
// DisplayConfig D-Bus interface. If the session bus is unavailable it
// returns a disconnected static watcher (fail safe, never assume
// presence).
func NewDBusWatcher(log *slog.Logger) (Watcher, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Warn("session bus unavailable, display watching disabled", "err", err)
		return NewStatic(), nil
	}

	w := &dbusWatcher{
		conn:   conn,
		obj:    conn.Object(displayConfigDest, displayConfigPath),
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
		log:    log,
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(displayConfigPath),
		dbus.WithMatchInterface(displayConfigInterface),
		dbus.WithMatchMember("MonitorsChanged"),
	); err != nil {
		log.Warn("cannot subscribe to monitor changes", "err", err)
		return NewStatic(), nil
	}

	w.connected, w.desc = w.enumerate()

	signals := make(chan *dbus.Signal, eventBufferSize)
	conn.Signal(signals)
	go w.watch(signals)

	return w, nil
}

// enumerate queries the compositor for the current monitor count.
// Any failure is treated as disconnected.
func (w *dbusWatcher) enumerate() (bool, Descriptor) {
	call := w.obj.Call(displayConfigInterface+".GetCurrentState", 0)
	if call.Err != nil {
		w.log.Debug("display enumeration failed", "err", call.Err)
		return false, Descriptor{}
	}
	if len(call.Body) < 2 {
		return false, Descriptor{}
	}
	monitors, ok := call.Body[1].([]interface{})
	if !ok || len(monitors) < 2 {
		return false, Descriptor{}
	}
	return true, Descriptor{Name: "dbus:secondary"}
}

func (w *dbusWatcher) watch(signals <-chan *dbus.Signal) {
	for {
		select {
		case <-w.done:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig.Name != displayConfigInterface+".MonitorsChanged" {
				continue
			}
			connected, desc := w.enumerate()

			w.mu.Lock()
			changed := connected != w.connected
			w.connected = connected
			w.desc = desc
			w.mu.Unlock()

			if changed {
				select {
				case w.events <- Event{Connected: connected, Descriptor: desc}:
				default:
				}
			}
		}
	}
}

func (w *dbusWatcher) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *dbusWatcher) Descriptor() (Descriptor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.desc, w.connected
}

func (w *dbusWatcher) Events() <-chan Event {
	return w.events
}

func (w *dbusWatcher) Close() error {
	close(w.done)
	return w.conn.Close()
}

// Verify dbusWatcher implements Watcher at compile time.
var _ Watcher = (*dbusWatcher)(nil)
