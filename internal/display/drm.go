package display

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const defaultDRMRoot = "/sys/class/drm"

// drmWatcher derives connectivity from kernel DRM connector state under
// /sys/class/drm. A secondary display is considered present when at
// least two connectors report "connected".
type drmWatcher struct {
	mu        sync.Mutex
	root      string
	fs        *fsnotify.Watcher
	connected bool
	desc      Descriptor
	events    chan Event
	done      chan struct{}
	log       *slog.Logger
}

// NewDRMWatcher creates a watcher over the DRM connector tree.
// If the tree cannot be read it reports disconnected rather than failing.
func NewDRMWatcher(root string, log *slog.Logger) (Watcher, error) {
	if root == "" {
		root = defaultDRMRoot
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(root); err != nil {
		log.Warn("cannot watch drm tree, display watching degraded", "root", root, "err", err)
	}

	w := &drmWatcher{
		root:   root,
		fs:     fs,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
		log:    log,
	}
	w.connected, w.desc = enumerateDRM(root, log)

	go w.watch()
	return w, nil
}

// enumerateDRM counts connectors whose status file reads "connected".
func enumerateDRM(root string, log *slog.Logger) (bool, Descriptor) {
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Debug("drm enumeration failed", "err", err)
		return false, Descriptor{}
	}

	var connectedNames []string
	for _, e := range entries {
		// Connector directories look like card0-HDMI-A-1.
		if !strings.Contains(e.Name(), "-") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(root, e.Name(), "status"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(raw)) == "connected" {
			connectedNames = append(connectedNames, e.Name())
		}
	}

	if len(connectedNames) < 2 {
		return false, Descriptor{}
	}
	return true, Descriptor{Name: connectedNames[len(connectedNames)-1]}
}

func (w *drmWatcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.refresh()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Debug("drm watch error", "err", err)
		}
	}
}

// Refresh re-enumerates connectors and emits an event on change.
// Exposed because sysfs does not reliably generate change notifications;
// resume paths call it before trusting the cached state.
func (w *drmWatcher) Refresh() {
	w.refresh()
}

func (w *drmWatcher) refresh() {
	connected, desc := enumerateDRM(w.root, w.log)

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

func (w *drmWatcher) Connected() bool {
	w.refresh()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *drmWatcher) Descriptor() (Descriptor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.desc, w.connected
}

func (w *drmWatcher) Events() <-chan Event {
	return w.events
}

func (w *drmWatcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

// Verify drmWatcher implements Watcher at compile time.
var _ Watcher = (*drmWatcher)(nil)
