//go:build !linux

package display

import "log/slog"

// NewDBusWatcher returns a disconnected static watcher on non-Linux
// platforms, where no session bus compositor interface exists.
func NewDBusWatcher(_ *slog.Logger) (Watcher, error) {
	return NewStatic(), nil
}
