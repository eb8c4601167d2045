package display

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConnector(t *testing.T, root, name, status string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "status"), []byte(status+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnumerateDRM_SingleConnector(t *testing.T) {
	root := t.TempDir()
	writeConnector(t, root, "card0-eDP-1", "connected")
	writeConnector(t, root, "card0-HDMI-A-1", "disconnected")

	connected, _ := enumerateDRM(root, discardLogger())
	if connected {
		t.Error("one connected connector should not count as a secondary display")
	}
}

func TestEnumerateDRM_SecondaryPresent(t *testing.T) {
	root := t.TempDir()
	writeConnector(t, root, "card0-eDP-1", "connected")
	writeConnector(t, root, "card0-HDMI-A-1", "connected")

	connected, desc := enumerateDRM(root, discardLogger())
	if !connected {
		t.Fatal("two connected connectors should report a secondary display")
	}
	if desc.Name == "" {
		t.Error("descriptor name should identify the connector")
	}
}

func TestEnumerateDRM_MissingTreeFailsSafe(t *testing.T) {
	connected, _ := enumerateDRM(filepath.Join(t.TempDir(), "nope"), discardLogger())
	if connected {
		t.Error("unreadable tree must be treated as disconnected")
	}
}

func TestDRMWatcher_RefreshDetectsChange(t *testing.T) {
	root := t.TempDir()
	writeConnector(t, root, "card0-eDP-1", "connected")
	writeConnector(t, root, "card0-HDMI-A-1", "disconnected")

	w, err := NewDRMWatcher(root, discardLogger())
	if err != nil {
		t.Fatalf("NewDRMWatcher failed: %v", err)
	}
	defer w.Close()

	if w.Connected() {
		t.Fatal("watcher should start disconnected")
	}

	writeConnector(t, root, "card0-HDMI-A-1", "connected")
	if !w.Connected() {
		t.Error("watcher should report connected after status flip")
	}
}
