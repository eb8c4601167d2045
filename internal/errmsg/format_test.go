package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPresentHymn,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPresentHymn,
			err:      errors.New("no display"),
			expected: "Failed to present hymn: no display",
		},
		{
			name:     "session start operation",
			op:       OpSessionStart,
			err:      errors.New("no active service"),
			expected: "Failed to start worship session: no active service",
		},
		{
			name:     "queue operation",
			op:       OpQueueAdvance,
			err:      errors.New("no waiting item in queue"),
			expected: "Failed to advance queue: no waiting item in queue",
		},
		{
			name:     "display operation",
			op:       OpDisplayConnect,
			err:      errors.New("surface unavailable"),
			expected: "Failed to connect display: surface unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpHymnLoad,
			context:  "amazing-grace",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpHymnLoad,
			context:  "amazing-grace",
			err:      errors.New("hymn not found"),
			expected: "Failed to load hymn 'amazing-grace': hymn not found",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpHymnLoad,
			context:  "",
			err:      errors.New("hymn not found"),
			expected: "Failed to load hymn: hymn not found",
		},
		{
			name:     "queue add with title context",
			op:       OpQueueAdd,
			context:  "To God Be the Glory",
			err:      errors.New("hymn not found"),
			expected: "Failed to add hymn to queue 'To God Be the Glory': hymn not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpDisplayConnect, OpDisplayDisconnect,
		OpPresentHymn, OpSwitchHymn, OpStopPresent,
		OpGoToVerse, OpNextVerse, OpPreviousVerse,
		OpSessionStart, OpSessionStop, OpSessionResume,
		OpQueueAdd, OpQueueAdvance, OpQueueSkip,
		OpCountdownStart, OpCountdownCancel,
		OpLibraryLoad, OpHymnLoad, OpHymnSave,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
