// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Display operations
	OpDisplayConnect    Op = "connect display"
	OpDisplayDisconnect Op = "disconnect display"

	// Presentation operations
	OpPresentHymn   Op = "present hymn"
	OpSwitchHymn    Op = "switch hymn"
	OpStopPresent   Op = "stop presenting"
	OpGoToVerse     Op = "go to verse"
	OpNextVerse     Op = "advance verse"
	OpPreviousVerse Op = "step back a verse"

	// Session operations
	OpSessionStart  Op = "start worship session"
	OpSessionStop   Op = "stop worship session"
	OpSessionResume Op = "resume session"

	// Queue operations
	OpQueueAdd     Op = "add hymn to queue"
	OpQueueAdvance Op = "advance queue"
	OpQueueSkip    Op = "skip queued hymn"

	// Countdown operations
	OpCountdownStart  Op = "start countdown"
	OpCountdownCancel Op = "cancel countdown"

	// Library operations
	OpLibraryLoad Op = "load hymn library"
	OpHymnLoad    Op = "load hymn"
	OpHymnSave    Op = "save hymn"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
