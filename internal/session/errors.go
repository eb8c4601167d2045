package session

import "errors"

var (
	// ErrSessionActive is returned when starting a session that is
	// already running.
	ErrSessionActive = errors.New("worship session already active")

	// ErrNoActiveService is returned when no service is marked active.
	ErrNoActiveService = errors.New("no active service")

	// ErrEmptyService is returned when the active service has no hymns.
	ErrEmptyService = errors.New("active service has no hymns")

	// ErrHymnNotFound is returned when a referenced hymn id is missing
	// from the library, typically during resume or queue advance.
	ErrHymnNotFound = errors.New("hymn not found")

	// ErrNothingQueued is returned by AdvanceQueue when no item is
	// waiting.
	ErrNothingQueued = errors.New("no waiting item in queue")
)
