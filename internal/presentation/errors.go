package presentation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is called in a
	// state that forbids it. State is left unchanged.
	ErrInvalidTransition = errors.New("invalid presentation transition")

	// ErrNoDisplay is returned when an operation requires a connected
	// secondary display and none is present.
	ErrNoDisplay = errors.New("no external display connected")

	// ErrPresentationFailed wraps surface render/lifecycle failures.
	ErrPresentationFailed = errors.New("presentation failed")
)

// TransitionError reports a rejected state machine operation.
type TransitionError struct {
	Op   string
	From State
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s in state %s: %v", e.Op, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

func invalid(op string, from State) error {
	return &TransitionError{Op: op, From: from, Err: ErrInvalidTransition}
}

func renderFailed(op string, from State, err error) error {
	return &TransitionError{Op: op, From: from, Err: fmt.Errorf("%w: %v", ErrPresentationFailed, err)}
}
