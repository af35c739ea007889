package session

import (
	"fmt"

	"editline/render"

	"github.com/pkg/errors"
)

var (
	// ErrFatal matches every *FatalError with errors.Is.
	ErrFatal = errors.New("session: fatal error")

	// ErrInterrupted is wrapped by the *FatalError returned when an
	// interrupt aborts ReadLine.
	ErrInterrupted = render.ErrInterrupted

	// ErrNilCommand is returned when a command is registered without a
	// function.
	ErrNilCommand = errors.New("session: nil command function")
)

// IOError is a read failure from the terminal. It is never returned for a
// clean end of input, which ReadLine reports as io.EOF.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return "session: read: " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FatalError aborts a ReadLine call. The session stays usable.
type FatalError struct {
	Command string // command that returned Fatal, empty for an interrupt
	Err     error
}

func (e *FatalError) Error() string {
	if e.Command == "" {
		return "session: " + e.Err.Error()
	}
	return fmt.Sprintf("session: %s: %v", e.Command, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) Is(target error) bool {
	return target == ErrFatal
}

// CapacityError is returned by Register when the user command registry is
// full.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("session: command registry full (%d commands)", e.Limit)
}
