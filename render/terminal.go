package render

import (
	"github.com/pkg/errors"
)

// Terminal is what the edit engine needs from the terminal.
type Terminal interface {
	// ReadByte blocks for the next input byte. It returns io.EOF at end of
	// input, ErrWouldBlock when a non-blocking source is empty and
	// ErrInterrupted when an interrupt signal cancelled the read.
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	Capability(name string) (Capability, error)
	// SetMode switches between "raw" (character input, no echo) and
	// "edit" (the mode the terminal had before).
	SetMode(name string) error
	Size() (rows, cols int, err error)
}

// Terminal modes.
const (
	ModeRaw  = "raw"
	ModeEdit = "edit"
)

var (
	ErrWouldBlock  = errors.New("render: read would block")
	ErrInterrupted = errors.New("render: interrupted")
)

// UnknownModeError reports a SetMode name that is not a terminal mode.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return "render: unknown terminal mode " + e.Mode
}
