package render

import (
	"bufio"
	"io"
)

// Stream is a Terminal over a plain reader and writer: a pipe, a file or a
// scripted test input. Mode changes are accepted and ignored.
type Stream struct {
	r          *bufio.Reader
	w          io.Writer
	caps       *Caps
	rows, cols int
}

// NewStream creates a Stream with ANSI capabilities and an 80x24 size.
func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{r: bufio.NewReader(r), w: w, caps: ANSICaps(), rows: 24, cols: 80}
}

// ReadByte reads the next input byte.
func (s *Stream) ReadByte() (byte, error) {
	return s.r.ReadByte()
}

// Write writes to the output.
func (s *Stream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Capability looks up a capability.
func (s *Stream) Capability(name string) (Capability, error) {
	c, err := s.caps.Lookup(name)
	if err != nil {
		return c, err
	}
	switch name {
	case "co":
		c.Num = s.cols
	case "li":
		c.Num = s.rows
	}
	return c, nil
}

// SetCapability overrides a capability value. Setting co or li resizes
// the stream.
func (s *Stream) SetCapability(name, value string) error {
	if err := s.caps.Set(name, value); err != nil {
		return err
	}
	switch name {
	case "co":
		s.cols = s.caps.Num("co")
	case "li":
		s.rows = s.caps.Num("li")
	}
	return nil
}

// Caps returns the capability table.
func (s *Stream) Caps() *Caps {
	return s.caps
}

// SetMode validates the mode name.
func (s *Stream) SetMode(name string) error {
	if name != ModeRaw && name != ModeEdit {
		return &UnknownModeError{Mode: name}
	}
	return nil
}

// SetSize sets the size reported by Size.
func (s *Stream) SetSize(rows, cols int) {
	s.rows, s.cols = rows, cols
}

// Size returns the configured size.
func (s *Stream) Size() (rows, cols int, err error) {
	return s.rows, s.cols, nil
}
