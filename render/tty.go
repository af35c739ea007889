package render

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/muesli/cancelreader"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TTY is a Terminal on a real terminal device.
type TTY struct {
	in, out  *os.File
	fd       int
	original unix.Termios
	raw      bool
	caps     *Caps
	flags    Flags
	log      log15.Logger

	mu     sync.Mutex
	reader cancelreader.CancelReader
	buf    [1]byte

	sigs        chan os.Signal
	done        chan struct{}
	resized     atomic.Bool
	interrupted atomic.Bool
}

// NewTTY creates a terminal controller reading from in and writing to out.
// Capabilities come from $TERM; when no terminfo entry is found the ANSI
// fallback is used.
func NewTTY(in, out *os.File) (*TTY, error) {
	fd := int(in.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, errors.Wrap(err, "render: get terminal attributes")
	}
	t := &TTY{
		in:       in,
		out:      out,
		fd:       fd,
		original: *termios,
		flags:    DefaultFlags(),
		log:      log15.New("component", "tty"),
	}
	caps, err := LoadCaps("")
	if err != nil {
		t.log.Debug("no terminfo entry, using ANSI", "err", err)
	}
	t.caps = caps
	return t, nil
}

// Caps returns the capability table.
func (t *TTY) Caps() *Caps {
	return t.caps
}

// Flags returns the terminal mode flags applied by SetMode.
func (t *TTY) Flags() *Flags {
	return &t.flags
}

// SetMode switches between raw and edit mode.
func (t *TTY) SetMode(name string) error {
	switch name {
	case ModeRaw:
		return t.enterRawMode()
	case ModeEdit:
		return t.restoreMode()
	}
	return &UnknownModeError{Mode: name}
}

// enterRawMode puts the terminal into raw mode for direct character input.
func (t *TTY) enterRawMode() error {
	raw := t.original
	t.flags.Edit.apply(&raw)
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &raw); err != nil {
		return errors.Wrap(err, "render: enter raw mode")
	}
	t.raw = true
	return nil
}

// restoreMode restores the original terminal mode, with the execute-mode
// adjustments applied.
func (t *TTY) restoreMode() error {
	if !t.raw {
		return nil
	}
	cooked := t.original
	t.flags.Exec.apply(&cooked)
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermiosDrain, &cooked); err != nil {
		return errors.Wrap(err, "render: restore terminal mode")
	}
	t.raw = false
	return nil
}

// ReadByte reads one byte. An interrupt signal received while waiting
// cancels the read and returns ErrInterrupted.
func (t *TTY) ReadByte() (byte, error) {
	if t.interrupted.Swap(false) {
		return 0, ErrInterrupted
	}
	t.mu.Lock()
	if t.reader == nil {
		r, err := cancelreader.NewReader(t.in)
		if err != nil {
			t.mu.Unlock()
			return 0, errors.Wrap(err, "render: create reader")
		}
		t.reader = r
	}
	r := t.reader
	t.mu.Unlock()

	for {
		n, err := r.Read(t.buf[:])
		if errors.Is(err, cancelreader.ErrCanceled) {
			t.mu.Lock()
			t.reader.Close()
			t.reader = nil
			t.mu.Unlock()
			t.interrupted.Store(false)
			return 0, ErrInterrupted
		}
		if n == 1 {
			return t.buf[0], nil
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
	}
}

// WaitInput reports whether input is ready to read within d. A failed
// poll reports true so the caller falls back to a blocking read.
func (t *TTY) WaitInput(d time.Duration) bool {
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(d/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		return err != nil || n > 0
	}
}

// Write writes to the terminal output.
func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Capability looks up a terminal capability. co and li report the current
// window size.
func (t *TTY) Capability(name string) (Capability, error) {
	c, err := t.caps.Lookup(name)
	if err != nil {
		return c, err
	}
	if name == "co" || name == "li" {
		if rows, cols, err := t.Size(); err == nil {
			if name == "co" {
				c.Num = cols
			} else {
				c.Num = rows
			}
		}
	}
	return c, nil
}

// SetCapability overrides a capability value.
func (t *TTY) SetCapability(name, value string) error {
	return t.caps.Set(name, value)
}

// Size returns the window size, falling back to the li and co capabilities.
func (t *TTY) Size() (rows, cols int, err error) {
	cols, rows, err = term.GetSize(int(t.out.Fd()))
	if err == nil && cols > 0 && rows > 0 {
		return rows, cols, nil
	}
	rows, cols = t.caps.Num("li"), t.caps.Num("co")
	if rows <= 0 || cols <= 0 {
		return 0, 0, errors.New("render: window size unknown")
	}
	return rows, cols, nil
}

// WatchSignals starts or stops translating SIGWINCH and SIGINT. A resize
// is reported by Resized; an interrupt cancels the pending ReadByte.
func (t *TTY) WatchSignals(on bool) {
	if on == (t.sigs != nil) {
		return
	}
	if !on {
		signal.Stop(t.sigs)
		close(t.done)
		t.sigs, t.done = nil, nil
		return
	}
	t.sigs = make(chan os.Signal, 1)
	t.done = make(chan struct{})
	signal.Notify(t.sigs, syscall.SIGWINCH, syscall.SIGINT)
	go t.watch(t.sigs, t.done)
}

func (t *TTY) watch(sigs <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig := <-sigs:
			switch sig {
			case syscall.SIGWINCH:
				t.resized.Store(true)
			case syscall.SIGINT:
				t.log.Debug("interrupt")
				t.interrupted.Store(true)
				t.mu.Lock()
				if t.reader != nil {
					t.reader.Cancel()
				}
				t.mu.Unlock()
			}
		}
	}
}

// Resized reports whether the window changed size since the last call.
func (t *TTY) Resized() bool {
	return t.resized.Swap(false)
}

// Close restores the terminal and stops signal handling.
func (t *TTY) Close() error {
	t.WatchSignals(false)
	t.mu.Lock()
	if t.reader != nil {
		t.reader.Close()
		t.reader = nil
	}
	t.mu.Unlock()
	return t.restoreMode()
}
