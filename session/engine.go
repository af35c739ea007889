package session

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"editline/keymap"
	"editline/render"

	"github.com/pkg/errors"
)

// ReadLine reads one line from the user and returns it without the line
// terminator. Accepted lines with visible text are added to the history.
//
// At the end of input ReadLine returns io.EOF. A failing read returns an
// *IOError, and a command returning Fatal or an interrupt returns a
// *FatalError; the session can be used again afterwards.
func (s *Session) ReadLine() (string, error) {
	if !s.edit {
		return s.readPlain()
	}
	if err := s.term.SetMode(render.ModeRaw); err != nil {
		s.log.Error("enter raw mode", "err", err)
		return s.readPlain()
	}
	defer func() {
		if err := s.term.SetMode(render.ModeEdit); err != nil {
			s.log.Error("restore terminal mode", "err", err)
		}
	}()

	if err := s.begin(); err != nil {
		s.state = Errored
		return "", &IOError{Err: err}
	}
	for {
		s.state = ReadingKey
		b, err := s.readByte()
		if err != nil {
			return s.readFailed(err)
		}
		s.state = Dispatching
		cmd, st, err := s.dispatch(b)
		if err != nil {
			return s.readFailed(err)
		}
		if cmd == "" {
			continue
		}
		if line, done, err := s.apply(cmd, st); done {
			return line, err
		}
	}
}

func (s *Session) begin() error {
	s.buf.Clear()
	s.buf.ClearHistory()
	s.keys.SetCommandMode(false)
	s.keys.Reset()
	s.hist.Reset()
	s.seq = s.seq[:0]
	s.readErr, s.fatal = nil, nil
	s.replace = false
	s.lastCmd = ""
	s.resetArg()

	s.display.Reset()
	s.checkResize()
	return s.refresh()
}

// readPlain reads up to a newline without editing or redrawing.
func (s *Session) readPlain() (string, error) {
	s.state = ReadingKey
	var line []byte
	for {
		b, err := s.readByte()
		if err == io.EOF && len(line) > 0 {
			break
		}
		if err != nil {
			return "", s.readError(err)
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
	}
	text := strings.TrimSuffix(string(line), "\r")
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	s.hist.Enter(text)
	s.state = Accepted
	return text, nil
}

func (s *Session) readByte() (byte, error) {
	if len(s.input) > 0 {
		b := s.input[0]
		s.input = s.input[1:]
		return b, nil
	}
	return s.term.ReadByte()
}

// inputReady reports whether another byte follows soon enough to belong
// to the same key sequence. Terminals that cannot tell are always waited
// on.
func (s *Session) inputReady() bool {
	if len(s.input) > 0 {
		return true
	}
	if w, ok := s.term.(interface{ WaitInput(time.Duration) bool }); ok {
		return w.WaitInput(s.keyTimeout)
	}
	return true
}

func (s *Session) unread(p []byte) {
	s.input = append(append([]byte(nil), p...), s.input...)
}

// ReadKey reads the key after the one that invoked a command, for
// commands that take a character argument. A multi-byte UTF-8 character
// is returned as one rune.
func (s *Session) ReadKey() (rune, error) {
	prev := s.state
	s.state = ReadingKey
	defer func() { s.state = prev }()

	b, err := s.readByte()
	if err == nil {
		var r rune
		if r, err = s.completeRune(b); err == nil {
			return r, nil
		}
	}
	s.readErr = err
	return utf8.RuneError, err
}

// completeRune reads the continuation bytes of a UTF-8 sequence starting
// with lead.
func (s *Session) completeRune(lead byte) (rune, error) {
	if lead < utf8.RuneSelf {
		return rune(lead), nil
	}
	n := 1
	switch {
	case lead&0xe0 == 0xc0:
		n = 2
	case lead&0xf0 == 0xe0:
		n = 3
	case lead&0xf8 == 0xf0:
		n = 4
	}
	p := []byte{lead}
	for len(p) < n {
		b, err := s.readByte()
		if err != nil {
			return utf8.RuneError, err
		}
		if b&0xc0 != 0x80 {
			s.unread([]byte{b})
			break
		}
		p = append(p, b)
	}
	r, _ := utf8.DecodeRune(p)
	return r, nil
}

// dispatch feeds one byte to the key bindings and runs the command it
// completes. An empty command means more bytes are needed.
func (s *Session) dispatch(b byte) (string, Status, error) {
	s.seq = append(s.seq, b)
	res, cmd, rest := s.keys.Feed(b)
	if res == keymap.Partial && s.keys.Ambiguous() && !s.inputReady() {
		res, cmd, rest = s.keys.Flush()
	}
	switch res {
	case keymap.Partial:
		return "", Normal, nil
	case keymap.Resolved:
		seq := s.seq[:len(s.seq)-len(rest)]
		key := rune(seq[len(seq)-1])
		s.seq = s.seq[:0]
		if len(rest) > 0 {
			s.unread(rest)
		}
		return cmd, s.run(cmd, key), nil
	}

	s.seq = s.seq[:0]
	if len(rest) > 1 {
		s.log.Debug("unbound key sequence", "seq", keymap.Format(string(rest)))
		return "ed-unassigned", s.run("ed-unassigned", rune(rest[0])), nil
	}
	c := rest[0]
	if c < 0x20 || c == 0x7f || s.keys.InCommandMode() {
		return "ed-unassigned", s.run("ed-unassigned", rune(c)), nil
	}
	r, err := s.completeRune(c)
	if err != nil {
		return "", Normal, err
	}
	return "ed-insert", s.run("ed-insert", r), nil
}

// run invokes a command by name and reports it to the observer.
func (s *Session) run(name string, key rune) Status {
	var st Status
	c, ok := s.reg.Lookup(name)
	if !ok {
		s.log.Error("key bound to unknown command", "cmd", name)
		st = Error
	} else {
		if c.edits && !(name == "ed-insert" && s.lastCmd == name) {
			s.buf.SaveState()
		}
		st = c.Fn(s, key)
	}
	if st != ArgHack {
		s.resetArg()
	}
	s.lastCmd = name
	s.log.Debug("dispatch", "cmd", name, "key", keymap.Format(string(key)), "status", st)
	if s.observe != nil {
		s.observe(name, st)
	}
	return st
}

// apply carries out the status a command returned. done is set when
// ReadLine should return.
func (s *Session) apply(cmd string, st Status) (line string, done bool, err error) {
	if s.readErr != nil {
		rerr := s.readErr
		s.readErr = nil
		line, err = s.readFailed(rerr)
		return line, true, err
	}
	s.checkResize()

	switch st {
	case Normal, Refresh:
		err = s.refresh()
	case Cursor:
		if s.dirty {
			err = s.refresh()
		} else {
			err = s.display.MoveCursor(s.prompt, s.buf.Text(), s.buf.Cursor())
		}
	case Redisplay:
		err = s.refresh()
	case RefreshBeep:
		err = s.refresh()
		s.Beep()
	case ArgHack:
	case NewLine:
		return s.accept(), true, nil
	case EOF:
		s.finish()
		s.state = Idle
		return "", true, io.EOF
	case Fatal:
		s.finish()
		s.state = Aborted
		ferr := s.fatal
		if ferr == nil {
			ferr = ErrFatal
		}
		s.fatal = nil
		return "", true, &FatalError{Command: cmd, Err: ferr}
	default:
		// Error, and anything unknown.
		if s.dirty {
			err = s.refresh()
		}
		s.Beep()
	}
	if err != nil {
		s.state = Errored
		return "", true, &IOError{Err: errors.Wrap(err, "redraw")}
	}
	return "", false, nil
}

func (s *Session) accept() string {
	line := s.buf.Text()
	s.finish()
	if s.hist.Enter(line) {
		s.log.Debug("history entry", "len", len(line))
	}
	s.state = Accepted
	return line
}

// refresh redraws the prompt and line, asking the prompt function for
// the prompt again first.
func (s *Session) refresh() error {
	s.dirty = false
	s.expandPrompt()
	return s.display.Refresh(s.prompt, s.buf.Text(), s.buf.Cursor())
}

func (s *Session) finish() {
	if err := s.display.Finish(s.prompt, s.buf.Text()); err != nil {
		s.log.Debug("finish line", "err", err)
	}
}

func (s *Session) checkResize() {
	if r, ok := s.term.(interface{ Resized() bool }); ok && r.Resized() {
		s.Resize()
		s.dirty = true
	}
}

func (s *Session) readFailed(err error) (string, error) {
	s.finish()
	return "", s.readError(err)
}

// readError maps a terminal read failure to what ReadLine returns.
func (s *Session) readError(err error) error {
	switch {
	case err == io.EOF:
		s.state = Idle
		return io.EOF
	case errors.Is(err, render.ErrInterrupted):
		s.state = Aborted
		return &FatalError{Err: ErrInterrupted}
	}
	s.state = Errored
	return &IOError{Err: err}
}
