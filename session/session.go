// Package session ties the line editor together: a Session owns the line
// buffer, the history, the key bindings and the command registry, and
// ReadLine runs the read-dispatch-redraw loop over a terminal.
package session

import (
	"io"
	"os"
	"time"

	"editline/history"
	"editline/keymap"
	"editline/lineedit"
	"editline/render"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// MaxArgs is the largest argument list accepted by Parse and SetTTY.
const MaxArgs = 16

// DefaultKeyTimeout is how long a key that may start a longer sequence,
// such as ESC in vi insert mode, waits for the rest of it.
const DefaultKeyTimeout = 100 * time.Millisecond

// Observer is told about every command the engine runs and the status it
// returned.
type Observer func(command string, st Status)

// Session is one line editor on one terminal. It is not safe for
// concurrent use.
type Session struct {
	term    render.Terminal
	display *render.Display
	buf     *lineedit.Buffer
	hist    *history.Store
	keys    *keymap.Keymap
	reg     *Registry
	flags   render.Flags // tty flags when the terminal has none of its own
	log     log15.Logger
	observe Observer

	prompt     render.Prompt
	promptText string
	promptFn   PromptFunc
	promptEsc  rune

	input   []byte // pushed back input, read before the terminal
	seq     []byte // bytes of the key sequence being matched
	readErr error  // read failure hit by a command calling ReadKey
	fatal   error  // cause reported with a Fatal status
	dirty   bool   // the line must be redrawn in full

	arg     int
	argSet  bool
	lastCmd string
	replace bool // vi replace mode

	keyTimeout time.Duration

	state   State
	edit    bool
	signals bool
	prog    string
	closed  bool
}

// Option configures a Session.
type Option func(*Session) error

// WithObserver installs fn to be called after every dispatched command.
func WithObserver(fn Observer) Option {
	return func(s *Session) error {
		s.observe = fn
		return nil
	}
}

// WithCommandLimit sets how many user commands may be registered. 0 means
// no limit.
func WithCommandLimit(n int) Option {
	return func(s *Session) error {
		if n < 0 {
			return errors.Errorf("session: negative command limit %d", n)
		}
		s.reg.limit = n
		return nil
	}
}

// WithLogger sets the session logger.
func WithLogger(l log15.Logger) Option {
	return func(s *Session) error {
		s.log = l
		return nil
	}
}

// WithHistorySize sets the history capacity.
func WithHistorySize(n int) Option {
	return func(s *Session) error {
		return s.hist.SetSize(n)
	}
}

// WithMaxLineLength limits the edit line to n bytes.
func WithMaxLineLength(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return errors.Errorf("session: invalid line length %d", n)
		}
		s.buf = lineedit.NewSize(n)
		return nil
	}
}

// WithKeyTimeout sets how long an ambiguous key sequence waits for more
// input before the shorter binding is taken.
func WithKeyTimeout(d time.Duration) Option {
	return func(s *Session) error {
		if d < 0 {
			return errors.Errorf("session: negative key timeout %s", d)
		}
		s.keyTimeout = d
		return nil
	}
}

// WithProgram sets the program name matched by "prog:" prefixes in Parse.
func WithProgram(name string) Option {
	return func(s *Session) error {
		s.prog = name
		return nil
	}
}

// New creates a session editing on term with the emacs key bindings.
func New(term render.Terminal, opts ...Option) (*Session, error) {
	s := &Session{
		term:  term,
		buf:   lineedit.New(),
		hist:  history.New(),
		keys:  keymap.New(),
		reg:   NewRegistry(MaxUserCommands),
		flags: render.DefaultFlags(),
		log:   log15.New("component", "session"),
		edit:  true,

		keyTimeout: DefaultKeyTimeout,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	var caps *render.Caps
	if c, ok := term.(interface{ Caps() *render.Caps }); ok {
		caps = c.Caps()
	}
	s.display = render.NewDisplay(term, caps)
	s.Resize()
	return s, nil
}

// NewSession creates a session on the process's standard input and
// output. When standard input is not a terminal the session reads whole
// lines without editing.
func NewSession(opts ...Option) (*Session, error) {
	if render.IsTerminal(os.Stdin) && render.IsTerminal(os.Stdout) {
		tty, err := render.NewTTY(os.Stdin, os.Stdout)
		if err == nil {
			return New(tty, opts...)
		}
		log15.Debug("falling back to line mode", "err", err)
	}
	s, err := New(render.NewStream(os.Stdin, os.Stdout), opts...)
	if err != nil {
		return nil, err
	}
	s.edit = false
	return s, nil
}

// Close gives the terminal back and stops signal handling. It may be
// called more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.SetSignal(false)
	if c, ok := s.term.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Buffer returns the line buffer.
func (s *Session) Buffer() *lineedit.Buffer {
	return s.buf
}

// History returns the history store.
func (s *Session) History() *history.Store {
	return s.hist
}

// Keymap returns the key bindings.
func (s *Session) Keymap() *keymap.Keymap {
	return s.keys
}

// Registry returns the command registry.
func (s *Session) Registry() *Registry {
	return s.reg
}

// Logger returns the session logger.
func (s *Session) Logger() log15.Logger {
	return s.log
}

// State returns where the engine is in the current or last ReadLine.
func (s *Session) State() State {
	return s.state
}

// Line returns the edit line and cursor.
func (s *Session) Line() lineedit.Snapshot {
	return s.buf.Snapshot()
}

// InsertText inserts text at the cursor and returns the number of bytes
// inserted.
func (s *Session) InsertText(text string) (int, error) {
	return s.buf.Insert(text)
}

// DeleteChars deletes up to count characters before the cursor.
func (s *Session) DeleteChars(count int) int {
	return s.buf.Delete(count)
}

// Push queues text to be read before any terminal input.
func (s *Session) Push(text string) {
	s.input = append([]byte(text), s.input...)
}

// BindKey binds the key sequence in notation to a command in the main
// keymap.
func (s *Session) BindKey(notation, command string) error {
	seq, err := keymap.Parse(notation)
	if err != nil {
		return err
	}
	if _, ok := s.reg.Lookup(command); !ok {
		return errors.Errorf("session: unknown command %q", command)
	}
	return s.keys.Bind(seq, command)
}

// RegisterCommand adds a user command that can then be bound to keys.
func (s *Session) RegisterCommand(name, help string, fn Func) (Handle, error) {
	h, err := s.reg.Register(name, help, fn)
	if err != nil {
		return h, err
	}
	s.log.Debug("registered command", "name", name, "handle", h)
	return h, nil
}

// SetEditor switches to the "emacs" or "vi" bindings. Any custom bindings
// are dropped.
func (s *Session) SetEditor(mode string) error {
	if err := s.keys.SetMode(mode); err != nil {
		return err
	}
	s.replace = false
	return nil
}

// Editor returns the name of the active bindings.
func (s *Session) Editor() string {
	return s.keys.Mode()
}

// SetEditing turns line editing on or off. With editing off ReadLine
// reads plain lines.
func (s *Session) SetEditing(on bool) {
	s.edit = on
}

// Editing reports whether line editing is on.
func (s *Session) Editing() bool {
	return s.edit
}

// LoadHistory appends the entries of a history file.
func (s *Session) LoadHistory(path string) (int, error) {
	n, err := s.hist.Load(path)
	if err != nil {
		s.log.Error("load history", "path", path, "err", err)
		return 0, err
	}
	s.log.Debug("loaded history", "path", path, "entries", n)
	return n, nil
}

// SaveHistory writes the history to a file.
func (s *Session) SaveHistory(path string) (int, error) {
	n, err := s.hist.Save(path)
	if err != nil {
		s.log.Error("save history", "path", path, "err", err)
		return n, err
	}
	return n, nil
}

// Resize reads the terminal size again.
func (s *Session) Resize() {
	_, cols, err := s.term.Size()
	if err != nil {
		s.log.Debug("terminal size", "err", err)
		return
	}
	s.display.SetWidth(cols)
}

// SetSignal turns handling of interrupt and window-size signals on or
// off, when the terminal supports it.
func (s *Session) SetSignal(on bool) {
	if w, ok := s.term.(interface{ WatchSignals(bool) }); ok {
		w.WatchSignals(on)
	}
	s.signals = on
}

// Signals reports whether signal handling is on.
func (s *Session) Signals() bool {
	return s.signals
}

// Capability looks up a terminal capability by its two-letter name.
func (s *Session) Capability(name string) (render.Capability, error) {
	return s.term.Capability(name)
}

// SetCapability overrides a terminal capability.
func (s *Session) SetCapability(name, value string) error {
	if t, ok := s.term.(interface{ SetCapability(name, value string) error }); ok {
		return t.SetCapability(name, value)
	}
	return errors.New("session: terminal capabilities are read-only")
}

// SetTTY adjusts the terminal modes used while editing (-d) and while the
// application runs (-x), in stty style. With no flags it lists the
// current adjustments.
func (s *Session) SetTTY(args ...string) (string, error) {
	if len(args) > MaxArgs {
		return "", &lineedit.OverflowError{What: "arguments", Len: len(args), Max: MaxArgs}
	}
	return s.ttyFlags().Setty(args)
}

func (s *Session) ttyFlags() *render.Flags {
	if t, ok := s.term.(interface{ Flags() *render.Flags }); ok {
		return t.Flags()
	}
	return &s.flags
}

// Arg returns the numeric argument for the running command, 1 if none was
// typed.
func (s *Session) Arg() int {
	if !s.argSet {
		return 1
	}
	return s.arg
}

// HasArg reports whether a numeric argument was typed.
func (s *Session) HasArg() bool {
	return s.argSet
}

func (s *Session) resetArg() {
	s.arg, s.argSet = 0, false
}

// Write writes p to the terminal. Called from a command during ReadLine
// it prints below the edit line, which is redrawn afterwards.
func (s *Session) Write(p []byte) (int, error) {
	if s.state != Dispatching || !s.edit {
		return s.term.Write(p)
	}
	s.dirty = true
	if err := s.display.Print(s.prompt, s.buf.Text(), string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Beep rings the bell.
func (s *Session) Beep() {
	if err := s.display.Beep(); err != nil {
		s.log.Debug("beep", "err", err)
	}
}

// SetBell sets how Beep alerts the user.
func (s *Session) SetBell(b render.BellStyle) {
	s.display.SetBell(b)
}
