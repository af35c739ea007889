package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"editline/lineedit"
	"editline/render"

	"github.com/google/go-cmp/cmp"
	"github.com/inconshreveable/log15"
)

func quietLogger() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())
	return l
}

func newTestSession(t *testing.T, input string, opts ...Option) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(render.NewStream(strings.NewReader(input), &out), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, &out
}

// errTerm fails every read with err.
type errTerm struct {
	*render.Stream
	err error
}

func (t errTerm) ReadByte() (byte, error) {
	return 0, t.err
}

// waitTerm counts reads and answers WaitInput with ready.
type waitTerm struct {
	*render.Stream
	ready bool
	reads int
	waits int
}

func (t *waitTerm) ReadByte() (byte, error) {
	t.reads++
	return t.Stream.ReadByte()
}

func (t *waitTerm) WaitInput(time.Duration) bool {
	t.waits++
	return t.ready
}

func TestLoneEscapeInViInsert(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		reads int // bytes read when vi-command-mode runs
	}{
		{"no more input", false, 3},
		{"more input", true, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := &waitTerm{Stream: render.NewStream(strings.NewReader("ab\x1b\n"), io.Discard), ready: tt.ready}
			reads := -1
			s, err := New(term, WithLogger(quietLogger()), WithObserver(func(cmd string, _ Status) {
				if cmd == "vi-command-mode" {
					reads = term.reads
				}
			}))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.SetEditor("vi"); err != nil {
				t.Fatal(err)
			}
			line, err := s.ReadLine()
			if err != nil {
				t.Fatal(err)
			}
			if line != "ab" {
				t.Errorf("expected %q, got %q", "ab", line)
			}
			if reads != tt.reads {
				t.Errorf("expected vi-command-mode after %d reads, got %d", tt.reads, reads)
			}
			if term.waits != 1 {
				t.Errorf("expected one wait for ESC, got %d", term.waits)
			}
		})
	}
}

func TestEmacsMetaKeyDoesNotTimeOut(t *testing.T) {
	term := &waitTerm{Stream: render.NewStream(strings.NewReader("foo bar\x1bb\x1bu\n"), io.Discard)}
	s, err := New(term, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	line, err := s.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "foo BAR" {
		t.Errorf("expected %q, got %q", "foo BAR", line)
	}
	if term.waits != 0 {
		t.Errorf("ESC in emacs has no binding of its own, got %d waits", term.waits)
	}
}

func TestRedisplayScenario(t *testing.T) {
	var got []Status
	s, _ := newTestSession(t, "hello\x0c\n", WithObserver(func(_ string, st Status) {
		got = append(got, st)
	}))
	if err := s.BindKey("^L", "ed-redisplay"); err != nil {
		t.Fatal(err)
	}

	line, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hello" {
		t.Errorf("expected line %q, got %q", "hello", line)
	}
	want := []Status{Normal, Normal, Normal, Normal, Normal, Redisplay, NewLine}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if s.History().Len() != 1 {
		t.Errorf("expected 1 history entry, got %d", s.History().Len())
	}
	if s.State() != Accepted {
		t.Errorf("expected state accepted, got %s", s.State())
	}
}

func TestImmediateEOF(t *testing.T) {
	s, _ := newTestSession(t, "")
	line, err := s.ReadLine()
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %q, %v", line, err)
	}
	if s.History().Len() != 0 {
		t.Errorf("history should be unchanged, has %d entries", s.History().Len())
	}
}

func TestEOFDiscardsPartialLine(t *testing.T) {
	s, _ := newTestSession(t, "abc")
	if _, err := s.ReadLine(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if s.History().Len() != 0 {
		t.Error("partial line should not reach the history")
	}
}

func TestReadErrorIsNotEOF(t *testing.T) {
	boom := errors.New("boom")
	s, err := New(errTerm{render.NewStream(strings.NewReader(""), io.Discard), boom}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.ReadLine()
	var ioe *IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("expected *IOError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("IOError should wrap the read error: %v", err)
	}
	if errors.Is(err, io.EOF) {
		t.Error("IOError must not match io.EOF")
	}
	if s.State() != Errored {
		t.Errorf("expected state errored, got %s", s.State())
	}
}

func TestInterruptedRead(t *testing.T) {
	s, err := New(errTerm{render.NewStream(strings.NewReader(""), io.Discard), render.ErrInterrupted}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.ReadLine()
	if !errors.Is(err, ErrFatal) || !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected fatal interrupt, got %v", err)
	}
	if s.State() != Aborted {
		t.Errorf("expected state aborted, got %s", s.State())
	}
}

func TestCtrlCAbortsAndSessionIsReusable(t *testing.T) {
	s, _ := newTestSession(t, "abc\x03x\n")
	_, err := s.ReadLine()
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fe.Command != "ed-tty-sigint" || !errors.Is(err, ErrInterrupted) {
		t.Errorf("unexpected fatal error %+v", fe)
	}

	line, err := s.ReadLine()
	if err != nil || line != "x" {
		t.Errorf("expected %q after abort, got %q, %v", "x", line, err)
	}
}

func TestWhitespaceLineNotInHistory(t *testing.T) {
	s, _ := newTestSession(t, "   \n")
	line, err := s.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "   " {
		t.Errorf("expected the blank line back, got %q", line)
	}
	if s.History().Len() != 0 {
		t.Error("blank line should not be added to history")
	}
}

func TestCommandCapacity(t *testing.T) {
	s, _ := newTestSession(t, "")
	noop := func(*Session, rune) Status { return Normal }

	for i := 0; i < MaxUserCommands; i++ {
		h, err := s.RegisterCommand("cmd"+string(rune('a'+i)), "help", noop)
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if int(h) != i {
			t.Errorf("expected handle %d, got %d", i, h)
		}
	}

	_, err := s.RegisterCommand("one-too-many", "help", noop)
	var ce *CapacityError
	if !errors.As(err, &ce) || ce.Limit != MaxUserCommands {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if s.Registry().Len() != MaxUserCommands {
		t.Errorf("expected %d commands, got %d", MaxUserCommands, s.Registry().Len())
	}
	if c, ok := s.Registry().Command(0); !ok || c.Name != "cmda" {
		t.Errorf("first registration changed: %+v", c)
	}
	if _, ok := s.Registry().Lookup("one-too-many"); ok {
		t.Error("rejected command should not be registered")
	}
}

func TestRegisterErrors(t *testing.T) {
	s, _ := newTestSession(t, "", WithCommandLimit(0))
	if _, err := s.RegisterCommand("nil", "", nil); err != ErrNilCommand {
		t.Errorf("expected ErrNilCommand, got %v", err)
	}
	if _, err := s.RegisterCommand("ed-insert", "", edUnassigned); err == nil {
		t.Error("builtin name should be rejected")
	}
	for i := 0; i < 2*MaxUserCommands; i++ {
		if _, err := s.RegisterCommand("c"+strings.Repeat("x", i), "", edUnassigned); err != nil {
			t.Fatalf("unlimited registry refused command %d: %v", i, err)
		}
	}
}

func TestEmacsEditing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"beginning of line", "hello\x01X\n", "Xhello"},
		{"backspace", "hello\x02\x02\x7f\n", "helo"},
		{"delete word", "foo bar\x1b\x7f\n", "foo "},
		{"kill region", "foo \x00bar\x17\n", "foo "},
		{"kill region from start", "foo bar\x17\n", ""},
		{"kill line", "abc\x01\x0b\n", ""},
		{"yank twice", "abc\x01\x0b\x19\x19\n", "abcabc"},
		{"transpose", "ab\x14\n", "ba"},
		{"quoted insert", "\x16\x01\n", "\x01"},
		{"arrow keys", "abc\x1b[D\x1b[DX\n", "aXbc"},
		{"upper case word", "hello world\x1bb\x1bu\n", "hello WORLD"},
		{"kill whole line", "abc\x15\n", ""},
		{"undo", "abc\x08\x1f\n", "abc"},
		{"numeric argument", "\x1b3x\n", "xxx"},
		{"unbound control key", "a\x07b\n", "ab"},
		{"delete under cursor", "ab\x02\x04\n", "a"},
		{"carriage return", "ok\r", "ok"},
		{"utf-8", "h\xc3\xa9\x02X\n", "hX\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, tt.input)
			line, err := s.ReadLine()
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			if line != tt.want {
				t.Errorf("expected %q, got %q", tt.want, line)
			}
		})
	}
}

func TestCtrlDOnEmptyLine(t *testing.T) {
	s, _ := newTestSession(t, "\x04")
	if _, err := s.ReadLine(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestViEditing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"delete char", "abc\x1bx\n", "ab"},
		{"delete word", "hello world\x1b0dwx\n", "orld"},
		{"change word", "one two three\x1b0wcwTWO\x1b\n", "one TWO three"},
		{"delete line", "foo bar\x1b0dd\n", ""},
		{"yank and paste", "abc\x1b0yyP\n", "abcabc"},
		{"change inside quotes", "say \"hi there\"\x1b0ci\"yo\x1b\n", "say \"yo\""},
		{"replace char", "abc\x1b0rX\n", "Xbc"},
		{"count", "abc\x1b03x\n", ""},
		{"word back and insert", "hello\x1bbiX\x1b\n", "Xhello"},
		{"append at end", "ab\x1bAcd\n", "abcd"},
		{"toggle case", "abc\x1b~\n", "abC"},
		{"delete two words", "a b c\x1b0d2w\n", "c"},
		{"unbound command key", "ab\x1bzx\n", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, tt.input)
			if err := s.SetEditor("vi"); err != nil {
				t.Fatal(err)
			}
			line, err := s.ReadLine()
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			if line != tt.want {
				t.Errorf("expected %q, got %q", tt.want, line)
			}
		})
	}
}

func TestHistoryNavigation(t *testing.T) {
	s, _ := newTestSession(t, "one\ntwo\n\x10\x10\nthree\x10\x0e\n")
	var got []string
	for {
		line, err := s.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, line)
	}
	want := []string{"one", "two", "one", "three"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestHistorySearch(t *testing.T) {
	s, _ := newTestSession(t, "git status\nls\ngi\x1bp\n")
	var last string
	for i := 0; i < 3; i++ {
		line, err := s.ReadLine()
		if err != nil {
			t.Fatal(err)
		}
		last = line
	}
	if last != "git status" {
		t.Errorf("expected %q, got %q", "git status", last)
	}
}

func TestUserCommand(t *testing.T) {
	s, _ := newTestSession(t, "say \t\n")
	_, err := s.RegisterCommand("sample-complete", "insert a greeting", func(s *Session, key rune) Status {
		if key != '\t' {
			return Error
		}
		if _, err := s.InsertText("hello!"); err != nil {
			return Error
		}
		return Refresh
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.BindKey("^I", "sample-complete"); err != nil {
		t.Fatal(err)
	}
	line, err := s.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "say hello!" {
		t.Errorf("expected %q, got %q", "say hello!", line)
	}
}

func TestFatalCommand(t *testing.T) {
	s, _ := newTestSession(t, "a\x07")
	s.RegisterCommand("bail", "", func(*Session, rune) Status { return Fatal })
	if err := s.BindKey("^G", "bail"); err != nil {
		t.Fatal(err)
	}
	_, err := s.ReadLine()
	var fe *FatalError
	if !errors.As(err, &fe) || fe.Command != "bail" || !errors.Is(err, ErrFatal) {
		t.Errorf("expected fatal error from bail, got %v", err)
	}
}

func TestBindKeyErrors(t *testing.T) {
	s, _ := newTestSession(t, "")
	if err := s.BindKey("^X", "no-such-command"); err == nil {
		t.Error("unknown command should fail")
	}
	if err := s.BindKey(`\q`, "ed-insert"); err == nil {
		t.Error("bad notation should fail")
	}
}

func TestPush(t *testing.T) {
	s, _ := newTestSession(t, "")
	s.Push("pushed\n")
	line, err := s.ReadLine()
	if err != nil || line != "pushed" {
		t.Errorf("expected pushed line, got %q, %v", line, err)
	}
}

func TestPromptEscape(t *testing.T) {
	s, out := newTestSession(t, "x\n")
	s.SetPrompt("\x01\x1b[1m\x01>\x01\x1b[0m\x01 ", '\x01')
	if s.Prompt().Width != 2 {
		t.Errorf("expected prompt width 2, got %d", s.Prompt().Width)
	}
	if _, err := s.ReadLine(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "\x1b[1m>\x1b[0m x") {
		t.Errorf("prompt not drawn: %q", out.String())
	}
	if strings.Contains(out.String(), "\x01") {
		t.Errorf("escape character was printed: %q", out.String())
	}
}

func TestPromptFuncCalledOnEveryRedraw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		// one redraw at the start, then one per key before the newline
		{"typing", "ab\n", 3},
		{"redisplay", "a\x12\n", 3},
		{"cursor motion only", "\x01\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, tt.input)
			calls := 0
			s.SetPromptFunc(func(*Session) string {
				calls++
				return "$ "
			}, 0)
			calls = 0
			if _, err := s.ReadLine(); err != nil {
				t.Fatal(err)
			}
			if calls != tt.want {
				t.Errorf("expected %d prompt calls, got %d", tt.want, calls)
			}
		})
	}
}

func TestPromptFuncSeesLine(t *testing.T) {
	s, out := newTestSession(t, "ab\n")
	s.SetPromptFunc(func(s *Session) string {
		return fmt.Sprintf("[%d]> ", s.Buffer().Len())
	}, 0)
	if _, err := s.ReadLine(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[2]> ab") {
		t.Errorf("prompt was not recomputed after typing: %q", out.String())
	}
}

func TestInsertDeleteChars(t *testing.T) {
	s, _ := newTestSession(t, "")
	if n, err := s.InsertText("hello"); err != nil || n != 5 {
		t.Fatalf("InsertText = %d, %v", n, err)
	}
	if n := s.DeleteChars(10); n != 5 {
		t.Errorf("expected 5 bytes deleted, got %d", n)
	}
	if got := s.Line(); got != (lineedit.Snapshot{}) {
		t.Errorf("expected empty line, got %+v", got)
	}
}

func TestPlainMode(t *testing.T) {
	s, out := newTestSession(t, "first\r\n  \nsecond")
	s.SetEditing(false)
	var got []string
	for {
		line, err := s.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, line)
	}
	if diff := cmp.Diff([]string{"first", "  ", "second"}, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if s.History().Len() != 2 {
		t.Errorf("expected 2 history entries, got %d", s.History().Len())
	}
	if out.Len() != 0 {
		t.Errorf("plain mode should not draw: %q", out.String())
	}
}

func TestSetTTY(t *testing.T) {
	s, _ := newTestSession(t, "")
	args := make([]string, MaxArgs+1)
	for i := range args {
		args[i] = "-echo"
	}
	var oe *lineedit.OverflowError
	if _, err := s.SetTTY(args...); !errors.As(err, &oe) {
		t.Errorf("expected OverflowError, got %v", err)
	}
	if _, err := s.SetTTY("-x", "-echo"); err != nil {
		t.Fatal(err)
	}
	listing, err := s.SetTTY("-x")
	if err != nil || listing != "lflag: -echo\n" {
		t.Errorf("unexpected listing %q, %v", listing, err)
	}
}

func TestCapability(t *testing.T) {
	s, _ := newTestSession(t, "")
	c, err := s.Capability("co")
	if err != nil || !c.IsNum || c.Num != 80 {
		t.Errorf("co = %+v, %v", c, err)
	}
	var ice *render.InvalidCapabilityError
	if _, err := s.Capability("zz"); !errors.As(err, &ice) {
		t.Errorf("expected InvalidCapabilityError, got %v", err)
	}
}

func TestClose(t *testing.T) {
	s, _ := newTestSession(t, "")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestStatusValues(t *testing.T) {
	want := map[Status]int{
		Normal: 0, NewLine: 1, EOF: 2, ArgHack: 3, Refresh: 4,
		Cursor: 5, Error: 6, Fatal: 7, Redisplay: 8, RefreshBeep: 9,
	}
	for st, n := range want {
		if int(st) != n {
			t.Errorf("%s = %d, expected %d", st, int(st), n)
		}
	}
	if RefreshBeep.String() != "refresh-beep" {
		t.Errorf("unexpected name %q", RefreshBeep.String())
	}
}
