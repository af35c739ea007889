package session

import (
	"errors"
	"strings"
	"testing"

	"editline/keymap"
	"editline/lineedit"
)

func TestParseBind(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, err := s.Parse([]string{"bind", "^X^A", "ed-move-to-beg"}); n != 0 || err != nil {
		t.Fatalf("bind: %d, %v", n, err)
	}
	seq, _ := keymap.Parse("^X^A")
	if cmd, ok := s.Keymap().Main().Lookup(seq); !ok || cmd != "ed-move-to-beg" {
		t.Errorf("expected ed-move-to-beg, got %q", cmd)
	}

	if n, _ := s.Parse([]string{"bind", "^X^A"}); n != 0 {
		t.Fatal("bind lookup failed")
	}
	if !strings.Contains(out.String(), "-> ed-move-to-beg") {
		t.Errorf("expected binding in output, got %q", out.String())
	}

	out.Reset()
	if n, _ := s.Parse([]string{"bind"}); n != 0 {
		t.Fatal("bind listing failed")
	}
	if !strings.Contains(out.String(), "^X^A") {
		t.Errorf("listing should contain ^X^A, got %q", out.String())
	}

	if n, _ := s.Parse([]string{"bind", "-r", "^X^A"}); n != 0 {
		t.Fatal("bind -r failed")
	}
	if _, ok := s.Keymap().Main().Lookup(seq); ok {
		t.Error("binding should be removed")
	}
}

func TestParseBindErrors(t *testing.T) {
	s, _ := newTestSession(t, "")
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bind", "^A", "no-such-command"}},
		{"bad notation", []string{"bind", `a\`, "ed-insert"}},
		{"unsupported", []string{"bind", "-s", "a", "b"}},
		{"no alternate in emacs", []string{"bind", "-a"}},
		{"too many", []string{"bind", "a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n, err := s.Parse(tt.args); n != -1 || err == nil {
				t.Errorf("expected -1 with error, got %d, %v", n, err)
			}
		})
	}
}

func TestParseBindEditor(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, _ := s.Parse([]string{"bind", "-v"}); n != 0 {
		t.Fatal("bind -v failed")
	}
	if s.Editor() != keymap.Vi {
		t.Errorf("expected vi, got %s", s.Editor())
	}
	if n, _ := s.Parse([]string{"bind", "-e"}); n != 0 || s.Editor() != keymap.Emacs {
		t.Errorf("expected emacs, got %s", s.Editor())
	}
	if n, _ := s.Parse([]string{"bind", "-l"}); n != 0 {
		t.Fatal("bind -l failed")
	}
	if !strings.Contains(out.String(), "ed-insert") {
		t.Errorf("command list should name ed-insert")
	}
}

func TestParseHistory(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, err := s.Parse([]string{"history", "size", "3"}); n != 0 || err != nil {
		t.Fatalf("history size: %d, %v", n, err)
	}
	if s.History().Size() != 3 {
		t.Errorf("expected size 3, got %d", s.History().Size())
	}
	s.History().Enter("echo hello")
	if n, _ := s.Parse([]string{"history", "list"}); n != 0 {
		t.Fatal("history list failed")
	}
	if !strings.Contains(out.String(), "echo hello") {
		t.Errorf("listing should contain the entry, got %q", out.String())
	}
	if n, _ := s.Parse([]string{"history", "unique", "1"}); n != 0 || !s.History().Unique() {
		t.Error("history unique failed")
	}
	if n, _ := s.Parse([]string{"history", "clear"}); n != 0 || s.History().Len() != 0 {
		t.Error("history clear failed")
	}
	if n, _ := s.Parse([]string{"history", "size", "many"}); n != -1 {
		t.Error("expected failure for a non-numeric size")
	}
}

func TestParseHistoryFile(t *testing.T) {
	s, _ := newTestSession(t, "")
	path := t.TempDir() + "/history"
	s.History().Enter("one")
	s.History().Enter("two")
	if n, err := s.Parse([]string{"history", "save", path}); n != 0 || err != nil {
		t.Fatalf("history save: %d, %v", n, err)
	}
	s.History().Clear()
	if n, err := s.Parse([]string{"history", "load", path}); n != 0 || err != nil {
		t.Fatalf("history load: %d, %v", n, err)
	}
	if s.History().Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.History().Len())
	}
}

func TestParseEdit(t *testing.T) {
	s, _ := newTestSession(t, "")
	if n, _ := s.Parse([]string{"edit", "off"}); n != 0 || s.Editing() {
		t.Error("edit off failed")
	}
	if n, _ := s.Parse([]string{"edit", "on"}); n != 0 || !s.Editing() {
		t.Error("edit on failed")
	}
	if n, _ := s.Parse([]string{"edit", "maybe"}); n != -1 {
		t.Error("expected failure for a bad value")
	}
}

func TestParseProgramPrefix(t *testing.T) {
	s, _ := newTestSession(t, "", WithProgram("demo"))
	if n, err := s.Parse([]string{"other:edit", "off"}); n != 0 || err != nil {
		t.Fatalf("mismatched prefix: %d, %v", n, err)
	}
	if !s.Editing() {
		t.Error("a command for another program should be ignored")
	}
	if n, _ := s.Parse([]string{"demo:edit", "off"}); n != 0 {
		t.Fatal("matching prefix failed")
	}
	if s.Editing() {
		t.Error("a command for this program should run")
	}
}

func TestParseErrors(t *testing.T) {
	s, _ := newTestSession(t, "")
	if n, err := s.Parse(nil); n != -1 || err == nil {
		t.Errorf("expected failure for no args, got %d", n)
	}
	if n, err := s.Parse([]string{"frobnicate"}); n != -1 || err == nil {
		t.Errorf("expected failure for unknown command, got %d", n)
	}
	args := make([]string, MaxArgs+1)
	for i := range args {
		args[i] = "bind"
	}
	var oe *lineedit.OverflowError
	if n, err := s.Parse(args); n != -1 || !errors.As(err, &oe) {
		t.Errorf("expected OverflowError, got %d, %v", n, err)
	}
}

func TestParseEchotc(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, err := s.Parse([]string{"echotc", "co"}); n != 0 || err != nil {
		t.Fatalf("echotc: %d, %v", n, err)
	}
	if out.String() != "80\n" {
		t.Errorf("expected %q, got %q", "80\n", out.String())
	}

	out.Reset()
	if n, _ := s.Parse([]string{"echotc", "lines"}); n != 0 || out.String() != "24\n" {
		t.Errorf("expected %q, got %q", "24\n", out.String())
	}

	if n, _ := s.Parse([]string{"echotc", "zz"}); n != -1 {
		t.Error("expected failure for an unknown capability")
	}
	if n, err := s.Parse([]string{"echotc", "-s", "zz"}); n != 0 || err != nil {
		t.Errorf("-s should silence the error, got %d, %v", n, err)
	}
}

func TestParseSettc(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, err := s.Parse([]string{"settc", "co", "100"}); n != 0 || err != nil {
		t.Fatalf("settc: %d, %v", n, err)
	}
	if c, _ := s.Capability("co"); c.Num != 100 {
		t.Errorf("expected 100 columns, got %d", c.Num)
	}
	if n, _ := s.Parse([]string{"settc", "co", "wide"}); n != -1 {
		t.Error("expected failure for a non-numeric value")
	}

	out.Reset()
	if n, _ := s.Parse([]string{"telltc"}); n != 0 {
		t.Fatal("telltc failed")
	}
	if !strings.Contains(out.String(), "100") {
		t.Errorf("telltc should show the new width, got %q", out.String())
	}
}

func TestParseSetty(t *testing.T) {
	s, out := newTestSession(t, "")
	if n, err := s.Parse([]string{"setty", "-d", "-isig"}); n != 0 || err != nil {
		t.Fatalf("setty: %d, %v", n, err)
	}
	if n, _ := s.Parse([]string{"setty", "-d"}); n != 0 {
		t.Fatal("setty listing failed")
	}
	if !strings.Contains(out.String(), "-isig") {
		t.Errorf("listing should contain -isig, got %q", out.String())
	}
}

func TestParseLine(t *testing.T) {
	s, _ := newTestSession(t, "")
	tests := []struct {
		line string
		want int
	}{
		{"# comment", 0},
		{"   ", 0},
		{"history size 7", 0},
		{"nonsense here", -1},
	}
	for _, tt := range tests {
		if n, _ := s.ParseLine(tt.line); n != tt.want {
			t.Errorf("ParseLine(%q) = %d, expected %d", tt.line, n, tt.want)
		}
	}
	if s.History().Size() != 7 {
		t.Errorf("expected size 7, got %d", s.History().Size())
	}
}
