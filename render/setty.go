package render

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// termios flag words.
const (
	iflag = iota
	oflag
	cflag
	lflag
)

var wordNames = [...]string{"iflag", "oflag", "cflag", "lflag"}

type ttyFlag struct {
	word int
	bit  tcflag
}

var ttyFlags = map[string]ttyFlag{
	"brkint": {iflag, unix.BRKINT},
	"icrnl":  {iflag, unix.ICRNL},
	"ignbrk": {iflag, unix.IGNBRK},
	"igncr":  {iflag, unix.IGNCR},
	"inlcr":  {iflag, unix.INLCR},
	"inpck":  {iflag, unix.INPCK},
	"istrip": {iflag, unix.ISTRIP},
	"ixoff":  {iflag, unix.IXOFF},
	"ixon":   {iflag, unix.IXON},
	"onlcr":  {oflag, unix.ONLCR},
	"opost":  {oflag, unix.OPOST},
	"cs8":    {cflag, unix.CS8},
	"parenb": {cflag, unix.PARENB},
	"echo":   {lflag, unix.ECHO},
	"echoe":  {lflag, unix.ECHOE},
	"echok":  {lflag, unix.ECHOK},
	"echonl": {lflag, unix.ECHONL},
	"icanon": {lflag, unix.ICANON},
	"iexten": {lflag, unix.IEXTEN},
	"isig":   {lflag, unix.ISIG},
}

// Mode is a set of termios flags to force on and off.
type Mode struct {
	set, clear [4]tcflag
}

func (m *Mode) apply(t *unix.Termios) {
	words := [4]*tcflag{&t.Iflag, &t.Oflag, &t.Cflag, &t.Lflag}
	for i, w := range words {
		*w = (*w | m.set[i]) &^ m.clear[i]
	}
}

func (m *Mode) change(name string, on bool) error {
	f, ok := ttyFlags[name]
	if !ok {
		return errors.Errorf("render: unknown tty flag %q", name)
	}
	if on {
		m.set[f.word] |= f.bit
		m.clear[f.word] &^= f.bit
	} else {
		m.clear[f.word] |= f.bit
		m.set[f.word] &^= f.bit
	}
	return nil
}

func (m *Mode) forget(name string) error {
	f, ok := ttyFlags[name]
	if !ok {
		return errors.Errorf("render: unknown tty flag %q", name)
	}
	m.set[f.word] &^= f.bit
	m.clear[f.word] &^= f.bit
	return nil
}

// String lists the forced flags by word, "+flag" for set and "-flag" for
// cleared.
func (m *Mode) String() string {
	names := make([]string, 0, len(ttyFlags))
	for n := range ttyFlags {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	for w, wn := range wordNames {
		var parts []string
		for _, n := range names {
			f := ttyFlags[n]
			if f.word != w {
				continue
			}
			switch {
			case m.set[w]&f.bit == f.bit:
				parts = append(parts, "+"+n)
			case m.clear[w]&f.bit == f.bit:
				parts = append(parts, "-"+n)
			}
		}
		if len(parts) > 0 {
			sb.WriteString(wn + ": " + strings.Join(parts, " ") + "\n")
		}
	}
	return sb.String()
}

// Flags holds the adjustments made to the saved terminal mode when the
// editor enters raw mode (Edit) and when it gives the terminal back (Exec).
type Flags struct {
	Edit Mode
	Exec Mode
}

// DefaultFlags returns the raw-mode adjustments used for line editing.
func DefaultFlags() Flags {
	var f Flags
	for _, n := range []string{"brkint", "icrnl", "inpck", "istrip", "ixon", "opost", "echo", "icanon", "iexten", "isig"} {
		f.Edit.change(n, false)
	}
	f.Edit.change("cs8", true)
	return f
}

// Setty applies editrc setty arguments: -d selects the edit mode (the
// default), -x the execute mode; +flag forces a flag on, -flag forces it
// off and a bare flag name drops any forcing. With no flag arguments the
// selected mode is listed instead.
func (f *Flags) Setty(args []string) (string, error) {
	m := &f.Edit
	changed := false
	for _, a := range args {
		switch {
		case a == "-d":
			m = &f.Edit
		case a == "-x":
			m = &f.Exec
		case a == "-a":
			// list regardless of other arguments
		case a == "-q":
			return "", errors.New("render: quote mode is not supported")
		case strings.HasPrefix(a, "+"):
			if err := m.change(a[1:], true); err != nil {
				return "", err
			}
			changed = true
		case strings.HasPrefix(a, "-"):
			if err := m.change(a[1:], false); err != nil {
				return "", err
			}
			changed = true
		default:
			if err := m.forget(a); err != nil {
				return "", err
			}
			changed = true
		}
	}
	if changed {
		return "", nil
	}
	return m.String(), nil
}
