// Package keymap maps key sequences to editor command names.
//
// A Table holds the bindings for one input mode. A Matcher consumes input
// one byte at a time and reports when the bytes seen so far resolve to a
// binding. A Keymap groups the tables of an editor ("emacs" or "vi") and
// swaps them wholesale when the editor changes.
package keymap

import (
	"sort"

	"github.com/pkg/errors"
)

// Binding is one entry of a Table.
type Binding struct {
	Seq     string // raw bytes
	Command string
}

// Table maps raw key sequences to command names.
type Table struct {
	name     string
	bindings map[string]string
	prefixes map[string]int // proper prefix -> number of bindings extending it
}

// NewTable creates an empty table.
func NewTable(name string) *Table {
	return &Table{
		name:     name,
		bindings: make(map[string]string),
		prefixes: make(map[string]int),
	}
}

// Name returns the table name ("emacs", "vi-insert", "vi-command").
func (t *Table) Name() string {
	return t.name
}

// Bind binds seq to command, replacing any binding for exactly seq.
func (t *Table) Bind(seq, command string) error {
	if seq == "" {
		return errors.New("keymap: empty key sequence")
	}
	if command == "" {
		return errors.Errorf("keymap: empty command for %s", Format(seq))
	}
	if _, ok := t.bindings[seq]; !ok {
		for i := 1; i < len(seq); i++ {
			t.prefixes[seq[:i]]++
		}
	}
	t.bindings[seq] = command
	return nil
}

// Unbind removes the binding for seq. It reports whether one existed.
func (t *Table) Unbind(seq string) bool {
	if _, ok := t.bindings[seq]; !ok {
		return false
	}
	delete(t.bindings, seq)
	for i := 1; i < len(seq); i++ {
		p := seq[:i]
		if t.prefixes[p]--; t.prefixes[p] <= 0 {
			delete(t.prefixes, p)
		}
	}
	return true
}

// Lookup returns the command bound to exactly seq.
func (t *Table) Lookup(seq string) (string, bool) {
	cmd, ok := t.bindings[seq]
	return cmd, ok
}

// IsPrefix reports whether seq is a proper prefix of some binding.
func (t *Table) IsPrefix(seq string) bool {
	return t.prefixes[seq] > 0
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	return len(t.bindings)
}

// Bindings returns all bindings sorted by sequence.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for seq, cmd := range t.bindings {
		out = append(out, Binding{Seq: seq, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Result is the outcome of feeding one byte to a Matcher.
type Result int

const (
	// NoMatch means the pending bytes match no binding. They are returned
	// to the caller and the matcher is reset.
	NoMatch Result = iota
	// Partial means more bytes are needed.
	Partial
	// Resolved means a binding was matched.
	Resolved
)

func (r Result) String() string {
	switch r {
	case Partial:
		return "partial"
	case Resolved:
		return "resolved"
	}
	return "no-match"
}

// Matcher resolves a byte stream against a Table incrementally.
//
// When a complete binding is also the prefix of a longer one (ESC in vi
// insert mode, for example) the matcher keeps reading. If the longer match
// then fails, the shorter binding resolves and the bytes after it are
// handed back for re-reading.
type Matcher struct {
	table    *Table
	pending  []byte
	fallback string // command bound to pending[:fallbackLen]
	fbLen    int
}

// NewMatcher creates a matcher over t.
func NewMatcher(t *Table) *Matcher {
	return &Matcher{table: t}
}

// SetTable switches the table and discards pending input.
func (m *Matcher) SetTable(t *Table) {
	m.table = t
	m.Reset()
}

// Table returns the current table.
func (m *Matcher) Table() *Table {
	return m.table
}

// Reset discards pending input.
func (m *Matcher) Reset() {
	m.pending = m.pending[:0]
	m.fallback = ""
	m.fbLen = 0
}

// Pending returns the bytes consumed by an unfinished match.
func (m *Matcher) Pending() []byte {
	return m.pending
}

// Feed consumes one byte.
//
// On Partial the returned command and bytes are empty. On Resolved, cmd is
// the bound command and rest holds bytes that were read ahead but not
// consumed by it; the caller must feed them again. On NoMatch, rest holds
// every byte consumed since the last reset.
func (m *Matcher) Feed(b byte) (res Result, cmd string, rest []byte) {
	m.pending = append(m.pending, b)
	seq := string(m.pending)

	bound, exact := m.table.Lookup(seq)
	if m.table.IsPrefix(seq) {
		if exact {
			m.fallback, m.fbLen = bound, len(m.pending)
		}
		return Partial, "", nil
	}
	if exact {
		m.Reset()
		return Resolved, bound, nil
	}
	if m.fbLen > 0 {
		cmd = m.fallback
		rest = append([]byte(nil), m.pending[m.fbLen:]...)
		m.Reset()
		return Resolved, cmd, rest
	}
	rest = append([]byte(nil), m.pending...)
	m.Reset()
	return NoMatch, "", rest
}

// Ambiguous reports whether the pending bytes begin with a complete
// binding, so that Flush would resolve it.
func (m *Matcher) Ambiguous() bool {
	return m.fbLen > 0
}

// Flush ends the pending match without waiting for more bytes. The
// shortest complete binding among the pending bytes resolves, with the
// bytes after it returned in rest; otherwise every pending byte is
// returned with NoMatch.
func (m *Matcher) Flush() (res Result, cmd string, rest []byte) {
	if len(m.pending) == 0 {
		return NoMatch, "", nil
	}
	if m.fbLen > 0 {
		cmd = m.fallback
		rest = append([]byte(nil), m.pending[m.fbLen:]...)
		m.Reset()
		return Resolved, cmd, rest
	}
	rest = append([]byte(nil), m.pending...)
	m.Reset()
	return NoMatch, "", rest
}

// Editor names.
const (
	Emacs = "emacs"
	Vi    = "vi"
)

// Keymap holds the tables of the active editor and the matcher over the
// table currently receiving input.
type Keymap struct {
	mode    string
	main    *Table // emacs, or vi insert
	alt     *Table // vi command; nil in emacs
	command bool   // alt is active
	matcher *Matcher
}

// New returns a keymap with the emacs defaults.
func New() *Keymap {
	k := &Keymap{}
	k.SetMode(Emacs)
	return k
}

// SetMode replaces every table with the defaults of the named editor.
// Bindings added since the last swap are discarded.
func (k *Keymap) SetMode(name string) error {
	switch name {
	case Emacs:
		k.main, k.alt = EmacsTable(), nil
	case Vi:
		k.main, k.alt = ViInsertTable(), ViCommandTable()
	default:
		return errors.Errorf("keymap: unknown editor %q", name)
	}
	k.mode = name
	k.command = false
	if k.matcher == nil {
		k.matcher = NewMatcher(k.main)
	} else {
		k.matcher.SetTable(k.main)
	}
	return nil
}

// Mode returns the editor name.
func (k *Keymap) Mode() string {
	return k.mode
}

// Main returns the primary table: emacs, or vi insert.
func (k *Keymap) Main() *Table {
	return k.main
}

// Alternate returns the vi command table, or nil in emacs mode.
func (k *Keymap) Alternate() *Table {
	return k.alt
}

// Active returns the table receiving input.
func (k *Keymap) Active() *Table {
	return k.matcher.Table()
}

// SetCommandMode switches between the vi insert and command tables.
// It is a no-op in emacs mode.
func (k *Keymap) SetCommandMode(on bool) {
	if k.alt == nil {
		return
	}
	k.command = on
	if on {
		k.matcher.SetTable(k.alt)
	} else {
		k.matcher.SetTable(k.main)
	}
}

// InCommandMode reports whether the vi command table is active.
func (k *Keymap) InCommandMode() bool {
	return k.command
}

// Bind binds seq in the primary table.
func (k *Keymap) Bind(seq, command string) error {
	return k.main.Bind(seq, command)
}

// BindAlternate binds seq in the vi command table.
func (k *Keymap) BindAlternate(seq, command string) error {
	if k.alt == nil {
		return errors.Errorf("keymap: %s has no alternate keymap", k.mode)
	}
	return k.alt.Bind(seq, command)
}

// Feed feeds one byte to the active matcher.
func (k *Keymap) Feed(b byte) (Result, string, []byte) {
	return k.matcher.Feed(b)
}

// Reset discards pending input.
func (k *Keymap) Reset() {
	k.matcher.Reset()
}

// Ambiguous reports whether the active matcher holds a complete binding
// that could still grow into a longer one.
func (k *Keymap) Ambiguous() bool {
	return k.matcher.Ambiguous()
}

// Flush resolves the active matcher's pending bytes without more input.
func (k *Keymap) Flush() (Result, string, []byte) {
	return k.matcher.Flush()
}
