// Package lineedit provides the editable line buffer used by the read-line
// engine: UTF-8 text, a cursor, a mark, a kill buffer and undo history.
//
// The buffer stores bytes but treats them as UTF-8. Cursor and mark always
// sit on rune boundaries, Left and Right step by grapheme cluster, and
// counted deletions count runes.
package lineedit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// DefaultMaxLen is the default maximum line length in bytes.
const DefaultMaxLen = 4096

// OverflowError reports that an operation would exceed a fixed limit.
type OverflowError struct {
	What string // what overflowed: "line", "arguments", ...
	Len  int    // the length that was requested
	Max  int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s too long: %d exceeds maximum of %d", e.What, e.Len, e.Max)
}

// bufferState represents a snapshot of buffer state for undo.
type bufferState struct {
	text   []byte
	cursor int
}

// Snapshot is an immutable view of the buffer.
type Snapshot struct {
	Text   string
	Cursor int // byte offset into Text
}

// Buffer is a single-line text buffer with cursor tracking.
type Buffer struct {
	text        []byte
	cursor      int
	mark        int
	max         int
	killed      string
	history     []bufferState // Undo history stack
	redoHistory []bufferState // Redo history stack
	maxHist     int           // Maximum history size (0 = unlimited)
}

// New creates a new empty Buffer limited to DefaultMaxLen bytes.
func New() *Buffer {
	return NewSize(DefaultMaxLen)
}

// NewSize creates a new empty Buffer limited to max bytes.
func NewSize(max int) *Buffer {
	if max <= 0 {
		max = DefaultMaxLen
	}
	return &Buffer{max: max, maxHist: 100}
}

// Text returns the current text.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Cursor returns the current cursor position as a byte offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Mark returns the mark position.
func (b *Buffer) Mark() int {
	return b.mark
}

// Len returns the length of the text in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Max returns the maximum length of the text in bytes.
func (b *Buffer) Max() int {
	return b.max
}

// Snapshot returns a copy of the text and cursor.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{Text: string(b.text), Cursor: b.cursor}
}

// SetCursor sets the cursor position, clamping to the valid range and
// snapping back to the start of the rune it lands in.
func (b *Buffer) SetCursor(pos int) {
	b.cursor = b.clamp(pos)
}

// MoveCursor moves the cursor by offset runes, clamped to the line.
func (b *Buffer) MoveCursor(offset int) {
	pos := b.cursor
	for ; offset > 0 && pos < len(b.text); offset-- {
		_, n := utf8.DecodeRune(b.text[pos:])
		pos += n
	}
	for ; offset < 0 && pos > 0; offset++ {
		_, n := utf8.DecodeLastRune(b.text[:pos])
		pos -= n
	}
	b.cursor = pos
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos >= len(b.text) {
		return len(b.text)
	}
	for pos > 0 && !utf8.RuneStart(b.text[pos]) {
		pos--
	}
	return pos
}

// Clear resets the buffer to empty state.
func (b *Buffer) Clear() {
	b.text = b.text[:0]
	b.cursor = 0
	b.mark = 0
}

// Set replaces the text and moves cursor to end. Text beyond the maximum
// length is truncated at a rune boundary.
func (b *Buffer) Set(text string) {
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	if len(text) > b.max {
		cut := b.max
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	b.text = append(b.text[:0], text...)
	b.cursor = len(b.text)
	if b.mark > len(b.text) {
		b.mark = len(b.text)
	}
}

// SaveState saves the current state to the undo history.
// Call this before making changes that should be undoable.
func (b *Buffer) SaveState() {
	// Don't save if state is identical to last saved state
	if len(b.history) > 0 {
		last := b.history[len(b.history)-1]
		if last.cursor == b.cursor && string(last.text) == string(b.text) {
			return
		}
	}

	b.history = append(b.history, b.state())

	if b.maxHist > 0 && len(b.history) > b.maxHist {
		b.history = b.history[1:]
	}

	// New change invalidates redo
	b.redoHistory = b.redoHistory[:0]
}

func (b *Buffer) state() bufferState {
	textCopy := make([]byte, len(b.text))
	copy(textCopy, b.text)
	return bufferState{text: textCopy, cursor: b.cursor}
}

// Undo restores the previous state from the undo history.
// Returns true if undo was performed, false if history is empty.
func (b *Buffer) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	b.redoHistory = append(b.redoHistory, b.state())

	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.restore(last)
	return true
}

// Redo restores the next state from the redo history.
// Returns true if redo was performed, false if redo history is empty.
func (b *Buffer) Redo() bool {
	if len(b.redoHistory) == 0 {
		return false
	}
	b.history = append(b.history, b.state())

	last := b.redoHistory[len(b.redoHistory)-1]
	b.redoHistory = b.redoHistory[:len(b.redoHistory)-1]
	b.restore(last)
	return true
}

func (b *Buffer) restore(s bufferState) {
	b.text = s.text
	b.cursor = s.cursor
	if b.mark > len(b.text) {
		b.mark = len(b.text)
	}
}

// ClearHistory clears the undo and redo history.
func (b *Buffer) ClearHistory() {
	b.history = b.history[:0]
	b.redoHistory = b.redoHistory[:0]
}

// SetMaxHistory sets the maximum undo history size (0 = unlimited).
func (b *Buffer) SetMaxHistory(max int) {
	b.maxHist = max
}

// BeforeCursor returns text before the cursor.
func (b *Buffer) BeforeCursor() string {
	return string(b.text[:b.cursor])
}

// AfterCursor returns text from cursor to end.
func (b *Buffer) AfterCursor() string {
	return string(b.text[b.cursor:])
}

// RuneAtCursor returns the rune under the cursor, or utf8.RuneError and
// false at the end of the line.
func (b *Buffer) RuneAtCursor() (rune, bool) {
	if b.cursor >= len(b.text) {
		return utf8.RuneError, false
	}
	r, _ := utf8.DecodeRune(b.text[b.cursor:])
	return r, true
}

// Insert adds text at the cursor position and moves the cursor past it.
// Invalid UTF-8 is replaced by U+FFFD. If the result would exceed the
// maximum length nothing is inserted and an *OverflowError is returned.
func (b *Buffer) Insert(s string) (int, error) {
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	n := len(s)
	if n == 0 {
		return 0, nil
	}
	if len(b.text)+n > b.max {
		return 0, &OverflowError{What: "line", Len: len(b.text) + n, Max: b.max}
	}
	old := len(b.text)
	b.text = append(b.text, s...)
	copy(b.text[b.cursor+n:], b.text[b.cursor:old])
	copy(b.text[b.cursor:], s)
	if b.mark > b.cursor {
		b.mark += n
	}
	b.cursor += n
	return n, nil
}

// InsertRune adds a single rune at the cursor position.
func (b *Buffer) InsertRune(r rune) error {
	_, err := b.Insert(string(r))
	return err
}

// Replace overwrites the rune under the cursor with r, or appends r at the
// end of the line.
func (b *Buffer) Replace(r rune) error {
	if b.cursor >= len(b.text) {
		return b.InsertRune(r)
	}
	_, n := utf8.DecodeRune(b.text[b.cursor:])
	s := string(r)
	if len(b.text)-n+len(s) > b.max {
		return &OverflowError{What: "line", Len: len(b.text) - n + len(s), Max: b.max}
	}
	pos := b.cursor
	b.cut(pos, pos+n)
	b.cursor = pos
	_, err := b.Insert(s)
	return err
}

// Delete removes up to count runes before the cursor and returns the number
// of bytes removed. Counts past the start of the line are clamped.
func (b *Buffer) Delete(count int) int {
	start := b.cursor
	for ; count > 0 && start > 0; count-- {
		_, n := utf8.DecodeLastRune(b.text[:start])
		start -= n
	}
	return b.cut(start, b.cursor)
}

// DeleteForward removes up to count runes starting at the cursor and
// returns the number of bytes removed.
func (b *Buffer) DeleteForward(count int) int {
	end := b.cursor
	for ; count > 0 && end < len(b.text); count-- {
		_, n := utf8.DecodeRune(b.text[end:])
		end += n
	}
	return b.cut(b.cursor, end)
}

// DeleteBackward removes the grapheme before the cursor (backspace).
// Returns true if anything was deleted.
func (b *Buffer) DeleteBackward() bool {
	return b.cut(b.prevBoundary(b.cursor), b.cursor) > 0
}

// DeleteChar removes the grapheme at the cursor (delete).
// Returns true if anything was deleted.
func (b *Buffer) DeleteChar() bool {
	return b.cut(b.cursor, b.nextBoundary(b.cursor)) > 0
}

// cut removes text[from:to], keeping cursor and mark on the same text.
func (b *Buffer) cut(from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(b.text) {
		to = len(b.text)
	}
	if from >= to {
		return 0
	}
	n := to - from
	b.text = append(b.text[:from], b.text[to:]...)
	b.cursor = shift(b.cursor, from, to)
	b.mark = shift(b.mark, from, to)
	return n
}

func shift(pos, from, to int) int {
	switch {
	case pos >= to:
		return pos - (to - from)
	case pos > from:
		return from
	}
	return pos
}

// kill removes text[from:to] and keeps it in the kill buffer.
func (b *Buffer) kill(from, to int) {
	if from > to {
		from, to = to, from
	}
	if from == to {
		return
	}
	b.killed = string(b.text[from:to])
	b.cut(from, to)
}

// Left moves cursor one grapheme left.
// Returns true if cursor moved.
func (b *Buffer) Left() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor = b.prevBoundary(b.cursor)
	return true
}

// Right moves cursor one grapheme right.
// Returns true if cursor moved.
func (b *Buffer) Right() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.cursor = b.nextBoundary(b.cursor)
	return true
}

// Home moves cursor to beginning of line.
func (b *Buffer) Home() {
	b.cursor = 0
}

// End moves cursor to end of line.
func (b *Buffer) End() {
	b.cursor = len(b.text)
}

func (b *Buffer) prevBoundary(pos int) int {
	if pos <= 0 {
		return 0
	}
	last := 0
	g := uniseg.NewGraphemes(string(b.text[:pos]))
	for g.Next() {
		last, _ = g.Positions()
	}
	return last
}

func (b *Buffer) nextBoundary(pos int) int {
	if pos >= len(b.text) {
		return len(b.text)
	}
	g := uniseg.NewGraphemes(string(b.text[pos:]))
	if g.Next() {
		_, to := g.Positions()
		return pos + to
	}
	return len(b.text)
}

// KillToEnd deletes from cursor to end of line (Ctrl+K).
func (b *Buffer) KillToEnd() {
	b.kill(b.cursor, len(b.text))
}

// KillToStart deletes from beginning to cursor (Ctrl+U).
func (b *Buffer) KillToStart() {
	b.kill(0, b.cursor)
	b.cursor = 0
}

// KillLine deletes the whole line into the kill buffer.
func (b *Buffer) KillLine() {
	b.kill(0, len(b.text))
	b.cursor = 0
}

// Transpose swaps the character before cursor with the one at cursor (Ctrl+T).
// If at end, swaps the last two characters.
func (b *Buffer) Transpose() bool {
	pos := b.cursor
	if pos == 0 || utf8.RuneCount(b.text) < 2 {
		return false
	}
	if pos == len(b.text) {
		_, n := utf8.DecodeLastRune(b.text)
		pos -= n // At end, transpose last two chars
	}
	r1, n1 := utf8.DecodeLastRune(b.text[:pos])
	r2, n2 := utf8.DecodeRune(b.text[pos:])
	start := pos - n1
	swapped := string(r2) + string(r1)
	copy(b.text[start:start+n1+n2], swapped)
	b.cursor = start + n1 + n2
	return true
}

// Killed returns the contents of the kill buffer.
func (b *Buffer) Killed() string {
	return b.killed
}

// Yank inserts the kill buffer at the cursor.
func (b *Buffer) Yank() error {
	if b.killed == "" {
		return nil
	}
	b.mark = b.cursor
	_, err := b.Insert(b.killed)
	return err
}

// SetMark sets the mark at the cursor.
func (b *Buffer) SetMark() {
	b.mark = b.cursor
}

// ExchangeMark swaps cursor and mark.
func (b *Buffer) ExchangeMark() {
	b.cursor, b.mark = b.clamp(b.mark), b.cursor
}

// KillRegion deletes the text between mark and cursor into the kill buffer.
func (b *Buffer) KillRegion() {
	b.kill(b.clamp(b.mark), b.cursor)
}

// CopyRegion copies the text between mark and cursor into the kill buffer.
func (b *Buffer) CopyRegion() {
	from, to := b.clamp(b.mark), b.cursor
	if from > to {
		from, to = to, from
	}
	b.killed = string(b.text[from:to])
}
