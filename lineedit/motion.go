package lineedit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordChar returns true if the rune is a "word" character (letter, digit or underscore).
// Used to distinguish between vim's w/b/e (word) and W/B/E (WORD) motions.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// charClass returns the class of a character for word motion purposes.
// 0 = whitespace, 1 = word char, 2 = punctuation/other
func charClass(r rune) int {
	if unicode.IsSpace(r) {
		return 0
	}
	if isWordChar(r) {
		return 1
	}
	return 2
}

func (b *Buffer) runeAt(i int) (rune, int) {
	return utf8.DecodeRune(b.text[i:])
}

func (b *Buffer) runeBefore(i int) (rune, int) {
	return utf8.DecodeLastRune(b.text[:i])
}

// wordBoundaryLeft finds the position of the previous word boundary (for 'b' motion).
func (b *Buffer) wordBoundaryLeft() int {
	i := b.cursor
	// Skip whitespace
	for i > 0 {
		r, n := b.runeBefore(i)
		if charClass(r) != 0 {
			break
		}
		i -= n
	}
	if i == 0 {
		return 0
	}
	r, _ := b.runeBefore(i)
	class := charClass(r)
	for i > 0 {
		r, n := b.runeBefore(i)
		if charClass(r) != class {
			break
		}
		i -= n
	}
	return i
}

// wordBoundaryRight finds the position of the next word boundary (for 'w' motion).
func (b *Buffer) wordBoundaryRight() int {
	i := b.cursor
	if i >= len(b.text) {
		return len(b.text)
	}
	r, _ := b.runeAt(i)
	class := charClass(r)
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if charClass(r) != class {
			break
		}
		i += n
	}
	// Skip whitespace
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if charClass(r) != 0 {
			break
		}
		i += n
	}
	return i
}

// bigWordBoundaryLeft finds the position of the previous WORD boundary (for 'B' motion).
// WORDs are separated only by whitespace.
func (b *Buffer) bigWordBoundaryLeft() int {
	i := b.cursor
	for i > 0 {
		r, n := b.runeBefore(i)
		if !unicode.IsSpace(r) {
			break
		}
		i -= n
	}
	for i > 0 {
		r, n := b.runeBefore(i)
		if unicode.IsSpace(r) {
			break
		}
		i -= n
	}
	return i
}

// bigWordBoundaryRight finds the position of the next WORD boundary (for 'W' motion).
func (b *Buffer) bigWordBoundaryRight() int {
	i := b.cursor
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if unicode.IsSpace(r) {
			break
		}
		i += n
	}
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if !unicode.IsSpace(r) {
			break
		}
		i += n
	}
	return i
}

// lastRuneStart returns the offset of the last rune, or 0 for an empty line.
func (b *Buffer) lastRuneStart() int {
	if len(b.text) == 0 {
		return 0
	}
	_, n := utf8.DecodeLastRune(b.text)
	return len(b.text) - n
}

// wordEndRight finds the position of the end of the current/next word (vim 'e' motion).
func (b *Buffer) wordEndRight(big bool) int {
	class := func(r rune) int {
		if big && !unicode.IsSpace(r) {
			return 1
		}
		return charClass(r)
	}
	n := len(b.text)
	i := b.cursor
	if i < n {
		_, sz := b.runeAt(i)
		i += sz
	}
	for i < n {
		r, sz := b.runeAt(i)
		if class(r) != 0 {
			break
		}
		i += sz
	}
	if i >= n {
		return b.lastRuneStart()
	}
	r, _ := b.runeAt(i)
	c := class(r)
	for {
		_, sz := b.runeAt(i)
		j := i + sz
		if j >= n {
			break
		}
		r2, _ := b.runeAt(j)
		if class(r2) != c {
			break
		}
		i = j
	}
	return i
}

// emacsWordEnd finds the end of the next word: skip non-word runes, then word runes.
func (b *Buffer) emacsWordEnd() int {
	i := b.cursor
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if isWordChar(r) {
			break
		}
		i += n
	}
	for i < len(b.text) {
		r, n := b.runeAt(i)
		if !isWordChar(r) {
			break
		}
		i += n
	}
	return i
}

// WordLeft moves cursor to the previous word boundary (vim 'b' motion, emacs M-b).
func (b *Buffer) WordLeft() {
	b.cursor = b.wordBoundaryLeft()
}

// WordRight moves cursor to the next word boundary (vim 'w' motion).
func (b *Buffer) WordRight() {
	b.cursor = b.wordBoundaryRight()
}

// NextWordEnd moves past the end of the next word (emacs M-f).
func (b *Buffer) NextWordEnd() {
	b.cursor = b.emacsWordEnd()
}

// BigWordLeft moves cursor to the previous WORD boundary (vim 'B' motion).
func (b *Buffer) BigWordLeft() {
	b.cursor = b.bigWordBoundaryLeft()
}

// BigWordRight moves cursor to the next WORD boundary (vim 'W' motion).
func (b *Buffer) BigWordRight() {
	b.cursor = b.bigWordBoundaryRight()
}

// WordEnd moves cursor to the end of the current/next word (vim 'e' motion).
func (b *Buffer) WordEnd() {
	if len(b.text) == 0 {
		return
	}
	b.cursor = b.wordEndRight(false)
}

// BigWordEnd moves cursor to the end of the current/next WORD (vim 'E' motion).
func (b *Buffer) BigWordEnd() {
	if len(b.text) == 0 {
		return
	}
	b.cursor = b.wordEndRight(true)
}

// DeleteWordBackward deletes from cursor to previous word boundary (Ctrl+W, M-DEL).
func (b *Buffer) DeleteWordBackward() {
	b.kill(b.wordBoundaryLeft(), b.cursor)
}

// DeleteWordForward deletes from cursor to the end of the next word (M-d).
func (b *Buffer) DeleteWordForward() {
	b.kill(b.cursor, b.emacsWordEnd())
}

// KillTo deletes between the cursor and pos into the kill buffer and leaves
// the cursor at the start of the removed range.
func (b *Buffer) KillTo(pos int) {
	pos = b.clamp(pos)
	from, to := b.cursor, pos
	if from > to {
		from, to = to, from
	}
	b.kill(from, to)
	b.cursor = from
}

// CopyTo copies between the cursor and pos into the kill buffer.
func (b *Buffer) CopyTo(pos int) {
	pos = b.clamp(pos)
	from, to := b.cursor, pos
	if from > to {
		from, to = to, from
	}
	b.killed = string(b.text[from:to])
}

// Motion names a cursor motion understood by Target.
type Motion int

const (
	MotionWordRight Motion = iota
	MotionWordLeft
	MotionWordEnd
	MotionBigWordRight
	MotionBigWordLeft
	MotionBigWordEnd
	MotionHome
	MotionEnd
	MotionLeft
	MotionRight
)

// Target returns where the cursor would land after applying m count times,
// without moving it. Word-end motions are inclusive, so the returned offset
// is past the last rune of the word.
func (b *Buffer) Target(m Motion, count int) int {
	if count < 1 {
		count = 1
	}
	saved := b.cursor
	defer func() { b.cursor = saved }()
	for i := 0; i < count; i++ {
		switch m {
		case MotionWordRight:
			b.WordRight()
		case MotionWordLeft:
			b.WordLeft()
		case MotionWordEnd, MotionBigWordEnd:
			if m == MotionWordEnd {
				b.WordEnd()
			} else {
				b.BigWordEnd()
			}
			if i == count-1 && b.cursor < len(b.text) {
				_, n := b.runeAt(b.cursor)
				b.cursor += n
			}
		case MotionBigWordRight:
			b.BigWordRight()
		case MotionBigWordLeft:
			b.BigWordLeft()
		case MotionHome:
			b.Home()
		case MotionEnd:
			b.End()
		case MotionLeft:
			b.Left()
		case MotionRight:
			b.Right()
		}
	}
	return b.cursor
}

// caseWord rewrites the text from the cursor to the end of the next word
// and moves the cursor past it.
func (b *Buffer) caseWord(fn func(string) string) bool {
	end := b.emacsWordEnd()
	if end == b.cursor {
		return false
	}
	repl := fn(string(b.text[b.cursor:end]))
	if len(b.text)-(end-b.cursor)+len(repl) > b.max {
		return false
	}
	rest := string(b.text[end:])
	b.text = append(append(b.text[:b.cursor], repl...), rest...)
	b.cursor += len(repl)
	if b.mark > len(b.text) {
		b.mark = len(b.text)
	}
	return true
}

// UpperWord upper-cases from the cursor to the end of the word (M-u).
func (b *Buffer) UpperWord() bool {
	return b.caseWord(strings.ToUpper)
}

// LowerWord lower-cases from the cursor to the end of the word (M-l).
func (b *Buffer) LowerWord() bool {
	return b.caseWord(strings.ToLower)
}

// CapitalizeWord capitalizes the next word (M-c).
func (b *Buffer) CapitalizeWord() bool {
	return b.caseWord(func(s string) string {
		var sb strings.Builder
		first := true
		for _, r := range s {
			switch {
			case first && isWordChar(r):
				sb.WriteRune(unicode.ToUpper(r))
				first = false
			case !first:
				sb.WriteRune(unicode.ToLower(r))
			default:
				sb.WriteRune(r)
			}
		}
		return sb.String()
	})
}

// ToggleCase swaps the case of the rune under the cursor and advances (vi ~).
func (b *Buffer) ToggleCase() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	r, n := b.runeAt(b.cursor)
	t := unicode.ToUpper(r)
	if t == r {
		t = unicode.ToLower(r)
	}
	if utf8.RuneLen(t) != n {
		b.cursor += n
		return true
	}
	utf8.EncodeRune(b.text[b.cursor:], t)
	b.cursor += n
	return true
}
