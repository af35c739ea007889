package lineedit

import (
	"unicode"
	"unicode/utf8"
)

// WordObject returns the byte range of the word text object around the
// cursor. inner=true: just the word, inner=false: word + surrounding space.
func (b *Buffer) WordObject(inner bool) (start, end int, found bool) {
	text := b.text
	if len(text) == 0 {
		return 0, 0, false
	}
	cursor := b.cursor
	if cursor >= len(text) {
		cursor = b.lastRuneStart()
	}

	isSpace := func(i int) bool {
		r, _ := utf8.DecodeRune(text[i:])
		return unicode.IsSpace(r)
	}
	spaceBefore := func(i int) bool {
		r, _ := utf8.DecodeLastRune(text[:i])
		return unicode.IsSpace(r)
	}
	back := func(i int) int {
		_, n := utf8.DecodeLastRune(text[:i])
		return i - n
	}
	fwd := func(i int) int {
		_, n := utf8.DecodeRune(text[i:])
		return i + n
	}

	start, end = cursor, cursor
	if isSpace(cursor) {
		// Cursor on whitespace - select the whitespace region
		for start > 0 && spaceBefore(start) {
			start = back(start)
		}
		for end < len(text) && isSpace(end) {
			end = fwd(end)
		}
		if !inner {
			// "a whitespace" - include adjacent word, prefer the one after
			if end < len(text) {
				for end < len(text) && !isSpace(end) {
					end = fwd(end)
				}
			} else if start > 0 {
				for start > 0 && !spaceBefore(start) {
					start = back(start)
				}
			}
		}
		return start, end, true
	}

	for start > 0 && !spaceBefore(start) {
		start = back(start)
	}
	for end < len(text) && !isSpace(end) {
		end = fwd(end)
	}
	if !inner {
		// "a word" - include trailing space (or leading if at end)
		if end < len(text) && isSpace(end) {
			for end < len(text) && isSpace(end) {
				end = fwd(end)
			}
		} else if start > 0 && spaceBefore(start) {
			for start > 0 && spaceBefore(start) {
				start = back(start)
			}
		}
	}
	return start, end, true
}

// QuoteObject returns the byte range of the quoted string text object
// around (or after) the cursor. inner=true: just the contents,
// inner=false: include the quotes.
func (b *Buffer) QuoteObject(quote byte, inner bool) (start, end int, found bool) {
	var quotes []int
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == quote {
			quotes = append(quotes, i)
		}
	}
	if len(quotes) < 2 {
		return 0, 0, false
	}

	pick := func(qStart, qEnd int) (int, int, bool) {
		if inner {
			return qStart + 1, qEnd, true
		}
		return qStart, qEnd + 1, true
	}

	// Pairs are (0,1), (2,3), ...: first one containing the cursor wins
	for i := 0; i+1 < len(quotes); i += 2 {
		if b.cursor >= quotes[i] && b.cursor <= quotes[i+1] {
			return pick(quotes[i], quotes[i+1])
		}
	}
	// Otherwise the next pair after the cursor
	for i := 0; i+1 < len(quotes); i += 2 {
		if b.cursor < quotes[i] {
			return pick(quotes[i], quotes[i+1])
		}
	}
	// Cursor is after all pairs - use last complete pair
	last := len(quotes) - len(quotes)%2
	return pick(quotes[last-2], quotes[last-1])
}
