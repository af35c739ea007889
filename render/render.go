// Package render is the terminal layer of the line editor: raw mode and
// byte input, capability lookup, and redrawing the prompt and edit line.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in terminal cells.
// ANSI escape sequences take no space.
func StringWidth(s string) int {
	if strings.IndexByte(s, '\033') >= 0 {
		s = StripANSI(s)
	}
	return runewidth.StringWidth(s)
}

// StripANSI removes ANSI escape sequences from a string.
func StripANSI(s string) string {
	var sb strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '~' {
				inEscape = false
			}
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

// Visual returns s as it is drawn on the edit line: control characters are
// shown in caret notation (^A, ^?).
func Visual(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == 0x7f:
			sb.WriteString("^?")
		case r < 0x20:
			sb.WriteByte('^')
			sb.WriteRune(r + '@')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Prompt is an expanded prompt ready to draw.
type Prompt struct {
	Text  string // bytes to write
	Width int    // cells occupied on screen
}

// ExpandPrompt prepares prompt text for drawing. When esc is not zero, runs
// enclosed by esc are written literally and take no space on screen (for
// color or highlight sequences); the esc characters themselves are dropped.
// An unpaired esc extends its literal run to the end of the prompt.
func ExpandPrompt(text string, esc rune) Prompt {
	if esc == 0 || !strings.ContainsRune(text, esc) {
		return Prompt{Text: text, Width: StringWidth(text)}
	}
	var out, visible strings.Builder
	literal := false
	for _, r := range text {
		if r == esc {
			literal = !literal
			continue
		}
		out.WriteRune(r)
		if !literal {
			visible.WriteRune(r)
		}
	}
	return Prompt{Text: out.String(), Width: StringWidth(visible.String())}
}
