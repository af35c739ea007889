package keymap

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed key notation.
type SyntaxError struct {
	Input string
	Pos   int // byte offset of the offending character
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("keymap: %s at offset %d in %q", e.Msg, e.Pos, e.Input)
}

// Parse converts editrc key notation into the raw byte sequence it names.
//
//	^X      control character (^? is DEL)
//	\e \E   escape
//	\n \r \t \a \b \f \v
//	\\ \^   literal backslash and caret
//	\NNN    octal byte (one to three digits)
//	\xHH    hexadecimal byte
//
// A trailing lone '^' is taken literally.
func Parse(s string) (string, error) {
	if s == "" {
		return "", &SyntaxError{Input: s, Msg: "empty key sequence"}
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '^':
			if i+1 == len(s) {
				sb.WriteByte('^')
				continue
			}
			i++
			n := s[i]
			if n == '?' {
				sb.WriteByte(0x7f)
			} else {
				sb.WriteByte(n & 0x1f)
			}
		case '\\':
			if i+1 == len(s) {
				return "", &SyntaxError{Input: s, Pos: i, Msg: "trailing backslash"}
			}
			i++
			b, adv, err := parseEscape(s, i)
			if err != nil {
				return "", err
			}
			sb.WriteByte(b)
			i += adv
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// parseEscape decodes the escape whose letter is at s[i]. adv is the number
// of extra bytes consumed beyond s[i].
func parseEscape(s string, i int) (b byte, adv int, err error) {
	switch c := s[i]; c {
	case 'e', 'E':
		return 0x1b, 0, nil
	case 'n':
		return '\n', 0, nil
	case 'r':
		return '\r', 0, nil
	case 't':
		return '\t', 0, nil
	case 'a':
		return 0x07, 0, nil
	case 'b':
		return 0x08, 0, nil
	case 'f':
		return 0x0c, 0, nil
	case 'v':
		return 0x0b, 0, nil
	case '\\', '^':
		return c, 0, nil
	case 'x':
		v, n := 0, 0
		for n < 2 && i+1+n < len(s) && isHex(s[i+1+n]) {
			v = v*16 + hexVal(s[i+1+n])
			n++
		}
		if n == 0 {
			return 0, 0, &SyntaxError{Input: s, Pos: i, Msg: `\x without hex digits`}
		}
		return byte(v), n, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v, n := 0, 0
		for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
			v = v*8 + int(s[i+n]-'0')
			n++
		}
		if v > 0xff {
			return 0, 0, &SyntaxError{Input: s, Pos: i, Msg: "octal escape out of range"}
		}
		return byte(v), n - 1, nil
	default:
		return 0, 0, &SyntaxError{Input: s, Pos: i, Msg: fmt.Sprintf("unknown escape \\%c", c)}
	}
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) int {
	switch {
	case c >= 'a':
		return int(c-'a') + 10
	case c >= 'A':
		return int(c-'A') + 10
	}
	return int(c - '0')
}

// Format renders a raw key sequence in the notation accepted by Parse.
func Format(seq string) string {
	var sb strings.Builder
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		switch {
		case c == 0x1b:
			sb.WriteString(`\e`)
		case c == 0x7f:
			sb.WriteString("^?")
		case c < 0x20:
			sb.WriteByte('^')
			sb.WriteByte(c + '@')
		case c == '\\' || c == '^':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c > 0x7f:
			fmt.Fprintf(&sb, `\%03o`, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
