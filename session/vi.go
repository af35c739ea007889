package session

import "editline/lineedit"

// viOp is a vi operator waiting for the motion or text object it applies
// to.
type viOp int

const (
	opDelete viOp = iota // d
	opChange             // c
	opYank               // y
)

var viMotions = map[rune]lineedit.Motion{
	'h': lineedit.MotionLeft,
	'l': lineedit.MotionRight,
	' ': lineedit.MotionRight,
	'w': lineedit.MotionWordRight,
	'W': lineedit.MotionBigWordRight,
	'b': lineedit.MotionWordLeft,
	'B': lineedit.MotionBigWordLeft,
	'e': lineedit.MotionWordEnd,
	'E': lineedit.MotionBigWordEnd,
	'0': lineedit.MotionHome,
	'^': lineedit.MotionHome,
	'$': lineedit.MotionEnd,
}

func viDeleteMeta(s *Session, key rune) Status {
	return viOperator(s, opDelete, key)
}

func viChangeMeta(s *Session, key rune) Status {
	return viOperator(s, opChange, key)
}

func viYank(s *Session, key rune) Status {
	return viOperator(s, opYank, key)
}

// viOperator reads the keys after an operator: an optional count, then a
// motion, a text object (iw, aw, i", a", i', a') or the operator key again
// for the whole line. Counts before and after the operator multiply.
func viOperator(s *Session, op viOp, key rune) Status {
	count := s.Arg()
	r, err := s.ReadKey()
	if err != nil {
		return Error
	}
	n := 0
	for (r >= '1' && r <= '9') || (r == '0' && n > 0) {
		n = n*10 + int(r-'0')
		if n > maxArg {
			return Error
		}
		if r, err = s.ReadKey(); err != nil {
			return Error
		}
	}
	if n > 0 {
		count *= n
	}

	b := s.buf
	var start, end int
	switch r {
	case key:
		start, end = 0, b.Len()
	case 'i', 'a':
		obj, err := s.ReadKey()
		if err != nil {
			return Error
		}
		var found bool
		switch obj {
		case 'w':
			start, end, found = b.WordObject(r == 'i')
		case '"', '\'', '`':
			start, end, found = b.QuoteObject(byte(obj), r == 'i')
		}
		if !found {
			return Error
		}
	default:
		m, ok := viMotions[r]
		if !ok {
			return Error
		}
		// cw and cW stop at the end of the word, as in vi.
		if op == opChange && m == lineedit.MotionWordRight {
			m = lineedit.MotionWordEnd
		} else if op == opChange && m == lineedit.MotionBigWordRight {
			m = lineedit.MotionBigWordEnd
		}
		if m == lineedit.MotionHome || m == lineedit.MotionEnd {
			count = 1
		}
		start = b.Cursor()
		end = b.Target(m, count)
	}
	if start > end {
		start, end = end, start
	}
	return applyOperator(s, op, start, end)
}

// applyOperator runs op over the byte range [start, end) of the line.
func applyOperator(s *Session, op viOp, start, end int) Status {
	b := s.buf
	b.SetCursor(start)
	switch op {
	case opYank:
		b.CopyTo(end)
		return Cursor
	case opChange:
		b.KillTo(end)
		return insertMode(s, Refresh)
	}
	if start == end {
		return Error
	}
	b.KillTo(end)
	if b.Cursor() == b.Len() {
		b.Left()
	}
	return Refresh
}
