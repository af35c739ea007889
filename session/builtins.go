package session

import (
	"unicode/utf8"
)

// maxArg caps the numeric argument.
const maxArg = 1000000

type builtin struct {
	name  string
	help  string
	fn    Func
	edits bool
}

var builtins = []builtin{
	{"ed-argument-digit", "Digit that starts or extends the argument", edArgumentDigit, false},
	{"ed-clear-screen", "Clear screen leaving current line at the top", edClearScreen, false},
	{"ed-delete-next-char", "Delete character under cursor", edDeleteNextChar, true},
	{"ed-delete-prev-char", "Delete the character to the left of the cursor", edDeletePrevChar, true},
	{"ed-delete-prev-word", "Delete from beginning of current word to cursor", edDeletePrevWord, true},
	{"ed-end-of-file", "Indicate end of file", edEndOfFile, false},
	{"ed-insert", "Add character to the line", edInsert, true},
	{"ed-kill-line", "Cut to the end of line", edKillLine, true},
	{"ed-move-to-beg", "Move cursor to the beginning of line", edMoveToBeg, false},
	{"ed-move-to-end", "Move cursor to the end of line", edMoveToEnd, false},
	{"ed-newline", "Execute command", edNewline, false},
	{"ed-next-char", "Move to the right one character", edNextChar, false},
	{"ed-next-history", "Move to the next history line", edNextHistory, true},
	{"ed-prev-char", "Move to the left one character", edPrevChar, false},
	{"ed-prev-history", "Move to the previous history line", edPrevHistory, true},
	{"ed-prev-word", "Move to the beginning of the current word", edPrevWord, false},
	{"ed-quoted-insert", "Add the next character typed verbatim", edQuotedInsert, true},
	{"ed-redisplay", "Redisplay everything", edRedisplay, false},
	{"ed-search-next-history", "Search next in history for line matching cursor", edSearchNextHistory, true},
	{"ed-search-prev-history", "Search previous in history for line matching cursor", edSearchPrevHistory, true},
	{"ed-transpose-chars", "Exchange the character to the left of the cursor with the one under it", edTransposeChars, true},
	{"ed-tty-sigint", "Abort the line", edTTYSigint, false},
	{"ed-unassigned", "Indicates unbound character", edUnassigned, false},
	{"em-capitol-case", "Capitalize the characters from cursor to end of current word", emCapitolCase, true},
	{"em-copy-region", "Copy area between mark and cursor to cut buffer", emCopyRegion, false},
	{"em-delete-next-word", "Cut from cursor to end of current word", emDeleteNextWord, true},
	{"em-delete-or-list", "Delete character under cursor or end of file on empty line", emDeleteOrList, true},
	{"em-delete-prev-char", "Delete the character to the left of the cursor", edDeletePrevChar, true},
	{"em-exchange-mark", "Exchange the cursor and mark", emExchangeMark, false},
	{"em-kill-line", "Cut the entire line and save in cut buffer", emKillLine, true},
	{"em-kill-region", "Cut area between mark and cursor and save in cut buffer", emKillRegion, true},
	{"em-lower-case", "Lowercase the characters from cursor to end of current word", emLowerCase, true},
	{"em-next-word", "Move next to end of current word", emNextWord, false},
	{"em-set-mark", "Set the mark at cursor", emSetMark, false},
	{"em-undo", "Undo the last change", undo, false},
	{"em-universal-argument", "Multiply current argument by 4", emUniversalArgument, false},
	{"em-upper-case", "Uppercase the characters from cursor to end of current word", emUpperCase, true},
	{"em-yank", "Paste cut buffer at cursor position", emYank, true},
	{"vi-add", "Enter insert mode after the cursor", viAdd, false},
	{"vi-add-at-eol", "Enter insert mode at end of line", viAddAtEOL, false},
	{"vi-change-case", "Change the case of the character under the cursor", viChangeCase, true},
	{"vi-change-meta", "Change the text covered by the next motion", viChangeMeta, true},
	{"vi-change-to-eol", "Change to end of line", viChangeToEOL, true},
	{"vi-command-mode", "Switch to command mode", viCommandMode, false},
	{"vi-delete-meta", "Delete the text covered by the next motion", viDeleteMeta, true},
	{"vi-delete-prev-char", "Delete the character to the left of the cursor", edDeletePrevChar, true},
	{"vi-end-big-word", "Move to the end of the current space delimited word", viEndBigWord, false},
	{"vi-end-word", "Move to the end of the current word", viEndWord, false},
	{"vi-insert", "Enter insert mode", viInsert, false},
	{"vi-insert-at-bol", "Enter insert mode at the beginning of line", viInsertAtBOL, false},
	{"vi-kill-line-prev", "Cut from the beginning of line to cursor", viKillLinePrev, true},
	{"vi-list-or-eof", "End of file on an empty line", viListOrEOF, false},
	{"vi-next-big-word", "Move to the next space delimited word", viNextBigWord, false},
	{"vi-next-word", "Move to the next word", viNextWord, false},
	{"vi-paste-next", "Paste the cut buffer after the cursor", viPasteNext, true},
	{"vi-paste-prev", "Paste the cut buffer before the cursor", viPastePrev, true},
	{"vi-prev-big-word", "Move to the previous space delimited word", viPrevBigWord, false},
	{"vi-prev-word", "Move to the previous word", viPrevWord, false},
	{"vi-replace-char", "Replace the character under the cursor", viReplaceChar, true},
	{"vi-replace-mode", "Enter replace mode", viReplaceMode, false},
	{"vi-substitute-char", "Substitute the character under the cursor", viSubstituteChar, true},
	{"vi-substitute-line", "Substitute the whole line", viSubstituteLine, true},
	{"vi-undo", "Undo the last change", undo, false},
	{"vi-yank", "Yank the text covered by the next motion", viYank, false},
	{"vi-zero", "Beginning of line, or a digit of the argument", viZero, false},
}

// times calls fn up to n times, stopping at the first failure. It reports
// whether any call succeeded.
func times(n int, fn func() bool) bool {
	ok := false
	for i := 0; i < n; i++ {
		if !fn() {
			break
		}
		ok = true
	}
	return ok
}

// move applies a cursor motion Arg times.
func move(s *Session, fn func()) Status {
	start := s.buf.Cursor()
	for i := 0; i < s.Arg(); i++ {
		fn()
	}
	if s.buf.Cursor() == start {
		return Error
	}
	return Cursor
}

func edInsert(s *Session, key rune) Status {
	for i := 0; i < s.Arg(); i++ {
		var err error
		if s.replace {
			err = s.buf.Replace(key)
		} else {
			err = s.buf.InsertRune(key)
		}
		if err != nil {
			return Error
		}
	}
	return Normal
}

func edQuotedInsert(s *Session, _ rune) Status {
	r, err := s.ReadKey()
	if err != nil {
		return Error
	}
	return edInsert(s, r)
}

func edNewline(*Session, rune) Status {
	return NewLine
}

func edEndOfFile(*Session, rune) Status {
	return EOF
}

func edUnassigned(*Session, rune) Status {
	return Error
}

func edTTYSigint(s *Session, _ rune) Status {
	s.fatal = ErrInterrupted
	return Fatal
}

func edRedisplay(*Session, rune) Status {
	return Redisplay
}

func edClearScreen(s *Session, _ rune) Status {
	if err := s.display.ClearScreen(); err != nil {
		s.log.Debug("clear screen", "err", err)
	}
	return Refresh
}

func edMoveToBeg(s *Session, _ rune) Status {
	s.buf.Home()
	return Cursor
}

func edMoveToEnd(s *Session, _ rune) Status {
	s.buf.End()
	return Cursor
}

func edPrevChar(s *Session, _ rune) Status {
	return move(s, func() { s.buf.Left() })
}

func edNextChar(s *Session, _ rune) Status {
	return move(s, func() { s.buf.Right() })
}

func edPrevWord(s *Session, _ rune) Status {
	return move(s, s.buf.WordLeft)
}

func emNextWord(s *Session, _ rune) Status {
	return move(s, s.buf.NextWordEnd)
}

func edDeletePrevChar(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.DeleteBackward) {
		return Error
	}
	return Refresh
}

func edDeleteNextChar(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.DeleteChar) {
		return Error
	}
	return Refresh
}

func emDeleteOrList(s *Session, key rune) Status {
	if s.buf.Len() == 0 {
		return EOF
	}
	return edDeleteNextChar(s, key)
}

func edDeletePrevWord(s *Session, _ rune) Status {
	if s.buf.Cursor() == 0 {
		return Error
	}
	for i := 0; i < s.Arg(); i++ {
		s.buf.DeleteWordBackward()
	}
	return Refresh
}

func emDeleteNextWord(s *Session, _ rune) Status {
	if s.buf.Cursor() == s.buf.Len() {
		return Error
	}
	for i := 0; i < s.Arg(); i++ {
		s.buf.DeleteWordForward()
	}
	return Refresh
}

func edKillLine(s *Session, _ rune) Status {
	s.buf.KillToEnd()
	return Refresh
}

func emKillLine(s *Session, _ rune) Status {
	s.buf.KillLine()
	return Refresh
}

func edTransposeChars(s *Session, _ rune) Status {
	if !s.buf.Transpose() {
		return Error
	}
	return Refresh
}

func emUpperCase(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.UpperWord) {
		return Error
	}
	return Refresh
}

func emLowerCase(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.LowerWord) {
		return Error
	}
	return Refresh
}

func emCapitolCase(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.CapitalizeWord) {
		return Error
	}
	return Refresh
}

func emSetMark(s *Session, _ rune) Status {
	s.buf.SetMark()
	return Cursor
}

func emExchangeMark(s *Session, _ rune) Status {
	s.buf.ExchangeMark()
	return Cursor
}

func emKillRegion(s *Session, _ rune) Status {
	s.buf.KillRegion()
	return Refresh
}

func emCopyRegion(s *Session, _ rune) Status {
	s.buf.CopyRegion()
	return Cursor
}

func emYank(s *Session, _ rune) Status {
	if s.buf.Killed() == "" {
		return Error
	}
	for i := 0; i < s.Arg(); i++ {
		if err := s.buf.Yank(); err != nil {
			return Error
		}
	}
	return Refresh
}

func undo(s *Session, _ rune) Status {
	if !s.buf.Undo() {
		return Error
	}
	return Refresh
}

func edArgumentDigit(s *Session, key rune) Status {
	if key < '0' || key > '9' {
		return Error
	}
	d := int(key - '0')
	if !s.argSet {
		s.arg, s.argSet = d, true
		return ArgHack
	}
	if s.arg > (maxArg-d)/10 {
		return Error
	}
	s.arg = s.arg*10 + d
	return ArgHack
}

func emUniversalArgument(s *Session, _ rune) Status {
	if !s.argSet {
		s.arg, s.argSet = 4, true
		return ArgHack
	}
	if s.arg > maxArg/4 {
		return Error
	}
	s.arg *= 4
	return ArgHack
}

func edPrevHistory(s *Session, _ rune) Status {
	return historyStep(s, s.hist.Prev)
}

func edNextHistory(s *Session, _ rune) Status {
	return historyStep(s, s.hist.Next)
}

// historyStep moves through the history Arg times and puts the entry it
// lands on in the buffer. The line being edited is kept so that moving
// back past the newest entry restores it.
func historyStep(s *Session, step func() (string, error)) Status {
	s.hist.SetPending(s.buf.Text())
	var line string
	for i := 0; i < s.Arg(); i++ {
		l, err := step()
		if err != nil {
			if i == 0 {
				return Error
			}
			break
		}
		line = l
	}
	s.buf.Set(line)
	if s.keys.InCommandMode() {
		s.buf.Home()
	}
	return Refresh
}

func edSearchPrevHistory(s *Session, _ rune) Status {
	return historySearch(s, s.hist.SearchPrev)
}

func edSearchNextHistory(s *Session, _ rune) Status {
	return historySearch(s, s.hist.SearchNext)
}

// historySearch finds an entry starting with the text before the cursor.
// The cursor stays put so that repeated searches use the same prefix.
func historySearch(s *Session, search func(string) (string, error)) Status {
	prefix := s.buf.BeforeCursor()
	s.hist.SetPending(s.buf.Text())
	line, err := search(prefix)
	if err != nil {
		return Error
	}
	s.buf.Set(line)
	s.buf.SetCursor(len(prefix))
	return Refresh
}

func viCommandMode(s *Session, _ rune) Status {
	if s.keys.Alternate() == nil {
		return Error
	}
	s.keys.SetCommandMode(true)
	s.replace = false
	s.buf.Left()
	return Cursor
}

// insertMode returns to the vi insert table.
func insertMode(s *Session, st Status) Status {
	s.keys.SetCommandMode(false)
	return st
}

func viInsert(s *Session, _ rune) Status {
	return insertMode(s, Cursor)
}

func viAdd(s *Session, _ rune) Status {
	s.buf.Right()
	return insertMode(s, Cursor)
}

func viAddAtEOL(s *Session, _ rune) Status {
	s.buf.End()
	return insertMode(s, Cursor)
}

func viInsertAtBOL(s *Session, _ rune) Status {
	s.buf.Home()
	return insertMode(s, Cursor)
}

func viReplaceMode(s *Session, _ rune) Status {
	s.replace = true
	return insertMode(s, Cursor)
}

func viChangeToEOL(s *Session, _ rune) Status {
	s.buf.KillToEnd()
	return insertMode(s, Refresh)
}

func viSubstituteLine(s *Session, _ rune) Status {
	s.buf.KillLine()
	return insertMode(s, Refresh)
}

func viSubstituteChar(s *Session, _ rune) Status {
	s.buf.DeleteForward(s.Arg())
	return insertMode(s, Refresh)
}

func viKillLinePrev(s *Session, _ rune) Status {
	if s.buf.Cursor() == 0 {
		return Error
	}
	s.buf.KillToStart()
	return Refresh
}

func viListOrEOF(s *Session, _ rune) Status {
	if s.buf.Len() == 0 {
		return EOF
	}
	return Error
}

func viZero(s *Session, key rune) Status {
	if s.argSet {
		return edArgumentDigit(s, key)
	}
	s.buf.Home()
	return Cursor
}

func viChangeCase(s *Session, _ rune) Status {
	if !times(s.Arg(), s.buf.ToggleCase) {
		return Error
	}
	return Refresh
}

func viReplaceChar(s *Session, _ rune) Status {
	r, err := s.ReadKey()
	if err != nil || r == '\x1b' {
		return Error
	}
	n := s.Arg()
	if utf8.RuneCountInString(s.buf.AfterCursor()) < n {
		return Error
	}
	for i := 0; i < n; i++ {
		if err := s.buf.Replace(r); err != nil {
			return Error
		}
	}
	s.buf.Left()
	return Refresh
}

func viPasteNext(s *Session, key rune) Status {
	if s.buf.Killed() == "" {
		return Error
	}
	s.buf.Right()
	return viPastePrev(s, key)
}

func viPastePrev(s *Session, _ rune) Status {
	if s.buf.Killed() == "" {
		return Error
	}
	for i := 0; i < s.Arg(); i++ {
		if err := s.buf.Yank(); err != nil {
			return Error
		}
	}
	s.buf.Left()
	return Refresh
}

func viNextWord(s *Session, _ rune) Status {
	return move(s, s.buf.WordRight)
}

func viPrevWord(s *Session, _ rune) Status {
	return move(s, s.buf.WordLeft)
}

func viNextBigWord(s *Session, _ rune) Status {
	return move(s, s.buf.BigWordRight)
}

func viPrevBigWord(s *Session, _ rune) Status {
	return move(s, s.buf.BigWordLeft)
}

func viEndWord(s *Session, _ rune) Status {
	return move(s, s.buf.WordEnd)
}

func viEndBigWord(s *Session, _ rune) Status {
	return move(s, s.buf.BigWordEnd)
}
