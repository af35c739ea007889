// Package history keeps a bounded, ordered log of accepted lines with a
// navigation cursor, prefix search and file persistence.
package history

import (
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
)

// DefaultSize is the capacity of a new Store.
const DefaultSize = 100

// ErrNoMoreHistory is returned when navigation runs off either end.
var ErrNoMoreHistory = errors.New("history: no more entries")

// Entry is one accepted line.
type Entry struct {
	Num  int // sequence number, increasing for the life of the Store
	Line string
	Time time.Time
}

// Direction selects the way Navigate moves.
type Direction int

const (
	Older Direction = iota
	Newer
)

// Store is a size-bounded history. It is not safe for concurrent use.
type Store struct {
	entries []Entry
	size    int
	seq     int
	unique  bool

	// pos is the navigation cursor: an index into entries, or
	// len(entries) for "past the newest".
	pos     int
	pending string

	now func() time.Time
}

// New creates an empty store with DefaultSize capacity.
func New() *Store {
	return &Store{size: DefaultSize, now: time.Now}
}

// Enter appends line if it contains at least one visible character.
// Lines of only whitespace or control characters are dropped, as is a
// repeat of the newest entry when unique mode is on. Enter always resets
// the navigation cursor.
func (s *Store) Enter(line string) bool {
	defer s.Reset()
	if !hasVisible(line) {
		return false
	}
	if s.unique && len(s.entries) > 0 && s.entries[len(s.entries)-1].Line == line {
		return false
	}
	s.add(line, s.now())
	return true
}

func hasVisible(line string) bool {
	for _, r := range line {
		if unicode.IsGraphic(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func (s *Store) add(line string, t time.Time) {
	s.seq++
	s.entries = append(s.entries, Entry{Num: s.seq, Line: line, Time: t})
	s.trim()
}

func (s *Store) trim() {
	if over := len(s.entries) - s.size; over > 0 {
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	if s.pos > len(s.entries) {
		s.pos = len(s.entries)
	}
}

// SetSize changes the capacity, evicting the oldest entries if needed.
func (s *Store) SetSize(n int) error {
	if n < 0 {
		return &IOError{Code: CodeSizeNegative, Message: messages[CodeSizeNegative]}
	}
	s.size = n
	s.trim()
	return nil
}

// Size returns the capacity.
func (s *Store) Size() int {
	return s.size
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// SetUnique makes Enter drop a line equal to the newest entry.
func (s *Store) SetUnique(on bool) {
	s.unique = on
}

// Unique reports whether unique mode is on.
func (s *Store) Unique() bool {
	return s.unique
}

// Entries returns a copy of the entries, oldest first.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear removes every entry. Sequence numbers keep increasing.
func (s *Store) Clear() {
	s.entries = s.entries[:0]
	s.Reset()
}

// Reset moves the navigation cursor past the newest entry and forgets the
// pending line.
func (s *Store) Reset() {
	s.pos = len(s.entries)
	s.pending = ""
}

// SetPending records the in-progress line, returned when navigation comes
// back past the newest entry. It only takes effect when the cursor is past
// the newest entry.
func (s *Store) SetPending(line string) {
	if s.pos == len(s.entries) {
		s.pending = line
	}
}

// Navigate steps the cursor one entry in dir and returns that entry.
func (s *Store) Navigate(dir Direction) (string, error) {
	if dir == Older {
		return s.Prev()
	}
	return s.Next()
}

// Prev steps to the next older entry.
func (s *Store) Prev() (string, error) {
	if s.pos == 0 {
		return "", ErrNoMoreHistory
	}
	s.pos--
	return s.entries[s.pos].Line, nil
}

// Next steps to the next newer entry. Stepping past the newest entry
// returns the pending line.
func (s *Store) Next() (string, error) {
	if s.pos >= len(s.entries) {
		return "", ErrNoMoreHistory
	}
	s.pos++
	if s.pos == len(s.entries) {
		return s.pending, nil
	}
	return s.entries[s.pos].Line, nil
}

// SearchPrev moves to the nearest older entry starting with prefix.
func (s *Store) SearchPrev(prefix string) (string, error) {
	for i := s.pos - 1; i >= 0; i-- {
		if strings.HasPrefix(s.entries[i].Line, prefix) {
			s.pos = i
			return s.entries[i].Line, nil
		}
	}
	return "", ErrNoMoreHistory
}

// SearchNext moves to the nearest newer entry starting with prefix.
func (s *Store) SearchNext(prefix string) (string, error) {
	for i := s.pos + 1; i < len(s.entries); i++ {
		if strings.HasPrefix(s.entries[i].Line, prefix) {
			s.pos = i
			return s.entries[i].Line, nil
		}
	}
	return "", ErrNoMoreHistory
}
