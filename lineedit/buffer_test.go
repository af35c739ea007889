package lineedit

import (
	"errors"
	"strings"
	"testing"
)

func TestInsert(t *testing.T) {
	b := New()
	b.InsertRune('h')
	b.InsertRune('i')
	if b.Text() != "hi" {
		t.Errorf("expected 'hi', got %q", b.Text())
	}
	if b.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", b.Cursor())
	}
}

func TestInsertMiddle(t *testing.T) {
	b := New()
	b.Set("hllo")
	b.cursor = 1 // After 'h'
	n, err := b.Insert("e")
	if err != nil || n != 1 {
		t.Fatalf("Insert: got (%d, %v)", n, err)
	}
	if b.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", b.Text())
	}
	if b.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", b.Cursor())
	}
}

func TestInsertConcatenates(t *testing.T) {
	tests := []struct {
		s1, s2 string
	}{
		{"", ""},
		{"foo", "bar"},
		{"héllo ", "wörld"},
		{"", "x"},
		{strings.Repeat("a", 10), strings.Repeat("b", 6)},
	}
	for _, tt := range tests {
		b := NewSize(16)
		if _, err := b.Insert(tt.s1); err != nil {
			t.Fatalf("Insert(%q): %v", tt.s1, err)
		}
		if _, err := b.Insert(tt.s2); err != nil {
			t.Fatalf("Insert(%q): %v", tt.s2, err)
		}
		if b.Text() != tt.s1+tt.s2 {
			t.Errorf("got %q, want %q", b.Text(), tt.s1+tt.s2)
		}
		if b.Cursor() != len(tt.s1)+len(tt.s2) {
			t.Errorf("cursor %d, want %d", b.Cursor(), len(tt.s1)+len(tt.s2))
		}
	}
}

func TestInsertOverflow(t *testing.T) {
	b := NewSize(5)
	b.Insert("abc")
	n, err := b.Insert("def")
	var oe *OverflowError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OverflowError, got %v", err)
	}
	if n != 0 || oe.Max != 5 || oe.Len != 6 {
		t.Errorf("unexpected overflow result n=%d err=%+v", n, oe)
	}
	if b.Text() != "abc" || b.Cursor() != 3 {
		t.Errorf("buffer changed on overflow: %q cursor %d", b.Text(), b.Cursor())
	}
}

func TestInsertInvalidUTF8(t *testing.T) {
	b := New()
	b.Insert("a\xffb")
	if b.Text() != "a\uFFFDb" {
		t.Errorf("expected replacement char, got %q", b.Text())
	}
}

func TestDeleteClamps(t *testing.T) {
	b := New()
	b.Set("hello")
	b.SetCursor(3)

	if n := b.Delete(0); n != 0 || b.Text() != "hello" {
		t.Errorf("Delete(0) should be a no-op, removed %d: %q", n, b.Text())
	}
	if n := b.Delete(-4); n != 0 || b.Text() != "hello" {
		t.Errorf("Delete(-4) should be a no-op, removed %d: %q", n, b.Text())
	}
	if n := b.Delete(10); n != 3 {
		t.Errorf("Delete(10) at cursor 3 removed %d, want 3", n)
	}
	if b.Text() != "lo" || b.Cursor() != 0 {
		t.Errorf("expected 'lo' cursor 0, got %q cursor %d", b.Text(), b.Cursor())
	}
	if n := b.Delete(1); n != 0 {
		t.Errorf("Delete at start removed %d", n)
	}
}

func TestDeleteRunes(t *testing.T) {
	b := New()
	b.Set("na\u00efve")
	b.SetCursor(4) // after "naï"
	b.Delete(1)
	if b.Text() != "nave" || b.Cursor() != 2 {
		t.Errorf("expected 'nave' cursor 2, got %q cursor %d", b.Text(), b.Cursor())
	}
	b.DeleteForward(5)
	if b.Text() != "na" {
		t.Errorf("expected 'na', got %q", b.Text())
	}
}

func TestDeleteBackward(t *testing.T) {
	b := New()
	b.Set("hello")
	b.DeleteBackward()
	if b.Text() != "hell" {
		t.Errorf("expected 'hell', got %q", b.Text())
	}

	// At start, should return false
	b.Home()
	if b.DeleteBackward() {
		t.Error("DeleteBackward at start should return false")
	}
}

func TestDeleteChar(t *testing.T) {
	b := New()
	b.Set("hello")
	b.Home()
	b.DeleteChar()
	if b.Text() != "ello" {
		t.Errorf("expected 'ello', got %q", b.Text())
	}

	// At end, should return false
	b.End()
	if b.DeleteChar() {
		t.Error("DeleteChar at end should return false")
	}
}

func TestMovement(t *testing.T) {
	b := New()
	b.Set("hello")

	b.Home()
	if b.Cursor() != 0 {
		t.Errorf("Home: expected cursor at 0, got %d", b.Cursor())
	}

	b.End()
	if b.Cursor() != 5 {
		t.Errorf("End: expected cursor at 5, got %d", b.Cursor())
	}

	b.Left()
	if b.Cursor() != 4 {
		t.Errorf("Left: expected cursor at 4, got %d", b.Cursor())
	}

	b.Right()
	if b.Cursor() != 5 {
		t.Errorf("Right: expected cursor at 5, got %d", b.Cursor())
	}

	// Bounds checking
	b.End()
	if b.Right() {
		t.Error("Right at end should return false")
	}
	b.Home()
	if b.Left() {
		t.Error("Left at start should return false")
	}
}

func TestMovementGraphemes(t *testing.T) {
	b := New()
	b.Set("e\u0301x") // e + combining acute, then x
	b.Left()
	if b.Cursor() != 3 {
		t.Errorf("Left over 'x': expected 3, got %d", b.Cursor())
	}
	b.Left()
	if b.Cursor() != 0 {
		t.Errorf("Left over combined cluster: expected 0, got %d", b.Cursor())
	}
	b.Right()
	if b.Cursor() != 3 {
		t.Errorf("Right over combined cluster: expected 3, got %d", b.Cursor())
	}
}

func TestMoveCursorClamps(t *testing.T) {
	b := New()
	b.Set("a\u00f1b")
	b.MoveCursor(-100)
	if b.Cursor() != 0 {
		t.Errorf("expected 0, got %d", b.Cursor())
	}
	b.MoveCursor(2)
	if b.Cursor() != 3 {
		t.Errorf("expected 3 (after ñ), got %d", b.Cursor())
	}
	b.MoveCursor(100)
	if b.Cursor() != b.Len() {
		t.Errorf("expected %d, got %d", b.Len(), b.Cursor())
	}
}

func TestSetCursorSnapsToRune(t *testing.T) {
	b := New()
	b.Set("a\u00f1b")
	b.SetCursor(2) // middle of ñ
	if b.Cursor() != 1 {
		t.Errorf("expected cursor snapped to 1, got %d", b.Cursor())
	}
	b.SetCursor(-3)
	if b.Cursor() != 0 {
		t.Errorf("expected 0, got %d", b.Cursor())
	}
}

func TestKillToEnd(t *testing.T) {
	b := New()
	b.Set("hello world")
	b.cursor = 5
	b.KillToEnd()
	if b.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", b.Text())
	}
	if b.Killed() != " world" {
		t.Errorf("expected kill buffer ' world', got %q", b.Killed())
	}
}

func TestKillToStart(t *testing.T) {
	b := New()
	b.Set("hello world")
	b.cursor = 6
	b.KillToStart()
	if b.Text() != "world" {
		t.Errorf("expected 'world', got %q", b.Text())
	}
	if b.Cursor() != 0 {
		t.Errorf("expected cursor at 0, got %d", b.Cursor())
	}
}

func TestYank(t *testing.T) {
	b := New()
	b.Set("hello world")
	b.KillToStart()
	b.End()
	if err := b.Yank(); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hello world" {
		t.Errorf("expected 'hello world', got %q", b.Text())
	}
}

func TestRegion(t *testing.T) {
	b := New()
	b.Set("one two three")
	b.SetCursor(4)
	b.SetMark()
	b.SetCursor(8)
	b.CopyRegion()
	if b.Killed() != "two " {
		t.Errorf("expected 'two ', got %q", b.Killed())
	}
	b.KillRegion()
	if b.Text() != "one three" || b.Cursor() != 4 {
		t.Errorf("expected 'one three' cursor 4, got %q cursor %d", b.Text(), b.Cursor())
	}
	b.SetCursor(0)
	b.SetMark()
	b.End()
	b.ExchangeMark()
	if b.Cursor() != 0 || b.Mark() != 9 {
		t.Errorf("ExchangeMark: cursor %d mark %d", b.Cursor(), b.Mark())
	}
}

func TestTranspose(t *testing.T) {
	b := New()
	b.Set("ab")
	b.Transpose() // At end, should swap last two
	if b.Text() != "ba" {
		t.Errorf("expected 'ba', got %q", b.Text())
	}

	b.Set("abc")
	b.cursor = 2 // Between 'b' and 'c'
	b.Transpose()
	if b.Text() != "acb" {
		t.Errorf("expected 'acb', got %q", b.Text())
	}

	b.Set("x\u00e9")
	b.Transpose()
	if b.Text() != "\u00e9x" {
		t.Errorf("expected swapped runes, got %q", b.Text())
	}
}

func TestUndoRedo(t *testing.T) {
	b := New()
	b.SaveState()
	b.Insert("abc")
	b.SaveState()
	b.Insert("def")

	if !b.Undo() || b.Text() != "abc" {
		t.Errorf("first undo: got %q", b.Text())
	}
	if !b.Undo() || b.Text() != "" {
		t.Errorf("second undo: got %q", b.Text())
	}
	if b.Undo() {
		t.Error("undo with empty history should return false")
	}
	if !b.Redo() || b.Text() != "abc" {
		t.Errorf("redo: got %q", b.Text())
	}
}

func TestReplace(t *testing.T) {
	b := New()
	b.Set("cat")
	b.Home()
	b.Replace('b')
	if b.Text() != "bat" || b.Cursor() != 1 {
		t.Errorf("expected 'bat' cursor 1, got %q cursor %d", b.Text(), b.Cursor())
	}
}

func TestClear(t *testing.T) {
	b := New()
	b.Set("hello")
	b.Clear()
	if b.Text() != "" {
		t.Errorf("expected empty, got %q", b.Text())
	}
	if b.Cursor() != 0 {
		t.Errorf("expected cursor at 0, got %d", b.Cursor())
	}
}

func TestSetTruncates(t *testing.T) {
	b := NewSize(4)
	b.Set("abcé") // 5 bytes
	if b.Text() != "abc" {
		t.Errorf("expected 'abc', got %q", b.Text())
	}
}

func TestBeforeAfterCursor(t *testing.T) {
	b := New()
	b.Set("hello")
	b.cursor = 2
	if b.BeforeCursor() != "he" {
		t.Errorf("expected 'he', got %q", b.BeforeCursor())
	}
	if b.AfterCursor() != "llo" {
		t.Errorf("expected 'llo', got %q", b.AfterCursor())
	}
	snap := b.Snapshot()
	if snap.Text != "hello" || snap.Cursor != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
