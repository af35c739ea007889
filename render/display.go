package render

import (
	"bytes"
	"io"
	"strings"
)

// BellStyle selects how Beep alerts the user.
type BellStyle int

const (
	BellAudible BellStyle = iota
	BellVisible
	BellNone
)

// ParseBellStyle maps "audible", "visible" and "none" to a BellStyle.
func ParseBellStyle(s string) (BellStyle, bool) {
	switch s {
	case "audible", "on", "":
		return BellAudible, true
	case "visible":
		return BellVisible, true
	case "none", "off":
		return BellNone, true
	}
	return BellAudible, false
}

// Display draws the prompt and edit line, which may wrap over several rows.
// It remembers the row the cursor is on so the next redraw can start at
// the top of the line.
type Display struct {
	w    io.Writer
	caps *Caps
	cols int
	bell BellStyle
	row  int // cursor row, relative to the first row of the prompt
	out  bytes.Buffer
}

// NewDisplay creates a display writing to w. caps supplies the control
// sequences; missing entries fall back to ANSI.
func NewDisplay(w io.Writer, caps *Caps) *Display {
	if caps == nil {
		caps = ANSICaps()
	}
	return &Display{w: w, caps: caps, cols: 80}
}

// SetWidth sets the terminal width in columns.
func (d *Display) SetWidth(cols int) {
	if cols > 0 {
		d.cols = cols
	}
}

// Width returns the terminal width in columns.
func (d *Display) Width() int {
	return d.cols
}

// SetBell sets the bell style.
func (d *Display) SetBell(b BellStyle) {
	d.bell = b
}

// Bell returns the bell style.
func (d *Display) Bell() BellStyle {
	return d.bell
}

func (d *Display) str(name string) string {
	if s := d.caps.Str(name); s != "" {
		return s
	}
	return ansiStrs[name]
}

func (d *Display) param(name string, n int) string {
	if d.caps.Str(name) != "" {
		return d.caps.Param(name, n)
	}
	return ANSICaps().Param(name, n)
}

func (d *Display) up(n int) {
	switch {
	case n <= 0:
	case n == 1:
		d.out.WriteString(d.str("up"))
	default:
		d.out.WriteString(d.param("UP", n))
	}
}

func (d *Display) down(n int) {
	// OPOST is off in raw mode, so a bare LF moves straight down.
	for i := 0; i < n; i++ {
		d.out.WriteByte('\n')
	}
}

func (d *Display) right(n int) {
	switch {
	case n <= 0:
	case n == 1:
		d.out.WriteString(d.str("nd"))
	default:
		d.out.WriteString(d.param("RI", n))
	}
}

func (d *Display) flush() error {
	if d.out.Len() == 0 {
		return nil
	}
	_, err := d.w.Write(d.out.Bytes())
	d.out.Reset()
	return err
}

// position returns the row and column of the cell after n cells.
func (d *Display) position(n int) (row, col int) {
	return n / d.cols, n % d.cols
}

// Refresh redraws the prompt and line and puts the cursor at byte offset
// cursor of text.
func (d *Display) Refresh(p Prompt, text string, cursor int) error {
	d.up(d.row)
	d.out.WriteString("\r")
	d.out.WriteString(d.str("cd"))

	vis := Visual(text)
	d.out.WriteString(p.Text)
	d.out.WriteString(vis)

	end := p.Width + StringWidth(vis)
	if end > 0 && end%d.cols == 0 {
		// Force the pending wrap so the cursor is on the next row.
		d.out.WriteString("\r\n")
	}
	endRow, _ := d.position(end)

	row, col := d.position(p.Width + StringWidth(Visual(text[:cursor])))
	d.up(endRow - row)
	d.out.WriteString("\r")
	d.right(col)
	d.row = row
	return d.flush()
}

// MoveCursor moves the cursor to byte offset cursor of text without
// redrawing.
func (d *Display) MoveCursor(p Prompt, text string, cursor int) error {
	row, col := d.position(p.Width + StringWidth(Visual(text[:cursor])))
	if row < d.row {
		d.up(d.row - row)
	} else {
		d.down(row - d.row)
	}
	d.out.WriteString("\r")
	d.right(col)
	d.row = row
	return d.flush()
}

// Finish moves below the last row of the line and starts a fresh row, as
// after an accepted line.
func (d *Display) Finish(p Prompt, text string) error {
	end := p.Width + StringWidth(Visual(text))
	endRow, col := d.position(end)
	d.down(endRow - d.row)
	if end > 0 && col == 0 {
		// Refresh already wrapped onto an empty row.
		d.out.WriteString("\r")
	} else {
		d.out.WriteString("\r\n")
	}
	d.row = 0
	return d.flush()
}

// ClearScreen clears the whole screen and homes the cursor.
func (d *Display) ClearScreen() error {
	d.out.WriteString(d.str("cl"))
	d.row = 0
	return d.flush()
}

// Reset forgets the cursor row, for when output outside the display has
// moved the cursor to the start of a fresh row.
func (d *Display) Reset() {
	d.row = 0
}

// Beep alerts the user according to the bell style. A visible bell falls
// back to the audible one when the terminal has no flash capability.
func (d *Display) Beep() error {
	switch d.bell {
	case BellNone:
		return nil
	case BellVisible:
		if vb := d.caps.Str("vb"); vb != "" {
			d.out.WriteString(vb)
			return d.flush()
		}
	}
	d.out.WriteString(d.str("bl"))
	return d.flush()
}

// Print writes s on fresh rows below the line, translating LF to CRLF for
// raw mode. The next Refresh redraws the line underneath.
func (d *Display) Print(p Prompt, text, s string) error {
	if err := d.Finish(p, text); err != nil {
		return err
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	d.out.WriteString(strings.ReplaceAll(s, "\n", "\r\n"))
	if !strings.HasSuffix(s, "\n") && s != "" {
		d.out.WriteString("\r\n")
	}
	return d.flush()
}
