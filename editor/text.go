package editor

import "doodle/shape"

// TextEdit is a rune buffer for editing a shape label, with cursor
// movement and the usual line-kill operations. Commit validates the
// markup through the shape; a malformed buffer leaves the label as it
// was and keeps the buffer open for correction.
type TextEdit struct {
	Target    int
	buffer    []rune
	cursorPos int
	original  string
}

// NewTextEdit opens an edit buffer on a shape's label with the cursor
// at the end.
func NewTextEdit(sh *shape.Shape) *TextEdit {
	buf := []rune(sh.Text)
	return &TextEdit{
		Target:    sh.ID,
		buffer:    buf,
		cursorPos: len(buf),
		original:  sh.Text,
	}
}

// Buffer returns the current text.
func (e *TextEdit) Buffer() string { return string(e.buffer) }

// Cursor returns the rune index of the cursor.
func (e *TextEdit) Cursor() int { return e.cursorPos }

// Insert places a rune at the cursor.
func (e *TextEdit) Insert(r rune) {
	e.buffer = append(e.buffer[:e.cursorPos], append([]rune{r}, e.buffer[e.cursorPos:]...)...)
	e.cursorPos++
}

// InsertString places a string at the cursor.
func (e *TextEdit) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// Backspace deletes the rune before the cursor.
func (e *TextEdit) Backspace() {
	if e.cursorPos == 0 {
		return
	}
	e.buffer = append(e.buffer[:e.cursorPos-1], e.buffer[e.cursorPos:]...)
	e.cursorPos--
}

// Delete removes the rune under the cursor.
func (e *TextEdit) Delete() {
	if e.cursorPos >= len(e.buffer) {
		return
	}
	e.buffer = append(e.buffer[:e.cursorPos], e.buffer[e.cursorPos+1:]...)
}

// MoveLeft steps the cursor back one rune.
func (e *TextEdit) MoveLeft() {
	if e.cursorPos > 0 {
		e.cursorPos--
	}
}

// MoveRight steps the cursor forward one rune.
func (e *TextEdit) MoveRight() {
	if e.cursorPos < len(e.buffer) {
		e.cursorPos++
	}
}

// MoveHome jumps to the start of the current line.
func (e *TextEdit) MoveHome() {
	for e.cursorPos > 0 && e.buffer[e.cursorPos-1] != '\n' {
		e.cursorPos--
	}
}

// MoveEnd jumps to the end of the current line.
func (e *TextEdit) MoveEnd() {
	for e.cursorPos < len(e.buffer) && e.buffer[e.cursorPos] != '\n' {
		e.cursorPos++
	}
}

// DeleteWordBackward removes the word before the cursor (Ctrl+W).
func (e *TextEdit) DeleteWordBackward() {
	if e.cursorPos == 0 {
		return
	}
	start := e.cursorPos - 1
	for start >= 0 && e.buffer[start] == ' ' {
		start--
	}
	for start >= 0 && e.buffer[start] != ' ' && e.buffer[start] != '\n' {
		start--
	}
	start++
	if start < e.cursorPos {
		e.buffer = append(e.buffer[:start], e.buffer[e.cursorPos:]...)
		e.cursorPos = start
	}
}

// DeleteToEndOfLine removes from the cursor to the line end (Ctrl+K).
func (e *TextEdit) DeleteToEndOfLine() {
	end := e.cursorPos
	for end < len(e.buffer) && e.buffer[end] != '\n' {
		end++
	}
	e.buffer = append(e.buffer[:e.cursorPos], e.buffer[end:]...)
}

// Commit writes the buffer to the shape, which validates the markup.
// A parse failure leaves the label unchanged and returns the error so
// the front end can surface it without closing the buffer.
func (e *TextEdit) Commit(sh *shape.Shape) error {
	return sh.SetText(string(e.buffer))
}

// Cancel reports the label text as it was when editing began.
func (e *TextEdit) Cancel() string { return e.original }
