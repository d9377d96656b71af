// Package editor holds the in-progress edit buffers the interactive
// front end types into: numeric transform fields and shape labels.
// Buffers are deliberately decoupled from the scene; nothing mutates a
// shape until a buffer commits with a valid value, so half-typed or
// invalid input can never destroy state.
package editor

import (
	"math"
	"strconv"

	"doodle/shape"
)

// Field identifies which transform property a FieldEdit targets.
type Field int

const (
	FieldX Field = iota
	FieldY
	FieldWidth
	FieldHeight
	FieldRotation
	FieldTextSize
)

func (f Field) String() string {
	switch f {
	case FieldX:
		return "x"
	case FieldY:
		return "y"
	case FieldWidth:
		return "width"
	case FieldHeight:
		return "height"
	case FieldRotation:
		return "rotation"
	case FieldTextSize:
		return "text size"
	}
	return "?"
}

// FieldEdit is a numeric input buffer bound to one transform field of
// one shape. The original value is kept so cancel restores the
// displayed number and commit can fall back when the buffer does not
// parse.
type FieldEdit struct {
	Target   int
	Field    Field
	buffer   []rune
	original float64
}

// NewFieldEdit opens an edit buffer on a shape's field, pre-filled
// with the current value.
func NewFieldEdit(sh *shape.Shape, f Field) *FieldEdit {
	e := &FieldEdit{Target: sh.ID, Field: f, original: fieldValue(sh, f)}
	e.buffer = []rune(strconv.FormatFloat(e.original, 'f', -1, 64))
	return e
}

func fieldValue(sh *shape.Shape, f Field) float64 {
	switch f {
	case FieldX:
		return sh.X
	case FieldY:
		return sh.Y
	case FieldWidth:
		return sh.Width
	case FieldHeight:
		return sh.Height
	case FieldRotation:
		return sh.Rotation * 180 / math.Pi
	case FieldTextSize:
		return sh.Style.TextSize
	}
	return 0
}

// Buffer returns the current input text.
func (e *FieldEdit) Buffer() string { return string(e.buffer) }

// Clear empties the buffer, ready for fresh digits.
func (e *FieldEdit) Clear() { e.buffer = e.buffer[:0] }

// Insert appends a character when it can form part of a number;
// anything else is ignored rather than corrupting the buffer.
func (e *FieldEdit) Insert(r rune) {
	switch {
	case r >= '0' && r <= '9':
	case r == '.' || r == '-':
	default:
		return
	}
	e.buffer = append(e.buffer, r)
}

// InsertDigits feeds each character of s through Insert.
func (e *FieldEdit) InsertDigits(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// Backspace removes the last character.
func (e *FieldEdit) Backspace() {
	if len(e.buffer) > 0 {
		e.buffer = e.buffer[:len(e.buffer)-1]
	}
}

// Value parses the buffer. An empty or malformed buffer reports ok
// false; callers keep the field unchanged in that case.
func (e *FieldEdit) Value() (float64, bool) {
	if len(e.buffer) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(e.buffer), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Commit applies the buffered value to the shape. An unparseable
// buffer leaves the shape untouched and reports false; width, height,
// and text size are clamped to their minimums instead of rejected, so
// committing can never produce an invalid shape.
func (e *FieldEdit) Commit(sh *shape.Shape) bool {
	v, ok := e.Value()
	if !ok {
		return false
	}
	switch e.Field {
	case FieldX:
		sh.X = v
	case FieldY:
		sh.Y = v
	case FieldWidth:
		sh.Width = math.Max(v, shape.MinSize)
	case FieldHeight:
		sh.Height = math.Max(v, shape.MinSize)
	case FieldRotation:
		sh.Rotation = v * math.Pi / 180
	case FieldTextSize:
		sh.Style.TextSize = math.Max(v, 1)
	}
	return true
}

// Cancel reports the value to redisplay after an abandoned edit.
func (e *FieldEdit) Cancel() float64 { return e.original }
