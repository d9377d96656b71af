package editor

import (
	"math"
	"testing"

	"doodle/shape"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRect(t *testing.T) *shape.Shape {
	t.Helper()
	sh, err := shape.New(shape.KindRect, 10, 20, 80, 40, shape.DefaultStyle())
	require.NoError(t, err)
	sh.ID = 1
	return sh
}

func TestFieldEditPrefillsCurrentValue(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldWidth)
	assert.Equal(t, "80", e.Buffer())

	sh.Rotation = math.Pi / 2
	e = NewFieldEdit(sh, FieldRotation)
	v, ok := e.Value()
	require.True(t, ok)
	assert.InDelta(t, 90, v, 1e-9)
}

func TestFieldEditCommitAppliesValue(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldX)
	e.Clear()
	e.InsertDigits("-35.5")
	require.True(t, e.Commit(sh))
	assert.Equal(t, -35.5, sh.X)
}

func TestFieldEditInvalidBufferLeavesShapeUntouched(t *testing.T) {
	sh := newRect(t)
	cases := []string{"", "-", "1.2.3", "--4"}
	for _, input := range cases {
		e := NewFieldEdit(sh, FieldWidth)
		e.Clear()
		e.InsertDigits(input)
		assert.False(t, e.Commit(sh), "input %q", input)
		assert.Equal(t, 80.0, sh.Width, "input %q", input)
	}
}

func TestFieldEditClampsSizeToMinimum(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldHeight)
	e.Clear()
	e.InsertDigits("2")
	require.True(t, e.Commit(sh))
	assert.Equal(t, shape.MinSize, sh.Height)
}

func TestFieldEditIgnoresNonNumericInput(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldY)
	e.Clear()
	e.Insert('a')
	e.Insert('4')
	e.Insert(' ')
	e.Insert('2')
	assert.Equal(t, "42", e.Buffer())
}

func TestFieldEditRotationConvertsDegrees(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldRotation)
	e.Clear()
	e.InsertDigits("45")
	require.True(t, e.Commit(sh))
	assert.InDelta(t, math.Pi/4, sh.Rotation, 1e-9)
}

func TestTextEditCursorOperations(t *testing.T) {
	sh := newRect(t)
	require.NoError(t, sh.SetText("ab"))
	e := NewTextEdit(sh)

	e.Insert('c')
	assert.Equal(t, "abc", e.Buffer())

	e.MoveLeft()
	e.MoveLeft()
	e.Insert('x')
	assert.Equal(t, "axbc", e.Buffer())

	e.Backspace()
	assert.Equal(t, "abc", e.Buffer())

	e.MoveHome()
	e.Delete()
	assert.Equal(t, "bc", e.Buffer())

	e.MoveEnd()
	assert.Equal(t, 2, e.Cursor())
}

func TestTextEditLineKills(t *testing.T) {
	sh := newRect(t)
	require.NoError(t, sh.SetText("one two\nthree"))
	e := NewTextEdit(sh)

	e.DeleteWordBackward()
	assert.Equal(t, "one two\n", e.Buffer())

	e.MoveHome()
	e.MoveLeft() // onto the first line
	e.MoveHome()
	e.DeleteToEndOfLine()
	assert.Equal(t, "\n", e.Buffer())
}

func TestTextEditCommitValidatesMarkup(t *testing.T) {
	sh := newRect(t)
	require.NoError(t, sh.SetText("v_1"))
	e := NewTextEdit(sh)

	e.InsertString("^{up")
	err := e.Commit(sh)
	require.Error(t, err)
	assert.Equal(t, "v_1", sh.Text)
	assert.Equal(t, "v_1^{up", e.Buffer())

	e.Insert('}')
	require.NoError(t, e.Commit(sh))
	assert.Equal(t, "v_1^{up}", sh.Text)
}

func TestFieldEditCancelRestoresOriginal(t *testing.T) {
	sh := newRect(t)
	e := NewFieldEdit(sh, FieldX)
	e.Clear()
	e.InsertDigits("999")
	assert.Equal(t, 10.0, e.Cancel())
	assert.Equal(t, 10.0, sh.X)
}
