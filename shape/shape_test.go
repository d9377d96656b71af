package shape

import (
	"math"
	"testing"

	"doodle/geometry"
	"doodle/markup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRect(t *testing.T, x, y, w, h float64) *Shape {
	t.Helper()
	s, err := New(KindRect, x, y, w, h, DefaultStyle())
	require.NoError(t, err)
	return s
}

func TestNewValidation(t *testing.T) {
	t.Run("below minimum size", func(t *testing.T) {
		_, err := New(KindRect, 0, 0, MinSize-1, 20, DefaultStyle())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("non-finite transform", func(t *testing.T) {
		_, err := New(KindEllipse, math.NaN(), 0, 20, 20, DefaultStyle())
		require.ErrorIs(t, err, geometry.ErrNonFinite)
	})

	t.Run("line kind rejected by box constructor", func(t *testing.T) {
		_, err := New(KindArrow, 0, 0, 20, 20, DefaultStyle())
		require.Error(t, err)
	})

	t.Run("skewable kinds get a default skew in range", func(t *testing.T) {
		s, err := New(KindParallelogram, 0, 0, 40, 20, DefaultStyle())
		require.NoError(t, err)
		assert.Greater(t, s.Skew, SkewMin)
		assert.Less(t, s.Skew, math.Pi-SkewMin)
	})
}

func TestResizeKeepsAnchorAndFloor(t *testing.T) {
	t.Run("SE handle keeps NW corner", func(t *testing.T) {
		s := mustRect(t, 10, 10, 40, 30)
		require.NoError(t, s.Resize(HandleSE, geometry.Point{X: 90, Y: 70}, ResizeOptions{}))
		assert.Equal(t, 10.0, s.X)
		assert.Equal(t, 10.0, s.Y)
		assert.Equal(t, 80.0, s.Width)
		assert.Equal(t, 60.0, s.Height)
	})

	t.Run("dragging past the anchor clamps to the floor", func(t *testing.T) {
		s := mustRect(t, 10, 10, 40, 30)
		require.NoError(t, s.Resize(HandleE, geometry.Point{X: -100, Y: 25}, ResizeOptions{}))
		assert.Equal(t, MinSize, s.Width)
		assert.Equal(t, 10.0, s.X)
	})

	t.Run("any resize keeps minimum size", func(t *testing.T) {
		s := mustRect(t, 0, 0, 50, 50)
		targets := []geometry.Point{
			{X: 25, Y: 25}, {X: -400, Y: 1}, {X: 3, Y: 900}, {X: 49, Y: 49},
		}
		for _, h := range []Handle{HandleNW, HandleN, HandleNE, HandleW, HandleE, HandleSW, HandleS, HandleSE} {
			for _, p := range targets {
				require.NoError(t, s.Resize(h, p, ResizeOptions{}))
				assert.GreaterOrEqual(t, s.Width, MinSize)
				assert.GreaterOrEqual(t, s.Height, MinSize)
			}
		}
	})

	t.Run("lock aspect forces a square", func(t *testing.T) {
		s := mustRect(t, 0, 0, 40, 30)
		require.NoError(t, s.Resize(HandleSE, geometry.Point{X: 80, Y: 20}, ResizeOptions{LockAspect: true}))
		assert.Equal(t, s.Width, s.Height)
		assert.Equal(t, 80.0, s.Width) // longer dimension wins
		assert.Equal(t, 0.0, s.X)
		assert.Equal(t, 0.0, s.Y)
	})

	t.Run("rotated shape resizes in its local frame", func(t *testing.T) {
		s := mustRect(t, -20, -10, 40, 20)
		s.Rotation = math.Pi / 2
		// With a quarter turn, dragging the E handle along world +Y
		// grows the local width.
		require.NoError(t, s.Resize(HandleE, geometry.Point{X: 0, Y: 40}, ResizeOptions{}))
		assert.InDelta(t, 60, s.Width, 1e-9)
	})

	t.Run("non-finite target rejected", func(t *testing.T) {
		s := mustRect(t, 0, 0, 40, 30)
		err := s.Resize(HandleSE, geometry.Point{X: math.Inf(1), Y: 0}, ResizeOptions{})
		require.ErrorIs(t, err, geometry.ErrNonFinite)
		assert.Equal(t, 40.0, s.Width)
	})
}

func TestRotateTo(t *testing.T) {
	s := mustRect(t, -20, -20, 40, 40)

	require.NoError(t, s.RotateTo(geometry.Point{X: 0, Y: -50}, false))
	assert.InDelta(t, 0, s.Rotation, 1e-9)

	require.NoError(t, s.RotateTo(geometry.Point{X: 50, Y: 0}, false))
	assert.InDelta(t, math.Pi/2, s.Rotation, 1e-9)

	// 40 degrees snaps to 45 with the modifier held.
	angle := 40 * math.Pi / 180
	p := geometry.Point{X: math.Cos(angle - math.Pi/2), Y: math.Sin(angle - math.Pi/2)}
	require.NoError(t, s.RotateTo(p, true))
	assert.InDelta(t, math.Pi/4, s.Rotation, 1e-9)
}

func TestSkewClamped(t *testing.T) {
	s, err := New(KindTrapezoid, 0, 0, 60, 30, DefaultStyle())
	require.NoError(t, err)

	for _, angle := range []float64{-3, 0, 0.0001, math.Pi, 10} {
		require.NoError(t, s.SetSkew(angle))
		assert.GreaterOrEqual(t, s.Skew, SkewMin)
		assert.LessOrEqual(t, s.Skew, math.Pi-SkewMin)
	}

	require.NoError(t, s.SetSkew(math.Pi/3))
	assert.InDelta(t, math.Pi/3, s.Skew, 1e-9)

	rect := mustRect(t, 0, 0, 20, 20)
	require.Error(t, rect.SetSkew(1))
}

func TestSkewForPointer(t *testing.T) {
	s, err := New(KindParallelogram, -30, -15, 60, 30, DefaultStyle())
	require.NoError(t, err)

	// Pointer straight above the center means vertical sides.
	assert.InDelta(t, math.Pi/2, s.SkewForPointer(geometry.Point{X: 0, Y: -15}), 1e-9)
	// Pointer right of center leans the shape right.
	assert.Less(t, s.SkewForPointer(geometry.Point{X: 15, Y: -15}), math.Pi/2)
}

func TestSetTextRejectsBadMarkupAndKeepsPrior(t *testing.T) {
	s := mustRect(t, 0, 0, 40, 40)
	require.NoError(t, s.SetText("v_1"))

	err := s.SetText("v_{oops")
	var perr *markup.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "v_1", s.Text)
}

func TestFitToText(t *testing.T) {
	s := mustRect(t, 0, 0, 200, 100)
	require.NoError(t, s.SetText("hello"))
	require.NoError(t, s.FitToText())

	w, h, err := markup.Measure("hello", s.Style.TextSize)
	require.NoError(t, err)
	assert.InDelta(t, w+2*TextPadding, s.Width, 1e-9)
	assert.InDelta(t, h+2*TextPadding, s.Height, 1e-9)
	// Center preserved.
	assert.InDelta(t, 100, s.Center().X, 1e-9)
	assert.InDelta(t, 50, s.Center().Y, 1e-9)
}

func TestVerticesAndBounds(t *testing.T) {
	t.Run("triangle has three vertices", func(t *testing.T) {
		s, err := New(KindTriangle, 0, 0, 40, 20, DefaultStyle())
		require.NoError(t, err)
		assert.Len(t, s.Vertices(), 3)
	})

	t.Run("rotated bounds grow", func(t *testing.T) {
		s := mustRect(t, 0, 0, 40, 20)
		aligned := s.Bounds()
		s.Rotation = math.Pi / 4
		rotated := s.Bounds()
		assert.Greater(t, rotated.Height(), aligned.Height())
	})

	t.Run("line bounds span endpoints", func(t *testing.T) {
		s, err := NewLine(KindArrow, geometry.Point{X: 5, Y: 5}, geometry.Point{X: -5, Y: 15}, DefaultStyle())
		require.NoError(t, err)
		b := s.Bounds()
		assert.Equal(t, geometry.Point{X: -5, Y: 5}, b.Min)
		assert.Equal(t, geometry.Point{X: 5, Y: 15}, b.Max)
	})
}

func TestMoveByRespectsBindings(t *testing.T) {
	s, err := NewLine(KindLine, geometry.Point{}, geometry.Point{X: 10, Y: 0}, DefaultStyle())
	require.NoError(t, err)
	s.EndBinding = &Binding{ShapeID: 7, Norm: geometry.Point{X: 0.5}}

	s.MoveBy(5, 5)
	assert.Equal(t, geometry.Point{X: 5, Y: 5}, s.A)
	// The bound endpoint stays put; resolution follows the target.
	assert.Equal(t, geometry.Point{X: 10, Y: 0}, s.B)
}

func TestContains(t *testing.T) {
	s := mustRect(t, 0, 0, 40, 20)
	assert.True(t, s.Contains(geometry.Point{X: 20, Y: 10}, 0))
	assert.False(t, s.Contains(geometry.Point{X: 50, Y: 10}, 0))

	s.Rotation = math.Pi / 2
	// After a quarter turn the long axis is vertical.
	assert.True(t, s.Contains(geometry.Point{X: 20, Y: 29}, 0))
	assert.False(t, s.Contains(geometry.Point{X: 39, Y: 10}, 0))
}

func TestHandlePositions(t *testing.T) {
	t.Run("compass and rotate handles on a rect", func(t *testing.T) {
		s := mustRect(t, 10, 10, 40, 30)
		hs := s.HandlePositions()
		require.Len(t, hs, 9)
		assert.Equal(t, geometry.Point{X: 10, Y: 10}, hs[HandleNW])
		assert.Equal(t, geometry.Point{X: 50, Y: 40}, hs[HandleSE])
		assert.Equal(t, geometry.Point{X: 30, Y: 10}, hs[HandleN])
		assert.Equal(t, geometry.Point{X: 30, Y: 10 - rotateHandleOffset}, hs[HandleRotate])
	})

	t.Run("handles rotate with the shape", func(t *testing.T) {
		s := mustRect(t, 10, 10, 40, 30)
		s.Rotation = math.Pi / 2
		hs := s.HandlePositions()
		assert.InDelta(t, 45, hs[HandleN].X, 1e-9)
		assert.InDelta(t, 25, hs[HandleN].Y, 1e-9)
		assert.InDelta(t, 45+rotateHandleOffset, hs[HandleRotate].X, 1e-9)
		assert.InDelta(t, 25, hs[HandleRotate].Y, 1e-9)
	})

	t.Run("parallelogram skew handle rides the sheared top center", func(t *testing.T) {
		s, err := New(KindParallelogram, 0, 0, 40, 30, DefaultStyle())
		require.NoError(t, err)
		require.NoError(t, s.SetSkew(math.Pi/4))
		hs := s.HandlePositions()
		require.Len(t, hs, 10)
		assert.InDelta(t, 35, hs[HandleSkew].X, 1e-9)
		assert.InDelta(t, 0, hs[HandleSkew].Y, 1e-9)
	})

	t.Run("trapezoid skew handle rides the leaning top-left corner", func(t *testing.T) {
		s, err := New(KindTrapezoid, 0, 0, 40, 30, DefaultStyle())
		require.NoError(t, err)
		require.NoError(t, s.SetSkew(math.Pi/4))
		hs := s.HandlePositions()
		assert.InDelta(t, 30, hs[HandleSkew].X, 1e-9)
		assert.InDelta(t, 0, hs[HandleSkew].Y, 1e-9)
	})

	t.Run("linear kinds have none", func(t *testing.T) {
		s, err := NewLine(KindArrow, geometry.Point{}, geometry.Point{X: 50}, DefaultStyle())
		require.NoError(t, err)
		assert.Nil(t, s.HandlePositions())
	})
}

func TestCloneIsDeep(t *testing.T) {
	s := mustRect(t, 0, 0, 40, 20)
	c := s.Clone()
	c.Style.Fill.R = 9
	assert.NotEqual(t, c.Style.Fill.R, s.Style.Fill.R)
}
