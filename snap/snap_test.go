package snap

import (
	"math"
	"testing"

	"doodle/geometry"
	"doodle/shape"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRounding(t *testing.T) {
	p := Point(geometry.Point{X: 23, Y: -9}, 16)
	assert.Equal(t, geometry.Point{X: 16, Y: -16}, p)

	// Non-positive grid disables snapping.
	p = Point(geometry.Point{X: 23, Y: -9}, 0)
	assert.Equal(t, geometry.Point{X: 23, Y: -9}, p)
}

func TestShapeToGrid(t *testing.T) {
	t.Run("snaps the top-left corner", func(t *testing.T) {
		s, err := shape.New(shape.KindRect, 21, 30, 40, 40, shape.DefaultStyle())
		require.NoError(t, err)
		ShapeToGrid(s, 16)
		assert.Equal(t, 16.0, s.X)
		assert.Equal(t, 32.0, s.Y)
	})

	t.Run("snap-disabled shapes are excluded", func(t *testing.T) {
		s, err := shape.New(shape.KindRect, 21, 30, 40, 40, shape.DefaultStyle())
		require.NoError(t, err)
		s.SnapEnabled = false
		ShapeToGrid(s, 16)
		assert.Equal(t, 21.0, s.X)
		assert.Equal(t, 30.0, s.Y)
	})

	t.Run("lines snap endpoint A", func(t *testing.T) {
		s, err := shape.NewLine(shape.KindLine, geometry.Point{X: 7, Y: 7}, geometry.Point{X: 30, Y: 7}, shape.DefaultStyle())
		require.NoError(t, err)
		ShapeToGrid(s, 16)
		assert.Equal(t, geometry.Point{X: 0, Y: 0}, s.A)
		assert.Equal(t, geometry.Point{X: 23, Y: 0}, s.B)
	})
}

func TestAngle(t *testing.T) {
	got := Angle(40*math.Pi/180, shape.RotateSnapStep)
	assert.InDelta(t, math.Pi/4, got, 1e-9)
}

func TestConstrainEndpoint(t *testing.T) {
	anchor := geometry.Point{}

	t.Run("near-horizontal flattens", func(t *testing.T) {
		p := ConstrainEndpoint(anchor, geometry.Point{X: 100, Y: 10})
		assert.Equal(t, geometry.Point{X: 100, Y: 0}, p)
	})

	t.Run("near-vertical straightens", func(t *testing.T) {
		p := ConstrainEndpoint(anchor, geometry.Point{X: -10, Y: 100})
		assert.Equal(t, geometry.Point{X: 0, Y: 100}, p)
	})

	t.Run("leftward near-horizontal flattens", func(t *testing.T) {
		p := ConstrainEndpoint(anchor, geometry.Point{X: -100, Y: 10})
		assert.Equal(t, geometry.Point{X: -100, Y: 0}, p)
	})

	t.Run("diagonal stays free", func(t *testing.T) {
		p := ConstrainEndpoint(anchor, geometry.Point{X: 100, Y: 100})
		assert.Equal(t, geometry.Point{X: 100, Y: 100}, p)
	})
}
