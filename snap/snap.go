// Package snap computes grid-snapped positions and the shift-modifier
// constraints applied during interactive transforms. It is consulted by
// the scene graph and never mutates entities itself.
package snap

import (
	"math"

	"doodle/geometry"
	"doodle/shape"
)

// DefaultGridSize is the grid spacing used when no configuration
// overrides it.
const DefaultGridSize = 16.0

// OrthoTolerance is how close to horizontal or vertical a constrained
// line must already be before it snaps onto the axis.
const OrthoTolerance = math.Pi / 8

// Point rounds each coordinate to the nearest multiple of gridSize. A
// non-positive grid disables snapping.
func Point(p geometry.Point, gridSize float64) geometry.Point {
	if gridSize <= 0 {
		return p
	}
	return geometry.Point{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

// Value rounds a scalar to the nearest multiple of gridSize.
func Value(v, gridSize float64) float64 {
	if gridSize <= 0 {
		return v
	}
	return math.Round(v/gridSize) * gridSize
}

// ShapeToGrid translates a shape so its anchor (top-left for box
// kinds, endpoint A for lines) lands on the grid. Shapes flagged
// snap-disabled are left alone.
func ShapeToGrid(s *shape.Shape, gridSize float64) {
	if gridSize <= 0 || !s.SnapEnabled {
		return
	}
	var anchor geometry.Point
	if s.Kind.IsLinear() {
		anchor = s.A
	} else {
		anchor = geometry.Point{X: s.X, Y: s.Y}
	}
	snapped := Point(anchor, gridSize)
	s.MoveBy(snapped.X-anchor.X, snapped.Y-anchor.Y)
}

// Angle snaps an angle to the nearest multiple of step.
func Angle(angle, step float64) float64 {
	if step <= 0 {
		return angle
	}
	return math.Round(angle/step) * step
}

// ConstrainEndpoint applies the shift constraint for line kinds: when
// the segment from anchor to p is within OrthoTolerance of an axis it
// snaps onto that axis, otherwise the free angle is kept.
func ConstrainEndpoint(anchor, p geometry.Point) geometry.Point {
	dx, dy := p.X-anchor.X, p.Y-anchor.Y
	angle := math.Atan2(dy, dx)
	fold := math.Abs(angle)
	if fold > math.Pi/2 {
		fold = math.Pi - fold
	}
	switch {
	case fold <= OrthoTolerance:
		return geometry.Point{X: p.X, Y: anchor.Y}
	case math.Abs(fold-math.Pi/2) <= OrthoTolerance:
		return geometry.Point{X: anchor.X, Y: p.Y}
	default:
		return p
	}
}
