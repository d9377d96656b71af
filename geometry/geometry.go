// Package geometry contains the fundamental 2D math used throughout the
// doodle scene engine: points, rectangles, rotation, and the boundary
// computations for each shape outline.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is returned when a NaN or infinite coordinate reaches the
// kernel. This indicates an upstream bug; callers must surface it rather
// than clamp.
var ErrNonFinite = errors.New("geometry: non-finite input")

// Point represents a 2D coordinate in document space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return Finite(p.X, p.Y)
}

// Finite reports whether every value is a finite number.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CheckFinite validates coordinates entering the kernel, wrapping
// ErrNonFinite with the operation name.
func CheckFinite(op string, vs ...float64) error {
	if !Finite(vs...) {
		return fmt.Errorf("%s: %w", op, ErrNonFinite)
	}
	return nil
}

// Rotate rotates the vector (x, y) by angle radians.
func Rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// RotateAbout rotates p about center by angle radians.
func RotateAbout(p, center Point, angle float64) Point {
	x, y := Rotate(p.X-center.X, p.Y-center.Y, angle)
	return Point{X: center.X + x, Y: center.Y + y}
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectFromSize builds a Rect from a top-left corner and dimensions.
func RectFromSize(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// RectFromPoints builds the smallest Rect containing both points.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// IsValid reports whether the rectangle has positive area.
func (r Rect) IsValid() bool {
	return r.Max.X > r.Min.X && r.Max.Y > r.Min.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Min: r.Min.Add(dx, dy), Max: r.Max.Add(dx, dy)}
}

// Expand returns r grown by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{Min: r.Min.Add(-d, -d), Max: r.Max.Add(d, d)}
}

// Contains checks if a point is within the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// BoundsOf returns the axis-aligned bounding box of a point set. The
// second return is false for an empty set.
func BoundsOf(points []Point) (Rect, bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r, true
}

// DistToSegment returns the distance from p to the segment a-b.
func DistToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	len2 := ab.X*ab.X + ab.Y*ab.Y
	if len2 <= 1e-12 {
		return p.Dist(a)
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / len2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{X: a.X + ab.X*t, Y: a.Y + ab.Y*t})
}
