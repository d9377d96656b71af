// Package shape defines the primitive diagram entities: rectangles,
// ellipses, triangles, parallelograms, trapezoids, and line/arrow
// shapes with bindable endpoints. A Shape owns its transform, style,
// and embedded markup text; all mutation goes through methods that
// uphold the minimum-size and skew-range invariants.
package shape

import (
	"fmt"
	"math"

	"doodle/geometry"
	"doodle/markup"
)

// Kind identifies the shape variant.
type Kind string

const (
	KindRect          Kind = "rect"
	KindEllipse       Kind = "ellipse"
	KindTriangle      Kind = "triangle"
	KindParallelogram Kind = "parallelogram"
	KindTrapezoid     Kind = "trapezoid"
	KindLine          Kind = "line"
	KindArrow         Kind = "arrow"
	KindBidiArrow     Kind = "bidi-arrow"
)

// IsLinear reports whether the kind is endpoint-based rather than
// box-based.
func (k Kind) IsLinear() bool {
	return k == KindLine || k == KindArrow || k == KindBidiArrow
}

// Valid reports whether k is a known shape kind.
func (k Kind) Valid() bool {
	switch k {
	case KindRect, KindEllipse, KindTriangle, KindParallelogram,
		KindTrapezoid, KindLine, KindArrow, KindBidiArrow:
		return true
	}
	return false
}

// Geometry constants. MinSize is the floor below which a shape would
// degenerate to invisibility; SkewMin bounds the skew angle away from
// the ends of its (0, pi) interval.
const (
	MinSize     = 8.0
	SkewMin     = 0.175 // ~10 degrees
	DefaultSkew = math.Pi / 3
	TextPadding = 8.0
)

// StrokePattern selects the stroke dash style.
type StrokePattern string

const (
	StrokeSolid  StrokePattern = "solid"
	StrokeDashed StrokePattern = "dashed"
	StrokeDotted StrokePattern = "dotted"
)

// Valid reports whether p is a known stroke pattern.
func (p StrokePattern) Valid() bool {
	return p == StrokeSolid || p == StrokeDashed || p == StrokeDotted
}

// Align selects horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Valid reports whether a is a known alignment.
func (a Align) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// Font selects the text font family.
type Font string

const (
	FontProportional Font = "proportional"
	FontMonospace    Font = "monospace"
)

// Valid reports whether f is a known font family.
func (f Font) Valid() bool {
	return f == FontProportional || f == FontMonospace
}

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Style carries the visual attributes of a shape.
type Style struct {
	StrokeWidth float64       `json:"strokeWidth"`
	Pattern     StrokePattern `json:"pattern"`
	Fill        *Color        `json:"fill,omitempty"` // nil means no fill
	TextColor   Color         `json:"textColor"`
	TextSize    float64       `json:"textSize"`
	Align       Align         `json:"align"`
	Font        Font          `json:"font"`
}

// DefaultStyle returns the style new shapes are created with.
func DefaultStyle() Style {
	return Style{
		StrokeWidth: 2,
		Pattern:     StrokeSolid,
		Fill:        &Color{R: 255, G: 255, B: 255, A: 0},
		TextColor:   Color{R: 30, G: 30, B: 30, A: 255},
		TextSize:    16,
		Align:       AlignCenter,
		Font:        FontProportional,
	}
}

// Binding attaches a line endpoint to another shape's boundary. Norm is
// a normalized anchor in the target's unrotated local frame, each
// coordinate within [-0.5, 0.5]; the scene resolves it to a concrete
// point against the target's current transform.
type Binding struct {
	ShapeID int            `json:"shapeId"`
	Norm    geometry.Point `json:"norm"`
}

// Shape is a primitive diagram entity. Box kinds use X/Y/Width/Height
// with Rotation about the center; linear kinds use endpoints A and B
// with optional bindings.
type Shape struct {
	ID           int     `json:"id"`
	Kind         Kind    `json:"kind"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Rotation     float64 `json:"rotation,omitempty"`
	TextRotation float64 `json:"textRotation,omitempty"`
	Skew         float64 `json:"skew,omitempty"` // parallelogram/trapezoid only
	Text         string  `json:"text,omitempty"`
	Style        Style   `json:"style"`
	SnapEnabled  bool    `json:"snapEnabled"`

	A            geometry.Point `json:"a,omitempty"`
	B            geometry.Point `json:"b,omitempty"`
	StartBinding *Binding       `json:"startBinding,omitempty"`
	EndBinding   *Binding       `json:"endBinding,omitempty"`
}

// ValidationError reports a rejected shape edit; the shape retains its
// prior state.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("shape: invalid %s: %s", e.Field, e.Msg)
}

// New creates a box shape of the given kind. The transform must honor
// the minimum size; callers clamp first or accept the failure.
func New(kind Kind, x, y, w, h float64, style Style) (*Shape, error) {
	if !kind.Valid() || kind.IsLinear() {
		return nil, &ValidationError{Field: "kind", Msg: fmt.Sprintf("%q is not a box kind", kind)}
	}
	if err := geometry.CheckFinite("shape", x, y, w, h); err != nil {
		return nil, err
	}
	if w < MinSize || h < MinSize {
		return nil, &ValidationError{Field: "size", Msg: fmt.Sprintf("%gx%g below minimum %g", w, h, MinSize)}
	}
	s := &Shape{
		Kind:        kind,
		X:           x,
		Y:           y,
		Width:       w,
		Height:      h,
		Style:       style,
		SnapEnabled: true,
	}
	if kind == KindParallelogram || kind == KindTrapezoid {
		s.Skew = DefaultSkew
	}
	return s, nil
}

// NewLine creates a line, arrow, or bidirectional arrow between two
// free endpoints.
func NewLine(kind Kind, a, b geometry.Point, style Style) (*Shape, error) {
	if !kind.IsLinear() {
		return nil, &ValidationError{Field: "kind", Msg: fmt.Sprintf("%q is not a line kind", kind)}
	}
	if err := geometry.CheckFinite("shape", a.X, a.Y, b.X, b.Y); err != nil {
		return nil, err
	}
	return &Shape{Kind: kind, A: a, B: b, Style: style, SnapEnabled: true}, nil
}

// EntityID returns the shape's scene identifier.
func (s *Shape) EntityID() int {
	return s.ID
}

// Rect returns the unrotated transform rectangle.
func (s *Shape) Rect() geometry.Rect {
	return geometry.RectFromSize(s.X, s.Y, s.Width, s.Height)
}

// Center returns the rotation center of the shape.
func (s *Shape) Center() geometry.Point {
	if s.Kind.IsLinear() {
		return geometry.RectFromPoints(s.A, s.B).Center()
	}
	return s.Rect().Center()
}

// MoveBy translates the shape without altering size or rotation. Free
// endpoints of linear shapes move; bound endpoints are left to binding
// resolution.
func (s *Shape) MoveBy(dx, dy float64) {
	if s.Kind.IsLinear() {
		if s.StartBinding == nil {
			s.A = s.A.Add(dx, dy)
		}
		if s.EndBinding == nil {
			s.B = s.B.Add(dx, dy)
		}
		return
	}
	s.X += dx
	s.Y += dy
}

// Vertices returns the shape outline as an ordered point sequence in
// document space. Ellipses are sampled; linear kinds return their
// stored endpoints (bindings unresolved).
func (s *Shape) Vertices() []geometry.Point {
	r := s.Rect()
	switch s.Kind {
	case KindRect:
		return geometry.RectCorners(r, s.Rotation)
	case KindEllipse:
		return geometry.EllipsePoints(r, s.Rotation)
	case KindTriangle:
		return geometry.TriangleCorners(r, s.Rotation)
	case KindParallelogram:
		return geometry.ParallelogramCorners(r, s.Rotation, s.Skew)
	case KindTrapezoid:
		return geometry.TrapezoidCorners(r, s.Rotation, s.Skew)
	default:
		return []geometry.Point{s.A, s.B}
	}
}

// Bounds returns the axis-aligned bounding box of the shape outline.
func (s *Shape) Bounds() geometry.Rect {
	if s.Kind.IsLinear() {
		return geometry.RectFromPoints(s.A, s.B)
	}
	b, _ := geometry.BoundsOf(s.Vertices())
	return b
}

// SetText validates and replaces the embedded markup. On a markup
// error the shape is unchanged and the error is surfaced.
func (s *Shape) SetText(text string) error {
	if _, err := markup.Parse(text); err != nil {
		return err
	}
	s.Text = text
	return nil
}

// FitToText resizes the shape around its center so the rendered text
// bounding box plus padding fits. Shapes without text are unchanged.
func (s *Shape) FitToText() error {
	if s.Text == "" || s.Kind.IsLinear() {
		return nil
	}
	w, h, err := markup.Measure(s.Text, s.Style.TextSize)
	if err != nil {
		return err
	}
	w = math.Max(w+2*TextPadding, MinSize)
	h = math.Max(h+2*TextPadding, MinSize)
	c := s.Center()
	s.X = c.X - w/2
	s.Y = c.Y - h/2
	s.Width = w
	s.Height = h
	return nil
}

// SetSkew sets the skew angle, clamped into the valid open interval.
// Box kinds without a skew parameter reject the edit.
func (s *Shape) SetSkew(angle float64) error {
	if s.Kind != KindParallelogram && s.Kind != KindTrapezoid {
		return &ValidationError{Field: "skew", Msg: fmt.Sprintf("%q has no skew handle", s.Kind)}
	}
	if err := geometry.CheckFinite("skew", angle); err != nil {
		return err
	}
	s.Skew = ClampSkew(angle)
	return nil
}

// ClampSkew forces a skew angle into [SkewMin, pi-SkewMin].
func ClampSkew(angle float64) float64 {
	return math.Max(SkewMin, math.Min(math.Pi-SkewMin, angle))
}

// SetEndpoint moves endpoint i (0 or 1) of a linear shape to p and
// clears its binding, since a directly placed endpoint is free.
func (s *Shape) SetEndpoint(i int, p geometry.Point) error {
	if !s.Kind.IsLinear() {
		return &ValidationError{Field: "endpoint", Msg: fmt.Sprintf("%q has no endpoints", s.Kind)}
	}
	if err := geometry.CheckFinite("endpoint", p.X, p.Y); err != nil {
		return err
	}
	if i == 0 {
		s.A = p
		s.StartBinding = nil
	} else {
		s.B = p
		s.EndBinding = nil
	}
	return nil
}

// Contains reports whether p hits the shape within the threshold,
// testing in the shape's rotated local frame.
func (s *Shape) Contains(p geometry.Point, threshold float64) bool {
	switch {
	case s.Kind.IsLinear():
		return geometry.DistToSegment(p, s.A, s.B) <= threshold+s.Style.StrokeWidth
	case s.Kind == KindEllipse:
		c := s.Center()
		rx := s.Width/2 + threshold
		ry := s.Height/2 + threshold
		if rx < 1e-9 || ry < 1e-9 {
			return false
		}
		lx, ly := geometry.Rotate(p.X-c.X, p.Y-c.Y, -s.Rotation)
		dx, dy := lx/rx, ly/ry
		return dx*dx+dy*dy <= 1
	default:
		c := s.Center()
		lx, ly := geometry.Rotate(p.X-c.X, p.Y-c.Y, -s.Rotation)
		return math.Abs(lx) <= s.Width/2+threshold && math.Abs(ly) <= s.Height/2+threshold
	}
}

// Clone returns a deep copy of the shape.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.Style.Fill != nil {
		fill := *s.Style.Fill
		c.Style.Fill = &fill
	}
	if s.StartBinding != nil {
		b := *s.StartBinding
		c.StartBinding = &b
	}
	if s.EndBinding != nil {
		b := *s.EndBinding
		c.EndBinding = &b
	}
	return &c
}
