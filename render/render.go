// Package render flattens a scene into a resolved draw list and paints
// it through pluggable backends. Building a frame resolves everything a
// backend needs up front: group members in z-order, connector endpoints
// against their bindings, and text markup laid out into positioned
// glyph runs.
package render

import (
	"doodle/geometry"
	"doodle/markup"
	"doodle/scene"
	"doodle/shape"
)

// TextBlock is a laid-out text label positioned in document space.
// Layout coordinates are relative to Origin; Angle rotates the whole
// block about Center.
type TextBlock struct {
	Layout *markup.Layout
	Origin geometry.Point
	Center geometry.Point
	Angle  float64
	Font   shape.Font
	Color  shape.Color
}

// Item is one resolved shape ready to draw. Box kinds carry their
// outline (and the unrotated rect plus rotation, which ellipse
// backends prefer over the sampled outline); linear kinds carry
// resolved endpoints.
type Item struct {
	ID       int
	Kind     shape.Kind
	Style    shape.Style
	Selected bool

	Outline  []geometry.Point
	Rect     geometry.Rect
	Rotation float64
	Skew     float64

	A, B geometry.Point

	Text *TextBlock
}

// Frame is a complete resolved scene in draw order, back to front.
type Frame struct {
	Items  []Item
	Bounds geometry.Rect
}

// Renderer paints a frame onto some backend surface.
type Renderer interface {
	Render(f *Frame) error
}

// Build resolves the scene into a frame. Shapes inside groups inherit
// their root's z-position; within a group, children draw in stored
// order. Shapes carrying malformed markup contribute no text block
// rather than failing the frame.
func Build(s *scene.Scene) *Frame {
	f := &Frame{}
	for _, root := range s.TopLevel() {
		appendEntity(s, f, root)
	}
	first := true
	for _, it := range f.Items {
		b := itemBounds(it)
		if first {
			f.Bounds = b
			first = false
		} else {
			f.Bounds = f.Bounds.Union(b)
		}
	}
	return f
}

func appendEntity(s *scene.Scene, f *Frame, id int) {
	if g, ok := s.Group(id); ok {
		for _, child := range g.Children {
			appendEntity(s, f, child)
		}
		return
	}
	sh, ok := s.Shape(id)
	if !ok {
		return
	}
	it := Item{
		ID:       sh.ID,
		Kind:     sh.Kind,
		Style:    sh.Style,
		Selected: s.IsSelected(s.Root(sh.ID)),
		Rotation: sh.Rotation,
		Skew:     sh.Skew,
	}
	if sh.Kind.IsLinear() {
		it.A, it.B = s.ResolveEndpoints(sh)
	} else {
		it.Rect = sh.Rect()
		it.Outline = sh.Vertices()
	}
	it.Text = buildText(sh, it)
	f.Items = append(f.Items, it)
}

// buildText lays the shape's markup out and anchors it inside the
// shape. Connector labels center on the segment midpoint.
func buildText(sh *shape.Shape, it Item) *TextBlock {
	if sh.Text == "" {
		return nil
	}
	l, err := markup.LayoutText(sh.Text, sh.Style.TextSize)
	if err != nil || len(l.Runs) == 0 {
		return nil
	}
	var center geometry.Point
	if sh.Kind.IsLinear() {
		center = geometry.RectFromPoints(it.A, it.B).Center()
	} else {
		center = sh.Center()
	}
	origin := geometry.Point{X: center.X - l.Width/2, Y: center.Y - l.Height/2}
	switch sh.Style.Align {
	case shape.AlignLeft:
		origin.X = sh.X + shape.TextPadding
	case shape.AlignRight:
		origin.X = sh.X + sh.Width - l.Width - shape.TextPadding
	}
	angle := sh.Rotation + sh.TextRotation
	if sh.Kind.IsLinear() {
		angle = sh.TextRotation
	}
	return &TextBlock{
		Layout: l,
		Origin: origin,
		Center: center,
		Angle:  angle,
		Font:   sh.Style.Font,
		Color:  sh.Style.TextColor,
	}
}

func itemBounds(it Item) geometry.Rect {
	if it.Kind.IsLinear() {
		return geometry.RectFromPoints(it.A, it.B)
	}
	b, _ := geometry.BoundsOf(it.Outline)
	return b
}
