package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"doodle/geometry"
	"doodle/shape"
)

const (
	rasterPadding = 16.0
	arrowheadLen  = 12.0
	arrowheadArc  = math.Pi / 7
)

// Raster renders frames to PNG files through a gg drawing context.
// Scale maps document units to pixels.
type Raster struct {
	Scale float64
	Path  string

	regular *truetype.Font
	mono    *truetype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	font shape.Font
	size float64
}

// NewRaster creates a PNG renderer writing to path.
func NewRaster(path string, scale float64) (*Raster, error) {
	if scale <= 0 {
		scale = 1
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	mono, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Raster{
		Scale:   scale,
		Path:    path,
		regular: regular,
		mono:    mono,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

func (r *Raster) face(f shape.Font, size float64) font.Face {
	key := faceKey{font: f, size: math.Round(size*4) / 4}
	if face, ok := r.faces[key]; ok {
		return face
	}
	ttf := r.regular
	if f == shape.FontMonospace {
		ttf = r.mono
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = face
	return face
}

// Render paints the frame to the configured PNG file.
func (r *Raster) Render(f *Frame) error {
	if len(f.Items) == 0 {
		return fmt.Errorf("render: empty frame")
	}
	b := f.Bounds.Expand(rasterPadding)
	w := int(math.Ceil(b.Width() * r.Scale))
	h := int(math.Ceil(b.Height() * r.Scale))
	if w < 1 || h < 1 {
		return fmt.Errorf("render: degenerate bounds")
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(r.Scale, r.Scale)
	dc.Translate(-b.Min.X, -b.Min.Y)

	for _, it := range f.Items {
		if it.Kind.IsLinear() {
			r.drawLinear(dc, it)
		} else {
			r.drawBox(dc, it)
		}
		if it.Text != nil {
			r.drawText(dc, it.Text)
		}
	}
	return dc.SavePNG(r.Path)
}

func setStroke(dc *gg.Context, st shape.Style) {
	dc.SetColor(color.Black)
	dc.SetLineWidth(st.StrokeWidth)
	switch st.Pattern {
	case shape.StrokeDashed:
		dc.SetDash(6, 4)
	case shape.StrokeDotted:
		dc.SetDash(1.5, 3)
	default:
		dc.SetDash()
	}
}

func (r *Raster) drawBox(dc *gg.Context, it Item) {
	if it.Kind == shape.KindEllipse {
		c := it.Rect.Center()
		dc.Push()
		dc.RotateAbout(it.Rotation, c.X, c.Y)
		dc.DrawEllipse(c.X, c.Y, it.Rect.Width()/2, it.Rect.Height()/2)
		dc.Pop()
	} else {
		if len(it.Outline) == 0 {
			return
		}
		dc.MoveTo(it.Outline[0].X, it.Outline[0].Y)
		for _, p := range it.Outline[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
	}
	if fill := it.Style.Fill; fill != nil && fill.A > 0 {
		dc.SetRGBA255(int(fill.R), int(fill.G), int(fill.B), int(fill.A))
		dc.FillPreserve()
	}
	setStroke(dc, it.Style)
	dc.Stroke()
}

func (r *Raster) drawLinear(dc *gg.Context, it Item) {
	setStroke(dc, it.Style)
	dc.DrawLine(it.A.X, it.A.Y, it.B.X, it.B.Y)
	dc.Stroke()
	dc.SetDash()
	if it.Kind == shape.KindArrow || it.Kind == shape.KindBidiArrow {
		r.drawArrowhead(dc, it.A, it.B)
	}
	if it.Kind == shape.KindBidiArrow {
		r.drawArrowhead(dc, it.B, it.A)
	}
}

// drawArrowhead fills a chevron at 'to', pointing away from 'from'.
func (r *Raster) drawArrowhead(dc *gg.Context, from, to geometry.Point) {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	left := angle + math.Pi - arrowheadArc
	right := angle + math.Pi + arrowheadArc
	dc.SetColor(color.Black)
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X+arrowheadLen*math.Cos(left), to.Y+arrowheadLen*math.Sin(left))
	dc.LineTo(to.X+arrowheadLen*math.Cos(right), to.Y+arrowheadLen*math.Sin(right))
	dc.ClosePath()
	dc.Fill()
}

func (r *Raster) drawText(dc *gg.Context, tb *TextBlock) {
	dc.Push()
	if tb.Angle != 0 {
		dc.RotateAbout(tb.Angle, tb.Center.X, tb.Center.Y)
	}
	dc.SetRGBA255(int(tb.Color.R), int(tb.Color.G), int(tb.Color.B), int(tb.Color.A))
	for _, run := range tb.Layout.Runs {
		dc.SetFontFace(r.face(tb.Font, run.Size))
		dc.DrawString(run.Text, tb.Origin.X+run.X, tb.Origin.Y+run.Y)
	}
	dc.Pop()
}
