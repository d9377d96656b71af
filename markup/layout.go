package markup

import "math"

// Layout metric constants. Glyph advance and line height follow the
// same ratios the renderers assume for both font families; script runs
// shrink by ScriptScale per nesting level and shift off the baseline by
// ScriptOffset of the base size per level.
const (
	CharAdvance  = 0.6
	AscentRatio  = 0.8
	DescentRatio = 0.4
	ScriptScale  = 0.7
	ScriptOffset = 0.35
)

// PlacedRun is a leaf run positioned within a Layout. X is the left
// edge, Y the baseline measured from the top of the layout box, Size
// the effective glyph size after script scaling.
type PlacedRun struct {
	Text   string
	Script Script
	Depth  int
	X, Y   float64
	Size   float64
}

// Layout is the resolved geometry of a markup string at a given base
// text size.
type Layout struct {
	Runs   []PlacedRun
	Width  float64
	Height float64
}

// LayoutText parses input and computes glyph layout at the given base
// size. A ParseError from malformed markup is returned unchanged.
func LayoutText(input string, size float64) (*Layout, error) {
	runs, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return layoutRuns(Flatten(runs), size), nil
}

// Measure returns the bounding box of the rendered markup, used for
// fit-to-text sizing.
func Measure(input string, size float64) (w, h float64, err error) {
	l, err := LayoutText(input, size)
	if err != nil {
		return 0, 0, err
	}
	return l.Width, l.Height, nil
}

// baselineShift returns the vertical offset of a run's baseline from
// the line baseline. Subscripts shift down, superscripts up, in
// proportion to nesting depth.
func baselineShift(r Run, base float64) float64 {
	if r.Script == Normal || r.Depth == 0 {
		return 0
	}
	shift := ScriptOffset * base * float64(r.Depth)
	if r.Script == Sup {
		return -shift
	}
	return shift
}

func runSize(r Run, base float64) float64 {
	return base * math.Pow(ScriptScale, float64(r.Depth))
}

// splitLines breaks flattened leaves on newline characters, yielding
// one leaf slice per output line.
func splitLines(leaves []Run) [][]Run {
	lines := [][]Run{nil}
	for _, leaf := range leaves {
		text := leaf.Text
		for {
			idx := -1
			for i, c := range text {
				if c == '\n' {
					idx = i
					break
				}
			}
			if idx < 0 {
				break
			}
			if idx > 0 {
				part := leaf
				part.Text = text[:idx]
				lines[len(lines)-1] = append(lines[len(lines)-1], part)
			}
			lines = append(lines, nil)
			text = text[idx+1:]
		}
		if text != "" {
			part := leaf
			part.Text = text
			lines[len(lines)-1] = append(lines[len(lines)-1], part)
		}
	}
	return lines
}

func layoutRuns(leaves []Run, base float64) *Layout {
	out := &Layout{}
	var y float64
	for _, line := range splitLines(leaves) {
		ascent := AscentRatio * base
		descent := DescentRatio * base
		for _, leaf := range line {
			sz := runSize(leaf, base)
			dy := baselineShift(leaf, base)
			ascent = math.Max(ascent, AscentRatio*sz-dy)
			descent = math.Max(descent, DescentRatio*sz+dy)
		}
		baseline := y + ascent
		var x float64
		for _, leaf := range line {
			sz := runSize(leaf, base)
			placed := PlacedRun{
				Text:   leaf.Text,
				Script: leaf.Script,
				Depth:  leaf.Depth,
				X:      x,
				Y:      baseline + baselineShift(leaf, base),
				Size:   sz,
			}
			out.Runs = append(out.Runs, placed)
			x += float64(len([]rune(leaf.Text))) * CharAdvance * sz
		}
		out.Width = math.Max(out.Width, x)
		y += ascent + descent
	}
	out.Height = y
	return out
}
