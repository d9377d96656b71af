package shape

import (
	"fmt"
	"math"

	"doodle/geometry"
)

// Handle identifies an interactive transform handle on a selected
// shape: the eight compass handles, the rotation handle above the top
// edge, and the skew handle on skewable kinds.
type Handle int

const (
	HandleNW Handle = iota
	HandleN
	HandleNE
	HandleW
	HandleE
	HandleSW
	HandleS
	HandleSE
	HandleRotate
	HandleSkew
)

// RotateSnapStep is the angle rotation snaps to with the shift
// modifier held: 15 degree multiples.
const RotateSnapStep = math.Pi / 12

// rotateHandleOffset is how far the rotation handle floats above the
// top edge.
const rotateHandleOffset = 24.0

// ResizeOptions modify an interactive resize.
type ResizeOptions struct {
	// LockAspect forces the shorter dimension equal to the longer,
	// yielding a square or circle (shift on corner handles).
	LockAspect bool
}

// Resize moves the given handle to target in document space, keeping
// the opposite edge or corner anchored and honoring the minimum size.
// Rotation and skew handles are dispatched to RotateTo and
// SetSkew/SkewForPointer by the caller; Resize rejects them.
func (s *Shape) Resize(h Handle, target geometry.Point, opts ResizeOptions) error {
	if s.Kind.IsLinear() {
		return &ValidationError{Field: "resize", Msg: fmt.Sprintf("%q resizes via endpoints", s.Kind)}
	}
	if h == HandleRotate || h == HandleSkew {
		return &ValidationError{Field: "resize", Msg: "not a compass handle"}
	}
	if err := geometry.CheckFinite("resize", target.X, target.Y); err != nil {
		return err
	}

	// Work in the unrotated local frame about the current center. The
	// stored rect is axis-aligned there, so edge arithmetic is direct.
	c := s.Center()
	lx, ly := geometry.Rotate(target.X-c.X, target.Y-c.Y, -s.Rotation)
	local := geometry.Point{X: c.X + lx, Y: c.Y + ly}

	min := geometry.Point{X: s.X, Y: s.Y}
	max := geometry.Point{X: s.X + s.Width, Y: s.Y + s.Height}

	movesLeft := h == HandleNW || h == HandleW || h == HandleSW
	movesRight := h == HandleNE || h == HandleE || h == HandleSE
	movesTop := h == HandleNW || h == HandleN || h == HandleNE
	movesBottom := h == HandleSW || h == HandleS || h == HandleSE

	if movesLeft {
		min.X = math.Min(local.X, max.X-MinSize)
	}
	if movesRight {
		max.X = math.Max(local.X, min.X+MinSize)
	}
	if movesTop {
		min.Y = math.Min(local.Y, max.Y-MinSize)
	}
	if movesBottom {
		max.Y = math.Max(local.Y, min.Y+MinSize)
	}

	corner := (movesLeft || movesRight) && (movesTop || movesBottom)
	if opts.LockAspect && corner {
		side := math.Max(max.X-min.X, max.Y-min.Y)
		if movesLeft {
			min.X = max.X - side
		} else {
			max.X = min.X + side
		}
		if movesTop {
			min.Y = max.Y - side
		} else {
			max.Y = min.Y + side
		}
	}

	s.X = min.X
	s.Y = min.Y
	s.Width = max.X - min.X
	s.Height = max.Y - min.Y
	return nil
}

// RotateTo sets the rotation from the pointer's angle about the shape
// center. The rotation handle rests above the top edge, so a pointer
// straight up means zero rotation. With snap set the angle rounds to
// the nearest 15 degree multiple.
func (s *Shape) RotateTo(pointer geometry.Point, snap bool) error {
	if s.Kind.IsLinear() {
		return &ValidationError{Field: "rotate", Msg: fmt.Sprintf("%q does not rotate", s.Kind)}
	}
	if err := geometry.CheckFinite("rotate", pointer.X, pointer.Y); err != nil {
		return err
	}
	c := s.Center()
	angle := math.Atan2(pointer.Y-c.Y, pointer.X-c.X) + math.Pi/2
	if snap {
		angle = math.Round(angle/RotateSnapStep) * RotateSnapStep
	}
	s.Rotation = angle
	return nil
}

// SkewForPointer derives the skew angle implied by dragging the skew
// handle to the given document point. For parallelograms the handle
// rides the sheared top-center; for trapezoids the leaning top-left
// corner.
func (s *Shape) SkewForPointer(pointer geometry.Point) float64 {
	c := s.Center()
	lx, _ := geometry.Rotate(pointer.X-c.X, pointer.Y-c.Y, -s.Rotation)
	if s.Kind == KindTrapezoid {
		inset := lx + s.Width/2
		return ClampSkew(math.Atan2(s.Height, inset))
	}
	return ClampSkew(math.Atan2(s.Height, 2*lx))
}

// HandlePositions returns the document-space position of every handle
// applicable to this shape, for overlay drawing and hit testing.
func (s *Shape) HandlePositions() map[Handle]geometry.Point {
	if s.Kind.IsLinear() {
		return nil
	}
	c := s.Center()
	hw, hh := s.Width/2, s.Height/2
	at := func(dx, dy float64) geometry.Point {
		x, y := geometry.Rotate(dx, dy, s.Rotation)
		return geometry.Point{X: c.X + x, Y: c.Y + y}
	}
	out := map[Handle]geometry.Point{
		HandleNW: at(-hw, -hh),
		HandleN:  at(0, -hh),
		HandleNE: at(hw, -hh),
		HandleW:  at(-hw, 0),
		HandleE:  at(hw, 0),
		HandleSW: at(-hw, hh),
		HandleS:  at(0, hh),
		HandleSE: at(hw, hh),

		HandleRotate: at(0, -hh-rotateHandleOffset),
	}
	switch s.Kind {
	case KindParallelogram:
		shear := s.Height / (2 * math.Tan(s.Skew))
		out[HandleSkew] = at(shear, -hh)
	case KindTrapezoid:
		inset := s.Height / math.Tan(s.Skew)
		out[HandleSkew] = at(-hw+inset, -hh)
	}
	return out
}
