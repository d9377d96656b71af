package geometry

import "math"

// EllipseSteps is the sample count used when an ellipse outline is
// needed as a point sequence (hit testing, rendering). Vertex-based
// logic never runs against these samples.
const EllipseSteps = 48

// maxSkewReach caps how far a skewed edge may travel as a fraction of
// the half width, keeping parallelograms and trapezoids from
// self-intersecting at extreme skew angles.
const maxSkewReach = 0.95

// RectCorners returns the four corners of r rotated by angle about its
// center, in NW, NE, SE, SW order.
func RectCorners(r Rect, angle float64) []Point {
	c := r.Center()
	corners := []Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
	for i, p := range corners {
		corners[i] = RotateAbout(p, c, angle)
	}
	return corners
}

// TriangleCorners returns the three vertices of an isoceles triangle
// inscribed in r (apex top-center), rotated by angle about the center.
func TriangleCorners(r Rect, angle float64) []Point {
	c := r.Center()
	hw, hh := r.Width()/2, r.Height()/2
	corners := []Point{
		{X: c.X, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + hh},
	}
	for i, p := range corners {
		corners[i] = RotateAbout(p, c, angle)
	}
	return corners
}

// skewShear converts a skew angle (between the bottom edge and a side,
// in (0, pi)) to the horizontal travel of the skewed edge for a shape
// of the given height. The travel is capped at maxSkewReach of the
// half width.
func skewShear(skew, halfW, height float64) float64 {
	t := math.Tan(skew)
	if math.Abs(t) < 1e-9 {
		t = math.Copysign(1e-9, t)
	}
	s := height / t
	limit := maxSkewReach * halfW
	return math.Max(-limit, math.Min(limit, s))
}

// ParallelogramCorners returns the four vertices of a parallelogram
// inscribed in r with the given skew angle, rotated about the center.
// The top edge shifts by half the shear, the bottom by the other half,
// so the centroid stays on the rect center.
func ParallelogramCorners(r Rect, angle, skew float64) []Point {
	c := r.Center()
	hw, hh := r.Width()/2, r.Height()/2
	s := skewShear(skew, hw, r.Height()) / 2
	corners := []Point{
		{X: c.X - hw + s, Y: c.Y - hh},
		{X: c.X + hw + s, Y: c.Y - hh},
		{X: c.X + hw - s, Y: c.Y + hh},
		{X: c.X - hw - s, Y: c.Y + hh},
	}
	for i, p := range corners {
		corners[i] = RotateAbout(p, c, angle)
	}
	return corners
}

// TrapezoidCorners returns the four vertices of a trapezoid inscribed
// in r whose sides lean inward by the skew angle, rotated about the
// center.
func TrapezoidCorners(r Rect, angle, skew float64) []Point {
	c := r.Center()
	hw, hh := r.Width()/2, r.Height()/2
	inset := skewShear(skew, hw, r.Height())
	corners := []Point{
		{X: c.X - hw + inset, Y: c.Y - hh},
		{X: c.X + hw - inset, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + hh},
	}
	for i, p := range corners {
		corners[i] = RotateAbout(p, c, angle)
	}
	return corners
}

// EllipsePoints samples the outline of an ellipse inscribed in r,
// rotated by angle about the center.
func EllipsePoints(r Rect, angle float64) []Point {
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	pts := make([]Point, 0, EllipseSteps)
	for i := 0; i < EllipseSteps; i++ {
		t := float64(i) / EllipseSteps * 2 * math.Pi
		x, y := Rotate(math.Cos(t)*rx, math.Sin(t)*ry, angle)
		pts = append(pts, Point{X: c.X + x, Y: c.Y + y})
	}
	return pts
}

// RayPolygon casts a ray from origin along dir and returns the nearest
// intersection with the closed polygon boundary. The second return is
// false when the ray misses. Non-finite input fails with ErrNonFinite.
func RayPolygon(origin, dir Point, poly []Point) (Point, bool, error) {
	if err := CheckFinite("ray-polygon", origin.X, origin.Y, dir.X, dir.Y); err != nil {
		return Point{}, false, err
	}
	best := math.Inf(1)
	var hit Point
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if err := CheckFinite("ray-polygon", a.X, a.Y, b.X, b.Y); err != nil {
			return Point{}, false, err
		}
		// Solve origin + t*dir = a + u*(b-a) for t >= 0, u in [0,1].
		ex, ey := b.X-a.X, b.Y-a.Y
		den := dir.X*ey - dir.Y*ex
		if math.Abs(den) < 1e-12 {
			continue
		}
		t := ((a.X-origin.X)*ey - (a.Y-origin.Y)*ex) / den
		u := ((a.X-origin.X)*dir.Y - (a.Y-origin.Y)*dir.X) / den
		if t >= 0 && u >= 0 && u <= 1 && t < best {
			best = t
			hit = Point{X: origin.X + dir.X*t, Y: origin.Y + dir.Y*t}
		}
	}
	return hit, best < math.Inf(1), nil
}

// RayEllipse casts a ray from origin along dir against an ellipse
// inscribed in r and rotated by angle, returning the nearest boundary
// intersection. Non-finite input fails with ErrNonFinite.
func RayEllipse(r Rect, angle float64, origin, dir Point) (Point, bool, error) {
	if err := CheckFinite("ray-ellipse", origin.X, origin.Y, dir.X, dir.Y); err != nil {
		return Point{}, false, err
	}
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	if rx < 1e-9 || ry < 1e-9 {
		return Point{}, false, nil
	}
	// Work in the ellipse's local frame, scaled to a unit circle.
	ox, oy := Rotate(origin.X-c.X, origin.Y-c.Y, -angle)
	dx, dy := Rotate(dir.X, dir.Y, -angle)
	ox, oy = ox/rx, oy/ry
	dx, dy = dx/rx, dy/ry
	a := dx*dx + dy*dy
	b := 2 * (ox*dx + oy*dy)
	cc := ox*ox + oy*oy - 1
	disc := b*b - 4*a*cc
	if a < 1e-12 || disc < 0 {
		return Point{}, false, nil
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	if t < 0 {
		return Point{}, false, nil
	}
	lx, ly := (ox+dx*t)*rx, (oy+dy*t)*ry
	wx, wy := Rotate(lx, ly, angle)
	return Point{X: c.X + wx, Y: c.Y + wy}, true, nil
}
