package scene

import (
	"fmt"
	"math"

	"doodle/geometry"
	"doodle/shape"
)

// ResolveEndpoints returns the current document-space endpoints of a
// linear shape: the stored point when free, or the boundary projection
// of the binding's anchor when bound. Bound endpoints are never read
// from storage, so they can not go stale.
func (s *Scene) ResolveEndpoints(sh *shape.Shape) (geometry.Point, geometry.Point) {
	a, b := sh.A, sh.B
	if p, ok := s.resolveBinding(sh.StartBinding); ok {
		a = p
	}
	if p, ok := s.resolveBinding(sh.EndBinding); ok {
		b = p
	}
	return a, b
}

// resolveBinding maps a normalized anchor to a concrete point on the
// target's current transform. A missing or non-box target fails.
func (s *Scene) resolveBinding(b *shape.Binding) (geometry.Point, bool) {
	if b == nil {
		return geometry.Point{}, false
	}
	target, ok := s.Shape(b.ShapeID)
	if !ok || target.Kind.IsLinear() {
		return geometry.Point{}, false
	}
	c := target.Center()
	x, y := geometry.Rotate(b.Norm.X*target.Width, b.Norm.Y*target.Height, target.Rotation)
	p := geometry.Point{X: c.X + x, Y: c.Y + y}
	// The anchor frame is the bounding rect; rects and ellipses land on
	// their outline directly, the other polygon kinds need a re-cast
	// through the anchor direction onto their actual edges.
	switch target.Kind {
	case shape.KindTriangle, shape.KindParallelogram, shape.KindTrapezoid:
		dir := p.Sub(c)
		if math.Hypot(dir.X, dir.Y) < 1e-9 {
			return p, true
		}
		if hit, hitOK, err := geometry.RayPolygon(c, dir, target.Vertices()); err == nil && hitOK {
			return hit, true
		}
	}
	return p, true
}

// ComputeBinding derives the normalized anchor for attaching an
// endpoint to target at the given document point: the point is taken
// into the target's unrotated local frame, clamped, and projected onto
// the nearest edge (or radially onto the outline for ellipses).
func ComputeBinding(target *shape.Shape, p geometry.Point) (*shape.Binding, error) {
	if target.Kind.IsLinear() {
		return nil, &shape.ValidationError{Field: "binding", Msg: "cannot bind to a line"}
	}
	if err := geometry.CheckFinite("binding", p.X, p.Y); err != nil {
		return nil, err
	}
	if target.Width < 1e-9 || target.Height < 1e-9 {
		return nil, &shape.ValidationError{Field: "binding", Msg: "degenerate target"}
	}
	c := target.Center()
	lx, ly := geometry.Rotate(p.X-c.X, p.Y-c.Y, -target.Rotation)
	nx := math.Max(-0.5, math.Min(0.5, lx/target.Width))
	ny := math.Max(-0.5, math.Min(0.5, ly/target.Height))
	if target.Kind == shape.KindEllipse {
		n := math.Hypot(nx, ny)
		if n < 1e-9 {
			nx, ny = 0.5, 0
		} else {
			nx, ny = nx/n*0.5, ny/n*0.5
		}
	} else {
		// Push the nearer coordinate out to its edge.
		if 0.5-math.Abs(nx) < 0.5-math.Abs(ny) {
			nx = math.Copysign(0.5, nx)
		} else {
			ny = math.Copysign(0.5, ny)
		}
	}
	return &shape.Binding{ShapeID: target.ID, Norm: geometry.Point{X: nx, Y: ny}}, nil
}

// Bind attaches endpoint index 0 or 1 of a connector to the target
// shape at the anchor nearest the given document point. The stored
// endpoint is refreshed to the resolved position.
func (s *Scene) Bind(connectorID, endpoint, targetID int, at geometry.Point) error {
	conn, ok := s.Shape(connectorID)
	if !ok || !conn.Kind.IsLinear() {
		return &shape.ValidationError{Field: "binding", Msg: fmt.Sprintf("entity %d is not a connector", connectorID)}
	}
	target, ok := s.Shape(targetID)
	if !ok {
		return &shape.ValidationError{Field: "binding", Msg: fmt.Sprintf("unknown target %d", targetID)}
	}
	binding, err := ComputeBinding(target, at)
	if err != nil {
		return err
	}
	resolved, _ := s.resolveBinding(binding)
	if endpoint == 0 {
		conn.StartBinding = binding
		conn.A = resolved
	} else {
		conn.EndBinding = binding
		conn.B = resolved
	}
	return nil
}

// Unbind frees a connector endpoint at its current resolved position.
func (s *Scene) Unbind(connectorID, endpoint int) error {
	conn, ok := s.Shape(connectorID)
	if !ok || !conn.Kind.IsLinear() {
		return &shape.ValidationError{Field: "binding", Msg: fmt.Sprintf("entity %d is not a connector", connectorID)}
	}
	a, b := s.ResolveEndpoints(conn)
	if endpoint == 0 {
		conn.A = a
		conn.StartBinding = nil
	} else {
		conn.B = b
		conn.EndBinding = nil
	}
	return nil
}

// anchorToward finds the boundary point of sh in the direction of the
// given point, by ray cast from the center.
func anchorToward(sh *shape.Shape, toward geometry.Point) (geometry.Point, error) {
	c := sh.Center()
	dir := toward.Sub(c)
	if math.Hypot(dir.X, dir.Y) < 1e-9 {
		dir = geometry.Point{X: 1}
	}
	var (
		hit geometry.Point
		ok  bool
		err error
	)
	if sh.Kind == shape.KindEllipse {
		hit, ok, err = geometry.RayEllipse(sh.Rect(), sh.Rotation, c, dir)
	} else {
		hit, ok, err = geometry.RayPolygon(c, dir, sh.Vertices())
	}
	if err != nil {
		return geometry.Point{}, err
	}
	if !ok {
		return c, nil
	}
	return hit, nil
}

// AutoConnect creates a connector of the given kind between two box
// shapes, with both endpoints bound at the boundary points facing the
// other shape's bounding-box center. Returns the new connector's id.
func (s *Scene) AutoConnect(fromID, toID int, kind shape.Kind) (int, error) {
	if !kind.IsLinear() {
		return 0, &shape.ValidationError{Field: "kind", Msg: fmt.Sprintf("%q is not a connector kind", kind)}
	}
	from, ok := s.Shape(fromID)
	if !ok || from.Kind.IsLinear() {
		return 0, &shape.ValidationError{Field: "binding", Msg: fmt.Sprintf("entity %d is not a box shape", fromID)}
	}
	to, ok := s.Shape(toID)
	if !ok || to.Kind.IsLinear() {
		return 0, &shape.ValidationError{Field: "binding", Msg: fmt.Sprintf("entity %d is not a box shape", toID)}
	}

	fromAnchor, err := anchorToward(from, to.Bounds().Center())
	if err != nil {
		return 0, err
	}
	toAnchor, err := anchorToward(to, from.Bounds().Center())
	if err != nil {
		return 0, err
	}

	conn, err := shape.NewLine(kind, fromAnchor, toAnchor, shape.DefaultStyle())
	if err != nil {
		return 0, err
	}
	id := s.AddShape(conn)
	if err := s.Bind(id, 0, fromID, fromAnchor); err != nil {
		return 0, err
	}
	if err := s.Bind(id, 1, toID, toAnchor); err != nil {
		return 0, err
	}
	return id, nil
}

// severBindings converts every connector endpoint bound into the
// doomed set to a free point at its last resolved position.
func (s *Scene) severBindings(doomed map[int]bool) {
	for _, e := range s.entities {
		conn, ok := e.(*shape.Shape)
		if !ok || !conn.Kind.IsLinear() || doomed[conn.ID] {
			continue
		}
		a, b := s.ResolveEndpoints(conn)
		if conn.StartBinding != nil && doomed[conn.StartBinding.ShapeID] {
			conn.A = a
			conn.StartBinding = nil
		}
		if conn.EndBinding != nil && doomed[conn.EndBinding.ShapeID] {
			conn.B = b
			conn.EndBinding = nil
		}
	}
}

// refreshBoundEndpoints rewrites the stored endpoints of every bound
// connector to the current resolved positions, so a later sever or
// serialization starts from fresh coordinates.
func (s *Scene) refreshBoundEndpoints() {
	for _, e := range s.entities {
		conn, ok := e.(*shape.Shape)
		if !ok || !conn.Kind.IsLinear() {
			continue
		}
		if conn.StartBinding == nil && conn.EndBinding == nil {
			continue
		}
		a, b := s.ResolveEndpoints(conn)
		if conn.StartBinding != nil {
			conn.A = a
		}
		if conn.EndBinding != nil {
			conn.B = b
		}
	}
}
