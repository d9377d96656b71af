package scene

import (
	"fmt"
	"math"

	"doodle/geometry"
	"doodle/shape"
)

// GroupError reports an invalid grouping request; no state changes.
type GroupError struct {
	Msg string
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group: %s", e.Msg)
}

// GroupEntities collects the given entities under a new group. The ids
// must be non-empty, exist, and share a common parent (all top-level or
// all immediate children of the same group). The group takes the place
// of the first entity in its former container; the children keep the
// order given.
func (s *Scene) GroupEntities(ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, &GroupError{Msg: "empty selection"}
	}
	seen := make(map[int]bool)
	for _, id := range ids {
		if _, ok := s.entities[id]; !ok {
			return 0, &GroupError{Msg: fmt.Sprintf("unknown entity %d", id)}
		}
		if seen[id] {
			return 0, &GroupError{Msg: fmt.Sprintf("duplicate entity %d", id)}
		}
		seen[id] = true
	}
	parent, hasParent := s.parents[ids[0]]
	for _, id := range ids[1:] {
		p, ok := s.parents[id]
		if ok != hasParent || p != parent {
			return 0, &GroupError{Msg: "mixed-parent selection"}
		}
	}

	gid := s.allocateID()
	g := &Group{ID: gid, Children: append([]int(nil), ids...)}
	s.entities[gid] = g

	if hasParent {
		pg, _ := s.Group(parent)
		pos := keptBefore(pg.Children, ids[0], seen)
		pg.Children = insertAt(removeIDs(pg.Children, seen), pos, gid)
		s.parents[gid] = parent
	} else {
		pos := keptBefore(s.order, ids[0], seen)
		s.order = insertAt(removeIDs(s.order, seen), pos, gid)
	}
	for _, id := range ids {
		s.parents[id] = gid
	}

	// New membership must keep the forest acyclic.
	if s.hasCycle(gid) {
		// Unreachable with fresh group ids; guard regardless.
		s.ungroupInto(g, parent, hasParent)
		return 0, &GroupError{Msg: "grouping would create a cycle"}
	}
	return gid, nil
}

// GroupSelection groups the current selection in z-order and selects
// the resulting group.
func (s *Scene) GroupSelection() (int, error) {
	ids := s.selectionInOrder()
	gid, err := s.GroupEntities(ids)
	if err != nil {
		return 0, err
	}
	s.ClearSelection()
	s.Select(gid)
	return gid, nil
}

// Ungroup promotes the group's immediate children to the group's
// former position, in their stored order, then deletes the group.
// Nested groups stay intact: ungrouping is the inverse of the matching
// group operation, never a recursive flatten.
func (s *Scene) Ungroup(gid int) error {
	g, ok := s.Group(gid)
	if !ok {
		return &GroupError{Msg: fmt.Sprintf("entity %d is not a group", gid)}
	}
	parent, hasParent := s.parents[gid]
	s.ungroupInto(g, parent, hasParent)
	if s.selection[gid] {
		delete(s.selection, gid)
		for _, id := range g.Children {
			s.Select(id)
		}
	}
	return nil
}

func (s *Scene) ungroupInto(g *Group, parent int, hasParent bool) {
	if hasParent {
		pg, _ := s.Group(parent)
		pos := indexOf(pg.Children, g.ID)
		children := removeID(pg.Children, g.ID)
		pg.Children = insertSlice(children, pos, g.Children)
		for _, id := range g.Children {
			s.parents[id] = parent
		}
	} else {
		pos := indexOf(s.order, g.ID)
		order := removeID(s.order, g.ID)
		s.order = insertSlice(order, pos, g.Children)
		for _, id := range g.Children {
			delete(s.parents, id)
		}
	}
	delete(s.parents, g.ID)
	delete(s.entities, g.ID)
}

// UngroupSelection ungroups every selected group.
func (s *Scene) UngroupSelection() error {
	var groups []int
	for _, id := range s.selectionInOrder() {
		if _, ok := s.Group(id); ok {
			groups = append(groups, id)
		}
	}
	if len(groups) == 0 {
		return &GroupError{Msg: "no group selected"}
	}
	for _, gid := range groups {
		if err := s.Ungroup(gid); err != nil {
			return err
		}
	}
	return nil
}

// hasCycle reports whether the ancestor chain from id revisits id.
func (s *Scene) hasCycle(id int) bool {
	seen := map[int]bool{id: true}
	cur := id
	for {
		p, ok := s.parents[cur]
		if !ok {
			return false
		}
		if seen[p] {
			return true
		}
		seen[p] = true
		cur = p
	}
}

// descendants returns every entity transitively contained in id,
// excluding id itself.
func (s *Scene) descendants(id int) []int {
	g, ok := s.Group(id)
	if !ok {
		return nil
	}
	var out []int
	for _, child := range g.Children {
		out = append(out, child)
		out = append(out, s.descendants(child)...)
	}
	return out
}

// descendantShapes returns the shape ids within id (id itself when it
// is a shape), in stored order.
func (s *Scene) descendantShapes(id int) []int {
	if _, ok := s.Shape(id); ok {
		return []int{id}
	}
	var out []int
	for _, d := range s.descendants(id) {
		if _, ok := s.Shape(d); ok {
			out = append(out, d)
		}
	}
	return out
}

// EntityBounds returns the bounding box of any entity. Group bounds
// are the recursive union of the children, recomputed on demand.
// Connector bounds use resolved endpoints.
func (s *Scene) EntityBounds(id int) geometry.Rect {
	switch e := s.entities[id].(type) {
	case *shape.Shape:
		if e.Kind.IsLinear() {
			a, b := s.ResolveEndpoints(e)
			return geometry.RectFromPoints(a, b)
		}
		return e.Bounds()
	case *Group:
		var out geometry.Rect
		first := true
		for _, child := range e.Children {
			b := s.EntityBounds(child)
			if first {
				out = b
				first = false
			} else {
				out = out.Union(b)
			}
		}
		return out
	}
	return geometry.Rect{}
}

// ScaleEntity applies a uniform scale about anchor to an entity and
// all its descendants. Shape sizes never drop below the minimum; free
// connector endpoints scale, bound endpoints re-resolve instead.
func (s *Scene) ScaleEntity(id int, anchor geometry.Point, factor float64) error {
	if err := geometry.CheckFinite("scale", anchor.X, anchor.Y, factor); err != nil {
		return err
	}
	if factor <= 0 {
		return &GroupError{Msg: "scale factor must be positive"}
	}
	for _, sid := range s.descendantShapes(id) {
		sh, _ := s.Shape(sid)
		scaleShape(sh, anchor, factor)
	}
	return nil
}

func scaleShape(sh *shape.Shape, anchor geometry.Point, f float64) {
	scalePoint := func(p geometry.Point) geometry.Point {
		return geometry.Point{
			X: anchor.X + (p.X-anchor.X)*f,
			Y: anchor.Y + (p.Y-anchor.Y)*f,
		}
	}
	if sh.Kind.IsLinear() {
		if sh.StartBinding == nil {
			sh.A = scalePoint(sh.A)
		}
		if sh.EndBinding == nil {
			sh.B = scalePoint(sh.B)
		}
		return
	}
	min := scalePoint(geometry.Point{X: sh.X, Y: sh.Y})
	sh.X = min.X
	sh.Y = min.Y
	sh.Width = math.Max(sh.Width*f, shape.MinSize)
	sh.Height = math.Max(sh.Height*f, shape.MinSize)
}

// ResizeGroupHandle resizes a group by dragging one of its bounding
// box corners to target: a uniform scale about the opposite corner,
// derived from the projection of the drag onto the box diagonal.
func (s *Scene) ResizeGroupHandle(gid int, h shape.Handle, target geometry.Point) error {
	g, ok := s.Group(gid)
	if !ok {
		return &GroupError{Msg: fmt.Sprintf("entity %d is not a group", gid)}
	}
	if err := geometry.CheckFinite("resize-group", target.X, target.Y); err != nil {
		return err
	}
	b := s.EntityBounds(g.ID)
	var corner, anchor geometry.Point
	switch h {
	case shape.HandleNW:
		corner, anchor = b.Min, b.Max
	case shape.HandleNE:
		corner = geometry.Point{X: b.Max.X, Y: b.Min.Y}
		anchor = geometry.Point{X: b.Min.X, Y: b.Max.Y}
	case shape.HandleSW:
		corner = geometry.Point{X: b.Min.X, Y: b.Max.Y}
		anchor = geometry.Point{X: b.Max.X, Y: b.Min.Y}
	case shape.HandleSE:
		corner, anchor = b.Max, b.Min
	default:
		return &GroupError{Msg: "groups resize from corner handles"}
	}
	diag := corner.Sub(anchor)
	len2 := diag.X*diag.X + diag.Y*diag.Y
	if len2 < 1e-9 {
		return &GroupError{Msg: "degenerate group bounds"}
	}
	drag := target.Sub(anchor)
	factor := (drag.X*diag.X + drag.Y*diag.Y) / len2
	if factor <= 0 {
		return nil
	}
	return s.ScaleEntity(gid, anchor, factor)
}

// keptBefore counts the entries before target that survive removal,
// giving target's insertion index in the filtered slice.
func keptBefore(ids []int, target int, drop map[int]bool) int {
	n := 0
	for _, v := range ids {
		if v == target {
			return n
		}
		if !drop[v] {
			n++
		}
	}
	return n
}

func removeIDs(ids []int, drop map[int]bool) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}

func insertAt(ids []int, pos, id int) []int {
	if pos < 0 || pos > len(ids) {
		return append(ids, id)
	}
	out := make([]int, 0, len(ids)+1)
	out = append(out, ids[:pos]...)
	out = append(out, id)
	out = append(out, ids[pos:]...)
	return out
}

func insertSlice(ids []int, pos int, insert []int) []int {
	if pos < 0 || pos > len(ids) {
		pos = len(ids)
	}
	out := make([]int, 0, len(ids)+len(insert))
	out = append(out, ids[:pos]...)
	out = append(out, insert...)
	out = append(out, ids[pos:]...)
	return out
}
