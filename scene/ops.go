package scene

import (
	"sort"

	"doodle/geometry"
	"doodle/shape"
)

// Axis selects the direction of an align, distribute, or abut
// operation.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// AlignMode selects which bounding-box feature lines up.
type AlignMode int

const (
	AlignStart  AlignMode = iota // left / top edge
	AlignCenter                  // center
	AlignEnd                     // right / bottom edge
)

// AlignSelection moves each selected top-level entity so its bounding
// box feature matches the selection's aggregate bounding box. Fewer
// than two entities is a no-op.
func (s *Scene) AlignSelection(axis Axis, mode AlignMode) {
	roots := s.selectionInOrder()
	if len(roots) < 2 {
		return
	}
	overall := s.EntityBounds(roots[0])
	for _, id := range roots[1:] {
		overall = overall.Union(s.EntityBounds(id))
	}
	for _, id := range roots {
		b := s.EntityBounds(id)
		var dx, dy float64
		switch {
		case axis == Horizontal && mode == AlignStart:
			dx = overall.Min.X - b.Min.X
		case axis == Horizontal && mode == AlignCenter:
			dx = overall.Center().X - b.Center().X
		case axis == Horizontal && mode == AlignEnd:
			dx = overall.Max.X - b.Max.X
		case axis == Vertical && mode == AlignStart:
			dy = overall.Min.Y - b.Min.Y
		case axis == Vertical && mode == AlignCenter:
			dy = overall.Center().Y - b.Center().Y
		case axis == Vertical && mode == AlignEnd:
			dy = overall.Max.Y - b.Max.Y
		}
		s.moveEntity(id, dx, dy)
	}
}

// DistributeSelection spaces three or more selected entities so their
// bounding-box centers fall at even intervals between the two extremes.
func (s *Scene) DistributeSelection(axis Axis) {
	roots := s.selectionInOrder()
	if len(roots) < 3 {
		return
	}
	type item struct {
		id     int
		bounds geometry.Rect
	}
	items := make([]item, 0, len(roots))
	for _, id := range roots {
		items = append(items, item{id: id, bounds: s.EntityBounds(id)})
	}
	center := func(it item) float64 {
		if axis == Horizontal {
			return it.bounds.Center().X
		}
		return it.bounds.Center().Y
	}
	sort.SliceStable(items, func(i, j int) bool { return center(items[i]) < center(items[j]) })
	first := center(items[0])
	step := (center(items[len(items)-1]) - first) / float64(len(items)-1)
	for i, it := range items {
		delta := first + step*float64(i) - center(it)
		if axis == Horizontal {
			s.moveEntity(it.id, delta, 0)
		} else {
			s.moveEntity(it.id, 0, delta)
		}
	}
}

// AbutSelection repositions the selected entities along the axis so
// each one's leading edge touches its predecessor's trailing edge with
// zero gap, preserving the order of their current positions. Sizes are
// untouched.
func (s *Scene) AbutSelection(axis Axis) {
	roots := s.selectionInOrder()
	if len(roots) < 2 {
		return
	}
	type item struct {
		id     int
		bounds geometry.Rect
	}
	items := make([]item, 0, len(roots))
	for _, id := range roots {
		items = append(items, item{id: id, bounds: s.EntityBounds(id)})
	}
	lead := func(it item) float64 {
		if axis == Horizontal {
			return it.bounds.Min.X
		}
		return it.bounds.Min.Y
	}
	extent := func(it item) float64 {
		if axis == Horizontal {
			return it.bounds.Width()
		}
		return it.bounds.Height()
	}
	sort.SliceStable(items, func(i, j int) bool { return lead(items[i]) < lead(items[j]) })
	cursor := lead(items[0])
	for _, it := range items {
		delta := cursor - lead(it)
		if axis == Horizontal {
			s.moveEntity(it.id, delta, 0)
		} else {
			s.moveEntity(it.id, 0, delta)
		}
		cursor += extent(it)
	}
}

// Payload is a self-contained copy of a set of entities, suitable for
// pasting into this or another scene.
type Payload struct {
	Entities []PayloadEntity `json:"entities"`
	Roots    []int           `json:"roots"`
}

// PayloadEntity is one copied entity; exactly one field is set.
type PayloadEntity struct {
	Shape *shape.Shape `json:"shape,omitempty"`
	Group *Group       `json:"group,omitempty"`
}

// CopySelection deep-copies the selected entities, nested structure
// included. Bound connector endpoints inside the copy keep their
// bindings; the stored points are refreshed to resolved positions so a
// later paste can sever cleanly when the target was not copied.
func (s *Scene) CopySelection() *Payload {
	roots := s.selectionInOrder()
	if len(roots) == 0 {
		return nil
	}
	p := &Payload{Roots: append([]int(nil), roots...)}
	for _, root := range roots {
		ids := append([]int{root}, s.descendants(root)...)
		for _, id := range ids {
			switch e := s.entities[id].(type) {
			case *shape.Shape:
				c := e.Clone()
				if c.Kind.IsLinear() {
					a, b := s.ResolveEndpoints(e)
					c.A, c.B = a, b
				}
				p.Entities = append(p.Entities, PayloadEntity{Shape: c})
			case *Group:
				p.Entities = append(p.Entities, PayloadEntity{Group: e.Clone()})
			}
		}
	}
	return p
}

// Paste inserts a payload's entities with fresh identifiers, offset so
// they do not exactly overlap the source. Bindings whose target is
// inside the payload are rebound to the pasted clone; all others become
// free points at the positions resolved at copy time. The pasted roots
// become the new selection.
func (s *Scene) Paste(p *Payload) []int {
	return s.pasteWithOffset(p, PasteOffset)
}

// DuplicateSelection clones the selection in place with a small offset
// and selects the clones.
func (s *Scene) DuplicateSelection() []int {
	return s.pasteWithOffset(s.CopySelection(), DuplicateOffset)
}

// validPayload checks that a payload is self-contained: every entity
// carries exactly one of shape or group, ids are unique, and every
// group child and root refers to an entity inside the payload. Payloads
// arrive from the system clipboard as well as from CopySelection, so
// none of this can be assumed.
func validPayload(p *Payload) bool {
	if p == nil || len(p.Entities) == 0 || len(p.Roots) == 0 {
		return false
	}
	present := make(map[int]bool, len(p.Entities))
	for _, pe := range p.Entities {
		var id int
		switch {
		case pe.Shape != nil && pe.Group == nil:
			id = pe.Shape.ID
		case pe.Group != nil && pe.Shape == nil:
			id = pe.Group.ID
		default:
			return false
		}
		if present[id] {
			return false
		}
		present[id] = true
	}
	for _, pe := range p.Entities {
		if pe.Group == nil {
			continue
		}
		if len(pe.Group.Children) == 0 {
			return false
		}
		for _, child := range pe.Group.Children {
			if !present[child] {
				return false
			}
		}
	}
	for _, root := range p.Roots {
		if !present[root] {
			return false
		}
	}
	return true
}

func (s *Scene) pasteWithOffset(p *Payload, offset float64) []int {
	if !validPayload(p) {
		return nil
	}
	idMap := make(map[int]int, len(p.Entities))
	for _, pe := range p.Entities {
		switch {
		case pe.Shape != nil:
			idMap[pe.Shape.ID] = s.allocateID()
		case pe.Group != nil:
			idMap[pe.Group.ID] = s.allocateID()
		}
	}

	for _, pe := range p.Entities {
		switch {
		case pe.Shape != nil:
			c := pe.Shape.Clone()
			c.ID = idMap[pe.Shape.ID]
			if c.StartBinding != nil {
				if mapped, ok := idMap[c.StartBinding.ShapeID]; ok {
					c.StartBinding.ShapeID = mapped
				} else {
					c.StartBinding = nil
				}
			}
			if c.EndBinding != nil {
				if mapped, ok := idMap[c.EndBinding.ShapeID]; ok {
					c.EndBinding.ShapeID = mapped
				} else {
					c.EndBinding = nil
				}
			}
			s.entities[c.ID] = c
		case pe.Group != nil:
			g := pe.Group.Clone()
			g.ID = idMap[pe.Group.ID]
			for i, child := range g.Children {
				g.Children[i] = idMap[child]
			}
			s.entities[g.ID] = g
			for _, child := range g.Children {
				s.parents[child] = g.ID
			}
		}
	}

	newRoots := make([]int, 0, len(p.Roots))
	for _, root := range p.Roots {
		id := idMap[root]
		newRoots = append(newRoots, id)
		s.order = append(s.order, id)
		s.moveEntity(id, offset, offset)
	}
	s.ClearSelection()
	for _, id := range newRoots {
		s.Select(id)
	}
	return newRoots
}
