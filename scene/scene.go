// Package scene owns the forest of diagram entities and mediates every
// mutation: moving, resizing, grouping, aligning, connector binding,
// and persistence. Entities live in a flat arena keyed by identifier;
// groups hold ordered child identifier lists, never pointers, so the
// acyclic-containment invariant can be enforced by ancestor walks.
package scene

import (
	"fmt"
	"sort"

	"doodle/geometry"
	"doodle/shape"
	"doodle/snap"
)

// Entity is any scene member addressable by identifier: a shape (which
// covers connectors) or a group.
type Entity interface {
	EntityID() int
}

// Group is a composite entity owning an ordered list of child entity
// identifiers. Its bounding box is always recomputed from the children.
type Group struct {
	ID       int   `json:"id"`
	Children []int `json:"children"`
}

// EntityID returns the group's identifier.
func (g *Group) EntityID() int { return g.ID }

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	children := make([]int, len(g.Children))
	copy(children, g.Children)
	return &Group{ID: g.ID, Children: children}
}

// Offsets for clone-style insert operations.
const (
	DuplicateOffset = 12.0
	PasteOffset     = 24.0
)

// Scene is the top-level entity arena plus selection state. All
// mutation goes through its methods; operations either fully apply or
// fully reject.
type Scene struct {
	entities  map[int]Entity
	order     []int       // top-level z-order, back to front
	parents   map[int]int // child id -> enclosing group id
	selection map[int]bool
	nextID    int

	// Snap settings consulted during interactive transforms.
	GridSize   float64
	SnapToGrid bool

	drag *dragState
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		entities:   make(map[int]Entity),
		parents:    make(map[int]int),
		selection:  make(map[int]bool),
		nextID:     1,
		GridSize:   snap.DefaultGridSize,
		SnapToGrid: true,
	}
}

func (s *Scene) allocateID() int {
	id := s.nextID
	s.nextID++
	return id
}

// AddShape inserts a shape as a new top-level entity, assigning its
// identifier, and returns the id.
func (s *Scene) AddShape(sh *shape.Shape) int {
	sh.ID = s.allocateID()
	s.entities[sh.ID] = sh
	s.order = append(s.order, sh.ID)
	return sh.ID
}

// Entity looks up any entity by id.
func (s *Scene) Entity(id int) (Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Shape looks up a shape entity by id.
func (s *Scene) Shape(id int) (*shape.Shape, bool) {
	sh, ok := s.entities[id].(*shape.Shape)
	return sh, ok
}

// Group looks up a group entity by id.
func (s *Scene) Group(id int) (*Group, bool) {
	g, ok := s.entities[id].(*Group)
	return g, ok
}

// Len returns the number of entities in the scene.
func (s *Scene) Len() int { return len(s.entities) }

// TopLevel returns the top-level entity ids in z-order, back to front.
func (s *Scene) TopLevel() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Parent returns the enclosing group of an entity, if any.
func (s *Scene) Parent(id int) (int, bool) {
	p, ok := s.parents[id]
	return p, ok
}

// Root returns the outermost ancestor of an entity (itself when
// top-level).
func (s *Scene) Root(id int) int {
	for {
		p, ok := s.parents[id]
		if !ok {
			return id
		}
		id = p
	}
}

// Select adds an entity to the selection.
func (s *Scene) Select(id int) {
	if _, ok := s.entities[id]; ok {
		s.selection[id] = true
	}
}

// Deselect removes an entity from the selection.
func (s *Scene) Deselect(id int) {
	delete(s.selection, id)
}

// ToggleSelect flips an entity's selection membership.
func (s *Scene) ToggleSelect(id int) {
	if s.selection[id] {
		delete(s.selection, id)
		return
	}
	s.Select(id)
}

// ClearSelection empties the selection.
func (s *Scene) ClearSelection() {
	s.selection = make(map[int]bool)
}

// IsSelected reports selection membership.
func (s *Scene) IsSelected(id int) bool { return s.selection[id] }

// Selection returns the selected ids in ascending order.
func (s *Scene) Selection() []int {
	out := make([]int, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// selectionInOrder returns the selected top-level ids in z-order.
func (s *Scene) selectionInOrder() []int {
	var out []int
	for _, id := range s.order {
		if s.selection[id] {
			out = append(out, id)
		}
	}
	return out
}

// MoveSelection translates every selected top-level entity, descending
// into groups. Bound connector endpoints are untouched; they re-resolve
// against their targets.
func (s *Scene) MoveSelection(dx, dy float64) error {
	if err := geometry.CheckFinite("move", dx, dy); err != nil {
		return err
	}
	for _, id := range s.selectionInOrder() {
		s.moveEntity(id, dx, dy)
	}
	return nil
}

func (s *Scene) moveEntity(id int, dx, dy float64) {
	switch e := s.entities[id].(type) {
	case *shape.Shape:
		e.MoveBy(dx, dy)
	case *Group:
		for _, child := range e.Children {
			s.moveEntity(child, dx, dy)
		}
	}
}

// SnapSelectionToGrid snaps every selected shape (and group member)
// honoring per-shape snap flags. A no-op when grid snapping is off.
func (s *Scene) SnapSelectionToGrid() {
	if !s.SnapToGrid {
		return
	}
	for _, id := range s.selectionInOrder() {
		for _, sid := range s.descendantShapes(id) {
			if sh, ok := s.Shape(sid); ok {
				snap.ShapeToGrid(sh, s.GridSize)
			}
		}
	}
}

// ToggleSnapForSelection flips the snap-disabled flag on every selected
// shape.
func (s *Scene) ToggleSnapForSelection() {
	for id := range s.selection {
		for _, sid := range s.descendantShapes(id) {
			if sh, ok := s.Shape(sid); ok {
				sh.SnapEnabled = !sh.SnapEnabled
			}
		}
	}
}

// DeleteSelection removes the selected entities and all their
// descendants. Connector endpoints bound to a deleted shape become
// free points at their last resolved position.
func (s *Scene) DeleteSelection() {
	if len(s.selection) == 0 {
		return
	}
	doomed := make(map[int]bool)
	for id := range s.selection {
		doomed[id] = true
		for _, d := range s.descendants(id) {
			doomed[d] = true
		}
	}

	// Sever bindings into the doomed set while targets still resolve.
	s.severBindings(doomed)

	for id := range doomed {
		if p, ok := s.parents[id]; ok && !doomed[p] {
			if g, ok := s.Group(p); ok {
				g.Children = removeID(g.Children, id)
			}
		}
		delete(s.parents, id)
		delete(s.entities, id)
		delete(s.selection, id)
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if !doomed[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// HitTest returns the topmost top-level entity whose outline contains
// p, searching front to back. Shapes inside groups resolve to their
// root group.
func (s *Scene) HitTest(p geometry.Point, threshold float64) (int, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		shapes := s.descendantShapes(id)
		for j := len(shapes) - 1; j >= 0; j-- {
			sh, ok := s.Shape(shapes[j])
			if !ok {
				continue
			}
			if sh.Kind.IsLinear() {
				a, b := s.ResolveEndpoints(sh)
				if geometry.DistToSegment(p, a, b) <= threshold+sh.Style.StrokeWidth {
					return id, true
				}
				continue
			}
			if sh.Contains(p, threshold) {
				return id, true
			}
		}
	}
	return 0, false
}

// BringToFront moves the selected top-level entities to the end of the
// z-order, preserving their relative order.
func (s *Scene) BringToFront() {
	s.reorder(func(kept, moved []int) []int { return append(kept, moved...) })
}

// SendToBack moves the selected top-level entities to the start of the
// z-order, preserving their relative order.
func (s *Scene) SendToBack() {
	s.reorder(func(kept, moved []int) []int { return append(moved, kept...) })
}

func (s *Scene) reorder(merge func(kept, moved []int) []int) {
	if len(s.selection) == 0 {
		return
	}
	var kept, moved []int
	for _, id := range s.order {
		if s.selection[id] {
			moved = append(moved, id)
		} else {
			kept = append(kept, id)
		}
	}
	s.order = merge(kept, moved)
}

// Clone returns a deep copy of the scene, selection included.
func (s *Scene) Clone() *Scene {
	c := New()
	c.nextID = s.nextID
	c.GridSize = s.GridSize
	c.SnapToGrid = s.SnapToGrid
	for id, e := range s.entities {
		c.entities[id] = cloneEntity(e)
	}
	c.order = append(c.order[:0], s.order...)
	for k, v := range s.parents {
		c.parents[k] = v
	}
	for k := range s.selection {
		c.selection[k] = true
	}
	return c
}

func cloneEntity(e Entity) Entity {
	switch v := e.(type) {
	case *shape.Shape:
		return v.Clone()
	case *Group:
		return v.Clone()
	default:
		panic(fmt.Sprintf("scene: unknown entity type %T", e))
	}
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
