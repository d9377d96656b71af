package scene

import "errors"

// ErrDragActive is returned when a drag begins while another is open.
var ErrDragActive = errors.New("scene: drag already in progress")

// ErrNoDrag is returned by commit/rollback without an open drag.
var ErrNoDrag = errors.New("scene: no drag in progress")

// dragState is the pre-drag snapshot an interactive gesture can roll
// back to.
type dragState struct {
	snapshot *Scene
}

// BeginDrag opens an interactive gesture: a snapshot of the current
// scene is kept, later mutations are speculative until CommitDrag, and
// RollbackDrag restores this exact state.
func (s *Scene) BeginDrag() error {
	if s.drag != nil {
		return ErrDragActive
	}
	s.drag = &dragState{snapshot: s.Clone()}
	return nil
}

// Dragging reports whether a gesture is open.
func (s *Scene) Dragging() bool { return s.drag != nil }

// CommitDrag makes the speculative state durable. Bound connector
// endpoints are refreshed so the committed scene is fully consistent.
func (s *Scene) CommitDrag() error {
	if s.drag == nil {
		return ErrNoDrag
	}
	s.drag = nil
	s.refreshBoundEndpoints()
	return nil
}

// RollbackDrag discards everything since BeginDrag, restoring the
// snapshot. Cancellation is a pure rollback, never a partial undo.
func (s *Scene) RollbackDrag() error {
	if s.drag == nil {
		return ErrNoDrag
	}
	restored := s.drag.snapshot
	s.entities = restored.entities
	s.order = restored.order
	s.parents = restored.parents
	s.selection = restored.selection
	s.nextID = restored.nextID
	s.GridSize = restored.GridSize
	s.SnapToGrid = restored.SnapToGrid
	s.drag = nil
	return nil
}
