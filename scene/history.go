package scene

// History manages undo/redo over scene snapshots using direct struct
// storage. The scene itself never records history; callers save a
// state after each committed intent operation.
type History struct {
	states  []*Scene
	current int
	max     int
}

// NewHistory creates a history keeping at most max states.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{
		states:  make([]*Scene, 0, max),
		current: -1,
		max:     max,
	}
}

// Save records a deep copy of the scene as the newest state,
// discarding any redo tail.
func (h *History) Save(s *Scene) {
	clone := s.Clone()
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}
	h.states = append(h.states, clone)
	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}
}

// CanUndo returns true if an older state exists.
func (h *History) CanUndo() bool { return h.current > 0 }

// CanRedo returns true if a newer state exists.
func (h *History) CanRedo() bool { return h.current < len(h.states)-1 }

// Undo steps back one state and returns a clone of it, or nil when at
// the oldest state.
func (h *History) Undo() *Scene {
	if !h.CanUndo() {
		return nil
	}
	h.current--
	return h.states[h.current].Clone()
}

// Redo steps forward one state and returns a clone of it, or nil when
// at the newest state.
func (h *History) Redo() *Scene {
	if !h.CanRedo() {
		return nil
	}
	h.current++
	return h.states[h.current].Clone()
}

// Stats returns the current position and total state count.
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}
