package scene

import (
	"encoding/json"
	"fmt"
	"time"

	"doodle/geometry"
	"doodle/shape"

	"github.com/google/uuid"
)

// DeserializeError reports a structurally invalid document. The load
// is aborted; the scene is never partially populated.
type DeserializeError struct {
	Msg string
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("deserialize: %s", e.Msg)
}

// Metadata identifies a persisted document.
type Metadata struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Created string `json:"created,omitempty"`
}

// Document is the persisted form of a Scene.
type Document struct {
	Metadata   Metadata        `json:"metadata,omitempty"`
	Entities   []PayloadEntity `json:"entities"`
	TopLevel   []int           `json:"topLevel"`
	Selection  []int           `json:"selection,omitempty"`
	GridSize   float64         `json:"gridSize,omitempty"`
	SnapToGrid bool            `json:"snapToGrid"`
}

// Serialize renders the scene as an indented JSON document. A fresh
// document id is generated when meta has none.
func (s *Scene) Serialize(meta Metadata) ([]byte, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Created == "" {
		meta.Created = time.Now().UTC().Format(time.RFC3339)
	}
	doc := Document{
		Metadata:   meta,
		TopLevel:   s.TopLevel(),
		Selection:  s.Selection(),
		GridSize:   s.GridSize,
		SnapToGrid: s.SnapToGrid,
	}
	// Emit entities parents-after-children in a stable order: the
	// top-level walk visits every entity exactly once.
	var walk func(id int)
	walk = func(id int) {
		switch e := s.entities[id].(type) {
		case *shape.Shape:
			doc.Entities = append(doc.Entities, PayloadEntity{Shape: e.Clone()})
		case *Group:
			for _, child := range e.Children {
				walk(child)
			}
			doc.Entities = append(doc.Entities, PayloadEntity{Group: e.Clone()})
		}
	}
	for _, id := range s.order {
		walk(id)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize parses and validates a persisted document, returning a
// fully populated scene or a DeserializeError. Dangling references,
// duplicate containment, cyclic groups, and invalid enum values all
// reject the document outright.
func Deserialize(data []byte) (*Scene, Metadata, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("malformed JSON: %v", err)}
	}

	s := New()
	if doc.GridSize > 0 {
		s.GridSize = doc.GridSize
	}
	s.SnapToGrid = doc.SnapToGrid

	maxID := 0
	for i, pe := range doc.Entities {
		switch {
		case pe.Shape != nil && pe.Group != nil:
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d is both shape and group", i)}
		case pe.Shape != nil:
			sh := pe.Shape
			if err := validateShape(sh); err != nil {
				return nil, Metadata{}, err
			}
			if _, dup := s.entities[sh.ID]; dup {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("duplicate entity id %d", sh.ID)}
			}
			s.entities[sh.ID] = sh.Clone()
			maxID = max(maxID, sh.ID)
		case pe.Group != nil:
			g := pe.Group
			if g.ID <= 0 {
				return nil, Metadata{}, &DeserializeError{Msg: "group with non-positive id"}
			}
			if _, dup := s.entities[g.ID]; dup {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("duplicate entity id %d", g.ID)}
			}
			s.entities[g.ID] = g.Clone()
			maxID = max(maxID, g.ID)
		default:
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d is neither shape nor group", i)}
		}
	}

	// Containment: every child exists and has exactly one parent.
	for _, e := range s.entities {
		g, ok := e.(*Group)
		if !ok {
			continue
		}
		for _, child := range g.Children {
			if _, ok := s.entities[child]; !ok {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("group %d references missing entity %d", g.ID, child)}
			}
			if p, claimed := s.parents[child]; claimed {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d is a child of both %d and %d", child, p, g.ID)}
			}
			s.parents[child] = g.ID
		}
	}

	// Acyclic: no group may transitively contain itself.
	for id, e := range s.entities {
		if _, ok := e.(*Group); ok && s.hasCycle(id) {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("group %d contains itself", id)}
		}
	}

	// Binding targets must exist and be box shapes.
	for _, e := range s.entities {
		sh, ok := e.(*shape.Shape)
		if !ok || !sh.Kind.IsLinear() {
			continue
		}
		for _, b := range []*shape.Binding{sh.StartBinding, sh.EndBinding} {
			if b == nil {
				continue
			}
			target, ok := s.Shape(b.ShapeID)
			if !ok {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("connector %d bound to missing shape %d", sh.ID, b.ShapeID)}
			}
			if target.Kind.IsLinear() {
				return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("connector %d bound to non-box shape %d", sh.ID, b.ShapeID)}
			}
		}
	}

	// Top-level list covers exactly the unparented entities, once each.
	seen := make(map[int]bool)
	for _, id := range doc.TopLevel {
		if _, ok := s.entities[id]; !ok {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("top-level reference to missing entity %d", id)}
		}
		if _, parented := s.parents[id]; parented {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d is both top-level and grouped", id)}
		}
		if seen[id] {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d listed top-level twice", id)}
		}
		seen[id] = true
	}
	for id := range s.entities {
		if _, parented := s.parents[id]; !parented && !seen[id] {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("entity %d is unreachable", id)}
		}
	}
	s.order = append([]int(nil), doc.TopLevel...)

	for _, id := range doc.Selection {
		if _, ok := s.entities[id]; !ok {
			return nil, Metadata{}, &DeserializeError{Msg: fmt.Sprintf("selection references missing entity %d", id)}
		}
		s.selection[id] = true
	}

	s.nextID = maxID + 1
	return s, doc.Metadata, nil
}

func validateShape(sh *shape.Shape) error {
	if sh.ID <= 0 {
		return &DeserializeError{Msg: "shape with non-positive id"}
	}
	if !sh.Kind.Valid() {
		return &DeserializeError{Msg: fmt.Sprintf("shape %d has unknown kind %q", sh.ID, sh.Kind)}
	}
	if !sh.Style.Pattern.Valid() || !sh.Style.Align.Valid() || !sh.Style.Font.Valid() {
		return &DeserializeError{Msg: fmt.Sprintf("shape %d has invalid style enums", sh.ID)}
	}
	if !geometry.Finite(sh.X, sh.Y, sh.Width, sh.Height, sh.Rotation, sh.Skew, sh.A.X, sh.A.Y, sh.B.X, sh.B.Y) {
		return &DeserializeError{Msg: fmt.Sprintf("shape %d has non-finite geometry", sh.ID)}
	}
	if !sh.Kind.IsLinear() && (sh.Width < shape.MinSize || sh.Height < shape.MinSize) {
		return &DeserializeError{Msg: fmt.Sprintf("shape %d below minimum size", sh.ID)}
	}
	// Out-of-range skew from a hand-edited document is clamped, not
	// rejected; in-memory shapes never carry one outside the bounds.
	if sh.Kind == shape.KindParallelogram || sh.Kind == shape.KindTrapezoid {
		sh.Skew = shape.ClampSkew(sh.Skew)
	}
	return nil
}
