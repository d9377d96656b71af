package scene

import (
	"encoding/json"
	"math"
	"testing"

	"doodle/geometry"
	"doodle/shape"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	s := New()
	s.GridSize = 8
	s.SnapToGrid = false
	a := addRect(t, s, 0, 0, 40, 40)
	b := addRect(t, s, 100, 0, 40, 40)
	conn, err := s.AutoConnect(a, b, shape.KindArrow)
	require.NoError(t, err)
	gid, err := s.GroupEntities([]int{a, b})
	require.NoError(t, err)
	s.Select(gid)

	data, err := s.Serialize(Metadata{Name: "flowchart"})
	require.NoError(t, err)

	loaded, meta, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "flowchart", meta.Name)
	assert.NotEmpty(t, meta.ID)
	assert.NotEmpty(t, meta.Created)

	assert.Equal(t, s.Len(), loaded.Len())
	assert.Equal(t, s.TopLevel(), loaded.TopLevel())
	assert.Equal(t, []int{gid}, loaded.Selection())
	assert.Equal(t, 8.0, loaded.GridSize)
	assert.False(t, loaded.SnapToGrid)

	p, ok := loaded.Parent(a)
	require.True(t, ok)
	assert.Equal(t, gid, p)

	lc, ok := loaded.Shape(conn)
	require.True(t, ok)
	require.NotNil(t, lc.StartBinding)
	assert.Equal(t, a, lc.StartBinding.ShapeID)
	start, _ := loaded.ResolveEndpoints(lc)
	assert.InDelta(t, 40, start.X, 1e-9)

	// Fresh ids continue past the loaded maximum.
	next := addRect(t, loaded, 0, 0, 40, 40)
	assert.Equal(t, gid+1, next)
}

func TestSerializeKeepsExistingMetadataID(t *testing.T) {
	s := New()
	addRect(t, s, 0, 0, 40, 40)
	data, err := s.Serialize(Metadata{ID: "doc-1", Created: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)
	_, meta, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", meta.ID)
	assert.Equal(t, "2026-01-01T00:00:00Z", meta.Created)
}

func mustDoc(t *testing.T, doc Document) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestDeserializeRejectsCorruptDocuments(t *testing.T) {
	box := func(id int) PayloadEntity {
		sh, err := shape.New(shape.KindRect, 0, 0, 40, 40, shape.DefaultStyle())
		require.NoError(t, err)
		sh.ID = id
		return PayloadEntity{Shape: sh}
	}
	line := func(id int) PayloadEntity {
		sh, err := shape.NewLine(shape.KindLine, geometry.Point{}, geometry.Point{X: 50}, shape.DefaultStyle())
		require.NoError(t, err)
		sh.ID = id
		return PayloadEntity{Shape: sh}
	}
	group := func(id int, children ...int) PayloadEntity {
		return PayloadEntity{Group: &Group{ID: id, Children: children}}
	}

	badKind := box(1)
	badKind.Shape.Kind = "blob"

	tiny := box(1)
	tiny.Shape.Width = shape.MinSize / 2

	boundToLine := line(3)
	boundToLine.Shape.EndBinding = &shape.Binding{ShapeID: 2}

	cases := []struct {
		name string
		doc  Document
	}{
		{"missing top-level reference", Document{
			Entities: []PayloadEntity{box(1)},
			TopLevel: []int{1, 5},
		}},
		{"unreachable entity", Document{
			Entities: []PayloadEntity{box(1), box(2)},
			TopLevel: []int{1},
		}},
		{"duplicate id", Document{
			Entities: []PayloadEntity{box(1), box(1)},
			TopLevel: []int{1},
		}},
		{"group references missing child", Document{
			Entities: []PayloadEntity{group(2, 99)},
			TopLevel: []int{2},
		}},
		{"child claimed twice", Document{
			Entities: []PayloadEntity{box(1), group(2, 1), group(3, 1)},
			TopLevel: []int{2, 3},
		}},
		{"top-level and grouped", Document{
			Entities: []PayloadEntity{box(1), group(2, 1)},
			TopLevel: []int{1, 2},
		}},
		{"cyclic groups", Document{
			Entities: []PayloadEntity{group(1, 2), group(2, 1)},
			TopLevel: []int{},
		}},
		{"unknown kind", Document{
			Entities: []PayloadEntity{badKind},
			TopLevel: []int{1},
		}},
		{"below minimum size", Document{
			Entities: []PayloadEntity{tiny},
			TopLevel: []int{1},
		}},
		{"binding to missing shape", Document{
			Entities: []PayloadEntity{boundToLine},
			TopLevel: []int{3},
		}},
		{"binding to a line", Document{
			Entities: []PayloadEntity{line(2), boundToLine},
			TopLevel: []int{2, 3},
		}},
		{"selection references missing entity", Document{
			Entities:  []PayloadEntity{box(1)},
			TopLevel:  []int{1},
			Selection: []int{9},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Deserialize(mustDoc(t, tc.doc))
			var derr *DeserializeError
			require.ErrorAs(t, err, &derr)
		})
	}
}

func TestDeserializeClampsOutOfRangeSkew(t *testing.T) {
	sh, err := shape.New(shape.KindParallelogram, 0, 0, 40, 40, shape.DefaultStyle())
	require.NoError(t, err)
	sh.ID = 1
	sh.Skew = 9.5

	data := mustDoc(t, Document{
		Entities: []PayloadEntity{{Shape: sh}},
		TopLevel: []int{1},
	})
	loaded, _, err := Deserialize(data)
	require.NoError(t, err)

	got, ok := loaded.Shape(1)
	require.True(t, ok)
	assert.GreaterOrEqual(t, got.Skew, shape.SkewMin)
	assert.LessOrEqual(t, got.Skew, math.Pi-shape.SkewMin)

	// The clamped document re-serializes without drifting further.
	out, err := loaded.Serialize(Metadata{})
	require.NoError(t, err)
	again, _, err := Deserialize(out)
	require.NoError(t, err)
	reGot, _ := again.Shape(1)
	assert.Equal(t, got.Skew, reGot.Skew)
}

func TestDeserializeRejectsMalformedJSON(t *testing.T) {
	_, _, err := Deserialize([]byte("{not json"))
	var derr *DeserializeError
	require.ErrorAs(t, err, &derr)
}
