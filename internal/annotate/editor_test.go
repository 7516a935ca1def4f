package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier-annotator/internal/geo"
)

func ll(lat, lng float64) geo.LatLng {
	return geo.LatLng{Lat: lat, Lng: lng}
}

// place simulates the pointer moving to a position and then clicking,
// the way a real drawing session interleaves the two.
func place(e *Editor, pos geo.LatLng) {
	e.PointerMoved(pos)
	e.Click(pos)
}

func TestStartNewPolygonEntersCreateMode(t *testing.T) {
	e := NewEditor(10000)
	assert.Equal(t, ModeIdle, e.Mode())
	assert.Equal(t, -1, e.Focus())

	e.StartNewPolygon()

	assert.Equal(t, ModeCreate, e.Mode())
	require.Len(t, e.Polygons(), 1)
	assert.Equal(t, 0, e.Focus())
	assert.Empty(t, e.Focused().Vertices)
}

func TestDrawAndCloseSquare(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()

	place(e, ll(0, 0))
	place(e, ll(0, 1))
	place(e, ll(1, 1))
	place(e, ll(1, 0))

	// Closing click near the first vertex: within sqrt(0.001) degrees.
	place(e, ll(0.0003, 0.0004))

	assert.Equal(t, ModeEdit, e.Mode())
	poly := e.Focused()
	require.NotNil(t, poly)
	require.Len(t, poly.Vertices, 4)
	assert.Equal(t, ll(0, 0), poly.Vertices[0])
	assert.Equal(t, ll(1, 0), poly.Vertices[3])
}

func TestCloseRequiresMoreThanTwoVertices(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()

	e.Click(ll(0, 0))
	e.Click(ll(0.0001, 0.0001)) // near the first vertex but only 2 vertices

	assert.Equal(t, ModeCreate, e.Mode(), "a 2-vertex path must not close")
	assert.Len(t, e.Focused().Vertices, 2)
}

func TestRubberBandOverwritesPreviewVertex(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()

	// First move seeds the preview vertex.
	e.PointerMoved(ll(0, 0))
	require.Len(t, e.Focused().Vertices, 1)

	// Subsequent moves overwrite it rather than appending.
	e.PointerMoved(ll(0, 0.5))
	e.PointerMoved(ll(0, 1))
	require.Len(t, e.Focused().Vertices, 1)
	assert.Equal(t, ll(0, 1), e.Focused().Vertices[0])
}

func TestRubberBandSnapsOntoFirstVertexNearClose(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()
	place(e, ll(0, 0))
	place(e, ll(0, 1))
	place(e, ll(1, 1))

	// Move within tolerance of the first vertex: preview snaps onto it.
	e.PointerMoved(ll(0.0002, 0.0002))
	verts := e.Focused().Vertices
	assert.Equal(t, ll(0, 0), verts[len(verts)-1])
}

func TestClickIgnoredOutsideCreateMode(t *testing.T) {
	e := NewEditor(10000)
	e.Click(ll(1, 1))
	assert.Empty(t, e.Polygons())

	e.StartNewPolygon()
	place(e, ll(0, 0))
	place(e, ll(0, 1))
	place(e, ll(1, 1))
	place(e, ll(0.0001, 0))
	require.Equal(t, ModeEdit, e.Mode())

	before := len(e.Focused().Vertices)
	e.Click(ll(5, 5))
	assert.Len(t, e.Focused().Vertices, before, "clicks in edit mode must not add vertices")
}

func TestClosestVertexTieBreaksLowestIndex(t *testing.T) {
	verts := []geo.LatLng{ll(0, 0), ll(0, 2), ll(0, 0)}
	assert.Equal(t, 0, ClosestVertex(verts, ll(0, 0)))

	assert.Equal(t, -1, ClosestVertex(nil, ll(0, 0)))
}

func TestNodeDragMovesCapturedVertexOnly(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()
	place(e, ll(0, 0))
	place(e, ll(0, 1))
	place(e, ll(1, 1))
	place(e, ll(0.0001, 0))
	require.Equal(t, ModeEdit, e.Mode())

	// Drag starts near vertex 1.
	ok := e.BeginNodeDrag(ll(0.01, 0.99), 0.01)
	require.True(t, ok)
	assert.True(t, e.Dragging())

	// Even when the pointer passes closer to another vertex, the
	// captured vertex keeps moving.
	e.PointerMoved(ll(0.9, 0.9))
	e.PointerMoved(ll(0.5, 2))
	e.EndNodeDrag()

	assert.False(t, e.Dragging())
	verts := e.Focused().Vertices
	assert.Equal(t, ll(0, 0), verts[0])
	assert.Equal(t, ll(0.5, 2), verts[1])
	assert.Equal(t, ll(1, 1), verts[2])
}

func TestBeginNodeDragRequiresEditMode(t *testing.T) {
	e := NewEditor(10000)
	assert.False(t, e.BeginNodeDrag(ll(0, 0), 1))

	e.StartNewPolygon()
	assert.False(t, e.BeginNodeDrag(ll(0, 0), 1), "no drag while drawing")
}

func TestBeginNodeDragRejectsFarPointer(t *testing.T) {
	e := NewEditor(10000)
	e.StartNewPolygon()
	place(e, ll(0, 0))
	place(e, ll(0, 1))
	place(e, ll(1, 1))
	place(e, ll(0.0001, 0))
	require.Equal(t, ModeEdit, e.Mode())

	// A drag starting far from every vertex must not be claimed, so the
	// map can pan instead.
	before := append([]geo.LatLng(nil), e.Focused().Vertices...)
	assert.False(t, e.BeginNodeDrag(ll(50, 50), 0.001))
	assert.False(t, e.Dragging())

	// And the motion that follows must leave the polygon untouched.
	e.PointerMoved(ll(49, 49))
	assert.Equal(t, before, e.Focused().Vertices)

	// The same start within tolerance is claimed.
	assert.True(t, e.BeginNodeDrag(ll(0.01, 0.99), 0.01))
	assert.Equal(t, 1, e.drag.Index)
}

func TestSelectPolygonAtFocusesTopmost(t *testing.T) {
	e := NewEditor(10000)
	square := func(lat, lng, size float64) *Polygon {
		return &Polygon{Vertices: []geo.LatLng{
			ll(lat, lng), ll(lat, lng+size), ll(lat+size, lng+size), ll(lat+size, lng),
		}}
	}
	e.AppendPolygon(square(0, 0, 10))
	e.AppendPolygon(square(2, 2, 2))

	// Inside both; the later (topmost) polygon wins.
	assert.True(t, e.SelectPolygonAt(ll(3, 3)))
	assert.Equal(t, 1, e.Focus())
	assert.Equal(t, ModeEdit, e.Mode())

	// Inside only the first.
	assert.True(t, e.SelectPolygonAt(ll(8, 8)))
	assert.Equal(t, 0, e.Focus())

	assert.False(t, e.SelectPolygonAt(ll(50, 50)))
}

func TestSelectPolygonIgnoredWhileDrawing(t *testing.T) {
	e := NewEditor(10000)
	e.AppendPolygon(&Polygon{Vertices: []geo.LatLng{
		ll(0, 0), ll(0, 10), ll(10, 10), ll(10, 0),
	}})
	e.StartNewPolygon()
	assert.False(t, e.SelectPolygonAt(ll(5, 5)))
	assert.Equal(t, ModeCreate, e.Mode())
}

func TestAppendPolygonIgnoresEmpty(t *testing.T) {
	e := NewEditor(10000)
	e.AppendPolygon(nil)
	e.AppendPolygon(&Polygon{})
	assert.Empty(t, e.Polygons())
}

func TestOnChangeFires(t *testing.T) {
	e := NewEditor(10000)
	var calls int
	e.OnChange(func() { calls++ })

	e.StartNewPolygon()
	place(e, ll(0, 0))
	assert.GreaterOrEqual(t, calls, 2)
}
