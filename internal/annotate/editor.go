// Package annotate implements the polygon annotation editor: an
// event-driven state machine that turns pointer and key events into
// vertex mutations on a set of geographic polygons, plus the square
// extent selector used to request model predictions.
package annotate

import (
	"glacier-annotator/internal/geo"
	"glacier-annotator/pkg/geometry"
)

// Mode is the editor's interaction mode. Events that do not belong to
// the current mode are silently ignored.
type Mode int

const (
	ModeIdle   Mode = iota // no interaction active
	ModeCreate             // a polygon is being drawn vertex by vertex
	ModeEdit               // the focused polygon's vertices can be dragged
	ModeExtent             // a square extent is being positioned
)

// String returns a human-readable mode name for the status bar.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeCreate:
		return "drawing"
	case ModeEdit:
		return "editing"
	case ModeExtent:
		return "selecting extent"
	default:
		return "unknown"
	}
}

// CloseToleranceSq is the maximum squared distance, in coordinate-degree
// space, between a polygon's first and last vertex for the polygon to be
// considered closed.
const CloseToleranceSq = 0.001

// Polygon is an ordered sequence of geographic vertices. Insertion
// order defines the edges; the ring is implicitly closed by rendering.
type Polygon struct {
	Vertices []geo.LatLng
}

// Contains reports whether the position falls inside the polygon.
func (p *Polygon) Contains(pos geo.LatLng) bool {
	pts := make([]geometry.Point2D, len(p.Vertices))
	for i, v := range p.Vertices {
		pts[i] = geometry.Point2D{X: v.Lng, Y: v.Lat}
	}
	return geometry.PointInPolygon(geometry.Point2D{X: pos.Lng, Y: pos.Lat}, pts)
}

// Editor owns the polygon set, the focus index, and the interaction
// mode. All event handlers run on the UI event loop; the editor has no
// internal locking.
type Editor struct {
	polygons []*Polygon
	focus    int // index into polygons, -1 when nothing is focused
	mode     Mode

	drag   *DragSession
	extent *ExtentSession

	extentSide float64 // square side length in projected meters

	onChange func()
}

// NewEditor creates an idle editor with no polygons. extentSide is the
// side length, in Web Mercator meters, of the square drawn during
// extent selection.
func NewEditor(extentSide float64) *Editor {
	return &Editor{focus: -1, mode: ModeIdle, extentSide: extentSide}
}

// OnChange registers a callback invoked after every state mutation,
// typically to trigger a redraw.
func (e *Editor) OnChange(fn func()) {
	e.onChange = fn
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Mode returns the current interaction mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Polygons returns the polygon set. Callers must not mutate it.
func (e *Editor) Polygons() []*Polygon {
	return e.polygons
}

// Focus returns the index of the focused polygon, or -1.
func (e *Editor) Focus() int {
	return e.focus
}

// Focused returns the focused polygon, or nil.
func (e *Editor) Focused() *Polygon {
	if e.focus < 0 || e.focus >= len(e.polygons) {
		return nil
	}
	return e.polygons[e.focus]
}

// StartNewPolygon appends an empty polygon, focuses it, and enters
// create mode. Any in-progress extent selection is cancelled first.
func (e *Editor) StartNewPolygon() {
	if e.mode == ModeExtent {
		e.CancelExtentSelection()
	}
	e.drag = nil
	e.polygons = append(e.polygons, &Polygon{})
	e.focus = len(e.polygons) - 1
	e.mode = ModeCreate
	e.changed()
}

// AppendPolygon adds a completed polygon (for example one promoted
// from a prediction) without changing mode. The new polygon receives
// focus so it can be edited immediately.
func (e *Editor) AppendPolygon(p *Polygon) {
	if p == nil || len(p.Vertices) == 0 {
		return
	}
	e.polygons = append(e.polygons, p)
	if e.mode == ModeIdle || e.mode == ModeEdit {
		e.focus = len(e.polygons) - 1
		e.mode = ModeEdit
	}
	e.changed()
}

// PointerMoved handles pointer movement. In create mode it maintains
// the rubber-band preview vertex; during a node drag it repositions the
// dragged vertex; in extent mode it re-centers the selection square.
func (e *Editor) PointerMoved(pos geo.LatLng) {
	switch e.mode {
	case ModeCreate:
		e.rubberBand(pos)
	case ModeEdit:
		if e.drag != nil {
			e.dragVertex(pos)
		}
	case ModeExtent:
		if e.extent != nil {
			e.extent.Extent = geo.SquareExtent(pos, e.extent.Side)
			e.changed()
		}
	}
}

// rubberBand updates the preview vertex that follows the pointer.
func (e *Editor) rubberBand(pos geo.LatLng) {
	poly := e.Focused()
	if poly == nil {
		return
	}
	n := len(poly.Vertices)
	if n == 0 {
		poly.Vertices = append(poly.Vertices, pos)
		e.changed()
		return
	}
	if n > 2 && pos.DistSq(poly.Vertices[0]) <= CloseToleranceSq {
		// Snap the preview onto the first vertex as a closing cue.
		poly.Vertices[n-1] = poly.Vertices[0]
	} else {
		poly.Vertices[n-1] = pos
	}
	e.changed()
}

// Click commits a vertex while in create mode. When the committed
// vertex lands within the closing tolerance of the first vertex (and
// the polygon has more than 2 vertices), the rubber-band preview and
// the duplicate closing vertex are dropped and the editor enters edit
// mode. Clicks in other modes are ignored.
func (e *Editor) Click(pos geo.LatLng) {
	if e.mode != ModeCreate {
		return
	}
	poly := e.Focused()
	if poly == nil {
		return
	}
	poly.Vertices = append(poly.Vertices, pos)
	n := len(poly.Vertices)
	if n > 2 && poly.Vertices[n-1].DistSq(poly.Vertices[0]) <= CloseToleranceSq {
		poly.Vertices = poly.Vertices[:n-2]
		e.mode = ModeEdit
	}
	e.changed()
}

// BeginNodeDrag starts a vertex drag session in edit mode. The vertex
// nearest to the drag start position is captured once, up front, so
// subsequent moves always reposition the same vertex. The drag is
// claimed only when that vertex lies within tolSq (squared degrees) of
// the start position; drags on empty map space are refused so the
// caller can pan instead. Returns true if a drag began.
func (e *Editor) BeginNodeDrag(start geo.LatLng, tolSq float64) bool {
	if e.mode != ModeEdit {
		return false
	}
	poly := e.Focused()
	if poly == nil || len(poly.Vertices) == 0 {
		return false
	}
	idx := ClosestVertex(poly.Vertices, start)
	if poly.Vertices[idx].DistSq(start) > tolSq {
		return false
	}
	e.drag = &DragSession{Index: idx, Start: start}
	return true
}

// Dragging reports whether a node drag session is active.
func (e *Editor) Dragging() bool {
	return e.drag != nil
}

// EndNodeDrag finishes the active drag session, if any. The caller
// should re-enable map panning.
func (e *Editor) EndNodeDrag() {
	e.drag = nil
}

// dragVertex repositions the vertex captured at drag start.
func (e *Editor) dragVertex(pos geo.LatLng) {
	poly := e.Focused()
	if poly == nil || e.drag.Index >= len(poly.Vertices) {
		return
	}
	poly.Vertices[e.drag.Index] = pos
	e.changed()
}

// SelectPolygonAt focuses the topmost closed polygon containing the
// position and enters edit mode. Returns true on a hit. Ignored while
// drawing or selecting an extent.
func (e *Editor) SelectPolygonAt(pos geo.LatLng) bool {
	if e.mode == ModeCreate || e.mode == ModeExtent {
		return false
	}
	for i := len(e.polygons) - 1; i >= 0; i-- {
		if e.polygons[i].Contains(pos) {
			e.focus = i
			e.mode = ModeEdit
			e.changed()
			return true
		}
	}
	return false
}

// ClosestVertex returns the index of the vertex nearest to the query
// position by squared distance in lat/lng space. Ties are broken by the
// first-encountered (lowest) index. Returns -1 for an empty slice.
func ClosestVertex(vertices []geo.LatLng, query geo.LatLng) int {
	pts := make([]geometry.Point2D, len(vertices))
	for i, v := range vertices {
		pts[i] = geometry.Point2D{X: v.Lng, Y: v.Lat}
	}
	return geometry.ClosestPoint(pts, geometry.Point2D{X: query.Lng, Y: query.Lat})
}
