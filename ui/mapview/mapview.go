package mapview

import (
	"image"
	"sort"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"glacier-annotator/internal/basemap"
	"glacier-annotator/internal/geo"
	"glacier-annotator/pkg/geometry"
)

const (
	minZoom = 2
	maxZoom = 19
)

// MapView displays a tiled basemap with pan, zoom, and named overlays.
// All shape coordinates are geographic; the widget projects them to
// screen space on every draw.
type MapView struct {
	widget.BaseWidget

	source *basemap.Source
	raster *fynecanvas.Raster

	center geo.LatLng
	zoom   int

	// Viewport size from the last draw, used for screen<->geo
	// conversion between frames.
	viewW, viewH int

	overlays map[string]*Overlay
	stacking []string // bottom-to-top draw order for named overlays

	// Interaction state
	dragging     bool
	dragConsumed bool // drag claimed by a callback, pan suspended

	onTapped          func(geo.LatLng)
	onSecondaryTapped func(geo.LatLng)
	onHover           func(geo.LatLng)
	onDragStart       func(geo.LatLng) bool // true claims the drag
	onDrag            func(geo.LatLng)
	onDragEnd         func()
	onViewChanged     func(center geo.LatLng, zoom int)
}

// NewMapView creates a map view over the given tile source.
func NewMapView(source *basemap.Source, center geo.LatLng, zoom int) *MapView {
	mv := &MapView{
		source:   source,
		center:   center,
		zoom:     clampZoom(zoom),
		viewW:    800,
		viewH:    600,
		overlays: make(map[string]*Overlay),
	}

	mv.raster = fynecanvas.NewRaster(mv.draw)
	mv.raster.ScaleMode = fynecanvas.ImageScalePixels

	source.OnTileLoaded(mv.Refresh)

	mv.ExtendBaseWidget(mv)
	return mv
}

func clampZoom(z int) int {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// Center returns the current map center.
func (mv *MapView) Center() geo.LatLng {
	return mv.center
}

// Zoom returns the current zoom level.
func (mv *MapView) Zoom() int {
	return mv.zoom
}

// SetView moves the map to the given center and zoom.
func (mv *MapView) SetView(center geo.LatLng, zoom int) {
	mv.center = center
	mv.zoom = clampZoom(zoom)
	mv.viewChanged()
	mv.Refresh()
}

// ZoomIn increases the zoom level by one.
func (mv *MapView) ZoomIn() {
	mv.SetView(mv.center, mv.zoom+1)
}

// ZoomOut decreases the zoom level by one.
func (mv *MapView) ZoomOut() {
	mv.SetView(mv.center, mv.zoom-1)
}

// SetOverlay sets a named overlay.
func (mv *MapView) SetOverlay(name string, overlay *Overlay) {
	mv.overlays[name] = overlay
	mv.Refresh()
}

// ClearOverlay removes a named overlay.
func (mv *MapView) ClearOverlay(name string) {
	delete(mv.overlays, name)
	mv.Refresh()
}

// Overlay returns the named overlay, or nil when it is not set.
func (mv *MapView) Overlay(name string) *Overlay {
	return mv.overlays[name]
}

// SetOverlayStacking fixes the bottom-to-top draw order for the named
// overlays. Overlays not listed draw above them, in name order.
func (mv *MapView) SetOverlayStacking(names ...string) {
	mv.stacking = names
	mv.Refresh()
}

// stackingOrder returns every set overlay name, listed names first in
// their stacking position, the rest sorted.
func (mv *MapView) stackingOrder() []string {
	order := make([]string, 0, len(mv.overlays))
	listed := make(map[string]bool, len(mv.stacking))
	for _, name := range mv.stacking {
		listed[name] = true
		if _, ok := mv.overlays[name]; ok {
			order = append(order, name)
		}
	}
	rest := make([]string, 0, len(mv.overlays))
	for name := range mv.overlays {
		if !listed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// OnTapped sets the left-click callback.
func (mv *MapView) OnTapped(fn func(geo.LatLng)) {
	mv.onTapped = fn
}

// OnSecondaryTapped sets the right-click callback.
func (mv *MapView) OnSecondaryTapped(fn func(geo.LatLng)) {
	mv.onSecondaryTapped = fn
}

// OnHover sets the pointer-motion callback.
func (mv *MapView) OnHover(fn func(geo.LatLng)) {
	mv.onHover = fn
}

// OnDragStart sets the drag-start callback. Returning true claims the
// drag: subsequent motion goes to the drag callback instead of panning
// the map.
func (mv *MapView) OnDragStart(fn func(geo.LatLng) bool) {
	mv.onDragStart = fn
}

// OnDrag sets the callback for motion during a claimed drag.
func (mv *MapView) OnDrag(fn func(geo.LatLng)) {
	mv.onDrag = fn
}

// OnDragEnd sets the callback for the end of a claimed drag.
func (mv *MapView) OnDragEnd(fn func()) {
	mv.onDragEnd = fn
}

// OnViewChanged sets a callback for pan and zoom changes.
func (mv *MapView) OnViewChanged(fn func(center geo.LatLng, zoom int)) {
	mv.onViewChanged = fn
}

func (mv *MapView) viewChanged() {
	if mv.onViewChanged != nil {
		mv.onViewChanged(mv.center, mv.zoom)
	}
}

// ScreenToGeo converts a widget position to a geographic position.
func (mv *MapView) ScreenToGeo(pos fyne.Position) geo.LatLng {
	cx, cy := geo.WorldPixel(mv.center, mv.zoom)
	wx := cx - float64(mv.viewW)/2 + float64(pos.X)
	wy := cy - float64(mv.viewH)/2 + float64(pos.Y)
	return geo.FromWorldPixel(wx, wy, mv.zoom)
}

// screenPos converts a geographic position to widget pixel coordinates.
func (mv *MapView) screenPos(p geo.LatLng) geometry.Point2D {
	cx, cy := geo.WorldPixel(mv.center, mv.zoom)
	px, py := geo.WorldPixel(p, mv.zoom)
	return geometry.Point2D{
		X: px - cx + float64(mv.viewW)/2,
		Y: py - cy + float64(mv.viewH)/2,
	}
}

func geoPoint(lat, lng float64) geo.LatLng {
	return geo.LatLng{Lat: lat, Lng: lng}
}

// GrabToleranceSq converts a screen-pixel radius at the given position
// into a squared geographic degree tolerance at the current zoom, for
// hit-testing pixel-sized targets against geographic coordinates.
func (mv *MapView) GrabToleranceSq(at geo.LatLng, px float64) float64 {
	wx, wy := geo.WorldPixel(at, mv.zoom)
	return at.DistSq(geo.FromWorldPixel(wx+px, wy+px, mv.zoom))
}

// Tapped handles left clicks.
func (mv *MapView) Tapped(ev *fyne.PointEvent) {
	if mv.onTapped != nil {
		mv.onTapped(mv.ScreenToGeo(ev.Position))
	}
}

// TappedSecondary handles right clicks.
func (mv *MapView) TappedSecondary(ev *fyne.PointEvent) {
	if mv.onSecondaryTapped != nil {
		mv.onSecondaryTapped(mv.ScreenToGeo(ev.Position))
	}
}

// MouseIn implements desktop.Hoverable.
func (mv *MapView) MouseIn(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (mv *MapView) MouseOut() {}

// MouseMoved reports pointer motion while no button is held.
func (mv *MapView) MouseMoved(ev *desktop.MouseEvent) {
	if mv.onHover != nil {
		mv.onHover(mv.ScreenToGeo(ev.Position))
	}
}

// Dragged pans the map unless the drag-start callback claims the drag,
// in which case motion is forwarded for vertex editing.
func (mv *MapView) Dragged(ev *fyne.DragEvent) {
	if !mv.dragging {
		mv.dragging = true
		mv.dragConsumed = false
		if mv.onDragStart != nil {
			start := fyne.Position{
				X: ev.Position.X - ev.Dragged.DX,
				Y: ev.Position.Y - ev.Dragged.DY,
			}
			mv.dragConsumed = mv.onDragStart(mv.ScreenToGeo(start))
		}
	}

	if mv.dragConsumed {
		if mv.onDrag != nil {
			mv.onDrag(mv.ScreenToGeo(ev.Position))
		}
		return
	}

	// Pan: shift the center opposite to the pointer motion.
	cx, cy := geo.WorldPixel(mv.center, mv.zoom)
	mv.center = geo.FromWorldPixel(
		cx-float64(ev.Dragged.DX),
		cy-float64(ev.Dragged.DY),
		mv.zoom,
	)
	mv.viewChanged()
	mv.Refresh()
}

// DragEnd finishes a drag.
func (mv *MapView) DragEnd() {
	if mv.dragConsumed && mv.onDragEnd != nil {
		mv.onDragEnd()
	}
	mv.dragging = false
	mv.dragConsumed = false
}

// Scrolled zooms around the current center.
func (mv *MapView) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		mv.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		mv.ZoomOut()
	}
}

// Refresh redraws the map surface.
func (mv *MapView) Refresh() {
	mv.raster.Refresh()
	mv.BaseWidget.Refresh()
}

// draw is the raster drawing function.
func (mv *MapView) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	mv.viewW, mv.viewH = w, h

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	mv.source.Compose(output, mv.center, mv.zoom)

	for _, name := range mv.stackingOrder() {
		if overlay := mv.overlays[name]; overlay != nil {
			mv.drawOverlay(output, overlay)
		}
	}

	return output
}

// CreateRenderer implements fyne.Widget.
func (mv *MapView) CreateRenderer() fyne.WidgetRenderer {
	return &mapViewRenderer{view: mv}
}

type mapViewRenderer struct {
	view *MapView
}

func (r *mapViewRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
}

func (r *mapViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *mapViewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *mapViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *mapViewRenderer) Destroy() {}
