// Package mapview provides the tiled map widget with pan, zoom, and
// annotation overlays.
package mapview

import (
	"image"
	"image/color"

	"glacier-annotator/internal/geo"
)

// Overlay represents a drawable overlay on the map. Shape coordinates
// are geographic; screen positions are derived at draw time from the
// current center and zoom, never stored.
type Overlay struct {
	Polygons []OverlayPolygon
	Circles  []OverlayCircle
	Rects    []OverlayRect
	Images   []OverlayImage
	Color    color.RGBA
}

// OverlayPolygon is a vertex path to draw. Closed joins the last vertex
// back to the first; an in-progress polygon is drawn open so the
// rubber-band edge reads as unfinished.
type OverlayPolygon struct {
	Points []geo.LatLng
	Closed bool
	Filled bool
	Color  *color.RGBA // overrides the overlay color when set
}

// OverlayCircle is a fixed-pixel-radius marker at a geographic
// position, used for polygon vertex nodes.
type OverlayCircle struct {
	Center geo.LatLng
	Radius float64 // pixels
	Filled bool
}

// OverlayRect is a geographic rectangle, used for the extent selection
// square.
type OverlayRect struct {
	Bounds geo.Bounds
	Dashed bool
}

// OverlayImage positions a raster image across a geographic bounding
// box, used for the prediction's soft-output pixel map.
type OverlayImage struct {
	Image  image.Image
	Bounds geo.Bounds
}
