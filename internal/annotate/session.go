package annotate

import "glacier-annotator/internal/geo"

// DragSession carries the data captured when a vertex drag begins. The
// target vertex is resolved once at drag start; every subsequent move
// repositions that vertex, even after it has been displaced from the
// start position.
type DragSession struct {
	Index int        // vertex index within the focused polygon
	Start geo.LatLng // pointer position when the drag began
}

// ExtentSession carries the state of an in-progress extent selection:
// the square being positioned and the mode to restore when the
// selection ends or is cancelled.
type ExtentSession struct {
	Side   float64 // square side length in projected meters
	Extent geo.Extent
	prev   Mode
}
