package annotate

import "glacier-annotator/internal/geo"

// BeginExtentSelection starts positioning a fixed-size square extent
// centered on the given position. Ignored while a polygon is being
// drawn. The square follows the pointer until the selection is
// confirmed or cancelled.
func (e *Editor) BeginExtentSelection(center geo.LatLng) {
	if e.mode == ModeCreate || e.mode == ModeExtent {
		return
	}
	e.extent = &ExtentSession{
		Side:   e.extentSide,
		Extent: geo.SquareExtent(center, e.extentSide),
		prev:   e.mode,
	}
	e.mode = ModeExtent
	e.changed()
}

// CurrentExtent returns the extent being positioned, if a selection is
// in progress.
func (e *Editor) CurrentExtent() (geo.Extent, bool) {
	if e.extent == nil {
		return geo.Extent{}, false
	}
	return e.extent.Extent, true
}

// CancelExtentSelection removes the in-progress selection square and
// restores the previous mode. Idempotent when no selection is active.
func (e *Editor) CancelExtentSelection() {
	if e.mode != ModeExtent || e.extent == nil {
		return
	}
	e.mode = e.extent.prev
	e.extent = nil
	e.changed()
}

// ConfirmExtent finishes the selection and returns the chosen extent.
// The second return value is false if no selection was in progress.
func (e *Editor) ConfirmExtent() (geo.Extent, bool) {
	if e.mode != ModeExtent || e.extent == nil {
		return geo.Extent{}, false
	}
	ext := e.extent.Extent
	e.mode = e.extent.prev
	e.extent = nil
	e.changed()
	return ext, true
}
