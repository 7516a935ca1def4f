package mainwindow

import (
	"github.com/paulmach/orb"

	"glacier-annotator/internal/annotate"
	"glacier-annotator/internal/geo"
	"glacier-annotator/pkg/colorutil"
	"glacier-annotator/ui/mapview"
)

// Overlay names on the map view. Stacking is registered at startup:
// the mask raster sits at the bottom, the extent square on top.
const (
	overlayAnnotations = "annotations"
	overlayExtent      = "extent"
	overlayPrediction  = "prediction"
	overlayMask        = "mask"
)

const (
	nodeRadius = 5
	// nodeGrabRadius is the pixel radius within which a drag start
	// counts as grabbing a vertex rather than panning the map.
	nodeGrabRadius = 2 * nodeRadius
)

// refreshAnnotationOverlay rebuilds the polygon overlay from the editor:
// the polygon outlines, and vertex nodes on the focused polygon.
func (mw *MainWindow) refreshAnnotationOverlay() {
	ed := mw.state.Editor

	ov := &mapview.Overlay{Color: colorutil.Cyan}
	for i, poly := range ed.Polygons() {
		if len(poly.Vertices) == 0 {
			continue
		}
		focused := i == ed.Focus()

		// A polygon still being drawn stays open so the rubber-band
		// edge reads as unfinished.
		closed := !(focused && ed.Mode() == annotate.ModeCreate)

		c := colorutil.ClassColor(0)
		if !focused {
			c = colorutil.WithAlpha(c, 180)
		}
		ov.Polygons = append(ov.Polygons, mapview.OverlayPolygon{
			Points: poly.Vertices,
			Closed: closed,
			Filled: closed,
			Color:  &c,
		})

		if focused {
			for _, v := range poly.Vertices {
				ov.Circles = append(ov.Circles, mapview.OverlayCircle{
					Center: v,
					Radius: nodeRadius,
					Filled: ed.Mode() == annotate.ModeEdit,
				})
			}
		}
	}

	mw.mapView.SetOverlay(overlayAnnotations, ov)
}

// refreshExtentOverlay draws the dashed selection square, or clears it
// when no selection is in progress.
func (mw *MainWindow) refreshExtentOverlay() {
	ext, ok := mw.state.Editor.CurrentExtent()
	if !ok {
		mw.mapView.ClearOverlay(overlayExtent)
		return
	}
	mw.mapView.SetOverlay(overlayExtent, &mapview.Overlay{
		Color: colorutil.Orange,
		Rects: []mapview.OverlayRect{{Bounds: ext.Bounds(), Dashed: true}},
	})
}

// refreshPredictionOverlay draws the backend's vectorized geometry.
func (mw *MainWindow) refreshPredictionOverlay() {
	resp, _ := mw.state.Prediction()
	if resp == nil || resp.Geometry == nil {
		mw.mapView.ClearOverlay(overlayPrediction)
		return
	}

	ov := &mapview.Overlay{Color: colorutil.Magenta}
	for _, feat := range resp.Geometry.Features {
		switch g := feat.Geometry.(type) {
		case orb.Polygon:
			appendRings(ov, g)
		case orb.MultiPolygon:
			for _, poly := range g {
				appendRings(ov, poly)
			}
		}
	}
	mw.mapView.SetOverlay(overlayPrediction, ov)
}

// appendRings adds each ring of a GeoJSON polygon as an outline.
func appendRings(ov *mapview.Overlay, poly orb.Polygon) {
	for _, ring := range poly {
		if len(ring) < 3 {
			continue
		}
		pts := make([]geo.LatLng, len(ring))
		for i, p := range ring {
			pts[i] = geo.LatLng{Lat: p.Y(), Lng: p.X()}
		}
		ov.Polygons = append(ov.Polygons, mapview.OverlayPolygon{
			Points: pts,
			Closed: true,
		})
	}
}

// refreshMaskOverlay draws the soft-probability raster across the
// prediction extent when the pixel map is enabled.
func (mw *MainWindow) refreshMaskOverlay() {
	mask := mw.state.SoftMask()
	_, ext := mw.state.Prediction()
	if !mw.state.ShowPixelMap() || mask == nil || ext == nil {
		mw.mapView.ClearOverlay(overlayMask)
		return
	}
	mw.mapView.SetOverlay(overlayMask, &mapview.Overlay{
		Images: []mapview.OverlayImage{{
			Image:  mask.ToImage(colorutil.ClassColor(0)),
			Bounds: ext.Bounds(),
		}},
	})
}
