package mapview

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier-annotator/internal/basemap"
	"glacier-annotator/internal/geo"
)

func newTestView(center geo.LatLng, zoom int) *MapView {
	test.NewApp()
	source := basemap.NewSource("http://127.0.0.1:0/{z}/{x}/{y}.png")
	return NewMapView(source, center, zoom)
}

func TestGrabToleranceSqMatchesPixelRadius(t *testing.T) {
	at := geo.LatLng{Lat: 35.72, Lng: 75.35}
	mv := newTestView(at, 11)

	tolSq := mv.GrabToleranceSq(at, 10)
	require.Greater(t, tolSq, 0.0)

	// A point 5 pixels away sits inside the tolerance, one 30 pixels
	// away outside it.
	wx, wy := geo.WorldPixel(at, 11)
	near := geo.FromWorldPixel(wx+5, wy, 11)
	far := geo.FromWorldPixel(wx+30, wy+30, 11)
	assert.Less(t, at.DistSq(near), tolSq)
	assert.Greater(t, at.DistSq(far), tolSq)
}

func TestGrabToleranceSqShrinksWithZoom(t *testing.T) {
	at := geo.LatLng{Lat: 35.72, Lng: 75.35}
	coarse := newTestView(at, 5).GrabToleranceSq(at, 10)
	fine := newTestView(at, 15).GrabToleranceSq(at, 10)
	assert.Greater(t, coarse, fine)
}

func TestOverlaySetGetClear(t *testing.T) {
	mv := newTestView(geo.LatLng{}, 3)

	assert.Nil(t, mv.Overlay("annotations"))
	ov := &Overlay{Color: color.RGBA{R: 255, A: 255}}
	mv.SetOverlay("annotations", ov)
	assert.Same(t, ov, mv.Overlay("annotations"))

	mv.ClearOverlay("annotations")
	assert.Nil(t, mv.Overlay("annotations"))
}

func TestStackingOrderListsNamedOverlaysFirst(t *testing.T) {
	mv := newTestView(geo.LatLng{}, 3)
	mv.SetOverlayStacking("mask", "annotations")

	mv.SetOverlay("annotations", &Overlay{})
	mv.SetOverlay("extent", &Overlay{})
	mv.SetOverlay("mask", &Overlay{})

	// Stacked names keep their position and skip unset entries; the
	// rest follow in name order.
	assert.Equal(t, []string{"mask", "annotations", "extent"}, mv.stackingOrder())

	mv.ClearOverlay("mask")
	assert.Equal(t, []string{"annotations", "extent"}, mv.stackingOrder())
}

func TestOverlaysDrawInStackingOrder(t *testing.T) {
	mv := newTestView(geo.LatLng{}, 3)

	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	dot := func(c color.RGBA) *Overlay {
		return &Overlay{
			Color:   c,
			Circles: []OverlayCircle{{Center: geo.LatLng{}, Radius: 10, Filled: true}},
		}
	}
	mv.SetOverlay("under", dot(red))
	mv.SetOverlay("over", dot(blue))

	center := func() color.RGBA {
		out := mv.draw(100, 100).(*image.RGBA)
		return out.RGBAAt(50, 50)
	}

	mv.SetOverlayStacking("under", "over")
	assert.Equal(t, blue, center())

	mv.SetOverlayStacking("over", "under")
	assert.Equal(t, red, center())
}
