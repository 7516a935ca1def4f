package raster

import (
	"fmt"

	"gocv.io/x/gocv"

	"glacier-annotator/pkg/geometry"
)

// Vectorize extracts the outer contours of the mask's above-threshold
// regions as pixel-space polygons. Contours with fewer than 3 points
// are dropped.
func Vectorize(m *Mask, thresh float64) ([]PixelPolygon, error) {
	if m.Width == 0 || m.Height == 0 {
		return nil, nil
	}

	binary := m.Binarize(thresh)
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, binary)
	if err != nil {
		return nil, fmt.Errorf("build mask mat: %w", err)
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var polys []PixelPolygon
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() < 3 {
			continue
		}
		poly := make(PixelPolygon, 0, contour.Size())
		for _, pt := range contour.ToPoints() {
			poly = append(poly, geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)})
		}
		polys = append(polys, poly)
	}
	return polys, nil
}
