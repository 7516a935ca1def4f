// Drawing primitives for map overlays.
package mapview

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"glacier-annotator/pkg/colorutil"
	"glacier-annotator/pkg/geometry"
)

// drawOverlay draws an overlay on the output image.
func (mv *MapView) drawOverlay(output *image.RGBA, overlay *Overlay) {
	col := overlay.Color

	for _, ovImg := range overlay.Images {
		mv.drawImage(output, ovImg)
	}

	for _, poly := range overlay.Polygons {
		if len(poly.Points) < 2 {
			continue
		}
		c := col
		if poly.Color != nil {
			c = *poly.Color
		}
		mv.drawPolygon(output, poly, c)
	}

	for _, rect := range overlay.Rects {
		mv.drawRect(output, rect, col)
	}

	for _, circle := range overlay.Circles {
		mv.drawCircle(output, circle, col)
	}
}

// drawPolygon draws a filled or outlined polygon, open or closed.
func (mv *MapView) drawPolygon(output *image.RGBA, poly OverlayPolygon, col color.RGBA) {
	pts := make([]geometry.Point2D, len(poly.Points))
	for i, p := range poly.Points {
		pts[i] = mv.screenPos(p)
	}

	if poly.Filled && poly.Closed && len(pts) >= 3 {
		mv.fillPolygon(output, pts, colorutil.WithAlpha(col, 70))
	}

	n := len(pts)
	edges := n - 1
	if poly.Closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		p1 := pts[i]
		p2 := pts[(i+1)%n]
		mv.drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, 2)
	}
}

// fillPolygon fills a polygon using a scanline algorithm, alpha
// blending the fill color over the basemap.
func (mv *MapView) fillPolygon(output *image.RGBA, pts []geometry.Point2D, col color.RGBA) {
	bounds := output.Bounds()
	box := geometry.BoundingBox(pts)

	for y := int(box.Y); y <= int(box.Y+box.Height); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		// Find all x intersections with polygon edges at this y
		var xInts []float64
		n := len(pts)
		for i := 0; i < n; i++ {
			p1 := pts[i]
			p2 := pts[(i+1)%n]
			if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
				(p2.Y <= float64(y) && p1.Y > float64(y)) {
				t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
				xInts = append(xInts, p1.X+t*(p2.X-p1.X))
			}
		}

		// Sort intersections
		for i := 0; i < len(xInts)-1; i++ {
			for j := i + 1; j < len(xInts); j++ {
				if xInts[j] < xInts[i] {
					xInts[i], xInts[j] = xInts[j], xInts[i]
				}
			}
		}

		// Fill between pairs of intersections
		for i := 0; i+1 < len(xInts); i += 2 {
			x1 := int(xInts[i])
			x2 := int(xInts[i+1])
			for x := x1; x <= x2; x++ {
				if x >= bounds.Min.X && x < bounds.Max.X {
					output.SetRGBA(x, y, colorutil.Blend(output.RGBAAt(x, y), col))
				}
			}
		}
	}
}

// drawCircle draws a filled or outlined circle at a geographic center.
func (mv *MapView) drawCircle(output *image.RGBA, circle OverlayCircle, col color.RGBA) {
	bounds := output.Bounds()
	c := mv.screenPos(circle.Center)
	r := circle.Radius

	minX := int(c.X - r - 1)
	maxX := int(c.X + r + 1)
	minY := int(c.Y - r - 1)
	maxY := int(c.Y + r + 1)

	r2 := r * r
	innerR2 := (r - 2) * (r - 2) // 2 pixel outline thickness

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - c.X
			dy := float64(y) - c.Y
			dist2 := dx*dx + dy*dy

			if circle.Filled {
				if dist2 <= r2 {
					output.Set(x, y, col)
				}
			} else {
				if dist2 <= r2 && dist2 >= innerR2 {
					output.Set(x, y, col)
				}
			}
		}
	}
}

// drawRect draws a geographic rectangle outline, optionally dashed.
func (mv *MapView) drawRect(output *image.RGBA, rect OverlayRect, col color.RGBA) {
	bounds := output.Bounds()
	tl := mv.screenPos(geoPoint(rect.Bounds.North, rect.Bounds.West))
	br := mv.screenPos(geoPoint(rect.Bounds.South, rect.Bounds.East))
	x1, y1 := int(tl.X), int(tl.Y)
	x2, y2 := int(br.X), int(br.Y)

	on := func(v int) bool {
		return !rect.Dashed || v%8 < 5
	}

	for t := 0; t < 2; t++ {
		for x := x1; x <= x2; x++ {
			if on(x) && x >= bounds.Min.X && x < bounds.Max.X {
				if y1+t >= bounds.Min.Y && y1+t < bounds.Max.Y {
					output.Set(x, y1+t, col)
				}
				if y2-t >= bounds.Min.Y && y2-t < bounds.Max.Y {
					output.Set(x, y2-t, col)
				}
			}
		}
		for y := y1; y <= y2; y++ {
			if on(y) && y >= bounds.Min.Y && y < bounds.Max.Y {
				if x1+t >= bounds.Min.X && x1+t < bounds.Max.X {
					output.Set(x1+t, y, col)
				}
				if x2-t >= bounds.Min.X && x2-t < bounds.Max.X {
					output.Set(x2-t, y, col)
				}
			}
		}
	}
}

// drawImage scales an image across its geographic bounding box.
func (mv *MapView) drawImage(output *image.RGBA, ovImg OverlayImage) {
	if ovImg.Image == nil {
		return
	}
	tl := mv.screenPos(geoPoint(ovImg.Bounds.North, ovImg.Bounds.West))
	br := mv.screenPos(geoPoint(ovImg.Bounds.South, ovImg.Bounds.East))
	dst := image.Rect(int(tl.X), int(tl.Y), int(br.X), int(br.Y))
	if dst.Dx() <= 0 || dst.Dy() <= 0 {
		return
	}
	xdraw.ApproxBiLinear.Scale(output, dst, ovImg.Image, ovImg.Image.Bounds(), xdraw.Over, nil)
}

// drawLine draws a line between two points using Bresenham's algorithm.
func (mv *MapView) drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		// Draw thick point
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
