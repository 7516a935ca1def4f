package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestPoint(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}}
	assert.Equal(t, 1, ClosestPoint(pts, Point2D{X: 4, Y: 1}))
	assert.Equal(t, -1, ClosestPoint(nil, Point2D{}))
}

func TestClosestPointTieBreaksLowestIndex(t *testing.T) {
	pts := []Point2D{{X: 1, Y: 0}, {X: -1, Y: 0}}
	// Both are distance 1 from the origin; the first wins.
	assert.Equal(t, 0, ClosestPoint(pts, Point2D{}))
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	assert.True(t, PointInPolygon(Point2D{X: 5, Y: 5}, square))
	assert.False(t, PointInPolygon(Point2D{X: 15, Y: 5}, square))
	assert.False(t, PointInPolygon(Point2D{X: 5, Y: -1}, square))

	// Degenerate polygons contain nothing.
	assert.False(t, PointInPolygon(Point2D{}, square[:2]))
}

func TestPointInConcavePolygon(t *testing.T) {
	// A "U" shape: the notch between the arms is outside.
	u := []Point2D{
		{0, 0}, {10, 0}, {10, 10}, {7, 10}, {7, 3}, {3, 3}, {3, 10}, {0, 10},
	}
	assert.True(t, PointInPolygon(Point2D{X: 1, Y: 5}, u))
	assert.False(t, PointInPolygon(Point2D{X: 5, Y: 8}, u))
	assert.True(t, PointInPolygon(Point2D{X: 5, Y: 1}, u))
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	assert.Equal(t, Point2D{X: 2, Y: 2}, Centroid(pts))
	assert.Equal(t, Point2D{}, Centroid(nil))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, 7}, {-1, 2}, {5, 4}}
	box := BoundingBox(pts)
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 6, Height: 5}, box)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, r.Contains(Point2D{X: 5, Y: 5}))
	assert.True(t, r.Contains(Point2D{X: 0, Y: 0}))
	assert.False(t, r.Contains(Point2D{X: 11, Y: 5}))
}

func TestRectIntersectsAndUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
	c := Rect{X: 20, Y: 20, Width: 2, Height: 2}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))

	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 15, Height: 15}, u)
}
