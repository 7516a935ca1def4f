package geo

import "math"

// CRSWebMercator is the EPSG code of the projected coordinate system
// used for extent selection and backend requests.
const CRSWebMercator = 3857

// earthRadius is the WGS84 semi-major axis used by spherical Web Mercator.
const earthRadius = 6378137.0

// maxMercatorLat is the latitude beyond which Web Mercator is undefined.
const maxMercatorLat = 85.05112877980659

// Projected is a position in Web Mercator meters (EPSG:3857).
type Projected struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Project converts a geographic position to Web Mercator meters.
// Latitudes are clamped to the projection's valid range.
func Project(p LatLng) Projected {
	lat := p.Lat
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	}
	if lat < -maxMercatorLat {
		lat = -maxMercatorLat
	}
	x := earthRadius * p.Lng * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return Projected{X: x, Y: y}
}

// Unproject converts Web Mercator meters back to a geographic position.
func Unproject(p Projected) LatLng {
	lng := p.X / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(p.Y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return LatLng{Lat: lat, Lng: lng}
}

// Extent is an axis-aligned rectangle in Web Mercator meters, the shape
// submitted to the prediction backend.
type Extent struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
	CRS  int     `json:"crs"`
}

// SquareExtent returns the extent of a square with the given side length
// in projected meters, centered on the geographic position. Each edge is
// rounded to the nearest integer meter, matching what the backend's
// raster grid expects.
func SquareExtent(center LatLng, side float64) Extent {
	c := Project(center)
	return Extent{
		XMin: math.Round(c.X - side/2),
		XMax: math.Round(c.X + side/2),
		YMin: math.Round(c.Y - side/2),
		YMax: math.Round(c.Y + side/2),
		CRS:  CRSWebMercator,
	}
}

// Corners returns the geographic corners of the extent in top-left,
// top-right, bottom-right, bottom-left order.
func (e Extent) Corners() [4]LatLng {
	tl := Unproject(Projected{X: e.XMin, Y: e.YMax})
	br := Unproject(Projected{X: e.XMax, Y: e.YMin})
	return [4]LatLng{
		tl,
		{Lat: tl.Lat, Lng: br.Lng},
		br,
		{Lat: br.Lat, Lng: tl.Lng},
	}
}

// Bounds returns the geographic bounding box of the extent.
func (e Extent) Bounds() Bounds {
	c := e.Corners()
	return Bounds{South: c[2].Lat, West: c[0].Lng, North: c[0].Lat, East: c[2].Lng}
}

// Center returns the projected-space center of the extent.
func (e Extent) Center() Projected {
	return Projected{X: (e.XMin + e.XMax) / 2, Y: (e.YMin + e.YMax) / 2}
}
