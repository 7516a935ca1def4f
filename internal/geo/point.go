// Package geo provides geographic coordinate types, the Web Mercator
// projection, and slippy-map tile arithmetic.
package geo

// LatLng is a geographic position in degrees (EPSG:4326).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistSq returns the squared distance to another position in
// coordinate-degree space. This is not a metric distance; it is the
// quantity the editor uses for closing-tolerance and nearest-vertex
// checks.
func (p LatLng) DistSq(other LatLng) float64 {
	dLat := p.Lat - other.Lat
	dLng := p.Lng - other.Lng
	return dLat*dLat + dLng*dLng
}

// Bounds is an axis-aligned geographic rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf computes the bounding box of a set of positions.
func BoundsOf(points []LatLng) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		South: points[0].Lat, North: points[0].Lat,
		West: points[0].Lng, East: points[0].Lng,
	}
	for _, p := range points[1:] {
		if p.Lat < b.South {
			b.South = p.Lat
		}
		if p.Lat > b.North {
			b.North = p.Lat
		}
		if p.Lng < b.West {
			b.West = p.Lng
		}
		if p.Lng > b.East {
			b.East = p.Lng
		}
	}
	return b
}

// Contains returns true if the position lies within the bounds.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lng >= b.West && p.Lng <= b.East
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}
