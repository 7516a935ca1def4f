package geo

import "math"

// TileSize is the pixel size of a standard slippy-map tile.
const TileSize = 256

// Tile identifies a slippy-map tile at a given zoom level.
type Tile struct {
	Z, X, Y int
}

// worldSize returns the size of the world in pixels at the given zoom.
func worldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// WorldPixel converts a geographic position to absolute pixel
// coordinates in the world plane at the given zoom level.
func WorldPixel(p LatLng, zoom int) (x, y float64) {
	lat := p.Lat
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	}
	if lat < -maxMercatorLat {
		lat = -maxMercatorLat
	}
	size := worldSize(zoom)
	x = (p.Lng + 180) / 360 * size
	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * size
	return x, y
}

// FromWorldPixel converts absolute world-pixel coordinates back to a
// geographic position.
func FromWorldPixel(x, y float64, zoom int) LatLng {
	size := worldSize(zoom)
	lng := x/size*360 - 180
	n := math.Pi - 2*math.Pi*y/size
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return LatLng{Lat: lat, Lng: lng}
}

// TileAt returns the tile containing the geographic position.
func TileAt(p LatLng, zoom int) Tile {
	x, y := WorldPixel(p, zoom)
	return Tile{
		Z: zoom,
		X: int(math.Floor(x / TileSize)),
		Y: int(math.Floor(y / TileSize)),
	}
}

// Valid reports whether the tile coordinates are inside the tile grid
// for its zoom level. X wraps around the antimeridian; Y does not.
func (t Tile) Valid() bool {
	n := 1 << uint(t.Z)
	return t.Z >= 0 && t.Y >= 0 && t.Y < n
}

// WrapX returns the tile with its X coordinate wrapped into the grid.
func (t Tile) WrapX() Tile {
	n := 1 << uint(t.Z)
	x := t.X % n
	if x < 0 {
		x += n
	}
	return Tile{Z: t.Z, X: x, Y: t.Y}
}
