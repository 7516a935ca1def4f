// Package basemap fetches and caches XYZ map tiles and composes them
// into a viewport image for the map surface.
package basemap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"glacier-annotator/internal/geo"
)

const (
	userAgent = "glacier-annotator/0.1"

	// maxCachedTiles bounds the in-memory tile cache. Eviction is
	// arbitrary; tiles are cheap to re-fetch.
	maxCachedTiles = 512
)

// Source loads tiles from an XYZ tile server with {z}/{x}/{y} URL
// placeholders. Fetches run in the background; Tile returns what is
// cached and schedules the rest.
type Source struct {
	urlTemplate string
	client      *http.Client

	mu      sync.Mutex
	cache   map[geo.Tile]image.Image
	pending map[geo.Tile]bool

	onLoad func()
}

// NewSource creates a tile source for the given URL template.
func NewSource(urlTemplate string) *Source {
	return &Source{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 15 * time.Second},
		cache:       make(map[geo.Tile]image.Image),
		pending:     make(map[geo.Tile]bool),
	}
}

// OnTileLoaded registers a callback invoked from a background goroutine
// whenever a fetch completes, typically to refresh the map widget.
func (s *Source) OnTileLoaded(fn func()) {
	s.onLoad = fn
}

// URL expands the template for a tile.
func (s *Source) URL(t geo.Tile) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprint(t.Z),
		"{x}", fmt.Sprint(t.X),
		"{y}", fmt.Sprint(t.Y),
	)
	return r.Replace(s.urlTemplate)
}

// Tile returns the cached image for the tile, scheduling a background
// fetch on a miss. The second return value reports a cache hit.
func (s *Source) Tile(t geo.Tile) (image.Image, bool) {
	t = t.WrapX()
	if !t.Valid() {
		return nil, false
	}

	s.mu.Lock()
	img, ok := s.cache[t]
	if !ok && !s.pending[t] {
		s.pending[t] = true
		go s.fetch(t)
	}
	s.mu.Unlock()
	return img, ok
}

// fetch downloads and decodes one tile, then notifies the load callback.
func (s *Source) fetch(t geo.Tile) {
	defer func() {
		s.mu.Lock()
		delete(s.pending, t)
		s.mu.Unlock()
	}()

	req, err := http.NewRequest(http.MethodGet, s.URL(t), nil)
	if err != nil {
		log.Printf("basemap: bad tile URL for %v: %v", t, err)
		return
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("basemap: fetch %d/%d/%d: %v", t.Z, t.X, t.Y, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("basemap: fetch %d/%d/%d: status %d", t.Z, t.X, t.Y, resp.StatusCode)
		return
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		log.Printf("basemap: decode %d/%d/%d: %v", t.Z, t.X, t.Y, err)
		return
	}

	s.mu.Lock()
	if len(s.cache) >= maxCachedTiles {
		for k := range s.cache {
			delete(s.cache, k)
			if len(s.cache) < maxCachedTiles/2 {
				break
			}
		}
	}
	s.cache[t] = img
	s.mu.Unlock()

	if s.onLoad != nil {
		s.onLoad()
	}
}

// placeholder fills for tiles that have not arrived yet.
var placeholder = color.RGBA{R: 0xE8, G: 0xEA, B: 0xED, A: 0xFF}

// Compose draws all tiles visible in a w×h viewport centered on the
// given position into out. Missing tiles are filled with a neutral
// placeholder and will trigger a refresh once fetched.
func (s *Source) Compose(out *image.RGBA, center geo.LatLng, zoom int) {
	b := out.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := geo.WorldPixel(center, zoom)
	originX := cx - float64(w)/2
	originY := cy - float64(h)/2

	// Floor, not truncate: the origin goes negative when the world at
	// this zoom is smaller than the viewport, and the leftmost and
	// topmost tile indices must still round down.
	minTX := int(math.Floor(originX / geo.TileSize))
	minTY := int(math.Floor(originY / geo.TileSize))
	maxTX := int(math.Floor((originX + float64(w)) / geo.TileSize))
	maxTY := int(math.Floor((originY + float64(h)) / geo.TileSize))
	offX := int(math.Floor(originX))
	offY := int(math.Floor(originY))

	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			dstX := tx*geo.TileSize - offX
			dstY := ty*geo.TileSize - offY
			dst := image.Rect(dstX, dstY, dstX+geo.TileSize, dstY+geo.TileSize)

			img, ok := s.Tile(geo.Tile{Z: zoom, X: tx, Y: ty})
			if !ok || img == nil {
				draw.Draw(out, dst, &image.Uniform{C: placeholder}, image.Point{}, draw.Src)
				continue
			}
			draw.Draw(out, dst, img, img.Bounds().Min, draw.Src)
		}
	}
}
