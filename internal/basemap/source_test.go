package basemap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier-annotator/internal/geo"
)

func TestURLExpansion(t *testing.T) {
	s := NewSource("https://tile.example.org/{z}/{x}/{y}.png")
	assert.Equal(t, "https://tile.example.org/11/1452/791.png",
		s.URL(geo.Tile{Z: 11, X: 1452, Y: 791}))
}

func tilePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTileFetchAndCache(t *testing.T) {
	var hits atomic.Int32
	data := tilePNG(t, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	s := NewSource(srv.URL + "/{z}/{x}/{y}.png")
	loaded := make(chan struct{}, 4)
	s.OnTileLoaded(func() { loaded <- struct{}{} })

	tile := geo.Tile{Z: 3, X: 1, Y: 2}

	// First call misses and schedules a fetch.
	img, ok := s.Tile(tile)
	assert.False(t, ok)
	assert.Nil(t, img)

	select {
	case <-loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("tile never loaded")
	}

	// Cached now; no second request.
	img, ok = s.Tile(tile)
	require.True(t, ok)
	require.NotNil(t, img)
	assert.Equal(t, geo.TileSize, img.Bounds().Dx())
	assert.Equal(t, int32(1), hits.Load())
}

func TestTileRejectsInvalid(t *testing.T) {
	s := NewSource("https://tile.example.org/{z}/{x}/{y}.png")
	img, ok := s.Tile(geo.Tile{Z: 3, X: 0, Y: -1})
	assert.False(t, ok)
	assert.Nil(t, img)
}

func TestTileFetchErrorLeavesCacheEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewSource(srv.URL + "/{z}/{x}/{y}.png")
	tile := geo.Tile{Z: 3, X: 1, Y: 2}

	_, ok := s.Tile(tile)
	assert.False(t, ok)

	// Give the background fetch time to fail.
	time.Sleep(200 * time.Millisecond)
	s.mu.Lock()
	_, cached := s.cache[tile]
	s.mu.Unlock()
	assert.False(t, cached)
}

func TestComposeFillsPlaceholder(t *testing.T) {
	// A source that never answers: every tile stays a placeholder.
	s := NewSource("http://127.0.0.1:0/{z}/{x}/{y}.png")

	out := image.NewRGBA(image.Rect(0, 0, 512, 512))
	s.Compose(out, geo.LatLng{Lat: 35.72, Lng: 75.35}, 11)

	assert.Equal(t, placeholder, out.RGBAAt(0, 0))
	assert.Equal(t, placeholder, out.RGBAAt(511, 511))
	assert.Equal(t, placeholder, out.RGBAAt(256, 256))
}

func TestComposeCoversNegativeOrigin(t *testing.T) {
	// At zoom 1 the world is 512px, so a 600px viewport centered on
	// (0,0) starts at world pixel -44. The leftmost and topmost tile
	// indices must round down past zero or those rows stay unpainted.
	s := NewSource("http://127.0.0.1:0/{z}/{x}/{y}.png")

	out := image.NewRGBA(image.Rect(0, 0, 600, 600))
	s.Compose(out, geo.LatLng{}, 1)

	for y := 0; y < 600; y++ {
		for x := 0; x < 600; x++ {
			if out.RGBAAt(x, y).A == 0 {
				t.Fatalf("unpainted pixel at (%d,%d)", x, y)
			}
		}
	}
	assert.Equal(t, placeholder, out.RGBAAt(0, 0))
	assert.Equal(t, placeholder, out.RGBAAt(599, 0))
	assert.Equal(t, placeholder, out.RGBAAt(0, 599))
}
