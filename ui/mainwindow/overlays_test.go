package mainwindow

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier-annotator/internal/app"
	"glacier-annotator/internal/config"
	"glacier-annotator/internal/geo"
	"glacier-annotator/ui/prefs"
)

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{URL: backendURL, TimeoutSeconds: 5},
		Dataset: config.DatasetConfig{
			Classes:       []string{"clean_ice", "debris"},
			Model:         "unet_dropout",
			MaskThreshold: 0.6,
		},
		Map: config.MapConfig{
			TileURL:    "http://127.0.0.1:0/{z}/{x}/{y}.png",
			CenterLat:  35.72,
			CenterLng:  75.35,
			Zoom:       11,
			ExtentSide: 10000,
		},
	}
}

// softMaskB64 builds a small gray PNG encoded the way the backend sends
// its soft output.
func softMaskB64(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// predictionServer answers /models and /predict; outputSoft is omitted
// from the prediction when empty.
func predictionServer(outputSoft string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_ = json.NewEncoder(w).Encode([]map[string]string{{"name": "unet_dropout"}})
			return
		}
		resp := map[string]interface{}{
			"extent": map[string]interface{}{
				"xmin": 8385000, "xmax": 8395000,
				"ymin": 4255000, "ymax": 4265000,
				"crs": geo.CRSWebMercator,
			},
			"y_geo": map[string]interface{}{
				"type": "FeatureCollection",
				"features": []map[string]interface{}{{
					"type":       "Feature",
					"properties": map[string]interface{}{},
					"geometry": map[string]interface{}{
						"type": "Polygon",
						"coordinates": [][][]float64{{
							{75.3, 35.7}, {75.4, 35.7}, {75.4, 35.8}, {75.3, 35.7},
						}},
					},
				}},
			},
		}
		if outputSoft != "" {
			resp["output_soft"] = outputSoft
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// newTestWindow builds the full window over a test driver and waits for
// one prediction round-trip against the given backend.
func newTestWindow(t *testing.T, backendURL string) (*MainWindow, *app.State) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // isolate stored preferences
	state := app.NewState(testConfig(backendURL))
	mw := New(test.NewApp(), state, prefs.Load())

	received := make(chan struct{}, 1)
	state.On(app.EventPredictionReceived, func(interface{}) {
		received <- struct{}{}
	})
	state.RequestPrediction(geo.SquareExtent(geo.LatLng{Lat: 35.72, Lng: 75.35}, 10000))
	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("prediction never arrived")
	}
	return mw, state
}

func TestGeometryOnlyPredictionDrawsNoMaskOverlay(t *testing.T) {
	srv := predictionServer("")
	defer srv.Close()

	mw, _ := newTestWindow(t, srv.URL)

	// No soft output in the response: the geometry overlay is drawn
	// and no raster overlay appears.
	assert.Nil(t, mw.mapView.Overlay(overlayMask))
	pred := mw.mapView.Overlay(overlayPrediction)
	require.NotNil(t, pred)
	require.Len(t, pred.Polygons, 1)
	assert.True(t, pred.Polygons[0].Closed)
	assert.Empty(t, pred.Images)
}

func TestMaskOverlayFollowsPixelMapFlag(t *testing.T) {
	srv := predictionServer(softMaskB64(t))
	defer srv.Close()

	mw, state := newTestWindow(t, srv.URL)

	// The mask arrived but the pixel map is disabled.
	require.NotNil(t, state.SoftMask())
	assert.False(t, state.ShowPixelMap())
	assert.Nil(t, mw.mapView.Overlay(overlayMask))
	assert.NotNil(t, mw.mapView.Overlay(overlayPrediction))

	state.SetShowPixelMap(true)
	mask := mw.mapView.Overlay(overlayMask)
	require.NotNil(t, mask)
	require.Len(t, mask.Images, 1)
	assert.NotNil(t, mask.Images[0].Image)

	state.SetShowPixelMap(false)
	assert.Nil(t, mw.mapView.Overlay(overlayMask))
}
