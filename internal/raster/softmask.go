// Package raster post-processes the soft-probability output returned by
// the segmentation backend: decoding, thresholding, and vectorizing the
// mask into contour polygons.
package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"sort"

	"gonum.org/v1/gonum/stat"

	"glacier-annotator/pkg/geometry"
)

// Mask is a dense probability raster with values in [0, 1], row-major.
type Mask struct {
	Width  int
	Height int
	Values []float64
}

// DecodeSoftMask decodes a base64-encoded image (the backend encodes
// PNG) into a probability mask. Pixel luminance maps linearly to [0, 1].
func DecodeSoftMask(encoded string) (*Mask, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 soft output: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode soft output image: %w", err)
	}

	bounds := img.Bounds()
	m := &Mask{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Values: make([]float64, bounds.Dx()*bounds.Dy()),
	}
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			m.Values[i] = float64(g.Y) / 255.0
			i++
		}
	}
	return m, nil
}

// At returns the probability at pixel (x, y).
func (m *Mask) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Mean returns the mean probability over the mask.
func (m *Mask) Mean() float64 {
	if len(m.Values) == 0 {
		return 0
	}
	return stat.Mean(m.Values, nil)
}

// Quantile returns the q-quantile (0 ≤ q ≤ 1) of the mask's values.
// Useful for picking a binarization threshold adapted to the scene.
func (m *Mask) Quantile(q float64) float64 {
	if len(m.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(m.Values))
	copy(sorted, m.Values)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// Binarize returns the mask thresholded to a byte image: 255 where the
// probability exceeds thresh, 0 elsewhere.
func (m *Mask) Binarize(thresh float64) []byte {
	out := make([]byte, len(m.Values))
	for i, v := range m.Values {
		if v > thresh {
			out[i] = 255
		}
	}
	return out
}

// ToImage renders the mask as a translucent grayscale overlay image.
// Alpha scales with probability so confident regions read stronger.
func (m *Mask) ToImage(tint color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.At(x, y)
			a := uint8(v * 200)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(tint.R) * v),
				G: uint8(float64(tint.G) * v),
				B: uint8(float64(tint.B) * v),
				A: a,
			})
		}
	}
	return img
}

// EncodePNG encodes the mask back to PNG bytes (grayscale).
func (m *Mask) EncodePNG() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Values {
		img.Pix[i] = uint8(v * 255)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode mask png: %w", err)
	}
	return buf.Bytes(), nil
}

// PixelPolygon is a contour in mask pixel coordinates.
type PixelPolygon []geometry.Point2D
