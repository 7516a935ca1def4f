// Package colorutil provides shared color utilities for overlay
// rendering.
package colorutil

import (
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 140, B: 0, A: 255}
)

// classPalette assigns stable, high-contrast colors to annotation
// classes by index.
var classPalette = []color.RGBA{
	{R: 0x00, G: 0xB4, B: 0xD8, A: 255}, // clean ice: light blue
	{R: 0xB0, G: 0x6A, B: 0x2C, A: 255}, // debris: brown
	{R: 0x52, G: 0xB7, B: 0x88, A: 255},
	{R: 0xC7, G: 0x5D, B: 0xC9, A: 255},
	{R: 0xE0, G: 0xA4, B: 0x58, A: 255},
}

// ClassColor returns the palette color for a class index, cycling when
// there are more classes than palette entries.
func ClassColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return classPalette[i%len(classPalette)]
}

// WithAlpha returns the color with its alpha channel replaced.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

// Blend alpha-blends src over dst using src's alpha.
func Blend(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255.0
	return color.RGBA{
		R: uint8(float64(src.R)*a + float64(dst.R)*(1-a)),
		G: uint8(float64(src.G)*a + float64(dst.G)*(1-a)),
		B: uint8(float64(src.B)*a + float64(dst.B)*(1-a)),
		A: 255,
	}
}
