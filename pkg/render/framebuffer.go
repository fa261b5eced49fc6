// Package render provides a CPU triangle rasterizer with programmable shading.
package render

import (
	"image"
	"image/color"

	"github.com/taigrr/rasterize/pkg/math3d"
)

// Background is the colour every pixel is reset to before a render.
var Background = color.RGBA{0, 0, 0, 255}

// Framebuffer holds the colour output of a Rasterizer.
// Only the owning Rasterizer writes to it; everyone else reads.
// It implements image.Image so encoders can consume it directly.
type Framebuffer struct {
	width  int
	height int
	pixels []color.RGBA // Row-major pixel data
}

func newFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]color.RGBA, width*height),
	}
	fb.clear()
	return fb
}

// Width returns the width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

func (fb *Framebuffer) clear() {
	n := len(fb.pixels)
	if n == 0 {
		return
	}
	// Copy-doubling fill
	fb.pixels[0] = Background
	for i := 1; i < n; i *= 2 {
		copy(fb.pixels[i:], fb.pixels[:i])
	}
}

// set writes a linear colour, clamping each channel to [0,1] and truncating
// to 8 bits. Callers guarantee (x, y) is in range.
func (fb *Framebuffer) set(x, y int, c math3d.Vec3) {
	fb.pixels[y*fb.width+x] = color.RGBA{
		R: toByte(c.X),
		G: toByte(c.Y),
		B: toByte(c.Z),
		A: 255,
	}
}

func toByte(v float64) uint8 {
	switch {
	case v >= 1:
		return 255
	case v > 0:
		return uint8(v * 255)
	default: // negative or NaN
		return 0
	}
}

// RGBAAt returns the colour at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) RGBAAt(x, y int) color.RGBA {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return color.RGBA{}
	}
	return fb.pixels[y*fb.width+x]
}

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color {
	return fb.RGBAAt(x, y)
}

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// ToImage copies the framebuffer into a standard image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	for y := range fb.height {
		for x := range fb.width {
			img.SetRGBA(x, y, fb.pixels[y*fb.width+x])
		}
	}
	return img
}
