package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints a downsampled preview of the framebuffer into area of scr.
// Each cell is an upper half block (▀) with fg = top sample and bg = bottom
// sample, so the preview has twice as many rows as the area. Samples are
// nearest-neighbour and the aspect ratio is kept.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols := area.Max.X - area.Min.X
	rows := (area.Max.Y - area.Min.Y) * 2
	if cols <= 0 || rows <= 0 || fb.width == 0 || fb.height == 0 {
		return
	}

	// Fit the image inside cols×rows sub-pixels
	step := max(float64(fb.width)/float64(cols), float64(fb.height)/float64(rows))
	outW := min(cols, int(float64(fb.width)/step))
	outH := min(rows, int(float64(fb.height)/step))
	offX := (cols - outW) / 2
	offY := (rows/2 - (outH+1)/2) / 2

	sample := func(x, y int) color.Color {
		if x >= outW || y >= outH {
			return nil
		}
		return rgbaToColor(fb.RGBAAt(int(float64(x)*step), int(float64(y)*step)))
	}

	for row := range (outH + 1) / 2 {
		for col := range outW {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: sample(col, row*2),
					Bg: sample(col, row*2+1),
				},
			}
			scr.SetCell(area.Min.X+offX+col, area.Min.Y+offY+row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
