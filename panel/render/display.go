package render

import (
	"image/color"

	"knurl/hal"
)

// Displayer adapts the framebuffer to the drawing interface the tinyfont
// routines expect. Any non-black color lights the pixel.
type Displayer struct {
	fb hal.Framebuffer
}

func NewDisplayer(fb hal.Framebuffer) Displayer {
	return Displayer{fb: fb}
}

func (d Displayer) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d Displayer) SetPixel(x, y int16, c color.RGBA) {
	d.fb.SetPixel(int(x), int(y), c.R != 0 || c.G != 0 || c.B != 0)
}

func (d Displayer) Display() error {
	return d.fb.Present()
}
