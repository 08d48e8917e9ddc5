// Package render draws the panel's pages onto the 1-bit framebuffer using
// the small proggy face: 20 columns by 6 lines, 5 visible menu rows.
package render

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"knurl/hal"
)

const (
	textCols  = 20
	textRows  = 6
	linePitch = 10
	fontOff   = 6 // baseline offset of the proggy face within a line

	menuRows    = 5
	menuPitch   = 13
	menuTextOff = 9

	spinnerCX     = 112
	spinnerCY     = 52
	spinnerFrames = 12
)

var (
	colorOn  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorOff = color.RGBA{A: 0xFF}
)

// spinnerDots are the twelve dot offsets around the spinner center,
// clockwise from twelve o'clock on a radius-8 circle.
var spinnerDots = [spinnerFrames][2]int{
	{0, -8}, {4, -7}, {7, -4}, {8, 0}, {7, 4}, {4, 7},
	{0, 8}, {-4, 7}, {-7, 4}, {-8, 0}, {-7, -4}, {-4, -7},
}

// Screen renders the menu, text and progress pages.
type Screen struct {
	fb   hal.Framebuffer
	d    Displayer
	font tinyfont.Fonter
}

func NewScreen(fb hal.Framebuffer) *Screen {
	return &Screen{fb: fb, d: Displayer{fb: fb}, font: &proggy.TinySZ8pt7b}
}

// Menu draws up to five rows with the selected one as an inverted bar,
// scrolling the window to keep the selection visible.
func (s *Screen) Menu(labels []string, selected int) error {
	s.fb.Fill(false)
	start := 0
	if len(labels) > menuRows {
		start = selected - menuRows/2
		if start < 0 {
			start = 0
		}
		if start > len(labels)-menuRows {
			start = len(labels) - menuRows
		}
	}
	end := start + menuRows
	if end > len(labels) {
		end = len(labels)
	}
	for i := start; i < end; i++ {
		top := 2 + (i-start)*menuPitch
		label := clip(labels[i], textCols)
		if i == selected {
			fillRect(s.fb, 0, top, s.fb.Width(), menuPitch-1, true)
			tinyfont.WriteLine(s.d, s.font, 2, int16(top+menuTextOff), label, colorOff)
		} else {
			tinyfont.WriteLine(s.d, s.font, 2, int16(top+menuTextOff), label, colorOn)
		}
	}
	return s.fb.Present()
}

// Text draws a message wrapped to the panel's full page.
func (s *Screen) Text(msg string) error {
	s.fb.Fill(false)
	s.writeLines(msg, textRows)
	return s.fb.Present()
}

// Spinner draws a message with the dotted progress ring in the lower
// right. frame selects the emphasized dot.
func (s *Screen) Spinner(message string, frame int) error {
	s.fb.Fill(false)
	s.writeLines(message, 4)
	active := ((frame % spinnerFrames) + spinnerFrames) % spinnerFrames
	for k, off := range spinnerDots {
		x := spinnerCX + off[0]
		y := spinnerCY + off[1]
		if k == active {
			fillRect(s.fb, x-1, y-1, 3, 3, true)
		} else {
			s.fb.SetPixel(x, y, true)
		}
	}
	return s.fb.Present()
}

// Clear blanks the panel.
func (s *Screen) Clear() error {
	s.fb.Fill(false)
	return s.fb.Present()
}

func (s *Screen) writeLines(msg string, maxLines int) {
	for i, line := range wrapLines(msg, textCols, maxLines) {
		tinyfont.WriteLine(s.d, s.font, 2, int16(2+i*linePitch+fontOff), line, colorOn)
	}
}

func fillRect(fb hal.Framebuffer, x, y, w, h int, on bool) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			fb.SetPixel(xx, yy, on)
		}
	}
}

func clip(s string, cols int) string {
	r := []rune(s)
	if len(r) <= cols {
		return s
	}
	return string(r[:cols])
}
