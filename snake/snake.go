// Package snake is the panel's built-in game: classic snake on a 16x8
// grid of 8-pixel cells, steered a quarter turn per encoder detent.
package snake

import (
	"fmt"
	"image/color"
	"time"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"knurl/hal"
	"knurl/panel/render"
)

const (
	cell = 8
	cols = 16
	rows = 8

	baseStep = 100 * time.Millisecond
	minStep  = 40 * time.Millisecond
	stepDecr = 20 * time.Millisecond
	speedup  = 3 // food eaten per speed increase
)

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

type point struct {
	x, y int
}

// Game holds one snake round. It renders straight to the framebuffer and
// leaves pacing to its caller via StepInterval.
type Game struct {
	fb hal.Framebuffer
	d  render.Displayer

	rng      uint32
	body     []point // head first
	dir      point
	food     point
	score    int
	eaten    int
	grow     int
	interval time.Duration
}

func New(fb hal.Framebuffer) *Game {
	g := &Game{
		fb:  fb,
		d:   render.NewDisplayer(fb),
		rng: uint32(time.Now().UnixNano()) | 1,
	}
	g.Reset()
	return g
}

// Reset starts a new round in the grid center, heading right.
func (g *Game) Reset() {
	g.body = []point{{cols / 2, rows / 2}}
	g.dir = point{1, 0}
	g.score = 0
	g.eaten = 0
	g.grow = 2
	g.interval = baseStep
	g.placeFood()
}

// Turn rotates the heading a quarter turn. Clockwise turns right relative
// to the direction of travel.
func (g *Game) Turn(cw bool) {
	if cw {
		g.dir = point{-g.dir.y, g.dir.x}
	} else {
		g.dir = point{g.dir.y, -g.dir.x}
	}
}

// Step advances one cell, wrapping at the edges, and reports false when
// the snake bites itself.
func (g *Game) Step() bool {
	head := point{
		x: (g.body[0].x + g.dir.x + cols) % cols,
		y: (g.body[0].y + g.dir.y + rows) % rows,
	}
	for _, p := range g.body {
		if p == head {
			return false
		}
	}
	g.body = append([]point{head}, g.body...)
	switch {
	case head == g.food:
		g.score++
		g.eaten++
		if g.eaten%speedup == 0 && g.interval > minStep {
			g.interval -= stepDecr
		}
		g.placeFood()
	case g.grow > 0:
		g.grow--
	default:
		g.body = g.body[:len(g.body)-1]
	}
	return true
}

// Render draws the board with the score in the top left corner.
func (g *Game) Render() error {
	g.fb.Fill(false)
	for _, p := range g.body {
		g.fillCell(p, 0, 7)
	}
	g.fillCell(g.food, 2, 4)
	tinyfont.WriteLine(g.d, &proggy.TinySZ8pt7b, 2, 7, fmt.Sprintf("S:%d", g.score), white)
	return g.fb.Present()
}

func (g *Game) StepInterval() time.Duration {
	return g.interval
}

func (g *Game) Score() int {
	return g.score
}

func (g *Game) fillCell(p point, inset, size int) {
	x0 := p.x*cell + inset
	y0 := p.y*cell + inset
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			g.fb.SetPixel(x, y, true)
		}
	}
}

func (g *Game) placeFood() {
	if len(g.body) >= cols*rows {
		return
	}
	for {
		p := point{x: int(g.next() % cols), y: int(g.next() % rows)}
		if !g.occupied(p) {
			g.food = p
			return
		}
	}
}

func (g *Game) occupied(p point) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}

// next is one xorshift32 step.
func (g *Game) next() uint32 {
	x := g.rng
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	g.rng = x
	return x
}
