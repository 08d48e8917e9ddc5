package hal

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	simScale = 4
	simHelpH = 28
)

type simHAL struct {
	fb    *simFramebuffer
	in    *simInputs
	title string
	log   *slog.Logger
}

func openSim(cfg Config, log *slog.Logger) (HAL, error) {
	return &simHAL{
		fb:    newSimFramebuffer(oledWidth, oledHeight),
		in:    newSimInputs(cfg),
		title: cfg.Title,
		log:   log,
	}, nil
}

func (h *simHAL) Display() Framebuffer { return h.fb }
func (h *simHAL) Inputs() Inputs       { return h.in }
func (h *simHAL) Close() error         { return nil }

// Run opens the window on the calling goroutine, which ebiten requires to
// be the main one, and runs fn beside it. Closing the window cancels fn's
// context; fn returning closes the window.
func (h *simHAL) Run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
		cancel()
	}()

	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return fmt.Errorf("sim font: %w", err)
	}
	h.log.Debug("sim window opening", "title", h.title)
	g := &simGame{
		h:    h,
		ctx:  ctx,
		face: &text.GoTextFace{Source: src, Size: 14},
	}

	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowSize(oledWidth*simScale, oledHeight*simScale+simHelpH)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	return <-done
}

type simGame struct {
	h    *simHAL
	ctx  context.Context
	face *text.GoTextFace
	img  *ebiten.Image
	pix  []byte
}

func (g *simGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.h.in.poll()
	return nil
}

func (g *simGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(oledWidth, oledHeight)
		g.pix = make([]byte, oledWidth*oledHeight*4)
	}
	g.h.fb.snapshot(g.pix)
	g.img.WritePixels(g.pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(simScale, simScale)
	screen.DrawImage(g.img, op)

	tp := &text.DrawOptions{}
	tp.GeoM.Translate(6, float64(oledHeight*simScale)+6)
	tp.ColorScale.ScaleWithColor(color.RGBA{R: 0x9C, G: 0x9C, B: 0x9C, A: 0xFF})
	text.Draw(screen, "wheel/arrows rotate  enter confirm  backspace back  space push", g.face, tp)
}

func (g *simGame) Layout(int, int) (int, int) {
	return oledWidth * simScale, oledHeight*simScale + simHelpH
}

// simFramebuffer double-buffers the 1-bit panel image: the panel goroutine
// draws into back and publishes with Present, the window thread snapshots
// the published frame.
type simFramebuffer struct {
	w, h int
	back []bool

	mu    sync.Mutex
	front []byte
}

func newSimFramebuffer(w, h int) *simFramebuffer {
	return &simFramebuffer{
		w:     w,
		h:     h,
		back:  make([]bool, w*h),
		front: make([]byte, w*h*4),
	}
}

func (f *simFramebuffer) Width() int  { return f.w }
func (f *simFramebuffer) Height() int { return f.h }

func (f *simFramebuffer) SetPixel(x, y int, on bool) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.back[y*f.w+x] = on
}

func (f *simFramebuffer) Fill(on bool) {
	for i := range f.back {
		f.back[i] = on
	}
}

func (f *simFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, on := range f.back {
		v := byte(0)
		if on {
			v = 0xFF
		}
		j := i * 4
		f.front[j+0] = v
		f.front[j+1] = v
		f.front[j+2] = v
		f.front[j+3] = 0xFF
	}
	return nil
}

func (f *simFramebuffer) snapshot(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
}

// phaseLevels is the A/B level sequence of the quadrature cycle; stepping
// forward through it reads as clockwise.
var phaseLevels = [4][2]bool{
	{false, false},
	{false, true},
	{true, true},
	{true, false},
}

// simInputs synthesizes encoder and button signals from the keyboard and
// mouse wheel. Queued rotation is replayed one quadrature transition per
// Sample so the decoder sees the same edge stream hardware would produce.
type simInputs struct {
	mu        sync.Mutex
	pending   int
	phase     int
	buttons   [3]bool
	invert    [3]bool
	perDetent int
	wheel     float64
}

func newSimInputs(cfg Config) *simInputs {
	per := cfg.TicksPerDetent
	if per < 1 {
		per = 1
	}
	return &simInputs{
		invert:    [3]bool{cfg.InvertBack, cfg.InvertConfirm, cfg.InvertPush},
		perDetent: per,
	}
}

// poll runs on the window thread once per frame.
func (s *simInputs) poll() {
	detents := 0
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		detents++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		detents--
	}
	_, wy := ebiten.Wheel()

	s.mu.Lock()
	s.wheel += wy
	for s.wheel >= 1 {
		detents++
		s.wheel--
	}
	for s.wheel <= -1 {
		detents--
		s.wheel++
	}
	s.pending += detents * s.perDetent
	s.buttons[0] = ebiten.IsKeyPressed(ebiten.KeyBackspace)
	s.buttons[1] = ebiten.IsKeyPressed(ebiten.KeyEnter)
	s.buttons[2] = ebiten.IsKeyPressed(ebiten.KeySpace)
	s.mu.Unlock()
}

func (s *simInputs) Sample() InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending > 0 {
		s.phase = (s.phase + 1) % 4
		s.pending--
	} else if s.pending < 0 {
		s.phase = (s.phase + 3) % 4
		s.pending++
	}
	lv := phaseLevels[s.phase]
	return InputState{
		A:       lv[0],
		B:       lv[1],
		Back:    s.buttons[0] != s.invert[0],
		Confirm: s.buttons[1] != s.invert[1],
		Push:    s.buttons[2] != s.invert[2],
	}
}
