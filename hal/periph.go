package hal

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers/ssd1306"
)

const (
	oledWidth  = 128
	oledHeight = 64
)

// oledAddrs are the SSD1306 addresses probed in order. Modules strap the
// panel to either one.
var oledAddrs = []uint16{0x3C, 0x3D}

type periphHAL struct {
	bus i2c.BusCloser
	fb  *oledFramebuffer
	in  *gpioInputs
}

func openPeriph(cfg Config, log *slog.Logger) (HAL, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev, err := probeOLED(bus, log)
	if err != nil {
		bus.Close()
		return nil, err
	}
	in, err := openPins(cfg)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return &periphHAL{bus: bus, fb: &oledFramebuffer{dev: dev}, in: in}, nil
}

// probeOLED configures the display at the first address that answers.
// periph's i2c.Bus satisfies the driver's bus interface as-is.
func probeOLED(bus i2c.Bus, log *slog.Logger) (*ssd1306.Device, error) {
	var errs []error
	for _, addr := range oledAddrs {
		dev := ssd1306.NewI2C(bus)
		dev.Configure(ssd1306.Config{Width: oledWidth, Height: oledHeight, Address: addr})
		dev.ClearBuffer()
		if err := dev.Display(); err != nil {
			errs = append(errs, fmt.Errorf("addr %#x: %w", addr, err))
			continue
		}
		log.Debug("oled found", "addr", fmt.Sprintf("%#x", addr))
		return &dev, nil
	}
	return nil, fmt.Errorf("no ssd1306 on bus: %w", errors.Join(errs...))
}

func openPins(cfg Config) (*gpioInputs, error) {
	in := &gpioInputs{}
	for _, p := range []struct {
		name string
		num  int
		dst  *gpio.PinIn
	}{
		{"back", cfg.PinBack, &in.back},
		{"confirm", cfg.PinConfirm, &in.confirm},
		{"push", cfg.PinPush, &in.push},
		{"encoder a", cfg.PinEncoderA, &in.a},
		{"encoder b", cfg.PinEncoderB, &in.b},
	} {
		pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", p.num))
		if pin == nil {
			return nil, fmt.Errorf("%s: no pin GPIO%d", p.name, p.num)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("%s: configure GPIO%d: %w", p.name, p.num, err)
		}
		*p.dst = pin
	}
	return in, nil
}

func (h *periphHAL) Display() Framebuffer { return h.fb }
func (h *periphHAL) Inputs() Inputs       { return h.in }

func (h *periphHAL) Run(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (h *periphHAL) Close() error {
	return h.bus.Close()
}

type gpioInputs struct {
	a       gpio.PinIn
	b       gpio.PinIn
	back    gpio.PinIn
	confirm gpio.PinIn
	push    gpio.PinIn
}

func (g *gpioInputs) Sample() InputState {
	return InputState{
		A:       bool(g.a.Read()),
		B:       bool(g.b.Read()),
		Back:    bool(g.back.Read()),
		Confirm: bool(g.confirm.Read()),
		Push:    bool(g.push.Read()),
	}
}

// oledFramebuffer draws into the driver's page buffer; Present flushes it
// over I2C.
type oledFramebuffer struct {
	dev *ssd1306.Device
}

var (
	pixelOn  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	pixelOff = color.RGBA{A: 0xFF}
)

func (f *oledFramebuffer) Width() int  { return oledWidth }
func (f *oledFramebuffer) Height() int { return oledHeight }

func (f *oledFramebuffer) SetPixel(x, y int, on bool) {
	if x < 0 || y < 0 || x >= oledWidth || y >= oledHeight {
		return
	}
	c := pixelOff
	if on {
		c = pixelOn
	}
	f.dev.SetPixel(int16(x), int16(y), c)
}

func (f *oledFramebuffer) Fill(on bool) {
	if !on {
		f.dev.ClearBuffer()
		return
	}
	for y := 0; y < oledHeight; y++ {
		for x := 0; x < oledWidth; x++ {
			f.dev.SetPixel(int16(x), int16(y), pixelOn)
		}
	}
}

func (f *oledFramebuffer) Present() error {
	return f.dev.Display()
}
