// Package hal connects the panel to its hardware: the SSD1306 OLED and
// the encoder and buttons on GPIO, with a desktop simulator as fallback.
package hal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// InputState is one raw sample of the encoder phases and the buttons, as
// electrical levels.
type InputState struct {
	A       bool
	B       bool
	Back    bool
	Confirm bool
	Push    bool
}

// Inputs samples the control inputs.
type Inputs interface {
	Sample() InputState
}

// Framebuffer is a 1-bit pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	SetPixel(x, y int, on bool)
	Fill(on bool)
	Present() error
}

// HAL bundles one backend's display and inputs.
type HAL interface {
	Display() Framebuffer
	Inputs() Inputs
	// Run executes fn under the backend's control. The simulator owns the
	// calling goroutine for its window and runs fn beside it; hardware
	// calls fn directly. fn's context is cancelled when the backend shuts
	// down.
	Run(ctx context.Context, fn func(context.Context) error) error
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	I2CBus         string
	PinBack        int
	PinConfirm     int
	PinPush        int
	PinEncoderA    int
	PinEncoderB    int
	InvertBack     bool
	InvertConfirm  bool
	InvertPush     bool
	TicksPerDetent int
	Title          string
}

// Provider opens one backend.
type Provider struct {
	Name string
	Open func(cfg Config, log *slog.Logger) (HAL, error)
}

// Providers returns the backends to try, in order. With simOnly the
// hardware backend is skipped.
func Providers(simOnly bool) []Provider {
	if simOnly {
		return []Provider{{Name: "sim", Open: openSim}}
	}
	return []Provider{
		{Name: "periph", Open: openPeriph},
		{Name: "sim", Open: openSim},
	}
}

// Open tries each provider in order and returns the first that comes up.
func Open(cfg Config, log *slog.Logger, simOnly bool) (HAL, error) {
	var errs []error
	for _, p := range Providers(simOnly) {
		h, err := p.Open(cfg, log)
		if err != nil {
			log.Warn("panel backend unavailable", "backend", p.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		log.Info("panel backend ready", "backend", p.Name)
		return h, nil
	}
	return nil, fmt.Errorf("no usable panel backend: %w", errors.Join(errs...))
}
