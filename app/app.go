// Package app assembles the panel: the display backend, the screen
// renderer, the collaborators, the state machine and the dispatch loop.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"knurl/config"
	"knurl/dockerctl"
	"knurl/hal"
	"knurl/internal/buildinfo"
	"knurl/panel"
	"knurl/panel/render"
	"knurl/snake"
	"knurl/system"
)

const splashDwell = time.Second

// Run opens the best available backend and drives the panel until ctx is
// cancelled or the user exits.
func Run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	h, err := hal.Open(halConfig(cfg), log, cfg.Sim)
	if err != nil {
		return err
	}
	defer h.Close()

	err = h.Run(ctx, func(ctx context.Context) error {
		return run(ctx, cfg, log, h)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, h hal.HAL) error {
	screen := render.NewScreen(h.Display())
	events := make(chan panel.Event, 8)

	docker := dockerctl.New(ctx, log)
	defer docker.Close()

	machine := panel.NewMachine(panel.MachineConfig{
		Screen: screen,
		Docker: docker,
		System: system.New(log),
		Game:   snake.New(h.Display()),
		Runner: panel.NewRunner(events, log),
		Root:   rootMenu(),
		Log:    log,
	})

	loop := panel.NewLoop(panel.LoopConfig{
		Inputs:  h.Inputs(),
		Decoder: panel.NewDecoder(cfg.Input.TicksPerDetent, cfg.Input.ReverseEncoder),
		Reader: panel.NewReader(panel.ReaderConfig{
			Interval:      cfg.Input.Debounce,
			InvertBack:    cfg.Input.InvertBack,
			InvertConfirm: cfg.Input.InvertConfirm,
			InvertPush:    cfg.Input.InvertPush,
			PushAsConfirm: cfg.Input.PushAsConfirm,
		}),
		Machine:  machine,
		Events:   events,
		Interval: cfg.PollInterval,
		Hold:     cfg.Input.Hold,
		Log:      log,
	})

	if err := screen.Text("Knurl Panel " + buildinfo.Short() + "\nInitializing..."); err != nil {
		return err
	}
	sleepCtx(ctx, splashDwell)
	if err := machine.Start(); err != nil {
		return err
	}
	log.Info("panel ready", "version", buildinfo.Short())
	return loop.Run(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func halConfig(cfg config.Config) hal.Config {
	return hal.Config{
		I2CBus:         cfg.I2CBus,
		PinBack:        cfg.Pins.Back,
		PinConfirm:     cfg.Pins.Confirm,
		PinPush:        cfg.Pins.Push,
		PinEncoderA:    cfg.Pins.EncoderA,
		PinEncoderB:    cfg.Pins.EncoderB,
		InvertBack:     cfg.Input.InvertBack,
		InvertConfirm:  cfg.Input.InvertConfirm,
		InvertPush:     cfg.Input.InvertPush,
		TicksPerDetent: cfg.Input.TicksPerDetent,
		Title:          "Knurl " + buildinfo.Short(),
	}
}
