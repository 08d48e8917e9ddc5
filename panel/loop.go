package panel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"knurl/hal"
)

// LoopConfig wires the dispatch loop.
type LoopConfig struct {
	Inputs   hal.Inputs
	Decoder  *Decoder
	Reader   *Reader
	Machine  *Machine
	Events   <-chan Event
	Interval time.Duration
	Hold     time.Duration
	Clock    Clock
	Log      *slog.Logger
}

// Loop samples the inputs at a fixed cadence and feeds the machine. It is
// the only place events enter the machine and the only place collaborator
// faults are absorbed.
type Loop struct {
	inputs   hal.Inputs
	decoder  *Decoder
	reader   *Reader
	machine  *Machine
	events   <-chan Event
	interval time.Duration
	hold     time.Duration
	clock    Clock
	log      *slog.Logger

	holdStart time.Time
}

func NewLoop(cfg LoopConfig) *Loop {
	clock := cfg.Clock
	if clock.Now == nil || clock.Sleep == nil {
		clock = SystemClock()
	}
	return &Loop{
		inputs:   cfg.Inputs,
		decoder:  cfg.Decoder,
		reader:   cfg.Reader,
		machine:  cfg.Machine,
		events:   cfg.Events,
		interval: cfg.Interval,
		hold:     cfg.Hold,
		clock:    clock,
		log:      cfg.Log,
	}
}

// Run drives the panel until ctx is cancelled, an Exit action completes or
// the back+confirm chord is held for the configured duration.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if l.step() {
			return nil
		}
	}
}

// step runs one dispatch iteration: rotation first, then button edges,
// then queued task completions, then the tick. It reports whether the
// panel is done.
func (l *Loop) step() bool {
	now := l.clock.Now()
	in := l.inputs.Sample()

	if delta := l.decoder.Sample(in.A, in.B); delta != 0 {
		l.log.Debug("rotate", "delta", delta)
		l.dispatch(Rotate{Delta: delta})
	}
	for _, b := range l.reader.Update(in.Back, in.Confirm, in.Push, now) {
		l.log.Debug("press", "button", b.String())
		l.dispatch(Press{Button: b})
	}
	if l.exitChordHeld(now) {
		l.log.Info("exit chord held, shutting down")
		l.machine.Farewell()
		return true
	}
drain:
	for {
		select {
		case ev := <-l.events:
			l.dispatch(ev)
		default:
			break drain
		}
	}
	l.dispatch(Tick{})
	return l.machine.Done()
}

// exitChordHeld tracks how long back and confirm have both been stably
// held. The timer starts when both are down and resets when either lifts.
func (l *Loop) exitChordHeld(now time.Time) bool {
	if !l.reader.Held(ButtonBack) || !l.reader.Held(ButtonConfirm) {
		l.holdStart = time.Time{}
		return false
	}
	if l.holdStart.IsZero() {
		l.holdStart = now
		return false
	}
	return now.Sub(l.holdStart) >= l.hold
}

func (l *Loop) dispatch(ev Event) {
	if err := l.safeHandle(ev); err != nil {
		l.log.Warn("handler fault", "event", fmt.Sprintf("%T", ev), "error", err)
		l.machine.ShowFault(err)
	}
}

// safeHandle converts handler panics into faults so a broken collaborator
// can never take the panel down.
func (l *Loop) safeHandle(ev Event) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("handler panic: %v", v)
		}
	}()
	return l.machine.Handle(ev)
}
