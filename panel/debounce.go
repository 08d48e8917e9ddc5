package panel

import "time"

// ReaderConfig tunes the debounced button reader.
type ReaderConfig struct {
	// Interval is the minimum time between accepted level changes on one
	// channel.
	Interval time.Duration
	// Invert flags mark active-low wiring; inversion is applied to the
	// electrical level before anything else.
	InvertBack    bool
	InvertConfirm bool
	InvertPush    bool
	// PushAsConfirm treats the push channel as an extra confirm source:
	// the two post-invert readings are OR-ed before debouncing, so the
	// combined signal is debounced as a single channel.
	PushAsConfirm bool
}

type channel struct {
	invert     bool
	stable     bool
	lastChange time.Time
}

// Reader debounces the three buttons and reports press edges. Releases
// update state silently.
type Reader struct {
	interval time.Duration
	alias    bool
	channels [3]channel
}

func NewReader(cfg ReaderConfig) *Reader {
	r := &Reader{interval: cfg.Interval, alias: cfg.PushAsConfirm}
	r.channels[ButtonBack].invert = cfg.InvertBack
	r.channels[ButtonConfirm].invert = cfg.InvertConfirm
	r.channels[ButtonPush].invert = cfg.InvertPush
	return r
}

// Update feeds one electrical sample of all three channels and returns the
// accepted press edges in fixed order (back, confirm, push).
func (r *Reader) Update(back, confirm, push bool, now time.Time) []Button {
	var raw [3]bool
	raw[ButtonBack] = back != r.channels[ButtonBack].invert
	raw[ButtonConfirm] = confirm != r.channels[ButtonConfirm].invert
	raw[ButtonPush] = push != r.channels[ButtonPush].invert
	if r.alias {
		raw[ButtonConfirm] = raw[ButtonConfirm] || raw[ButtonPush]
	}

	var pressed []Button
	for i := range r.channels {
		ch := &r.channels[i]
		if raw[i] == ch.stable {
			continue
		}
		if now.Sub(ch.lastChange) < r.interval {
			continue
		}
		ch.stable = raw[i]
		ch.lastChange = now
		if ch.stable {
			pressed = append(pressed, Button(i))
		}
	}
	return pressed
}

// Held reports the debounced stable level of one button.
func (r *Reader) Held(b Button) bool {
	return r.channels[b].stable
}
