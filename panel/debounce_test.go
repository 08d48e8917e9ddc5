package panel

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestReaderPressEdgeOnly(t *testing.T) {
	r := NewReader(ReaderConfig{Interval: 100 * time.Millisecond})

	got := r.Update(false, true, false, at(0))
	if len(got) != 1 || got[0] != ButtonConfirm {
		t.Fatalf("press edge = %v, want [confirm]", got)
	}
	if got := r.Update(false, false, false, at(200)); len(got) != 0 {
		t.Fatalf("release = %v, want no events", got)
	}
	got = r.Update(false, true, false, at(400))
	if len(got) != 1 || got[0] != ButtonConfirm {
		t.Fatalf("second press = %v, want [confirm]", got)
	}
}

func TestReaderFlutterCollapses(t *testing.T) {
	r := NewReader(ReaderConfig{Interval: 100 * time.Millisecond})

	presses := 0
	presses += len(r.Update(false, true, false, at(0)))
	presses += len(r.Update(false, false, false, at(10)))
	presses += len(r.Update(false, true, false, at(20)))
	presses += len(r.Update(false, false, false, at(30)))
	presses += len(r.Update(false, true, false, at(40)))
	if presses != 1 {
		t.Fatalf("flutter produced %d presses, want 1", presses)
	}
	if !r.Held(ButtonConfirm) {
		t.Fatalf("Held(confirm) = false after accepted press, want true")
	}
}

func TestReaderSpacedChanges(t *testing.T) {
	r := NewReader(ReaderConfig{Interval: 100 * time.Millisecond})

	presses := 0
	for ms := 0; ms < 1000; ms += 250 {
		presses += len(r.Update(false, true, false, at(ms)))
		presses += len(r.Update(false, false, false, at(ms+120)))
	}
	if presses != 4 {
		t.Fatalf("spaced press/release pairs produced %d presses, want 4", presses)
	}
}

func TestReaderInvert(t *testing.T) {
	r := NewReader(ReaderConfig{
		Interval:   50 * time.Millisecond,
		InvertBack: true,
	})

	// Active-low: idle high is released, low is pressed.
	if got := r.Update(true, false, false, at(0)); len(got) != 0 {
		t.Fatalf("idle high = %v, want no events", got)
	}
	got := r.Update(false, false, false, at(100))
	if len(got) != 1 || got[0] != ButtonBack {
		t.Fatalf("low edge = %v, want [back]", got)
	}
}

func TestReaderPushAliasesConfirm(t *testing.T) {
	r := NewReader(ReaderConfig{Interval: 50 * time.Millisecond, PushAsConfirm: true})

	got := r.Update(false, false, true, at(0))
	if len(got) != 2 || got[0] != ButtonConfirm || got[1] != ButtonPush {
		t.Fatalf("push press = %v, want [confirm push]", got)
	}

	// The combined signal is one channel: confirm going high while push is
	// still held changes nothing.
	if got := r.Update(false, true, true, at(200)); len(got) != 0 {
		t.Fatalf("confirm during aliased hold = %v, want no events", got)
	}

	// Both sources must drop before the channel releases.
	if got := r.Update(false, true, false, at(400)); len(got) != 0 {
		t.Fatalf("push release with confirm held = %v, want no events", got)
	}
	if !r.Held(ButtonConfirm) {
		t.Fatalf("Held(confirm) = false while confirm source high, want true")
	}
	r.Update(false, false, false, at(600))
	if r.Held(ButtonConfirm) {
		t.Fatalf("Held(confirm) = true after both sources dropped, want false")
	}
}

func TestReaderHeldTracksStableLevel(t *testing.T) {
	r := NewReader(ReaderConfig{Interval: 100 * time.Millisecond})

	r.Update(true, true, false, at(0))
	if !r.Held(ButtonBack) || !r.Held(ButtonConfirm) {
		t.Fatalf("Held back/confirm = %v/%v, want true/true",
			r.Held(ButtonBack), r.Held(ButtonConfirm))
	}
	// A release inside the interval is rejected and the level stays held.
	r.Update(false, true, false, at(50))
	if !r.Held(ButtonBack) {
		t.Fatalf("Held(back) = false after rejected release, want true")
	}
	r.Update(false, true, false, at(200))
	if r.Held(ButtonBack) {
		t.Fatalf("Held(back) = true after accepted release, want false")
	}
}
