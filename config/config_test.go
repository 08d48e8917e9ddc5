package config

import (
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.Pins.Back != 17 || cfg.Pins.Confirm != 5 || cfg.Pins.Push != 10 {
		t.Fatalf("button pins = %+v, want 17/5/10", cfg.Pins)
	}
	if cfg.Pins.EncoderA != 22 || cfg.Pins.EncoderB != 27 {
		t.Fatalf("encoder pins = %d/%d, want 22/27", cfg.Pins.EncoderA, cfg.Pins.EncoderB)
	}
	if cfg.PollInterval != 5*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 5ms", cfg.PollInterval)
	}
	if cfg.Input.Debounce != 100*time.Millisecond {
		t.Fatalf("Debounce = %v, want 100ms", cfg.Input.Debounce)
	}
	if cfg.Input.TicksPerDetent != 4 {
		t.Fatalf("TicksPerDetent = %d, want 4", cfg.Input.TicksPerDetent)
	}
	if !cfg.Input.InvertBack || !cfg.Input.InvertConfirm || !cfg.Input.InvertPush {
		t.Fatalf("invert flags = %+v, want all true", cfg.Input)
	}
	if cfg.Input.PushAsConfirm || cfg.Input.ReverseEncoder || cfg.Sim || cfg.Trace {
		t.Fatalf("boolean extras should default to false, got %+v", cfg)
	}
	if cfg.Input.Hold != 2*time.Second {
		t.Fatalf("Hold = %v, want 2s", cfg.Input.Hold)
	}
}

func TestLoadArgsEnvironment(t *testing.T) {
	environ := []string{
		"KNURL_PIN_BACK=23",
		"KNURL_POLL_MS=10",
		"KNURL_TICKS_PER_DETENT=2",
		"KNURL_PUSH_AS_CONFIRM=true",
		"KNURL_INVERT_BACK=false",
		"KNURL_TRACE=1",
		"KNURL_I2C_BUS=1",
	}
	cfg, err := LoadArgs(nil, environ)
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.Pins.Back != 23 {
		t.Fatalf("Pins.Back = %d, want 23", cfg.Pins.Back)
	}
	if cfg.PollInterval != 10*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 10ms", cfg.PollInterval)
	}
	if cfg.Input.TicksPerDetent != 2 {
		t.Fatalf("TicksPerDetent = %d, want 2", cfg.Input.TicksPerDetent)
	}
	if !cfg.Input.PushAsConfirm {
		t.Fatalf("PushAsConfirm = false, want true")
	}
	if cfg.Input.InvertBack {
		t.Fatalf("InvertBack = true, want false")
	}
	if !cfg.Trace {
		t.Fatalf("Trace = false, want true")
	}
	if cfg.I2CBus != "1" {
		t.Fatalf("I2CBus = %q, want %q", cfg.I2CBus, "1")
	}
}

func TestLoadArgsFlagsWinOverEnvironment(t *testing.T) {
	cfg, err := LoadArgs(
		[]string{"-i2c-bus", "2", "-trace", "-sim"},
		[]string{"KNURL_I2C_BUS=1", "KNURL_TRACE=false"},
	)
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.I2CBus != "2" {
		t.Fatalf("I2CBus = %q, want %q", cfg.I2CBus, "2")
	}
	if !cfg.Trace {
		t.Fatalf("Trace = false, want true")
	}
	if !cfg.Sim {
		t.Fatalf("Sim = false, want true")
	}
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	cases := [][]string{
		{"KNURL_POLL_MS=0"},
		{"KNURL_POLL_MS=-5"},
		{"KNURL_TICKS_PER_DETENT=0"},
		{"KNURL_HOLD_MS=1"},
	}
	for _, environ := range cases {
		if _, err := LoadArgs(nil, environ); err == nil {
			t.Fatalf("LoadArgs(%v) error = nil, want error", environ)
		}
	}
}

func TestLoadArgsIgnoresMalformedEnvironment(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"", "KNURL_PIN_BACK", "KNURL_POLL_MS=zap"})
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.Pins.Back != 17 {
		t.Fatalf("Pins.Back = %d, want default 17", cfg.Pins.Back)
	}
	if cfg.PollInterval != 5*time.Millisecond {
		t.Fatalf("PollInterval = %v, want default 5ms", cfg.PollInterval)
	}
}
