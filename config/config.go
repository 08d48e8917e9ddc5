// Package config loads panel configuration from environment variables and
// flags. Flags win over environment, environment wins over defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Pins holds BCM pin numbers for the five input channels.
type Pins struct {
	Back     int
	Confirm  int
	Push     int
	EncoderA int
	EncoderB int
}

// Input holds the tuning knobs for the decoder and the debounced reader.
type Input struct {
	Debounce       time.Duration
	TicksPerDetent int
	InvertBack     bool
	InvertConfirm  bool
	InvertPush     bool
	PushAsConfirm  bool
	ReverseEncoder bool
	Hold           time.Duration
}

// Config captures runtime configuration for the panel daemon.
type Config struct {
	Pins         Pins
	Input        Input
	PollInterval time.Duration
	I2CBus       string
	Sim          bool
	Trace        bool
	ShowVersion  bool
}

const (
	envPinBack        = "KNURL_PIN_BACK"
	envPinConfirm     = "KNURL_PIN_CONFIRM"
	envPinPush        = "KNURL_PIN_PUSH"
	envPinEncoderA    = "KNURL_PIN_ENC_A"
	envPinEncoderB    = "KNURL_PIN_ENC_B"
	envI2CBus         = "KNURL_I2C_BUS"
	envPollMS         = "KNURL_POLL_MS"
	envDebounceMS     = "KNURL_DEBOUNCE_MS"
	envTicksPerDetent = "KNURL_TICKS_PER_DETENT"
	envHoldMS         = "KNURL_HOLD_MS"
	envInvertBack     = "KNURL_INVERT_BACK"
	envInvertConfirm  = "KNURL_INVERT_CONFIRM"
	envInvertPush     = "KNURL_INVERT_PUSH"
	envPushAsConfirm  = "KNURL_PUSH_AS_CONFIRM"
	envReverseEncoder = "KNURL_REVERSE_ENCODER"
	envTrace          = "KNURL_TRACE"
)

// Load parses configuration from os.Args and the process environment.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("knurl", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	sim := fs.Bool("sim", false, "force the simulator window even when panel hardware is present")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable debug logging of every dispatched event")
	version := fs.Bool("version", false, "print version and exit")
	bus := fs.String("i2c-bus", envOrDefault(env, envI2CBus, ""), "I2C bus name or number for the OLED (empty uses the first available)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Pins: Pins{
			Back:     envOrInt(env, envPinBack, 17),
			Confirm:  envOrInt(env, envPinConfirm, 5),
			Push:     envOrInt(env, envPinPush, 10),
			EncoderA: envOrInt(env, envPinEncoderA, 22),
			EncoderB: envOrInt(env, envPinEncoderB, 27),
		},
		Input: Input{
			Debounce:       time.Duration(envOrInt(env, envDebounceMS, 100)) * time.Millisecond,
			TicksPerDetent: envOrInt(env, envTicksPerDetent, 4),
			InvertBack:     envOrBool(env, envInvertBack, true),
			InvertConfirm:  envOrBool(env, envInvertConfirm, true),
			InvertPush:     envOrBool(env, envInvertPush, true),
			PushAsConfirm:  envOrBool(env, envPushAsConfirm, false),
			ReverseEncoder: envOrBool(env, envReverseEncoder, false),
			Hold:           time.Duration(envOrInt(env, envHoldMS, 2000)) * time.Millisecond,
		},
		PollInterval: time.Duration(envOrInt(env, envPollMS, 5)) * time.Millisecond,
		I2CBus:       *bus,
		Sim:          *sim,
		Trace:        *trace,
		ShowVersion:  *version,
	}

	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("%s must be > 0 (got %v)", envPollMS, cfg.PollInterval)
	}
	if cfg.Input.Debounce < 0 {
		return Config{}, fmt.Errorf("%s must be >= 0 (got %v)", envDebounceMS, cfg.Input.Debounce)
	}
	if cfg.Input.TicksPerDetent < 1 {
		return Config{}, fmt.Errorf("%s must be >= 1 (got %d)", envTicksPerDetent, cfg.Input.TicksPerDetent)
	}
	if cfg.Input.Hold < cfg.PollInterval {
		return Config{}, fmt.Errorf("%s must be >= the poll interval (got %v)", envHoldMS, cfg.Input.Hold)
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}
