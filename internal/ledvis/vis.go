// Package ledvis contains the audio-reactive effects. Each run opens its own
// audio source and closes it when the run ends.
package ledvis

import (
	"fmt"
	"log/slog"
	"strings"

	"libdb.so/stripglow/internal/audio"
	"libdb.so/stripglow/internal/effects"
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/features"
	"libdb.so/stripglow/internal/spectrum"
)

// Layout is how the spectrum is laid out on the strip.
type Layout uint8

const (
	// MonoLeft draws low frequencies on the left.
	MonoLeft Layout = iota
	// MonoRight draws low frequencies on the right.
	MonoRight
	// SymmetricMiddle draws the spectrum twice, mirrored, with the low
	// frequencies in the middle.
	SymmetricMiddle
)

// Bins returns the number of spectrum bins needed for n pixels.
func (l Layout) Bins(n int) int {
	if l == SymmetricMiddle {
		return (n + 1) / 2
	}
	return n
}

// String returns the name used in configuration files.
func (l Layout) String() string {
	switch l {
	case MonoLeft:
		return "left"
	case MonoRight:
		return "right"
	case SymmetricMiddle:
		return "middle"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "left", "":
		*l = MonoLeft
	case "right":
		*l = MonoRight
	case "middle":
		*l = SymmetricMiddle
	default:
		return fmt.Errorf("unknown layout %q", text)
	}
	return nil
}

// Config is the configuration shared by the audio effects.
type Config struct {
	Audio   audio.Config
	Scaling spectrum.Scaling
	// Window is the number of blocks used to normalize levels.
	Window int
	Taper  spectrum.Taper
	Layout Layout
	Beat   features.BeatConfig
	// Bands map dominant frequencies to colors. Empty uses
	// features.DefaultBands.
	Bands []features.Band
	// Ripples caps the number of live ripples.
	Ripples int
}

// Validate checks c. Audio defaults are applied first.
func (c Config) Validate() error {
	if err := c.Audio.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if c.Scaling != "" {
		if err := c.Scaling.Validate(); err != nil {
			return err
		}
	}
	if err := c.Taper.Validate(); err != nil {
		return err
	}
	if c.Window < 0 {
		return fmt.Errorf("invalid window %d", c.Window)
	}
	if c.Layout > SymmetricMiddle {
		return fmt.Errorf("invalid layout %v", c.Layout)
	}
	if c.Beat.Window < 0 || c.Beat.Threshold < 0 {
		return fmt.Errorf("invalid beat window %d or threshold %v", c.Beat.Window, c.Beat.Threshold)
	}
	if len(c.Bands) > 0 {
		if err := features.ValidateBands(c.Bands); err != nil {
			return err
		}
	}
	if c.Ripples < 0 {
		return fmt.Errorf("invalid ripple count %d", c.Ripples)
	}
	return nil
}

type opener func(audio.Config) (audio.Source, error)

// Register adds the audio effects to reg. Every run opens the source
// described by cfg.Audio.
func Register(reg *effects.Registry, cfg Config, logger *slog.Logger) {
	register(reg, cfg, logger, audio.Open)
}

func register(reg *effects.Registry, cfg Config, logger *slog.Logger, open opener) {
	audioCfg := cfg.Audio.WithDefaults()
	// One block per frame; reading paces the run.
	speed := max(audioCfg.BlockSize*1000/audioCfg.SampleRate, 1)

	type constructor func(v *visualizer, cfg Config, n int) (engine.Effect, error)

	add := func(name, desc string, bins func(n int) int, newEffect constructor) {
		reg.Register(effects.Entry{
			Name:        name,
			Description: desc,
			Audio:       true,
			Speed:       speed,
			New: func(p effects.Params, n int) (engine.Effect, error) {
				v, err := openVisualizer(cfg, bins(n), open, logger.With("effect", name))
				if err != nil {
					return nil, err
				}
				e, err := newEffect(v, cfg, n)
				if err != nil {
					v.Close()
					return nil, err
				}
				return e, nil
			},
		})
	}

	full := func(n int) int { return n }

	add("spectrum", "Spectrum with bass in red, mids in green and highs in blue", cfg.Layout.Bins, newSpectrum)
	add("beat_pulse", "Whole strip flashing a new color on every beat", full, newBlinking)
	add("dominant_color", "Whole strip colored by the loudest frequency", full, newDominant)
	add("ripple", "Ripples colored by the loudest frequency moving along the strip", full, newRipple)
}
