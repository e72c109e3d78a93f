package ledvis

import (
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/features"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// blinkDecay is how much of the flash is left after each frame.
const blinkDecay = 0.8

// Blinking flashes the whole strip in a new palette color on every beat and
// lets it fade until the next one.
type Blinking struct {
	*visualizer
	beat  *features.BeatDetector
	level float64
}

func newBlinking(v *visualizer, cfg Config, n int) (engine.Effect, error) {
	return &Blinking{
		visualizer: v,
		beat:       features.NewBeatDetector(cfg.Beat),
	}, nil
}

// Update implements engine.Effect.
func (b *Blinking) Update(s strip.Sink) error {
	frame, ok, err := b.next()
	if !ok {
		return err
	}

	if b.beat.Observe(frame.Peak) {
		b.level = 0xFF
		b.logger.Debug("beat", "peak", frame.Peak, "color", b.beat.Color())
	}

	strip.Fill(s, led.Scale(b.beat.Color(), int(b.level)))
	b.level *= blinkDecay
	return nil
}
