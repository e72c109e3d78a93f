package ledvis

import (
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// Spectrum draws the normalized level of every bin. The lowest third of the
// bins is red, the middle third green and the highest third blue.
type Spectrum struct {
	*visualizer
	layout Layout
}

func newSpectrum(v *visualizer, cfg Config, n int) (engine.Effect, error) {
	return &Spectrum{visualizer: v, layout: cfg.Layout}, nil
}

// Update implements engine.Effect. Skipped audio blocks leave the strip as it
// was.
func (e *Spectrum) Update(s strip.Sink) error {
	frame, ok, err := e.next()
	if !ok {
		return err
	}

	n := s.Len()
	bins := len(frame.Levels)

	for i, level := range frame.Levels {
		c := bandColor(i, bins, int(level))

		switch e.layout {
		case MonoLeft:
			strip.SetClamped(s, i, c)
		case MonoRight:
			strip.SetClamped(s, n-1-i, c)
		case SymmetricMiddle:
			strip.SetClamped(s, n/2+i, c)
			strip.SetClamped(s, (n-1)/2-i, c)
		}
	}

	return nil
}

func bandColor(i, bins, level int) led.Color {
	switch i * 3 / bins {
	case 0:
		return led.RGB(level, 0, 0)
	case 1:
		return led.RGB(0, level, 0)
	default:
		return led.RGB(0, 0, level)
	}
}
