package ledvis

import (
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/features"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// Dominant fills the strip with the color of the loudest frequency, dimmed by
// the volume.
type Dominant struct {
	*visualizer
	tracker *features.DominantTracker
}

func newDominant(v *visualizer, cfg Config, n int) (engine.Effect, error) {
	tracker, err := features.NewDominantTracker(v.sampleRate(), cfg.Bands)
	if err != nil {
		return nil, err
	}
	return &Dominant{visualizer: v, tracker: tracker}, nil
}

// Update implements engine.Effect.
func (d *Dominant) Update(s strip.Sink) error {
	frame, ok, err := d.next()
	if !ok {
		return err
	}

	_, c := d.tracker.Observe(frame.Spectrum)
	strip.Fill(s, led.Scale(c, int(frame.Volume*0xFF)))
	return nil
}

// Ripple starts a ripple in the dominant color every frame. Louder ripples
// travel faster.
type Ripple struct {
	*visualizer
	tracker *features.DominantTracker
	ripples *features.Ripples
	leds    led.LEDs
}

func newRipple(v *visualizer, cfg Config, n int) (engine.Effect, error) {
	tracker, err := features.NewDominantTracker(v.sampleRate(), cfg.Bands)
	if err != nil {
		return nil, err
	}
	return &Ripple{
		visualizer: v,
		tracker:    tracker,
		ripples:    features.NewRipples(cfg.Ripples),
		leds:       led.NewLEDs(n),
	}, nil
}

// Update implements engine.Effect. Ripples past the end of the strip are
// not drawn.
func (r *Ripple) Update(s strip.Sink) error {
	frame, ok, err := r.next()
	if !ok {
		return err
	}

	_, c := r.tracker.Observe(frame.Spectrum)
	r.ripples.Tick(c, frame.Volume)
	r.ripples.Render(r.leds)

	for i, c := range r.leds[:min(len(r.leds), s.Len())] {
		s.Set(i, c)
	}
	return nil
}
