package effects

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"libdb.so/stripglow/internal/engine"
)

// ErrUnknownEffect is returned for names that are not registered.
var ErrUnknownEffect = errors.New("unknown effect")

// Entry describes one registered effect.
type Entry struct {
	Name        string
	Description string
	// Audio is true for effects that capture audio.
	Audio bool
	// Speed is the default frame period in milliseconds.
	Speed int
	// New builds the effect for a strip of n pixels. Params have their
	// defaults applied and are valid.
	New func(p Params, n int) (engine.Effect, error)
}

// Registry maps effect names to entries. It is not safe for concurrent
// registration; register everything before use.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e, replacing any entry with the same name.
func (r *Registry) Register(e Entry) {
	if _, ok := r.entries[e.Name]; !ok {
		r.order = append(r.order, e.Name)
	}
	r.entries[e.Name] = e
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.order))
	for i, name := range r.order {
		entries[i] = r.entries[name]
	}
	return entries
}

// Names returns the sorted effect names.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Factory validates p and returns a factory for the named effect on a strip
// of n pixels, along with its frame period.
func (r *Registry) Factory(name string, p Params, n int) (engine.Factory, time.Duration, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}

	if n < 1 {
		return nil, 0, &ConfigError{"strip length", n, "must be at least 1"}
	}

	if err := p.Validate(); err != nil {
		return nil, 0, err
	}
	p = p.WithDefaults()

	factory := func() (engine.Effect, error) {
		return e.New(p, n)
	}

	return factory, p.Period(e.Speed), nil
}

// Builtin returns a registry with every non-audio effect.
func Builtin() *Registry {
	r := NewRegistry()
	for _, e := range builtin {
		r.Register(e)
	}
	return r
}

func simple(f func(p Params, n int) engine.Effect) func(Params, int) (engine.Effect, error) {
	return func(p Params, n int) (engine.Effect, error) {
		return f(p, n), nil
	}
}

var builtin = []Entry{
	{Name: "rainbow", Description: "Red, green and blue ramps running along the strip", Speed: 50, New: simple(newRainbow)},
	{Name: "blink", Description: "Whole strip blinking white", Speed: 500, New: simple(newBlink)},
	{Name: "color_wipe", Description: "Color filling the strip pixel by pixel, then clearing it", Speed: 50, New: simple(newColorWipe)},
	{Name: "pulse", Description: "Whole strip pulsing in one color", Speed: 50, New: simple(newPulse)},
	{Name: "soft_white_pulse", Description: "White channel pulsing over a base color", Speed: 50, New: simple(newSoftWhitePulse)},
	{Name: "warm_white_fade", Description: "White channel fading over changing base colors", Speed: 100, New: simple(newWarmWhiteFade)},
	{Name: "rainbow_flash", Description: "Rainbow wheel with periodic white flashes", Speed: 50, New: simple(newRainbowFlash)},
	{Name: "fade", Description: "Red, green and blue fading in and out", Speed: 50, New: simple(newFade)},
	{Name: "theater_chase", Description: "Marquee lights chasing along the strip", Speed: 50, New: simple(newTheaterChase)},
	{Name: "twinkle", Description: "Random colors twinkling on and off", Speed: 50, New: simple(newTwinkle)},
	{Name: "wave", Description: "Sine wave of red and blue travelling along the strip", Speed: 50, New: simple(newWave)},
	{Name: "meteor", Description: "White meteor with a fading trail", Speed: 50, New: simple(newMeteor)},
	{Name: "larson", Description: "Larson scanner bouncing back and forth", Speed: 50, New: simple(newLarson)},
	{Name: "comet", Description: "Comet with a fading tail", Speed: 50, New: simple(newComet)},
	{Name: "bouncing_balls", Description: "Balls bouncing between the strip ends", Speed: 50, New: simple(newBouncingBalls)},
	{Name: "white_comet", Description: "Comet using the white channel", Speed: 50, New: simple(newWhiteComet)},
	{Name: "fireplace", Description: "Flickering fire", Speed: 50, New: simple(newFireplace)},
	{Name: "aurora", Description: "Aurora borealis colors", Speed: 100, New: simple(newAurora)},
	{Name: "firework", Description: "Fireworks bursting and fading", Speed: 50, New: simple(newFirework)},
	{Name: "cool_white_twinkle", Description: "Random pixels twinkling with white", Speed: 100, New: simple(newCoolWhiteTwinkle)},
	{Name: "lightning", Description: "Dark blue sky with lightning strikes", Speed: 50, New: simple(newLightning)},
	{Name: "strobe", Description: "Full white strobe", Speed: 100, New: simple(newStrobe)},
	{Name: "holiday_twinkle", Description: "Red, green and white twinkling", Speed: 150, New: simple(newHolidayTwinkle)},
	{Name: "sparkles", Description: "Sparse random sparkles", Speed: 50, New: simple(newSparkles)},
	{Name: "meteor_shower", Description: "Random meteors with fading trails", Speed: 50, New: simple(newMeteorShower)},
	{Name: "white_strobes", Description: "Random white strobes", Speed: 50, New: simple(newWhiteStrobes)},
	{Name: "color_shifts", Description: "Every pixel shifting to a random color", Speed: 100, New: simple(newColorShifts)},
	{Name: "random_walk", Description: "A pixel wandering along the strip", Speed: 100, New: simple(newRandomWalk)},
	{Name: "glitter", Description: "Random glitter", Speed: 50, New: simple(newGlitter)},
	{Name: "comet_rain", Description: "Short comets raining on the strip", Speed: 100, New: simple(newCometRain)},
	{Name: "pixel_explosion", Description: "Occasional explosions spreading from a pixel", Speed: 100, New: simple(newPixelExplosion)},
	{Name: "lava_explosion", Description: "Lava colored explosions", Speed: 100, New: simple(newLavaExplosion)},
}
