package features

import (
	"math"

	"libdb.so/stripglow/internal/led"
)

const (
	// DefaultRipples is how many ripples are kept alive at once.
	DefaultRipples = 32
	// rippleFalloff is how much intensity a ripple loses per pixel of
	// distance.
	rippleFalloff = 4
	// rippleSpeed is how many pixels a full-volume ripple moves per tick.
	rippleSpeed = 3
)

// Ripple is a pulse of color moving along the strip.
type Ripple struct {
	Pos    int
	Color  led.Color
	Volume float64
}

// Ripples is a bounded FIFO of ripples. Each tick starts a new ripple at the
// beginning of the strip and moves the older ones outwards at a speed
// proportional to the volume they were started with.
type Ripples struct {
	ripples  []Ripple
	capacity int
}

// NewRipples creates an accumulator keeping at most capacity ripples.
func NewRipples(capacity int) *Ripples {
	if capacity <= 0 {
		capacity = DefaultRipples
	}
	return &Ripples{
		ripples:  make([]Ripple, 0, capacity),
		capacity: capacity,
	}
}

// Tick advances the existing ripples, then starts a new one with the given
// color and volume.
func (r *Ripples) Tick(c led.Color, volume float64) {
	for i := range r.ripples {
		r.ripples[i].Pos += int(math.Round(rippleSpeed * r.ripples[i].Volume))
	}

	if len(r.ripples) == r.capacity {
		copy(r.ripples, r.ripples[1:])
		r.ripples = r.ripples[:len(r.ripples)-1]
	}

	r.ripples = append(r.ripples, Ripple{
		Pos:    0,
		Color:  c,
		Volume: volume,
	})
}

// Ripples returns the live ripples, oldest first. The slice must not be
// modified.
func (r *Ripples) Ripples() []Ripple { return r.ripples }

// Intensity returns the intensity of one ripple at pixel i.
func Intensity(rp Ripple, i int) int {
	dist := i - rp.Pos
	if dist < 0 {
		dist = -dist
	}
	return max(255-dist*rippleFalloff, 0)
}

// Render draws the ripples into leds. Each pixel takes the color of the ripple
// that is brightest there, scaled by that intensity.
func (r *Ripples) Render(leds led.LEDs) {
	for i := range leds {
		best, bestIntensity := -1, 0
		for j, rp := range r.ripples {
			if v := Intensity(rp, i); v > bestIntensity {
				best, bestIntensity = j, v
			}
		}

		if best == -1 {
			leds[i] = led.Black
			continue
		}
		leds[i] = led.Scale(r.ripples[best].Color, bestIntensity)
	}
}
