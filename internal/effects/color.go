package effects

import (
	"time"

	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// triangle returns the value of a ramp going from 0 up to peak and back down
// in steps of inc, at the given step. Both ends are held for one step.
func triangle(step, peak, inc int) int {
	n := peak/inc + 1
	step %= 2 * n
	if step < n {
		return step * inc
	}
	return peak - (step-n)*inc
}

// rampLen is the number of steps of one full triangle.
func rampLen(peak, inc int) int {
	return 2 * (peak/inc + 1)
}

// framesFor converts a duration into a frame count at the given period. It
// never returns less than 1.
func framesFor(d, period time.Duration) int {
	if period <= 0 {
		return 1
	}
	return max(int(d/period), 1)
}

var rainbowStops = []led.Color{
	led.RGB(255, 0, 0),
	led.RGB(0, 255, 0),
	led.RGB(0, 0, 255),
	led.RGB(255, 0, 0),
}

type rainbow struct {
	n     int
	start int
}

func newRainbow(p Params, n int) engine.Effect {
	return &rainbow{n: n}
}

// Update draws red, green and blue ramps, each a third of the strip long,
// shifted by one pixel per frame. The pattern repeats every n frames.
func (r *rainbow) Update(s strip.Sink) error {
	segments := len(rainbowStops) - 1

	for i := range r.n {
		pos := ((i-r.start)%r.n + r.n) % r.n
		block := pos * segments / r.n
		ratio := float64(pos*segments-block*r.n) / float64(r.n)
		s.Set(i, led.Blend(rainbowStops[block], rainbowStops[block+1], ratio))
	}

	r.start = (r.start + 1) % r.n
	return nil
}

type blink struct {
	color led.Color
	on    bool
}

func newBlink(p Params, n int) engine.Effect {
	return &blink{color: p.ColorOr(led.RGB(255, 255, 255))}
}

func (b *blink) Update(s strip.Sink) error {
	b.on = !b.on
	if b.on {
		strip.Fill(s, b.color)
	} else {
		strip.Clear(s)
	}
	return nil
}

// colorWipe fills the strip one pixel per frame, then clears it the same way.
type colorWipe struct {
	color led.Color
	n     int
	step  int
}

func newColorWipe(p Params, n int) engine.Effect {
	return &colorWipe{color: p.ColorOr(led.RGB(255, 0, 0)), n: n}
}

func (w *colorWipe) Update(s strip.Sink) error {
	if w.step < w.n {
		s.Set(w.step, w.color)
	} else {
		s.Set(w.step-w.n, led.Black)
	}
	w.step = (w.step + 1) % (2 * w.n)
	return nil
}

func newPulse(p Params, n int) engine.Effect {
	return &fade{colors: []led.Color{p.ColorOr(led.RGB(255, 0, 0))}}
}

// whitePulse ramps the white channel up and down over a list of base colors,
// moving to the next color after each full ramp.
type whitePulse struct {
	colors []led.Color
	step   int
}

func newSoftWhitePulse(p Params, n int) engine.Effect {
	return &whitePulse{colors: []led.Color{p.ColorOr(led.RGB(255, 0, 0))}}
}

func newWarmWhiteFade(p Params, n int) engine.Effect {
	return &whitePulse{colors: []led.Color{
		led.RGB(255, 0, 0),
		led.RGB(0, 255, 0),
		led.RGB(0, 0, 255),
		led.RGB(255, 255, 0),
	}}
}

func (e *whitePulse) Update(s strip.Sink) error {
	ramp := rampLen(255, 5)
	base := e.colors[e.step/ramp]
	r, g, b, _ := base.Channels()

	strip.Fill(s, led.RGBW(int(r), int(g), int(b), triangle(e.step%ramp, 255, 5)))

	e.step = (e.step + 1) % (ramp * len(e.colors))
	return nil
}

const (
	rainbowFlashEvery    = 10
	rainbowFlashDuration = 200 * time.Millisecond
)

type rainbowFlashPhase uint8

const (
	flashWheel rainbowFlashPhase = iota
	flashWhite
	flashDark
)

// rainbowFlash scrolls the color wheel and flashes the white channel every
// few steps.
type rainbowFlash struct {
	n      int
	flash  int
	j      int
	phase  rainbowFlashPhase
	frames int
}

func newRainbowFlash(p Params, n int) engine.Effect {
	return &rainbowFlash{
		n:     n,
		flash: framesFor(rainbowFlashDuration, p.Period(50)),
	}
}

func (e *rainbowFlash) Update(s strip.Sink) error {
	switch e.phase {
	case flashWheel:
		for i := range e.n {
			s.Set(i, led.Wheel((i+e.j)&0xFF))
		}
		if e.j%rainbowFlashEvery == 0 {
			e.phase, e.frames = flashWhite, e.flash
		} else {
			e.j = (e.j + 1) % 256
		}

	case flashWhite:
		strip.Fill(s, led.RGBW(0, 0, 0, 0xFF))
		if e.frames--; e.frames == 0 {
			e.phase, e.frames = flashDark, e.flash
		}

	case flashDark:
		strip.Clear(s)
		if e.frames--; e.frames == 0 {
			e.phase = flashWheel
			e.j = (e.j + 1) % 256
		}
	}
	return nil
}
