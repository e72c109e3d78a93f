package effects

import (
	"math"
	"math/rand/v2"

	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// decayAt fades pixel i of s by factor if it is on the strip.
func decayAt(s strip.Sink, i int, factor float64) {
	if i >= 0 && i < s.Len() {
		s.Set(i, led.Decay(s.Get(i), factor))
	}
}

// fade ramps the brightness of the whole strip up and down, once per color.
type fade struct {
	colors []led.Color
	step   int
}

func newFade(p Params, n int) engine.Effect {
	return &fade{colors: []led.Color{
		led.RGB(255, 0, 0),
		led.RGB(0, 255, 0),
		led.RGB(0, 0, 255),
	}}
}

func (e *fade) Update(s strip.Sink) error {
	ramp := rampLen(255, 5)
	strip.Fill(s, led.Scale(e.colors[e.step/ramp], triangle(e.step%ramp, 255, 5)))
	e.step = (e.step + 1) % (ramp * len(e.colors))
	return nil
}

type theaterChase struct {
	color led.Color
	q     int
}

func newTheaterChase(p Params, n int) engine.Effect {
	return &theaterChase{color: p.ColorOr(led.RGB(127, 127, 127))}
}

func (e *theaterChase) Update(s strip.Sink) error {
	strip.Clear(s)
	for i := e.q; i < s.Len(); i += 3 {
		s.Set(i, e.color)
	}
	e.q = (e.q + 1) % 3
	return nil
}

// twinkle alternates between painting every pixel a random color and turning
// about half of them off.
type twinkle struct {
	rng *rand.Rand
	off bool
}

func newTwinkle(p Params, n int) engine.Effect {
	return &twinkle{rng: p.Rand()}
}

func (e *twinkle) Update(s strip.Sink) error {
	for i := range s.Len() {
		switch {
		case !e.off:
			s.Set(i, randomRGB(e.rng))
		case e.rng.Float64() > 0.5:
			s.Set(i, led.Black)
		}
	}
	e.off = !e.off
	return nil
}

const waveStep = 0.1

type wave struct {
	frame int
}

func newWave(p Params, n int) engine.Effect {
	return &wave{}
}

func (e *wave) Update(s strip.Sink) error {
	for i := range s.Len() {
		intensity := int((math.Sin(float64(i+e.frame)*waveStep) + 1) * 127)
		s.Set(i, led.RGB(intensity, 0, 255-intensity))
	}
	e.frame++
	return nil
}

// meteor moves a block of white along the strip, leaving a decaying trail.
type meteor struct {
	size  int
	decay float64
	pos   int
}

func newMeteor(p Params, n int) engine.Effect {
	return &meteor{size: p.MeteorSize, decay: p.decay()}
}

func (e *meteor) Update(s strip.Sink) error {
	n := s.Len()
	for i := range n {
		decayAt(s, i, e.decay)
	}
	for i := e.pos; i < e.pos+e.size && i < n; i++ {
		s.Set(i, led.RGB(255, 255, 255))
	}
	e.pos = (e.pos + 1) % n
	return nil
}

// larson sweeps a single pixel forward then backward, fading the pixels it
// just left.
type larson struct {
	color led.Color
	tail  int
	decay float64
	step  int
}

func newLarson(p Params, n int) engine.Effect {
	return &larson{
		color: p.ColorOr(led.RGB(255, 0, 0)),
		tail:  p.tailLength(),
		decay: p.decay(),
	}
}

func (e *larson) Update(s strip.Sink) error {
	n := s.Len()

	pos, dir := e.step, -1
	if e.step >= n {
		pos, dir = 2*n-1-e.step, 1
	}

	s.Set(pos, e.color)
	for j := 1; j <= e.tail; j++ {
		decayAt(s, pos+dir*j, e.decay)
	}

	e.step = (e.step + 1) % (2 * n)
	return nil
}

// comet moves a head pixel along the strip and fades the tail behind it.
type comet struct {
	head  led.Color
	tail  int
	decay float64
	pos   int
}

func newComet(p Params, n int) engine.Effect {
	return &comet{head: p.CometColor, tail: p.tailLength(), decay: p.decay()}
}

func newWhiteComet(p Params, n int) engine.Effect {
	return &comet{head: led.RGBW(0, 0, 255, 255), tail: p.tailLength(), decay: p.decay()}
}

func (e *comet) Update(s strip.Sink) error {
	s.Set(e.pos, e.head)
	for j := 1; j <= e.tail; j++ {
		decayAt(s, e.pos-j, e.decay)
	}
	e.pos = (e.pos + 1) % s.Len()
	return nil
}

type ball struct {
	pos, vel float64
	color    led.Color
}

type bouncingBalls struct {
	balls []ball
}

func newBouncingBalls(p Params, n int) engine.Effect {
	rng := p.Rand()
	balls := make([]ball, p.NumBalls)
	for i := range balls {
		balls[i] = ball{
			vel:   0.2 + rng.Float64()*0.6,
			color: p.BallColors[i%len(p.BallColors)],
		}
	}
	return &bouncingBalls{balls: balls}
}

func (e *bouncingBalls) Update(s strip.Sink) error {
	last := float64(s.Len() - 1)
	for i := range e.balls {
		b := &e.balls[i]
		b.pos += b.vel
		if b.pos >= last || b.pos <= 0 {
			b.vel = -b.vel
		}
	}

	strip.Clear(s)
	for _, b := range e.balls {
		i := min(max(int(b.pos), 0), s.Len()-1)
		s.Set(i, b.color)
	}
	return nil
}

type fireplace struct {
	rng *rand.Rand
}

func newFireplace(p Params, n int) engine.Effect {
	return &fireplace{rng: p.Rand()}
}

func (e *fireplace) Update(s strip.Sink) error {
	for i := range s.Len() {
		s.Set(i, led.RGBW(
			randIn(e.rng, 200, 255),
			randIn(e.rng, 50, 150),
			randIn(e.rng, 0, 50),
			randIn(e.rng, 0, 50),
		))
	}
	return nil
}

// choice paints every pixel with a random pick from a fixed set of colors.
type choice struct {
	rng    *rand.Rand
	colors []led.Color
}

func newAurora(p Params, n int) engine.Effect {
	return &choice{rng: p.Rand(), colors: []led.Color{
		led.RGBW(0, 64, 255, 0),
		led.RGBW(0, 128, 0, 64),
		led.RGBW(128, 0, 255, 0),
		led.RGBW(0, 64, 128, 128),
	}}
}

func (e *choice) Update(s strip.Sink) error {
	for i := range s.Len() {
		s.Set(i, e.colors[e.rng.IntN(len(e.colors))])
	}
	return nil
}
