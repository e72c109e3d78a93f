package effects

import (
	"math/rand/v2"
	"time"

	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

const (
	fireworkRadius  = 3
	fireworkFade    = 5
	fireworkIdleMin = 500 * time.Millisecond
	fireworkIdleMax = 2000 * time.Millisecond
)

// firework bursts a random color at a random spot, fades it out, then waits
// a random while before the next burst.
type firework struct {
	rng    *rand.Rand
	period time.Duration

	center     int
	color      led.Color
	brightness int
	idle       int
}

func newFirework(p Params, n int) engine.Effect {
	return &firework{rng: p.Rand(), period: p.Period(50)}
}

func (e *firework) Update(s strip.Sink) error {
	if e.idle > 0 {
		e.idle--
		return nil
	}

	if e.brightness <= 0 {
		e.center = e.rng.IntN(s.Len())
		e.color = randomRGB(e.rng)
		e.brightness = 0xFF
	}

	c := led.Scale(e.color, e.brightness)
	for i := e.center - fireworkRadius; i <= e.center+fireworkRadius; i++ {
		strip.SetClamped(s, i, c)
	}

	e.brightness -= fireworkFade
	if e.brightness <= 0 {
		idle := time.Duration(randIn(e.rng, int(fireworkIdleMin), int(fireworkIdleMax)))
		e.idle = framesFor(idle, e.period)
	}
	return nil
}

// sparkle lights each pixel with probability p using color, and turns it off
// otherwise.
type sparkle struct {
	rng   *rand.Rand
	p     float64
	color func(*rand.Rand) led.Color
}

func newCoolWhiteTwinkle(p Params, n int) engine.Effect {
	return &sparkle{rng: p.Rand(), p: 0.5, color: randomRGBW}
}

func newSparkles(p Params, n int) engine.Effect {
	return &sparkle{rng: p.Rand(), p: 0.05, color: randomRGBW}
}

func newGlitter(p Params, n int) engine.Effect {
	return &sparkle{rng: p.Rand(), p: p.glitter(), color: randomRGBW}
}

func newWhiteStrobes(p Params, n int) engine.Effect {
	white := func(*rand.Rand) led.Color { return led.RGBW(255, 255, 255, 255) }
	return &sparkle{rng: p.Rand(), p: 0.05, color: white}
}

func (e *sparkle) Update(s strip.Sink) error {
	for i := range s.Len() {
		if e.rng.Float64() < e.p {
			s.Set(i, e.color(e.rng))
		} else {
			s.Set(i, led.Black)
		}
	}
	return nil
}

const (
	lightningChance   = 0.05
	lightningDuration = 100 * time.Millisecond
)

type lightning struct {
	rng    *rand.Rand
	flash  int
	frames int
}

func newLightning(p Params, n int) engine.Effect {
	return &lightning{rng: p.Rand(), flash: framesFor(lightningDuration, p.Period(50))}
}

func (e *lightning) Update(s strip.Sink) error {
	if e.frames == 0 && e.rng.Float64() < lightningChance {
		e.frames = e.flash
	}

	if e.frames > 0 {
		e.frames--
		strip.Fill(s, led.RGBW(255, 255, 255, 255))
		return nil
	}

	strip.Fill(s, led.RGB(0, 0, 50))
	return nil
}

type strobe struct {
	on bool
}

func newStrobe(p Params, n int) engine.Effect {
	return &strobe{}
}

func (e *strobe) Update(s strip.Sink) error {
	e.on = !e.on
	if e.on {
		strip.Fill(s, led.RGBW(255, 255, 255, 255))
	} else {
		strip.Clear(s)
	}
	return nil
}

func newHolidayTwinkle(p Params, n int) engine.Effect {
	return &choice{rng: p.Rand(), colors: []led.Color{
		led.RGB(255, 0, 0),
		led.RGB(0, 255, 0),
		led.RGBW(0, 0, 0, 255),
	}}
}

// meteorShower drops a meteor of a random color at a random spot every frame
// and fades the whole strip.
type meteorShower struct {
	rng   *rand.Rand
	size  int
	decay float64
}

func newMeteorShower(p Params, n int) engine.Effect {
	return &meteorShower{rng: p.Rand(), size: p.MeteorSize, decay: p.decay()}
}

func (e *meteorShower) Update(s strip.Sink) error {
	n := s.Len()
	start := randIn(e.rng, 0, n-e.size)
	c := randomRGBW(e.rng)
	for i := start; i < start+e.size && i < n; i++ {
		s.Set(i, c)
	}

	for i := range n {
		decayAt(s, i, e.decay)
	}
	return nil
}

type colorShifts struct {
	rng *rand.Rand
}

func newColorShifts(p Params, n int) engine.Effect {
	return &colorShifts{rng: p.Rand()}
}

func (e *colorShifts) Update(s strip.Sink) error {
	for i := range s.Len() {
		s.Set(i, randomRGBW(e.rng))
	}
	return nil
}

// randomWalk moves one pixel left or right every frame, wrapping at the
// ends, and paints it a random color. Visited pixels keep their color.
type randomWalk struct {
	rng *rand.Rand
	pos int
}

func newRandomWalk(p Params, n int) engine.Effect {
	rng := p.Rand()
	return &randomWalk{rng: rng, pos: rng.IntN(n)}
}

func (e *randomWalk) Update(s strip.Sink) error {
	n := s.Len()
	if e.rng.IntN(2) == 0 {
		e.pos--
	} else {
		e.pos++
	}
	e.pos = (e.pos + n) % n

	s.Set(e.pos, randomRGBW(e.rng))
	return nil
}

const cometRainSize = 3

type cometRain struct {
	rng *rand.Rand
}

func newCometRain(p Params, n int) engine.Effect {
	return &cometRain{rng: p.Rand()}
}

func (e *cometRain) Update(s strip.Sink) error {
	n := s.Len()
	strip.Clear(s)

	for range randIn(e.rng, 3, 6) {
		start := randIn(e.rng, 0, n-cometRainSize)
		c := randomRGBW(e.rng)
		for i := start; i < start+cometRainSize && i < n; i++ {
			s.Set(i, c)
		}
	}
	return nil
}

// explosion grows a pair of pixels outwards from a center by one pixel per
// frame until it covers half the strip. Pixels are left lit behind it.
type explosion struct {
	rng    *rand.Rand
	chance float64
	color  func(*rand.Rand) led.Color

	active bool
	center int
	radius int
	c      led.Color
}

func newPixelExplosion(p Params, n int) engine.Effect {
	return &explosion{rng: p.Rand(), chance: p.explosion(), color: randomRGBW}
}

func newLavaExplosion(p Params, n int) engine.Effect {
	lava := func(rng *rand.Rand) led.Color {
		return led.RGBW(255, randIn(rng, 50, 150), 0, randIn(rng, 0, 100))
	}
	return &explosion{rng: p.Rand(), chance: 1, color: lava}
}

func (e *explosion) Update(s strip.Sink) error {
	n := s.Len()

	if !e.active {
		if e.rng.Float64() >= e.chance {
			return nil
		}
		e.active = true
		e.center = e.rng.IntN(n)
		e.radius = 1
		e.c = e.color(e.rng)
	}

	if e.radius < n/2 {
		strip.SetClamped(s, e.center-e.radius, e.c)
		strip.SetClamped(s, e.center+e.radius, e.c)
		e.radius++
	}

	if e.radius >= n/2 {
		e.active = false
	}
	return nil
}
