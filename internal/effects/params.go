// Package effects contains the non-audio effects and the registry that maps
// effect names to constructors.
//
// Every effect advances exactly one step per Update call; timing comes from
// the frame period the engine runs it at.
package effects

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"libdb.so/stripglow/internal/led"
)

// ErrConfig is matched by every *ConfigError.
var ErrConfig = errors.New("invalid effect configuration")

// ConfigError is an out-of-range effect parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is makes every ConfigError match ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Params are the tunable parameters shared by all effects. Zero values mean
// "use the default", except for the pointer fields, where zero is a valid
// setting and nil means unset. Values out of range are rejected by Validate.
type Params struct {
	// Speed is the frame period in milliseconds. Zero uses the effect's own
	// default.
	Speed int `toml:"speed"`
	// MeteorSize is the length of a meteor in pixels.
	MeteorSize int `toml:"meteor_size"`
	// Decay is the per-frame fade factor of trails, in [0, 1]. Zero leaves no
	// trail.
	Decay *float64 `toml:"decay"`
	// TailLength is the number of trailing pixels faded behind a comet or
	// scanner.
	TailLength *int `toml:"tail_length"`
	// NumBalls is the number of bouncing balls.
	NumBalls int `toml:"num_balls"`
	// BallColors are cycled through for the bouncing balls.
	BallColors []led.Color `toml:"ball_colors"`
	// Color is the main color of single-color effects. Each effect has its
	// own default.
	Color led.Color `toml:"color"`
	// CometColor is the color of the comet head.
	CometColor led.Color `toml:"comet_color"`
	// GlitterProbability is the chance per pixel and frame of glitter.
	GlitterProbability *float64 `toml:"glitter_probability"`
	// ExplosionProbability is the chance per frame of a pixel explosion.
	ExplosionProbability *float64 `toml:"explosion_probability"`
	// Seed seeds the random effects. Zero picks a random seed.
	Seed uint64 `toml:"seed"`
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		MeteorSize: 10,
		Decay:      Ptr(0.8),
		TailLength: Ptr(5),
		NumBalls:   3,
		BallColors: []led.Color{
			led.RGB(255, 0, 0),
			led.RGB(0, 255, 0),
			led.RGB(0, 0, 255),
		},
		CometColor:           led.RGB(0, 0, 255),
		GlitterProbability:   Ptr(0.1),
		ExplosionProbability: Ptr(0.05),
	}
}

// Ptr returns a pointer to v, for setting the optional fields of Params.
func Ptr[T any](v T) *T { return &v }

func valueOr[T any](v *T, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

// WithDefaults returns p with zero fields replaced by DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.MeteorSize == 0 {
		p.MeteorSize = d.MeteorSize
	}
	if p.Decay == nil {
		p.Decay = d.Decay
	}
	if p.TailLength == nil {
		p.TailLength = d.TailLength
	}
	if p.NumBalls == 0 {
		p.NumBalls = d.NumBalls
	}
	if len(p.BallColors) == 0 {
		p.BallColors = d.BallColors
	}
	if p.CometColor == led.Black {
		p.CometColor = d.CometColor
	}
	if p.GlitterProbability == nil {
		p.GlitterProbability = d.GlitterProbability
	}
	if p.ExplosionProbability == nil {
		p.ExplosionProbability = d.ExplosionProbability
	}
	return p
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	d := DefaultParams()
	decay := valueOr(p.Decay, d.Decay)
	tail := valueOr(p.TailLength, d.TailLength)
	glitter := valueOr(p.GlitterProbability, d.GlitterProbability)
	explosion := valueOr(p.ExplosionProbability, d.ExplosionProbability)

	switch {
	case p.Speed < 0 || p.Speed > 60_000:
		return &ConfigError{"speed", p.Speed, "must be between 0 and 60000 ms"}
	case p.MeteorSize < 0:
		return &ConfigError{"meteor_size", p.MeteorSize, "must not be negative"}
	case decay < 0 || decay > 1:
		return &ConfigError{"decay", decay, "must be in [0, 1]"}
	case tail < 0:
		return &ConfigError{"tail_length", tail, "must not be negative"}
	case p.NumBalls < 0 || p.NumBalls > 64:
		return &ConfigError{"num_balls", p.NumBalls, "must be between 0 and 64"}
	case glitter < 0 || glitter > 1:
		return &ConfigError{"glitter_probability", glitter, "must be in [0, 1]"}
	case explosion < 0 || explosion > 1:
		return &ConfigError{"explosion_probability", explosion, "must be in [0, 1]"}
	}
	return nil
}

// decay, tailLength, glitter and explosion return the optional parameters,
// falling back to their defaults when unset.
func (p Params) decay() float64 { return valueOr(p.Decay, DefaultParams().Decay) }

func (p Params) tailLength() int { return valueOr(p.TailLength, DefaultParams().TailLength) }

func (p Params) glitter() float64 {
	return valueOr(p.GlitterProbability, DefaultParams().GlitterProbability)
}

func (p Params) explosion() float64 {
	return valueOr(p.ExplosionProbability, DefaultParams().ExplosionProbability)
}

// Period returns the frame period, falling back to def milliseconds.
func (p Params) Period(def int) time.Duration {
	ms := p.Speed
	if ms == 0 {
		ms = def
	}
	return time.Duration(ms) * time.Millisecond
}

// ColorOr returns p.Color, or def if it is unset.
func (p Params) ColorOr(def led.Color) led.Color {
	if p.Color == led.Black {
		return def
	}
	return p.Color
}

// Rand returns the random source for one run.
func (p Params) Rand() *rand.Rand {
	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

func randIn(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

func randomRGB(rng *rand.Rand) led.Color {
	return led.RGB(rng.IntN(256), rng.IntN(256), rng.IntN(256))
}

func randomRGBW(rng *rand.Rand) led.Color {
	return led.RGBW(rng.IntN(256), rng.IntN(256), rng.IntN(256), rng.IntN(256))
}
