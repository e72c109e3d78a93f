package led

// Scale scales every channel of c by brightness/255. Brightness is clamped to
// [0, 255] and the division rounds toward zero, so Scale(c, 255) == c.
func Scale(c Color, brightness int) Color {
	b := int(clamp8(brightness))
	r, g, bl, w := c.Channels()
	return RGBW(
		int(r)*b/0xFF,
		int(g)*b/0xFF,
		int(bl)*b/0xFF,
		int(w)*b/0xFF,
	)
}

// Blend linearly interpolates between a and b. A ratio of 0 returns a, a ratio
// of 1 returns b. The ratio is clamped to [0, 1] and channels are truncated.
func Blend(a, b Color, ratio float64) Color {
	ratio = clampUnit(ratio)
	inv := 1 - ratio

	mix := func(x, y uint8) int {
		return int(float64(x)*inv + float64(y)*ratio)
	}

	return RGBW(
		mix(a.R(), b.R()),
		mix(a.G(), b.G()),
		mix(a.B(), b.B()),
		mix(a.W(), b.W()),
	)
}

// Decay multiplies every channel by factor, truncating. The factor is clamped
// to [0, 1]. For factor < 1 every non-zero channel strictly decreases, so
// repeated decays reach Black in a finite number of steps.
func Decay(c Color, factor float64) Color {
	factor = clampUnit(factor)
	r, g, b, w := c.Channels()
	return RGBW(
		int(float64(r)*factor),
		int(float64(g)*factor),
		int(float64(b)*factor),
		int(float64(w)*factor),
	)
}

// Wheel maps a position on the color wheel to a saturated color. The wheel is
// three 85-step linear ramps: red to green, green to blue and blue back to red.
// Positions wrap modulo 256 and Wheel(255) lands back on pure red.
func Wheel(pos int) Color {
	pos = ((pos % 256) + 256) % 256
	switch {
	case pos < 85:
		return RGB(255-pos*3, pos*3, 0)
	case pos < 170:
		pos -= 85
		return RGB(0, 255-pos*3, pos*3)
	default:
		pos -= 170
		return RGB(pos*3, 0, 255-pos*3)
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
