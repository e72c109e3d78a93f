package led

// LEDs describes a strip of LEDs. It is a preallocated slice of Color.
type LEDs []Color

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c Color) {
	l[i] = c
}

// SetRange sets the color of the LEDs in the range [start, end). The range is
// clipped to the strip.
func (l LEDs) SetRange(start, end int, c Color) {
	start = max(start, 0)
	end = min(end, len(l))
	for i := start; i < end; i++ {
		l[i] = c
	}
}

// Fill sets every LED to c.
func (l LEDs) Fill(c Color) {
	for i := range l {
		l[i] = c
	}
}

// Draw draws the given LEDs into the strip at the given index.
// It stops when either l or other is exhausted and returns the number of LEDs
// written.
func (l LEDs) Draw(start int, other LEDs) int {
	for i := range other {
		if start+i >= len(l) {
			return i
		}
		l[start+i] = other[i]
	}
	return len(other)
}

// Encode appends the strip to dst as raw channel bytes in the given order,
// scaling every pixel by brightness first. It returns the extended slice.
func (l LEDs) Encode(dst []byte, order Order, brightness uint8) []byte {
	bpp := order.BytesPerPixel()

	n := len(dst)
	dst = append(dst, make([]byte, bpp*len(l))...)

	for i, c := range l {
		if brightness != 0xFF {
			c = Scale(c, int(brightness))
		}
		order.Encode(dst[n+i*bpp:], c)
	}

	return dst
}
