package audio

import "math"

// Tone is a Source producing a continuous sine wave. It never fails and never
// ends, which makes it useful for demos and tests.
type Tone struct {
	freq       float64
	amplitude  float64
	sampleRate int
	buf        Block
	index      uint64
}

var _ Source = (*Tone)(nil)

// NewTone creates a sine source of freq Hz. amplitude is a fraction of full
// scale and is clamped to [0, 1].
func NewTone(freq, amplitude float64, sampleRate, blockSize int) *Tone {
	return &Tone{
		freq:       freq,
		amplitude:  max(0, min(amplitude, 1)),
		sampleRate: sampleRate,
		buf:        make(Block, blockSize),
	}
}

// SetFrequency changes the frequency from the next block on.
func (t *Tone) SetFrequency(freq float64) { t.freq = freq }

// ReadBlock implements Source.
func (t *Tone) ReadBlock() (Block, error) {
	for i := range t.buf {
		x := float64(t.index+uint64(i)) / float64(t.sampleRate)
		t.buf[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.amplitude)
	}
	t.index += uint64(len(t.buf))
	return t.buf, nil
}

// BlockSize implements Source.
func (t *Tone) BlockSize() int { return len(t.buf) }

// SampleRate implements Source.
func (t *Tone) SampleRate() int { return t.sampleRate }

// Close implements Source.
func (t *Tone) Close() error { return nil }
