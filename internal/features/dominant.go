package features

import (
	"fmt"

	"libdb.so/stripglow/internal/led"
)

// Band maps a frequency range to a color ramp. Frequencies between Low and
// High get a color linearly blended from From to To.
type Band struct {
	Low  float64   `toml:"low"`
	High float64   `toml:"high"`
	From led.Color `toml:"from"`
	To   led.Color `toml:"to"`
}

// DefaultBands returns the default bands for the given sample rate: bass is
// red to yellow, mids are green to cyan and highs are blue to violet up to the
// Nyquist frequency.
func DefaultBands(sampleRate int) []Band {
	nyquist := float64(sampleRate) / 2
	return []Band{
		{Low: 0, High: 250, From: led.RGB(255, 0, 0), To: led.RGB(255, 255, 0)},
		{Low: 250, High: 2000, From: led.RGB(0, 255, 0), To: led.RGB(0, 255, 255)},
		{Low: 2000, High: nyquist, From: led.RGB(0, 0, 255), To: led.RGB(139, 0, 255)},
	}
}

// ValidateBands checks that bands are non-empty, each has Low < High and
// they are sorted without overlap.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("no frequency bands")
	}
	for i, b := range bands {
		if b.Low < 0 || b.High <= b.Low {
			return fmt.Errorf("band %d: invalid range %v-%v Hz", i, b.Low, b.High)
		}
		if i > 0 && b.Low < bands[i-1].High {
			return fmt.Errorf("band %d overlaps band %d", i, i-1)
		}
	}
	return nil
}

// DominantTracker finds the loudest bin of a spectrum and maps its frequency
// to a color.
type DominantTracker struct {
	sampleRate int
	bands      []Band
}

// NewDominantTracker creates a tracker. If bands is empty DefaultBands is
// used.
func NewDominantTracker(sampleRate int, bands []Band) (*DominantTracker, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(bands) == 0 {
		bands = DefaultBands(sampleRate)
	}
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}
	return &DominantTracker{
		sampleRate: sampleRate,
		bands:      bands,
	}, nil
}

// Frequency returns the approximate frequency in Hz of the loudest of bins,
// which spans 0 to the Nyquist frequency. It returns 0 for an empty slice.
func (d *DominantTracker) Frequency(bins []float64) float64 {
	if len(bins) == 0 {
		return 0
	}

	var argmax int
	for i, v := range bins {
		if v > bins[argmax] {
			argmax = i
		}
	}

	return float64(argmax) * float64(d.sampleRate) / 2 / float64(len(bins))
}

// Color maps freq to a color. Frequencies below the first band take its
// starting color and frequencies above the last band take its ending color.
func (d *DominantTracker) Color(freq float64) led.Color {
	first := d.bands[0]
	if freq <= first.Low {
		return first.From
	}

	for i, b := range d.bands {
		if freq < b.High {
			if freq < b.Low {
				// In a gap between bands: snap to the end of the previous one.
				return d.bands[i-1].To
			}
			return led.Blend(b.From, b.To, (freq-b.Low)/(b.High-b.Low))
		}
	}

	return d.bands[len(d.bands)-1].To
}

// Observe returns the dominant frequency of bins and its color.
func (d *DominantTracker) Observe(bins []float64) (float64, led.Color) {
	freq := d.Frequency(bins)
	return freq, d.Color(freq)
}
