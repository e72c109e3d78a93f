// Package features extracts control signals from analyzed audio: beats, the
// dominant frequency and an accumulator of ripples travelling along the strip.
package features

import (
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/spectrum"
)

const (
	// DefaultBeatWindow is about one second of 1024 sample blocks at 44.1 kHz.
	DefaultBeatWindow = 43
	// DefaultBeatThreshold is how much louder than average a peak must be to
	// count as a beat.
	DefaultBeatThreshold = 1.3
)

// DefaultPalette is the palette a BeatDetector cycles through.
var DefaultPalette = []led.Color{
	led.RGB(255, 0, 0),
	led.RGB(255, 127, 0),
	led.RGB(255, 255, 0),
	led.RGB(0, 255, 0),
	led.RGB(0, 0, 255),
	led.RGB(139, 0, 255),
}

// BeatConfig configures a BeatDetector. Zero fields use the defaults.
type BeatConfig struct {
	Window    int
	Threshold float64
	Palette   []led.Color
}

// BeatDetector fires on peaks that are much louder than the recent average.
// After firing it stays latched, ignoring further loud peaks, until a peak
// falls below the average again.
type BeatDetector struct {
	peaks     *spectrum.WindowedMax
	threshold float64
	palette   []led.Color
	index     int
	latched   bool
}

// NewBeatDetector creates a beat detector.
func NewBeatDetector(cfg BeatConfig) *BeatDetector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultBeatWindow
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultBeatThreshold
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}

	return &BeatDetector{
		peaks:     spectrum.NewWindowedMax(cfg.Window),
		threshold: cfg.Threshold,
		palette:   cfg.Palette,
	}
}

// Observe feeds the peak of one block and reports whether it is a beat. The
// peak is compared against the average of the peaks before it.
func (d *BeatDetector) Observe(peak float64) bool {
	var beat bool

	if d.peaks.Len() > 0 {
		avg := d.peaks.Mean()

		if !d.latched && peak > d.threshold*avg {
			beat = true
			d.latched = true
			d.index = (d.index + 1) % len(d.palette)
		}

		if peak < avg {
			d.latched = false
		}
	}

	d.peaks.Push(peak)
	return beat
}

// Color returns the palette color selected by the last beat.
func (d *BeatDetector) Color() led.Color {
	return d.palette[d.index]
}

// Latched reports whether the detector is waiting for the level to drop.
func (d *BeatDetector) Latched() bool {
	return d.latched
}
