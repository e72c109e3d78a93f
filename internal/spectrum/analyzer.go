// Package spectrum turns blocks of audio samples into normalized per-bin
// levels. Every block goes through an optional taper, a real FFT, magnitude,
// remapping to the requested number of bins and normalization against the
// loudest peak of the last few blocks.
package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/noriah/catnip/fft"
)

const (
	// DefaultWindow is the number of blocks whose peaks are remembered for
	// normalization.
	DefaultWindow = 30
	// DefaultScaling is the scaling used when none is configured.
	DefaultScaling = Logarithmic
)

// Config configures an Analyzer.
type Config struct {
	// BlockSize is the number of samples per block. It must be even.
	BlockSize int
	// Bins is the number of output bins, usually the number of LEDs.
	Bins int
	// Scaling maps spectrum entries to bins.
	Scaling Scaling
	// Window is the number of past peaks used for normalization.
	Window int
	// Taper is applied before the FFT.
	Taper Taper
}

// Frame is the analysis of one block. Its slices are owned by the Analyzer
// and are overwritten by the next Process call.
type Frame struct {
	// Spectrum is the magnitude of every FFT coefficient, BlockSize/2+1
	// entries long.
	Spectrum []float64
	// Bins is the spectrum remapped to the configured number of bins.
	Bins []float64
	// Levels is Bins normalized to [0, 255].
	Levels []uint8
	// Peak is the largest value in Bins.
	Peak float64
	// Volume is Peak normalized to [0, 1] the same way Levels are.
	Volume float64
}

// Analyzer computes Frames. It is not safe for concurrent use.
type Analyzer struct {
	cfg     Config
	in      []float64
	out     []complex128
	plan    *fft.Plan
	indices []int
	peaks   *WindowedMax
	frame   Frame
}

// NewAnalyzer creates an analyzer. Zero Scaling and Window fields use their
// defaults.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.Scaling == "" {
		cfg.Scaling = DefaultScaling
	}
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}

	if cfg.BlockSize < 2 || cfg.BlockSize%2 != 0 {
		return nil, fmt.Errorf("block size %d must be a positive even number", cfg.BlockSize)
	}
	if cfg.Bins < 1 {
		return nil, fmt.Errorf("invalid number of bins %d", cfg.Bins)
	}
	if cfg.Window < 1 {
		return nil, fmt.Errorf("invalid window %d", cfg.Window)
	}
	if err := cfg.Scaling.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Taper.Validate(); err != nil {
		return nil, err
	}

	size := cfg.BlockSize/2 + 1

	a := &Analyzer{
		cfg:     cfg,
		in:      make([]float64, cfg.BlockSize),
		out:     make([]complex128, size),
		indices: cfg.Scaling.Indices(cfg.Bins, size),
		peaks:   NewWindowedMax(cfg.Window),
		frame: Frame{
			Spectrum: make([]float64, size),
			Bins:     make([]float64, cfg.Bins),
			Levels:   make([]uint8, cfg.Bins),
		},
	}

	fft.InitPlan(&a.plan, a.in, a.out)

	return a, nil
}

// Config returns the configuration with defaults applied.
func (a *Analyzer) Config() Config { return a.cfg }

// Process analyzes one block. Blocks shorter than BlockSize are padded with
// silence and longer ones are truncated.
func (a *Analyzer) Process(block []int16) Frame {
	n := copy16(a.in, block)
	clear(a.in[n:])

	a.cfg.Taper.Apply(a.in)
	a.plan.Execute()

	for i, c := range a.out {
		a.frame.Spectrum[i] = cmplx.Abs(c)
	}

	Remap(a.frame.Bins, a.frame.Spectrum, a.indices)

	var peak float64
	for _, v := range a.frame.Bins {
		peak = max(peak, v)
	}
	a.peaks.Push(peak)

	denom := max(a.peaks.Max(), 1)
	for i, v := range a.frame.Bins {
		a.frame.Levels[i] = uint8(math.Min(v/denom*255, 255))
	}

	a.frame.Peak = peak
	a.frame.Volume = math.Min(peak/denom, 1)

	return a.frame
}

// Reset forgets past peaks.
func (a *Analyzer) Reset() { a.peaks.Reset() }

func copy16(dst []float64, src []int16) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = float64(src[i])
	}
	return n
}
