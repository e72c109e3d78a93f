package spectrum

import (
	"fmt"
	"strings"

	catwindow "github.com/noriah/catnip/dsp/window"
	"gonum.org/v1/gonum/dsp/window"
)

// Taper is the window function applied to a block before the FFT.
type Taper string

const (
	// TaperNone leaves the block as is.
	TaperNone Taper = "none"
	// TaperHann applies a Hann window.
	TaperHann Taper = "hann"
	// TaperLanczos applies a Lanczos (sinc) window.
	TaperLanczos Taper = "lanczos"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Taper) UnmarshalText(text []byte) error {
	v := Taper(strings.ToLower(string(text)))
	if err := v.Validate(); err != nil {
		return err
	}
	*t = v
	return nil
}

// Validate returns an error if t is not a known taper. The empty taper is
// the same as TaperNone.
func (t Taper) Validate() error {
	switch t {
	case "", TaperNone, TaperHann, TaperLanczos:
		return nil
	default:
		return fmt.Errorf("unknown taper %q", string(t))
	}
}

// Apply tapers buf in place.
func (t Taper) Apply(buf []float64) {
	switch t {
	case TaperHann:
		window.Hann(buf)
	case TaperLanczos:
		catwindow.Lanczos(buf)
	}
}
