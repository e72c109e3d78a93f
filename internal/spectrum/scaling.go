package spectrum

import (
	"fmt"
	"math"
	"strings"
)

// Scaling decides which spectrum entry feeds each output bin.
type Scaling string

const (
	// Linear maps bin i to spectrum entry i. Bins past the end of the
	// spectrum stay at zero.
	Linear Scaling = "linear"
	// Logarithmic spreads the bins over the spectrum on a log10 scale.
	Logarithmic Scaling = "logarithmic"
	// Exponential spreads the bins geometrically from 1 to the spectrum
	// length, dropping duplicate entries.
	Exponential Scaling = "exponential"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scaling) UnmarshalText(text []byte) error {
	v := Scaling(strings.ToLower(string(text)))
	if err := v.Validate(); err != nil {
		return err
	}
	*s = v
	return nil
}

// Validate returns an error if s is not a known scaling.
func (s Scaling) Validate() error {
	switch s {
	case Linear, Logarithmic, Exponential:
		return nil
	default:
		return fmt.Errorf("unknown scaling %q", string(s))
	}
}

// Indices returns, for each of n bins, the index of the spectrum entry it
// reads from a spectrum of length size. An index of -1 means the bin is
// always zero.
func (s Scaling) Indices(n, size int) []int {
	if n < 1 || size < 1 {
		return nil
	}

	indices := make([]int, n)

	switch s {
	case Linear:
		for i := range indices {
			indices[i] = -1
			if i < size {
				indices[i] = i
			}
		}

	case Logarithmic:
		if n == 1 {
			return indices
		}
		exp := math.Log10(float64(size))
		for i := range indices {
			v := math.Pow(10, float64(i)/float64(n-1)*exp)
			indices[i] = clipIndex(int(math.Floor(v)), size)
		}

	case Exponential:
		indices = indices[:0]
		for i := 0; i < n; i++ {
			v := 1.0
			if n > 1 {
				v = math.Pow(float64(size), float64(i)/float64(n-1))
			}
			ix := clipIndex(int(math.Round(v)), size)
			if len(indices) > 0 && indices[len(indices)-1] == ix {
				continue
			}
			indices = append(indices, ix)
		}
		for last := indices[len(indices)-1]; len(indices) < n; {
			indices = append(indices, last)
		}

	default:
		panic(fmt.Sprintf("spectrum: unknown scaling %q", string(s)))
	}

	return indices
}

func clipIndex(i, size int) int {
	return max(0, min(i, size-1))
}

// Remap fills dst from spectrum using the given indices.
func Remap(dst, spectrum []float64, indices []int) {
	for i, ix := range indices {
		if ix < 0 {
			dst[i] = 0
			continue
		}
		dst[i] = spectrum[ix]
	}
}
