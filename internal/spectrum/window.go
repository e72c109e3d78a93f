package spectrum

import "gonum.org/v1/gonum/floats"

// WindowedMax keeps the last Cap() values pushed into it and reports their
// maximum and mean.
type WindowedMax struct {
	values []float64
	next   int
}

// NewWindowedMax creates a window holding up to capacity values. A capacity
// below 1 is treated as 1.
func NewWindowedMax(capacity int) *WindowedMax {
	return &WindowedMax{
		values: make([]float64, 0, max(capacity, 1)),
	}
}

// Push adds v, evicting the oldest value once the window is full.
func (w *WindowedMax) Push(v float64) {
	if len(w.values) < cap(w.values) {
		w.values = append(w.values, v)
		return
	}
	w.values[w.next] = v
	w.next = (w.next + 1) % len(w.values)
}

// Len returns the number of values in the window.
func (w *WindowedMax) Len() int { return len(w.values) }

// Cap returns the window capacity.
func (w *WindowedMax) Cap() int { return cap(w.values) }

// Max returns the largest value in the window, or 0 if it is empty.
func (w *WindowedMax) Max() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return floats.Max(w.values)
}

// Mean returns the average of the values in the window, or 0 if it is empty.
func (w *WindowedMax) Mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return floats.Sum(w.values) / float64(len(w.values))
}

// Reset empties the window.
func (w *WindowedMax) Reset() {
	w.values = w.values[:0]
	w.next = 0
}
