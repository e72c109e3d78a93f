// Package strip defines the pixel sink the engine and effects draw into, plus
// the concrete sinks: an in-memory strip, an observing wrapper and a serial
// strip driven through the ledserial protocol.
package strip

import "libdb.so/stripglow/internal/led"

// Sink is an addressable strip of pixels. Set and Get only touch the
// in-memory frame; Flush pushes the whole frame to the hardware.
//
// Indices outside [0, Len()) are a contract violation. Callers must clamp.
type Sink interface {
	// Len returns the number of pixels.
	Len() int
	// Set sets pixel i.
	Set(i int, c led.Color)
	// Get returns pixel i as last set, without any brightness applied.
	Get(i int) led.Color
	// Flush pushes the current frame to the strip.
	Flush() error
}

// Dimmer is implemented by sinks that apply a global brightness when the frame
// is flushed.
type Dimmer interface {
	// Brightness returns the current global brightness.
	Brightness() uint8
	// SetBrightness sets the global brightness used by the next flush.
	SetBrightness(uint8)
}

// Fill sets every pixel of s to c. It does not flush.
func Fill(s Sink, c led.Color) {
	for i, n := 0, s.Len(); i < n; i++ {
		s.Set(i, c)
	}
}

// Clear sets every pixel of s to black. It does not flush.
func Clear(s Sink) {
	Fill(s, led.Black)
}

// Blackout turns every pixel off and flushes the frame.
func Blackout(s Sink) error {
	Clear(s)
	return s.Flush()
}

// SetClamped sets pixel i if it is inside the strip and ignores it otherwise.
func SetClamped(s Sink, i int, c led.Color) {
	if i >= 0 && i < s.Len() {
		s.Set(i, c)
	}
}

// Snapshot copies the current frame of s.
func Snapshot(s Sink) led.LEDs {
	frame := led.NewLEDs(s.Len())
	for i := range frame {
		frame[i] = s.Get(i)
	}
	return frame
}
