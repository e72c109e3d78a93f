package strip

import (
	"sync"

	"libdb.so/stripglow/internal/led"
)

// Observed wraps a sink and remembers the last frame that was successfully
// flushed. Observers are called synchronously after every flush with a copy of
// that frame; they must not block.
type Observed struct {
	Sink

	mu        sync.RWMutex
	last      led.LEDs
	observers []func(led.LEDs)
}

// Observe wraps s. The observers are called in order after every flush.
func Observe(s Sink, observers ...func(frame led.LEDs)) *Observed {
	return &Observed{
		Sink:      s,
		last:      led.NewLEDs(s.Len()),
		observers: observers,
	}
}

// Flush flushes the wrapped sink and records the frame.
func (o *Observed) Flush() error {
	if err := o.Sink.Flush(); err != nil {
		return err
	}

	frame := Snapshot(o.Sink)

	o.mu.Lock()
	o.last = frame
	o.mu.Unlock()

	for _, observer := range o.observers {
		observer(frame)
	}

	return nil
}

// Last returns the last flushed frame. The returned slice must not be
// modified.
func (o *Observed) Last() led.LEDs {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Brightness returns the wrapped sink's brightness, or full brightness if it
// is not a Dimmer.
func (o *Observed) Brightness() uint8 {
	if d, ok := o.Sink.(Dimmer); ok {
		return d.Brightness()
	}
	return 0xFF
}

// SetBrightness forwards to the wrapped sink if it is a Dimmer.
func (o *Observed) SetBrightness(b uint8) {
	if d, ok := o.Sink.(Dimmer); ok {
		d.SetBrightness(b)
	}
}
