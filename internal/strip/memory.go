package strip

import (
	"sync"
	"sync/atomic"

	"libdb.so/stripglow/internal/led"
)

// Memory is a sink that keeps its frame in memory. Flushing hands a copy of
// the frame, with brightness applied, to the OnFlush callback if any. It is
// used when no hardware is attached and in tests.
type Memory struct {
	mu         sync.Mutex
	leds       led.LEDs
	brightness atomic.Uint32
	flushes    atomic.Int64

	onFlush func(led.LEDs)
}

var (
	_ Sink   = (*Memory)(nil)
	_ Dimmer = (*Memory)(nil)
)

// NewMemory creates a new in-memory strip of n pixels. onFlush may be nil.
func NewMemory(n int, onFlush func(frame led.LEDs)) *Memory {
	m := &Memory{
		leds:    led.NewLEDs(n),
		onFlush: onFlush,
	}
	m.brightness.Store(0xFF)
	return m
}

// Len implements Sink.
func (m *Memory) Len() int { return len(m.leds) }

// Set implements Sink.
func (m *Memory) Set(i int, c led.Color) {
	m.mu.Lock()
	m.leds[i] = c
	m.mu.Unlock()
}

// Get implements Sink.
func (m *Memory) Get(i int) led.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leds[i]
}

// Flush implements Sink.
func (m *Memory) Flush() error {
	m.flushes.Add(1)
	if m.onFlush == nil {
		return nil
	}

	brightness := int(m.Brightness())

	m.mu.Lock()
	frame := make(led.LEDs, len(m.leds))
	for i, c := range m.leds {
		frame[i] = led.Scale(c, brightness)
	}
	m.mu.Unlock()

	m.onFlush(frame)
	return nil
}

// Flushes returns the number of times Flush was called.
func (m *Memory) Flushes() int64 { return m.flushes.Load() }

// Brightness implements Dimmer.
func (m *Memory) Brightness() uint8 { return uint8(m.brightness.Load()) }

// SetBrightness implements Dimmer.
func (m *Memory) SetBrightness(b uint8) { m.brightness.Store(uint32(b)) }
