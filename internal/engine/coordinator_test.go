package engine

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/strip"
)

// frameLog records the first pixel of every flushed frame.
type frameLog struct {
	mu     sync.Mutex
	frames []led.Color
}

func (l *frameLog) record(frame led.LEDs) {
	l.mu.Lock()
	l.frames = append(l.frames, frame[0])
	l.mu.Unlock()
}

func (l *frameLog) snapshot() []led.Color {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]led.Color(nil), l.frames...)
}

// solid returns a factory for an effect that fills the strip with c and
// signals started after its first frame.
func solid(c led.Color, started chan<- struct{}) Factory {
	return func() (Effect, error) {
		var once sync.Once
		return EffectFunc(func(s strip.Sink) error {
			strip.Fill(s, c)
			once.Do(func() { close(started) })
			return nil
		}), nil
	}
}

func newTestCoordinator(t *testing.T, onFlush func(led.LEDs)) *Coordinator {
	t.Helper()
	c := NewCoordinator(strip.NewMemory(4, onFlush), slog.Default())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCoordinatorSingleFlight(t *testing.T) {
	red := led.RGB(255, 0, 0)
	green := led.RGB(0, 255, 0)

	var log frameLog
	c := newTestCoordinator(t, log.record)

	startedA := make(chan struct{})
	a, err := c.Submit("red", time.Millisecond, solid(red, startedA))
	if err != nil {
		t.Fatal(err)
	}
	<-startedA

	var aDoneAtFactory bool
	startedB := make(chan struct{})
	b, err := c.Submit("green", time.Millisecond, func() (Effect, error) {
		select {
		case <-a.Done():
			aDoneAtFactory = true
		default:
		}
		return solid(green, startedB)()
	})
	if err != nil {
		t.Fatal(err)
	}
	<-startedB

	c.Stop()

	if err := a.Wait(); err != nil {
		t.Error("run A failed:", err)
	}
	if err := b.Wait(); err != nil {
		t.Error("run B failed:", err)
	}
	if !aDoneAtFactory {
		t.Error("factory B ran before run A completed")
	}

	frames := log.snapshot()

	lastRed, firstGreen := -1, -1
	for i, px := range frames {
		switch px {
		case red:
			lastRed = i
		case green:
			if firstGreen == -1 {
				firstGreen = i
			}
		}
	}

	if lastRed == -1 || firstGreen == -1 {
		t.Fatalf("missing frames from one of the runs: %v", frames)
	}
	if lastRed > firstGreen {
		t.Fatalf("red frame %d after green frame %d", lastRed, firstGreen)
	}

	var dark bool
	for _, px := range frames[lastRed+1 : firstGreen] {
		if px.IsBlack() {
			dark = true
		}
	}
	if !dark {
		t.Error("no blackout between runs")
	}

	if last := frames[len(frames)-1]; !last.IsBlack() {
		t.Errorf("final frame is %v, want black", last)
	}
}

type closingEffect struct {
	closed bool
}

func (e *closingEffect) Update(s strip.Sink) error { return nil }

func (e *closingEffect) Close() error {
	e.closed = true
	return nil
}

func TestCoordinatorClosesEffect(t *testing.T) {
	c := newTestCoordinator(t, nil)

	effect := &closingEffect{}
	h, err := c.Submit("closer", time.Millisecond, func() (Effect, error) {
		return effect, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	h.Cancel()
	if err := h.Wait(); err != nil {
		t.Fatal(err)
	}

	if !effect.closed {
		t.Error("effect was not closed before the run completed")
	}
}

func TestCoordinatorFactoryError(t *testing.T) {
	c := newTestCoordinator(t, nil)

	cause := errors.New("no such device")
	h, err := c.Submit("broken", time.Millisecond, func() (Effect, error) {
		return nil, cause
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Wait(); !errors.Is(err, cause) {
		t.Fatalf("run error = %v, want %v", err, cause)
	}
}

func TestCoordinatorRunError(t *testing.T) {
	c := newTestCoordinator(t, nil)

	h, err := c.Submit("panics", time.Millisecond, func() (Effect, error) {
		return EffectFunc(func(strip.Sink) error { panic("nope") }), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Wait(); !errors.Is(err, ErrEffectUpdate) {
		t.Fatalf("run error = %v, want ErrEffectUpdate", err)
	}

	// The coordinator keeps working after a failed run.
	started := make(chan struct{})
	if _, err := c.Submit("ok", time.Millisecond, solid(led.RGB(1, 1, 1), started)); err != nil {
		t.Fatal(err)
	}
	<-started
}

func TestCoordinatorClose(t *testing.T) {
	c := NewCoordinator(strip.NewMemory(2, nil), slog.Default())

	started := make(chan struct{})
	h, err := c.Submit("run", time.Millisecond, solid(led.RGB(3, 3, 3), started))
	if err != nil {
		t.Fatal(err)
	}
	<-started

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-h.Done():
	default:
		t.Fatal("Close returned before the active run completed")
	}

	if _, err := c.Submit("late", time.Millisecond, solid(led.Black, make(chan struct{}))); !errors.Is(err, ErrClosed) {
		t.Fatalf("submit after close = %v, want ErrClosed", err)
	}

	if err := c.Close(); err != nil {
		t.Error("second close failed:", err)
	}
}

func TestRunHandleIDsAreUnique(t *testing.T) {
	c := newTestCoordinator(t, nil)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		h, err := c.Submit("noop", time.Millisecond, func() (Effect, error) {
			return EffectFunc(func(strip.Sink) error { return ErrFinished }), nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := h.Wait(); err != nil {
			t.Fatal(err)
		}
		if seen[h.ID().String()] {
			t.Fatalf("duplicate run ID %s", h.ID())
		}
		seen[h.ID().String()] = true
	}
}
