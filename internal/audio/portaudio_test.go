package audio

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// blockedStream is an input stream whose reads only return once release is
// closed.
type blockedStream struct {
	release    chan struct{}
	aborted    atomic.Bool
	closed     atomic.Bool
	terminated atomic.Bool
}

func newBlockedStream() *blockedStream {
	return &blockedStream{release: make(chan struct{})}
}

func (s *blockedStream) Read() error {
	<-s.release
	return nil
}

func (s *blockedStream) Stop() error  { return nil }
func (s *blockedStream) Abort() error { s.aborted.Store(true); return nil }
func (s *blockedStream) Close() error { s.closed.Store(true); return nil }

func (s *blockedStream) microphone(timeout time.Duration) *Microphone {
	return &Microphone{
		stream:     s,
		terminate:  func() error { s.terminated.Store(true); return nil },
		buf:        make(Block, 8),
		sampleRate: DefaultSampleRate,
		timeout:    timeout,
	}
}

func TestMicrophoneReadTimeout(t *testing.T) {
	s := newBlockedStream()
	defer close(s.release)

	m := s.microphone(10 * time.Millisecond)

	_, err := m.ReadBlock()
	if !errors.Is(err, ErrReadTimeout) || !errors.Is(err, ErrDevice) {
		t.Fatalf("error = %v, want a device read timeout", err)
	}
	if !s.aborted.Load() {
		t.Error("stream was not aborted")
	}

	if _, err := m.ReadBlock(); !errors.Is(err, ErrDevice) {
		t.Errorf("read after abort = %v, want a device error", err)
	}
}

func TestMicrophoneCloseLeavesStuckStream(t *testing.T) {
	s := newBlockedStream()
	defer close(s.release)

	m := s.microphone(10 * time.Millisecond)

	if _, err := m.ReadBlock(); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("error = %v, want a read timeout", err)
	}

	if err := m.Close(); !errors.Is(err, errReadStuck) {
		t.Fatalf("close error = %v, want errReadStuck", err)
	}
	if s.closed.Load() || s.terminated.Load() {
		t.Fatal("stream was closed while a read was still running")
	}
}

func TestMicrophoneCloseWaitsForAbortedRead(t *testing.T) {
	s := newBlockedStream()
	m := s.microphone(10 * time.Millisecond)

	if _, err := m.ReadBlock(); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("error = %v, want a read timeout", err)
	}

	// The read finally returns while Close is waiting for it.
	m.timeout = time.Second
	close(s.release)

	if err := m.Close(); err != nil {
		t.Fatal("close:", err)
	}
	if !s.closed.Load() || !s.terminated.Load() {
		t.Error("stream was not released after the read returned")
	}
}
