package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// inputStream is the part of *portaudio.Stream the microphone uses.
type inputStream interface {
	Read() error
	Stop() error
	Abort() error
	Close() error
}

// errReadStuck is returned by Close when an aborted read never returned. The
// stream and its buffer are then left alone instead of being freed under the
// read.
var errReadStuck = errors.New("aborted read still in progress, stream left open")

// Microphone is a blocking PortAudio input stream.
type Microphone struct {
	stream     inputStream
	terminate  func() error
	buf        Block
	sampleRate int
	timeout    time.Duration

	closeOnce sync.Once
	closeErr  error
	aborted   bool
	// pending receives the result of a read that outlived its timeout.
	pending <-chan error
}

var _ Source = (*Microphone)(nil)

// OpenMicrophone opens and starts a mono 16-bit input stream. PortAudio is
// initialized here and terminated by Close.
func OpenMicrophone(cfg Config) (*Microphone, error) {
	cfg = cfg.WithDefaults()

	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "initialize", Err: err}
	}

	device, err := inputDevice(cfg.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, &DeviceError{Op: "open", Err: err}
	}

	latency := device.DefaultHighInputLatency
	if cfg.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	buf := make(Block, cfg.BlockSize)

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  latency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.BlockSize,
	}, []int16(buf))
	if err != nil {
		portaudio.Terminate()
		return nil, &DeviceError{Op: "open", Err: err}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, &DeviceError{Op: "start", Err: err}
	}

	return &Microphone{
		stream:     stream,
		terminate:  portaudio.Terminate,
		buf:        buf,
		sampleRate: cfg.SampleRate,
		timeout:    cfg.ReadTimeout,
	}, nil
}

// ReadBlock implements Source. A read that does not complete within the read
// timeout aborts the stream; the microphone is unusable afterwards.
func (m *Microphone) ReadBlock() (Block, error) {
	if m.aborted {
		return nil, &DeviceError{Op: "read", Err: errors.New("stream aborted")}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- m.stream.Read() }()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		switch {
		case err == nil:
			return m.buf, nil
		case errors.Is(err, portaudio.InputOverflowed):
			return nil, ErrOverflow
		default:
			return nil, &DeviceError{Op: "read", Err: err}
		}

	case <-timer.C:
		m.aborted = true
		m.stream.Abort()

		// Aborting unblocks the read; wait for it so the buffer is no
		// longer written to. Close waits again if it is still running.
		select {
		case <-errCh:
		case <-time.After(m.timeout):
			m.pending = errCh
		}

		return nil, &DeviceError{
			Op:  "read",
			Err: fmt.Errorf("%w after %v", ErrReadTimeout, m.timeout),
		}
	}
}

// BlockSize implements Source.
func (m *Microphone) BlockSize() int { return len(m.buf) }

// SampleRate implements Source.
func (m *Microphone) SampleRate() int { return m.sampleRate }

// Close stops and closes the stream and terminates PortAudio. If a read
// aborted by a timeout is still running after another timeout, the stream is
// not touched and Close returns an error.
func (m *Microphone) Close() error {
	m.closeOnce.Do(func() {
		if m.pending != nil {
			select {
			case <-m.pending:
				m.pending = nil
			case <-time.After(m.timeout):
				m.closeErr = &DeviceError{Op: "close", Err: errReadStuck}
				return
			}
		}

		if !m.aborted {
			if err := m.stream.Stop(); err != nil {
				m.closeErr = &DeviceError{Op: "stop", Err: err}
			}
		}
		if err := m.stream.Close(); err != nil && m.closeErr == nil {
			m.closeErr = &DeviceError{Op: "close", Err: err}
		}
		if err := m.terminate(); err != nil && m.closeErr == nil {
			m.closeErr = &DeviceError{Op: "terminate", Err: err}
		}
	})
	return m.closeErr
}
