// Package audio provides blocks of mono 16-bit samples from a microphone, an
// audio file or a synthetic tone.
package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Block is one block of mono samples. A block returned by a Source is only
// valid until the next ReadBlock call.
type Block []int16

// Source produces fixed-size blocks of audio.
type Source interface {
	// ReadBlock blocks until the next block is available. It returns
	// ErrOverflow if samples were lost, an error matching ErrDevice if the
	// device failed, and io.EOF at the end of a non-looping file.
	ReadBlock() (Block, error)
	// BlockSize returns the number of samples in every block.
	BlockSize() int
	// SampleRate returns the sample rate in Hz.
	SampleRate() int
	// Close releases the source. It is safe to call more than once.
	Close() error
}

const (
	// DefaultDevice selects the system's default input device.
	DefaultDevice = -1
	// DefaultSampleRate is the sample rate used when none is configured.
	DefaultSampleRate = 44100
	// DefaultBlockSize is the block size used when none is configured.
	DefaultBlockSize = 1024
	// DefaultReadTimeout bounds a single microphone read.
	DefaultReadTimeout = 500 * time.Millisecond
)

// Config selects and configures an audio source.
type Config struct {
	// Device is the PortAudio input device index, or DefaultDevice.
	Device int
	// File, if set, reads audio from a .wav, .mp3 or .flac file instead of
	// the microphone.
	File string
	// Loop restarts the file once it ends.
	Loop bool
	// SampleRate is the capture sample rate. Files use their own rate.
	SampleRate int
	// BlockSize is the number of samples per block.
	BlockSize int
	// ReadTimeout bounds a single microphone read.
	ReadTimeout time.Duration
	// LowLatency asks the device for its low input latency.
	LowLatency bool
}

// WithDefaults returns c with zero fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Validate checks c after defaults are applied.
func (c Config) Validate() error {
	if c.Device < DefaultDevice {
		return fmt.Errorf("invalid device %d", c.Device)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.BlockSize <= 0 || c.BlockSize%2 != 0 {
		return fmt.Errorf("block size %d must be a positive even number", c.BlockSize)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout %v", c.ReadTimeout)
	}
	if c.File != "" {
		if _, ok := fileOpeners[strings.ToLower(filepath.Ext(c.File))]; !ok {
			return fmt.Errorf("unsupported audio file %q", c.File)
		}
	}
	return nil
}

var (
	// ErrOverflow is returned when the input overflowed and samples were
	// lost. The caller should skip the frame and read again.
	ErrOverflow = errors.New("audio input overflowed")
	// ErrDevice is matched by every *DeviceError.
	ErrDevice = errors.New("audio device error")
	// ErrReadTimeout is wrapped by the DeviceError returned when a read takes
	// longer than the configured timeout.
	ErrReadTimeout = errors.New("audio read timed out")
)

// DeviceError is an unrecoverable failure of the audio device.
type DeviceError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *DeviceError) Unwrap() error { return e.Err }

// Is makes every DeviceError match ErrDevice.
func (e *DeviceError) Is(target error) bool { return target == ErrDevice }

// Open opens the source described by cfg: the file if cfg.File is set, the
// microphone otherwise.
func Open(cfg Config) (Source, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.File != "" {
		return OpenFile(cfg.File, cfg.BlockSize, cfg.Loop)
	}

	return OpenMicrophone(cfg)
}
