package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// decoder reads mono 16-bit samples from an audio file.
type decoder interface {
	// readMono fills dst and returns the number of samples written. It
	// returns io.EOF only when no samples were written.
	readMono(dst []int16) (int, error)
	sampleRate() int
	close() error
}

var fileOpeners = map[string]func(path string) (decoder, error){
	".wav":  openWAV,
	".mp3":  openMP3,
	".flac": openFLAC,
}

// File is a Source reading an audio file one block at a time. Multi-channel
// files are downmixed to mono and samples are converted to 16 bits.
type File struct {
	path string
	open func(string) (decoder, error)
	dec  decoder
	loop bool
	rate int
	buf  Block
	done bool

	closeOnce sync.Once
	closeErr  error
}

var _ Source = (*File)(nil)

// OpenFile opens a .wav, .mp3 or .flac file. If loop is true the file starts
// over when it ends; otherwise ReadBlock returns io.EOF after the last block.
// The last block is padded with silence.
func OpenFile(path string, blockSize int, loop bool) (*File, error) {
	open, ok := fileOpeners[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported audio file %q", path)
	}

	dec, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	return &File{
		path: path,
		open: open,
		dec:  dec,
		loop: loop,
		rate: dec.sampleRate(),
		buf:  make(Block, blockSize),
	}, nil
}

// ReadBlock implements Source.
func (f *File) ReadBlock() (Block, error) {
	if f.done {
		return nil, io.EOF
	}

	var n int
	rewound := false
	for n < len(f.buf) {
		read, err := f.dec.readMono(f.buf[n:])
		n += read
		if read > 0 {
			rewound = false
		}

		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode %q: %w", f.path, err)
		}

		// An empty file ends even when looping.
		if f.loop && !rewound {
			if err := f.rewind(); err != nil {
				return nil, err
			}
			rewound = true
			continue
		}

		f.done = true
		if n == 0 {
			return nil, io.EOF
		}
		clear(f.buf[n:])
		return f.buf, nil
	}

	return f.buf, nil
}

func (f *File) rewind() error {
	if err := f.dec.close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", f.path, err)
	}

	dec, err := f.open(f.path)
	if err != nil {
		f.dec = nil
		return fmt.Errorf("failed to reopen %q: %w", f.path, err)
	}

	f.dec = dec
	return nil
}

// BlockSize implements Source.
func (f *File) BlockSize() int { return len(f.buf) }

// SampleRate implements Source.
func (f *File) SampleRate() int { return f.rate }

// Close implements Source.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		if f.dec != nil {
			f.closeErr = f.dec.close()
		}
	})
	return f.closeErr
}

// to16 converts a signed sample of the given bit depth to 16 bits.
func to16(v int, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		v >>= bitDepth - 16
	case bitDepth < 16:
		v <<= 16 - bitDepth
	}
	return int16(max(min(v, 32767), -32768))
}
