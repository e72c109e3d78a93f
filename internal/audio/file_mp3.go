package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to interleaved 16-bit little-endian stereo.
const mp3FrameSize = 4

type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	buf  []byte
}

func openMP3(path string) (decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &mp3Decoder{
		file: f,
		dec:  dec,
	}, nil
}

func (d *mp3Decoder) readMono(dst []int16) (int, error) {
	want := len(dst) * mp3FrameSize
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	d.buf = d.buf[:want]

	n, err := io.ReadFull(d.dec, d.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}

	frames := n / mp3FrameSize
	if frames == 0 {
		return 0, io.EOF
	}

	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(d.buf[i*mp3FrameSize:]))
		r := int16(binary.LittleEndian.Uint16(d.buf[i*mp3FrameSize+2:]))
		dst[i] = int16((int(l) + int(r)) / 2)
	}

	return frames, nil
}

func (d *mp3Decoder) sampleRate() int { return d.dec.SampleRate() }

func (d *mp3Decoder) close() error { return d.file.Close() }
