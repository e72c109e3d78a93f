package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavDecoder struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *goaudio.IntBuffer
	bitDepth int
	channels int
}

func openWAV(path string) (decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, errors.New("invalid WAV file")
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		f.Close()
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}

	return &wavDecoder{
		file: f,
		dec:  dec,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: channels,
				SampleRate:  int(dec.SampleRate),
			},
		},
		bitDepth: int(dec.BitDepth),
		channels: channels,
	}, nil
}

func (d *wavDecoder) readMono(dst []int16) (int, error) {
	want := len(dst) * d.channels
	if cap(d.buf.Data) < want {
		d.buf.Data = make([]int, want)
	}
	d.buf.Data = d.buf.Data[:want]

	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	frames := n / d.channels
	if frames == 0 {
		return 0, io.EOF
	}

	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < d.channels; ch++ {
			v := d.buf.Data[i*d.channels+ch]
			// 8-bit WAV samples are unsigned.
			if d.bitDepth == 8 {
				v -= 128
			}
			sum += v
		}
		dst[i] = to16(sum/d.channels, d.bitDepth)
	}

	return frames, nil
}

func (d *wavDecoder) sampleRate() int { return int(d.dec.SampleRate) }

func (d *wavDecoder) close() error { return d.file.Close() }
