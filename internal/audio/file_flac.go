package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

type flacDecoder struct {
	stream *flac.Stream
	// pending holds the downmixed samples of the last frame that did not fit
	// into the caller's buffer.
	pending []int16
}

func openFLAC(path string) (decoder, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &flacDecoder{stream: stream}, nil
}

func (d *flacDecoder) readMono(dst []int16) (int, error) {
	var n int
	for n < len(dst) {
		if len(d.pending) == 0 {
			if err := d.parseNext(); err != nil {
				if errors.Is(err, io.EOF) && n > 0 {
					return n, nil
				}
				return n, err
			}
			continue
		}

		copied := copy(dst[n:], d.pending)
		d.pending = d.pending[copied:]
		n += copied
	}

	return n, nil
}

func (d *flacDecoder) parseNext() error {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return err
	}

	if len(frame.Subframes) == 0 {
		return nil
	}

	bitDepth := int(frame.BitsPerSample)
	samples := len(frame.Subframes[0].Samples)

	d.pending = d.pending[:0]
	for i := 0; i < samples; i++ {
		var sum int64
		for _, sub := range frame.Subframes {
			sum += int64(sub.Samples[i])
		}
		d.pending = append(d.pending, to16(int(sum/int64(len(frame.Subframes))), bitDepth))
	}

	return nil
}

func (d *flacDecoder) sampleRate() int { return int(d.stream.Info.SampleRate) }

func (d *flacDecoder) close() error { return d.stream.Close() }
