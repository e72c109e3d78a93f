package ledvis

import (
	"errors"
	"io"
	"log/slog"

	"libdb.so/stripglow/internal/audio"
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/spectrum"
)

// visualizer is the part shared by every audio effect: the run's audio
// source and the analyzer fed from it.
type visualizer struct {
	src      audio.Source
	analyzer *spectrum.Analyzer
	logger   *slog.Logger
}

func openVisualizer(cfg Config, bins int, open opener, logger *slog.Logger) (*visualizer, error) {
	src, err := open(cfg.Audio)
	if err != nil {
		return nil, err
	}

	analyzer, err := spectrum.NewAnalyzer(spectrum.Config{
		BlockSize: src.BlockSize(),
		Bins:      bins,
		Scaling:   cfg.Scaling,
		Window:    cfg.Window,
		Taper:     cfg.Taper,
	})
	if err != nil {
		src.Close()
		return nil, err
	}

	return &visualizer{
		src:      src,
		analyzer: analyzer,
		logger:   logger,
	}, nil
}

// next reads and analyzes one block. It returns false without an error if the
// frame should be skipped, and engine.ErrFinished once a file source ends.
func (v *visualizer) next() (spectrum.Frame, bool, error) {
	block, err := v.src.ReadBlock()
	switch {
	case err == nil:
		return v.analyzer.Process(block), true, nil
	case errors.Is(err, audio.ErrOverflow):
		v.logger.Debug("audio input overflowed, skipping frame")
		return spectrum.Frame{}, false, nil
	case errors.Is(err, io.EOF):
		return spectrum.Frame{}, false, engine.ErrFinished
	default:
		return spectrum.Frame{}, false, err
	}
}

func (v *visualizer) sampleRate() int { return v.src.SampleRate() }

// Close closes the audio source.
func (v *visualizer) Close() error {
	return v.src.Close()
}
