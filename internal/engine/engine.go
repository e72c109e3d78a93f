// Package engine runs effects against a strip. Run is the frame loop; the
// Coordinator makes sure at most one run owns the strip at any time.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"libdb.so/stripglow/internal/strip"
)

var (
	// ErrFinished is returned by an effect's Update when the effect has
	// naturally completed, such as when its audio file has ended. The run
	// then ends without an error.
	ErrFinished = errors.New("effect finished")
	// ErrEffectUpdate wraps errors returned or panics raised by an effect's
	// Update.
	ErrEffectUpdate = errors.New("effect update failed")
	// ErrClosed is returned when submitting to a closed Coordinator.
	ErrClosed = errors.New("coordinator closed")
)

// Effect computes frames. Update is called once per frame and draws the next
// frame into the sink without flushing it. An effect that also implements
// io.Closer is closed once its run has ended and the strip is dark.
type Effect interface {
	Update(s strip.Sink) error
}

// EffectFunc is a function that implements Effect.
type EffectFunc func(s strip.Sink) error

// Update implements Effect.
func (f EffectFunc) Update(s strip.Sink) error { return f(s) }

// Factory builds the effect for one run. It is called on the run's goroutine
// after the previous run has fully stopped.
type Factory func() (Effect, error)

// Run drives effect at one frame per period until tok is cancelled, the
// effect finishes or fails, or the sink fails to flush. Frames that take
// longer than period are followed immediately by the next one; lost time is
// not caught up.
//
// The strip is always blacked out before Run returns. Run returns nil when
// cancelled or when the effect returned ErrFinished.
func Run(tok *Token, sink strip.Sink, effect Effect, period time.Duration, logger *slog.Logger) (err error) {
	defer func() {
		if berr := strip.Blackout(sink); berr != nil {
			logger.Warn(
				"failed to black out strip",
				"error", berr)
			if err == nil {
				err = fmt.Errorf("failed to black out strip: %w", berr)
			}
		}
	}()

	timer := time.NewTimer(period)
	timer.Stop()
	defer timer.Stop()

	var frame int
	for !tok.Cancelled() {
		start := time.Now()

		if err := update(effect, sink, logger); err != nil {
			if errors.Is(err, ErrFinished) {
				logger.Debug("effect finished", "frames", frame)
				return nil
			}
			return err
		}

		if err := sink.Flush(); err != nil {
			return fmt.Errorf("failed to flush frame %d: %w", frame, err)
		}
		frame++

		if wait := period - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-tok.Done():
				return nil
			}
		}
	}

	return nil
}

func update(effect Effect, sink strip.Sink, logger *slog.Logger) (err error) {
	defer func() {
		if v := recover(); v != nil {
			logger.Error(
				"effect panicked",
				"panic", v,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%w: panic: %v", ErrEffectUpdate, v)
		}
	}()

	if err := effect.Update(sink); err != nil {
		if errors.Is(err, ErrFinished) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrEffectUpdate, err)
	}

	return nil
}
