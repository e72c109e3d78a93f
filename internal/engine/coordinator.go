package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"libdb.so/stripglow/internal/strip"
)

// RunHandle is one submitted run.
type RunHandle struct {
	id      uuid.UUID
	name    string
	started time.Time
	tok     *Token
	done    chan struct{}
	err     error
}

func newRunHandle(name string) *RunHandle {
	return &RunHandle{
		id:      uuid.New(),
		name:    name,
		started: time.Now(),
		tok:     NewToken(),
		done:    make(chan struct{}),
	}
}

// ID returns the unique ID of the run.
func (h *RunHandle) ID() uuid.UUID { return h.id }

// Name returns the name the run was submitted with.
func (h *RunHandle) Name() string { return h.name }

// Started returns the time the run was submitted.
func (h *RunHandle) Started() time.Time { return h.started }

// Cancel asks the run to stop. It does not wait.
func (h *RunHandle) Cancel() { h.tok.Cancel() }

// Done returns a channel that is closed once the run has completed: the strip
// is dark and the effect has been closed.
func (h *RunHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run has completed and returns its error.
func (h *RunHandle) Wait() error {
	<-h.done
	return h.err
}

// Err returns the run's error, or nil if the run has not completed yet.
func (h *RunHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

type job struct {
	handle  *RunHandle
	factory Factory
	period  time.Duration
}

// Coordinator serializes runs on a single strip. Submitting a run cancels and
// waits for the current one before the new one is started, so two effects
// never draw at the same time and the strip goes dark between them.
type Coordinator struct {
	sink   strip.Sink
	logger *slog.Logger

	jobs       chan job
	workerDone chan struct{}

	mu      sync.Mutex
	current *RunHandle
	closed  bool
}

// NewCoordinator creates a coordinator for sink and starts its worker.
func NewCoordinator(sink strip.Sink, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		sink:       sink,
		logger:     logger,
		jobs:       make(chan job),
		workerDone: make(chan struct{}),
	}
	go c.worker()
	return c
}

// Submit stops the current run, if any, and starts a new one. The factory is
// called on the worker once the previous run has completed.
func (c *Coordinator) Submit(name string, period time.Duration, factory Factory) (*RunHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	c.stop()

	h := newRunHandle(name)
	c.jobs <- job{
		handle:  h,
		factory: factory,
		period:  period,
	}
	c.current = h

	return h, nil
}

// Current returns the handle of the latest run, or nil if there is none or it
// has been stopped. The run may have already completed on its own.
func (c *Coordinator) Current() *RunHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Stop cancels the current run and waits for it to complete.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop()
}

// Close stops the current run and the worker. Submit returns ErrClosed
// afterwards.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.stop()
	c.closed = true
	close(c.jobs)
	<-c.workerDone

	return nil
}

func (c *Coordinator) stop() {
	if c.current == nil {
		return
	}

	c.current.Cancel()
	<-c.current.done
	c.current = nil
}

func (c *Coordinator) worker() {
	defer close(c.workerDone)

	for j := range c.jobs {
		c.execute(j)
	}
}

func (c *Coordinator) execute(j job) {
	h := j.handle
	logger := c.logger.With(
		"effect", h.name,
		"run", h.id)

	defer close(h.done)
	defer func() {
		if v := recover(); v != nil {
			logger.Error("run panicked", "panic", v)
			h.err = fmt.Errorf("%w: panic: %v", ErrEffectUpdate, v)
		}
	}()

	if h.tok.Cancelled() {
		logger.Debug("run cancelled before it started")
		return
	}

	effect, err := j.factory()
	if err != nil {
		logger.Warn(
			"failed to create effect",
			"error", err)
		h.err = fmt.Errorf("failed to create effect %q: %w", h.name, err)
		return
	}

	if closer, ok := effect.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn(
					"failed to close effect",
					"error", err)
			}
		}()
	}

	logger.Debug("run started", "period", j.period)

	h.err = Run(h.tok, c.sink, effect, j.period, logger)
	if h.err != nil {
		logger.Warn(
			"run failed",
			"error", h.err)
	} else {
		logger.Debug("run stopped", "duration", time.Since(h.started))
	}
}
