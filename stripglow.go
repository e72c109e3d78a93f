// Package stripglow drives an LED strip with a library of effects, some of
// which react to live audio.
package stripglow

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"libdb.so/stripglow/internal/effects"
	"libdb.so/stripglow/internal/engine"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/ledvis"
	"libdb.so/stripglow/internal/menu"
	"libdb.so/stripglow/internal/preview"
	"libdb.so/stripglow/internal/strip"
)

// NewRegistry returns every effect the daemon can play: the built-in effects
// and the audio effects configured by cfg.
func NewRegistry(cfg *Config, logger *slog.Logger) *effects.Registry {
	reg := effects.Builtin()
	ledvis.Register(reg, cfg.Visualizers(), logger)
	return reg
}

// Daemon is the main stripglow daemon. It owns the strip and plays at most
// one effect on it at a time.
type Daemon struct {
	cfg      *Config
	logger   *slog.Logger
	registry *effects.Registry

	sink   *strip.Observed
	closer io.Closer
	coord  *engine.Coordinator
	hub    *preview.Hub
}

var _ menu.Player = (*Daemon)(nil)

// NewDaemon creates a new daemon and opens its strip. The serial connection,
// if any, stays open after ctx is done until Close has stopped the current
// effect and blacked the strip out.
func NewDaemon(ctx context.Context, cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(cfg, logger),
	}

	var sink strip.Sink
	switch cfg.Output.Kind {
	case SerialOutput:
		serial, err := strip.OpenSerial(ctx, cfg.SerialConfig(), logger.With("component", "serial"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to open strip")
		}
		sink = serial
		d.closer = serial
	default:
		sink = strip.NewMemory(cfg.Strip.Count, nil)
	}

	var observers []func(led.LEDs)
	if cfg.Output.Preview != "" {
		d.hub = preview.NewHub(logger.With("component", "preview"))
		observers = append(observers, d.hub.Publish)
	}

	d.sink = strip.Observe(sink, observers...)
	d.sink.SetBrightness(cfg.Brightness())
	d.coord = engine.NewCoordinator(d.sink, logger)

	return d, nil
}

// Effects returns every effect the daemon can play.
func (d *Daemon) Effects() []effects.Entry {
	return d.registry.Entries()
}

// Play stops the current effect and starts the named one with the configured
// parameters.
func (d *Daemon) Play(name string) error {
	_, err := d.play(name)
	return err
}

func (d *Daemon) play(name string) (*engine.RunHandle, error) {
	factory, period, err := d.registry.Factory(name, d.cfg.Effect.Params, d.sink.Len())
	if err != nil {
		return nil, err
	}

	h, err := d.coord.Submit(name, period, factory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start effect")
	}

	d.logger.Info(
		"playing effect",
		"effect", name,
		"run", h.ID(),
		"period", period)

	go func() {
		if err := h.Wait(); err != nil {
			d.logger.Warn(
				"effect stopped with an error",
				"effect", name,
				"run", h.ID(),
				"error", err)
		}
	}()

	return h, nil
}

// Stop stops the current effect and blacks out the strip.
func (d *Daemon) Stop() {
	d.coord.Stop()
}

// Playing returns the name of the running effect, or "" if none is running.
func (d *Daemon) Playing() string {
	h := d.coord.Current()
	if h == nil {
		return ""
	}

	select {
	case <-h.Done():
		return ""
	default:
		return h.Name()
	}
}

// Brightness returns the global brightness.
func (d *Daemon) Brightness() uint8 {
	return d.sink.Brightness()
}

// SetBrightness sets the global brightness. It applies from the next frame.
func (d *Daemon) SetBrightness(b uint8) {
	d.sink.SetBrightness(b)
	d.logger.Debug("brightness changed", "brightness", b)
}

// Frame returns the last frame sent to the strip.
func (d *Daemon) Frame() led.LEDs {
	return d.sink.Last()
}

// Run plays the named effect until ctx is done or the effect ends. An empty
// name uses the configured effect.
func (d *Daemon) Run(ctx context.Context, name string) error {
	if name == "" {
		name = d.cfg.Effect.Name
	}
	if name == "" {
		return errors.New("no effect given")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errg, ctx := errgroup.WithContext(ctx)
	d.servePreview(ctx, errg)

	errg.Go(func() error {
		defer cancel()

		h, err := d.play(name)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.Done():
			return errors.Wrapf(h.Err(), "effect %s failed", name)
		}
	})

	return errg.Wait()
}

// RunInteractive shows the menu until the user quits or ctx is done. The
// configured effect, if any, is started first.
func (d *Daemon) RunInteractive(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errg, ctx := errgroup.WithContext(ctx)
	d.servePreview(ctx, errg)

	if name := d.cfg.Effect.Name; name != "" {
		if err := d.Play(name); err != nil {
			return err
		}
	}

	errg.Go(func() error {
		defer cancel()
		return menu.Run(ctx, d)
	})

	return errg.Wait()
}

func (d *Daemon) servePreview(ctx context.Context, errg *errgroup.Group) {
	if d.hub == nil {
		return
	}
	errg.Go(func() error {
		return errors.Wrap(d.hub.Serve(ctx, d.cfg.Output.Preview), "preview failed")
	})
}

// Close stops the current effect, waits for the strip to be blacked out and
// releases the strip.
func (d *Daemon) Close() error {
	if err := d.coord.Close(); err != nil {
		return errors.Wrap(err, "failed to stop effects")
	}

	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			return errors.Wrap(err, "failed to close strip")
		}
	}

	return nil
}
