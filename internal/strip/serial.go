package strip

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/ledserial"
)

// SerialConfig is the configuration for a strip attached to a microcontroller
// over a serial port.
type SerialConfig struct {
	// Device is the path to the serial device, usually /dev/ttyUSB0 or
	// /dev/ttyACM0.
	Device string
	// Baud is the baud rate for the serial connection.
	Baud int
	// NumLEDs is the number of LEDs on the strip.
	NumLEDs int
	// Order is the channel order of the strip.
	Order led.Order
	// AckTimeout bounds how long a flush waits for the controller.
	AckTimeout time.Duration
}

// DefaultAckTimeout is used when SerialConfig.AckTimeout is zero.
const DefaultAckTimeout = time.Second

// Serial is a strip driven by a microcontroller speaking the ledserial
// protocol. Every flush sends a SetPacket and waits for its AckPacket, which
// keeps the host from outrunning the controller.
type Serial struct {
	cfg    SerialConfig
	logger *slog.Logger

	mu   sync.Mutex
	leds led.LEDs
	buf  []byte

	brightness atomic.Uint32

	rw      io.ReadWriteCloser
	packets chan ledserial.OutgoingPacket
	ctx     context.Context
	cancel  context.CancelFunc
	errg    *errgroup.Group
}

var (
	_ Sink   = (*Serial)(nil)
	_ Dimmer = (*Serial)(nil)
)

// OpenSerial opens the serial port described by cfg and initializes the strip.
// The port stays open until Close.
func OpenSerial(ctx context.Context, cfg SerialConfig, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	return NewSerial(ctx, port, cfg, logger)
}

// NewSerial initializes a strip over an already opened connection. The
// connection is owned by the returned Serial and closed by Close only:
// cancelling ctx does not close it, so a run can still black the strip out
// after the caller's context is done.
func NewSerial(ctx context.Context, rw io.ReadWriteCloser, cfg SerialConfig, logger *slog.Logger) (*Serial, error) {
	if cfg.NumLEDs < 1 || cfg.NumLEDs > 0xFFFF {
		rw.Close()
		return nil, errors.Errorf("invalid number of LEDs: %d", cfg.NumLEDs)
	}
	if cfg.Order == "" {
		cfg.Order = led.OrderGRB
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	errg, ctx := errgroup.WithContext(ctx)

	s := &Serial{
		cfg:     cfg,
		logger:  logger,
		leds:    led.NewLEDs(cfg.NumLEDs),
		rw:      rw,
		packets: make(chan ledserial.OutgoingPacket, 16),
		ctx:     ctx,
		cancel:  cancel,
		errg:    errg,
	}
	s.brightness.Store(0xFF)

	errg.Go(func() error {
		<-ctx.Done()
		logger.Debug("closing serial port")
		if err := rw.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return nil
	})
	errg.Go(func() error {
		return s.readPackets(ctx)
	})

	logger.Debug("sending initialize packet", "leds", cfg.NumLEDs, "order", cfg.Order)

	if err := s.send(ledserial.InitializePacket{
		NumLEDs:       uint16(cfg.NumLEDs),
		BytesPerPixel: uint8(cfg.Order.BytesPerPixel()),
	}); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "failed to initialize LEDs")
	}

	return s, nil
}

// Len implements Sink.
func (s *Serial) Len() int { return len(s.leds) }

// Set implements Sink.
func (s *Serial) Set(i int, c led.Color) {
	s.mu.Lock()
	s.leds[i] = c
	s.mu.Unlock()
}

// Get implements Sink.
func (s *Serial) Get(i int) led.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leds[i]
}

// Flush implements Sink. It blocks until the controller acknowledges the
// frame.
func (s *Serial) Flush() error {
	s.mu.Lock()
	s.buf = s.leds.Encode(s.buf[:0], s.cfg.Order, s.Brightness())
	pix := s.buf
	s.mu.Unlock()

	return s.send(ledserial.SetPacket{Pix: pix})
}

// Brightness implements Dimmer.
func (s *Serial) Brightness() uint8 { return uint8(s.brightness.Load()) }

// SetBrightness implements Dimmer.
func (s *Serial) SetBrightness(b uint8) { s.brightness.Store(uint32(b)) }

// Close clears the strip, closes the serial port and waits for the reader to
// exit.
func (s *Serial) Close() error {
	if s.ctx.Err() == nil {
		if err := s.send(ledserial.ClearPacket{}); err != nil {
			s.logger.Warn("failed to clear LEDs before closing", "error", err)
		}
	}

	s.cancel()

	if err := s.errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Serial) send(p ledserial.IncomingPacket) error {
	if err := s.ctx.Err(); err != nil {
		return errors.Wrap(err, "serial connection is closed")
	}

	if err := ledserial.WriteIncomingPacket(s.rw, p); err != nil {
		s.logger.Warn(
			"failed to write packet",
			"packet", p.Type(),
			"error", err)
		return errors.Wrap(err, "failed to write packet")
	}

	return s.awaitAck(p.Type())
}

func (s *Serial) awaitAck(want ledserial.IncomingPacketType) error {
	timeout := time.NewTimer(s.cfg.AckTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return errors.New("serial reader stopped")

		case <-timeout.C:
			return errors.Errorf("timed out waiting for %s ack", want)

		case p := <-s.packets:
			switch p := p.(type) {
			case ledserial.AckPacket:
				if p.IncomingPacketType == want {
					return nil
				}
				s.logger.Debug(
					"ignoring stale ack from controller",
					"acked_for", p.IncomingPacketType,
					"waiting_for", want)

			case ledserial.ErrorPacket:
				s.logger.Warn(
					"received error packet from controller",
					"message", p.Message)
				return errors.Errorf("controller reported error: %s", p.Message)

			case ledserial.PanicPacket:
				s.logger.Error("controller unrecoverably panicked")
				return errors.New("controller panicked")

			case ledserial.LogPacket:
				s.logger.Info(
					"received log packet from controller",
					"message", p.Message)

			default:
				return errors.Errorf("received unknown packet from controller: %s", p.Type())
			}
		}
	}
}

func (s *Serial) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(s.rw)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to read packet")
		}

		select {
		case <-ctx.Done():
			return nil
		case s.packets <- p:
			// ok
		}
	}

	return nil
}
