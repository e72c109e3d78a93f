package main

import (
	"errors"
	"fmt"
	"machine"

	"libdb.so/stripglow/ledserial"
	"tinygo.org/x/drivers/ws2812"
)

// Device drives one strip from the packets received over serial.
type Device struct {
	serial SerialReadWriter
	led    ws2812.Device
	strip  ledserial.ReadContext
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, ledPin machine.Pin) *Device {
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		serial: WrapSerial(serial),
		led:    ws2812.New(ledPin),
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			// A corrupt packet leaves the stream misaligned; drop whatever
			// is left of it so the host's retry starts clean.
			if errors.Is(err, ledserial.ErrChecksum) {
				d.drain()
			}
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	turnOnMainLED(0, 32, 0)
	defer turnOffMainLED()

	return ledserial.ReadIncomingPacket(d.serial, d.strip)
}

func (d *Device) drain() {
	for d.serial.Buffered() > 0 {
		d.serial.ReadByte()
	}
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		if p.BytesPerPixel != 3 && p.BytesPerPixel != 4 {
			return fmt.Errorf("invalid bytes per pixel: %d", p.BytesPerPixel)
		}
		d.strip = ledserial.ReadContext{
			NumLEDs:       p.NumLEDs,
			BytesPerPixel: p.BytesPerPixel,
		}
		d.clearLEDs(true)

	case ledserial.ClearPacket:
		d.clearLEDs(false)

	case ledserial.SetPacket:
		if d.strip.NumLEDs == 0 {
			return errors.New("set before initialize")
		}
		d.led.Write(p.Pix)

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}

// clearLEDs turns every LED off. With signalReady the first LED is lit red
// and the last blue so the strip's ends can be checked after initializing.
func (d *Device) clearLEDs(signalReady bool) {
	frame := make([]byte, d.strip.FrameSize())
	bpp := int(d.strip.BytesPerPixel)

	if signalReady && len(frame) >= 2*bpp {
		// Pixels are GRB(W) on the wire.
		frame[1] = 0xFF
		frame[len(frame)-bpp+2] = 0xFF
	}

	d.led.Write(frame)
}
