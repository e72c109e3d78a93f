package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// The XIAO RP2040's onboard NeoPixel shows when the device waits for a packet.
// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
var (
	statusLED      ws2812.Device
	statusLEDPower = machine.GPIO11
	statusLEDReady bool
)

func initMainLED() {
	if statusLEDReady {
		return
	}

	statusLEDPower.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLEDPower.Low()

	machine.GPIO12.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLED = ws2812.New(machine.GPIO12)

	statusLEDReady = true
}

// turnOnMainLED lights the onboard LED. Its pixel is GRB.
func turnOnMainLED(r, g, b uint8) {
	initMainLED()
	statusLEDPower.High()
	statusLED.Write([]byte{g, r, b})
}

func turnOffMainLED() {
	initMainLED()
	statusLEDPower.Low()
}
