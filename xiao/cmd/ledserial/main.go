// Command ledserial is the firmware of a Seeed XIAO RP2040 driving a WS2812
// strip from stripglow frames received over USB serial.
package main

import "machine"

// stripPin is the strip's data pin.
var stripPin = machine.D10

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200})

	d := NewDevice(machine.Serial, stripPin)
	d.Run()
}
