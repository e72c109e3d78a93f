package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Device describes a PortAudio input device.
type Device struct {
	// ID is the index passed as Config.Device.
	ID                int
	Name              string
	HostAPI           string
	InputChannels     int
	DefaultSampleRate float64
	LowLatency        time.Duration
	HighLatency       time.Duration
	// Default is true for the system's default input device.
	Default bool
}

// Devices lists every device with at least one input channel.
func Devices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "initialize", Err: err}
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, &DeviceError{Op: "list", Err: err}
	}

	var defaultName string
	if d, err := portaudio.DefaultInputDevice(); err == nil {
		defaultName = d.Name
	}

	inputs := make([]Device, 0, len(devices))
	for i, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}

		var hostAPI string
		if d.HostApi != nil {
			hostAPI = d.HostApi.Name
		}

		inputs = append(inputs, Device{
			ID:                i,
			Name:              d.Name,
			HostAPI:           hostAPI,
			InputChannels:     d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			LowLatency:        d.DefaultLowInputLatency,
			HighLatency:       d.DefaultHighInputLatency,
			Default:           d.Name == defaultName,
		})
	}

	return inputs, nil
}

// inputDevice returns the device with the given index, or the default input
// device for DefaultDevice. PortAudio must be initialized.
func inputDevice(id int) (*portaudio.DeviceInfo, error) {
	if id == DefaultDevice {
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	if id < 0 || id >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", id)
	}

	device := devices[id]
	if device.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", id, device.Name)
	}

	return device, nil
}
