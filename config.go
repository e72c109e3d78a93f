package stripglow

import (
	"encoding"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"libdb.so/stripglow/internal/audio"
	"libdb.so/stripglow/internal/effects"
	"libdb.so/stripglow/internal/features"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/ledvis"
	"libdb.so/stripglow/internal/spectrum"
	"libdb.so/stripglow/internal/strip"
)

// Config is the configuration for the stripglow daemon.
type Config struct {
	Strip  StripConfig  `toml:"strip"`
	Output OutputConfig `toml:"output"`
	Audio  AudioConfig  `toml:"audio"`
	Beat   BeatConfig   `toml:"beat"`
	Ripple RippleConfig `toml:"ripple"`
	// Bands map dominant frequencies to colors. If empty, bass is red to
	// yellow, mids are green to cyan and highs are blue to violet.
	Bands []features.Band `toml:"band"`
	// Effect is the effect started when the daemon runs.
	Effect EffectConfig `toml:"effect"`
}

// StripConfig describes the LED strip.
type StripConfig struct {
	// Count is the number of LEDs.
	Count int `toml:"count"`
	// Order is the channel order the strip expects, e.g. "GRB" or "GRBW".
	Order led.Order `toml:"order"`
	// Brightness is the global brightness from 0 to 255. It defaults to 255.
	Brightness *int `toml:"brightness"`
}

// OutputKind is where frames are sent.
type OutputKind string

const (
	// SerialOutput sends frames to a microcontroller over a serial port.
	SerialOutput OutputKind = "serial"
	// MemoryOutput keeps frames in memory. It is useful with the preview when
	// no strip is attached.
	MemoryOutput OutputKind = "memory"
)

// OutputConfig configures where frames go.
type OutputConfig struct {
	Kind OutputKind `toml:"kind"`
	// Device is the path to the device file, usually /dev/ttyUSB0 or
	// /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// AckTimeout bounds how long a frame waits for the controller.
	AckTimeout TOMLDuration `toml:"ack_timeout"`
	// Preview is the address to serve the WebSocket preview on. Empty
	// disables it.
	Preview string `toml:"preview"`
}

// AudioConfig selects the audio input of the audio effects.
type AudioConfig struct {
	// Device is the PortAudio input device index. It defaults to the system
	// default device.
	Device *int `toml:"device"`
	// File plays a .wav, .mp3 or .flac file instead of capturing audio.
	File        string       `toml:"file"`
	Loop        bool         `toml:"loop"`
	SampleRate  int          `toml:"sample_rate"`
	BlockSize   int          `toml:"block_size"`
	ReadTimeout TOMLDuration `toml:"read_timeout"`
	LowLatency  bool         `toml:"low_latency"`

	Scaling spectrum.Scaling `toml:"scaling"`
	// Window is the number of blocks whose peaks normalize the levels.
	Window int            `toml:"window"`
	Taper  spectrum.Taper `toml:"taper"`
	Layout ledvis.Layout  `toml:"layout"`
}

// BeatConfig configures beat detection.
type BeatConfig struct {
	Window    int         `toml:"window"`
	Threshold float64     `toml:"threshold"`
	Palette   []led.Color `toml:"palette"`
}

// RippleConfig configures the ripple effect.
type RippleConfig struct {
	// Count caps the number of ripples alive at once.
	Count int `toml:"count"`
}

// EffectConfig selects an effect and its parameters.
type EffectConfig struct {
	Name   string         `toml:"name"`
	Params effects.Params `toml:"params"`
}

const (
	defaultBaud    = 115200
	defaultOrder   = led.OrderGRB
	defaultLEDs    = 60
	maxLEDs        = 0xFFFF
	fullBrightness = 0xFF
)

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if c.Strip.Count < 1 || c.Strip.Count > maxLEDs {
		add(fmt.Errorf("strip: count %d must be between 1 and %d", c.Strip.Count, maxLEDs))
	}
	if c.Strip.Order != "" {
		add(errors.Wrap(c.Strip.Order.Validate(), "strip"))
	}
	if b := c.Strip.Brightness; b != nil && (*b < 0 || *b > fullBrightness) {
		add(fmt.Errorf("strip: brightness %d must be between 0 and 255", *b))
	}

	switch c.Output.Kind {
	case "", MemoryOutput:
	case SerialOutput:
		if c.Output.Device == "" {
			add(errors.New("output: serial output needs a device"))
		}
		if c.Output.Baud < 0 {
			add(fmt.Errorf("output: invalid baud rate %d", c.Output.Baud))
		}
	default:
		add(fmt.Errorf("output: unknown kind %q", c.Output.Kind))
	}
	if c.Output.AckTimeout < 0 {
		add(fmt.Errorf("output: invalid ack timeout %v", time.Duration(c.Output.AckTimeout)))
	}

	add(errors.Wrap(c.Visualizers().Validate(), "audio"))
	add(errors.Wrap(c.Effect.Params.Validate(), "effect"))

	return stderrors.Join(errs...)
}

// SerialConfig returns the serial sink configuration.
func (c *Config) SerialConfig() strip.SerialConfig {
	order := c.Strip.Order
	if order == "" {
		order = defaultOrder
	}

	baud := c.Output.Baud
	if baud == 0 {
		baud = defaultBaud
	}

	return strip.SerialConfig{
		Device:     c.Output.Device,
		Baud:       baud,
		NumLEDs:    c.Strip.Count,
		Order:      order,
		AckTimeout: time.Duration(c.Output.AckTimeout),
	}
}

// Brightness returns the configured global brightness.
func (c *Config) Brightness() uint8 {
	if c.Strip.Brightness == nil {
		return fullBrightness
	}
	return uint8(*c.Strip.Brightness)
}

// Visualizers returns the configuration of the audio effects.
func (c *Config) Visualizers() ledvis.Config {
	device := audio.DefaultDevice
	if c.Audio.Device != nil {
		device = *c.Audio.Device
	}

	return ledvis.Config{
		Audio: audio.Config{
			Device:      device,
			File:        c.Audio.File,
			Loop:        c.Audio.Loop,
			SampleRate:  c.Audio.SampleRate,
			BlockSize:   c.Audio.BlockSize,
			ReadTimeout: time.Duration(c.Audio.ReadTimeout),
			LowLatency:  c.Audio.LowLatency,
		},
		Scaling: c.Audio.Scaling,
		Window:  c.Audio.Window,
		Taper:   c.Audio.Taper,
		Layout:  c.Audio.Layout,
		Beat: features.BeatConfig{
			Window:    c.Beat.Window,
			Threshold: c.Beat.Threshold,
			Palette:   c.Beat.Palette,
		},
		Bands:   c.Bands,
		Ripples: c.Ripple.Count,
	}
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns the configuration used when no file is given: a
// 60 LED strip kept in memory.
func DefaultConfig() *Config {
	return &Config{
		Strip:  StripConfig{Count: defaultLEDs},
		Output: OutputConfig{Kind: MemoryOutput},
	}
}

// ParseConfig parses a configuration from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
