package stripglow

import (
	"strings"
	"testing"
	"time"

	"libdb.so/stripglow/internal/audio"
	"libdb.so/stripglow/internal/led"
	"libdb.so/stripglow/internal/ledvis"
	"libdb.so/stripglow/internal/spectrum"
)

const testConfig = `
[strip]
count = 144
order = "grbw"
brightness = 128

[output]
kind = "serial"
device = "/dev/ttyACM0"
ack_timeout = "250ms"
preview = "localhost:8080"

[audio]
device = 2
sample_rate = 48000
block_size = 2048
read_timeout = "1s"
scaling = "exponential"
window = 50
taper = "hann"
layout = "middle"

[beat]
threshold = 1.5
palette = ["#ff0000", "#0000ff"]

[ripple]
count = 16

[[band]]
low = 0.0
high = 500.0
from = "#ff0000"
to = "#00ff00"

[effect]
name = "comet"

[effect.params]
speed = 30
tail_length = 8
comet_color = "#00ff00"
decay = 0.0
glitter_probability = 0.0
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal("parse:", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal("validate:", err)
	}

	if cfg.Strip.Count != 144 || cfg.Strip.Order != led.OrderGRBW || cfg.Brightness() != 128 {
		t.Errorf("strip = %+v", cfg.Strip)
	}

	serial := cfg.SerialConfig()
	if serial.Device != "/dev/ttyACM0" || serial.Baud != defaultBaud || serial.AckTimeout != 250*time.Millisecond {
		t.Errorf("serial config = %+v", serial)
	}

	vis := cfg.Visualizers()
	if vis.Audio.Device != 2 || vis.Audio.SampleRate != 48000 || vis.Audio.ReadTimeout != time.Second {
		t.Errorf("audio config = %+v", vis.Audio)
	}
	if vis.Scaling != spectrum.Exponential || vis.Taper != spectrum.TaperHann || vis.Layout != ledvis.SymmetricMiddle {
		t.Errorf("analysis config = %+v", vis)
	}
	if vis.Beat.Threshold != 1.5 || len(vis.Beat.Palette) != 2 || vis.Beat.Palette[1] != led.RGB(0, 0, 255) {
		t.Errorf("beat config = %+v", vis.Beat)
	}
	if len(vis.Bands) != 1 || vis.Bands[0].To != led.RGB(0, 255, 0) || vis.Ripples != 16 {
		t.Errorf("bands = %+v, ripples = %d", vis.Bands, vis.Ripples)
	}

	if cfg.Effect.Name != "comet" {
		t.Errorf("effect = %q", cfg.Effect.Name)
	}
	p := cfg.Effect.Params
	if p.Speed != 30 || p.TailLength == nil || *p.TailLength != 8 || p.CometColor != led.RGB(0, 255, 0) {
		t.Errorf("effect params = %+v", p)
	}
	if p.Decay == nil || *p.Decay != 0 || p.GlitterProbability == nil || *p.GlitterProbability != 0 {
		t.Errorf("explicit zero parameters not kept: decay %v, glitter %v", p.Decay, p.GlitterProbability)
	}
	if p.ExplosionProbability != nil {
		t.Errorf("unset explosion probability parsed as %v", *p.ExplosionProbability)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("[strip]\ncount = 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Brightness() != 0xFF {
		t.Errorf("default brightness = %d", cfg.Brightness())
	}
	if cfg.Visualizers().Audio.Device != audio.DefaultDevice {
		t.Errorf("default audio device = %d", cfg.Visualizers().Audio.Device)
	}
	if order := cfg.SerialConfig().Order; order != led.OrderGRB {
		t.Errorf("default order = %q", order)
	}
}

func TestConfigValidateReportsEverything(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
[strip]
count = 0
brightness = 300

[output]
kind = "serial"

[audio]
block_size = 1023

[effect.params]
decay = 1.5
`))
	if err != nil {
		t.Fatal(err)
	}

	err = cfg.Validate()
	if err == nil {
		t.Fatal("invalid configuration accepted")
	}

	for _, want := range []string{"count", "brightness", "device", "block size", "decay"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%v", want, err)
		}
	}
}

func TestConfigRejectsBadText(t *testing.T) {
	for _, doc := range []string{
		"[strip]\norder = \"xyz\"\n",
		"[output]\nack_timeout = \"soon\"\n",
		"[audio]\nscaling = \"cubic\"\n",
		"[effect.params]\ncolor = \"red\"\n",
	} {
		if _, err := ParseConfig(strings.NewReader(doc)); err == nil {
			t.Errorf("config %q parsed", doc)
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}
