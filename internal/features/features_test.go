package features

import (
	"testing"

	"libdb.so/stripglow/internal/led"
)

func TestBeatFiresOnce(t *testing.T) {
	d := NewBeatDetector(BeatConfig{Window: 4, Threshold: 1.3})
	start := d.Color()

	var fired []int
	for i, peak := range []float64{1, 1, 1, 1, 5} {
		if d.Observe(peak) {
			fired = append(fired, i)
		}
	}

	if len(fired) != 1 || fired[0] != 4 {
		t.Fatalf("beats at %v, want exactly one at index 4", fired)
	}
	if d.Color() == start {
		t.Error("beat did not advance the palette")
	}

	// Sustained loud peaks must not retrigger while latched.
	for _, peak := range []float64{5, 5, 5} {
		if d.Observe(peak) {
			t.Fatal("sustained peak retriggered the beat")
		}
	}
	if !d.Latched() {
		t.Fatal("detector unlatched during a sustained peak")
	}

	// Dropping below the average clears the latch; the next spike fires.
	if d.Observe(0.5) {
		t.Fatal("quiet peak fired")
	}
	if d.Latched() {
		t.Fatal("detector still latched after the level dropped")
	}
	if !d.Observe(50) {
		t.Fatal("spike after the latch cleared did not fire")
	}
}

func TestBeatNeedsHistory(t *testing.T) {
	d := NewBeatDetector(BeatConfig{})
	if d.Observe(1000) {
		t.Fatal("beat fired with an empty window")
	}
}

func TestBeatPaletteCycles(t *testing.T) {
	palette := []led.Color{led.RGB(1, 0, 0), led.RGB(0, 1, 0)}
	d := NewBeatDetector(BeatConfig{Window: 2, Threshold: 1.5, Palette: palette})

	var colors []led.Color
	for _, peak := range []float64{1, 10, 0.1, 10, 0.1, 10} {
		if d.Observe(peak) {
			colors = append(colors, d.Color())
		}
	}

	want := []led.Color{palette[1], palette[0], palette[1]}
	if len(colors) != len(want) {
		t.Fatalf("fired %d times, want %d", len(colors), len(want))
	}
	for i := range want {
		if colors[i] != want[i] {
			t.Errorf("beat %d color = %v, want %v", i, colors[i], want[i])
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	d, err := NewDominantTracker(44100, nil)
	if err != nil {
		t.Fatal(err)
	}

	bins := make([]float64, 100)
	bins[10] = 5

	if f := d.Frequency(bins); f != 2205 {
		t.Errorf("frequency = %v, want 2205", f)
	}
}

func TestDominantColor(t *testing.T) {
	d, err := NewDominantTracker(44100, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		freq float64
		want led.Color
	}{
		{0, led.RGB(255, 0, 0)},
		{125, led.RGB(255, 127, 0)},
		{250, led.RGB(0, 255, 0)},
		{2000, led.RGB(0, 0, 255)},
		{30000, led.RGB(139, 0, 255)},
	}

	for _, test := range tests {
		if got := d.Color(test.freq); got != test.want {
			t.Errorf("Color(%v) = %v, want %v", test.freq, got, test.want)
		}
	}

	// Colors change continuously inside a band.
	a, b := d.Color(500), d.Color(510)
	if a == b {
		t.Error("color does not change inside a band")
	}
}

func TestDominantRejectsOverlappingBands(t *testing.T) {
	_, err := NewDominantTracker(44100, []Band{
		{Low: 0, High: 500},
		{Low: 400, High: 1000},
	})
	if err == nil {
		t.Fatal("expected an error for overlapping bands")
	}
}

func TestRipplesTick(t *testing.T) {
	r := NewRipples(3)
	red := led.RGB(255, 0, 0)

	r.Tick(red, 1)
	r.Tick(red, 0.5)
	r.Tick(red, 0)

	got := r.Ripples()
	// The first ripple moved 3 then 3; the second moved round(1.5) = 2.
	wantPos := []int{6, 2, 0}
	for i, rp := range got {
		if rp.Pos != wantPos[i] {
			t.Errorf("ripple %d at %d, want %d", i, rp.Pos, wantPos[i])
		}
	}

	r.Tick(red, 1)
	if n := len(r.Ripples()); n != 3 {
		t.Fatalf("%d ripples, capacity is 3", n)
	}
	if first := r.Ripples()[0]; first.Volume != 0.5 {
		t.Errorf("oldest ripple was not evicted first: %+v", first)
	}
}

func TestRipplesRender(t *testing.T) {
	r := NewRipples(4)
	r.Tick(led.RGB(0, 0, 200), 1)

	leds := led.NewLEDs(70)
	r.Render(leds)

	if leds[0] != led.RGB(0, 0, 200) {
		t.Errorf("pixel 0 = %v, want full intensity", leds[0])
	}
	if leds[1] != led.Scale(led.RGB(0, 0, 200), 251) {
		t.Errorf("pixel 1 = %v, want intensity 251", leds[1])
	}
	if !leds[64].IsBlack() {
		t.Errorf("pixel 64 = %v, want black past the ripple radius", leds[64])
	}
}

func TestRipplesRenderPicksBrightest(t *testing.T) {
	r := NewRipples(4)
	r.Tick(led.RGB(255, 0, 0), 1)
	r.Tick(led.RGB(0, 255, 0), 1)
	r.Tick(led.RGB(0, 0, 255), 1)

	leds := led.NewLEDs(10)
	r.Render(leds)

	// Red is at 6, green at 3, blue at 0.
	if leds[6] != led.RGB(255, 0, 0) || leds[3] != led.RGB(0, 255, 0) || leds[0] != led.RGB(0, 0, 255) {
		t.Errorf("ripple centers not rendered at full intensity: %v", leds)
	}
}
