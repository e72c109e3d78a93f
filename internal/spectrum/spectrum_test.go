package spectrum

import (
	"math"
	"math/cmplx"
	"reflect"
	"testing"

	"github.com/argusdusty/gofft"
)

func sine(n int, cycles float64, amplitude float64) []int16 {
	block := make([]int16, n)
	for i := range block {
		block[i] = int16(amplitude * math.Sin(2*math.Pi*cycles*float64(i)/float64(n)))
	}
	return block
}

func TestWindowedMax(t *testing.T) {
	w := NewWindowedMax(3)

	if w.Len() != 0 || w.Max() != 0 || w.Mean() != 0 {
		t.Fatal("empty window is not zero")
	}

	for i, v := range []float64{5, 1, 2, 3, 0.5} {
		w.Push(v)
		if w.Len() > w.Cap() {
			t.Fatalf("push %d: len %d exceeds capacity %d", i, w.Len(), w.Cap())
		}
	}

	// 5 and 1 have been evicted.
	if got := w.Max(); got != 3 {
		t.Errorf("max = %v, want 3", got)
	}
	if got := w.Mean(); math.Abs(got-5.5/3) > 1e-12 {
		t.Errorf("mean = %v, want %v", got, 5.5/3)
	}

	w.Reset()
	if w.Len() != 0 {
		t.Error("reset did not empty the window")
	}
}

func TestScalingIndices(t *testing.T) {
	tests := []struct {
		scaling Scaling
		n, size int
		want    []int
	}{
		{Linear, 4, 3, []int{0, 1, 2, -1}},
		{Logarithmic, 1, 513, []int{0}},
		{Logarithmic, 3, 100, []int{1, 10, 99}},
		{Exponential, 1, 513, []int{1}},
		// geomspace(1, 4, 5) rounds to 1 1 2 3 4, clipped to 3 and deduped.
		{Exponential, 5, 4, []int{1, 2, 3, 3, 3}},
	}

	for _, test := range tests {
		got := test.scaling.Indices(test.n, test.size)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s.Indices(%d, %d) = %v, want %v",
				test.scaling, test.n, test.size, got, test.want)
		}
	}
}

func TestScalingIndicesInRange(t *testing.T) {
	for _, scaling := range []Scaling{Linear, Logarithmic, Exponential} {
		for _, n := range []int{1, 2, 10, 60, 300, 1000} {
			indices := scaling.Indices(n, 513)
			if len(indices) != n {
				t.Fatalf("%s: %d indices for %d bins", scaling, len(indices), n)
			}
			for i, ix := range indices {
				if ix < -1 || ix > 512 || (ix == -1 && scaling != Linear) {
					t.Fatalf("%s n=%d: index %d = %d out of range", scaling, n, i, ix)
				}
			}
		}
	}
}

func TestAnalyzerSilence(t *testing.T) {
	for _, scaling := range []Scaling{Linear, Logarithmic, Exponential} {
		a, err := NewAnalyzer(Config{BlockSize: 1024, Bins: 60, Scaling: scaling})
		if err != nil {
			t.Fatal(err)
		}

		frame := a.Process(make([]int16, 1024))
		if len(frame.Levels) != 60 {
			t.Fatalf("%s: %d levels, want 60", scaling, len(frame.Levels))
		}
		for i, v := range frame.Levels {
			if v != 0 {
				t.Fatalf("%s: level %d = %d for a silent block", scaling, i, v)
			}
		}
		if frame.Volume != 0 {
			t.Errorf("%s: volume = %v for a silent block", scaling, frame.Volume)
		}
	}
}

func TestAnalyzerSinePeak(t *testing.T) {
	const (
		blockSize = 1024
		cycles    = 37
	)

	a, err := NewAnalyzer(Config{BlockSize: blockSize, Bins: blockSize/2 + 1, Scaling: Linear})
	if err != nil {
		t.Fatal(err)
	}

	frame := a.Process(sine(blockSize, cycles, 10000))

	if len(frame.Spectrum) != blockSize/2+1 {
		t.Fatalf("spectrum length = %d, want %d", len(frame.Spectrum), blockSize/2+1)
	}

	var argmax int
	for i, v := range frame.Levels {
		if v > frame.Levels[argmax] {
			argmax = i
		}
	}

	if argmax != cycles {
		t.Errorf("loudest bin = %d, want %d", argmax, cycles)
	}
	if frame.Levels[cycles] != 255 {
		t.Errorf("loudest level = %d, want 255", frame.Levels[cycles])
	}
	if frame.Volume != 1 {
		t.Errorf("volume = %v, want 1", frame.Volume)
	}
}

func TestAnalyzerNormalizesAgainstWindow(t *testing.T) {
	a, err := NewAnalyzer(Config{BlockSize: 256, Bins: 129, Scaling: Linear, Window: 4})
	if err != nil {
		t.Fatal(err)
	}

	a.Process(sine(256, 8, 20000))
	quiet := a.Process(sine(256, 8, 5000))

	// The loud block is still in the window, so the quiet one is scaled
	// against it.
	if quiet.Levels[8] > 70 || quiet.Levels[8] < 60 {
		t.Errorf("quiet level = %d, want about a quarter of 255", quiet.Levels[8])
	}
	if quiet.Volume > 0.3 {
		t.Errorf("quiet volume = %v, want about 0.25", quiet.Volume)
	}

	// Once the loud block has left the window, the quiet one is full scale.
	for i := 0; i < 4; i++ {
		quiet = a.Process(sine(256, 8, 5000))
	}
	if quiet.Levels[8] != 255 {
		t.Errorf("quiet level after window = %d, want 255", quiet.Levels[8])
	}
}

func TestAnalyzerMatchesGofft(t *testing.T) {
	const blockSize = 512

	block := make([]int16, blockSize)
	for i := range block {
		x := float64(i) / blockSize
		block[i] = int16(8000*math.Sin(2*math.Pi*12*x) + 3000*math.Cos(2*math.Pi*90*x))
	}

	for _, taper := range []Taper{TaperNone, TaperHann} {
		a, err := NewAnalyzer(Config{BlockSize: blockSize, Bins: 8, Taper: taper})
		if err != nil {
			t.Fatal(err)
		}
		frame := a.Process(block)

		in := make([]float64, blockSize)
		for i, v := range block {
			in[i] = float64(v)
		}
		taper.Apply(in)

		ref := gofft.Float64ToComplex128Array(in)
		if err := gofft.FFT(ref); err != nil {
			t.Fatal("gofft failed:", err)
		}

		var scale float64
		for _, c := range ref[:len(frame.Spectrum)] {
			scale = math.Max(scale, cmplx.Abs(c))
		}

		for i, got := range frame.Spectrum {
			want := cmplx.Abs(ref[i])
			if math.Abs(got-want) > 1e-9*scale {
				t.Fatalf("%s: |X[%d]| = %v, gofft says %v", taper, i, got, want)
			}
		}
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	configs := []Config{
		{BlockSize: 1023, Bins: 10},
		{BlockSize: 1024, Bins: 0},
		{BlockSize: 1024, Bins: 10, Scaling: "cubic"},
		{BlockSize: 1024, Bins: 10, Taper: "kaiser"},
		{BlockSize: 1024, Bins: 10, Window: -1},
	}

	for _, cfg := range configs {
		if _, err := NewAnalyzer(cfg); err == nil {
			t.Errorf("NewAnalyzer(%+v) did not fail", cfg)
		}
	}
}
