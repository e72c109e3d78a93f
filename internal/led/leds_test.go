package led

import (
	"bytes"
	"testing"
)

func TestLEDsEncode(t *testing.T) {
	leds := NewLEDs(2)
	leds.Set(0, RGBW(1, 2, 3, 4))
	leds.Set(1, RGBW(200, 100, 50, 0))

	tests := []struct {
		order      Order
		brightness uint8
		want       []byte
	}{
		{OrderRGB, 255, []byte{1, 2, 3, 200, 100, 50}},
		{OrderGRB, 255, []byte{2, 1, 3, 100, 200, 50}},
		{OrderGRBW, 255, []byte{2, 1, 3, 4, 100, 200, 50, 0}},
		{OrderRGB, 0, []byte{0, 0, 0, 0, 0, 0}},
		{OrderBGR, 128, []byte{1, 1, 0, 25, 50, 100}},
	}

	for _, test := range tests {
		got := leds.Encode(nil, test.order, test.brightness)
		if !bytes.Equal(got, test.want) {
			t.Errorf("Encode(%s, %d) = %v, want %v", test.order, test.brightness, got, test.want)
		}
	}
}

func TestLEDsSetRangeClips(t *testing.T) {
	leds := NewLEDs(4)
	leds.SetRange(-2, 2, RGB(1, 1, 1))
	leds.SetRange(3, 10, RGB(2, 2, 2))

	want := LEDs{RGB(1, 1, 1), RGB(1, 1, 1), Black, RGB(2, 2, 2)}
	for i := range want {
		if leds[i] != want[i] {
			t.Errorf("leds[%d] = %v, want %v", i, leds[i], want[i])
		}
	}
}

func TestOrderUnmarshal(t *testing.T) {
	var o Order
	if err := o.UnmarshalText([]byte("grbw")); err != nil {
		t.Fatal(err)
	}
	if o != OrderGRBW || o.BytesPerPixel() != 4 {
		t.Errorf("got %q with %d bytes per pixel", o, o.BytesPerPixel())
	}
	if err := o.UnmarshalText([]byte("RGBX")); err == nil {
		t.Error("expected an error for RGBX")
	}
}
