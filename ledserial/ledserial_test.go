package ledserial

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestIncomingPackets(t *testing.T) {
	ctx := ReadContext{NumLEDs: 3, BytesPerPixel: 4}

	packets := []IncomingPacket{
		InitializePacket{NumLEDs: 3, BytesPerPixel: 4},
		ClearPacket{},
		SetPacket{Pix: []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}

	var buf bytes.Buffer
	for _, p := range packets {
		if err := WriteIncomingPacket(&buf, p); err != nil {
			t.Fatalf("failed to write %s: %v", p.Type(), err)
		}
	}

	for _, want := range packets {
		got, err := ReadIncomingPacket(&buf, ctx)
		if err != nil {
			t.Fatalf("failed to read %s: %v", want.Type(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("read %#v, want %#v", got, want)
		}
	}

	if buf.Len() != 0 {
		t.Errorf("%d trailing bytes", buf.Len())
	}
}

func TestOutgoingPackets(t *testing.T) {
	packets := []OutgoingPacket{
		AckPacket{IncomingPacketType: TypeSetPacket},
		LogPacket{Message: "hello"},
		ErrorPacket{Message: "invalid number of LEDs: 0"},
		PanicPacket{},
	}

	var buf bytes.Buffer
	for _, p := range packets {
		if err := WriteOutgoingPacket(&buf, p); err != nil {
			t.Fatalf("failed to write %s: %v", p.Type(), err)
		}
	}

	for _, want := range packets {
		got, err := ReadOutgoingPacket(&buf)
		if err != nil {
			t.Fatalf("failed to read %s: %v", want.Type(), err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("read %#v, want %#v", got, want)
		}
	}
}

func TestChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIncomingPacket(&buf, SetPacket{Pix: []uint8{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}

	b := buf.Bytes()
	b[2] ^= 0xFF

	_, err := ReadIncomingPacket(bytes.NewReader(b), ReadContext{NumLEDs: 1, BytesPerPixel: 3})
	if !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected checksum error, got %v", err)
	}
}

func TestUnknownPacketType(t *testing.T) {
	_, err := ReadOutgoingPacket(bytes.NewReader([]byte{0xFE, 0, 0, 0, 0}))
	if err == nil {
		t.Fatal("expected an error for an unknown packet type")
	}
}
