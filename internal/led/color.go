// Package led contains the color model shared by the strip sinks and the
// effects, along with the compositing helpers they use.
package led

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed RGBW color. The layout is W<<24 | R<<16 | G<<8 | B,
// which matches what most WS281x/SK6812 drivers use.
type Color uint32

var (
	_ encoding.TextUnmarshaler = (*Color)(nil)
	_ encoding.TextMarshaler   = (*Color)(nil)
)

// Black is the zero color. Every channel is off.
const Black Color = 0

// RGBW creates a color from the given channels. Values outside [0, 255] are
// clamped.
func RGBW(r, g, b, w int) Color {
	return Color(clamp8(w))<<24 | Color(clamp8(r))<<16 | Color(clamp8(g))<<8 | Color(clamp8(b))
}

// RGB creates a color with the white channel off.
func RGB(r, g, b int) Color {
	return RGBW(r, g, b, 0)
}

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// W returns the white channel.
func (c Color) W() uint8 { return uint8(c >> 24) }

// Channels returns all four channels.
func (c Color) Channels() (r, g, b, w uint8) {
	return c.R(), c.G(), c.B(), c.W()
}

// IsBlack returns true if every channel is zero.
func (c Color) IsBlack() bool { return c == Black }

// String formats the color as #RRGGBB, or #RRGGBBWW if the white channel is
// lit.
func (c Color) String() string {
	if c.W() == 0 {
		return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R(), c.G(), c.B(), c.W())
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseColor parses a color in the #RRGGBB or #RRGGBBWW format. The leading
// hash is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Black, fmt.Errorf("invalid color %q: expected #RRGGBB or #RRGGBBWW", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("invalid color %q: %w", s, err)
	}

	if len(hex) == 6 {
		return RGB(int(v>>16&0xFF), int(v>>8&0xFF), int(v&0xFF)), nil
	}
	return RGBW(int(v>>24&0xFF), int(v>>16&0xFF), int(v>>8&0xFF), int(v&0xFF)), nil
}

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xFF:
		return 0xFF
	default:
		return uint8(v)
	}
}
