package led

import (
	"encoding"
	"fmt"
	"strings"
)

// Order is the channel order a strip expects on the wire. Strips with a white
// channel use four bytes per pixel, the rest use three.
type Order string

const (
	OrderRGB  Order = "RGB"
	OrderRBG  Order = "RBG"
	OrderGRB  Order = "GRB"
	OrderGBR  Order = "GBR"
	OrderBRG  Order = "BRG"
	OrderBGR  Order = "BGR"
	OrderRGBW Order = "RGBW"
	OrderGRBW Order = "GRBW"
)

var _ encoding.TextUnmarshaler = (*Order)(nil)

// UnmarshalText implements encoding.TextUnmarshaler. Matching is
// case-insensitive.
func (o *Order) UnmarshalText(text []byte) error {
	v := Order(strings.ToUpper(strings.TrimSpace(string(text))))
	if err := v.Validate(); err != nil {
		return err
	}
	*o = v
	return nil
}

// Validate returns an error if the order is not a known permutation.
func (o Order) Validate() error {
	switch o {
	case OrderRGB, OrderRBG, OrderGRB, OrderGBR, OrderBRG, OrderBGR, OrderRGBW, OrderGRBW:
		return nil
	default:
		return fmt.Errorf("unknown channel order %q", string(o))
	}
}

// BytesPerPixel returns 4 for RGBW strips and 3 otherwise.
func (o Order) BytesPerPixel() int {
	return len(o)
}

// Encode writes c into dst following the channel order. dst must have at
// least BytesPerPixel bytes.
func (o Order) Encode(dst []byte, c Color) {
	for i := 0; i < len(o); i++ {
		switch o[i] {
		case 'R':
			dst[i] = c.R()
		case 'G':
			dst[i] = c.G()
		case 'B':
			dst[i] = c.B()
		case 'W':
			dst[i] = c.W()
		}
	}
}
