// Package rgbled encodes colours for the WS2812 RGB LED on P0_18 and
// states the bit timing the LED needs, so a CPU clock can be checked
// against it before a bit-banged frame is sent.
package rgbled

import (
	"errors"
	"io"
)

// ErrClockTooSlow is returned when the CPU clock cannot place the WS2812
// edges within tolerance.
var ErrClockTooSlow = errors.New("rgbled: cpu clock too slow for ws2812 timing")

// Color is an RGB colour.
type Color struct {
	R, G, B uint8
}

// Common colours at a brightness that does not dazzle.
var (
	Off   = Color{}
	Red   = Color{R: 64}
	Green = Color{G: 64}
	Blue  = Color{B: 64}
	White = Color{R: 64, G: 64, B: 64}
)

// GRB returns the colour in wire order.
func (c Color) GRB() [3]byte {
	return [3]byte{c.G, c.R, c.B}
}

// Frame encodes colours for a chain of LEDs, first LED first.
func Frame(colors ...Color) []byte {
	buf := make([]byte, 0, 3*len(colors))
	for _, c := range colors {
		grb := c.GRB()
		buf = append(buf, grb[:]...)
	}
	return buf
}

// Bits expands a frame into the bit sequence sent on the wire, MSB first.
func Bits(frame []byte) []bool {
	bits := make([]bool, 0, 8*len(frame))
	for _, b := range frame {
		for i := 7; i >= 0; i-- {
			bits = append(bits, b&(1<<i) != 0)
		}
	}
	return bits
}

// Set sends one colour to the LED. w is typically a ws2812.Device.
func Set(w io.Writer, c Color) error {
	_, err := w.Write(Frame(c))
	return err
}
