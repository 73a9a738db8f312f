// Package serial opens the UART link to a Calliope mini.
package serial

import (
	"io"
)

// Port is an open link. Tests and the simulator substitute in-memory
// ports for a real device.
type Port interface {
	io.ReadWriteCloser

	// Flush drops data the port has buffered but not yet delivered
	Flush() error
}

// DefaultBaud is the firmware's UART rate (8N1).
const DefaultBaud = 115200

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration the firmware expects.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
