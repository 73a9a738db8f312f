// Package config loads the tonectl settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"calliope/core"
	"calliope/host/serial"
)

// DefaultPath is where tonectl looks when --config is not given.
const DefaultPath = "tonectl.yaml"

// Config is the settings file.
type Config struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	// Timer setup of the firmware, used by calc and sim
	TimerClockHz uint32 `yaml:"timer_clock_hz"`
	TimerBits    uint8  `yaml:"timer_bits"`

	SampleRate  int    `yaml:"sample_rate"`
	DefaultDuty uint32 `yaml:"default_duty"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Device == "" {
		c.Device = "/dev/ttyACM0"
	}
	if c.Baud == 0 {
		c.Baud = serial.DefaultBaud
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = 100
	}
	if c.TimerClockHz == 0 {
		c.TimerClockHz = core.DefaultTimerClockHz
	}
	if c.TimerBits == 0 {
		c.TimerBits = core.DefaultTimerBits
	}
	if c.SampleRate == 0 {
		c.SampleRate = 44100
	}
	if c.DefaultDuty == 0 {
		c.DefaultDuty = 50
	}
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings and fills in unset fields.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if c.DefaultDuty > 50 {
		return Config{}, fmt.Errorf("default_duty %d: %w", c.DefaultDuty, core.ErrInvalidInput)
	}
	if _, err := core.TimerWidthFor(c.TimerBits); err != nil {
		return Config{}, fmt.Errorf("timer_bits %d: %w", c.TimerBits, err)
	}
	return c, nil
}

// Serial returns the port settings.
func (c Config) Serial() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeoutMs,
	}
}

// Tone returns the firmware timer setup.
func (c Config) Tone() core.ToneConfig {
	return core.ToneConfig{
		TimerClockHz: c.TimerClockHz,
		TimerBits:    c.TimerBits,
	}
}
