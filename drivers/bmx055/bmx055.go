// Package bmx055 reads the magnetometer of the Bosch BMX055 9-axis sensor
// on the Calliope mini.
//
// The magnetometer part is a BMM150 core behind its own I2C address.
// Raw hall readings are converted with the factory trim values stored in
// the chip, using Bosch's integer compensation, into 1/16 µT fixed point.
//
//	mag := bmx055.New(machine.I2C0)
//	err := mag.Configure(bmx055.Config{})
//	f, err := mag.ReadMagneticField() // ErrNotReady between samples
package bmx055

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address of the magnetometer with SDO1/SDO2 low, as on the Calliope mini.
const Address = 0x10

// ChipID is the value of the chip ID register after power on.
const ChipID = 0x32

// Registers.
const (
	regChipID  = 0x40
	regDataX   = 0x42 // X, Y, Z, RHALL little endian, 8 bytes
	regPower   = 0x4B
	regOpMode  = 0x4C
	regRepXY   = 0x51
	regRepZ    = 0x52
	regTrimX1  = 0x5D // first of the trim block
	trimLength = 0x72 - regTrimX1
)

const (
	powerOn     = 0x01
	softReset   = 0x82
	dataReady   = 0x01
	opModeShift = 1
	odrShift    = 3
)

// Raw values the chip reports for an overflowed axis.
const (
	overflowXY = -4096
	overflowZ  = -16384
)

// Errors returned by the driver.
var (
	ErrNotReady = errors.New("bmx055: data not ready")
	ErrChipID   = errors.New("bmx055: unexpected chip id")
	ErrOverflow = errors.New("bmx055: measurement overflow")
)

// Mode is the operation mode.
type Mode uint8

const (
	ModeNormal Mode = 0
	ModeForced Mode = 1
	ModeSleep  Mode = 3
)

// DataRate is the output data rate in normal mode.
type DataRate uint8

const (
	Rate10Hz DataRate = iota
	Rate2Hz
	Rate6Hz
	Rate8Hz
	Rate15Hz
	Rate20Hz
	Rate25Hz
	Rate30Hz
)

// Config controls the measurement setup. Zero values select the Bosch
// "regular" preset at 10 Hz.
type Config struct {
	Address uint16
	Mode    Mode
	Rate    DataRate

	// Repetitions per axis; zero selects 9 for XY and 15 for Z.
	RepetitionsXY uint8
	RepetitionsZ  uint8
}

// Raw is one unconverted sample.
type Raw struct {
	X, Y, Z int16 // sign-extended 13, 13 and 15 bit values
	RHall   uint16
	Ready   bool
}

// Field is a compensated magnetic field in 1/16 µT.
type Field struct {
	X, Y, Z int32
}

// MicroTesla returns the field in whole µT.
func (f Field) MicroTesla() (x, y, z int32) {
	return f.X / 16, f.Y / 16, f.Z / 16
}

// Device is a BMX055 magnetometer on an I2C bus.
type Device struct {
	bus     drivers.I2C
	Address uint16

	trim Trim
	buf  [trimLength]byte
}

// New creates a device on bus. The bus must already be configured; New
// does not touch the chip.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure powers the magnetometer up, checks its ID, loads the trim
// values and starts measuring.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.RepetitionsXY == 0 {
		cfg.RepetitionsXY = 9
	}
	if cfg.RepetitionsZ == 0 {
		cfg.RepetitionsZ = 15
	}

	if err := d.write(regPower, powerOn); err != nil {
		return err
	}
	// Start-up time from suspend to sleep.
	time.Sleep(3 * time.Millisecond)

	id, err := d.ChipID()
	if err != nil {
		return err
	}
	if id != ChipID {
		return ErrChipID
	}
	if err := d.readTrim(); err != nil {
		return err
	}
	if err := d.write(regRepXY, (cfg.RepetitionsXY-1)/2); err != nil {
		return err
	}
	if err := d.write(regRepZ, cfg.RepetitionsZ-1); err != nil {
		return err
	}
	return d.write(regOpMode, byte(cfg.Rate)<<odrShift|byte(cfg.Mode)<<opModeShift)
}

// Reset soft-resets the magnetometer back to sleep mode.
func (d *Device) Reset() error {
	return d.write(regPower, softReset)
}

// ChipID reads the chip ID register.
func (d *Device) ChipID() (byte, error) {
	if err := d.read(regChipID, d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// Trim returns the trim values loaded by Configure.
func (d *Device) Trim() Trim {
	return d.trim
}

// ReadRaw reads the data registers.
func (d *Device) ReadRaw() (Raw, error) {
	b := d.buf[:8]
	if err := d.read(regDataX, b); err != nil {
		return Raw{}, err
	}
	return Raw{
		X:     int16(uint16(b[1])<<8|uint16(b[0])) >> 3,
		Y:     int16(uint16(b[3])<<8|uint16(b[2])) >> 3,
		Z:     int16(uint16(b[5])<<8|uint16(b[4])) >> 1,
		RHall: (uint16(b[7])<<8 | uint16(b[6])) >> 2,
		Ready: b[6]&dataReady != 0,
	}, nil
}

// ReadMagneticField reads and compensates one sample. It returns
// ErrNotReady when no new sample is available.
func (d *Device) ReadMagneticField() (Field, error) {
	raw, err := d.ReadRaw()
	if err != nil {
		return Field{}, err
	}
	if !raw.Ready {
		return Field{}, ErrNotReady
	}
	return d.trim.Compensate(raw)
}

func (d *Device) readTrim() error {
	if err := d.read(regTrimX1, d.buf[:]); err != nil {
		return err
	}
	d.trim = parseTrim(d.buf[:])
	return nil
}

func (d *Device) read(reg byte, data []byte) error {
	return d.bus.Tx(d.Address, []byte{reg}, data)
}

func (d *Device) write(reg, value byte) error {
	return d.bus.Tx(d.Address, []byte{reg, value}, nil)
}
