//go:build nrf51

package nrf51

import (
	"machine"

	"calliope/board"
	"calliope/core"
)

// Pin is a push-pull output on port 0.
type Pin struct {
	machine.Pin
}

var _ core.OutputPin = Pin{}

// Output configures p as an output, driven low.
func Output(p board.Pin) Pin {
	mp := machine.Pin(p)
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	mp.Low()
	return Pin{mp}
}

func (p Pin) Number() uint8 {
	return uint8(p.Pin)
}

// NewBoard returns the provider of this chip's peripherals. Call it once
// from main; the Taker hands the peripherals out once.
func NewBoard() *board.Taker {
	return board.NewTaker(open)
}

func open() board.Peripherals {
	return board.Peripherals{
		Tone: core.TonePeripherals{
			Timer:  Timer0{},
			Toggle: &GPIOTE{},
			Routes: PPI{},
			LegA:   Output(board.MotorIN1),
			LegB:   Output(board.MotorIN2),
			Sleep:  Output(board.MotorSleep),
		},
	}
}
