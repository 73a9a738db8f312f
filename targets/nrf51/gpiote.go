//go:build nrf51

package nrf51

import (
	"device/nrf"
	"runtime/volatile"
	"unsafe"

	"calliope/core"
)

// GPIOTE CONFIG fields.
const (
	gpioteModePos     = 0
	gpioteModeDisable = 0
	gpioteModeTask    = 3

	gpiotePselPos = 8

	gpiotePolarityPos    = 16
	gpiotePolarityToggle = 3

	gpioteOutInitPos  = 20
	gpioteOutInitLow  = 0
	gpioteOutInitHigh = 1
)

// GPIOTE drives the GPIO task channels.
//
// The nRF51 has no per-channel gate on the OUT task. A disabled channel
// is released to the GPIO OUT latch, which is first set to the channel's
// initial level, so the pin holds that level and routed events have no
// effect. Enabling writes the task configuration again, which re-arms the
// channel at its initial level.
type GPIOTE struct {
	pin     [core.ToggleChannelCount]uint8
	initial [core.ToggleChannelCount]core.Polarity
}

var _ core.ToggleRegisters = (*GPIOTE)(nil)

func (g *GPIOTE) ConfigureToggle(ch int, pin uint8, initial core.Polarity) {
	g.pin[ch] = pin
	g.initial[ch] = initial
	g.arm(ch)
}

func (g *GPIOTE) SetTaskEnable(ch int, enabled bool) {
	if enabled {
		g.arm(ch)
		return
	}
	mask := uint32(1) << g.pin[ch]
	if g.initial[ch] == core.High {
		nrf.GPIO.OUTSET.Set(mask)
	} else {
		nrf.GPIO.OUTCLR.Set(mask)
	}
	nrf.GPIOTE.CONFIG[ch].Set(gpioteModeDisable << gpioteModePos)
}

func (g *GPIOTE) arm(ch int) {
	outInit := uint32(gpioteOutInitLow)
	if g.initial[ch] == core.High {
		outInit = gpioteOutInitHigh
	}
	nrf.GPIOTE.CONFIG[ch].Set(gpioteModeTask<<gpioteModePos |
		uint32(g.pin[ch])<<gpiotePselPos |
		gpiotePolarityToggle<<gpiotePolarityPos |
		outInit<<gpioteOutInitPos)
}

// outTask returns the address of TASKS_OUT[ch] for PPI.
func outTask(ch core.TaskSink) uint32 {
	return regAddr(&nrf.GPIOTE.TASKS_OUT[ch])
}

func regAddr(r *volatile.Register32) uint32 {
	return uint32(uintptr(unsafe.Pointer(r)))
}
