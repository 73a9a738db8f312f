//go:build nrf51

// Package nrf51 implements the tone engine register interfaces on the
// nRF51822 of the Calliope mini: TIMER0, GPIOTE, PPI and GPIO.
package nrf51

import (
	"device/nrf"

	"calliope/core"
)

// TIMER field values.
const (
	timerModeTimer   = 0
	timerModeCounter = 1

	timerBitMode16 = 0
	timerBitMode8  = 1
	timerBitMode24 = 2
	timerBitMode32 = 3

	// SHORTS bits
	timerShortCompare0Clear = 1 << 0
	timerShortCompare3Clear = 1 << 3
	timerShortCompare0Stop  = 1 << 8

	timerPrescalerMask = 0xF
)

// Timer0 drives TIMER0.
type Timer0 struct{}

var _ core.TimerRegisters = Timer0{}

func (Timer0) SetMode(mode core.TimerMode) {
	v := uint32(timerModeTimer)
	if mode == core.TimerModeCounter {
		v = timerModeCounter
	}
	nrf.TIMER0.MODE.Set(v)
}

func (Timer0) SetBitMode(width core.TimerWidth) {
	var v uint32
	switch width {
	case core.TimerWidth8:
		v = timerBitMode8
	case core.TimerWidth24:
		v = timerBitMode24
	case core.TimerWidth32:
		v = timerBitMode32
	default:
		v = timerBitMode16
	}
	nrf.TIMER0.BITMODE.Set(v)
}

func (Timer0) SetPrescaler(exponent uint8) {
	nrf.TIMER0.PRESCALER.Set(uint32(exponent) & timerPrescalerMask)
}

func (Timer0) SetCompare(slot int, value uint32) {
	nrf.TIMER0.CC[slot].Set(value)
}

// SetShorts maps the portable shortcut bits onto the SHORTS register.
func (Timer0) SetShorts(shorts core.TimerShorts) {
	var v uint32
	for slot := 0; slot < core.CompareSlots; slot++ {
		if shorts&(core.ShortCompare0Clear<<slot) != 0 {
			v |= timerShortCompare0Clear << slot
		}
	}
	if shorts&core.ShortCompare0Stop != 0 {
		v |= timerShortCompare0Stop
	}
	nrf.TIMER0.SHORTS.Set(v)
}

func (Timer0) TaskStart() { nrf.TIMER0.TASKS_START.Set(1) }
func (Timer0) TaskStop()  { nrf.TIMER0.TASKS_STOP.Set(1) }
func (Timer0) TaskClear() { nrf.TIMER0.TASKS_CLEAR.Set(1) }

// compareEvent returns the address of EVENTS_COMPARE[slot] for PPI.
func compareEvent(slot core.EventSource) uint32 {
	return regAddr(&nrf.TIMER0.EVENTS_COMPARE[slot])
}
