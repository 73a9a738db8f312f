//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// lockEvents masks interrupts so a handler recording an event cannot
// interleave with the main loop.
func lockEvents() irqState {
	return interrupt.Disable()
}

func unlockEvents(state irqState) {
	interrupt.Restore(state)
}
