package core

// PowerGate owns the H-bridge driver's sleep line. The driver is only woken
// once the timer is running, so the winding never sees a transition state.
type PowerGate struct {
	pin     OutputPin
	timer   timerState
	enabled bool
}

// NewPowerGate takes the driver enable pin and puts the driver to sleep.
func NewPowerGate(pin OutputPin, timer timerState) *PowerGate {
	pin.Set(false)
	return &PowerGate{pin: pin, timer: timer}
}

// Enable raises the driver enable line.
func (g *PowerGate) Enable() error {
	if g.timer != nil && g.timer.State() != Running {
		return ErrPowerOrder
	}
	g.pin.Set(true)
	g.enabled = true
	return nil
}

// Disable lowers the driver enable line.
func (g *PowerGate) Disable() {
	g.pin.Set(false)
	g.enabled = false
}

// Enabled reports whether the driver is awake.
func (g *PowerGate) Enabled() bool {
	return g.enabled
}
