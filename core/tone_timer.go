package core

// TimerRunState is the state of the tone timer.
type TimerRunState uint8

const (
	Idle TimerRunState = iota
	Configured
	Running
)

func (s TimerRunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configured:
		return "configured"
	case Running:
		return "running"
	}
	return "unknown"
}

// ToneTimer drives the countdown timer through Idle -> Configured ->
// Running. Compare registers are only ever written while the timer is
// stopped and the toggle channels ignore their tasks.
type ToneTimer struct {
	regs     TimerRegisters
	channels *ToggleChannels
	width    TimerWidth
	state    TimerRunState
	config   TimerConfig
	starts   uint32
}

// NewToneTimer takes ownership of the timer register block.
func NewToneTimer(regs TimerRegisters, channels *ToggleChannels) *ToneTimer {
	return &ToneTimer{regs: regs, channels: channels}
}

// SetWidth selects the counter width written by the next Configure.
func (c *ToneTimer) SetWidth(w TimerWidth) {
	c.width = w
}

// State returns the current run state.
func (c *ToneTimer) State() TimerRunState {
	return c.state
}

// Config returns the last configuration written to the timer.
func (c *ToneTimer) Config() TimerConfig {
	return c.config
}

// Starts returns how many times the timer has been started.
func (c *ToneTimer) Starts() uint32 {
	return c.starts
}

// Configure programs the timer for cfg. A running timer is stopped and
// cleared first; the toggle task inputs stay disabled until Start.
func (c *ToneTimer) Configure(cfg TimerConfig) error {
	if c.state == Configured {
		return ErrInvalidState
	}
	if !cfg.Valid() {
		return ErrInvalidInput
	}

	// Stop then clear, so the counter restarts from zero and no compare
	// match can fire against half-written registers.
	c.regs.TaskStop()
	c.regs.TaskClear()
	c.channels.SetTaskTriggers(false)
	c.state = Idle

	c.regs.SetMode(TimerModeTimer)
	c.regs.SetBitMode(c.width)
	c.regs.SetPrescaler(cfg.PrescalerExponent)

	period := uint32(cfg.PeriodTicks)
	c.regs.SetCompare(0, uint32(cfg.CompareFalling))
	c.regs.SetCompare(1, uint32(cfg.CompareRising))
	c.regs.SetCompare(2, period-1)
	c.regs.SetCompare(3, period)

	// COMPARE[3] clears the counter so the timer free-runs one period at a time.
	c.regs.SetShorts(ShortCompare3Clear)

	c.config = cfg
	c.state = Configured
	debugEvent(EvtToneConfigure, uint32(cfg.PeriodTicks), uint32(cfg.PrescalerExponent))
	return nil
}

// Start arms the toggle channels and starts counting. From here on the
// waveform needs no CPU.
func (c *ToneTimer) Start() error {
	if c.state != Configured {
		return ErrInvalidState
	}
	c.channels.SetTaskTriggers(true)
	c.regs.TaskStart()
	c.state = Running
	c.starts++
	debugEvent(EvtToneStart, uint32(c.config.PeriodTicks), c.starts)
	return nil
}

// Stop halts the timer and disarms the toggle channels. Stopping an idle
// timer does nothing.
func (c *ToneTimer) Stop() {
	switch c.state {
	case Idle:
		return
	case Running:
		c.regs.TaskStop()
	}
	c.channels.SetTaskTriggers(false)
	c.state = Idle
	debugEvent(EvtToneStop, uint32(c.config.PeriodTicks), 0)
}
