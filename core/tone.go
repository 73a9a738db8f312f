package core

// ToneConfig describes the timer feeding the tone engine.
type ToneConfig struct {
	TimerClockHz uint32
	TimerBits    uint8
}

// DefaultToneConfig returns the nRF51 TIMER0 setup: 16 MHz, 16-bit.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		TimerClockHz: DefaultTimerClockHz,
		TimerBits:    DefaultTimerBits,
	}
}

func (c *ToneConfig) applyDefaults() {
	if c.TimerClockHz == 0 {
		c.TimerClockHz = DefaultTimerClockHz
	}
	if c.TimerBits == 0 {
		c.TimerBits = DefaultTimerBits
	}
}

// TonePeripherals are the hardware handles the engine takes ownership of.
type TonePeripherals struct {
	Timer  TimerRegisters
	Toggle ToggleRegisters
	Routes RouteRegisters

	LegA  OutputPin // H-bridge IN1
	LegB  OutputPin // H-bridge IN2
	Sleep OutputPin // H-bridge nSLEEP
}

// ToneStatus is a snapshot of the engine.
type ToneStatus struct {
	State   TimerRunState
	Config  TimerConfig
	Powered bool
	Starts  uint32
}

// Routes wired by the engine: each leg is toggled at its duty edge and at
// the period boundary.
var toneRoutes = [MaxRoutes]struct {
	event EventSource
	task  TaskSink
}{
	{0, 0}, // CC[0] falling edge -> leg A
	{1, 1}, // CC[1] rising edge  -> leg B
	{2, 0}, // CC[2] period-1     -> leg A
	{3, 1}, // CC[3] period       -> leg B
}

// ToneEngine produces a square wave on two anti-phase H-bridge legs using
// only timer compare events routed to toggle tasks.
type ToneEngine struct {
	cfg TonePeripherals
	clk ToneConfig

	channels *ToggleChannels
	timer    *ToneTimer
	routes   *RouteTable
	power    *PowerGate

	widthErr error // TimerBits has no BITMODE
	bound    bool
}

// NewToneEngine takes ownership of the peripherals in p. The driver is put
// to sleep immediately; nothing else is touched until the first StartTone.
func NewToneEngine(p TonePeripherals, cfg ToneConfig) *ToneEngine {
	if p.Timer == nil || p.Toggle == nil || p.Routes == nil ||
		p.LegA == nil || p.LegB == nil || p.Sleep == nil {
		panic("tone: missing peripheral")
	}
	cfg.applyDefaults()

	width, widthErr := TimerWidthFor(cfg.TimerBits)

	channels := NewToggleChannels(p.Toggle)
	timer := NewToneTimer(p.Timer, channels)
	timer.SetWidth(width)
	return &ToneEngine{
		cfg:      p,
		clk:      cfg,
		channels: channels,
		timer:    timer,
		routes:   NewRouteTable(p.Routes, channels, timer),
		power:    NewPowerGate(p.Sleep, timer),
		widthErr: widthErr,
	}
}

// bind hands both legs to the toggle channels and wires the four routes.
// It runs once; bindings survive every later reconfiguration.
func (e *ToneEngine) bind() error {
	if _, err := e.channels.Bind(0, e.cfg.LegA, Low); err != nil {
		return err
	}
	if _, err := e.channels.Bind(1, e.cfg.LegB, High); err != nil {
		return err
	}
	for _, r := range toneRoutes {
		if _, err := e.routes.BindRoute(r.event, r.task); err != nil {
			return err
		}
	}
	e.bound = true
	return nil
}

// StartTone plays frequencyHz at dutyPercent (1..50). A tone already
// playing is stopped, reprogrammed and restarted; invalid requests are
// rejected before any register is written.
func (e *ToneEngine) StartTone(frequencyHz, dutyPercent uint32) error {
	cfg, err := ComputeTimerConfig(frequencyHz, dutyPercent, e.clk.TimerClockHz, e.clk.TimerBits)
	if err == nil {
		err = e.widthErr
	}
	if err != nil {
		debugEvent(EvtToneRejected, frequencyHz, dutyPercent)
		return err
	}

	if !e.bound {
		if err := e.bind(); err != nil {
			return err
		}
	}

	// Routes go dark before the registers change, so no event can reach a
	// toggle task against the previous compare values.
	e.routes.DisableAll()
	if e.timer.State() == Configured {
		e.timer.Stop()
	}
	if err := e.timer.Configure(cfg); err != nil {
		return err
	}
	if err := e.routes.EnableAll(); err != nil {
		return err
	}
	if err := e.timer.Start(); err != nil {
		return err
	}

	if !e.power.Enabled() {
		if err := e.power.Enable(); err != nil {
			return err
		}
		debugEvent(EvtPowerOn, frequencyHz, dutyPercent)
	}
	return nil
}

// StopTone puts the driver to sleep, stops the timer and disables routes.
func (e *ToneEngine) StopTone() {
	if e.power.Enabled() {
		e.power.Disable()
		debugEvent(EvtPowerOff, 0, 0)
	}
	e.timer.Stop()
	e.routes.DisableAll()
}

// Status reports the engine state.
func (e *ToneEngine) Status() ToneStatus {
	return ToneStatus{
		State:   e.timer.State(),
		Config:  e.timer.Config(),
		Powered: e.power.Enabled(),
		Starts:  e.timer.Starts(),
	}
}

// TimerClockHz returns the clock the engine computes periods against.
func (e *ToneEngine) TimerClockHz() uint32 {
	return e.clk.TimerClockHz
}
