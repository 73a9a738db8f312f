package sim

import "calliope/core"

// Timer models TIMER0 in timer mode.
type Timer struct {
	f *Fabric

	mode      core.TimerMode
	width     core.TimerWidth
	prescaler uint8
	cc        [core.CompareSlots]uint32
	shorts    core.TimerShorts

	running bool
	counter uint32
	div     uint32
	events  [core.CompareSlots]uint32
}

func (t *Timer) mask() uint32 {
	bits := t.width.Bits()
	if bits >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<bits - 1
}

func (t *Timer) SetMode(mode core.TimerMode) {
	t.f.record("timer0", "MODE", -1, uint32(mode))
	t.mode = mode
}

func (t *Timer) SetBitMode(width core.TimerWidth) {
	t.f.record("timer0", "BITMODE", -1, uint32(width))
	t.width = width
}

func (t *Timer) SetPrescaler(exponent uint8) {
	t.f.record("timer0", "PRESCALER", -1, uint32(exponent))
	if exponent > 9 {
		exponent = 9
	}
	t.prescaler = exponent
}

func (t *Timer) SetCompare(slot int, value uint32) {
	t.f.record("timer0", "CC", slot, value)
	t.cc[slot] = value
}

func (t *Timer) SetShorts(shorts core.TimerShorts) {
	t.f.record("timer0", "SHORTS", -1, uint32(shorts))
	t.shorts = shorts
}

func (t *Timer) TaskStart() {
	t.f.record("timer0", "TASKS_START", -1, 1)
	t.running = true
}

func (t *Timer) TaskStop() {
	t.f.record("timer0", "TASKS_STOP", -1, 1)
	t.running = false
}

func (t *Timer) TaskClear() {
	t.f.record("timer0", "TASKS_CLEAR", -1, 1)
	t.counter = 0
	t.div = 0
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool { return t.running }

// Counter returns the current counter value.
func (t *Timer) Counter() uint32 { return t.counter }

// Compare returns CC[slot].
func (t *Timer) Compare(slot int) uint32 { return t.cc[slot] }

// Prescaler returns the prescaler exponent.
func (t *Timer) Prescaler() uint8 { return t.prescaler }

// Events returns how often COMPARE[slot] has fired.
func (t *Timer) Events(slot int) uint32 { return t.events[slot] }

type toggleChannel struct {
	configured bool
	enabled    bool
	pin        uint8
	initial    core.Polarity
	level      bool
	toggles    uint32
}

// Toggle models the four GPIOTE channels in task mode.
type Toggle struct {
	f  *Fabric
	ch [core.ToggleChannelCount]toggleChannel
}

func (g *Toggle) ConfigureToggle(ch int, pin uint8, initial core.Polarity) {
	g.f.record("gpiote", "CONFIG", ch, uint32(pin)<<8|uint32(initial)<<20)
	c := &g.ch[ch]
	c.configured = true
	c.enabled = true
	c.pin = pin & 31
	c.initial = initial
	c.level = initial == core.High
}

func (g *Toggle) SetTaskEnable(ch int, enabled bool) {
	var v uint32
	if enabled {
		v = 1
	}
	g.f.record("gpiote", "TASK_ENABLE", ch, v)
	c := &g.ch[ch]
	if enabled && !c.enabled {
		c.level = c.initial == core.High
	}
	c.enabled = enabled
}

func (g *Toggle) out(ch int) {
	c := &g.ch[ch]
	if !c.configured || !c.enabled {
		return
	}
	c.level = !c.level
	c.toggles++
}

// TaskEnabled reports whether channel ch accepts OUT tasks.
func (g *Toggle) TaskEnabled(ch int) bool { return g.ch[ch].enabled }

// Toggles returns how many times channel ch has flipped its pin.
func (g *Toggle) Toggles(ch int) uint32 { return g.ch[ch].toggles }

type ppiChannel struct {
	bound   bool
	enabled bool
	event   core.EventSource
	task    core.TaskSink
}

// Routes models the PPI.
type Routes struct {
	f  *Fabric
	ch [PPIChannels]ppiChannel
}

func (r *Routes) Channels() int { return PPIChannels }

func (r *Routes) SetEndpoints(ch int, event core.EventSource, task core.TaskSink) {
	r.f.record("ppi", "ENDPOINTS", ch, uint32(event)<<8|uint32(task))
	r.ch[ch].bound = true
	r.ch[ch].event = event
	r.ch[ch].task = task
}

func (r *Routes) EnableChannel(ch int) {
	r.f.record("ppi", "CHENSET", ch, 1<<ch)
	r.ch[ch].enabled = true
}

func (r *Routes) DisableChannel(ch int) {
	r.f.record("ppi", "CHENCLR", ch, 1<<ch)
	r.ch[ch].enabled = false
}

// Enabled reports whether route channel ch is enabled.
func (r *Routes) Enabled(ch int) bool { return r.ch[ch].enabled }

func (r *Routes) live() int {
	n := 0
	for _, c := range r.ch {
		if c.bound && c.enabled {
			n++
		}
	}
	return n
}

func (r *Routes) fire(event core.EventSource) {
	for _, c := range r.ch {
		if c.bound && c.enabled && c.event == event {
			r.f.Toggle.out(int(c.task))
		}
	}
}
