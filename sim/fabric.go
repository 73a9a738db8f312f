// Package sim is a tick-level host model of the nRF51 peripherals driven
// by the tone engine: TIMER0, GPIOTE, PPI and the GPIO output latch.
//
// A Fabric implements the core register interfaces, so a core.ToneEngine
// can run unmodified against it. Every register write is recorded in an
// ordered trace, and Step advances the timer clock while sampling pin
// levels.
package sim

import (
	"golang.org/x/exp/slices"

	"calliope/core"
)

// PPIChannels is the number of programmable route channels on the nRF51.
const PPIChannels = 16

// Write is one recorded register access.
type Write struct {
	Peripheral string // "timer0", "gpiote", "ppi" or "gpio"
	Register   string
	Index      int // register array index, -1 if none
	Value      uint32

	// State of the fabric just before the write
	Running    bool
	LiveRoutes int
}

// Levels is a snapshot of the 32 port pins, bit n set when Pn is high.
type Levels uint32

// High reports whether pin is driven high.
func (l Levels) High(pin uint8) bool {
	return l&(1<<pin) != 0
}

// Fabric ties the simulated peripherals together.
type Fabric struct {
	Timer  *Timer
	Toggle *Toggle
	Routes *Routes

	out   Levels // GPIO OUT latch
	trace []Write
}

// New returns a fabric with all peripherals reset.
func New() *Fabric {
	f := &Fabric{}
	f.Timer = &Timer{f: f}
	f.Toggle = &Toggle{f: f}
	f.Routes = &Routes{f: f}
	return f
}

// Peripherals returns engine peripherals on the given leg and sleep pins.
func (f *Fabric) Peripherals(legA, legB, sleep uint8) core.TonePeripherals {
	return core.TonePeripherals{
		Timer:  f.Timer,
		Toggle: f.Toggle,
		Routes: f.Routes,
		LegA:   f.Pin(legA),
		LegB:   f.Pin(legB),
		Sleep:  f.Pin(sleep),
	}
}

func (f *Fabric) record(peripheral, register string, index int, value uint32) {
	f.trace = append(f.trace, Write{
		Peripheral: peripheral,
		Register:   register,
		Index:      index,
		Value:      value,
		Running:    f.Timer.running,
		LiveRoutes: f.Routes.live(),
	})
}

// Trace returns a copy of the recorded writes, oldest first.
func (f *Fabric) Trace() []Write {
	return slices.Clone(f.trace)
}

// Writes returns the recorded writes to one register.
func (f *Fabric) Writes(peripheral, register string) []Write {
	out := slices.Clone(f.trace)
	return slices.DeleteFunc(out, func(w Write) bool {
		return w.Peripheral != peripheral || w.Register != register
	})
}

// IndexOf returns the trace position of the first write to register at or
// after position from, or -1.
func (f *Fabric) IndexOf(from int, peripheral, register string) int {
	if from < 0 || from >= len(f.trace) {
		return -1
	}
	i := slices.IndexFunc(f.trace[from:], func(w Write) bool {
		return w.Peripheral == peripheral && w.Register == register
	})
	if i < 0 {
		return -1
	}
	return from + i
}

// ResetTrace drops all recorded writes.
func (f *Fabric) ResetTrace() {
	f.trace = f.trace[:0]
}

// Levels returns the current level of every pin. A pin owned by an armed
// toggle channel follows the channel; otherwise it follows the OUT latch.
func (f *Fabric) Levels() Levels {
	l := f.out
	for _, ch := range f.Toggle.ch {
		if !ch.configured || !ch.enabled {
			continue
		}
		if ch.level {
			l |= 1 << ch.pin
		} else {
			l &^= 1 << ch.pin
		}
	}
	return l
}

// Step advances the timer clock by n ticks and returns the pin levels
// sampled after each tick.
func (f *Fabric) Step(n int) []Levels {
	samples := make([]Levels, 0, n)
	f.Run(n, func(l Levels) {
		samples = append(samples, l)
	})
	return samples
}

// Run advances the timer clock by n ticks, passing the pin levels after
// each tick to sample.
func (f *Fabric) Run(n int, sample func(Levels)) {
	for i := 0; i < n; i++ {
		f.tick()
		sample(f.Levels())
	}
}

func (f *Fabric) tick() {
	t := f.Timer
	if !t.running {
		return
	}
	t.div++
	if t.div < 1<<t.prescaler {
		return
	}
	t.div = 0
	t.counter = (t.counter + 1) & t.mask()

	cleared := false
	for slot, cc := range t.cc {
		if t.counter != cc {
			continue
		}
		t.events[slot]++
		f.Routes.fire(core.EventSource(slot))
		if t.shorts&(core.ShortCompare0Clear<<slot) != 0 {
			cleared = true
		}
		if slot == 0 && t.shorts&core.ShortCompare0Stop != 0 {
			t.running = false
		}
	}
	if cleared {
		t.counter = 0
	}
}

// Pin is a GPIO output on the fabric.
type Pin struct {
	f   *Fabric
	num uint8
}

// Pin returns the output handle of port pin n.
func (f *Fabric) Pin(n uint8) *Pin {
	return &Pin{f: f, num: n & 31}
}

// Set drives the OUT latch of the pin.
func (p *Pin) Set(high bool) {
	if high {
		p.f.record("gpio", "OUTSET", int(p.num), 1<<p.num)
		p.f.out |= 1 << p.num
	} else {
		p.f.record("gpio", "OUTCLR", int(p.num), 1<<p.num)
		p.f.out &^= 1 << p.num
	}
}

// Get returns the level of the OUT latch.
func (p *Pin) Get() bool {
	return p.f.out.High(p.num)
}

// Number returns the port pin number.
func (p *Pin) Number() uint8 {
	return p.num
}
