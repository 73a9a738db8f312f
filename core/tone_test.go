package core

import (
	"errors"
	"fmt"
	"testing"
)

// mockRegs records every register access as a string so tests can check
// ordering.
type mockRegs struct {
	ops []string
}

func (m *mockRegs) log(format string, args ...interface{}) {
	m.ops = append(m.ops, fmt.Sprintf(format, args...))
}

func (m *mockRegs) SetMode(mode TimerMode)            { m.log("mode %d", mode) }
func (m *mockRegs) SetBitMode(width TimerWidth)       { m.log("bitmode %d", width.Bits()) }
func (m *mockRegs) SetPrescaler(exponent uint8)       { m.log("prescaler %d", exponent) }
func (m *mockRegs) SetCompare(slot int, value uint32) { m.log("cc%d %d", slot, value) }
func (m *mockRegs) SetShorts(shorts TimerShorts)      { m.log("shorts %#x", uint32(shorts)) }
func (m *mockRegs) TaskStart()                        { m.log("start") }
func (m *mockRegs) TaskStop()                         { m.log("stop") }
func (m *mockRegs) TaskClear()                        { m.log("clear") }

func (m *mockRegs) ConfigureToggle(ch int, pin uint8, initial Polarity) {
	m.log("toggle%d pin%d %s", ch, pin, initial)
}

func (m *mockRegs) SetTaskEnable(ch int, enabled bool) {
	if enabled {
		m.log("task%d on", ch)
	} else {
		m.log("task%d off", ch)
	}
}

func (m *mockRegs) Channels() int { return 16 }

func (m *mockRegs) SetEndpoints(ch int, event EventSource, task TaskSink) {
	m.log("route%d %s->%s", ch, event, task)
}

func (m *mockRegs) EnableChannel(ch int)  { m.log("route%d on", ch) }
func (m *mockRegs) DisableChannel(ch int) { m.log("route%d off", ch) }

func (m *mockRegs) reset() { m.ops = m.ops[:0] }

func (m *mockRegs) index(op string) int {
	for i, o := range m.ops {
		if o == op {
			return i
		}
	}
	return -1
}

type mockPin struct {
	num  uint8
	high bool
	sets int
}

func (p *mockPin) Set(high bool) { p.high = high; p.sets++ }
func (p *mockPin) Number() uint8 { return p.num }

var cfg220 = TimerConfig{PrescalerExponent: 4, PeriodTicks: 4545, CompareRising: 2271, CompareFalling: 2273}

func TestToggleBind(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	legA := &mockPin{num: 29, high: true}
	legB := &mockPin{num: 30}

	a, err := channels.Bind(0, legA, Low)
	if err != nil {
		t.Fatalf("Bind leg A failed: %v", err)
	}
	if legA.high {
		t.Error("leg A should be driven low before takeover")
	}
	if a.Pin() != 29 || a.InitialPolarity != Low || !a.ToggleOnTask {
		t.Errorf("unexpected binding %+v", a)
	}

	if _, err := channels.Bind(0, legB, High); !errors.Is(err, ErrChannelBound) {
		t.Errorf("Expected ErrChannelBound, got %v", err)
	}
	if _, err := channels.Bind(1, legB, Low); !errors.Is(err, ErrPolarity) {
		t.Errorf("Expected ErrPolarity, got %v", err)
	}
	if _, err := channels.Bind(ToggleChannelCount, legB, High); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	b, err := channels.Bind(1, legB, High)
	if err != nil {
		t.Fatalf("Bind leg B failed: %v", err)
	}
	if !legB.high {
		t.Error("leg B should be driven high before takeover")
	}
	if !channels.Bound(1) || channels.Binding(1) != b {
		t.Error("channel 1 not recorded")
	}
	if channels.Bound(2) || channels.Binding(2) != nil {
		t.Error("channel 2 should be free")
	}

	want := []string{"toggle0 pin29 low", "toggle1 pin30 high"}
	if len(regs.ops) != len(want) {
		t.Fatalf("Expected ops %v, got %v", want, regs.ops)
	}
	for i := range want {
		if regs.ops[i] != want[i] {
			t.Errorf("op %d: Expected %q, got %q", i, want[i], regs.ops[i])
		}
	}
}

func TestToggleTaskTriggers(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	channels.Bind(0, &mockPin{num: 29}, Low)
	channels.Bind(1, &mockPin{num: 30}, High)
	regs.reset()

	channels.SetTaskTriggers(false)
	if channels.Binding(0).TaskEnabled() || channels.Binding(1).TaskEnabled() {
		t.Error("triggers still enabled")
	}
	channels.SetTaskTriggers(true)
	if !channels.Binding(0).TaskEnabled() {
		t.Error("trigger not re-enabled")
	}

	want := []string{"task0 off", "task1 off", "task0 on", "task1 on"}
	for i := range want {
		if i >= len(regs.ops) || regs.ops[i] != want[i] {
			t.Fatalf("Expected ops %v, got %v", want, regs.ops)
		}
	}
}

func TestRouteTable(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	routes := NewRouteTable(regs, channels, nil)

	if _, err := routes.BindRoute(0, 0); !errors.Is(err, ErrRouteOrder) {
		t.Errorf("route to unbound sink: Expected ErrRouteOrder, got %v", err)
	}

	channels.Bind(0, &mockPin{num: 29}, Low)
	channels.Bind(1, &mockPin{num: 30}, High)

	if _, err := routes.BindRoute(CompareSlots, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad event: Expected ErrInvalidInput, got %v", err)
	}

	var bound []*EventRoute
	for _, r := range [][2]uint8{{0, 0}, {1, 1}, {2, 0}, {3, 1}} {
		route, err := routes.BindRoute(EventSource(r[0]), TaskSink(r[1]))
		if err != nil {
			t.Fatalf("BindRoute(%d, %d) failed: %v", r[0], r[1], err)
		}
		if route.Enabled {
			t.Error("route created enabled")
		}
		bound = append(bound, route)
	}
	if _, err := routes.BindRoute(0, 1); !errors.Is(err, ErrRouteTableFull) {
		t.Errorf("fifth route: Expected ErrRouteTableFull, got %v", err)
	}
	if bound[2].Channel() != 2 || bound[2].Event != 2 || bound[2].Task != 0 {
		t.Errorf("unexpected route %+v", bound[2])
	}

	regs.reset()
	if err := routes.Enable(bound[0]); err != nil {
		t.Fatal(err)
	}
	if err := routes.Enable(bound[0]); err != nil {
		t.Fatal(err)
	}
	routes.Disable(bound[0])
	routes.Disable(bound[0])

	want := []string{"route0 on", "route0 off"}
	if len(regs.ops) != len(want) || regs.ops[0] != want[0] || regs.ops[1] != want[1] {
		t.Errorf("enable/disable not idempotent: %v", regs.ops)
	}

	if got := bound[3].Event.String(); got != "timer0.compare[3]" {
		t.Errorf("event name %q", got)
	}
	if got := bound[3].Task.String(); got != "gpiote.out[1]" {
		t.Errorf("task name %q", got)
	}
}

func TestRouteEnableRefusedWhileRunning(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	timer := NewToneTimer(regs, channels)
	routes := NewRouteTable(regs, channels, timer)

	channels.Bind(0, &mockPin{num: 29}, Low)
	r, _ := routes.BindRoute(0, 0)

	timer.Configure(cfg220)
	timer.Start()
	if err := routes.Enable(r); !errors.Is(err, ErrRouteOrder) {
		t.Errorf("Expected ErrRouteOrder, got %v", err)
	}
	timer.Stop()
	if err := routes.Enable(r); err != nil {
		t.Errorf("enable after stop failed: %v", err)
	}
}

func TestToneTimerConfigure(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	channels.Bind(0, &mockPin{num: 29}, Low)
	channels.Bind(1, &mockPin{num: 30}, High)
	regs.reset()

	timer := NewToneTimer(regs, channels)
	if err := timer.Configure(cfg220); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if timer.State() != Configured {
		t.Errorf("Expected state configured, got %s", timer.State())
	}

	want := []string{
		"stop", "clear", "task0 off", "task1 off",
		"mode 0", "bitmode 16", "prescaler 4",
		"cc0 2273", "cc1 2271", "cc2 4544", "cc3 4545",
		"shorts 0x8",
	}
	if len(regs.ops) != len(want) {
		t.Fatalf("Expected ops %v, got %v", want, regs.ops)
	}
	for i := range want {
		if regs.ops[i] != want[i] {
			t.Errorf("op %d: Expected %q, got %q", i, want[i], regs.ops[i])
		}
	}
	if timer.Config() != cfg220 {
		t.Errorf("config not stored: %+v", timer.Config())
	}
}

func TestToneTimerTransitions(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	timer := NewToneTimer(regs, channels)

	if err := timer.Start(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start from idle: Expected ErrInvalidState, got %v", err)
	}
	if err := timer.Configure(TimerConfig{PeriodTicks: 2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid config: Expected ErrInvalidInput, got %v", err)
	}

	timer.Configure(cfg220)
	if err := timer.Configure(cfg220); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Configure twice: Expected ErrInvalidState, got %v", err)
	}

	// Configured -> Idle leaves the counter alone.
	regs.reset()
	timer.Stop()
	if timer.State() != Idle {
		t.Errorf("Expected idle, got %s", timer.State())
	}
	if regs.index("stop") >= 0 {
		t.Error("stop task issued for a timer that never ran")
	}

	timer.Configure(cfg220)
	if err := timer.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if timer.State() != Running || timer.Starts() != 1 {
		t.Errorf("Expected running with 1 start, got %s/%d", timer.State(), timer.Starts())
	}

	// Reconfigure while running stops first.
	regs.reset()
	cfg440, _ := ComputeTimerConfig(440, 50, DefaultTimerClockHz, DefaultTimerBits)
	if err := timer.Configure(cfg440); err != nil {
		t.Fatalf("reconfigure failed: %v", err)
	}
	if regs.index("stop") != 0 || regs.index("clear") != 1 {
		t.Errorf("reconfigure must stop and clear first: %v", regs.ops)
	}

	timer.Start()
	regs.reset()
	timer.Stop()
	timer.Stop()
	if len(regs.ops) == 0 || regs.ops[0] != "stop" {
		t.Errorf("Expected stop task, got %v", regs.ops)
	}
	stops := 0
	for _, op := range regs.ops {
		if op == "stop" {
			stops++
		}
	}
	if stops != 1 {
		t.Errorf("Stop not idempotent: %v", regs.ops)
	}
}

func TestPowerGateOrder(t *testing.T) {
	regs := &mockRegs{}
	channels := NewToggleChannels(regs)
	timer := NewToneTimer(regs, channels)
	sleep := &mockPin{num: 28, high: true}

	gate := NewPowerGate(sleep, timer)
	if sleep.high {
		t.Error("driver should sleep after construction")
	}
	if err := gate.Enable(); !errors.Is(err, ErrPowerOrder) {
		t.Errorf("Expected ErrPowerOrder, got %v", err)
	}

	timer.Configure(cfg220)
	if err := gate.Enable(); !errors.Is(err, ErrPowerOrder) {
		t.Errorf("enable before start: Expected ErrPowerOrder, got %v", err)
	}

	timer.Start()
	if err := gate.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !sleep.high || !gate.Enabled() {
		t.Error("driver not awake")
	}
	gate.Disable()
	if sleep.high || gate.Enabled() {
		t.Error("driver not asleep")
	}
}

func newMockEngine() (*ToneEngine, *mockRegs, [3]*mockPin) {
	return newMockEngineWith(ToneConfig{})
}

func newMockEngineWith(cfg ToneConfig) (*ToneEngine, *mockRegs, [3]*mockPin) {
	regs := &mockRegs{}
	pins := [3]*mockPin{{num: 29}, {num: 30}, {num: 28}}
	e := NewToneEngine(TonePeripherals{
		Timer:  regs,
		Toggle: regs,
		Routes: regs,
		LegA:   pins[0],
		LegB:   pins[1],
		Sleep:  pins[2],
	}, cfg)
	return e, regs, pins
}

func TestToneEngineStart(t *testing.T) {
	e, regs, pins := newMockEngine()
	if e.TimerClockHz() != DefaultTimerClockHz {
		t.Errorf("zero config not defaulted: %d", e.TimerClockHz())
	}

	if err := e.StartTone(220, 50); err != nil {
		t.Fatalf("StartTone failed: %v", err)
	}

	order := []string{
		"toggle0 pin29 low",
		"toggle1 pin30 high",
		"route0 timer0.compare[0]->gpiote.out[0]",
		"route1 timer0.compare[1]->gpiote.out[1]",
		"route2 timer0.compare[2]->gpiote.out[0]",
		"route3 timer0.compare[3]->gpiote.out[1]",
		"cc3 4545",
		"route0 on",
		"task0 on",
		"start",
	}
	last := -1
	for _, op := range order {
		i := regs.index(op)
		if i < 0 {
			t.Fatalf("op %q missing from %v", op, regs.ops)
		}
		if i < last {
			t.Errorf("op %q out of order in %v", op, regs.ops)
		}
		last = i
	}
	if !pins[2].high {
		t.Error("driver not woken")
	}

	st := e.Status()
	if st.State != Running || !st.Powered || st.Starts != 1 || st.Config != cfg220 {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestToneEngineBindsOnce(t *testing.T) {
	e, regs, _ := newMockEngine()
	e.StartTone(220, 50)
	e.StartTone(440, 50)
	e.StopTone()
	e.StartTone(880, 25)

	binds := 0
	for _, op := range regs.ops {
		if op == "toggle0 pin29 low" {
			binds++
		}
	}
	if binds != 1 {
		t.Errorf("channel 0 bound %d times", binds)
	}
	if e.Status().Starts != 3 {
		t.Errorf("Expected 3 starts, got %d", e.Status().Starts)
	}
}

func TestToneEngineStop(t *testing.T) {
	e, regs, pins := newMockEngine()
	e.StartTone(1000, 50)
	regs.reset()

	e.StopTone()
	if pins[2].high {
		t.Error("driver still awake")
	}
	if regs.ops[0] != "stop" {
		t.Errorf("Expected timer stop first, got %v", regs.ops)
	}
	if regs.index("route3 off") < 0 {
		t.Errorf("routes not disabled: %v", regs.ops)
	}
	if st := e.Status(); st.State != Idle || st.Powered {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestToneEngineRejectsInvalid(t *testing.T) {
	ClearEventRing()
	e, regs, pins := newMockEngine()
	if err := e.StartTone(0, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := e.StartTone(10, 50); !errors.Is(err, ErrFrequencyTooLow) {
		t.Errorf("Expected ErrFrequencyTooLow, got %v", err)
	}
	if len(regs.ops) != 0 || pins[0].sets != 0 {
		t.Errorf("rejected request touched hardware: %v", regs.ops)
	}

	events := Events()
	if len(events) != 2 || events[0].EventType != EvtToneRejected || events[1].Value1 != 10 {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestNewToneEnginePanicsOnMissingPeripheral(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewToneEngine(TonePeripherals{}, DefaultToneConfig())
}

func TestTimerWidthFor(t *testing.T) {
	tests := []struct {
		bits uint8
		want TimerWidth
		err  error
	}{
		{8, TimerWidth8, nil},
		{16, TimerWidth16, nil},
		{24, TimerWidth24, nil},
		{32, TimerWidth32, nil},
		{0, TimerWidth16, ErrInvalidInput},
		{12, TimerWidth16, ErrInvalidInput},
		{64, TimerWidth16, ErrInvalidInput},
	}
	for _, tt := range tests {
		got, err := TimerWidthFor(tt.bits)
		if got != tt.want || !errors.Is(err, tt.err) {
			t.Errorf("TimerWidthFor(%d) = %d, %v, want %d, %v", tt.bits, got, err, tt.want, tt.err)
		}
		if err == nil && got.Bits() != tt.bits {
			t.Errorf("TimerWidthFor(%d).Bits() = %d", tt.bits, got.Bits())
		}
	}
}

func TestToneEngineTimerWidth(t *testing.T) {
	e, regs, _ := newMockEngineWith(ToneConfig{TimerClockHz: DefaultTimerClockHz, TimerBits: 8})

	// 16 MHz / 4 kHz = 4000 ticks, too long for 8 bits
	if err := e.StartTone(4000, 50); !errors.Is(err, ErrFrequencyTooLow) {
		t.Errorf("Expected ErrFrequencyTooLow, got %v", err)
	}
	if err := e.StartTone(100000, 50); err != nil {
		t.Fatalf("StartTone failed: %v", err)
	}
	if regs.index("bitmode 8") < 0 {
		t.Errorf("counter width not written from config: %v", regs.ops)
	}
	if regs.index("bitmode 16") >= 0 {
		t.Errorf("16-bit mode written for an 8-bit timer: %v", regs.ops)
	}
	if st := e.Status(); st.Config.PeriodTicks != 160 || st.State != Running {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestToneEngineRejectsUnsupportedWidth(t *testing.T) {
	e, regs, pins := newMockEngineWith(ToneConfig{TimerClockHz: DefaultTimerClockHz, TimerBits: 12})
	if err := e.StartTone(4000, 50); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if len(regs.ops) != 0 || pins[0].sets != 0 {
		t.Errorf("rejected request touched hardware: %v", regs.ops)
	}
}
