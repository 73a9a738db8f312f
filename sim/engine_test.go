package sim

import (
	"errors"
	"testing"

	"calliope/board"
	"calliope/core"
)

const (
	legA  = uint8(board.MotorIN1)
	legB  = uint8(board.MotorIN2)
	sleep = uint8(board.MotorSleep)
)

func newEngine(t *testing.T) (*Fabric, *core.ToneEngine) {
	t.Helper()
	f := New()
	e := core.NewToneEngine(
		f.Peripherals(legA, legB, sleep),
		core.DefaultToneConfig(),
	)
	return f, e
}

// highCounts counts, over one window of samples, how often each leg is
// high and how often both are.
func highCounts(samples []Levels) (a, b, both int) {
	for _, s := range samples {
		ha := s.High(legA)
		hb := s.High(legB)
		if ha {
			a++
		}
		if hb {
			b++
		}
		if ha && hb {
			both++
		}
	}
	return
}

func TestEngineAntiPhase(t *testing.T) {
	tests := []struct {
		hz, duty uint32
	}{
		{4000, 50},
		{4000, 25},
		{1000, 10},
		{220, 50},
	}

	for _, tt := range tests {
		f, e := newEngine(t)
		if err := e.StartTone(tt.hz, tt.duty); err != nil {
			t.Fatalf("StartTone(%d, %d): %v", tt.hz, tt.duty, err)
		}
		cfg := e.Status().Config
		window := int(cfg.PeriodTicks) << cfg.PrescalerExponent

		// Two full periods, counted over the second.
		f.Step(window)
		a, b, both := highCounts(f.Step(window))

		want := int(cfg.ActiveTicks()) << cfg.PrescalerExponent
		if a != want || b != want {
			t.Errorf("%d Hz/%d%%: high ticks A=%d B=%d, want %d", tt.hz, tt.duty, a, b, want)
		}
		if both != 0 {
			t.Errorf("%d Hz/%d%%: legs high together for %d ticks", tt.hz, tt.duty, both)
		}
	}
}

func TestEngineTogglesTwicePerPeriod(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(4000, 50); err != nil {
		t.Fatal(err)
	}
	period := int(e.Status().Config.PeriodTicks)
	f.Step(period * 10)

	for ch := 0; ch < 2; ch++ {
		if got := f.Toggle.Toggles(ch); got != 20 {
			t.Errorf("channel %d toggled %d times, want 20", ch, got)
		}
	}
	if got := f.Timer.Events(3); got != 10 {
		t.Errorf("COMPARE[3] fired %d times, want 10", got)
	}
}

func TestEngineCompareValues220(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(220, 50); err != nil {
		t.Fatal(err)
	}

	if got := f.Timer.Prescaler(); got != 4 {
		t.Errorf("prescaler = %d, want 4", got)
	}
	want := [4]uint32{2273, 2271, 4544, 4545}
	for slot, w := range want {
		if got := f.Timer.Compare(slot); got != w {
			t.Errorf("CC[%d] = %d, want %d", slot, got, w)
		}
	}
}

func TestEngineInitialLevels(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(1000, 50); err != nil {
		t.Fatal(err)
	}
	l := f.Levels()
	if l.High(legA) {
		t.Error("leg A should start low")
	}
	if !l.High(legB) {
		t.Error("leg B should start high")
	}
	if !l.High(sleep) {
		t.Error("driver should be awake while playing")
	}
}

func TestEngineStartSequence(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(440, 50); err != nil {
		t.Fatal(err)
	}

	trace := f.Trace()
	lastConfig := -1
	firstRoute := -1
	for i, w := range trace {
		if w.Peripheral == "gpiote" && w.Register == "CONFIG" {
			lastConfig = i
		}
		if w.Peripheral == "ppi" && w.Register == "ENDPOINTS" && firstRoute < 0 {
			firstRoute = i
		}
	}
	if lastConfig < 0 || firstRoute < 0 || lastConfig > firstRoute {
		t.Fatalf("channels must be bound before routes (config %d, route %d)", lastConfig, firstRoute)
	}

	start := f.IndexOf(0, "timer0", "TASKS_START")
	if start < 0 {
		t.Fatal("timer never started")
	}
	if trace[start].LiveRoutes != 4 {
		t.Errorf("routes live at start = %d, want 4", trace[start].LiveRoutes)
	}

	wake := -1
	for i, w := range trace {
		if w.Peripheral == "gpio" && w.Register == "OUTSET" && w.Index == int(sleep) {
			wake = i
		}
	}
	if wake < start {
		t.Errorf("driver woken at %d, before timer start at %d", wake, start)
	}
}

func TestEngineReconfigure(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(220, 50); err != nil {
		t.Fatal(err)
	}
	f.Step(50000)
	f.ResetTrace()

	if err := e.StartTone(440, 50); err != nil {
		t.Fatal(err)
	}

	for _, w := range f.Writes("timer0", "CC") {
		if w.Running {
			t.Errorf("CC[%d] written while running", w.Index)
		}
		if w.LiveRoutes != 0 {
			t.Errorf("CC[%d] written with %d live routes", w.Index, w.LiveRoutes)
		}
	}
	for _, w := range f.Writes("timer0", "PRESCALER") {
		if w.Running || w.LiveRoutes != 0 {
			t.Errorf("PRESCALER written while live: %+v", w)
		}
	}

	stop := f.IndexOf(0, "timer0", "TASKS_STOP")
	clear := f.IndexOf(0, "timer0", "TASKS_CLEAR")
	cc := f.IndexOf(0, "timer0", "CC")
	start := f.IndexOf(0, "timer0", "TASKS_START")
	if !(stop >= 0 && stop < clear && clear < cc && cc < start) {
		t.Errorf("reconfigure order stop=%d clear=%d cc=%d start=%d", stop, clear, cc, start)
	}

	st := e.Status()
	if st.State != core.Running || !st.Powered || st.Starts != 2 {
		t.Errorf("status = %+v", st)
	}
	if st.Config.PrescalerExponent != 0 || st.Config.PeriodTicks != 36363 {
		t.Errorf("config = %+v, want 440 Hz values", st.Config)
	}

	// The waveform after reconfiguring keeps its shape.
	window := int(st.Config.PeriodTicks)
	f.Step(window)
	a, b, both := highCounts(f.Step(window))
	if a != int(st.Config.ActiveTicks()) || b != a || both != 0 {
		t.Errorf("after reconfigure A=%d B=%d both=%d", a, b, both)
	}
}

func TestEngineStop(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(1000, 50); err != nil {
		t.Fatal(err)
	}
	f.Step(10000)
	f.ResetTrace()
	e.StopTone()

	trace := f.Trace()
	if len(trace) == 0 {
		t.Fatal("StopTone wrote nothing")
	}
	first := trace[0]
	if first.Peripheral != "gpio" || first.Register != "OUTCLR" || first.Index != int(sleep) {
		t.Errorf("first write on stop = %+v, want driver sleep", first)
	}
	if f.Timer.Running() {
		t.Error("timer still running")
	}
	for ch := 0; ch < core.MaxRoutes; ch++ {
		if f.Routes.Enabled(ch) {
			t.Errorf("route %d still enabled", ch)
		}
	}

	before := f.Levels()
	f.Step(5000)
	if f.Levels() != before {
		t.Error("outputs changed after stop")
	}

	st := e.Status()
	if st.State != core.Idle || st.Powered {
		t.Errorf("status after stop = %+v", st)
	}

	// Stopping twice is harmless.
	e.StopTone()
}

func TestEngineRestartAfterStop(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(1000, 50); err != nil {
		t.Fatal(err)
	}
	e.StopTone()
	if err := e.StartTone(2000, 25); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !f.Timer.Running() {
		t.Error("timer not running after restart")
	}
	l := f.Levels()
	if l.High(legA) || !l.High(legB) {
		t.Error("legs not re-armed at their initial levels")
	}
}

func TestEngineRejectsBeforeTouchingHardware(t *testing.T) {
	tests := []struct {
		hz, duty uint32
		want     error
	}{
		{0, 50, core.ErrInvalidInput},
		{440, 0, core.ErrInvalidInput},
		{440, 51, core.ErrInvalidInput},
		{10, 50, core.ErrFrequencyTooLow},
		{8000000, 50, core.ErrFrequencyTooLow},
	}

	for _, tt := range tests {
		f, e := newEngine(t)
		f.ResetTrace()
		err := e.StartTone(tt.hz, tt.duty)
		if !errors.Is(err, tt.want) {
			t.Errorf("StartTone(%d, %d) = %v, want %v", tt.hz, tt.duty, err, tt.want)
		}
		if n := len(f.Trace()); n != 0 {
			t.Errorf("StartTone(%d, %d) wrote %d registers", tt.hz, tt.duty, n)
		}
	}
}

func TestEngineRejectWhilePlayingKeepsTone(t *testing.T) {
	f, e := newEngine(t)
	if err := e.StartTone(440, 50); err != nil {
		t.Fatal(err)
	}
	f.ResetTrace()
	if err := e.StartTone(0, 50); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	if len(f.Trace()) != 0 {
		t.Error("rejected request touched hardware")
	}
	if !f.Timer.Running() || !e.Status().Powered {
		t.Error("tone should keep playing")
	}
}
