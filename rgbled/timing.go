package rgbled

// Timing is a WS2812 bit timing budget in nanoseconds.
type Timing struct {
	T0H       uint32 // high time of a 0 bit
	T1H       uint32 // high time of a 1 bit
	Period    uint32 // one bit
	Reset     uint32 // minimum low time that latches the frame
	Tolerance uint32 // allowed error on T0H, T1H and Period
}

// WS2812 is the datasheet timing.
var WS2812 = Timing{
	T0H:       350,
	T1H:       700,
	Period:    1250,
	Reset:     50000,
	Tolerance: 150,
}

// Cycles is a Timing expressed in CPU cycles.
type Cycles struct {
	T0H, T1H, Period, Reset uint32
}

// Cycles rounds each interval to the nearest whole cycle of a cpuHz
// clock. Reset is rounded up.
func (t Timing) Cycles(cpuHz uint32) Cycles {
	return Cycles{
		T0H:    nsToCycles(t.T0H, cpuHz, false),
		T1H:    nsToCycles(t.T1H, cpuHz, false),
		Period: nsToCycles(t.Period, cpuHz, false),
		Reset:  nsToCycles(t.Reset, cpuHz, true),
	}
}

// Check reports whether a cpuHz clock can meet the timing: the rounded
// intervals are within tolerance and a 0 bit stays shorter than a 1 bit.
func (t Timing) Check(cpuHz uint32) error {
	if cpuHz == 0 {
		return ErrClockTooSlow
	}
	c := t.Cycles(cpuHz)
	if c.T0H == 0 || c.T0H >= c.T1H {
		return ErrClockTooSlow
	}
	for _, iv := range [][2]uint32{
		{c.T0H, t.T0H},
		{c.T1H, t.T1H},
		{c.Period, t.Period},
	} {
		got := cyclesToNs(iv[0], cpuHz)
		if absDiff(got, iv[1]) > t.Tolerance {
			return ErrClockTooSlow
		}
	}
	return nil
}

func nsToCycles(ns, cpuHz uint32, up bool) uint32 {
	n := uint64(ns) * uint64(cpuHz)
	if up {
		return uint32((n + 999_999_999) / 1_000_000_000)
	}
	return uint32((n + 500_000_000) / 1_000_000_000)
}

func cyclesToNs(cycles, cpuHz uint32) uint32 {
	return uint32(uint64(cycles) * 1_000_000_000 / uint64(cpuHz))
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
