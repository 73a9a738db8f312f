package core

// Timer clock and width of TIMER0 on the nRF51 as used by the tone engine.
const (
	DefaultTimerClockHz = 16000000
	DefaultTimerBits    = 16
)

// Prescaler selection. Below lowFrequencyThresholdHz the unscaled period
// no longer fits 16 bits at 16 MHz, so the clock is divided by 2^4.
const (
	lowFrequencyThresholdHz  = 245
	lowFrequencyPrescaler    = 4
	maxDutyPercent           = 50
	minPeriodTicks           = 4
	prescalerExponentMaximum = 9 // PRESCALER register accepts 0..9
)

// ToneRequest is the caller's desired output.
type ToneRequest struct {
	FrequencyHz uint32
	DutyPercent uint32
}

// TimerConfig holds the register values derived from a ToneRequest.
//
// CompareFalling and CompareRising mark the duty-cycle edges of the two
// legs within one period; the period boundary edges sit at PeriodTicks-1
// and PeriodTicks.
type TimerConfig struct {
	PrescalerExponent uint8
	PeriodTicks       uint16
	CompareRising     uint16
	CompareFalling    uint16
}

// ActiveTicks is the number of timer ticks per period during which each
// H-bridge leg is driven high.
func (c TimerConfig) ActiveTicks() uint16 {
	return c.CompareRising
}

// OutputHz is the frequency the hardware will actually produce.
func (c TimerConfig) OutputHz(timerClockHz uint32) uint32 {
	if c.PeriodTicks == 0 {
		return 0
	}
	return (timerClockHz >> c.PrescalerExponent) / uint32(c.PeriodTicks)
}

// Valid reports whether the config can be written to the timer as-is.
func (c TimerConfig) Valid() bool {
	return c.PrescalerExponent <= prescalerExponentMaximum &&
		c.PeriodTicks >= minPeriodTicks &&
		c.CompareRising < c.CompareFalling &&
		c.CompareFalling < c.PeriodTicks
}

// ComputeTimerConfig turns a frequency and duty cycle into timer register
// values. Division truncates, so the produced frequency is never below the
// requested one. The function is pure.
func ComputeTimerConfig(frequencyHz, dutyPercent, timerClockHz uint32, timerBits uint8) (TimerConfig, error) {
	if frequencyHz == 0 || dutyPercent == 0 || dutyPercent > maxDutyPercent {
		return TimerConfig{}, ErrInvalidInput
	}
	if timerClockHz == 0 || timerBits == 0 || timerBits > 32 {
		return TimerConfig{}, ErrInvalidInput
	}

	var exponent uint8
	if frequencyHz < lowFrequencyThresholdHz {
		exponent = lowFrequencyPrescaler
	}

	// 64-bit so that frequencyHz << exponent cannot overflow.
	period := uint64(timerClockHz) / (uint64(frequencyHz) << exponent)

	maxTicks := uint64(1)<<timerBits - 1
	if period > maxTicks || period > 0xFFFF {
		return TimerConfig{}, ErrFrequencyTooLow
	}

	// The rising edge is one tick before the duty point; a zero duty point
	// would underflow it.
	duty := period * uint64(dutyPercent) / 100
	if period < minPeriodTicks || duty == 0 {
		return TimerConfig{}, ErrFrequencyTooLow
	}

	return TimerConfig{
		PrescalerExponent: exponent,
		PeriodTicks:       uint16(period),
		CompareRising:     uint16(duty - 1),
		CompareFalling:    uint16(period - duty),
	}, nil
}
