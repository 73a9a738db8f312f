package core

// OutputPin is a push-pull digital output line handed out by the board.
// Platform-specific implementations handle actual hardware control.
type OutputPin interface {
	// Set drives the line high (true) or low (false)
	Set(high bool)

	// Number returns the port pin number, used by the toggle channels to
	// select the line they take over
	Number() uint8
}

// TimerMode selects between timer and counter operation.
type TimerMode uint8

const (
	TimerModeTimer   TimerMode = 0
	TimerModeCounter TimerMode = 1
)

// TimerWidth is the BITMODE field of the timer.
type TimerWidth uint8

const (
	TimerWidth16 TimerWidth = 0
	TimerWidth8  TimerWidth = 1
	TimerWidth24 TimerWidth = 2
	TimerWidth32 TimerWidth = 3
)

// Bits returns the counter width in bits.
func (w TimerWidth) Bits() uint8 {
	switch w {
	case TimerWidth8:
		return 8
	case TimerWidth24:
		return 24
	case TimerWidth32:
		return 32
	}
	return 16
}

// TimerWidthFor returns the BITMODE value for a counter of bits bits.
func TimerWidthFor(bits uint8) (TimerWidth, error) {
	switch bits {
	case 8:
		return TimerWidth8, nil
	case 16:
		return TimerWidth16, nil
	case 24:
		return TimerWidth24, nil
	case 32:
		return TimerWidth32, nil
	}
	return TimerWidth16, ErrInvalidInput
}

// TimerShorts is the SHORTS field: COMPAREn -> CLEAR/STOP shortcuts.
type TimerShorts uint32

const (
	ShortCompare0Clear TimerShorts = 1 << 0
	ShortCompare1Clear TimerShorts = 1 << 1
	ShortCompare2Clear TimerShorts = 1 << 2
	ShortCompare3Clear TimerShorts = 1 << 3
	ShortCompare0Stop  TimerShorts = 1 << 8
)

// CompareSlots is the number of CC registers the tone engine uses.
const CompareSlots = 4

// TimerRegisters is the register block of the countdown timer driving the
// tone. Each method writes one named field or triggers one task.
type TimerRegisters interface {
	SetMode(mode TimerMode)
	SetBitMode(width TimerWidth)

	// SetPrescaler writes the PRESCALER field: f = clock / 2^exponent
	SetPrescaler(exponent uint8)

	// SetCompare writes CC[slot]
	SetCompare(slot int, value uint32)

	SetShorts(shorts TimerShorts)

	TaskStart()
	TaskStop()
	TaskClear()
}

// Polarity is the level a toggle channel drives when it is armed.
type Polarity uint8

const (
	Low Polarity = iota
	High
)

func (p Polarity) String() string {
	if p == High {
		return "high"
	}
	return "low"
}

// ToggleChannelCount is the number of GPIOTE channels on the nRF51.
const ToggleChannelCount = 4

// ToggleRegisters is the GPIO task/event block. A channel in task mode
// owns its pin and flips it each time its OUT task fires.
type ToggleRegisters interface {
	// ConfigureToggle puts channel ch in task mode on pin, toggling on
	// every OUT task, starting at initial
	ConfigureToggle(ch int, pin uint8, initial Polarity)

	// SetTaskEnable gates the channel's OUT task input. A disabled channel
	// ignores routed events and holds its pin at the initial level;
	// re-enabling re-arms the channel at that level.
	SetTaskEnable(ch int, enabled bool)
}

// RouteRegisters is the programmable event-to-task interconnect.
type RouteRegisters interface {
	// Channels returns the number of route channels available
	Channels() int

	// SetEndpoints binds a compare event of the tone timer to the OUT task
	// of a toggle channel on route channel ch
	SetEndpoints(ch int, event EventSource, task TaskSink)

	EnableChannel(ch int)
	DisableChannel(ch int)
}
