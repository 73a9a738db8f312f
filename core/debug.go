package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// ToneEvent captures one engine transition for post-mortem analysis
type ToneEvent struct {
	EventType uint8
	Seq       uint32 // Monotonic event counter
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtToneConfigure = 1 // timer programmed (period, prescaler)
	EvtToneStart     = 2 // timer started (period, start count)
	EvtToneStop      = 3 // timer stopped (period)
	EvtToneRejected  = 4 // request rejected (frequency, duty)
	EvtPowerOn       = 5 // driver woken
	EvtPowerOff      = 6 // driver put to sleep
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool

	eventRing     [EventRingSize]ToneEvent
	eventRingHead uint8
	eventSeq      uint32

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, RTT, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// debugEvent records an engine event and echoes it when debug is enabled.
func debugEvent(eventType uint8, value1, value2 uint32) {
	RecordEvent(eventType, value1, value2)
	if debugEnabled {
		DebugAsync("[TONE] " + eventName(eventType) + " v1=" + utoa(value1) + " v2=" + utoa(value2))
	}
}

// RecordEvent captures an event in the ring buffer. It never blocks.
func RecordEvent(eventType uint8, value1, value2 uint32) {
	state := lockEvents()
	defer unlockEvents(state)

	eventSeq++
	idx := eventRingHead
	eventRing[idx] = ToneEvent{
		EventType: eventType,
		Seq:       eventSeq,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first.
func Events() []ToneEvent {
	out := make([]ToneEvent, 0, EventRingSize)
	state := lockEvents()
	defer unlockEvents(state)

	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// DumpEventRing outputs the event ring through the debug writer
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[TONE] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[TONE] " + eventName(evt.EventType) +
			" seq=" + utoa(evt.Seq) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TONE] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	state := lockEvents()
	defer unlockEvents(state)

	for i := range eventRing {
		eventRing[i] = ToneEvent{}
	}
	eventRingHead = 0
	eventSeq = 0
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtToneConfigure:
		return "CONFIGURE"
	case EvtToneStart:
		return "START"
	case EvtToneStop:
		return "STOP"
	case EvtToneRejected:
		return "REJECTED"
	case EvtPowerOn:
		return "POWER_ON"
	case EvtPowerOff:
		return "POWER_OFF"
	}
	return "UNKNOWN"
}
