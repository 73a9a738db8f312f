package core

import "errors"

// ToneError is a stable, comparable error code for the tone engine.
// It is a string newtype so it can be compared with == and errors.Is
// without allocating.
type ToneError string

func (e ToneError) Error() string { return string(e) }

// Configuration errors. These are raised before any register is touched.
const (
	ErrInvalidInput    ToneError = "tone: invalid input"
	ErrFrequencyTooLow ToneError = "tone: frequency out of timer range"
)

// Sequencing errors. These indicate misuse of the engine parts and never
// leave hardware half-configured.
const (
	ErrInvalidState   ToneError = "tone: invalid timer state"
	ErrChannelBound   ToneError = "tone: toggle channel already bound"
	ErrPolarity       ToneError = "tone: legs must use opposite polarity"
	ErrRouteOrder     ToneError = "tone: route sink not bound or timer not stopped"
	ErrRouteTableFull ToneError = "tone: route table full"
	ErrPowerOrder     ToneError = "tone: driver enabled before timer started"
)

// Link status codes carried in the tone_state response.
const (
	StatusOK uint8 = iota
	StatusInvalidInput
	StatusFrequencyTooLow
	StatusInvalidState
	StatusError
)

// StatusOf maps an engine error to its link status code.
func StatusOf(err error) uint8 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput
	case errors.Is(err, ErrFrequencyTooLow):
		return StatusFrequencyTooLow
	case errors.Is(err, ErrInvalidState):
		return StatusInvalidState
	}
	return StatusError
}

// StatusErr returns the engine error for a link status code, or nil.
func StatusErr(code uint8) error {
	switch code {
	case StatusOK:
		return nil
	case StatusInvalidInput:
		return ErrInvalidInput
	case StatusFrequencyTooLow:
		return ErrFrequencyTooLow
	case StatusInvalidState:
		return ErrInvalidState
	}
	return ToneError("tone: device error")
}
