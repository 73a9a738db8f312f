package protocol

// ToneState is the payload of tone_state.
type ToneState struct {
	State     uint8 // 0 idle, 1 configured, 2 running
	Prescaler uint8
	Period    uint32
	Rising    uint32
	Falling   uint32
	Powered   bool
	Err       uint8 // status of the command that triggered the report
}

// EncodeToneState writes the tone_state arguments.
func EncodeToneState(output OutputBuffer, s ToneState) {
	EncodeVLQUint(output, uint32(s.State))
	EncodeVLQUint(output, uint32(s.Prescaler))
	EncodeVLQUint(output, s.Period)
	EncodeVLQUint(output, s.Rising)
	EncodeVLQUint(output, s.Falling)
	var powered uint32
	if s.Powered {
		powered = 1
	}
	EncodeVLQUint(output, powered)
	EncodeVLQUint(output, uint32(s.Err))
}

// DecodeToneState reads the tone_state arguments.
func DecodeToneState(data *[]byte) (ToneState, error) {
	var v [7]uint32
	for i := range v {
		x, err := DecodeVLQUint(data)
		if err != nil {
			return ToneState{}, err
		}
		v[i] = x
	}
	return ToneState{
		State:     uint8(v[0]),
		Prescaler: uint8(v[1]),
		Period:    v[2],
		Rising:    v[3],
		Falling:   v[4],
		Powered:   v[5] != 0,
		Err:       uint8(v[6]),
	}, nil
}

// EncodeToneStart writes the tone_start arguments.
func EncodeToneStart(output OutputBuffer, frequencyHz uint32, dutyPercent uint8) {
	EncodeVLQUint(output, frequencyHz)
	EncodeVLQUint(output, uint32(dutyPercent))
}

// DecodeToneStart reads the tone_start arguments.
func DecodeToneStart(data *[]byte) (frequencyHz uint32, dutyPercent uint8, err error) {
	if frequencyHz, err = DecodeVLQUint(data); err != nil {
		return 0, 0, err
	}
	duty, err := DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	if duty > 0xFF {
		duty = 0xFF
	}
	return frequencyHz, uint8(duty), nil
}
