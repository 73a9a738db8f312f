package core

import "calliope/protocol"

// identifyChunkMax keeps an identify_response inside one frame.
const identifyChunkMax = 40

var toneEngine *ToneEngine

// InitToneCommands registers the link messages, in the order fixed by the
// protocol message IDs, and routes the tone commands to engine.
func InitToneCommands(engine *ToneEngine) {
	toneEngine = engine

	ids := [...]uint16{
		RegisterResponse("identify_response", "offset=%u data=%*s"),
		RegisterCommand("identify", "offset=%u count=%c", handleIdentify),
		RegisterCommand("tone_start", "freq=%u duty=%c", handleToneStart),
		RegisterCommand("tone_stop", "", handleToneStop),
		RegisterCommand("tone_query", "", handleToneQuery),
		RegisterResponse("tone_state", "state=%c prescaler=%c period=%u rising=%u falling=%u powered=%c err=%c"),
	}
	want := [...]uint16{
		protocol.MsgIdentifyResponse,
		protocol.MsgIdentify,
		protocol.MsgToneStart,
		protocol.MsgToneStop,
		protocol.MsgToneQuery,
		protocol.MsgToneState,
	}
	if ids != want {
		panic("tone commands registered out of protocol order")
	}
}

// ToneStateReport converts an engine status and the result of the
// command that produced it into a tone_state payload.
func ToneStateReport(st ToneStatus, err error) protocol.ToneState {
	return protocol.ToneState{
		State:     uint8(st.State),
		Prescaler: st.Config.PrescalerExponent,
		Period:    uint32(st.Config.PeriodTicks),
		Rising:    uint32(st.Config.CompareRising),
		Falling:   uint32(st.Config.CompareFalling),
		Powered:   st.Powered,
		Err:       StatusOf(err),
	}
}

func sendToneState(err error) error {
	report := ToneStateReport(toneEngine.Status(), err)
	return SendResponse("tone_state", func(output protocol.OutputBuffer) {
		protocol.EncodeToneState(output, report)
	})
}

// handleIdentify returns a chunk of the message dictionary.
func handleIdentify(data *[]byte) error {
	offset, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if count > identifyChunkMax {
		count = identifyChunkMax
	}

	dict := "version " + protocol.Version + "\n" + globalRegistry.GetDictionary()
	var chunk []byte
	if offset < uint32(len(dict)) {
		end := offset + count
		if end > uint32(len(dict)) {
			end = uint32(len(dict))
		}
		chunk = []byte(dict[offset:end])
	}

	return SendResponse("identify_response", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQBytes(output, chunk)
	})
}

// handleToneStart starts or retunes the tone.
// Format: tone_start freq=%u duty=%c
func handleToneStart(data *[]byte) error {
	hz, duty, err := protocol.DecodeToneStart(data)
	if err != nil {
		return err
	}
	startErr := toneEngine.StartTone(hz, uint32(duty))
	if startErr != nil {
		DebugPrintln("[TONE] start " + utoa(hz) + " Hz rejected: " + startErr.Error())
	}
	return sendToneState(startErr)
}

// handleToneStop silences the speaker.
func handleToneStop(_ *[]byte) error {
	toneEngine.StopTone()
	return sendToneState(nil)
}

// handleToneQuery reports the engine state.
func handleToneQuery(_ *[]byte) error {
	return sendToneState(nil)
}
