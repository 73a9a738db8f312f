package protocol

import "errors"

// ErrFrameTooLong is returned when a message does not fit one frame.
var ErrFrameTooLong = errors.New("protocol: message too long for frame")

// CommandHandler handles one decoded message. It must consume its own
// arguments from data.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the firmware end of the link. Receive parses frames from
// the host, dispatches their messages and ACKs every frame; responses are
// framed into output.
//
// Transport is driven from the firmware main loop and is not safe for
// concurrent use.
type Transport struct {
	scanner  frameScanner
	expected uint8 // next sequence expected from the host
	output   OutputBuffer
	handler  CommandHandler

	resetCallback func()
	flushCallback func()

	frames  uint32
	dropped uint32
}

// NewTransport returns a synchronized transport writing to output.
func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	return &Transport{
		scanner:  frameScanner{synced: true, requireDest: true},
		expected: MessageDest,
		output:   output,
		handler:  handler,
	}
}

// Receive consumes every complete frame in input.
func (t *Transport) Receive(input InputBuffer) {
	n := t.scanner.scan(input.Data(), t.handleFrame, t.sendAck)
	if n > 0 {
		input.Pop(n)
	}
}

func (t *Transport) handleFrame(seq uint8, payload []byte) {
	// A host that restarts begins again at MessageDest.
	if seq == MessageDest && t.expected != MessageDest {
		t.expected = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	if seq == t.expected {
		t.expected = nextSeq(seq)
		t.frames++
		t.sendAck()
		_ = t.dispatch(payload)
	} else {
		// Out of sequence: the ACK tells the host what we expect.
		t.dropped++
		t.sendAck()
	}
}

// dispatch runs every message in a frame. A panicking handler costs the
// link its sync instead of the firmware.
func (t *Transport) dispatch(payload []byte) error {
	defer func() {
		if r := recover(); r != nil {
			t.scanner.synced = false
		}
	}()

	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			t.scanner.synced = false
			return err
		}
		if t.handler == nil {
			return nil
		}
		if err := t.handler(uint16(id), &payload); err != nil {
			return err
		}
	}
	return nil
}

// sendAck writes the ACK ahead of any response to the same frame and
// flushes it.
func (t *Transport) sendAck() {
	t.output.Output(ackFrame(t.expected))
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// SendCommand frames one message with its arguments.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	ok := encodeFrame(t.output, t.expected, func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
	if !ok {
		return ErrFrameTooLong
	}
	return nil
}

// Reset returns the transport to its power-on state.
func (t *Transport) Reset() {
	t.scanner.synced = true
	t.expected = MessageDest
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// SetResetCallback registers a function run when the host restarts the
// sequence.
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback registers a function that pushes output to the wire
// immediately.
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}

// Stats returns the number of accepted and out-of-sequence frames.
func (t *Transport) Stats() (frames, dropped uint32) {
	return t.frames, t.dropped
}

// Synchronized reports whether the parser is aligned to frame boundaries.
func (t *Transport) Synchronized() bool {
	return t.scanner.synced
}
