// Package link drives the tone firmware of a Calliope mini from the host.
package link

import (
	"errors"
	"fmt"
	"io"
	"time"

	"calliope/core"
	"calliope/host/serial"
	"calliope/protocol"
)

// ErrVersion is returned when the device runs a different protocol.
var ErrVersion = errors.New("link: device protocol version mismatch")

// identifyChunk is how many dictionary bytes each identify requests.
const identifyChunk = 40

// knownMessages are the IDs the host was built with.
var knownMessages = map[string]uint16{
	"identify_response": protocol.MsgIdentifyResponse,
	"identify":          protocol.MsgIdentify,
	"tone_start":        protocol.MsgToneStart,
	"tone_stop":         protocol.MsgToneStop,
	"tone_query":        protocol.MsgToneQuery,
	"tone_state":        protocol.MsgToneState,
}

// Link is a connection to one device.
type Link struct {
	transport *protocol.HostTransport
	timeout   time.Duration

	dictionary *Dictionary
}

// Connect opens the serial port and identifies the device.
func Connect(cfg *serial.Config) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	l := New(port)
	if err := l.Identify(); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// New wraps an already open port without talking to the device.
func New(port io.ReadWriteCloser) *Link {
	return &Link{
		transport: protocol.NewHostTransport(port),
		timeout:   protocol.DefaultTimeout,
	}
}

// SetTimeout changes how long each request waits for its response.
func (l *Link) SetTimeout(d time.Duration) {
	l.timeout = d
}

// Identify reads the message dictionary and checks it against the IDs
// this host uses.
func (l *Link) Identify() error {
	var data []byte
	for offset := uint32(0); ; {
		chunk, err := l.identifyChunk(offset)
		if err != nil {
			return fmt.Errorf("identify at offset %d: %w", offset, err)
		}
		data = append(data, chunk...)
		offset += uint32(len(chunk))
		if len(chunk) < identifyChunk {
			break
		}
	}

	dict, err := ParseDictionary(data)
	if err != nil {
		return err
	}
	if dict.Version != protocol.Version {
		return fmt.Errorf("%w: device %q, host %q", ErrVersion, dict.Version, protocol.Version)
	}
	if err := dict.Check(knownMessages); err != nil {
		return err
	}
	l.dictionary = dict
	return nil
}

func (l *Link) identifyChunk(offset uint32) ([]byte, error) {
	err := l.transport.SendCommandWithTimeout(protocol.MsgIdentify, func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQUint(output, identifyChunk)
	}, l.timeout)
	if err != nil {
		return nil, err
	}

	args, err := l.transport.WaitFor(protocol.MsgIdentifyResponse, l.timeout)
	if err != nil {
		return nil, err
	}
	got, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return nil, err
	}
	if got != offset {
		return nil, fmt.Errorf("offset mismatch: expected %d, got %d", offset, got)
	}
	return protocol.DecodeVLQBytes(&args)
}

// Dictionary returns the dictionary read by Identify, or nil.
func (l *Link) Dictionary() *Dictionary {
	return l.dictionary
}

// StartTone plays hz at dutyPercent. A rejected request returns the
// device state together with the engine error, e.g. core.ErrFrequencyTooLow.
func (l *Link) StartTone(hz uint32, dutyPercent uint8) (protocol.ToneState, error) {
	st, err := l.request(protocol.MsgToneStart, func(output protocol.OutputBuffer) {
		protocol.EncodeToneStart(output, hz, dutyPercent)
	})
	if err != nil {
		return st, fmt.Errorf("tone_start %d Hz: %w", hz, err)
	}
	return st, nil
}

// StopTone silences the speaker.
func (l *Link) StopTone() (protocol.ToneState, error) {
	st, err := l.request(protocol.MsgToneStop, nil)
	if err != nil {
		return st, fmt.Errorf("tone_stop: %w", err)
	}
	return st, nil
}

// Query returns the device state.
func (l *Link) Query() (protocol.ToneState, error) {
	st, err := l.request(protocol.MsgToneQuery, nil)
	if err != nil {
		return st, fmt.Errorf("tone_query: %w", err)
	}
	return st, nil
}

func (l *Link) request(id uint16, args func(output protocol.OutputBuffer)) (protocol.ToneState, error) {
	if err := l.transport.SendCommandWithTimeout(id, args, l.timeout); err != nil {
		return protocol.ToneState{}, err
	}
	data, err := l.transport.WaitFor(protocol.MsgToneState, l.timeout)
	if err != nil {
		return protocol.ToneState{}, err
	}
	st, err := protocol.DecodeToneState(&data)
	if err != nil {
		return st, err
	}
	return st, core.StatusErr(st.Err)
}

// Close disconnects from the device.
func (l *Link) Close() error {
	return l.transport.Close()
}
