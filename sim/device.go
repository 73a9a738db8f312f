package sim

import (
	"io"
	"sync"

	"calliope/board"
	"calliope/core"
	"calliope/protocol"
)

// Device is a simulated Calliope mini running the tone firmware. The
// host side talks to it through Read and Write as if it were the serial
// port; every write is handled synchronously by the firmware transport.
//
// The tone commands use package-level firmware state, so only one Device
// should be live at a time.
type Device struct {
	Fabric *Fabric
	Engine *core.ToneEngine

	mu        sync.Mutex
	transport *protocol.Transport
	input     *protocol.FifoBuffer
	out       *protocol.ScratchOutput

	chunks chan []byte
	rest   []byte
	closed chan struct{}
	once   sync.Once
}

// NewDevice boots a simulated device with the given timer setup.
func NewDevice(cfg core.ToneConfig) *Device {
	f := New()
	d := &Device{
		Fabric: f,
		Engine: core.NewToneEngine(
			f.Peripherals(uint8(board.MotorIN1), uint8(board.MotorIN2), uint8(board.MotorSleep)),
			cfg,
		),
		input:  protocol.NewFifoBuffer(2 * protocol.MessageMax),
		out:    protocol.NewScratchOutput(),
		chunks: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
	d.transport = protocol.NewTransport(d.out, core.DispatchCommand)

	core.InitToneCommands(d.Engine)
	core.SetResponseSender(d.transport)
	return d
}

// Write feeds host bytes to the firmware.
func (d *Device) Write(b []byte) (int, error) {
	select {
	case <-d.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	d.mu.Lock()
	var out []byte
	for rest := b; len(rest) > 0; {
		n := d.input.Write(rest)
		rest = rest[n:]
		d.transport.Receive(d.input)
		if n == 0 && d.input.Free() == 0 {
			// Full of bytes that never form a frame
			d.input.Reset()
		}
		out = append(out, d.out.Result()...)
		d.out.Reset()
	}
	d.mu.Unlock()

	if len(out) > 0 {
		select {
		case d.chunks <- out:
		case <-d.closed:
			return 0, io.ErrClosedPipe
		}
	}
	return len(b), nil
}

// Read returns firmware output, blocking until some is available.
func (d *Device) Read(b []byte) (int, error) {
	if len(d.rest) == 0 {
		select {
		case chunk := <-d.chunks:
			d.rest = chunk
		case <-d.closed:
			return 0, io.EOF
		}
	}
	n := copy(b, d.rest)
	d.rest = d.rest[n:]
	return n, nil
}

// Close disconnects the port.
func (d *Device) Close() error {
	d.once.Do(func() { close(d.closed) })
	return nil
}

// Run advances the device clock by n ticks; see Fabric.Run.
func (d *Device) Run(n int, sample func(Levels)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Fabric.Run(n, sample)
}
