//go:build nrf51

// Firmware for the Calliope mini: plays tones on request from the host
// over the UART link.
package main

import (
	"machine"
	"time"

	"calliope/board"
	"calliope/core"
	"calliope/protocol"
	"calliope/targets/nrf51"
)

const baudRate = 115200

var (
	uart = machine.UART0

	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	transport    *protocol.Transport

	// Debug counters
	linkErrors uint32
	overruns   uint32
)

func main() {
	err := uart.Configure(machine.UARTConfig{
		BaudRate: baudRate,
		TX:       machine.Pin(board.UARTTX),
		RX:       machine.Pin(board.UARTRX),
	})
	if err != nil {
		return
	}

	// println shares the link UART, so debug text stays off here and the
	// event ring records the engine transitions instead.
	core.SetDebugEnabled(false)

	periph := nrf51.NewBoard().MustTake()
	engine := core.NewToneEngine(periph.Tone, core.DefaultToneConfig())
	core.InitToneCommands(engine)

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()

	transport = protocol.NewTransport(outputBuffer, core.DispatchCommand)
	transport.SetResetCallback(func() {
		// Host restarted: silence the speaker and drop stale data
		engine.StopTone()
		inputBuffer.Reset()
		outputBuffer.Reset()
		core.ClearEventRing()
	})
	// The ACK must reach the host before the response it precedes
	transport.SetFlushCallback(flush)
	core.SetResponseSender(transport)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					linkErrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			for uart.Buffered() > 0 {
				b, err := uart.ReadByte()
				if err != nil {
					linkErrors++
					break
				}
				if inputBuffer.Write([]byte{b}) == 0 {
					overruns++
				}
			}

			if inputBuffer.Available() > 0 {
				transport.Receive(inputBuffer)
			}
			flush()
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

// flush writes pending output to the UART.
func flush() {
	out := outputBuffer.Result()
	if len(out) == 0 {
		return
	}
	if _, err := uart.Write(out); err != nil {
		linkErrors++
	}
	outputBuffer.Reset()
}
