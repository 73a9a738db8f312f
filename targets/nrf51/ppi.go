//go:build nrf51

package nrf51

import (
	"device/nrf"

	"calliope/core"
)

// ppiChannels is the number of programmable PPI channels on the nRF51.
const ppiChannels = 16

// PPI drives the programmable peripheral interconnect.
type PPI struct{}

var _ core.RouteRegisters = PPI{}

func (PPI) Channels() int { return ppiChannels }

func (PPI) SetEndpoints(ch int, event core.EventSource, task core.TaskSink) {
	nrf.PPI.CH[ch].EEP.Set(compareEvent(event))
	nrf.PPI.CH[ch].TEP.Set(outTask(task))
}

func (PPI) EnableChannel(ch int) {
	nrf.PPI.CHENSET.Set(1 << uint(ch))
}

func (PPI) DisableChannel(ch int) {
	nrf.PPI.CHENCLR.Set(1 << uint(ch))
}
