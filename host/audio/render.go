// Package audio turns the simulated speaker outputs into sound.
//
// The speaker sits between the two motor driver legs, so the signal is
// leg A minus leg B. A Renderer steps the simulated timer clock and box
// averages that difference down to the audio sample rate.
package audio

import (
	"encoding/binary"
	"math"

	"calliope/sim"
)

// Source is a simulated clock; sim.Device and sim.Fabric satisfy it.
type Source interface {
	Run(n int, sample func(sim.Levels))
}

// Renderer produces mono float32 PCM from a Source.
type Renderer struct {
	src        Source
	legA, legB uint8
	clockHz    uint64
	rate       uint64
	acc        uint64 // ticks owed to the next sample, times rate

	// Volume scales the output, 1 is full scale
	Volume float32
}

// NewRenderer samples legA and legB of src, whose clock runs at clockHz,
// at rate samples per second.
func NewRenderer(src Source, legA, legB uint8, clockHz uint32, rate int) *Renderer {
	return &Renderer{
		src:     src,
		legA:    legA,
		legB:    legB,
		clockHz: uint64(clockHz),
		rate:    uint64(rate),
		Volume:  0.5,
	}
}

// Render fills out with the next samples.
func (r *Renderer) Render(out []float32) {
	for i := range out {
		r.acc += r.clockHz
		n := r.acc / r.rate
		r.acc %= r.rate

		var sum int
		r.src.Run(int(n), func(l sim.Levels) {
			if l.High(r.legA) {
				sum++
			}
			if l.High(r.legB) {
				sum--
			}
		})
		if n == 0 {
			out[i] = 0
			continue
		}
		out[i] = r.Volume * float32(sum) / float32(n)
	}
}

// Samples renders the given number of seconds of audio.
func (r *Renderer) Samples(seconds float64) []float32 {
	out := make([]float32, int(seconds*float64(r.rate)))
	r.Render(out)
	return out
}

// EncodeFloat32 packs samples as little endian float32, the format the
// player consumes.
func EncodeFloat32(samples []float32) []byte {
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(s))
	}
	return buf
}

// Peak returns the largest absolute sample.
func Peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}
