package board

import (
	"errors"
	"sync"

	"calliope/core"
)

// ErrPeripheralsTaken is the panic value of MustTake on a second call.
// It means the board was initialised twice; retrying cannot help.
var ErrPeripheralsTaken = errors.New("board: peripherals already taken")

// Peripherals is the exclusive hand-out of the board hardware.
type Peripherals struct {
	// Tone holds the timer, toggle channels, route fabric and the three
	// H-bridge lines used by the tone engine.
	Tone core.TonePeripherals
}

// OpenFunc builds the peripheral handles. It runs at most once per Taker.
type OpenFunc func() Peripherals

// Taker guards a set of peripherals so they are handed out only once.
type Taker struct {
	mu    sync.Mutex
	open  OpenFunc
	taken bool
}

// NewTaker returns a Taker that builds its peripherals with open.
func NewTaker(open OpenFunc) *Taker {
	return &Taker{open: open}
}

// Take returns the peripherals on the first call and false on every
// later one.
func (t *Taker) Take() (Peripherals, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.taken {
		return Peripherals{}, false
	}
	t.taken = true
	return t.open(), true
}

// MustTake is Take for startup code: a second call panics with
// ErrPeripheralsTaken.
func (t *Taker) MustTake() Peripherals {
	p, ok := t.Take()
	if !ok {
		panic(ErrPeripheralsTaken)
	}
	return p
}

// Taken reports whether the peripherals have been handed out.
func (t *Taker) Taken() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taken
}
