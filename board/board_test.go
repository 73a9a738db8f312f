package board

import (
	"testing"

	"calliope/core"
)

func TestTakeOnce(t *testing.T) {
	opened := 0
	taker := NewTaker(func() Peripherals {
		opened++
		return Peripherals{}
	})

	if taker.Taken() {
		t.Fatal("fresh taker reports taken")
	}
	if _, ok := taker.Take(); !ok {
		t.Fatal("first Take failed")
	}
	if _, ok := taker.Take(); ok {
		t.Fatal("second Take succeeded")
	}
	if opened != 1 {
		t.Errorf("open called %d times, want 1", opened)
	}
	if !taker.Taken() {
		t.Error("taker should report taken")
	}
}

func TestMustTakePanicsOnSecondCall(t *testing.T) {
	taker := NewTaker(func() Peripherals { return Peripherals{} })
	taker.MustTake()

	defer func() {
		r := recover()
		if r != ErrPeripheralsTaken {
			t.Errorf("recovered %v, want ErrPeripheralsTaken", r)
		}
	}()
	taker.MustTake()
	t.Error("second MustTake returned")
}

func TestTakersAreIndependent(t *testing.T) {
	opened := 0
	open := func() Peripherals {
		opened++
		return Peripherals{}
	}
	first := NewTaker(open)
	second := NewTaker(open)

	first.MustTake()
	if second.Taken() {
		t.Error("taking one provider marked another as taken")
	}
	if _, ok := second.Take(); !ok {
		t.Error("fresh provider refused its first Take")
	}
	if _, ok := first.Take(); ok {
		t.Error("first provider handed out twice")
	}
	if opened != 2 {
		t.Errorf("open called %d times, want 2", opened)
	}
}

type fakePin uint8

func (p fakePin) Set(bool)      {}
func (p fakePin) Number() uint8 { return uint8(p) }

func TestTakeHandsOutOpenedPeripherals(t *testing.T) {
	taker := NewTaker(func() Peripherals {
		return Peripherals{Tone: core.TonePeripherals{Sleep: fakePin(MotorSleep)}}
	})
	p := taker.MustTake()
	if p.Tone.Sleep == nil || p.Tone.Sleep.Number() != uint8(MotorSleep) {
		t.Errorf("sleep pin = %v, want %d", p.Tone.Sleep, MotorSleep)
	}
}

func TestPinNames(t *testing.T) {
	tests := []struct {
		pin  Pin
		want string
	}{
		{MotorSleep, "MOTOR_NSLEEP"},
		{MotorIN1, "MOTOR_IN1"},
		{MotorIN2, "MOTOR_IN2"},
		{Row1, "ROW1"},
		{Col9, "COL9"},
		{ButtonA, "BTN_A"},
		{Pin(31), "P0_31"},
	}
	for _, tt := range tests {
		if got := tt.pin.String(); got != tt.want {
			t.Errorf("Pin(%d).String() = %q, want %q", uint8(tt.pin), got, tt.want)
		}
	}
}

func TestPinsUnique(t *testing.T) {
	seen := map[Pin]bool{}
	groups := [][]Pin{
		DisplayRows[:],
		DisplayCols[:],
		EdgePads[:],
		{ButtonA, ButtonB, MotorSleep, MotorIN1, MotorIN2, Microphone, RGBLED, SCL, SDA, UARTTX, UARTRX},
	}
	for _, g := range groups {
		for _, p := range g {
			if p > 31 {
				t.Errorf("pin %d out of port range", p)
			}
			if seen[p] {
				t.Errorf("pin %s assigned twice", p)
			}
			seen[p] = true
		}
	}
}
