// Package board names the Calliope mini v1 pins by function and hands the
// board peripherals out exactly once.
package board

// Pin is an nRF51 port 0 pin number.
type Pin uint8

// LED matrix, wired as 3 rows x 9 columns.
const (
	Row1 Pin = 13
	Row2 Pin = 14
	Row3 Pin = 15

	Col1 Pin = 4
	Col2 Pin = 5
	Col3 Pin = 6
	Col4 Pin = 7
	Col5 Pin = 8
	Col6 Pin = 9
	Col7 Pin = 10
	Col8 Pin = 11
	Col9 Pin = 12
)

// Matrix dimensions.
const (
	NumRows = 3
	NumCols = 9
)

// Buttons.
const (
	ButtonA Pin = 17
	ButtonB Pin = 16
)

// H-bridge driving the speaker / motor.
const (
	MotorSleep Pin = 28 // nSLEEP, active low
	MotorIN1   Pin = 29
	MotorIN2   Pin = 30
)

// Other on-board devices.
const (
	Microphone Pin = 3
	RGBLED     Pin = 18 // WS2812
	AccelInt   Pin = 21
	P0_23      Pin = 23 // free
)

// I2C, shared by the internal sensors and the edge connector.
const (
	SCL Pin = 19
	SDA Pin = 20
)

// UART to the interface chip.
const (
	UARTTX Pin = 24
	UARTRX Pin = 25
)

// SPI on the edge connector, shared with the matrix columns.
const (
	MOSI Pin = 9
	MISO Pin = 8
	SCK  Pin = 7
)

// Edge connector pads that are not otherwise used.
const (
	Edge00 Pin = 0
	Edge01 Pin = 1
	Edge02 Pin = 2
	Edge03 Pin = 22
	Edge16 Pin = 26
	Edge17 Pin = 27
)

// Display pin groups in scan order.
var (
	DisplayRows = [NumRows]Pin{Row1, Row2, Row3}
	DisplayCols = [NumCols]Pin{Col1, Col2, Col3, Col4, Col5, Col6, Col7, Col8, Col9}
	EdgePads    = [...]Pin{Edge00, Edge01, Edge02, Edge03, Edge16, Edge17}
)

var pinNames = map[Pin]string{
	Row1: "ROW1", Row2: "ROW2", Row3: "ROW3",
	Col1: "COL1", Col2: "COL2", Col3: "COL3", Col4: "COL4", Col5: "COL5",
	Col6: "COL6", Col7: "COL7", Col8: "COL8", Col9: "COL9",
	ButtonA: "BTN_A", ButtonB: "BTN_B",
	MotorSleep: "MOTOR_NSLEEP", MotorIN1: "MOTOR_IN1", MotorIN2: "MOTOR_IN2",
	Microphone: "MIC", RGBLED: "RGB_LED", AccelInt: "ACCEL_INT", P0_23: "P0_23",
	SCL: "SCL", SDA: "SDA",
	UARTTX: "UART_TX", UARTRX: "UART_RX",
	Edge00: "PAD0", Edge01: "PAD1", Edge02: "PAD2", Edge03: "PAD3",
	Edge16: "EDGE16", Edge17: "EDGE17",
}

// String returns the board function of the pin, or "P0_nn".
func (p Pin) String() string {
	if name, ok := pinNames[p]; ok {
		return name
	}
	if p < 10 {
		return "P0_0" + string(rune('0'+p))
	}
	return "P0_" + string(rune('0'+p/10)) + string(rune('0'+p%10))
}
