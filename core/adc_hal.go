package core

// ADCReader is a one-shot analog input. machine.ADC satisfies it on
// TinyGo targets; readings are scaled to 16 bits.
type ADCReader interface {
	Get() uint16
}
