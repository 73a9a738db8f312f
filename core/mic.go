package core

import "golang.org/x/exp/constraints"

// MicWindow is the number of samples between two level images.
const MicWindow = 100

// micStep is the distance, in ADC counts, between two bar rows.
const micStep = 20

// BarImage is a 5x5 frame, row 0 at the top; 1 is lit.
type BarImage [5][5]uint8

// MicMeter turns raw microphone samples into a bar graph. It keeps a
// running average of every sample seen and the peak of the current
// window; a bar row lights when the peak exceeds the average by its
// threshold (+20 at the bottom up to +100 at the top).
type MicMeter struct {
	count uint64
	sum   uint64
	peak  uint16
}

// Add feeds one sample. Every MicWindow samples it returns the bar image
// and true, and starts a new peak window.
func (m *MicMeter) Add(sample uint16) (BarImage, bool) {
	m.count++
	m.sum += uint64(sample)
	if sample > m.peak {
		m.peak = sample
	}
	if m.count%MicWindow != 0 {
		return BarImage{}, false
	}

	img := barRows(m.Level())
	m.peak = 0
	return img, true
}

// Sample reads r once and feeds the reading to Add.
func (m *MicMeter) Sample(r ADCReader) (BarImage, bool) {
	return m.Add(r.Get())
}

// Average returns the mean of all samples so far.
func (m *MicMeter) Average() uint16 {
	if m.count == 0 {
		return 0
	}
	return uint16(m.sum / m.count)
}

// Peak returns the largest sample of the current window.
func (m *MicMeter) Peak() uint16 {
	return m.peak
}

// Level returns how many bar rows the current peak lights, 0 to 5.
func (m *MicMeter) Level() int {
	diff := int32(m.peak) - int32(m.Average())
	return clamp(int((diff-1)/micStep), 0, 5)
}

// Reset forgets the average and the peak.
func (m *MicMeter) Reset() {
	*m = MicMeter{}
}

func barRows(level int) (img BarImage) {
	for r := range img {
		if level < len(img)-r {
			continue
		}
		for c := range img[r] {
			img[r][c] = 1
		}
	}
	return img
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
