package audio

import (
	"encoding/binary"
	"io"
	"math"
)

// WriteWAV writes mono 16-bit PCM in a RIFF/WAVE container.
func WriteWAV(w io.Writer, samples []float32, rate int) error {
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataLen := uint32(len(samples) * blockAlign)

	header := struct {
		Riff          [4]byte
		Size          uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtLen        uint32
		Format        uint16
		Channels      uint16
		Rate          uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataLen       uint32
	}{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		Size:          36 + dataLen,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtLen:        16,
		Format:        1,
		Channels:      channels,
		Rate:          uint32(rate),
		ByteRate:      uint32(rate * blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataLen:       dataLen,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		s = float32(math.Max(-1, math.Min(1, float64(s))))
		pcm[i] = int16(s * math.MaxInt16)
	}
	return binary.Write(w, binary.LittleEndian, pcm)
}
