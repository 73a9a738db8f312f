package protocol

// frameScanner splits a byte stream into verified frames. After any
// malformed frame it drops bytes up to the next sync byte.
type frameScanner struct {
	synced bool

	// requireDest rejects frames whose sequence byte lacks MessageDest.
	requireDest bool
}

// scan calls fn for each complete, valid frame at the front of data and
// returns how many bytes were consumed. A trailing partial frame is left
// in place. fn receives the sequence byte and the payload, which aliases
// data. resynced is called each time the scanner regains sync after
// discarding bytes.
func (s *frameScanner) scan(data []byte, fn func(seq uint8, payload []byte), resynced func()) int {
	start := len(data)
	for len(data) > 0 {
		if !s.synced {
			i := indexSync(data)
			if i < 0 {
				data = nil
				break
			}
			data = data[i+1:]
			s.synced = true
			if resynced != nil {
				resynced()
			}
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		n := int(data[MessagePositionLen])
		if n < MessageLengthMin || n > MessageLengthMax {
			s.synced = false
			continue
		}
		seq := data[MessagePositionSeq]
		if s.requireDest && seq&^MessageSeqMask != MessageDest {
			s.synced = false
			continue
		}
		if len(data) < n {
			break
		}
		if data[n-MessageTrailerSync] != MessageValueSync {
			s.synced = false
			continue
		}
		crc := uint16(data[n-MessageTrailerCRC])<<8 | uint16(data[n-MessageTrailerCRC+1])
		if crc != CRC16(data[:n-MessageTrailerSize]) {
			s.synced = false
			continue
		}

		payload := data[MessageHeaderSize : n-MessageTrailerSize]
		data = data[n:]
		fn(seq, payload)
	}
	return start - len(data)
}

func indexSync(data []byte) int {
	for i, b := range data {
		if b == MessageValueSync {
			return i
		}
	}
	return -1
}

// encodeFrame writes one frame with sequence seq to output. payload fills
// in the message bytes. Nothing is written, and false returned, when the
// payload does not fit a frame.
func encodeFrame(output OutputBuffer, seq uint8, payload func(output OutputBuffer)) bool {
	var frame ScratchOutput
	frame.Output([]byte{0, seq})
	if payload != nil {
		payload(&frame)
	}

	n := frame.CurPosition() + MessageTrailerSize
	if n > MessageLengthMax {
		return false
	}
	frame.Update(MessagePositionLen, uint8(n))

	crc := CRC16(frame.Result())
	frame.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
	output.Output(frame.Result())
	return true
}

// ackFrame returns the ACK for the next expected sequence.
func ackFrame(next uint8) []byte {
	crc := CRC16([]byte{MessageLengthMin, next})
	return []byte{MessageLengthMin, next, uint8(crc >> 8), uint8(crc), MessageValueSync}
}
