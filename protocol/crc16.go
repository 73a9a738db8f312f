package protocol

// CRC16 is the CCITT CRC over a frame's header and payload, computed the
// way the link has always computed it (CRC-16/MCRF4XX: reflected 0x1021,
// init 0xFFFF, no final xor).
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc & 0xFF)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}
