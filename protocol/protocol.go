// Package protocol implements the framed binary link between the tone
// firmware and the host: VLQ-encoded messages inside length-prefixed,
// CRC16-checked frames terminated by a sync byte.
//
// A frame is
//
//	len seq payload... crc_hi crc_lo 0x7E
//
// where len counts the whole frame and the high nibble of seq is always
// 0x10. A frame with an empty payload is an ACK carrying the next
// sequence number the receiver expects.
package protocol

// Version of the link protocol, reported in the identify dictionary.
const Version = "calliope-tone-1"

// Frame layout.
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the size of an output scratch area; it holds an ACK
	// plus a few response frames.
	MessageMax = 4 * MessageLengthMax
)

// Message IDs. The firmware registers its commands in exactly this order,
// so both ends agree without exchanging the dictionary first.
const (
	MsgIdentifyResponse uint16 = iota // identify_response offset=%u data=%*s
	MsgIdentify                       // identify offset=%u count=%c
	MsgToneStart                      // tone_start freq=%u duty=%c
	MsgToneStop                       // tone_stop
	MsgToneQuery                      // tone_query
	MsgToneState                      // tone_state state=%c prescaler=%c period=%u rising=%u falling=%u powered=%c err=%c
)

// nextSeq returns the sequence number following seq.
func nextSeq(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
